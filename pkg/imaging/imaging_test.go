package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"portfolio-admin-backend/pkg/imaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestFit(t *testing.T) {
	t.Run("Should scale a wide image to 800 wide", func(t *testing.T) {
		out := imaging.Fit(newImage(1600, 800), imaging.MaxDimension)
		assert.Equal(t, 800, out.Bounds().Dx())
		assert.Equal(t, 400, out.Bounds().Dy())
	})

	t.Run("Should scale a tall image to 800 high", func(t *testing.T) {
		out := imaging.Fit(newImage(500, 1000), imaging.MaxDimension)
		assert.Equal(t, 400, out.Bounds().Dx())
		assert.Equal(t, 800, out.Bounds().Dy())
	})

	t.Run("Should leave a small image unchanged", func(t *testing.T) {
		in := newImage(640, 480)
		out := imaging.Fit(in, imaging.MaxDimension)
		assert.Same(t, in, out)
	})
}

func TestFitSize(t *testing.T) {
	w, h := imaging.FitSize(800, 800, 800)
	assert.Equal(t, []int{800, 800}, []int{w, h})

	w, h = imaging.FitSize(4000, 3, 800)
	assert.Equal(t, []int{800, 1}, []int{w, h})
}

func TestProcessUpload(t *testing.T) {
	t.Run("Should re-encode a large png as a fitted jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, newImage(1600, 800)))

		out, err := imaging.ProcessUpload(buf.Bytes())
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 800, cfg.Width)
		assert.Equal(t, 400, cfg.Height)
	})

	t.Run("Should keep the size of a small jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, newImage(120, 90), nil))

		out, err := imaging.ProcessUpload(buf.Bytes())
		require.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 120, cfg.Width)
		assert.Equal(t, 90, cfg.Height)
	})

	t.Run("Should fail on bytes that are not an image", func(t *testing.T) {
		_, err := imaging.ProcessUpload([]byte("definitely not an image"))
		assert.Error(t, err)
	})
}
