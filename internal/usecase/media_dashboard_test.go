package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/internal/usecase"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, path string, data []byte, opts storage.UploadOptions) error {
	return m.Called(ctx, path, data, opts).Error(0)
}

func (m *MockStorage) PublicURL(path string) string {
	return "https://cdn.example.com/" + path
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaServiceUploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("Should resize, store as jpeg under the section folder and return the public url", func(t *testing.T) {
		store := new(MockStorage)
		svc := usecase.NewMediaService(store, nil, nil)

		var stored []byte
		store.On("Upload", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.HasPrefix(p, "projects/") && strings.HasSuffix(p, ".jpg")
		}), mock.Anything, storage.DefaultImageOptions).Return(nil).Run(func(args mock.Arguments) {
			stored = args.Get(2).([]byte)
		})

		url, err := svc.UploadImage(ctx, ownerID, domain.SectionProjects, &domain.ImageFile{
			Filename: "capture.png",
			Data:     pngImage(t, 1600, 800),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/projects/"))

		cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 800, cfg.Width)
		assert.Equal(t, 400, cfg.Height)
	})

	t.Run("Should reject bytes that are not an image before storing", func(t *testing.T) {
		store := new(MockStorage)
		svc := usecase.NewMediaService(store, nil, nil)

		_, err := svc.UploadImage(ctx, ownerID, domain.SectionSkills, &domain.ImageFile{
			Filename: "notes.png",
			Data:     []byte("definitely not a png"),
		})
		assert.True(t, apperror.Is(err, apperror.KindUploadFailed))
		store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should wrap storage errors as upload failures", func(t *testing.T) {
		store := new(MockStorage)
		svc := usecase.NewMediaService(store, nil, nil)
		store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("storage upload failed (status 403)"))

		_, err := svc.UploadImage(ctx, ownerID, domain.SectionContact, &domain.ImageFile{
			Filename: "me.png",
			Data:     pngImage(t, 100, 100),
		})
		assert.True(t, apperror.Is(err, apperror.KindUploadFailed))
		assert.Contains(t, err.Error(), "status 403")
	})
}

func TestDashboardStats(t *testing.T) {
	repo := new(MockSectionRepo)
	uc := usecase.NewDashboardUsecase(repo, nil)
	last := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, s := range domain.AllSections {
		repo.On("Count", mock.Anything, s).Return(int64(i), nil)
	}
	repo.On("LastUpdated", mock.Anything).Return(&last, nil)

	stats, err := uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalSections)
	assert.Equal(t, "Live", stats.Status)
	assert.Equal(t, int64(1), stats.Counts[domain.SectionProjects])
	assert.Equal(t, &last, stats.LastUpdated)
	require.Len(t, stats.Sections, 5)
	assert.Equal(t, "Skills Section", stats.Sections[0].Title)
}

func TestDashboardExport(t *testing.T) {
	repo := new(MockSectionRepo)
	uc := usecase.NewDashboardUsecase(repo, nil)

	for _, s := range domain.AllSections {
		if s == domain.SectionSkills {
			continue
		}
		repo.On("List", mock.Anything, s, ownerID).Return([]map[string]any{}, nil)
	}
	repo.On("List", mock.Anything, domain.SectionSkills, ownerID).Return([]map[string]any{
		{"id": int64(1), "skill": "Go", "image_url": "https://cdn/go.jpg", "user_id": ownerID, "created_at": time.Now()},
	}, nil)

	data, filename, err := uc.Export(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Regexp(t, `^portfolio_export_\d{8}_\d{6}\.xlsx$`, filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Skills Section", "Projects Section", "Experience Section", "Contact Section", "Credentials Section",
	}, f.GetSheetList())

	header, err := f.GetCellValue("Skills Section", "B1")
	require.NoError(t, err)
	assert.Equal(t, "SKILL", header)
	value, err := f.GetCellValue("Skills Section", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Go", value)
}

func TestHealthCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	t.Run("Should report ok with redis disabled", func(t *testing.T) {
		res := usecase.NewHealthUsecase(ok, nil, nil).Check(context.Background())
		assert.Equal(t, "ok", res["status"])
		assert.Equal(t, "disabled", res["redis"])
	})

	t.Run("Should degrade when the database is down", func(t *testing.T) {
		res := usecase.NewHealthUsecase(down, ok, nil).Check(context.Background())
		assert.Equal(t, "degraded", res["status"])
		assert.Equal(t, "unavailable", res["database"])
		assert.Equal(t, "ok", res["redis"])
	})
}
