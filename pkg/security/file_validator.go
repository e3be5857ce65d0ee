package security

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// Magic byte signatures for the accepted image types.
var magicBytes = map[string][][]byte{
	"image/jpeg": {{0xFF, 0xD8, 0xFF}},
	"image/png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/gif":  {[]byte("GIF87a"), []byte("GIF89a")},
	"image/webp": {[]byte("RIFF")},
}

var extensionMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MaxImageBytes bounds a single upload before it is resized.
const MaxImageBytes = 10 << 20

// ValidateImage checks size, sniffed MIME type, magic bytes and, when the
// name carries one, that the extension agrees with the content. Camera
// captures often arrive without an extension.
func ValidateImage(filename string, data []byte) FileValidationResult {
	result := FileValidationResult{
		Extension: strings.ToLower(filepath.Ext(filename)),
	}

	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}
	if len(data) > MaxImageBytes {
		result.Error = "file exceeds the 10 MB limit"
		return result
	}

	result.DetectedMIME = http.DetectContentType(data)
	signatures, ok := magicBytes[result.DetectedMIME]
	if !ok {
		result.Error = "file type not allowed: " + result.DetectedMIME
		return result
	}
	if !hasPrefix(data, signatures) {
		result.Error = "file content does not match its type"
		return result
	}

	if result.Extension != "" {
		expected, known := extensionMIME[result.Extension]
		if !known {
			result.Error = "file extension not allowed: " + result.Extension
			return result
		}
		if expected != result.DetectedMIME {
			result.Error = "file content does not match extension (potential file spoofing detected)"
			return result
		}
	}

	result.Valid = true
	return result
}

func hasPrefix(data []byte, signatures [][]byte) bool {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedExtensions lists the accepted extensions for error messages.
func AllowedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}
