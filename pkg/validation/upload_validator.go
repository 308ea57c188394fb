package validation

import (
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/anime-shed/sharpness-inspector-go/internal/errors"
)

// DefaultAllowedExtensions are the upload types accepted by the HTTP API
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// UploadValidator checks uploaded image files
type UploadValidator struct {
	allowed map[string]struct{}
	maxSize int64
}

// NewUploadValidator creates a validator for the given extensions (without
// the dot) and size limit in bytes. maxSize <= 0 disables the size check.
func NewUploadValidator(extensions []string, maxSize int64) *UploadValidator {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &UploadValidator{allowed: allowed, maxSize: maxSize}
}

// ValidateUpload checks the filename extension and the payload size
func (v *UploadValidator) ValidateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.NewValidationError("No selected file", nil)
	}
	if !v.AllowedFile(filename) {
		return apperrors.NewValidationError("Invalid file type", nil)
	}
	if size <= 0 {
		return apperrors.NewValidationError("Uploaded file is empty", nil)
	}
	if v.maxSize > 0 && size > v.maxSize {
		return apperrors.NewValidationError("Uploaded file is too large", nil)
	}
	return nil
}

// AllowedFile reports whether filename has an accepted extension
func (v *UploadValidator) AllowedFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := v.allowed[ext]
	return ok
}

// SecureFilename reduces a client supplied name to a safe ASCII base name
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
