// file: handler/upload.go

package handler

import (
	"errors"
	"fmt"
	"go-tube-api/config"
	"go-tube-api/logger"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory
// before spilling to disk.
const maxUploadMemory = 10 << 20

// stageFormFile copies a multipart file field to the local staging
// directory and returns its path. Returns "" without error when the field is
// absent, so optional uploads stay optional.
func stageFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s field: %w", field, err)
	}
	defer file.Close()

	dir := config.AppConfig.Server.UploadTempDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	staged := filepath.Join(dir, uuid.New().String()+filepath.Ext(header.Filename))
	dst, err := os.Create(staged)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	logger.Log.WithField("path", staged).Debug("Upload staged")
	return staged, nil
}
