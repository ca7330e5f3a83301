package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bandbooster-authoring/internal/config"
	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/port"
	"bandbooster-authoring/internal/util"
)

// LocalUploader implements port.Uploader on the local filesystem.
// Files land under the configured upload directory and are served from
// the public base URL by the static file route.
type LocalUploader struct {
	uploadDir     string
	publicBaseURL string
}

func NewLocalUploader(cfg config.StorageConfig) (port.Uploader, error) {
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("storage upload directory is not configured")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.UploadDir, err)
	}
	return &LocalUploader{
		uploadDir:     cfg.UploadDir,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload writes the content under a fresh ULID-based name, keeping the
// original extension. The client-supplied filename is never used as a
// path.
func (u *LocalUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp":
	default:
		return "", domain.NewUploadFailedError(fmt.Sprintf("unsupported file extension %q", ext), nil)
	}

	name := util.NewULID() + ext
	dest := filepath.Join(u.uploadDir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", domain.NewUploadFailedError("failed to create file", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(dest)
		return "", domain.NewUploadFailedError("failed to write file", err)
	}

	return u.publicBaseURL + "/" + path.Join("uploads", name), nil
}
