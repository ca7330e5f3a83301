package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"bandbooster-authoring/internal/domain"
	"bandbooster-authoring/internal/port"
)

// dataURLSizeLimit caps inline images; a data URL is held in the
// structure CLOB, not on disk, so large files do not belong here.
const dataURLSizeLimit = 2 * 1024 * 1024

// DataURLUploader implements port.Uploader without any storage backend:
// the image is returned inline as a data URL. It is the fallback when
// no upload directory is configured, so previews keep working even
// though the URL is ephemeral rather than durable.
type DataURLUploader struct{}

func NewDataURLUploader() port.Uploader {
	return &DataURLUploader{}
}

func (u *DataURLUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		return "", domain.NewUploadFailedError(fmt.Sprintf("unsupported file extension %q", ext), nil)
	}

	data, err := io.ReadAll(io.LimitReader(content, dataURLSizeLimit+1))
	if err != nil {
		return "", domain.NewUploadFailedError("failed to read file", err)
	}
	if len(data) > dataURLSizeLimit {
		return "", domain.NewUploadFailedError("image too large for inline encoding", nil)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
