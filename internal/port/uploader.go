package port

import (
	"context"
	"io"
)

// Uploader stores diagram images and returns the public URL they are
// served from.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}
