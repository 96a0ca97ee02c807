// Package photostore abstracts where processed product images are kept.
package photostore

import (
	"context"
	"io"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no object is stored under the requested key.
var ErrNotFound = errors.New("photo not found")

// Store writes and reads binary image objects by key.
type Store interface {
	Save(ctx context.Context, key, mimeType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
