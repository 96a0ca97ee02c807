// Package local stores images on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/photostore"
)

var _ photostore.Store = (*Store)(nil)

// Store keeps every object as a single file under basePath.
type Store struct {
	basePath string
}

// New returns a Store rooted at basePath, creating the directory if needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media directory")
	}
	return &Store{basePath: basePath}, nil
}

// Save writes r to a file named key. A partially written file is removed.
func (s *Store) Save(ctx context.Context, key, _ string, r io.Reader) error {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %q: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		s.remove(ctx, filePath)
		return fmt.Errorf("writing %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		s.remove(ctx, filePath)
		return fmt.Errorf("closing %q: %w", key, err)
	}
	return nil
}

// Get opens the file stored under key and reports its MIME type.
func (s *Store) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", photostore.ErrNotFound
		}
		return nil, "", fmt.Errorf("opening %q: %w", key, err)
	}
	return f, mimeType(filePath), nil
}

// Delete removes the file stored under key.
func (s *Store) Delete(_ context.Context, key string) error {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return photostore.ErrNotFound
		}
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Check verifies the media directory is still present and writable.
func (s *Store) Check(_ context.Context) error {
	f, err := os.CreateTemp(s.basePath, ".probe-*")
	if err != nil {
		return errors.Wrap(err, "media directory not writable")
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func (s *Store) remove(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil {
		zctx.From(ctx).Warn("Failed to remove partial file",
			zap.String("path", filePath),
			zap.Error(err),
		)
	}
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (s *Store) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", errors.Wrap(err, "invalid base path")
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", errors.Wrap(err, "invalid path")
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", errors.Errorf("path traversal attempt: %q", key)
	}
	return absPath, nil
}

func mimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
