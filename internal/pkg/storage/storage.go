// Package storage keeps attendance proof photos.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("invalid file path")

type FileStorage interface {
	// Upload stores file under path and returns the stored key.
	Upload(ctx context.Context, file io.Reader, size int64, path string, contentType string) (string, error)

	// Delete removes a stored key. Deleting a missing key is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL of a stored key.
	URL(path string) string
}
