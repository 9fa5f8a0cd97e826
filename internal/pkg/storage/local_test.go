package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	key, err := s.Upload(ctx, strings.NewReader("photo"), 5, "attendance/2024-03-01/e1.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "attendance/2024-03-01/e1.jpg", key)
	assert.Equal(t, "http://localhost:8080/uploads/attendance/2024-03-01/e1.jpg", s.URL(key))

	data, err := os.ReadFile(filepath.Join(s.BasePath(), "attendance", "2024-03-01", "e1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "photo", string(data))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is not an error")
}

func TestLocalStorage_TraversalStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "uploads"), "/uploads")
	require.NoError(t, err)

	key, err := s.Upload(context.Background(), strings.NewReader("x"), 1, "../../escape.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "escape.jpg", key)

	_, err = os.Stat(filepath.Join(s.BasePath(), "escape.jpg"))
	assert.NoError(t, err)

	_, err = s.Upload(context.Background(), strings.NewReader("x"), 1, "..", "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
