// Package storage persists uploaded files and returns the URL they are served from.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// PropertyImagePrefix holds listing images.
	PropertyImagePrefix = "uploads"
	// ProfilePhotoPrefix holds profile pictures.
	ProfilePhotoPrefix = "images/uploads"
)

// Store saves a file under key and returns its public URL.
type Store interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// PropertyImageKey names a listing image. The original name only contributes its extension.
func PropertyImageKey(filename string) string {
	return path.Join(PropertyImagePrefix, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

// ProfilePhotoKey names a profile picture as <unix millis>-<original name>.
func ProfilePhotoKey(filename string, now time.Time) string {
	return path.Join(ProfilePhotoPrefix, fmt.Sprintf("%d-%s", now.UnixMilli(), sanitize(filename)))
}

func sanitize(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == 0:
			return -1
		case r == ' ':
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// LocalStore writes files below a directory that is served statically at "/".
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Dir returns the root directory files are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(_ context.Context, key, _ string, body io.Reader) (string, error) {
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(target, filepath.Clean(s.dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	return "/" + key, nil
}
