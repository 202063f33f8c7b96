package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Store persists uploaded files and returns the stored relative path.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// FileStore writes under a root directory of an afero filesystem.
type FileStore struct {
	fs   afero.Fs
	root string
}

func NewFileStore(fs afero.Fs, root string) (*FileStore, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{fs: fs, root: root}, nil
}

// NewLocal stores files on the OS filesystem.
func NewLocal(root string) (*FileStore, error) {
	return NewFileStore(afero.NewOsFs(), root)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName drops directories and replaces anything outside [A-Za-z0-9._-].
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// Save prefixes the sanitized name with a UUID so uploads never collide.
func (s *FileStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.NewString() + "_" + SanitizeName(filename)
	f, err := s.fs.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(filepath.Join(s.root, name))
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join("uploads", name), nil
}
