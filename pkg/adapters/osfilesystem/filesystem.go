// Package osfilesystem implements ports.FileSystem on the local disk.
package osfilesystem

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/user/planarenc/pkg/ports"
)

// FileSystem implements ports.FileSystem with the os package. Parent
// directories are created on demand.
type FileSystem struct{}

// New creates a FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

// WriteFile writes data to a temporary file next to path and renames it into
// place.
func (fs *FileSystem) WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Create opens path for writing, truncating any existing file.
func (fs *FileSystem) Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Size returns the length of a regular file.
func (fs *FileSystem) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, errors.New("osfilesystem: not a regular file: " + path)
	}
	return info.Size(), nil
}

var _ ports.FileSystem = (*FileSystem)(nil)
