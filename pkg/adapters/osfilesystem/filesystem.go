// Package osfilesystem provides a filesystem implementation using the os package.
package osfilesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/gifcap/pkg/ports"
)

// FileSystem implements ports.FileSystem using the os package.
// Every failure wraps ports.ErrFileSystemFailure.
type FileSystem struct{}

// New creates a new FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

// ReadFile reads the entire contents of a file.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure("read", path, err)
	}
	return data, nil
}

// WriteFile writes data next to path and renames it into place, so a
// partially written artifact never replaces an existing one.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return failure("create directory for", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return failure("write", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return failure("write", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return failure("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return failure("write", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return failure("write", path, err)
	}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (fs *FileSystem) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return failure("create directory", path, err)
	}
	return nil
}

// Exists checks if a file or directory exists.
func (fs *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, failure("stat", path, err)
}

// Remove deletes a file or empty directory.
func (fs *FileSystem) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return failure("remove", path, err)
	}
	return nil
}

func failure(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ports.ErrFileSystemFailure, op, path, err)
}

// Ensure FileSystem implements ports.FileSystem
var _ ports.FileSystem = (*FileSystem)(nil)
