package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileStorage stores each key as a file named "<key>.json" in a directory.
type FileStorage struct {
	fs  afero.Fs
	dir string
}

// NewFileStorage creates a FileStorage rooted at dir, creating the directory
// if needed.
func NewFileStorage(fs afero.Fs, dir string) (*FileStorage, error) {
	if fs == nil {
		return nil, errors.New("filesystem is required")
	}
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}

	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileStorage{fs: fs, dir: dir}, nil
}

// Get reads the value stored under key.
func (s *FileStorage) Get(_ context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}

	return string(data), nil
}

// Set writes value under key. The file is replaced atomically.
func (s *FileStorage) Set(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}

	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %q: %w", key, err)
	}

	return nil
}

// Delete removes key from the directory.
func (s *FileStorage) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}

	return nil
}

// path maps a key to its file, rejecting keys that would escape the directory.
func (s *FileStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
