package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBlob stores the state document as a file in a local directory.
// Writes go to a temporary file first and are renamed into place, so a
// crash mid-write never leaves a truncated document behind.
type FileBlob struct {
	dir string
}

// NewFileBlob creates a file-backed blob store rooted at dir, creating the
// directory if needed.
func NewFileBlob(dir string) (*FileBlob, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory %q: %w", dir, err)
	}
	return &FileBlob{dir: dir}, nil
}

// Read returns the document stored under key, or ErrNotFound.
func (b *FileBlob) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %q: %w", key, err)
	}
	return data, nil
}

// Write atomically replaces the document stored under key.
func (b *FileBlob) Write(_ context.Context, key string, data []byte) error {
	target := filepath.Join(b.dir, key)

	tmp, err := os.CreateTemp(b.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to replace state file %q: %w", key, err)
	}
	return nil
}
