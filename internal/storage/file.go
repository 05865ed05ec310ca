package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const slotExt = ".slot"

// File persists each slot as one file holding the raw value
type File struct {
	dir string
}

// NewFile creates a file backend rooted at dir. The directory is created on
// first write.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Dir returns the slot directory
func (f *File) Dir() string {
	return f.dir
}

// Get reads a slot from disk
func (f *File) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %s: %w", key, err)
	}

	return string(data), true, nil
}

// Set writes a slot atomically (temp file + rename)
func (f *File) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", key, err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("chmod slot %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, f.path(key)); err != nil {
		return fmt.Errorf("commit slot %s: %w", key, err)
	}

	return nil
}

// Delete removes a slot file
func (f *File) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+slotExt)
}
