package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists values as one JSON object on disk. Every write replaces
// the file through a rename so a crash never leaves it half written.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store. The file is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("session file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file
func (fs *FileStore) Path() string {
	return fs.path
}

// Get retrieves a value by key
func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	items, err := fs.read()
	if err != nil {
		return "", false, err
	}
	value, ok := items[key]
	return value, ok, nil
}

// Set stores a key-value pair
func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	items, err := fs.read()
	if err != nil {
		return err
	}
	items[key] = value
	return fs.write(items)
}

// Delete removes keys
func (fs *FileStore) Delete(_ context.Context, keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	items, err := fs.read()
	if err != nil {
		return err
	}
	changed := false
	for _, key := range keys {
		if _, ok := items[key]; ok {
			delete(items, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return fs.write(items)
}

func (fs *FileStore) read() (map[string]string, error) {
	items := make(map[string]string)
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", fs.path, err)
	}
	return items, nil
}

func (fs *FileStore) write(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
