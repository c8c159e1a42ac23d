package kv

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// fileExtension is the extension used for stored entries.
const fileExtension = ".json"

// fileRecord is the on-disk shape of one entry. The key is kept inside the
// document so Keys does not depend on decoding file names.
type fileRecord struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore stores each key as a JSON file in a directory.
// Writes go to a temporary file first and are renamed into place.
type FileStore struct {
	directory string
	mu        sync.RWMutex
}

// NewFileStore creates a file-backed store. The directory is created if it
// doesn't exist.
func NewFileStore(directory string) (*FileStore, error) {
	if directory == "" {
		return nil, errors.New("kv: file store directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("kv: create directory: %w", err)
	}
	return &FileStore{directory: directory}, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.read(s.path(key))
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := json.Marshal(fileRecord{Key: key, Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("kv: marshal %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("kv: rename %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("kv: read directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExtension {
			continue
		}
		rec, err := s.read(filepath.Join(s.directory, e.Name()))
		if err != nil {
			// unreadable files are not ours to report
			continue
		}
		keys = append(keys, rec.Key)
	}
	return keys, nil
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kv: remove %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Dir returns the directory holding the entries.
func (s *FileStore) Dir() string {
	return s.directory
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.directory, hex.EncodeToString([]byte(key))+fileExtension)
}

func (s *FileStore) read(path string) (fileRecord, error) {
	var rec fileRecord
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rec, ErrNotFound
		}
		return rec, fmt.Errorf("kv: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("kv: decode %s: %w", strings.TrimSuffix(filepath.Base(path), fileExtension), err)
	}
	return rec, nil
}
