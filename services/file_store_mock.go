package services

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryFileStore is an in-memory FileStore for tests and local runs without S3
type MemoryFileStore struct {
	files map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryFileStore creates an empty store
func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{files: make(map[string][]byte)}
}

// Put implements FileStore
func (m *MemoryFileStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	m.files[key] = content
	m.mu.Unlock()
	return nil
}

// PresignURL implements FileStore
func (m *MemoryFileStore) PresignURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.files[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("file not found in memory store: %s", key)
	}
	return fmt.Sprintf("https://files.test/%s?signed=true", key), nil
}

// Delete implements FileStore
func (m *MemoryFileStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether key is stored
func (m *MemoryFileStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok
}

// Len returns the number of stored blobs
func (m *MemoryFileStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
