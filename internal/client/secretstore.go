// Package client contains the device-side session machinery: the API client,
// connectivity and reachability probes, the secret store and the session
// controller that drives login/signup flows.
package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSecret is returned when the requested key has never been stored.
var ErrNoSecret = errors.New("secret not found")

// SecretStore is the opaque key-value store session blobs are written to.
// On a device this would be the platform keychain; tests use MemoryStore.
type SecretStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-process SecretStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, ErrNoSecret
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// FileStore keeps each secret in its own 0600 file under dir. It backs the
// CLI client where no platform keychain is available.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSecret
		}
		return nil, err
	}
	return data, nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	return os.WriteFile(filepath.Join(f.dir, key), value, 0o600)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(f.dir, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
