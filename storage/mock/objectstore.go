package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/calyptra/docstream/storage"
)

// MockObjectStore is a test double for storage.ObjectStore backed by an
// in-memory map. Operations can be overridden via function fields.
type MockObjectStore struct {
	PutFunc  func(ctx context.Context, key string, data []byte) error
	GetFunc  func(ctx context.Context, key string) ([]byte, error)
	PingFunc func(ctx context.Context) error

	mu      sync.RWMutex
	objects map[string][]byte
}

var _ storage.ObjectStore = (*MockObjectStore)(nil)

// NewMockObjectStore creates an empty in-memory object store.
// Note: Returns concrete type to allow behavior injection and assertions.
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string][]byte)}
}

// Put stores bytes under key.
func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = cp
	return nil
}

// Get retrieves bytes stored under key.
func (m *MockObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Ping reports the store as reachable unless overridden.
func (m *MockObjectStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Len returns the number of stored objects, for test assertions.
func (m *MockObjectStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
