package kvstore

import (
	"context"
	"sync"
)

// MemoryStore keeps collections in process memory. It backs the tab-scoped
// session side (gone when the process ends) and doubles as the store used by
// service tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, collection string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[collection]
	if !ok {
		return nil, nil
	}
	// Copy so callers can't mutate the stored document.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, collection string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[collection] = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, collection)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
