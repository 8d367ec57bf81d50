package cache

import (
	"context"
	"path"
	"sync"
)

// MemoryStore is an in-process Store. Path returns a virtual location.
type MemoryStore struct {
	mu   sync.Mutex
	data map[Key][]byte
	puts int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Key][]byte)}
}

func (m *MemoryStore) Path(key Key) string {
	return path.Join("mem", key.Name())
}

func (m *MemoryStore) Has(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key Key, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	m.puts++
	return nil
}

func (m *MemoryStore) List(_ context.Context, stage Stage) ([]Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []Key
	for k := range m.data {
		if k.Stage == stage {
			keys = append(keys, k)
		}
	}
	sortKeys(keys)
	return keys, nil
}

// Puts counts successful writes.
func (m *MemoryStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
