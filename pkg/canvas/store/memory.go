package store

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for testing and single-process use.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]storedRecord // namespace -> key -> record
	closed bool
}

// storedRecord holds a value with metadata for List().
type storedRecord struct {
	value     []byte
	updatedAt time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]storedRecord),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(namespace []string, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	ns, ok := m.data[joinNamespace(namespace)]
	if !ok {
		return nil, ErrNotFound
	}
	rec, ok := ns[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent modification
	result := make([]byte, len(rec.value))
	copy(result, rec.value)
	return result, nil
}

// Put implements Store.
func (m *MemoryStore) Put(namespace []string, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	flat := joinNamespace(namespace)
	if m.data[flat] == nil {
		m.data[flat] = make(map[string]storedRecord)
	}

	// Copy to avoid retaining the caller's slice
	stored := make([]byte, len(value))
	copy(stored, value)

	m.data[flat][key] = storedRecord{
		value:     stored,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(namespace []string, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if ns, ok := m.data[joinNamespace(namespace)]; ok {
		delete(ns, key)
	}
	return nil
}

// List implements Store.
func (m *MemoryStore) List(namespace []string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	ns, ok := m.data[joinNamespace(namespace)]
	if !ok {
		return []Info{}, nil
	}

	infos := make([]Info, 0, len(ns))
	for key, rec := range ns {
		infos = append(infos, Info{
			Namespace: splitNamespace(joinNamespace(namespace)),
			Key:       key,
			UpdatedAt: rec.updatedAt,
			Size:      int64(len(rec.value)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Key < infos[j].Key
	})
	return infos, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of records across all namespaces.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, ns := range m.data {
		count += len(ns)
	}
	return count
}
