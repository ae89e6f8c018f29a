// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"locktodo/internal/kv"
)

// MemoryKV is an in-memory implementation of kv.Store for testing.
type MemoryKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	closed bool

	// Error injection for testing
	GetErr    error
	SetErr    error
	DeleteErr error
	CloseErr  error

	// BeforeSet, when non-nil, runs before every Set outside the lock.
	// Tests use it to hold writes back.
	BeforeSet func(key string, value []byte)
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Put seeds a value without counting it as a Set.
func (m *MemoryKV) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
}

// Value returns the stored value and whether key exists.
func (m *MemoryKV) Value(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return append([]byte(nil), v...), ok
}

// Sets returns how many successful Set calls were made.
func (m *MemoryKV) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// Closed reports whether Close was called.
func (m *MemoryKV) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Get implements kv.Store.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements kv.Store.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	if m.BeforeSet != nil {
		m.BeforeSet(key, value)
	}
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.sets++
	return nil
}

// Delete implements kv.Store.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close implements kv.Store.
func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseErr
}
