package storefake

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-bnb-gateway/sessions"
)

var _ sessions.Store = (*MemoryStore)(nil)

// Write records one Set call.
type Write struct {
	Name   string
	Value  string
	MaxAge time.Duration
}

// MemoryStore is an in-memory cookie jar for tests.
type MemoryStore struct {
	values map[string]string
	writes []Write
	lock   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (m *MemoryStore) Get(name string) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	v, ok := m.values[name]
	return v, ok && v != ""
}

func (m *MemoryStore) Set(name, value string, maxAge time.Duration) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.writes = append(m.writes, Write{Name: name, Value: value, MaxAge: maxAge})
	if maxAge <= 0 {
		value = ""
	}
	m.values[name] = value
}

// Remove deletes a value as if the browser had expired the cookie.
func (m *MemoryStore) Remove(name string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.values, name)
}

// Writes returns every Set call in order.
func (m *MemoryStore) Writes() []Write {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return append([]Write(nil), m.writes...)
}

// Snapshot returns the raw stored values, including empty ones.
func (m *MemoryStore) Snapshot() map[string]string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	snapshot := make(map[string]string, len(m.values))
	for k, v := range m.values {
		snapshot[k] = v
	}
	return snapshot
}
