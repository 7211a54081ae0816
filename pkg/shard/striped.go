package shard

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

const (
	// DefaultStripes is the default number of independently locked stripes.
	DefaultStripes = 32
)

// stripe is one locked partition of the key space.
type stripe[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// Map is a string-keyed map split into stripes selected by the key's murmur3 token,
// so operations on different keys rarely contend on the same lock.
type Map[V any] struct {
	stripes []*stripe[V]
}

// NewMap creates a striped map.
func NewMap[V any](stripes int) *Map[V] {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	m := &Map[V]{stripes: make([]*stripe[V], stripes)}
	for i := range m.stripes {
		m.stripes[i] = &stripe[V]{items: make(map[string]V)}
	}
	return m
}

// Token returns the murmur3 token used to place a key.
func Token(key string) uint64 {
	return murmur3.Sum64([]byte(key))
}

func (m *Map[V]) stripeFor(key string) *stripe[V] {
	return m.stripes[Token(key)%uint64(len(m.stripes))]
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.stripeFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok
}

// PutIfAbsent stores value under key unless the key is taken.
// It returns the stored value and whether it was inserted.
func (m *Map[V]) PutIfAbsent(key string, value V) (V, bool) {
	s := m.stripeFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[key]; ok {
		return existing, false
	}
	s.items[key] = value
	return value, true
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	s := m.stripeFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	return true
}

// DeleteIf removes every entry for which fn returns true and returns the removed keys.
// Each stripe is locked only while it is scanned.
func (m *Map[V]) DeleteIf(fn func(key string, value V) bool) []string {
	var removed []string
	for _, s := range m.stripes {
		s.mu.Lock()
		for k, v := range s.items {
			if fn(k, v) {
				delete(s.items, k)
				removed = append(removed, k)
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of entries across all stripes.
func (m *Map[V]) Len() int {
	n := 0
	for _, s := range m.stripes {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}
