package recordstore

import (
	"maps"
	"slices"
	"sync"
)

type SafeMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewSafeMap[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{
		m: make(map[K]V),
	}
}

func (s *SafeMap[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *SafeMap[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, found := s.m[key]
	return val, found
}

// Delete reports whether key was present.
func (s *SafeMap[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := s.m[key]
	delete(s.m, key)
	return found
}

// Update applies fn to the stored value under the write lock.
func (s *SafeMap[K, V]) Update(key K, fn func(V) V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, found := s.m[key]
	if !found {
		return val, false
	}
	val = fn(val)
	s.m[key] = val
	return val, true
}

func (s *SafeMap[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Values(s.m))
}
