package caching

import "sync"

// Memo is an in-memory cache keyed by a comparable value. Entries live for
// the lifetime of the Memo.
type Memo[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]V
	hits  int
	miss  int
}

// NewMemo creates an empty Memo.
func NewMemo[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{items: make(map[K]V)}
}

// Get retrieves an item. It returns the value and true on a hit.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if ok {
		m.hits++
	} else {
		m.miss++
	}
	return v, ok
}

// Set stores an item.
func (m *Memo[K, V]) Set(key K, v V) {
	m.mu.Lock()
	m.items[key] = v
	m.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Errors are not cached.
func (m *Memo[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	m.Set(key, v)
	return v, nil
}

// Len returns the number of cached entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Stats returns hit and miss counts.
func (m *Memo[K, V]) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.miss
}
