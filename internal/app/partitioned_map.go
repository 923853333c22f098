package app

import "sync"

const partitionCount = 32

type partition[V any] struct {
	mu    sync.RWMutex
	items map[int64]V
}

// partitionedMap is a concurrency-safe map keyed by operator id.
// Keys hash onto independent partitions so unrelated operators do not share a lock.
type partitionedMap[V any] struct {
	parts [partitionCount]partition[V]
}

func newPartitionedMap[V any]() *partitionedMap[V] {
	m := &partitionedMap[V]{}
	for i := range m.parts {
		m.parts[i].items = make(map[int64]V)
	}
	return m
}

func (m *partitionedMap[V]) partitionFor(key int64) *partition[V] {
	return &m.parts[uint64(key)%partitionCount]
}

func (m *partitionedMap[V]) Get(key int64) (V, bool) {
	p := m.partitionFor(key)
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.items[key]
	return v, ok
}

func (m *partitionedMap[V]) Set(key int64, v V) {
	p := m.partitionFor(key)
	p.mu.Lock()
	p.items[key] = v
	p.mu.Unlock()
}

func (m *partitionedMap[V]) Remove(key int64) {
	p := m.partitionFor(key)
	p.mu.Lock()
	delete(p.items, key)
	p.mu.Unlock()
}

// Compute runs fn under the key's partition lock. fn gets the current entry and
// returns the entry to store; keep=false removes it. On error nothing changes.
func (m *partitionedMap[V]) Compute(key int64, fn func(cur V, ok bool) (next V, keep bool, err error)) (V, error) {
	p := m.partitionFor(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, ok := p.items[key]
	next, keep, err := fn(cur, ok)
	if err != nil {
		var zero V
		return zero, err
	}
	if keep {
		p.items[key] = next
	} else {
		delete(p.items, key)
	}
	return next, nil
}

func (m *partitionedMap[V]) Len() int {
	n := 0
	for i := range m.parts {
		p := &m.parts[i]
		p.mu.RLock()
		n += len(p.items)
		p.mu.RUnlock()
	}
	return n
}
