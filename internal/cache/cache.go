// Package cache implements an in-memory content cache bounded by total byte
// size. Entries are evicted least-recently-used first.
package cache

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultCapacity is used when Options.Capacity is zero.
const DefaultCapacity int64 = 64 * 1024 * 1024

type Options struct {
	// Capacity is the byte budget. Zero selects DefaultCapacity, negative
	// values are clamped to zero.
	Capacity int64
	// Sink receives trace messages. Nil disables tracing.
	Sink Sink
}

// Info is a read-only snapshot of the cache state.
type Info struct {
	Size     int64 `json:"size"`
	Capacity int64 `json:"capacity"`
	Entries  int   `json:"entries"`
}

type entry struct {
	data []byte
	size int64
}

// Manager owns cached payloads, the byte budget and the recency order.
// Entries are kept oldest first; the newest entry is the most recently
// stored or fetched one.
//
// Manager is not safe for concurrent use. Wrap it with Guarded when it is
// shared between goroutines.
type Manager struct {
	entries  *orderedmap.OrderedMap[string, *entry]
	size     int64
	capacity int64
	sink     Sink
}

// New creates an empty Manager.
func New(opts Options) *Manager {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}
	return &Manager{
		entries:  orderedmap.New[string, *entry](),
		capacity: max(0, capacity),
		sink:     sink,
	}
}

// Store caches data under id using len(data) as its size.
// It returns false if data alone exceeds the capacity.
func (m *Manager) Store(id string, data []byte) bool {
	return m.StoreSize(id, data, 0)
}

// StoreSize caches data under id accounting it as size bytes. A size <= 0
// falls back to len(data). The cache takes ownership of data.
func (m *Manager) StoreSize(id string, data []byte, size int64) bool {
	if size <= 0 {
		size = int64(len(data))
	}
	if size > m.capacity {
		m.sink.Tracef("too big for cache: %s, size: %d", id, size)
		return false
	}
	m.remove(id)
	m.makeSpace(m.capacity - size)
	m.entries.Set(id, &entry{data: data, size: size})
	m.size += size
	m.sink.Tracef("cached: %s", id)
	m.sink.Tracef("cache size: %d", m.size)
	return true
}

// Fetch returns the payload stored under id and marks it most recently used.
func (m *Manager) Fetch(id string) ([]byte, bool) {
	e, ok := m.entries.Get(id)
	if !ok {
		return nil, false
	}
	_ = m.entries.MoveToBack(id)
	m.sink.Tracef("from cache: %s", id)
	return e.data, true
}

// Contains reports whether id is cached without touching its recency.
func (m *Manager) Contains(id string) bool {
	_, ok := m.entries.Get(id)
	return ok
}

// Remove drops id from the cache. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.RemoveMany(id)
}

// RemoveMany drops every listed id. Unknown ids are ignored.
func (m *Manager) RemoveMany(ids ...string) {
	for _, id := range ids {
		m.remove(id)
	}
	m.sink.Tracef("cache size: %d", m.size)
}

// SetCapacity changes the byte budget and evicts entries until the cache
// fits. Negative values are clamped to zero.
func (m *Manager) SetCapacity(capacity int64) {
	m.capacity = max(0, capacity)
	m.makeSpace(m.capacity)
}

// Capacity returns the current byte budget.
func (m *Manager) Capacity() int64 { return m.capacity }

// Len returns the number of cached entries.
func (m *Manager) Len() int { return m.entries.Len() }

// Clear drops every entry.
func (m *Manager) Clear() {
	m.entries = orderedmap.New[string, *entry]()
	m.size = 0
	m.sink.Tracef("cleared cache")
}

// Info returns the current size accounting.
func (m *Manager) Info() Info {
	return Info{Size: m.size, Capacity: m.capacity, Entries: m.entries.Len()}
}

// Keys returns cached ids from least to most recently used.
func (m *Manager) Keys() []string {
	out := make([]string, 0, m.entries.Len())
	for p := m.entries.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// makeSpace evicts the oldest entries until the aggregate size is at most
// target.
func (m *Manager) makeSpace(target int64) {
	for m.size > target {
		oldest := m.entries.Oldest()
		if oldest == nil {
			return
		}
		m.remove(oldest.Key)
		m.sink.Tracef("evicted: %s", oldest.Key)
	}
}

func (m *Manager) remove(id string) bool {
	e, ok := m.entries.Delete(id)
	if !ok {
		return false
	}
	m.size -= e.size
	return true
}
