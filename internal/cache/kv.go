package cache

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("cache: not found")
	ErrTooLarge = errors.New("cache: value exceeds capacity")
)

// KV defines the minimal key-value contract the web tools cache through.
// Implementations must be safe for concurrent use by multiple goroutines.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(keys ...string) error
}

// Guarded serializes access to a Manager so it can be shared between
// goroutines. Values are neither copied in nor out; callers must not modify
// a slice after Put or one returned by Get.
type Guarded struct {
	mu sync.Mutex
	m  *Manager
}

var _ KV = (*Guarded)(nil)

func NewGuarded(m *Manager) *Guarded {
	return &Guarded{m: m}
}

// Get returns the value for key or ErrNotFound.
func (g *Guarded) Get(key string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.m.Fetch(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Put stores value under key, evicting older entries as needed. It returns
// ErrTooLarge if the value could never fit.
func (g *Guarded) Put(key string, value []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.m.Store(key, value) {
		return ErrTooLarge
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (g *Guarded) Delete(keys ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.m.RemoveMany(keys...)
	return nil
}

func (g *Guarded) Info() Info {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m.Info()
}

func (g *Guarded) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.m.Clear()
}

func (g *Guarded) SetCapacity(capacity int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.m.SetCapacity(capacity)
}
