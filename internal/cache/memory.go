package cache

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Memory is an in-process Store with the same jittered expiration policy as
// the Redis implementation. Used by tests and as a dependency-free fallback.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	base    time.Duration
	jitter  time.Duration
}

type memoryEntry struct {
	payload []byte
	expiry  time.Time
}

func NewMemory(base, jitter time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		base:    base,
		jitter:  jitter,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiry) {
		delete(m.entries, key)
		return nil, false
	}
	return e.payload, true
}

func (m *Memory) Set(_ context.Context, key string, payload []byte) {
	ttl := m.base
	if m.jitter > 0 {
		ttl += rand.N(m.jitter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{payload: payload, expiry: time.Now().Add(ttl)}
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
