package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

type entry struct {
	data    []byte
	expires time.Time
}

// Memory is a single-process artifact store with TTL expiry. Used when Redis
// is not configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory store whose artifacts expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores the artifact, dropping any expired entries while it holds the lock.
func (m *Memory) Put(_ context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if e.expires.Before(now) {
			delete(m.entries, k)
		}
	}

	m.entries[id] = entry{data: data, expires: now.Add(m.ttl)}
	return nil
}

// Get returns the artifact bytes, or domain.ErrNotFound when unknown or expired.
func (m *Memory) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || e.expires.Before(m.now()) {
		delete(m.entries, id)
		return nil, fmt.Errorf("audio.Memory.Get: %s: %w", id, domain.ErrNotFound)
	}
	return e.data, nil
}
