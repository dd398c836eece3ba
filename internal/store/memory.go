package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	upload  *Upload
	expires time.Time
}

// Memory is an in-process Store. Expired entries are invisible to Get and
// are reclaimed by Sweep.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a memory store whose uploads live for ttl after their
// last access.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Put(_ context.Context, sessionID string, u *Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[sessionID] = memoryEntry{upload: u, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Get(_ context.Context, sessionID string) (*Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[sessionID]
	now := m.now()
	if !ok || !now.Before(e.expires) {
		return nil, ErrNotFound
	}

	e.expires = now.Add(m.ttl)
	m.entries[sessionID] = e
	return e.upload, nil
}

func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, sessionID)
	return nil
}

// Sweep removes every entry that has expired by now.
func (m *Memory) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }
