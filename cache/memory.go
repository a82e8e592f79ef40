package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Memory is an in-process Cache bounded by entry count
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	clock      clock.Clock
	retention  time.Duration
	maxEntries int
}

// MemoryOption configures a Memory cache
type MemoryOption func(*Memory)

// WithClock sets the clock used for retention; tests pass clock.NewMock()
func WithClock(c clock.Clock) MemoryOption {
	return func(m *Memory) {
		m.clock = c
	}
}

// WithRetention sets how long entries outlive their expiry
func WithRetention(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.retention = d
	}
}

// WithMaxEntries bounds the cache; the oldest entry is evicted first. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		m.maxEntries = n
	}
}

// NewMemory creates an empty in-memory cache
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:    make(map[string]*Entry),
		clock:      clock.New(),
		retention:  DefaultRetention,
		maxEntries: 1024,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Clock returns the clock the cache measures retention with
func (m *Memory) Clock() clock.Clock {
	return m.clock
}

func (m *Memory) Get(_ context.Context, key string) (*Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.clock.Now().After(entry.ExpiresAt.Add(m.retention)) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry, true, nil
}

func (m *Memory) Set(_ context.Context, key string, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}
	m.entries[key] = entry
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Len returns the number of stored entries, stale ones included
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) evictLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range m.entries {
		if oldestKey == "" || e.StoredAt.Before(oldest) {
			oldestKey, oldest = k, e.StoredAt
		}
	}
	delete(m.entries, oldestKey)
}
