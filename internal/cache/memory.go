// Package cache provides an in-memory synthesis cache, used in tests and
// single-process deployments where the document-store-backed cache is not
// wanted.
package cache

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/gospelstack/sermon-audio/domain/entities"
	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// Memory is a process-local SynthesisCache with the same TTL semantics as
// the document-store-backed cache: stale entries read as misses and are
// only removed by Sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entities.CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ repositories.SynthesisCache = (*Memory)(nil)

// NewMemory creates an in-memory cache with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]*entities.CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the cache's time source. Test hook.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Lookup implements repositories.SynthesisCache
func (m *Memory) Lookup(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || entry.IsStale(m.ttl, m.now()) {
		return nil, false
	}

	payload, err := base64.StdEncoding.DecodeString(entry.AudioBase64)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Store implements repositories.SynthesisCache. First write sets CreatedAt;
// overwrites keep it.
func (m *Memory) Store(_ context.Context, entry *entities.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	stored := *entry
	stored.LastAccessedAt = now
	if existing, ok := m.entries[entry.Key]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.AccessCount = existing.AccessCount
	} else {
		stored.CreatedAt = now
	}
	m.entries[entry.Key] = &stored
	return nil
}

// RecordAccess implements repositories.SynthesisCache
func (m *Memory) RecordAccess(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[key]; ok {
		entry.AccessCount++
		entry.LastAccessedAt = m.now()
	}
}

// Sweep implements repositories.SynthesisCache
func (m *Memory) Sweep(_ context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-ttl)
	var deleted int64
	for key, entry := range m.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of physically present entries, stale included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
