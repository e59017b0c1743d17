package services

import (
	"sync"
	"time"
)

// TTLStore is a small expiring key/value store. The engine only depends on
// this interface, so a multi-instance deployment can back it with a shared
// external store without touching callers.
type TTLStore interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

type ttlEntry struct {
	value     any
	expiresAt time.Time
}

// MemoryTTLStore keeps entries in process memory and expires them lazily on
// read. There is no background sweeper.
type MemoryTTLStore struct {
	mu      sync.Mutex
	entries map[string]ttlEntry
	now     func() time.Time
}

func NewMemoryTTLStore() *MemoryTTLStore {
	return &MemoryTTLStore{
		entries: map[string]ttlEntry{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryTTLStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

func (s *MemoryTTLStore) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = ttlEntry{value: value, expiresAt: s.now().Add(ttl)}
}
