package store

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/contentiq/contentiq/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	list      []string
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is the process-local fallback for the analytics store. It
// holds no state across restarts and is invisible to other processes.
// Expiry is emulated by deadline-checked lazy deletion: expired entries
// are dropped when touched, so semantics match the Redis backend without
// a sweeper goroutine.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory analytics store.
func NewMemoryStore() providers.AnalyticsStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// get returns the live entry for key, dropping it if expired. Callers must
// hold the mutex.
func (s *MemoryStore) get(key string) (*memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if entry.expired(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return entry, true
}

// Get retrieves the value for a key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(key)
	if !ok || entry.value == nil {
		return nil, providers.ErrKeyNotFound
	}
	return entry.value, nil
}

// SetWithExpiry stores a value with a ttl.
func (s *MemoryStore) SetWithExpiry(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: s.deadline(ttl),
	}
	return nil
}

// Increment increments the counter at key, creating it at 1 when absent.
// The mutex makes the read-modify-write atomic, matching Redis INCR.
func (s *MemoryStore) Increment(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if entry, ok := s.get(key); ok && entry.value != nil {
		parsed, err := strconv.ParseInt(string(entry.value), 10, 64)
		if err == nil {
			current = parsed
		}
	}

	current++
	entry, ok := s.get(key)
	if !ok {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	entry.value = []byte(strconv.FormatInt(current, 10))
	return current, nil
}

// SetExpiry resets the ttl of an existing key.
func (s *MemoryStore) SetExpiry(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.get(key); ok {
		entry.expiresAt = s.deadline(ttl)
	}
	return nil
}

// ListPushFront prepends a value to the list at key.
func (s *MemoryStore) ListPushFront(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(key)
	if !ok {
		entry = &memoryEntry{}
		s.entries[key] = entry
	}
	entry.list = append([]string{value}, entry.list...)
	return nil
}

// ListTrim keeps only the list elements within [start, stop].
func (s *MemoryStore) ListTrim(_ context.Context, key string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(key)
	if !ok {
		return nil
	}
	entry.list = sliceRange(entry.list, start, stop)
	return nil
}

// ListRange returns the list elements within [start, stop].
func (s *MemoryStore) ListRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(key)
	if !ok {
		return nil, nil
	}
	out := sliceRange(entry.list, start, stop)
	result := make([]string, len(out))
	copy(result, out)
	return result, nil
}

// KeysByPrefix enumerates all live keys starting with prefix.
func (s *MemoryStore) KeysByPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var keys []string
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

// sliceRange applies Redis LRANGE/LTRIM index semantics to a slice:
// negative indexes count from the end, out-of-range indexes clamp.
func sliceRange(list []string, start, stop int64) []string {
	n := int64(len(list))
	if n == 0 {
		return nil
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil
	}
	return list[start : stop+1]
}
