package cache

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It uses a map for storage and provides thread-safe operations via RWMutex.
//
// Entries live only as long as the process. Useful for tests and for
// embedders that want per-process caching without touching the filesystem.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

type memoryEntry struct {
	content []byte
	modTime time.Time
}

// NewMemoryStore creates a new in-memory store stamped with time.Now.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a new in-memory store whose write
// timestamps come from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		now:  now,
	}
}

func (s *MemoryStore) Stat(key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[key]
	if !exists {
		return Entry{}, false, nil
	}
	return s.entry(key, e), true, nil
}

func (s *MemoryStore) Open(key string) (io.ReadCloser, error) {
	s.mu.RLock()
	e, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		return nil, &StoreError{
			Message:   "no entry",
			Retryable: false,
			Cause:     ErrCauseNotFound,
			Key:       key,
		}
	}
	// content is never mutated after insertion, so readers can share it
	return io.NopCloser(bytes.NewReader(e.content)), nil
}

// Write reads r to the end before taking the lock, so a failing or slow
// reader never leaves a partial entry behind.
func (s *MemoryStore) Write(key string, r io.Reader) (Entry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Entry{}, &StoreError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
			Key:       key,
		}
	}

	e := memoryEntry{content: content, modTime: s.now()}

	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()

	return s.entry(key, e), nil
}

// Clear removes all entries from the store.
// This method is primarily useful for testing.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]memoryEntry)
}

// Size returns the number of entries in the store.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) entry(key string, e memoryEntry) Entry {
	return Entry{
		Key:      key,
		Location: "memory://" + key,
		ModTime:  e.modTime,
		Size:     int64(len(e.content)),
	}
}
