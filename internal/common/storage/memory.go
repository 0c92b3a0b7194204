package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and storage-less runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string

	// failRemaining makes Set return failErr for the next n calls
	// (-1 means every call); session store retry-path tests use it.
	failRemaining int
	failErr       error
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRemaining != 0 {
		if s.failRemaining > 0 {
			s.failRemaining--
		}
		return s.failErr
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemoryStore) Close() error { return nil }

// FailNextWrites makes the next n Set calls fail with err (n = -1 for all).
// Deletes still work, which mirrors a full-quota backend that can free space
// but not accept new data.
func (s *MemoryStore) FailNextWrites(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRemaining = n
	s.failErr = err
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
