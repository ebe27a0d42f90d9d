package store

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory. Used for local development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, nil
	}
	return Entry{Value: append([]byte(nil), e.Value...), Revision: e.Revision}, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.entries[key].Revision + 1
	s.entries[key] = Entry{Value: append([]byte(nil), value...), Revision: rev}
	return rev, nil
}

func (s *MemoryStore) PutIf(_ context.Context, key string, value []byte, revision int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[key].Revision != revision {
		return 0, ErrConflict
	}
	rev := revision + 1
	s.entries[key] = Entry{Value: append([]byte(nil), value...), Revision: rev}
	return rev, nil
}

func (s *MemoryStore) Close() error { return nil }
