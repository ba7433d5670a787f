package secrets

import (
	"context"
	"sync"
)

// MemoryStore keeps secrets for the lifetime of the process only.
type MemoryStore struct {
	mtx    sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.values[key] = value
	return nil
}
