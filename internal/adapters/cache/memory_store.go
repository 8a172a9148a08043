package cache

import (
	"context"
	"sort"
	"spacetime-service/internal/ports"
	"sync"
)

// MemoryStore is a process-local ResultStore.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, key)
	return nil
}

// Scan visits keys in sorted order over a snapshot, so fn may modify the store.
func (s *MemoryStore) Scan(ctx context.Context, fn func(key string, size int64) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.m))
	sizes := make(map[string]int64, len(s.m))
	for k, v := range s.m {
		keys = append(keys, k)
		sizes[k] = int64(len(v))
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(k, sizes[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Describe() string { return "memory" }
