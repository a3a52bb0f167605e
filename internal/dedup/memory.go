package dedup

import (
	"context"
	"sync"
)

// MemoryStore keeps the seen-set in process memory. Identity is lost on
// restart; use FileStore or FirestoreStore when that matters.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]bool)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id], nil
}

func (s *MemoryStore) MarkSeen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = true
	return nil
}

func (s *MemoryStore) MarkIfUnseen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids[id] {
		return ErrAlreadySeen
	}
	s.ids[id] = true
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids), nil
}

func (s *MemoryStore) Close() error { return nil }
