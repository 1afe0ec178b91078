package comment

import (
	"context"
	"sync"
)

// MemoryStore keeps comments in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	comments []Comment
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, c Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, c)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Comment, len(s.comments))
	copy(out, s.comments)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = nil
	return nil
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
