package sessionstore

import (
	"context"
	"sync"

	"giftbasket/internal/domain"
	"giftbasket/internal/ports"
)

// MemoryStore is the in-process session store. Safe for concurrent use by
// simultaneous requests; contents live until the process restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]string),
	}
}

var _ ports.SessionStore = (*MemoryStore)(nil)

func (s *MemoryStore) Get(ctx context.Context, shop string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[shop]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return token, nil
}

func (s *MemoryStore) Put(ctx context.Context, shop string, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[shop] = accessToken
	return nil
}

func (s *MemoryStore) Has(ctx context.Context, shop string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tokens[shop]
	return ok, nil
}
