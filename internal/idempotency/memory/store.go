package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/cartwidget/internal/cart/ports"
)

// Store retains API responses so a retried request with the same key is replayed, not re-applied.
type Store struct {
	mu    sync.RWMutex
	items map[string]ports.StoredResponse
}

// NewStore creates a new in-memory idempotency store.
func NewStore() *Store {
	return &Store{items: make(map[string]ports.StoredResponse)}
}

// Get returns the stored response for a given key if present.
func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	copy := value
	return &copy, nil
}

// Save stores the response for a key unless one is already stored.
func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; exists {
		return nil
	}
	body := make([]byte, len(response.Body))
	copy(body, response.Body)
	response.Body = body
	s.items[key] = response
	return nil
}
