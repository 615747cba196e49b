package memory

import (
	"context"
	"sync"
)

// SnapshotStore provides an in-memory key/value slot useful for local development and tests.
type SnapshotStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewSnapshotStore constructs a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{slots: make(map[string]string)}
}

// Get returns the payload stored under key.
func (s *SnapshotStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.slots[key]
	return payload, ok, nil
}

// Put stores or overwrites the payload under key.
func (s *SnapshotStore) Put(_ context.Context, key string, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = payload
	return nil
}
