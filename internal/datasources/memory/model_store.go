package memory

import (
	"context"
	"sync"

	"github.com/noswipe/noswipe-backend/internal/datasources"
)

// ModelStore keeps encoded preference model artifacts in memory.
type ModelStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

var _ datasources.ModelStore = (*ModelStore)(nil)

func NewModelStore() *ModelStore {
	return &ModelStore{artifacts: make(map[string][]byte)}
}

func (s *ModelStore) GetModel(_ context.Context, userID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.artifacts[userID]
	if !ok {
		return nil, datasources.ErrModelNotFound
	}
	out := make([]byte, len(artifact))
	copy(out, artifact)
	return out, nil
}

func (s *ModelStore) PutModel(_ context.Context, userID string, artifact []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(artifact))
	copy(stored, artifact)
	s.artifacts[userID] = stored
	return nil
}

func (s *ModelStore) DeleteModel(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.artifacts, userID)
	return nil
}

func (s *ModelStore) ModelExists(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.artifacts[userID]
	return ok, nil
}
