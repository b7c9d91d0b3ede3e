package memory

import (
	"context"
	"sync"
	"time"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// FeedbackWindowStore keeps each user's feedback window in memory with
// FIFO eviction at capacity. Suitable for tests and single-process
// deployments.
type FeedbackWindowStore struct {
	capacity int

	mu      sync.RWMutex
	windows map[string][]domain.FeedbackEvent
}

var _ datasources.FeedbackWindowStore = (*FeedbackWindowStore)(nil)

// NewFeedbackWindowStore creates a store evicting beyond capacity;
// capacity <= 0 uses the default.
func NewFeedbackWindowStore(capacity int) *FeedbackWindowStore {
	if capacity <= 0 {
		capacity = datasources.DefaultFeedbackWindowCapacity
	}
	return &FeedbackWindowStore{
		capacity: capacity,
		windows:  make(map[string][]domain.FeedbackEvent),
	}
}

func (s *FeedbackWindowStore) AppendFeedback(_ context.Context, event domain.FeedbackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := append(s.windows[event.ActorID], event)
	if len(window) > s.capacity {
		window = window[len(window)-s.capacity:]
	}
	s.windows[event.ActorID] = window
	return nil
}

func (s *FeedbackWindowStore) ListFeedback(_ context.Context, userID string) ([]domain.FeedbackEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := s.windows[userID]
	out := make([]domain.FeedbackEvent, len(window))
	copy(out, window)
	return out, nil
}

func (s *FeedbackWindowStore) ListFeedbackSince(_ context.Context, userID string, since time.Time) ([]domain.FeedbackEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.FeedbackEvent
	for _, ev := range s.windows[userID] {
		if !ev.At.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}
