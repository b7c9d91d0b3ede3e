package datasources

import (
	"context"
	"time"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

// DefaultFeedbackWindowCapacity bounds each user's stored feedback
// history: once full, the oldest event is evicted on append.
const DefaultFeedbackWindowCapacity = 100

// FeedbackWindowStore persists each user's bounded, time-ordered feedback
// window.
type FeedbackWindowStore interface {
	FeedbackAppender
	FeedbackLister
}

type FeedbackAppender interface {
	AppendFeedback(ctx context.Context, event domain.FeedbackEvent) error
}

type FeedbackLister interface {
	// ListFeedback returns the user's window, oldest first.
	ListFeedback(ctx context.Context, userID string) ([]domain.FeedbackEvent, error)

	// ListFeedbackSince returns the window events at or after since,
	// oldest first.
	ListFeedbackSince(ctx context.Context, userID string, since time.Time) ([]domain.FeedbackEvent, error)
}

// RetrainStatusRepository tracks which users have accumulated enough
// recent feedback to warrant recalibration.
type RetrainStatusRepository interface {
	MarkRetrainDue(ctx context.Context, userID string, at time.Time) error
	ClearRetrainDue(ctx context.Context, userID string) error
	ListRetrainDueUsers(ctx context.Context, limit int) ([]string, error)
}

// NullFeedbackWindowStore is a null implementation of FeedbackWindowStore.
type NullFeedbackWindowStore struct{}

var _ FeedbackWindowStore = NullFeedbackWindowStore{}

func (NullFeedbackWindowStore) AppendFeedback(_ context.Context, _ domain.FeedbackEvent) error {
	return nil
}

func (NullFeedbackWindowStore) ListFeedback(_ context.Context, _ string) ([]domain.FeedbackEvent, error) {
	return nil, nil
}

func (NullFeedbackWindowStore) ListFeedbackSince(_ context.Context, _ string, _ time.Time) ([]domain.FeedbackEvent, error) {
	return nil, nil
}
