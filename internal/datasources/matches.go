package datasources

import (
	"context"
	"time"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

// MatchRepository combines all match lifecycle interfaces.
type MatchRepository interface {
	MatchRecordCreator
	ActiveMatchLister
	MatchedCandidateLister
}

type MatchRecordCreator interface {
	CreateMatchRecords(ctx context.Context, records []domain.MatchRecord) error
}

type ActiveMatchLister interface {
	ListActiveMatches(ctx context.Context, userID string, now time.Time) ([]domain.MatchRecord, error)
}

// MatchedCandidateLister returns candidate IDs already surfaced to the
// user within the lookback window, so fresh batches never repeat them.
type MatchedCandidateLister interface {
	ListMatchedCandidateIDs(ctx context.Context, userID string, since time.Time) ([]string, error)
}

// RejectionChecker reports whether either side of a pair rejected the
// other since the given time. The check is symmetric.
type RejectionChecker interface {
	RejectedSince(ctx context.Context, userID, candidateID string, since time.Time) (bool, error)
}

type RejectionRecorder interface {
	RecordRejection(ctx context.Context, userID, targetID string, at time.Time) error
}

// GenerationStatusRepository tracks when each user last had weekly
// batches generated.
type GenerationStatusRepository interface {
	ListUsersDueForGeneration(ctx context.Context, generatedBefore time.Time, limit int) ([]string, error)
	MarkGenerated(ctx context.Context, userID string, at time.Time) error
}

// NullMatchRepository is a null implementation of MatchRepository and the
// rejection interfaces.
type NullMatchRepository struct{}

var _ MatchRepository = NullMatchRepository{}
var _ RejectionChecker = NullMatchRepository{}
var _ RejectionRecorder = NullMatchRepository{}

func (NullMatchRepository) CreateMatchRecords(_ context.Context, _ []domain.MatchRecord) error {
	return nil
}

func (NullMatchRepository) ListActiveMatches(_ context.Context, _ string, _ time.Time) ([]domain.MatchRecord, error) {
	return nil, nil
}

func (NullMatchRepository) ListMatchedCandidateIDs(_ context.Context, _ string, _ time.Time) ([]string, error) {
	return nil, nil
}

func (NullMatchRepository) RejectedSince(_ context.Context, _, _ string, _ time.Time) (bool, error) {
	return false, nil
}

func (NullMatchRepository) RecordRejection(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}
