package datasources

import (
	"context"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

// ProfileVectorIndex is an optional coarse recall layer: an approximate
// nearest-neighbour index over profile photo vectors, consulted before
// exact scoring when candidate pools are large.
type ProfileVectorIndex interface {
	UpsertProfileVector(ctx context.Context, userID string, vector []float64) error

	// ListSimilarProfiles returns up to limit profiles near vector,
	// excluding the given user IDs.
	ListSimilarProfiles(ctx context.Context, vector []float64, excludeUserIDs []string, limit int) ([]domain.SimilarProfile, error)
}

// NullProfileVectorIndex is a null implementation of ProfileVectorIndex.
// With no recall layer the full filtered pool is scored exactly.
type NullProfileVectorIndex struct{}

var _ ProfileVectorIndex = NullProfileVectorIndex{}

func (NullProfileVectorIndex) UpsertProfileVector(_ context.Context, _ string, _ []float64) error {
	return nil
}

func (NullProfileVectorIndex) ListSimilarProfiles(_ context.Context, _ []float64, _ []string, _ int) ([]domain.SimilarProfile, error) {
	return nil, nil
}
