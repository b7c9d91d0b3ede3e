package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// ListCurrentMatchesRequest is the request for the ListCurrentMatches command.
type ListCurrentMatchesRequest struct {
	UserID string
}

// ListCurrentMatches returns the user's live match batch, generating and
// persisting one on demand when none is live.
type ListCurrentMatches struct {
	Records  datasources.MatchRepository
	Generate *GenerateMatches
	MatchTTL time.Duration
	Now      func() time.Time
}

// NewListCurrentMatches creates a properly initialized ListCurrentMatches command.
func NewListCurrentMatches(
	records datasources.MatchRepository,
	generate *GenerateMatches,
	matchTTL time.Duration,
) *ListCurrentMatches {
	return &ListCurrentMatches{
		Records:  records,
		Generate: generate,
		MatchTTL: matchTTL,
		Now:      time.Now,
	}
}

// Execute lists the live batch, generating one if needed.
func (c *ListCurrentMatches) Execute(ctx context.Context, req ListCurrentMatchesRequest) ([]domain.MatchRecord, error) {
	now := c.Now()

	active, err := c.Records.ListActiveMatches(ctx, req.UserID, now)
	if err != nil {
		return nil, fmt.Errorf("listing active matches: %w", err)
	}
	if len(active) > 0 {
		return active, nil
	}

	batch, err := c.Generate.Execute(ctx, GenerateMatchesRequest{UserID: req.UserID})
	if err != nil {
		return nil, fmt.Errorf("generating batch on demand: %w", err)
	}
	if len(batch) == 0 {
		return nil, nil
	}

	records := MatchRecordsForBatches(req.UserID, []domain.CandidateBatch{batch}, now, c.MatchTTL, uuid.NewString)
	if err := c.Records.CreateMatchRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("persisting generated batch: %w", err)
	}

	return records, nil
}
