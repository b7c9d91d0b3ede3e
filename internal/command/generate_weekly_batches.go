package command

import (
	"context"
	"fmt"
	"time"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// GenerateWeeklyBatchesRequest is the request for the GenerateWeeklyBatches command.
type GenerateWeeklyBatchesRequest struct {
	UserID string
}

// GenerateWeeklyBatches draws a user's full week of batches from one
// scored pool: candidates already surfaced within the lookback window are
// excluded up front, and no candidate appears in two batches of the same
// week.
type GenerateWeeklyBatches struct {
	Matches *GenerateMatches
	History datasources.MatchedCandidateLister

	// HistoryLookbackDays is how far back previously surfaced
	// candidates stay excluded from new batches.
	HistoryLookbackDays int
}

// NewGenerateWeeklyBatches creates a properly initialized GenerateWeeklyBatches command.
func NewGenerateWeeklyBatches(
	matches *GenerateMatches,
	history datasources.MatchedCandidateLister,
	historyLookbackDays int,
) *GenerateWeeklyBatches {
	return &GenerateWeeklyBatches{
		Matches:             matches,
		History:             history,
		HistoryLookbackDays: historyLookbackDays,
	}
}

// Execute generates up to a week's worth of batches for the user.
func (c *GenerateWeeklyBatches) Execute(ctx context.Context, req GenerateWeeklyBatchesRequest) ([]domain.CandidateBatch, error) {
	since := c.Matches.Now().AddDate(0, 0, -c.HistoryLookbackDays)
	recentIDs, err := c.History.ListMatchedCandidateIDs(ctx, req.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("listing recently matched candidates: %w", err)
	}

	exclude := make(map[string]struct{}, len(recentIDs))
	for _, id := range recentIDs {
		exclude[id] = struct{}{}
	}

	_, tier, scored, err := c.Matches.scoredPool(ctx, req.UserID, exclude)
	if err != nil {
		return nil, err
	}

	return domain.PartitionWeeklyBatches(scored, tier), nil
}

// MatchRecordsForBatches flattens weekly batches into persistable records
// with staggered live windows: batch i is live for [now+i*ttl, now+(i+1)*ttl).
func MatchRecordsForBatches(
	userID string,
	batches []domain.CandidateBatch,
	now time.Time,
	ttl time.Duration,
	newID func() string,
) []domain.MatchRecord {
	var records []domain.MatchRecord
	for i, batch := range batches {
		activeFrom := now.Add(time.Duration(i) * ttl)
		expiresAt := activeFrom.Add(ttl)
		for _, sc := range batch {
			records = append(records, domain.MatchRecord{
				ID:          newID(),
				UserID:      userID,
				CandidateID: sc.CandidateID,
				Score:       sc.Score,
				CreatedAt:   activeFrom,
				ExpiresAt:   expiresAt,
			})
		}
	}
	return records
}
