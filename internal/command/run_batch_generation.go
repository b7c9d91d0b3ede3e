package command

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// RunBatchGenerationRequest is the request for the RunBatchGeneration command.
// This command takes no parameters beyond context.
type RunBatchGenerationRequest struct{}

// RunBatchGenerationResponse summarizes one generation run.
type RunBatchGenerationResponse struct {
	UsersProcessed int
	UsersFailed    int
}

// RunBatchGenerationConfig holds configuration for background batch generation.
type RunBatchGenerationConfig struct {
	// GenerationInterval is how long a user's batches stay fresh before
	// they are due for regeneration.
	GenerationInterval time.Duration

	// MatchTTL is the live window of each batch's match records.
	MatchTTL time.Duration

	// Parallelism bounds concurrent per-user generation.
	Parallelism int

	// UserLimit caps how many due users one run processes.
	UserLimit int
}

// RunBatchGeneration generates and persists weekly batches for every user
// due for regeneration. Users are independent, so failures are logged and
// counted rather than aborting the run.
type RunBatchGeneration struct {
	Weekly  *GenerateWeeklyBatches
	Records datasources.MatchRecordCreator
	Status  datasources.GenerationStatusRepository
	Config  RunBatchGenerationConfig
	Now     func() time.Time
}

// NewRunBatchGeneration creates a properly initialized RunBatchGeneration command.
func NewRunBatchGeneration(
	weekly *GenerateWeeklyBatches,
	records datasources.MatchRecordCreator,
	status datasources.GenerationStatusRepository,
	config RunBatchGenerationConfig,
) *RunBatchGeneration {
	return &RunBatchGeneration{
		Weekly:  weekly,
		Records: records,
		Status:  status,
		Config:  config,
		Now:     time.Now,
	}
}

// Execute runs batch generation for all users currently due.
func (c *RunBatchGeneration) Execute(ctx context.Context, _ RunBatchGenerationRequest) (RunBatchGenerationResponse, error) {
	logger := domain.LoggerFromContext(ctx)
	now := c.Now()

	dueBefore := now.Add(-c.Config.GenerationInterval)
	userIDs, err := c.Status.ListUsersDueForGeneration(ctx, dueBefore, c.Config.UserLimit)
	if err != nil {
		return RunBatchGenerationResponse{}, fmt.Errorf("listing users due for generation: %w", err)
	}

	if len(userIDs) == 0 {
		logger.InfoContext(ctx, "no users due for batch generation")
		return RunBatchGenerationResponse{}, nil
	}

	logger.InfoContext(ctx, "starting batch generation", "user_count", len(userIDs))

	var failCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Config.Parallelism)
	for _, userID := range userIDs {
		g.Go(func() error {
			if err := c.generateForUser(gctx, userID, now); err != nil {
				logger.ErrorContext(gctx, "failed to generate batches for user",
					"user_id", userID, "error", err)
				failCount.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunBatchGenerationResponse{}, fmt.Errorf("waiting for batch generation workers: %w", err)
	}

	failed := int(failCount.Load())
	resp := RunBatchGenerationResponse{
		UsersProcessed: len(userIDs) - failed,
		UsersFailed:    failed,
	}

	logger.InfoContext(ctx, "batch generation complete",
		"success_count", resp.UsersProcessed, "fail_count", resp.UsersFailed)

	return resp, nil
}

// generateForUser generates and persists one user's weekly batches.
func (c *RunBatchGeneration) generateForUser(ctx context.Context, userID string, now time.Time) error {
	logger := domain.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "generating batches for user", "user_id", userID)

	batches, err := c.Weekly.Execute(ctx, GenerateWeeklyBatchesRequest{UserID: userID})
	if err != nil {
		return fmt.Errorf("generating weekly batches: %w", err)
	}

	records := MatchRecordsForBatches(userID, batches, now, c.Config.MatchTTL, uuid.NewString)
	if err := c.Records.CreateMatchRecords(ctx, records); err != nil {
		return fmt.Errorf("persisting match records: %w", err)
	}

	if err := c.Status.MarkGenerated(ctx, userID, now); err != nil {
		return fmt.Errorf("marking user generated: %w", err)
	}

	if len(records) == 0 {
		logger.DebugContext(ctx, "no batches generated for user", "user_id", userID)
	}
	return nil
}
