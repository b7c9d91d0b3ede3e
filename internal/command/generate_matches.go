package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// GenerateMatchesRequest is the request for the GenerateMatches command.
type GenerateMatchesRequest struct {
	UserID string
}

// MatchingConfig holds the pool and filter configuration shared by the
// matching commands.
type MatchingConfig struct {
	// ActiveWindowDays is how recently a candidate must have been active.
	ActiveWindowDays int

	// CooldownDays is how long a rejected pair stays unmatchable.
	CooldownDays int

	// CandidatePoolLimit caps the raw pool fetched per user.
	CandidatePoolLimit int
}

// GenerateMatches produces one ranked candidate batch for a user: hard
// filter, rejection cooldown, exact compatibility scoring, adaptive
// threshold selection.
type GenerateMatches struct {
	Profiles   datasources.ProfileRepository
	Models     datasources.ModelStore
	Extractor  datasources.FeatureExtractor
	Rejections datasources.RejectionChecker
	Composite  *domain.CompositeModel
	Config     MatchingConfig
	Now        func() time.Time

	// Recall optionally narrows the raw pool to profiles near the user's
	// photo vector before exact scoring. Nil skips recall.
	Recall datasources.ProfileVectorIndex
}

// NewGenerateMatches creates a properly initialized GenerateMatches command.
func NewGenerateMatches(
	profiles datasources.ProfileRepository,
	models datasources.ModelStore,
	extractor datasources.FeatureExtractor,
	rejections datasources.RejectionChecker,
	composite *domain.CompositeModel,
	config MatchingConfig,
) *GenerateMatches {
	return &GenerateMatches{
		Profiles:   profiles,
		Models:     models,
		Extractor:  extractor,
		Rejections: rejections,
		Composite:  composite,
		Config:     config,
		Now:        time.Now,
	}
}

// Execute generates one batch for the user.
func (c *GenerateMatches) Execute(ctx context.Context, req GenerateMatchesRequest) (domain.CandidateBatch, error) {
	_, tier, scored, err := c.scoredPool(ctx, req.UserID, nil)
	if err != nil {
		return nil, err
	}

	return domain.SelectBatch(scored, tier), nil
}

// scoredPool fetches, filters and scores the user's candidate pool,
// excluding candidate IDs in exclude.
func (c *GenerateMatches) scoredPool(
	ctx context.Context,
	userID string,
	exclude map[string]struct{},
) (domain.User, domain.TierConfig, []domain.ScoredCandidate, error) {
	logger := domain.LoggerFromContext(ctx)
	now := c.Now()

	user, err := c.Profiles.FetchUser(ctx, userID)
	if err != nil {
		return domain.User{}, domain.TierConfig{}, nil, fmt.Errorf("fetching user: %w", err)
	}
	tier := domain.TierFor(user)

	userModel, err := loadPreferenceModel(ctx, c.Models, c.Extractor.Version(), userID)
	if err != nil {
		var verErr *domain.ModelVersionError
		if errors.Is(err, datasources.ErrModelNotFound) || errors.As(err, &verErr) {
			return domain.User{}, domain.TierConfig{}, nil,
				fmt.Errorf("user %s is not calibrated: %w", userID, domain.ErrNotFitted)
		}
		return domain.User{}, domain.TierConfig{}, nil, err
	}

	userVector, err := primaryPhotoVector(ctx, c.Profiles, c.Extractor, userID)
	if err != nil {
		return domain.User{}, domain.TierConfig{}, nil, err
	}
	userInterests, err := c.Profiles.FetchInterestVector(ctx, userID)
	if err != nil {
		return domain.User{}, domain.TierConfig{}, nil, fmt.Errorf("fetching interests: %w", err)
	}

	pool, err := c.Profiles.ListCandidates(ctx, userID, c.Config.CandidatePoolLimit)
	if err != nil {
		return domain.User{}, domain.TierConfig{}, nil, fmt.Errorf("listing candidates: %w", err)
	}
	if c.Recall != nil {
		pool = c.recallPool(ctx, userID, userVector, pool)
	}

	candidates := domain.FilterCandidates(user, pool, now, c.Config.ActiveWindowDays)

	cooldownStart := now.AddDate(0, 0, -c.Config.CooldownDays)

	var scored []domain.ScoredCandidate
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return domain.User{}, domain.TierConfig{}, nil, err
		}
		if _, skip := exclude[candidate.ID]; skip {
			continue
		}

		rejected, err := c.Rejections.RejectedSince(ctx, userID, candidate.ID, cooldownStart)
		if err != nil {
			return domain.User{}, domain.TierConfig{}, nil, fmt.Errorf("checking rejection cooldown: %w", err)
		}
		if rejected {
			continue
		}

		score, err := c.scorePair(ctx, userModel, userVector, userInterests, candidate)
		if err != nil {
			logger.DebugContext(ctx, "skipping unscorable candidate",
				"user_id", userID,
				"candidate_id", candidate.ID,
				"error", err)
			continue
		}

		scored = append(scored, domain.ScoredCandidate{CandidateID: candidate.ID, Score: score})
	}

	return user, tier, scored, nil
}

// recallPool narrows the pool to profiles the vector index considers near
// the user. Recall is a best-effort optimization: on error, or when the
// index has nothing for this user, the full pool is scored exactly.
func (c *GenerateMatches) recallPool(
	ctx context.Context,
	userID string,
	userVector []float64,
	pool []domain.User,
) []domain.User {
	similar, err := c.Recall.ListSimilarProfiles(ctx, userVector, []string{userID}, c.Config.CandidatePoolLimit)
	if err != nil {
		domain.LoggerFromContext(ctx).WarnContext(ctx, "vector recall failed, scoring full pool",
			"user_id", userID,
			"error", err)
		return pool
	}
	if len(similar) == 0 {
		return pool
	}

	near := make(map[string]struct{}, len(similar))
	for _, profile := range similar {
		near[profile.UserID] = struct{}{}
	}

	recalled := make([]domain.User, 0, len(similar))
	for _, candidate := range pool {
		if _, ok := near[candidate.ID]; ok {
			recalled = append(recalled, candidate)
		}
	}
	return recalled
}

// scorePair computes the mutual score for one candidate. Candidates that
// cannot be scored (no model, no photos, stale artifact) are reported as
// errors for the caller to skip.
func (c *GenerateMatches) scorePair(
	ctx context.Context,
	userModel *domain.PreferenceModel,
	userVector, userInterests []float64,
	candidate domain.User,
) (float64, error) {
	candidateModel, err := loadPreferenceModel(ctx, c.Models, c.Extractor.Version(), candidate.ID)
	if err != nil {
		return 0, err
	}

	candidateVector, err := primaryPhotoVector(ctx, c.Profiles, c.Extractor, candidate.ID)
	if err != nil {
		return 0, err
	}

	candidateInterests, err := c.Profiles.FetchInterestVector(ctx, candidate.ID)
	if err != nil {
		return 0, fmt.Errorf("fetching interests for %s: %w", candidate.ID, err)
	}

	return c.Composite.MutualCompatibility(
		userModel, candidateModel,
		userVector, candidateVector,
		userInterests, candidateInterests,
	)
}
