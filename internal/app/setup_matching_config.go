package app

import (
	"time"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

const (
	// interestCorpusLimit caps the population sample used to fit the
	// interest normalization at startup.
	interestCorpusLimit = 1000

	// matchHistoryLookbackDays is how far back previously matched
	// candidates stay excluded from new weekly batches.
	matchHistoryLookbackDays = 30

	// recalibrationUserLimit caps how many retrain-due users one
	// recalibration run processes.
	recalibrationUserLimit = 200
)

// DefaultMatchingConfig returns the default config for candidate pool
// filtering and scoring.
func DefaultMatchingConfig() command.MatchingConfig {
	return command.MatchingConfig{
		ActiveWindowDays:   7,
		CooldownDays:       14,
		CandidatePoolLimit: 500,
	}
}

// DefaultProcessFeedbackConfig returns the default config for feedback
// ingestion.
func DefaultProcessFeedbackConfig() command.ProcessFeedbackConfig {
	return command.ProcessFeedbackConfig{
		RetrainThreshold: domain.DefaultRetrainThreshold,
	}
}

// DefaultRunBatchGenerationConfig returns the default config for background
// batch generation.
func DefaultRunBatchGenerationConfig() command.RunBatchGenerationConfig {
	return command.RunBatchGenerationConfig{
		GenerationInterval: 7 * 24 * time.Hour,
		MatchTTL:           48 * time.Hour,
		Parallelism:        4,
		UserLimit:          500,
	}
}
