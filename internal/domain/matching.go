package domain

import (
	"sort"
	"time"
)

// TierConfig governs batch sizing and threshold relaxation for one
// subscription tier.
type TierConfig struct {
	BatchesPerWeek    int
	ProspectsPerBatch int
	MinCompatibility  float64
	Decay             float64
}

// Defaults mirroring the product's tier split: premium users get larger,
// more frequent batches and a gentler threshold relaxation.
var (
	FreeTier = TierConfig{
		BatchesPerWeek:    7,
		ProspectsPerBatch: 3,
		MinCompatibility:  0.8,
		Decay:             0.05,
	}
	PremiumTier = TierConfig{
		BatchesPerWeek:    50,
		ProspectsPerBatch: 5,
		MinCompatibility:  0.8,
		Decay:             0.03,
	}
)

// CompatibilityFloor is the hard lower bound the adaptive threshold never
// crosses. Candidates scoring below it are never surfaced, no matter how
// empty the batch.
const CompatibilityFloor = 0.5

// TierFor returns the tier configuration for a user.
func TierFor(u User) TierConfig {
	if u.Premium {
		return PremiumTier
	}
	return FreeTier
}

// DefaultActiveWindowDays is how recently a candidate must have been
// active to be considered.
const DefaultActiveWindowDays = 7

// FilterCandidates applies the hard filter: activity recency, the user's
// age bounds, gender preference (with the `any` wildcard) and exact
// location match. Scoring never sees candidates that fail it.
func FilterCandidates(user User, candidates []User, now time.Time, activeWindowDays int) []User {
	if activeWindowDays <= 0 {
		activeWindowDays = DefaultActiveWindowDays
	}
	activeCutoff := now.AddDate(0, 0, -activeWindowDays)

	var out []User
	for _, c := range candidates {
		if c.LastActive.Before(activeCutoff) {
			continue
		}
		if c.Age < user.Preferences.MinAge || c.Age > user.Preferences.MaxAge {
			continue
		}
		if !genderMatches(user.Preferences.Gender, c.Gender) {
			continue
		}
		if c.Location != user.Preferences.Location {
			continue
		}
		out = append(out, c)
	}
	return out
}

func genderMatches(preferred, actual Gender) bool {
	return preferred == GenderAny || preferred == actual
}

// SelectBatch picks up to tier.ProspectsPerBatch candidates from scored.
// Candidates are ranked stably by descending score; the acceptance
// threshold starts at tier.MinCompatibility and relaxes by tier.Decay
// until enough candidates qualify or the floor is reached. A step that
// would cross the floor stops at it, so a thin pool yields a short or
// empty batch rather than sub-floor matches.
func SelectBatch(scored []ScoredCandidate, tier TierConfig) CandidateBatch {
	if len(scored) == 0 {
		return nil
	}

	ranked := make([]ScoredCandidate, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	threshold := tier.MinCompatibility
	for countAtLeast(ranked, threshold) < tier.ProspectsPerBatch {
		if threshold <= CompatibilityFloor {
			break
		}
		threshold -= tier.Decay
		if threshold < CompatibilityFloor {
			threshold = CompatibilityFloor
		}
	}

	batch := make(CandidateBatch, 0, tier.ProspectsPerBatch)
	for _, sc := range ranked {
		if sc.Score < threshold {
			break
		}
		batch = append(batch, sc)
		if len(batch) == tier.ProspectsPerBatch {
			break
		}
	}
	return batch
}

func countAtLeast(ranked []ScoredCandidate, threshold float64) int {
	n := 0
	for _, sc := range ranked {
		if sc.Score >= threshold {
			n++
		}
	}
	return n
}

// PartitionWeeklyBatches splits a scored pool into at most
// tier.BatchesPerWeek batches, never repeating a candidate across batches.
// An empty batch or an exhausted pool ends the week early.
func PartitionWeeklyBatches(scored []ScoredCandidate, tier TierConfig) []CandidateBatch {
	remaining := make([]ScoredCandidate, len(scored))
	copy(remaining, scored)

	var batches []CandidateBatch
	for len(batches) < tier.BatchesPerWeek && len(remaining) > 0 {
		batch := SelectBatch(remaining, tier)
		if len(batch) == 0 {
			break
		}
		batches = append(batches, batch)

		taken := make(map[string]struct{}, len(batch))
		for _, sc := range batch {
			taken[sc.CandidateID] = struct{}{}
		}
		next := remaining[:0]
		for _, sc := range remaining {
			if _, ok := taken[sc.CandidateID]; !ok {
				next = append(next, sc)
			}
		}
		remaining = next
	}
	return batches
}
