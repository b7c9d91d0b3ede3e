package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCandidates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seeker := User{
		ID: "seeker",
		Preferences: MatchPreferences{
			MinAge:   25,
			MaxAge:   35,
			Gender:   GenderFemale,
			Location: "berlin",
		},
	}

	base := User{
		ID:         "candidate",
		Age:        30,
		Gender:     GenderFemale,
		Location:   "berlin",
		LastActive: now.AddDate(0, 0, -1),
	}

	cases := []struct {
		name     string
		mutate   func(u *User)
		expected bool
	}{
		{
			name:     "matches_all_criteria",
			mutate:   func(u *User) {},
			expected: true,
		},
		{
			name:     "inactive_beyond_window",
			mutate:   func(u *User) { u.LastActive = now.AddDate(0, 0, -8) },
			expected: false,
		},
		{
			name:     "active_exactly_at_cutoff",
			mutate:   func(u *User) { u.LastActive = now.AddDate(0, 0, -7) },
			expected: true,
		},
		{
			name:     "too_young",
			mutate:   func(u *User) { u.Age = 24 },
			expected: false,
		},
		{
			name:     "too_old",
			mutate:   func(u *User) { u.Age = 36 },
			expected: false,
		},
		{
			name:     "age_at_bounds",
			mutate:   func(u *User) { u.Age = 25 },
			expected: true,
		},
		{
			name:     "wrong_gender",
			mutate:   func(u *User) { u.Gender = GenderMale },
			expected: false,
		},
		{
			name:     "wrong_location",
			mutate:   func(u *User) { u.Location = "hamburg" },
			expected: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := base
			tc.mutate(&candidate)

			got := FilterCandidates(seeker, []User{candidate}, now, DefaultActiveWindowDays)
			if tc.expected {
				require.Len(t, got, 1)
				assert.Equal(t, candidate.ID, got[0].ID)
			} else {
				assert.Empty(t, got)
			}
		})
	}

	t.Run("any_gender_preference_matches_everyone", func(t *testing.T) {
		open := seeker
		open.Preferences.Gender = GenderAny

		male := base
		male.Gender = GenderMale
		nonBinary := base
		nonBinary.Gender = GenderNonBinary

		got := FilterCandidates(open, []User{base, male, nonBinary}, now, DefaultActiveWindowDays)
		assert.Len(t, got, 3)
	})
}

func TestSelectBatch(t *testing.T) {
	scored := func(scores ...float64) []ScoredCandidate {
		out := make([]ScoredCandidate, len(scores))
		for i, s := range scores {
			out[i] = ScoredCandidate{CandidateID: string(rune('a' + i)), Score: s}
		}
		return out
	}

	cases := []struct {
		name     string
		scored   []ScoredCandidate
		tier     TierConfig
		expected []float64
	}{
		{
			name:     "empty_pool",
			scored:   nil,
			tier:     FreeTier,
			expected: nil,
		},
		{
			name:     "plenty_above_initial_threshold",
			scored:   scored(0.82, 0.95, 0.81, 0.9),
			tier:     FreeTier,
			expected: []float64{0.95, 0.9, 0.82},
		},
		{
			name:   "threshold_relaxes_to_fill_batch",
			scored: scored(0.85, 0.72, 0.71),
			tier:   FreeTier,
			// 0.8 admits one; relaxing by 0.05 steps reaches 0.70,
			// which admits all three.
			expected: []float64{0.85, 0.72, 0.71},
		},
		{
			name:   "floor_reached_with_partial_batch",
			scored: scored(0.55, 0.52, 0.3),
			tier:   FreeTier,
			// Relaxation clamps at the 0.5 floor; 0.3 never qualifies.
			expected: []float64{0.55, 0.52},
		},
		{
			name:     "all_below_floor_yields_empty",
			scored:   scored(0.49, 0.4, 0.3, 0.2, 0.1, 0.45, 0.35, 0.25, 0.15, 0.05),
			tier:     FreeTier,
			expected: nil,
		},
		{
			name:     "premium_batch_size",
			scored:   scored(0.9, 0.88, 0.86, 0.84, 0.83, 0.82, 0.81),
			tier:     PremiumTier,
			expected: []float64{0.9, 0.88, 0.86, 0.84, 0.83},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batch := SelectBatch(tc.scored, tc.tier)

			require.Len(t, batch, len(tc.expected))
			for i, want := range tc.expected {
				assert.InDelta(t, want, batch[i].Score, 1e-12)
			}
			assert.LessOrEqual(t, len(batch), tc.tier.ProspectsPerBatch)
			for _, sc := range batch {
				assert.GreaterOrEqual(t, sc.Score, CompatibilityFloor)
			}
		})
	}

	t.Run("input_not_mutated", func(t *testing.T) {
		in := scored(0.6, 0.9, 0.7)
		SelectBatch(in, FreeTier)
		assert.Equal(t, 0.6, in[0].Score)
		assert.Equal(t, 0.9, in[1].Score)
		assert.Equal(t, 0.7, in[2].Score)
	})
}

func TestPartitionWeeklyBatches(t *testing.T) {
	pool := func(n int, score float64) []ScoredCandidate {
		out := make([]ScoredCandidate, n)
		for i := range out {
			out[i] = ScoredCandidate{CandidateID: string(rune('A' + i)), Score: score}
		}
		return out
	}

	t.Run("no_candidate_in_two_batches", func(t *testing.T) {
		batches := PartitionWeeklyBatches(pool(8, 0.9), FreeTier)

		require.Len(t, batches, 3)
		assert.Len(t, batches[0], 3)
		assert.Len(t, batches[1], 3)
		assert.Len(t, batches[2], 2)

		seen := map[string]struct{}{}
		for _, batch := range batches {
			for _, sc := range batch {
				_, dup := seen[sc.CandidateID]
				assert.False(t, dup, "candidate %s in two batches", sc.CandidateID)
				seen[sc.CandidateID] = struct{}{}
			}
		}
	})

	t.Run("capped_at_batches_per_week", func(t *testing.T) {
		batches := PartitionWeeklyBatches(pool(26, 0.9), FreeTier)
		assert.Len(t, batches, FreeTier.BatchesPerWeek)
	})

	t.Run("stops_on_empty_batch", func(t *testing.T) {
		batches := PartitionWeeklyBatches(pool(6, 0.2), FreeTier)
		assert.Empty(t, batches)
	})

	t.Run("empty_pool", func(t *testing.T) {
		assert.Empty(t, PartitionWeeklyBatches(nil, FreeTier))
	})
}
