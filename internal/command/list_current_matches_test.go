package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

func (w *matchWorld) listCurrent() *ListCurrentMatches {
	c := NewListCurrentMatches(w.matches, w.generate(), 48*time.Hour)
	c.Now = func() time.Time { return w.now }
	return c
}

func TestListCurrentMatches_Execute(t *testing.T) {
	t.Run("returns_live_batch_without_generating", func(t *testing.T) {
		w := newMatchWorld(t)
		w.addUser(t, "u", similarInterests, nil)
		w.matches.records = []domain.MatchRecord{
			{
				ID:          "rec-1",
				UserID:      "u",
				CandidateID: "h1",
				Score:       0.9,
				CreatedAt:   w.now.Add(-time.Hour),
				ExpiresAt:   w.now.Add(47 * time.Hour),
			},
			{
				ID:          "rec-2",
				UserID:      "someone-else",
				CandidateID: "h2",
				Score:       0.9,
				CreatedAt:   w.now.Add(-time.Hour),
				ExpiresAt:   w.now.Add(47 * time.Hour),
			},
		}

		records, err := w.listCurrent().Execute(context.Background(), ListCurrentMatchesRequest{UserID: "u"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "rec-1", records[0].ID)
	})

	t.Run("future_batches_are_not_live_yet", func(t *testing.T) {
		w := newMatchWorld(t)
		w.addUser(t, "u", similarInterests, nil)
		w.addUser(t, "h1", similarInterests, nil)
		w.matches.records = []domain.MatchRecord{{
			ID:          "rec-future",
			UserID:      "u",
			CandidateID: "h2",
			Score:       0.9,
			CreatedAt:   w.now.Add(24 * time.Hour),
			ExpiresAt:   w.now.Add(72 * time.Hour),
		}}

		records, err := w.listCurrent().Execute(context.Background(), ListCurrentMatchesRequest{UserID: "u"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "h1", records[0].CandidateID, "a fresh batch is generated while the staged one waits")
	})

	t.Run("generates_and_persists_on_demand", func(t *testing.T) {
		w := newMatchWorld(t)
		w.addUser(t, "u", similarInterests, nil)
		for _, id := range []string{"h1", "h2", "h3"} {
			w.addUser(t, id, similarInterests, nil)
		}

		records, err := w.listCurrent().Execute(context.Background(), ListCurrentMatchesRequest{UserID: "u"})
		require.NoError(t, err)
		require.Len(t, records, 3)

		for _, rec := range records {
			assert.Equal(t, "u", rec.UserID)
			assert.Equal(t, w.now, rec.CreatedAt)
			assert.Equal(t, w.now.Add(48*time.Hour), rec.ExpiresAt)
		}

		// Persisted, so the next call serves the same batch.
		again, err := w.listCurrent().Execute(context.Background(), ListCurrentMatchesRequest{UserID: "u"})
		require.NoError(t, err)
		assert.ElementsMatch(t, records, again)
	})

	t.Run("empty_pool_returns_no_matches", func(t *testing.T) {
		w := newMatchWorld(t)
		w.addUser(t, "u", similarInterests, nil)

		records, err := w.listCurrent().Execute(context.Background(), ListCurrentMatchesRequest{UserID: "u"})
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Empty(t, w.matches.records)
	})

	t.Run("uncalibrated_user_surfaces_not_fitted", func(t *testing.T) {
		w := newMatchWorld(t)
		w.addUser(t, "u", similarInterests, nil)
		w.addUser(t, "h1", similarInterests, nil)
		require.NoError(t, w.models.DeleteModel(context.Background(), "u"))

		_, err := w.listCurrent().Execute(context.Background(), ListCurrentMatchesRequest{UserID: "u"})
		require.ErrorIs(t, err, domain.ErrNotFitted)
	})
}
