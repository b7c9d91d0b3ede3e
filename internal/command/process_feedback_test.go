package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noswipe/noswipe-backend/internal/datasources/memory"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

func TestProcessFeedback_Execute(t *testing.T) {
	t.Run("scores", func(t *testing.T) {
		testCases := []struct {
			name      string
			kind      string
			wantScore float64
		}{
			{name: "like", kind: "like", wantScore: 1.0},
			{name: "dislike", kind: "dislike", wantScore: -1.0},
			{name: "profile_view", kind: "profile_view", wantScore: 0.2},
			{name: "chat_initiated", kind: "chat_initiated", wantScore: 0.5},
			{name: "chat_replied", kind: "chat_replied", wantScore: 0.8},
			{name: "extended_chat", kind: "extended_chat", wantScore: 1.0},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				window := memory.NewFeedbackWindowStore(10)
				c := NewProcessFeedback(window, newFakeRetrainStatus(), newFakeRejections(),
					ProcessFeedbackConfig{RetrainThreshold: 100})

				res, err := c.Execute(context.Background(), ProcessFeedbackRequest{
					UserID:   "user-1",
					TargetID: "user-2",
					Kind:     tc.kind,
				})
				require.NoError(t, err)
				assert.Equal(t, tc.wantScore, res.Score)
				assert.False(t, res.RetrainDue)

				stored, err := window.ListFeedback(context.Background(), "user-1")
				require.NoError(t, err)
				require.Len(t, stored, 1)
				assert.Equal(t, "user-2", stored[0].TargetID)
				assert.Equal(t, tc.wantScore, stored[0].Score)
			})
		}
	})

	t.Run("unknown_kind_rejected", func(t *testing.T) {
		window := memory.NewFeedbackWindowStore(10)
		c := NewProcessFeedback(window, newFakeRetrainStatus(), newFakeRejections(),
			ProcessFeedbackConfig{RetrainThreshold: 100})

		_, err := c.Execute(context.Background(), ProcessFeedbackRequest{
			UserID:   "user-1",
			TargetID: "user-2",
			Kind:     "superlike",
		})
		var kindErr *domain.InvalidFeedbackKindError
		require.ErrorAs(t, err, &kindErr)

		stored, err := window.ListFeedback(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("dislike_starts_cooldown", func(t *testing.T) {
		rejections := newFakeRejections()
		c := NewProcessFeedback(memory.NewFeedbackWindowStore(10), newFakeRetrainStatus(), rejections,
			ProcessFeedbackConfig{RetrainThreshold: 100})

		_, err := c.Execute(context.Background(), ProcessFeedbackRequest{
			UserID:   "user-1",
			TargetID: "user-2",
			Kind:     "dislike",
		})
		require.NoError(t, err)
		require.Len(t, rejections.recorded, 1)

		rejected, err := rejections.RejectedSince(context.Background(), "user-2", "user-1", time.Time{})
		require.NoError(t, err)
		assert.True(t, rejected, "cooldown should apply to both directions of the pair")
	})

	t.Run("like_does_not_start_cooldown", func(t *testing.T) {
		rejections := newFakeRejections()
		c := NewProcessFeedback(memory.NewFeedbackWindowStore(10), newFakeRetrainStatus(), rejections,
			ProcessFeedbackConfig{RetrainThreshold: 100})

		_, err := c.Execute(context.Background(), ProcessFeedbackRequest{
			UserID:   "user-1",
			TargetID: "user-2",
			Kind:     "like",
		})
		require.NoError(t, err)
		assert.Empty(t, rejections.recorded)
	})

	t.Run("marks_retrain_due_at_threshold", func(t *testing.T) {
		retrainStatus := newFakeRetrainStatus()
		c := NewProcessFeedback(memory.NewFeedbackWindowStore(10), retrainStatus, newFakeRejections(),
			ProcessFeedbackConfig{RetrainThreshold: 3})

		for i, wantDue := range []bool{false, false, true} {
			res, err := c.Execute(context.Background(), ProcessFeedbackRequest{
				UserID:   "user-1",
				TargetID: "user-2",
				Kind:     "like",
			})
			require.NoError(t, err)
			assert.Equal(t, wantDue, res.RetrainDue, "event %d", i+1)
		}

		due, err := retrainStatus.ListRetrainDueUsers(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"user-1"}, due)
	})

	t.Run("stale_events_do_not_count_toward_retrain", func(t *testing.T) {
		window := memory.NewFeedbackWindowStore(10)
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			require.NoError(t, window.AppendFeedback(context.Background(), domain.FeedbackEvent{
				ActorID:  "user-1",
				TargetID: "user-2",
				Kind:     domain.FeedbackLike,
				Score:    1.0,
				At:       now.AddDate(0, 0, -10),
			}))
		}

		retrainStatus := newFakeRetrainStatus()
		c := NewProcessFeedback(window, retrainStatus, newFakeRejections(),
			ProcessFeedbackConfig{RetrainThreshold: 3})
		c.Now = func() time.Time { return now }

		res, err := c.Execute(context.Background(), ProcessFeedbackRequest{
			UserID:   "user-1",
			TargetID: "user-2",
			Kind:     "like",
		})
		require.NoError(t, err)
		assert.False(t, res.RetrainDue)
		assert.Empty(t, retrainStatus.due)
	})

	t.Run("append_failure_is_fatal", func(t *testing.T) {
		c := NewProcessFeedback(failingWindow{}, newFakeRetrainStatus(), newFakeRejections(),
			ProcessFeedbackConfig{RetrainThreshold: 3})

		_, err := c.Execute(context.Background(), ProcessFeedbackRequest{
			UserID:   "user-1",
			TargetID: "user-2",
			Kind:     "like",
		})
		require.Error(t, err)
	})
}

type failingWindow struct{}

func (failingWindow) AppendFeedback(_ context.Context, _ domain.FeedbackEvent) error {
	return errors.New("store unavailable")
}

func (failingWindow) ListFeedback(_ context.Context, _ string) ([]domain.FeedbackEvent, error) {
	return nil, errors.New("store unavailable")
}

func (failingWindow) ListFeedbackSince(_ context.Context, _ string, _ time.Time) ([]domain.FeedbackEvent, error) {
	return nil, errors.New("store unavailable")
}
