package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

func TestFeedbackWindowStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewFeedbackWindowStore(5)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendFeedback(ctx, domain.FeedbackEvent{
			ActorID:  "user-1",
			TargetID: fmt.Sprintf("target-%d", i),
			Kind:     domain.FeedbackLike,
			Score:    1.0,
			At:       now.Add(time.Duration(i) * time.Minute),
		}))
	}

	t.Run("below_capacity_keeps_all_in_order", func(t *testing.T) {
		events, err := store.ListFeedback(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, events, 3)
		for i, ev := range events {
			assert.Equal(t, fmt.Sprintf("target-%d", i), ev.TargetID)
		}
	})

	t.Run("other_user_window_is_empty", func(t *testing.T) {
		events, err := store.ListFeedback(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("list_since_filters_older_events", func(t *testing.T) {
		events, err := store.ListFeedbackSince(ctx, "user-1", now.Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "target-1", events[0].TargetID)
		assert.Equal(t, "target-2", events[1].TargetID)
	})
}

func TestFeedbackWindowStoreEvictsOldestFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewFeedbackWindowStore(5)

	for i := 0; i < 8; i++ {
		require.NoError(t, store.AppendFeedback(ctx, domain.FeedbackEvent{
			ActorID:  "user-1",
			TargetID: fmt.Sprintf("target-%d", i),
			At:       now.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := store.ListFeedback(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, events, 5)

	// Only the five most recent survive, still oldest first.
	for i, ev := range events {
		assert.Equal(t, fmt.Sprintf("target-%d", i+3), ev.TargetID)
	}
}

func TestFeedbackWindowStoreListCopiesWindow(t *testing.T) {
	ctx := context.Background()
	store := NewFeedbackWindowStore(5)

	require.NoError(t, store.AppendFeedback(ctx, domain.FeedbackEvent{ActorID: "user-1", TargetID: "a"}))

	events, err := store.ListFeedback(ctx, "user-1")
	require.NoError(t, err)
	events[0].TargetID = "mutated"

	again, err := store.ListFeedback(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].TargetID)
}
