package command

import (
	"context"
	"fmt"
	"time"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// ProcessFeedbackRequest is the request for the ProcessFeedback command.
type ProcessFeedbackRequest struct {
	UserID   string
	TargetID string
	Kind     string
}

// ProcessFeedbackResponse is the response from the ProcessFeedback command.
type ProcessFeedbackResponse struct {
	Kind       domain.FeedbackKind
	Score      float64
	RetrainDue bool
}

// ProcessFeedbackConfig holds configuration for feedback processing.
type ProcessFeedbackConfig struct {
	// RetrainThreshold is the trailing-week event count at which a user
	// becomes due for recalibration.
	RetrainThreshold int
}

// ProcessFeedback validates a feedback signal, stamps its fixed weight,
// appends it to the user's window and flags the user for retraining once
// enough recent feedback has accumulated.
type ProcessFeedback struct {
	Window        datasources.FeedbackWindowStore
	RetrainStatus datasources.RetrainStatusRepository
	Rejections    datasources.RejectionRecorder
	Config        ProcessFeedbackConfig
	Now           func() time.Time
}

// NewProcessFeedback creates a properly initialized ProcessFeedback command.
func NewProcessFeedback(
	window datasources.FeedbackWindowStore,
	retrainStatus datasources.RetrainStatusRepository,
	rejections datasources.RejectionRecorder,
	config ProcessFeedbackConfig,
) *ProcessFeedback {
	return &ProcessFeedback{
		Window:        window,
		RetrainStatus: retrainStatus,
		Rejections:    rejections,
		Config:        config,
		Now:           time.Now,
	}
}

// Execute processes one explicit or implicit feedback signal.
func (c *ProcessFeedback) Execute(ctx context.Context, req ProcessFeedbackRequest) (ProcessFeedbackResponse, error) {
	kind, err := domain.ParseFeedbackKind(req.Kind)
	if err != nil {
		return ProcessFeedbackResponse{}, fmt.Errorf("parsing feedback kind: %w", err)
	}

	now := c.Now()
	event := domain.FeedbackEvent{
		ActorID:  req.UserID,
		TargetID: req.TargetID,
		Kind:     kind,
		Score:    kind.Weight(),
		At:       now,
	}

	if err := c.Window.AppendFeedback(ctx, event); err != nil {
		return ProcessFeedbackResponse{}, fmt.Errorf("appending feedback event: %w", err)
	}

	// A dislike starts the pair's rejection cooldown.
	if kind == domain.FeedbackDislike {
		if err := c.Rejections.RecordRejection(ctx, req.UserID, req.TargetID, now); err != nil {
			return ProcessFeedbackResponse{}, fmt.Errorf("recording rejection: %w", err)
		}
	}

	retrainDue, err := c.checkRetrain(ctx, req.UserID, now)
	if err != nil {
		// The event is already stored; eligibility is recomputed on the
		// next signal, so this failure is recoverable.
		domain.LoggerFromContext(ctx).WarnContext(ctx, "failed to update retrain eligibility",
			"user_id", req.UserID,
			"error", err)
	}

	return ProcessFeedbackResponse{
		Kind:       kind,
		Score:      event.Score,
		RetrainDue: retrainDue,
	}, nil
}

func (c *ProcessFeedback) checkRetrain(ctx context.Context, userID string, now time.Time) (bool, error) {
	since := now.AddDate(0, 0, -domain.RetrainWindowDays)
	recent, err := c.Window.ListFeedbackSince(ctx, userID, since)
	if err != nil {
		return false, fmt.Errorf("listing recent feedback: %w", err)
	}

	if !domain.ShouldRetrain(recent, now, c.Config.RetrainThreshold) {
		return false, nil
	}

	if err := c.RetrainStatus.MarkRetrainDue(ctx, userID, now); err != nil {
		return true, fmt.Errorf("marking retrain due: %w", err)
	}
	return true, nil
}
