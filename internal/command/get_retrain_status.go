package command

import (
	"context"
	"fmt"
	"time"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// GetRetrainStatusRequest is the request for the GetRetrainStatus command.
type GetRetrainStatusRequest struct {
	UserID string
}

// GetRetrainStatusResponse is the response from the GetRetrainStatus command.
type GetRetrainStatusResponse struct {
	RetrainRecommended bool
	RecentEvents       int
	Threshold          int
}

// GetRetrainStatus reports whether a user's recent feedback volume
// warrants recalibration.
type GetRetrainStatus struct {
	Window    datasources.FeedbackLister
	Threshold int
	Now       func() time.Time
}

// NewGetRetrainStatus creates a properly initialized GetRetrainStatus command.
func NewGetRetrainStatus(window datasources.FeedbackLister, threshold int) *GetRetrainStatus {
	if threshold <= 0 {
		threshold = domain.DefaultRetrainThreshold
	}
	return &GetRetrainStatus{
		Window:    window,
		Threshold: threshold,
		Now:       time.Now,
	}
}

// Execute computes the retrain recommendation.
func (c *GetRetrainStatus) Execute(ctx context.Context, req GetRetrainStatusRequest) (GetRetrainStatusResponse, error) {
	now := c.Now()
	since := now.AddDate(0, 0, -domain.RetrainWindowDays)

	recent, err := c.Window.ListFeedbackSince(ctx, req.UserID, since)
	if err != nil {
		return GetRetrainStatusResponse{}, fmt.Errorf("listing recent feedback: %w", err)
	}

	return GetRetrainStatusResponse{
		RetrainRecommended: domain.ShouldRetrain(recent, now, c.Threshold),
		RecentEvents:       len(recent),
		Threshold:          c.Threshold,
	}, nil
}
