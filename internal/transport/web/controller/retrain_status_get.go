package controller

import (
	"encoding/json"
	"net/http"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// RetrainStatusGetResponse is the JSON response for the retrain status.
type RetrainStatusGetResponse struct {
	RetrainRecommended bool `json:"retrain_recommended"`
	RecentEvents       int  `json:"recent_events"`
	Threshold          int  `json:"threshold"`
}

// RetrainStatusGet handles GET /v1/retrain-status to report whether the
// authenticated user's recent feedback volume warrants recalibration.
type RetrainStatusGet struct {
	Command command.Command[command.GetRetrainStatusRequest, command.GetRetrainStatusResponse]
}

func (c RetrainStatusGet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	userID := domain.UserIDFromContext(ctx)
	if userID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	result, err := c.Command.Execute(ctx, command.GetRetrainStatusRequest{UserID: userID})
	if err != nil {
		logger.ErrorContext(ctx, "unable to get retrain status", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(RetrainStatusGetResponse{
		RetrainRecommended: result.RetrainRecommended,
		RecentEvents:       result.RecentEvents,
		Threshold:          result.Threshold,
	}); err != nil {
		logger.ErrorContext(ctx, "unable to write response", "error", err)
	}
}
