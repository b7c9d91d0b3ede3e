package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// FeedbackSetResponse is the JSON response for a recorded feedback signal.
type FeedbackSetResponse struct {
	Kind       string  `json:"kind"`
	Score      float64 `json:"score"`
	RetrainDue bool    `json:"retrain_due"`
}

// FeedbackSet handles POST /v1/feedback/{kind}/{target_id} to record one
// explicit or implicit feedback signal from the authenticated user.
type FeedbackSet struct {
	Command command.Command[command.ProcessFeedbackRequest, command.ProcessFeedbackResponse]
}

func (c FeedbackSet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]
	targetID := vars["target_id"]
	logger := domain.LoggerFromContext(r.Context())
	ctx := domain.ContextWithLogger(r.Context(), logger.With("target_id", targetID, "kind", kind))

	userID := domain.UserIDFromContext(r.Context())
	if userID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if targetID == "" || targetID == userID {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := c.Command.Execute(ctx, command.ProcessFeedbackRequest{
		UserID:   userID,
		TargetID: targetID,
		Kind:     kind,
	})
	if err != nil {
		var kindErr *domain.InvalidFeedbackKindError
		if errors.As(err, &kindErr) {
			logger.ErrorContext(ctx, "invalid feedback kind", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		logger.ErrorContext(ctx, "unable to process feedback", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(FeedbackSetResponse{
		Kind:       string(result.Kind),
		Score:      result.Score,
		RetrainDue: result.RetrainDue,
	}); err != nil {
		logger.ErrorContext(ctx, "unable to write response", "error", err)
	}
}
