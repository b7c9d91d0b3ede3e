package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// CompatibilityGetResponse is the JSON response for a pair score.
type CompatibilityGetResponse struct {
	TargetID string  `json:"target_id"`
	Score    float64 `json:"score"`
}

// CompatibilityGet handles GET /v1/users/{target_id}/compatibility to score
// the authenticated user against one other profile.
type CompatibilityGet struct {
	Command command.Command[command.ComputeCompatibilityRequest, command.ComputeCompatibilityResponse]
}

func (c CompatibilityGet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetID := vars["target_id"]
	logger := domain.LoggerFromContext(r.Context())
	ctx := domain.ContextWithLogger(r.Context(), logger.With("target_id", targetID))

	userID := domain.UserIDFromContext(r.Context())
	if userID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if targetID == "" || targetID == userID {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := c.Command.Execute(ctx, command.ComputeCompatibilityRequest{
		UserID:   userID,
		TargetID: targetID,
	})
	if err != nil {
		var verErr *domain.ModelVersionError
		if errors.Is(err, datasources.ErrModelNotFound) || errors.As(err, &verErr) {
			logger.WarnContext(ctx, "compatibility requested without usable models", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			if encErr := json.NewEncoder(w).Encode(map[string]string{
				"error": "one side of the pair has no calibrated preference model",
			}); encErr != nil {
				logger.ErrorContext(ctx, "unable to write error response", "error", encErr)
			}
			return
		}

		logger.ErrorContext(ctx, "unable to compute compatibility", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(CompatibilityGetResponse{
		TargetID: targetID,
		Score:    result.Score,
	}); err != nil {
		logger.ErrorContext(ctx, "unable to write response", "error", err)
	}
}
