package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// MatchItem is one surfaced prospect in the matches list response.
type MatchItem struct {
	CandidateID string    `json:"candidate_id"`
	Score       float64   `json:"score"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MatchesListResponse is the JSON response for the current match batch.
type MatchesListResponse struct {
	Data []MatchItem `json:"data"`
}

// MatchesList handles GET /v1/matches to return the authenticated user's
// live match batch, generating one on demand when none is live.
type MatchesList struct {
	Command command.Command[command.ListCurrentMatchesRequest, []domain.MatchRecord]
}

func (c MatchesList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	userID := domain.UserIDFromContext(ctx)
	if userID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	records, err := c.Command.Execute(ctx, command.ListCurrentMatchesRequest{UserID: userID})
	if err != nil {
		if errors.Is(err, domain.ErrNotFitted) {
			logger.WarnContext(ctx, "matches requested before calibration", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			if encErr := json.NewEncoder(w).Encode(map[string]string{
				"error": "user has no calibrated preference model",
			}); encErr != nil {
				logger.ErrorContext(ctx, "unable to write error response", "error", encErr)
			}
			return
		}

		logger.ErrorContext(ctx, "unable to list matches", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	items := make([]MatchItem, 0, len(records))
	for _, rec := range records {
		items = append(items, MatchItem{
			CandidateID: rec.CandidateID,
			Score:       rec.Score,
			ExpiresAt:   rec.ExpiresAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(MatchesListResponse{Data: items}); err != nil {
		logger.ErrorContext(ctx, "unable to write matches to response", "error", err)
	}
}
