package controller

import (
	"encoding/json"
	"net/http"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// CalibrateRunResponse is the JSON response for a completed calibration.
type CalibrateRunResponse struct {
	Samples          int    `json:"samples"`
	ExtractorVersion string `json:"extractor_version"`
}

// CalibrateRun handles POST /v1/calibrate to fit the authenticated user's
// preference model from their photo ratings.
type CalibrateRun struct {
	Command command.Command[command.CalibrateUserModelRequest, command.CalibrateUserModelResponse]
}

func (c CalibrateRun) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := domain.LoggerFromContext(ctx)

	userID := domain.UserIDFromContext(ctx)
	if userID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	result, err := c.Command.Execute(ctx, command.CalibrateUserModelRequest{UserID: userID})
	if err != nil {
		if domain.IsInsufficientData(err) {
			logger.WarnContext(ctx, "calibration requested with too little data", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			if encErr := json.NewEncoder(w).Encode(map[string]string{
				"error": "not enough rated photos to calibrate",
			}); encErr != nil {
				logger.ErrorContext(ctx, "unable to write error response", "error", encErr)
			}
			return
		}

		logger.ErrorContext(ctx, "unable to calibrate user model", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(CalibrateRunResponse{
		Samples:          result.Samples,
		ExtractorVersion: result.ExtractorVersion,
	}); err != nil {
		logger.ErrorContext(ctx, "unable to write response", "error", err)
	}
}
