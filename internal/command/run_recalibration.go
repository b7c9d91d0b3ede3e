package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// RunRecalibrationRequest is the request for the RunRecalibration command.
// This command takes no parameters beyond context.
type RunRecalibrationRequest struct{}

// RunRecalibrationResponse summarizes one recalibration run.
type RunRecalibrationResponse struct {
	UsersProcessed int
	UsersFailed    int
}

// RunRecalibration recalibrates every user flagged as retrain-due by
// accumulated feedback.
type RunRecalibration struct {
	Calibrate     *CalibrateUserModel
	RetrainStatus datasources.RetrainStatusRepository
	UserLimit     int
}

// NewRunRecalibration creates a properly initialized RunRecalibration command.
func NewRunRecalibration(
	calibrate *CalibrateUserModel,
	retrainStatus datasources.RetrainStatusRepository,
	userLimit int,
) *RunRecalibration {
	return &RunRecalibration{
		Calibrate:     calibrate,
		RetrainStatus: retrainStatus,
		UserLimit:     userLimit,
	}
}

// Execute recalibrates all retrain-due users.
func (c *RunRecalibration) Execute(ctx context.Context, _ RunRecalibrationRequest) (RunRecalibrationResponse, error) {
	logger := domain.LoggerFromContext(ctx)

	userIDs, err := c.RetrainStatus.ListRetrainDueUsers(ctx, c.UserLimit)
	if err != nil {
		return RunRecalibrationResponse{}, fmt.Errorf("listing retrain-due users: %w", err)
	}

	if len(userIDs) == 0 {
		logger.InfoContext(ctx, "no users due for recalibration")
		return RunRecalibrationResponse{}, nil
	}

	logger.InfoContext(ctx, "starting recalibration", "user_count", len(userIDs))

	var resp RunRecalibrationResponse
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		_, err := c.Calibrate.Execute(ctx, CalibrateUserModelRequest{UserID: userID})
		if err != nil {
			// Too few usable samples is expected for users whose ratings
			// were pruned; clear the flag rather than retrying forever.
			var insufficientErr *domain.InsufficientDataError
			if errors.As(err, &insufficientErr) {
				if clearErr := c.RetrainStatus.ClearRetrainDue(ctx, userID); clearErr != nil {
					logger.WarnContext(ctx, "failed to clear retrain flag",
						"user_id", userID, "error", clearErr)
				}
			}
			logger.ErrorContext(ctx, "failed to recalibrate user",
				"user_id", userID, "error", err)
			resp.UsersFailed++
			continue
		}
		resp.UsersProcessed++
	}

	logger.InfoContext(ctx, "recalibration complete",
		"success_count", resp.UsersProcessed, "fail_count", resp.UsersFailed)

	return resp, nil
}
