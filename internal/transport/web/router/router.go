package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/transport/web/controller"
)

// Commands bundles the command handlers the router exposes.
type Commands struct {
	ProcessFeedback *command.ProcessFeedback
	ListMatches     *command.ListCurrentMatches
	Compatibility   *command.ComputeCompatibility
	Calibrate       *command.CalibrateUserModel
	RetrainStatus   *command.GetRetrainStatus
	CreateAPIToken  *command.CreateAPIToken
}

func MakeRouter(
	commands Commands,
	tokens datasources.APITokenRepository,
	authMiddleware func(http.Handler) http.Handler,
) (http.Handler, error) {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(authMiddleware)

	r.Handle("/v1/matches", requireAuthMiddleware(controller.MatchesList{
		Command: commands.ListMatches,
	})).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/feedback/{kind}/{target_id}", requireAuthMiddleware(controller.FeedbackSet{
		Command: commands.ProcessFeedback,
	})).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/v1/users/{target_id}/compatibility", requireAuthMiddleware(controller.CompatibilityGet{
		Command: commands.Compatibility,
	})).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/calibrate", requireAuthMiddleware(controller.CalibrateRun{
		Command: commands.Calibrate,
	})).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/v1/retrain-status", requireAuthMiddleware(controller.RetrainStatusGet{
		Command: commands.RetrainStatus,
	})).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/tokens", requireAuthMiddleware(controller.APITokenCreate{
		CreateCmd: commands.CreateAPIToken,
	})).Methods(http.MethodPost, http.MethodOptions)

	r.Handle("/v1/tokens", requireAuthMiddleware(controller.APITokenList{
		Tokens: tokens,
	})).Methods(http.MethodGet, http.MethodOptions)

	r.Handle("/v1/tokens/{token_id}", requireAuthMiddleware(controller.APITokenRevoke{
		Tokens: tokens,
	})).Methods(http.MethodDelete, http.MethodOptions)

	return r, nil
}
