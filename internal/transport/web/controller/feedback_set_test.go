package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

func TestFeedbackSet_ServeHTTP(t *testing.T) {
	cases := []struct {
		name        string
		kind        string
		targetID    string
		userID      string
		cmdRes      command.ProcessFeedbackResponse
		cmdErr      error
		wantStatus  int
		wantCalled  bool
		wantRetrain bool
		wantScore   float64
	}{
		{
			name:       "like_recorded",
			kind:       "like",
			targetID:   "user-2",
			userID:     "user-1",
			cmdRes:     command.ProcessFeedbackResponse{Kind: domain.FeedbackLike, Score: 1.0},
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantScore:  1.0,
		},
		{
			name:     "retrain_due_reported",
			kind:     "chat_replied",
			targetID: "user-2",
			userID:   "user-1",
			cmdRes: command.ProcessFeedbackResponse{
				Kind:       domain.FeedbackChatReplied,
				Score:      0.8,
				RetrainDue: true,
			},
			wantStatus:  http.StatusOK,
			wantCalled:  true,
			wantRetrain: true,
			wantScore:   0.8,
		},
		{
			name:       "invalid_kind",
			kind:       "superlike",
			targetID:   "user-2",
			userID:     "user-1",
			cmdErr:     &domain.InvalidFeedbackKindError{Kind: "superlike"},
			wantStatus: http.StatusBadRequest,
			wantCalled: true,
		},
		{
			name:       "self_feedback_rejected",
			kind:       "like",
			targetID:   "user-1",
			userID:     "user-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unauthenticated",
			kind:       "like",
			targetID:   "user-2",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "store_failure",
			kind:       "like",
			targetID:   "user-2",
			userID:     "user-1",
			cmdErr:     errors.New("database error"),
			wantStatus: http.StatusInternalServerError,
			wantCalled: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &fakeCommand[command.ProcessFeedbackRequest, command.ProcessFeedbackResponse]{
				res: tc.cmdRes,
				err: tc.cmdErr,
			}
			controller := FeedbackSet{Command: cmd}

			req := httptest.NewRequest(http.MethodPost, "/v1/feedback/"+tc.kind+"/"+tc.targetID, nil)
			req = testContextWithUserID(tc.userID)(req)
			req = mux.SetURLVars(req, map[string]string{
				"kind":      tc.kind,
				"target_id": tc.targetID,
			})
			rec := httptest.NewRecorder()

			controller.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCalled, cmd.called)

			if tc.wantCalled {
				assert.Equal(t, command.ProcessFeedbackRequest{
					UserID:   tc.userID,
					TargetID: tc.targetID,
					Kind:     tc.kind,
				}, cmd.gotReq)
			}

			if tc.wantStatus == http.StatusOK {
				var body FeedbackSetResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tc.wantScore, body.Score)
				assert.Equal(t, tc.wantRetrain, body.RetrainDue)
			}
		})
	}
}
