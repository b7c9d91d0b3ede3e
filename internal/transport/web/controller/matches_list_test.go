package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

func TestMatchesList_ServeHTTP(t *testing.T) {
	expiry := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		userID     string
		cmdRes     []domain.MatchRecord
		cmdErr     error
		wantStatus int
		wantIDs    []string
	}{
		{
			name:   "live_batch",
			userID: "user-1",
			cmdRes: []domain.MatchRecord{
				{ID: "rec-1", UserID: "user-1", CandidateID: "cand-1", Score: 0.9, ExpiresAt: expiry},
				{ID: "rec-2", UserID: "user-1", CandidateID: "cand-2", Score: 0.82, ExpiresAt: expiry},
			},
			wantStatus: http.StatusOK,
			wantIDs:    []string{"cand-1", "cand-2"},
		},
		{
			name:       "empty_batch",
			userID:     "user-1",
			wantStatus: http.StatusOK,
			wantIDs:    []string{},
		},
		{
			name:       "uncalibrated_user",
			userID:     "user-1",
			cmdErr:     fmt.Errorf("user user-1 is not calibrated: %w", domain.ErrNotFitted),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unauthenticated",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "store_failure",
			userID:     "user-1",
			cmdErr:     errors.New("database error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &fakeCommand[command.ListCurrentMatchesRequest, []domain.MatchRecord]{
				res: tc.cmdRes,
				err: tc.cmdErr,
			}
			controller := MatchesList{Command: cmd}

			req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
			req = testContextWithUserID(tc.userID)(req)
			rec := httptest.NewRecorder()

			controller.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)

			if tc.wantStatus == http.StatusOK {
				var body MatchesListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

				ids := make([]string, 0, len(body.Data))
				for _, item := range body.Data {
					ids = append(ids, item.CandidateID)
				}
				assert.Equal(t, tc.wantIDs, ids)
			}
		})
	}
}
