package controller

import (
	"context"
	"net/http"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

func testContextWithUserID(userID string) func(*http.Request) *http.Request {
	return func(r *http.Request) *http.Request {
		if userID == "" {
			return r
		}
		return r.WithContext(domain.ContextWithUserID(r.Context(), userID))
	}
}

// fakeCommand satisfies command.Command with a canned result, recording
// the request it was invoked with.
type fakeCommand[Req any, Res any] struct {
	res    Res
	err    error
	called bool
	gotReq Req
}

func (c *fakeCommand[Req, Res]) Execute(_ context.Context, req Req) (Res, error) {
	c.called = true
	c.gotReq = req
	return c.res, c.err
}
