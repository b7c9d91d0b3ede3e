package datasources

import (
	"context"
	"errors"
)

// ErrModelNotFound is returned by ModelStore.GetModel when the user has no
// stored preference model. Callers treat it as "not yet calibrated".
var ErrModelNotFound = errors.New("preference model not found")

// ModelStore persists encoded preference model artifacts keyed by user ID.
// Put overwrites any existing artifact for the user.
type ModelStore interface {
	GetModel(ctx context.Context, userID string) ([]byte, error)
	PutModel(ctx context.Context, userID string, artifact []byte) error
	DeleteModel(ctx context.Context, userID string) error
	ModelExists(ctx context.Context, userID string) (bool, error)
}
