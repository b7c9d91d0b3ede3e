package command

import (
	"bytes"
	"context"
	"fmt"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// loadPreferenceModel fetches and decodes a user's stored preference model.
// datasources.ErrModelNotFound and *domain.ModelVersionError pass through
// wrapped, so callers can distinguish "never calibrated" and "needs
// recalibration" from transport failures.
func loadPreferenceModel(
	ctx context.Context,
	store datasources.ModelStore,
	extractorVersion, userID string,
) (*domain.PreferenceModel, error) {
	artifact, err := store.GetModel(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading preference model for %s: %w", userID, err)
	}

	model, err := domain.DecodePreferenceModel(bytes.NewReader(artifact), extractorVersion)
	if err != nil {
		return nil, fmt.Errorf("decoding preference model for %s: %w", userID, err)
	}
	return model, nil
}
