package command

import (
	"context"
	"fmt"

	"github.com/noswipe/noswipe-backend/internal/datasources"
)

// primaryPhotoVector returns the feature vector representing a user's
// profile: the first photo with a cached vector from the current extractor
// version, falling back to extracting the first photo on demand.
func primaryPhotoVector(
	ctx context.Context,
	photos datasources.PhotoLister,
	extractor datasources.FeatureExtractor,
	userID string,
) ([]float64, error) {
	userPhotos, err := photos.ListUserPhotos(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing photos for %s: %w", userID, err)
	}
	if len(userPhotos) == 0 {
		return nil, fmt.Errorf("no photos for user %s", userID)
	}

	for _, photo := range userPhotos {
		if photo.FeatureVector != nil && photo.ExtractorVersion == extractor.Version() {
			return photo.FeatureVector, nil
		}
	}

	vector, err := extractor.Extract(ctx, userPhotos[0])
	if err != nil {
		return nil, fmt.Errorf("extracting features for %s: %w", userID, err)
	}
	return vector, nil
}
