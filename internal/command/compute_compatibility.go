package command

import (
	"context"
	"fmt"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// ComputeCompatibilityRequest is the request for the ComputeCompatibility command.
type ComputeCompatibilityRequest struct {
	UserID   string
	TargetID string
}

// ComputeCompatibilityResponse is the response from the ComputeCompatibility command.
type ComputeCompatibilityResponse struct {
	Score float64
}

// ComputeCompatibility scores the mutual compatibility of one user pair.
// Either side lacking a stored model surfaces datasources.ErrModelNotFound;
// a stale artifact surfaces *domain.ModelVersionError.
type ComputeCompatibility struct {
	Photos    datasources.PhotoLister
	Interests datasources.InterestVectorFetcher
	Models    datasources.ModelStore
	Extractor datasources.FeatureExtractor
	Composite *domain.CompositeModel
}

// NewComputeCompatibility creates a properly initialized ComputeCompatibility command.
func NewComputeCompatibility(
	photos datasources.PhotoLister,
	interests datasources.InterestVectorFetcher,
	models datasources.ModelStore,
	extractor datasources.FeatureExtractor,
	composite *domain.CompositeModel,
) *ComputeCompatibility {
	return &ComputeCompatibility{
		Photos:    photos,
		Interests: interests,
		Models:    models,
		Extractor: extractor,
		Composite: composite,
	}
}

// Execute computes the pair score.
func (c *ComputeCompatibility) Execute(ctx context.Context, req ComputeCompatibilityRequest) (ComputeCompatibilityResponse, error) {
	userModel, err := loadPreferenceModel(ctx, c.Models, c.Extractor.Version(), req.UserID)
	if err != nil {
		return ComputeCompatibilityResponse{}, err
	}
	targetModel, err := loadPreferenceModel(ctx, c.Models, c.Extractor.Version(), req.TargetID)
	if err != nil {
		return ComputeCompatibilityResponse{}, err
	}

	userVector, err := primaryPhotoVector(ctx, c.Photos, c.Extractor, req.UserID)
	if err != nil {
		return ComputeCompatibilityResponse{}, err
	}
	targetVector, err := primaryPhotoVector(ctx, c.Photos, c.Extractor, req.TargetID)
	if err != nil {
		return ComputeCompatibilityResponse{}, err
	}

	userInterests, err := c.Interests.FetchInterestVector(ctx, req.UserID)
	if err != nil {
		return ComputeCompatibilityResponse{}, fmt.Errorf("fetching interests for %s: %w", req.UserID, err)
	}
	targetInterests, err := c.Interests.FetchInterestVector(ctx, req.TargetID)
	if err != nil {
		return ComputeCompatibilityResponse{}, fmt.Errorf("fetching interests for %s: %w", req.TargetID, err)
	}

	score, err := c.Composite.MutualCompatibility(
		userModel, targetModel,
		userVector, targetVector,
		userInterests, targetInterests,
	)
	if err != nil {
		return ComputeCompatibilityResponse{}, fmt.Errorf("computing mutual compatibility: %w", err)
	}

	return ComputeCompatibilityResponse{Score: score}, nil
}
