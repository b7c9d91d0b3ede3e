package datasources

import (
	"context"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

// ProfileRepository combines all profile-related read interfaces.
type ProfileRepository interface {
	UserFetcher
	CandidateLister
	PhotoLister
	PhotoFetcher
	PhotoRatingLister
	InterestVectorFetcher
	InterestVectorLister
}

type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) (domain.User, error)
}

// CandidateLister returns the raw candidate pool for a user, excluding the
// user themselves. Hard filtering happens downstream.
type CandidateLister interface {
	ListCandidates(ctx context.Context, userID string, limit int) ([]domain.User, error)
}

type PhotoLister interface {
	ListUserPhotos(ctx context.Context, userID string) ([]domain.Photo, error)
}

type PhotoFetcher interface {
	FetchPhotos(ctx context.Context, photoIDs []string) ([]domain.Photo, error)
}

type PhotoRatingLister interface {
	ListPhotoRatings(ctx context.Context, userID string) ([]domain.PhotoRating, error)
}

type InterestVectorFetcher interface {
	FetchInterestVector(ctx context.Context, userID string) ([]float64, error)
}

// InterestVectorLister samples the population's interest vectors, used as
// the normalization corpus for the interest model.
type InterestVectorLister interface {
	ListInterestVectors(ctx context.Context, limit int) ([][]float64, error)
}

// NullProfileRepository is a null implementation of ProfileRepository.
type NullProfileRepository struct{}

var _ ProfileRepository = NullProfileRepository{}

func (NullProfileRepository) FetchUser(_ context.Context, _ string) (domain.User, error) {
	return domain.User{}, nil
}

func (NullProfileRepository) ListCandidates(_ context.Context, _ string, _ int) ([]domain.User, error) {
	return nil, nil
}

func (NullProfileRepository) ListUserPhotos(_ context.Context, _ string) ([]domain.Photo, error) {
	return nil, nil
}

func (NullProfileRepository) FetchPhotos(_ context.Context, _ []string) ([]domain.Photo, error) {
	return nil, nil
}

func (NullProfileRepository) ListPhotoRatings(_ context.Context, _ string) ([]domain.PhotoRating, error) {
	return nil, nil
}

func (NullProfileRepository) FetchInterestVector(_ context.Context, _ string) ([]float64, error) {
	return nil, nil
}

func (NullProfileRepository) ListInterestVectors(_ context.Context, _ int) ([][]float64, error) {
	return nil, nil
}
