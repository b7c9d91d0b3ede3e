package datasources

import (
	"context"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

// FeatureExtractor maps a photo to a fixed-length feature vector. The
// mapping is deterministic per (extractor version, image bytes); scores
// from models trained against a different version are meaningless, so
// Version is part of the contract.
type FeatureExtractor interface {
	// Extract returns the photo's feature vector, or a
	// *domain.ExtractionError on decode or transport failure.
	Extract(ctx context.Context, photo domain.Photo) ([]float64, error)

	// ExtractBatch extracts vectors for the photos that succeed,
	// returning vectors and the corresponding photos index-aligned.
	// Per-photo failures are dropped from both slices; only systemic
	// failures return a non-nil error.
	ExtractBatch(ctx context.Context, photos []domain.Photo) ([][]float64, []domain.Photo, error)

	Version() string
}

// PhotoVectorWriter caches extracted feature vectors against their photos,
// so calibration only pays for extraction once per (photo, extractor
// version).
type PhotoVectorWriter interface {
	StorePhotoFeatureVector(ctx context.Context, photoID string, vector []float64, extractorVersion string) error
}

// NullExtractor is a null implementation of FeatureExtractor.
type NullExtractor struct{}

var _ FeatureExtractor = NullExtractor{}

func (NullExtractor) Extract(_ context.Context, _ domain.Photo) ([]float64, error) {
	return nil, nil
}

func (NullExtractor) ExtractBatch(_ context.Context, _ []domain.Photo) ([][]float64, []domain.Photo, error) {
	return nil, nil, nil
}

func (NullExtractor) Version() string {
	return "null"
}
