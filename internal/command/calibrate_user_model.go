package command

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

// CalibrateUserModelRequest is the request for the CalibrateUserModel command.
type CalibrateUserModelRequest struct {
	UserID string
}

// CalibrateUserModelResponse is the response from the CalibrateUserModel command.
type CalibrateUserModelResponse struct {
	Samples          int
	ExtractorVersion string
}

// CalibrateUserModel fits a user's preference model from their photo
// ratings and stores the encoded artifact. Concurrent calibrations for the
// same user coalesce into one fit.
type CalibrateUserModel struct {
	Photos        datasources.PhotoFetcher
	Ratings       datasources.PhotoRatingLister
	Feedback      datasources.FeedbackLister
	Extractor     datasources.FeatureExtractor
	VectorWriter  datasources.PhotoVectorWriter
	Models        datasources.ModelStore
	RetrainStatus datasources.RetrainStatusRepository
	Now           func() time.Time

	// ProfilePhotos and VectorIndex, when both set, push the user's own
	// profile vector into the recall index after each calibration.
	ProfilePhotos datasources.PhotoLister
	VectorIndex   datasources.ProfileVectorIndex

	group singleflight.Group
}

// NewCalibrateUserModel creates a properly initialized CalibrateUserModel command.
func NewCalibrateUserModel(
	photos datasources.PhotoFetcher,
	ratings datasources.PhotoRatingLister,
	feedback datasources.FeedbackLister,
	extractor datasources.FeatureExtractor,
	vectorWriter datasources.PhotoVectorWriter,
	models datasources.ModelStore,
	retrainStatus datasources.RetrainStatusRepository,
) *CalibrateUserModel {
	return &CalibrateUserModel{
		Photos:        photos,
		Ratings:       ratings,
		Feedback:      feedback,
		Extractor:     extractor,
		VectorWriter:  vectorWriter,
		Models:        models,
		RetrainStatus: retrainStatus,
		Now:           time.Now,
	}
}

// Execute runs the calibration for one user.
func (c *CalibrateUserModel) Execute(ctx context.Context, req CalibrateUserModelRequest) (CalibrateUserModelResponse, error) {
	res, err, _ := c.group.Do(req.UserID, func() (interface{}, error) {
		return c.calibrate(ctx, req.UserID)
	})
	if err != nil {
		return CalibrateUserModelResponse{}, err
	}
	return res.(CalibrateUserModelResponse), nil
}

func (c *CalibrateUserModel) calibrate(ctx context.Context, userID string) (CalibrateUserModelResponse, error) {
	ratings, err := c.Ratings.ListPhotoRatings(ctx, userID)
	if err != nil {
		return CalibrateUserModelResponse{}, fmt.Errorf("listing photo ratings: %w", err)
	}
	if len(ratings) == 0 {
		return CalibrateUserModelResponse{}, &domain.InsufficientDataError{Samples: 0}
	}

	vectors, err := c.gatherPhotoVectors(ctx, ratings)
	if err != nil {
		return CalibrateUserModelResponse{}, err
	}

	features, targets, sampleOwners := alignTrainingSamples(ratings, vectors)
	if len(features) == 0 {
		return CalibrateUserModelResponse{}, &domain.InsufficientDataError{Samples: 0}
	}

	weights, err := c.sampleWeights(ctx, userID, sampleOwners)
	if err != nil {
		return CalibrateUserModelResponse{}, err
	}

	model := domain.NewPreferenceModel(c.Extractor.Version())
	if err := model.Fit(features, targets, weights); err != nil {
		return CalibrateUserModelResponse{}, fmt.Errorf("fitting preference model: %w", err)
	}

	var buf bytes.Buffer
	if err := model.Encode(&buf); err != nil {
		return CalibrateUserModelResponse{}, fmt.Errorf("encoding preference model: %w", err)
	}
	if err := c.Models.PutModel(ctx, userID, buf.Bytes()); err != nil {
		return CalibrateUserModelResponse{}, fmt.Errorf("storing preference model: %w", err)
	}

	if err := c.RetrainStatus.ClearRetrainDue(ctx, userID); err != nil {
		domain.LoggerFromContext(ctx).WarnContext(ctx, "failed to clear retrain eligibility",
			"user_id", userID,
			"error", err)
	}

	c.upsertProfileVector(ctx, userID)

	return CalibrateUserModelResponse{
		Samples:          len(features),
		ExtractorVersion: c.Extractor.Version(),
	}, nil
}

// upsertProfileVector refreshes the user's entry in the recall index.
// Indexing is best-effort: calibration succeeded regardless.
func (c *CalibrateUserModel) upsertProfileVector(ctx context.Context, userID string) {
	if c.ProfilePhotos == nil || c.VectorIndex == nil {
		return
	}

	logger := domain.LoggerFromContext(ctx)

	vector, err := primaryPhotoVector(ctx, c.ProfilePhotos, c.Extractor, userID)
	if err != nil {
		logger.WarnContext(ctx, "failed to compute profile vector for recall index",
			"user_id", userID,
			"error", err)
		return
	}

	if err := c.VectorIndex.UpsertProfileVector(ctx, userID, vector); err != nil {
		logger.WarnContext(ctx, "failed to upsert profile vector into recall index",
			"user_id", userID,
			"error", err)
	}
}

// gatherPhotoVectors returns a photo ID to feature vector map for the
// rated photos, extracting and caching vectors not already computed by the
// current extractor version.
func (c *CalibrateUserModel) gatherPhotoVectors(ctx context.Context, ratings []domain.PhotoRating) (map[string]photoVector, error) {
	photoIDs := make([]string, 0, len(ratings))
	seen := make(map[string]struct{}, len(ratings))
	for _, rating := range ratings {
		if _, ok := seen[rating.PhotoID]; ok {
			continue
		}
		seen[rating.PhotoID] = struct{}{}
		photoIDs = append(photoIDs, rating.PhotoID)
	}

	photos, err := c.Photos.FetchPhotos(ctx, photoIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching rated photos: %w", err)
	}

	vectors := make(map[string]photoVector, len(photos))
	var uncached []domain.Photo
	for _, photo := range photos {
		if photo.FeatureVector != nil && photo.ExtractorVersion == c.Extractor.Version() {
			vectors[photo.ID] = photoVector{vector: photo.FeatureVector, ownerID: photo.OwnerID}
			continue
		}
		uncached = append(uncached, photo)
	}

	if len(uncached) == 0 {
		return vectors, nil
	}

	extractedVectors, extractedPhotos, err := c.Extractor.ExtractBatch(ctx, uncached)
	if err != nil {
		return nil, fmt.Errorf("extracting photo features: %w", err)
	}

	logger := domain.LoggerFromContext(ctx)
	for i, photo := range extractedPhotos {
		vectors[photo.ID] = photoVector{vector: extractedVectors[i], ownerID: photo.OwnerID}

		if err := c.VectorWriter.StorePhotoFeatureVector(ctx, photo.ID, extractedVectors[i], c.Extractor.Version()); err != nil {
			logger.WarnContext(ctx, "failed to cache photo feature vector",
				"photo_id", photo.ID,
				"error", err)
		}
	}

	return vectors, nil
}

type photoVector struct {
	vector  []float64
	ownerID string
}

// alignTrainingSamples pairs each rating with its photo's feature vector,
// dropping ratings whose photo has none. Outputs stay index-aligned.
func alignTrainingSamples(ratings []domain.PhotoRating, vectors map[string]photoVector) ([][]float64, []float64, []string) {
	var features [][]float64
	var targets []float64
	var owners []string
	for _, rating := range ratings {
		pv, ok := vectors[rating.PhotoID]
		if !ok {
			continue
		}
		features = append(features, pv.vector)
		targets = append(targets, float64(rating.Rating))
		owners = append(owners, pv.ownerID)
	}
	return features, targets, owners
}

func (c *CalibrateUserModel) sampleWeights(ctx context.Context, userID string, sampleOwners []string) ([]float64, error) {
	events, err := c.Feedback.ListFeedback(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing feedback window: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	byOwner := domain.TrainingWeights(events, sampleOwners, c.Now())
	weights := make([]float64, len(sampleOwners))
	for i, owner := range sampleOwners {
		weights[i] = byOwner[owner]
	}
	return weights, nil
}
