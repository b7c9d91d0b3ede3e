package domain

// Relative weights of the two compatibility components.
const (
	photoWeight    = 0.7
	interestWeight = 0.3
)

// CompositeModel blends per-user photo preference predictions with interest
// similarity into one undirected compatibility score per pair.
type CompositeModel struct {
	interests *InterestModel
}

// NewCompositeModel wraps a fitted interest model.
func NewCompositeModel(interests *InterestModel) *CompositeModel {
	return &CompositeModel{interests: interests}
}

// MutualCompatibility scores the pair (a, b) in [0, 1]. aModel is a's taste
// regressor applied to b's primary photo vector, bModel the reverse. Either
// side unfitted propagates ErrNotFitted rather than fabricating a score.
func (c *CompositeModel) MutualCompatibility(
	aModel, bModel *PreferenceModel,
	aPhotoVec, bPhotoVec []float64,
	aInterests, bInterests []float64,
) (float64, error) {
	prefAForB, err := aModel.Predict(bPhotoVec)
	if err != nil {
		return 0, err
	}
	prefBForA, err := bModel.Predict(aPhotoVec)
	if err != nil {
		return 0, err
	}

	similarity, err := c.interests.CalculateSimilarity(aInterests, bInterests)
	if err != nil {
		return 0, err
	}

	photoScore := (normalizeRating(prefAForB) + normalizeRating(prefBForA)) / 2
	return photoWeight*photoScore + interestWeight*similarity, nil
}

// normalizeRating maps a rating-scale prediction onto [0, 1]. Predictions
// can extrapolate slightly past the 1-5 scale, so the result is clamped.
func normalizeRating(p float64) float64 {
	v := (p - RatingScaleMin) / (RatingScaleMax - RatingScaleMin)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
