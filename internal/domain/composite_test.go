package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fittedTestModels(t *testing.T) (*InterestModel, *PreferenceModel, *PreferenceModel) {
	t.Helper()

	interests := NewInterestModel()
	require.NoError(t, interests.Fit([][]float64{
		{5, 1, 3},
		{1, 5, 3},
		{3, 3, 1},
		{3, 3, 5},
	}))

	features, ratings := linearTrainingSet()
	aModel := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, aModel.Fit(features, ratings, nil))
	bModel := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, bModel.Fit(features, ratings, nil))

	return interests, aModel, bModel
}

func TestCompositeModelMutualCompatibility(t *testing.T) {
	interests, aModel, bModel := fittedTestModels(t)
	composite := NewCompositeModel(interests)

	// The training centroid predicts exactly the mean rating 3, which
	// normalizes to 0.5 on the unit scale.
	centroid := []float64{3, 0, 0, 0}

	t.Run("blends_photo_and_interest_components", func(t *testing.T) {
		sameInterests := []float64{5, 2, 4}

		got, err := composite.MutualCompatibility(
			aModel, bModel,
			centroid, centroid,
			sameInterests, sameInterests,
		)
		require.NoError(t, err)

		// 0.7*0.5 from photos plus 0.3*1.0 from identical interests.
		assert.InDelta(t, 0.65, got, 1e-9)
	})

	t.Run("opposed_interests_drop_to_photo_component", func(t *testing.T) {
		got, err := composite.MutualCompatibility(
			aModel, bModel,
			centroid, centroid,
			[]float64{5, 1, 3}, []float64{1, 5, 3},
		)
		require.NoError(t, err)
		assert.InDelta(t, 0.35, got, 1e-9)
	})

	t.Run("score_within_unit_interval", func(t *testing.T) {
		got, err := composite.MutualCompatibility(
			aModel, bModel,
			[]float64{9, 0, 0, 0}, []float64{-4, 0, 0, 0},
			[]float64{5, 2, 4}, []float64{4, 2, 5},
		)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	})
}

func TestCompositeModelUnfittedPropagation(t *testing.T) {
	interests, aModel, bModel := fittedTestModels(t)
	composite := NewCompositeModel(interests)

	vec := []float64{3, 0, 0, 0}
	iv := []float64{5, 2, 4}

	t.Run("unfitted_requesting_side", func(t *testing.T) {
		_, err := composite.MutualCompatibility(
			NewPreferenceModel(testExtractorVersion), bModel, vec, vec, iv, iv,
		)
		assert.ErrorIs(t, err, ErrNotFitted)
	})

	t.Run("unfitted_candidate_side", func(t *testing.T) {
		_, err := composite.MutualCompatibility(
			aModel, NewPreferenceModel(testExtractorVersion), vec, vec, iv, iv,
		)
		assert.ErrorIs(t, err, ErrNotFitted)
	})

	t.Run("unfitted_interest_model", func(t *testing.T) {
		unfitted := NewCompositeModel(NewInterestModel())
		_, err := unfitted.MutualCompatibility(aModel, bModel, vec, vec, iv, iv)
		assert.ErrorIs(t, err, ErrNotFitted)
	})
}
