package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testExtractorVersion = "mobilenet_v2-224"

// Training vectors lying along one axis, rated 1-5. The centroid is
// (3, 0, 0, 0) with a mean rating of 3.
func linearTrainingSet() ([][]float64, []float64) {
	features := [][]float64{
		{1, 0, 0, 0},
		{3, 0, 0, 0},
		{5, 0, 0, 0},
		{2, 0, 0, 0},
		{4, 0, 0, 0},
	}
	ratings := []float64{1, 3, 5, 2, 4}
	return features, ratings
}

func TestPreferenceModelFitValidation(t *testing.T) {
	cases := []struct {
		name     string
		features [][]float64
		ratings  []float64
		weights  []float64
	}{
		{
			name: "no_samples",
		},
		{
			name:     "empty_feature_vector",
			features: [][]float64{{}},
			ratings:  []float64{3},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewPreferenceModel(testExtractorVersion)
			err := m.Fit(tc.features, tc.ratings, tc.weights)
			assert.True(t, IsInsufficientData(err))
			assert.False(t, m.Fitted())
		})
	}

	t.Run("mismatched_ratings", func(t *testing.T) {
		m := NewPreferenceModel(testExtractorVersion)
		err := m.Fit([][]float64{{1, 2}, {3, 4}}, []float64{1}, nil)
		require.Error(t, err)
		assert.False(t, IsInsufficientData(err))
	})

	t.Run("ragged_features", func(t *testing.T) {
		m := NewPreferenceModel(testExtractorVersion)
		err := m.Fit([][]float64{{1, 2}, {3}}, []float64{1, 2}, nil)
		require.Error(t, err)
	})
}

func TestPreferenceModelUnfitted(t *testing.T) {
	m := NewPreferenceModel(testExtractorVersion)

	_, err := m.Predict([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotFitted)

	var buf bytes.Buffer
	assert.ErrorIs(t, m.Encode(&buf), ErrNotFitted)
}

func TestPreferenceModelFitAndPredict(t *testing.T) {
	features, ratings := linearTrainingSet()

	m := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, m.Fit(features, ratings, nil))
	require.True(t, m.Fitted())

	t.Run("centroid_predicts_mean_rating", func(t *testing.T) {
		got, err := m.Predict([]float64{3, 0, 0, 0})
		require.NoError(t, err)
		assert.InDelta(t, 3.0, got, 1e-9)
	})

	t.Run("predictions_follow_rating_order", func(t *testing.T) {
		low, err := m.Predict([]float64{1, 0, 0, 0})
		require.NoError(t, err)
		high, err := m.Predict([]float64{5, 0, 0, 0})
		require.NoError(t, err)
		assert.Greater(t, high, low)
	})

	t.Run("unseen_photo_within_extrapolation_bound", func(t *testing.T) {
		got, err := m.Predict([]float64{4.5, 0.1, 0, 0})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 6.0)
	})

	t.Run("dimension_mismatch_fails", func(t *testing.T) {
		_, err := m.Predict([]float64{1, 2})
		require.Error(t, err)
	})
}

func TestPreferenceModelSampleWeights(t *testing.T) {
	features, ratings := linearTrainingSet()

	uniform := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, uniform.Fit(features, ratings, nil))

	explicit := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, explicit.Fit(features, ratings, []float64{1, 1, 1, 1, 1}))

	probe := []float64{2.5, 0, 0, 0}
	p1, err := uniform.Predict(probe)
	require.NoError(t, err)
	p2, err := explicit.Predict(probe)
	require.NoError(t, err)
	assert.InDelta(t, p1, p2, 1e-9)

	t.Run("skewed_weights_shift_prediction", func(t *testing.T) {
		skewed := NewPreferenceModel(testExtractorVersion)
		require.NoError(t, skewed.Fit(features, ratings, []float64{0.1, 0.1, 1, 0.1, 1}))

		// Weight concentrated on the high-rated samples pulls the
		// prediction at the unweighted centroid above the mean rating.
		got, err := skewed.Predict([]float64{3, 0, 0, 0})
		require.NoError(t, err)
		assert.Greater(t, got, 3.0)
	})

	t.Run("nonpositive_weight_sum_fails", func(t *testing.T) {
		m := NewPreferenceModel(testExtractorVersion)
		err := m.Fit(features, ratings, []float64{0, 0, 0, 0, 0})
		require.Error(t, err)
	})
}

func TestPreferenceModelPredictBatch(t *testing.T) {
	features, ratings := linearTrainingSet()

	m := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, m.Fit(features, ratings, nil))

	preds, err := m.PredictBatch(features)
	require.NoError(t, err)
	require.Len(t, preds, len(features))

	for i, f := range features {
		single, err := m.Predict(f)
		require.NoError(t, err)
		assert.Equal(t, single, preds[i])
	}
}

func TestPreferenceModelRoundTrip(t *testing.T) {
	features, ratings := linearTrainingSet()

	m := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, m.Fit(features, ratings, nil))

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	restored, err := DecodePreferenceModel(&buf, testExtractorVersion)
	require.NoError(t, err)
	require.True(t, restored.Fitted())
	assert.Equal(t, testExtractorVersion, restored.ExtractorVersion())

	probe := []float64{4.2, -0.3, 0.5, 0}
	want, err := m.Predict(probe)
	require.NoError(t, err)
	got, err := restored.Predict(probe)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestDecodePreferenceModelVersionChecks(t *testing.T) {
	features, ratings := linearTrainingSet()

	m := NewPreferenceModel(testExtractorVersion)
	require.NoError(t, m.Fit(features, ratings, nil))

	t.Run("extractor_version_mismatch", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, m.Encode(&buf))

		_, err := DecodePreferenceModel(&buf, "efficientnet_v2-b0")
		var verErr *ModelVersionError
		require.ErrorAs(t, err, &verErr)
	})

	t.Run("garbage_artifact", func(t *testing.T) {
		_, err := DecodePreferenceModel(bytes.NewReader([]byte("not a model")), testExtractorVersion)
		require.Error(t, err)
	})
}
