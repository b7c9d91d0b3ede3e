package domain

import (
	"encoding/gob"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// maxComponents caps the dimensionality reduction; the effective
	// component count is min(maxComponents, samples, feature dims).
	maxComponents = 100

	// ridgeAlpha is the L2 regularization strength of the regression.
	ridgeAlpha = 1.0

	preferenceModelVersion = 1
)

// PreferenceModel is one user's photo-taste regressor. Fit projects rated
// photo feature vectors onto their principal components and fits a ridge
// regression from the reduced features to the user's 1-5 ratings,
// optionally weighting samples by feedback-derived weights. Predict scores
// an unseen photo's feature vector on the same rating scale.
type PreferenceModel struct {
	extractorVersion string

	featureDim int
	components int

	xMean     []float64
	comp      []float64 // featureDim x components, row-major
	beta      []float64
	intercept float64

	fitted bool
}

// NewPreferenceModel returns an unfitted model tied to the feature
// extractor version its training vectors came from.
func NewPreferenceModel(extractorVersion string) *PreferenceModel {
	return &PreferenceModel{extractorVersion: extractorVersion}
}

// Fitted reports whether Fit has succeeded.
func (m *PreferenceModel) Fitted() bool {
	return m.fitted
}

// ExtractorVersion returns the feature extractor version the model was
// trained against.
func (m *PreferenceModel) ExtractorVersion() string {
	return m.extractorVersion
}

// Fit trains the model on n feature vectors and their ratings. weights may
// be nil for uniform sample weights. Fails with InsufficientDataError when
// there is nothing to reduce.
func (m *PreferenceModel) Fit(features [][]float64, ratings []float64, weights []float64) error {
	n := len(features)
	if n == 0 || len(features[0]) == 0 {
		return &InsufficientDataError{Samples: n}
	}
	d := len(features[0])
	if len(ratings) != n {
		return fmt.Errorf("fitting preference model: %d feature vectors but %d ratings", n, len(ratings))
	}
	if weights != nil && len(weights) != n {
		return fmt.Errorf("fitting preference model: %d feature vectors but %d weights", n, len(weights))
	}
	for i, f := range features {
		if len(f) != d {
			return fmt.Errorf("fitting preference model: feature vector %d has %d dimensions, want %d", i, len(f), d)
		}
	}

	k := maxComponents
	if n < k {
		k = n
	}
	if d < k {
		k = d
	}
	if k < 1 {
		return &InsufficientDataError{Samples: n, Features: d}
	}

	xMean := make([]float64, d)
	for _, f := range features {
		floats.Add(xMean, f)
	}
	floats.Scale(1/float64(n), xMean)

	xc := mat.NewDense(n, d, nil)
	for i, f := range features {
		for j, x := range f {
			xc.Set(i, j, x-xMean[j])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(xc, mat.SVDThin) {
		return fmt.Errorf("fitting preference model: SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	comp := make([]float64, d*k)
	for i := 0; i < d; i++ {
		for j := 0; j < k; j++ {
			comp[i*k+j] = v.At(i, j)
		}
	}

	var z mat.Dense
	z.Mul(xc, mat.NewDense(d, k, comp))

	if weights == nil {
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1
		}
	}
	wSum := floats.Sum(weights)
	if wSum <= 0 {
		return fmt.Errorf("fitting preference model: sample weights sum to %v", wSum)
	}

	zMean := make([]float64, k)
	var yMean float64
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			zMean[j] += weights[i] * z.At(i, j)
		}
		yMean += weights[i] * ratings[i]
	}
	floats.Scale(1/wSum, zMean)
	yMean /= wSum

	// Normal equations for weighted ridge on centered data, with the
	// intercept left unpenalized.
	a := mat.NewSymDense(k, nil)
	b := mat.NewVecDense(k, nil)
	for i := 0; i < n; i++ {
		yc := ratings[i] - yMean
		for j := 0; j < k; j++ {
			zj := z.At(i, j) - zMean[j]
			b.SetVec(j, b.AtVec(j)+weights[i]*zj*yc)
			for l := j; l < k; l++ {
				zl := z.At(i, l) - zMean[l]
				a.SetSym(j, l, a.At(j, l)+weights[i]*zj*zl)
			}
		}
	}
	for j := 0; j < k; j++ {
		a.SetSym(j, j, a.At(j, j)+ridgeAlpha)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		return fmt.Errorf("fitting preference model: solving ridge system: %w", err)
	}

	m.featureDim = d
	m.components = k
	m.xMean = xMean
	m.comp = comp
	m.beta = make([]float64, k)
	for j := 0; j < k; j++ {
		m.beta[j] = beta.AtVec(j)
	}
	m.intercept = yMean - floats.Dot(zMean, m.beta)
	m.fitted = true
	return nil
}

// Predict scores one photo feature vector on the training rating scale.
func (m *PreferenceModel) Predict(feature []float64) (float64, error) {
	if !m.fitted {
		return 0, ErrNotFitted
	}
	if len(feature) != m.featureDim {
		return 0, fmt.Errorf("predicting preference: got %d dimensions, want %d", len(feature), m.featureDim)
	}

	pred := m.intercept
	for j := 0; j < m.components; j++ {
		var zj float64
		for i := 0; i < m.featureDim; i++ {
			zj += (feature[i] - m.xMean[i]) * m.comp[i*m.components+j]
		}
		pred += zj * m.beta[j]
	}
	return pred, nil
}

// PredictBatch scores many feature vectors.
func (m *PreferenceModel) PredictBatch(features [][]float64) ([]float64, error) {
	preds := make([]float64, len(features))
	for i, f := range features {
		p, err := m.Predict(f)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

type preferenceModelSnapshot struct {
	Version          int
	ExtractorVersion string
	FeatureDim       int
	Components       int
	XMean            []float64
	Comp             []float64
	Beta             []float64
	Intercept        float64
}

// Encode writes a versioned snapshot of a fitted model.
func (m *PreferenceModel) Encode(w io.Writer) error {
	if !m.fitted {
		return ErrNotFitted
	}

	snap := preferenceModelSnapshot{
		Version:          preferenceModelVersion,
		ExtractorVersion: m.extractorVersion,
		FeatureDim:       m.featureDim,
		Components:       m.components,
		XMean:            m.xMean,
		Comp:             m.comp,
		Beta:             m.beta,
		Intercept:        m.intercept,
	}
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("encoding preference model: %w", err)
	}
	return nil
}

// DecodePreferenceModel restores a snapshot. It fails with
// ModelVersionError when the artifact predates the current format or was
// trained against a different extractor version, so callers fall back to
// recalibration instead of scoring with mismatched features.
func DecodePreferenceModel(r io.Reader, extractorVersion string) (*PreferenceModel, error) {
	var snap preferenceModelSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding preference model: %w", err)
	}

	if snap.Version != preferenceModelVersion {
		return nil, &ModelVersionError{Reason: fmt.Sprintf("artifact version %d, want %d", snap.Version, preferenceModelVersion)}
	}
	if snap.ExtractorVersion != extractorVersion {
		return nil, &ModelVersionError{Reason: fmt.Sprintf("trained with extractor %q, current %q", snap.ExtractorVersion, extractorVersion)}
	}
	if len(snap.XMean) != snap.FeatureDim || len(snap.Comp) != snap.FeatureDim*snap.Components || len(snap.Beta) != snap.Components {
		return nil, &ModelVersionError{Reason: "artifact dimensions are inconsistent"}
	}

	return &PreferenceModel{
		extractorVersion: snap.ExtractorVersion,
		featureDim:       snap.FeatureDim,
		components:       snap.Components,
		xMean:            snap.XMean,
		comp:             snap.Comp,
		beta:             snap.Beta,
		intercept:        snap.Intercept,
		fitted:           true,
	}, nil
}
