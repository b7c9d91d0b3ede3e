package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// InterestModel standardizes interest-rating vectors against a reference
// population and scores pairs of users by cosine similarity of their
// standardized vectors. Fit establishes the per-dimension statistics; all
// other methods fail with ErrNotFitted until then.
type InterestModel struct {
	means  []float64
	scales []float64
	fitted bool
}

// NewInterestModel returns an unfitted model.
func NewInterestModel() *InterestModel {
	return &InterestModel{}
}

// Fit computes per-dimension mean and standard deviation from the corpus.
// Dimensions with zero variance get unit scale, so constant dimensions
// pass through centered rather than exploding.
func (m *InterestModel) Fit(corpus [][]float64) error {
	if len(corpus) == 0 || len(corpus[0]) == 0 {
		return &InsufficientDataError{Samples: len(corpus)}
	}

	dims := len(corpus[0])
	for i, v := range corpus {
		if len(v) != dims {
			return fmt.Errorf("fitting interest model: vector %d has %d dimensions, want %d", i, len(v), dims)
		}
	}

	means := make([]float64, dims)
	for _, v := range corpus {
		floats.Add(means, v)
	}
	floats.Scale(1/float64(len(corpus)), means)

	scales := make([]float64, dims)
	for _, v := range corpus {
		for j, x := range v {
			d := x - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / float64(len(corpus)))
		if scales[j] == 0 {
			scales[j] = 1
		}
	}

	m.means = means
	m.scales = scales
	m.fitted = true
	return nil
}

// Fitted reports whether Fit has run.
func (m *InterestModel) Fitted() bool {
	return m.fitted
}

// Transform standardizes a single interest vector.
func (m *InterestModel) Transform(v []float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if len(v) != len(m.means) {
		return nil, fmt.Errorf("transforming interest vector: got %d dimensions, want %d", len(v), len(m.means))
	}

	out := make([]float64, len(v))
	for j, x := range v {
		out[j] = (x - m.means[j]) / m.scales[j]
	}
	return out, nil
}

// CalculateSimilarity returns the cosine similarity of the standardized
// vectors, clamped to [0, 1]. Anti-correlated interests score 0 rather
// than contributing a negative signal.
func (m *InterestModel) CalculateSimilarity(v1, v2 []float64) (float64, error) {
	if !m.fitted {
		return 0, ErrNotFitted
	}

	n1, err := m.Transform(v1)
	if err != nil {
		return 0, err
	}
	n2, err := m.Transform(v2)
	if err != nil {
		return 0, err
	}

	return clampedCosine(n1, n2), nil
}

// BatchCalculateSimilarity scores one user's vector against many others.
func (m *InterestModel) BatchCalculateSimilarity(v []float64, others [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}

	nv, err := m.Transform(v)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(others))
	for i, other := range others {
		no, err := m.Transform(other)
		if err != nil {
			return nil, fmt.Errorf("transforming candidate %d: %w", i, err)
		}
		scores[i] = clampedCosine(nv, no)
	}
	return scores, nil
}

func clampedCosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}

	sim := floats.Dot(a, b) / (na * nb)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
