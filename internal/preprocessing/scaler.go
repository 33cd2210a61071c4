// Package preprocessing holds the feature standardization fitted by the
// trainer and replayed by the prediction service.
package preprocessing

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotFitted is returned when a transform is requested before Fit.
	ErrNotFitted = errors.New("scaler is not fitted")
	// ErrDimension is returned when input width does not match the fit width.
	ErrDimension = errors.New("feature count mismatch")
	// ErrEmptyData is returned by Fit on an empty matrix.
	ErrEmptyData = errors.New("empty data")
)

// zeroScale is the std below which a column is treated as constant.
const zeroScale = 1e-8

// StandardScaler removes the mean and scales each column to unit variance
// using the population standard deviation. Constant columns keep scale 1.
//
// Exported fields are the persisted state; the scaler is never mutated
// after Fit.
type StandardScaler struct {
	Features []string
	Mean     []float64
	Scale    []float64
}

// NewStandardScaler returns an unfitted scaler for the named columns.
func NewStandardScaler(features []string) *StandardScaler {
	return &StandardScaler{Features: append([]string(nil), features...)}
}

// IsFitted reports whether Fit has completed.
func (s *StandardScaler) IsFitted() bool {
	return s != nil && len(s.Mean) > 0 && len(s.Mean) == len(s.Scale)
}

// NFeatures is the width the scaler was fit on.
func (s *StandardScaler) NFeatures() int {
	if s == nil {
		return 0
	}
	return len(s.Mean)
}

// Fit computes per-column mean and standard deviation.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(ErrEmptyData, "StandardScaler.Fit")
	}
	if len(s.Features) != 0 && len(s.Features) != c {
		return errors.Wrapf(ErrDimension, "StandardScaler.Fit: %d names for %d columns", len(s.Features), c)
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		m, std := stat.PopMeanStdDev(col, nil)
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return errors.Newf("StandardScaler.Fit: column %d has non-finite mean", j)
		}
		if math.Abs(std) < zeroScale {
			std = 1.0
		}
		mean[j] = m
		scale[j] = std
	}

	s.Mean = mean
	s.Scale = scale
	return nil
}

// Transform standardizes every row of X into a new matrix.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.IsFitted() {
		return nil, errors.Wrap(ErrNotFitted, "StandardScaler.Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures() {
		return nil, errors.Wrapf(ErrDimension, "StandardScaler.Transform: expected %d features, got %d", s.NFeatures(), c)
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}

// FitTransform fits on X and returns X standardized.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// TransformVector standardizes a single feature vector.
func (s *StandardScaler) TransformVector(x []float64) ([]float64, error) {
	if !s.IsFitted() {
		return nil, errors.Wrap(ErrNotFitted, "StandardScaler.TransformVector")
	}
	if len(x) != s.NFeatures() {
		return nil, errors.Wrapf(ErrDimension, "StandardScaler.TransformVector: expected %d features, got %d", s.NFeatures(), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}
