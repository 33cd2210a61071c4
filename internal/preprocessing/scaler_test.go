package preprocessing

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler_Fit(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1, 10, 5,
		2, 20, 5,
		3, 30, 5,
		4, 40, 5,
	})

	s := NewStandardScaler([]string{"a", "b", "c"})
	require.False(t, s.IsFitted())
	require.NoError(t, s.Fit(X))
	require.True(t, s.IsFitted())

	assert.InDeltaSlice(t, []float64{2.5, 25, 5}, s.Mean, 1e-12)
	// population std of 1..4 is sqrt(1.25)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	assert.InDelta(t, 10*math.Sqrt(1.25), s.Scale[1], 1e-12)
	assert.Equal(t, 1.0, s.Scale[2], "constant column keeps unit scale")
}

func TestStandardScaler_TransformHasZeroMeanUnitVariance(t *testing.T) {
	X := mat.NewDense(5, 2, []float64{
		18, 1,
		22, 0,
		31, 1,
		27, 1,
		40, 0,
	})

	s := NewStandardScaler(nil)
	Z, err := s.FitTransform(X)
	require.NoError(t, err)

	r, c := Z.Dims()
	for j := 0; j < c; j++ {
		var sum, sq float64
		for i := 0; i < r; i++ {
			sum += Z.At(i, j)
		}
		mean := sum / float64(r)
		for i := 0; i < r; i++ {
			d := Z.At(i, j) - mean
			sq += d * d
		}
		assert.InDelta(t, 0, mean, 1e-12)
		assert.InDelta(t, 1, sq/float64(r), 1e-12)
	}
}

func TestStandardScaler_TransformVectorMatchesMatrix(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 9})
	s := NewStandardScaler(nil)
	Z, err := s.FitTransform(X)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		v, err := s.TransformVector(mat.Row(nil, i, X))
		require.NoError(t, err)
		assert.InDeltaSlice(t, mat.Row(nil, i, Z), v, 1e-12)
	}
}

func TestStandardScaler_Errors(t *testing.T) {
	s := NewStandardScaler(nil)

	_, err := s.TransformVector([]float64{1})
	assert.True(t, errors.Is(err, ErrNotFitted))

	_, err = s.Transform(mat.NewDense(1, 1, []float64{1}))
	assert.True(t, errors.Is(err, ErrNotFitted))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.TransformVector([]float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrDimension))

	_, err = s.Transform(mat.NewDense(1, 3, []float64{1, 2, 3}))
	assert.True(t, errors.Is(err, ErrDimension))

	named := NewStandardScaler([]string{"only"})
	err = named.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	assert.True(t, errors.Is(err, ErrDimension))
}
