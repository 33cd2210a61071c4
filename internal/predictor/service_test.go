package predictor

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"diabetes-api/internal/artifact"
	"diabetes-api/internal/forest"
	"diabetes-api/internal/preprocessing"
	"diabetes-api/internal/schema"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// stubScaler subtracts 1 from every feature and records what it saw.
type stubScaler struct {
	mu   sync.Mutex
	seen [][]float64
	err  error
}

func (s *stubScaler) TransformVector(x []float64) ([]float64, error) {
	s.mu.Lock()
	s.seen = append(s.seen, append([]float64(nil), x...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - 1
	}
	return out, nil
}

// stubModel says "diabetes" when the scaled BMI exceeds 29.
type stubModel struct{}

func (stubModel) PredictProba(x []float64) ([forest.NumClasses]float64, error) {
	if x[schema.IndexOf("BMI")] > 29 {
		return [forest.NumClasses]float64{0.2, 0.8}, nil
	}
	return [forest.NumClasses]float64{0.7, 0.3}, nil
}

func (m stubModel) Predict(x []float64) (int, error) {
	p, _ := m.PredictProba(x)
	if p[1] > p[0] {
		return 1, nil
	}
	return 0, nil
}

func TestService_Predict(t *testing.T) {
	scaler := &stubScaler{}
	svc := New(scaler, stubModel{})
	require.True(t, svc.Ready())
	assert.True(t, svc.ModelLoaded())
	assert.True(t, svc.ScalerLoaded())

	x := schema.Defaults()
	res, err := svc.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Label)
	assert.Equal(t, LowRiskMessage, res.Message)
	assert.InDelta(t, 1.0, res.NoDiabetes+res.Diabetes, 1e-12)
	assert.Equal(t, x, scaler.seen[0], "scaler receives the raw vector")

	x[schema.IndexOf("BMI")] = 40
	res, err = svc.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Label)
	assert.Equal(t, HighRiskMessage, res.Message)
	assert.Equal(t, 0.8, res.Diabetes)
	assert.Equal(t, 0.2, res.NoDiabetes)
}

func TestService_PredictErrors(t *testing.T) {
	svc := New(&stubScaler{}, stubModel{})
	_, err := svc.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))

	failing := New(&stubScaler{err: errors.New("boom")}, stubModel{})
	_, err = failing.Predict(schema.Defaults())
	assert.ErrorContains(t, err, "boom")
}

func TestService_Degraded(t *testing.T) {
	dir := t.TempDir()
	svc := Load(filepath.Join(dir, "scaler.gob"), filepath.Join(dir, "model.gob"))

	assert.False(t, svc.Ready())
	assert.False(t, svc.ModelLoaded())
	assert.False(t, svc.ScalerLoaded())
	assert.Error(t, svc.LoadError())

	_, err := svc.Predict(schema.Defaults())
	assert.True(t, errors.Is(err, ErrUnavailable))

	nilModel := New(&stubScaler{}, nil)
	assert.False(t, nilModel.Ready())
	_, ok := nilModel.Params()
	assert.False(t, ok)
}

func TestService_LoadFromArtifacts(t *testing.T) {
	n := 60
	X := mat.NewDense(n, schema.NumFeatures, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		row := schema.Defaults()
		row[schema.IndexOf("BMI")] = float64(18 + i%30)
		row[schema.IndexOf("Age")] = float64(1 + i%13)
		X.SetRow(i, row)
		if row[schema.IndexOf("BMI")] > 32 {
			y[i] = 1
		}
	}
	scaler := preprocessing.NewStandardScaler(schema.Names())
	Z, err := scaler.FitTransform(X)
	require.NoError(t, err)
	model := forest.New(forest.WithEstimators(8), forest.WithMaxDepth(4))
	require.NoError(t, model.Fit(context.Background(), Z, y))

	dir := t.TempDir()
	scalerPath := filepath.Join(dir, "scaler.gob")
	modelPath := filepath.Join(dir, "diabetes_model.gob")
	require.NoError(t, artifact.SavePair(scalerPath, modelPath, scaler, model))

	svc := Load(scalerPath, modelPath)
	require.True(t, svc.Ready())
	params, ok := svc.Params()
	require.True(t, ok)
	assert.Equal(t, model.Depth(), params.Depth)
	assert.GreaterOrEqual(t, params.Depth, 1)
	params.Depth = 0
	assert.Equal(t, Params{Trees: 8, MaxDepth: 4, Seed: 42, NFeatures: schema.NumFeatures}, params)

	x := schema.Defaults()
	x[schema.IndexOf("BMI")] = 45
	first, err := svc.Predict(x)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Predict(x)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, first, r)
	}
}

func TestMessageFor(t *testing.T) {
	assert.Equal(t, "High risk of diabetes", MessageFor(1))
	assert.Equal(t, "Low risk of diabetes", MessageFor(0))
}
