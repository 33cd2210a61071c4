package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry_Isolated(t *testing.T) {
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())

	a.PredictionFailed("bad_input")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.PredictionErrors.WithLabelValues("bad_input")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PredictionErrors.WithLabelValues("bad_input")))
}

func TestMetrics_ObservePrediction(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.ObservePrediction(1, 0.8, 2*time.Millisecond)
	m.ObservePrediction(0, 0.1, time.Millisecond)
	m.ObservePrediction(0, 0.3, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("0")))

	count, err := testutil.GatherAndCount(registry, "diabetes_probability", "diabetes_predict_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per histogram")
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveRequest("/api/predict", 200, 5*time.Millisecond)
	m.ObserveRequest("/api/predict", 400, time.Millisecond)
	m.ObserveRequest("/api/predict", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/predict", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/predict", "400")))
}

func TestMetrics_ArtifactsLoaded(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.SetArtifactsLoaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArtifactsLoaded))
	m.SetArtifactsLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ArtifactsLoaded))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.ObservePrediction(1, 0.5, time.Second)
		r.PredictionFailed("internal")
		r.ObserveRequest("/", 200, time.Second)
		r.SetArtifactsLoaded(true)
	})
}
