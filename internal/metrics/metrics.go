// Package metrics provides Prometheus metrics for the prediction service.
// It covers prediction outcomes, inference latency, artifact state and HTTP
// traffic, exposed via the /metrics endpoint.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	// Prediction metrics
	Predictions      *prometheus.CounterVec // Predictions served, by label
	PredictionErrors *prometheus.CounterVec // Failed predictions, by error kind
	PredictLatency   prometheus.Histogram   // Scale + classify latency in seconds
	DiabetesScores   prometheus.Histogram   // Distribution of P(diabetes)
	ArtifactsLoaded  prometheus.Gauge       // 1 when model and scaler are loaded

	// HTTP metrics
	Requests        *prometheus.CounterVec   // Requests by route and status code
	RequestDuration *prometheus.HistogramVec // Handler duration by route
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics on a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diabetes_predictions_total",
			Help: "Total number of predictions served, by predicted label",
		}, []string{"label"}),
		PredictionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diabetes_prediction_errors_total",
			Help: "Total number of failed prediction requests, by error kind",
		}, []string{"kind"}),
		PredictLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "diabetes_predict_latency_seconds",
			Help:    "Scaling and classification latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		DiabetesScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "diabetes_probability",
			Help:    "Distribution of predicted diabetes probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ArtifactsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "diabetes_artifacts_loaded",
			Help: "1 when both model and scaler are loaded, 0 otherwise",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, by route and status code",
		}, []string{"route", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP handler duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObservePrediction records one successful prediction.
func (m *Metrics) ObservePrediction(label int, diabetes float64, elapsed time.Duration) {
	m.Predictions.WithLabelValues(strconv.Itoa(label)).Inc()
	m.DiabetesScores.Observe(diabetes)
	m.PredictLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) PredictionFailed(kind string) {
	m.PredictionErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetArtifactsLoaded flips the artifacts gauge.
func (m *Metrics) SetArtifactsLoaded(loaded bool) {
	if loaded {
		m.ArtifactsLoaded.Set(1)
		return
	}
	m.ArtifactsLoaded.Set(0)
}
