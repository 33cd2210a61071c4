// Package predictor holds the prediction service state: the scaler and
// forest loaded once at startup, and the mapping from request payloads to
// feature vectors.
package predictor

import (
	"diabetes-api/internal/artifact"
	"diabetes-api/internal/forest"
	"diabetes-api/internal/schema"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// ErrUnavailable is returned by Predict when the artifacts failed to load.
var ErrUnavailable = errors.New("model not loaded")

const (
	HighRiskMessage = "High risk of diabetes"
	LowRiskMessage  = "Low risk of diabetes"
)

// Transformer rescales a raw feature vector.
type Transformer interface {
	TransformVector(x []float64) ([]float64, error)
}

// Classifier scores a rescaled feature vector.
type Classifier interface {
	Predict(x []float64) (int, error)
	PredictProba(x []float64) ([forest.NumClasses]float64, error)
}

// Result is one prediction.
type Result struct {
	Label      int
	NoDiabetes float64
	Diabetes   float64
	Message    string
}

// Params describes the loaded forest.
type Params struct {
	Trees     int
	MaxDepth  int
	Depth     int
	Seed      int64
	NFeatures int
}

// Service is either ready (both artifacts present) or degraded for its whole
// lifetime. It is read-only after construction and safe for concurrent use.
type Service struct {
	scaler  Transformer
	model   Classifier
	params  Params
	loadErr error
}

// New wraps already-loaded artifacts.
func New(scaler Transformer, model Classifier) *Service {
	if scaler == nil || model == nil {
		return &Service{loadErr: ErrUnavailable}
	}
	return &Service{scaler: scaler, model: model}
}

// Load reads both artifacts. It never fails: a missing or corrupt file is
// logged once and the service comes up degraded with neither artifact
// recorded as loaded.
func Load(scalerPath, modelPath string) *Service {
	scaler, err := artifact.LoadScaler(scalerPath)
	if err != nil {
		return degraded(err, scalerPath, modelPath)
	}
	model, err := artifact.LoadModel(modelPath)
	if err != nil {
		return degraded(err, scalerPath, modelPath)
	}

	log.Info().
		Str("scaler_path", scalerPath).
		Str("model_path", modelPath).
		Int("trees", len(model.Trees)).
		Int("depth", model.Depth()).
		Msg("model and scaler loaded")
	return &Service{
		scaler: scaler,
		model:  model,
		params: Params{
			Trees:     len(model.Trees),
			MaxDepth:  model.MaxDepth,
			Depth:     model.Depth(),
			Seed:      model.Seed,
			NFeatures: model.NFeatures,
		},
	}
}

func degraded(err error, scalerPath, modelPath string) *Service {
	log.Error().
		Err(err).
		Str("scaler_path", scalerPath).
		Str("model_path", modelPath).
		Msg("failed to load artifacts; run the trainer first. predictions are disabled until restart")
	return &Service{loadErr: err}
}

// Ready reports whether predictions can be served.
func (s *Service) Ready() bool { return s.loadErr == nil }

// ModelLoaded reports whether the classifier is present.
func (s *Service) ModelLoaded() bool { return s.model != nil }

// ScalerLoaded reports whether the scaler is present.
func (s *Service) ScalerLoaded() bool { return s.scaler != nil }

// Params returns the forest parameters when the service was built by Load.
func (s *Service) Params() (Params, bool) {
	return s.params, s.params.Trees > 0
}

// LoadError is the startup failure, if any.
func (s *Service) LoadError() error { return s.loadErr }

// Predict scales features and classifies them. features must be in schema
// order.
func (s *Service) Predict(features []float64) (Result, error) {
	if !s.Ready() {
		return Result{}, errors.Mark(errors.Wrap(s.loadErr, "predict"), ErrUnavailable)
	}
	if len(features) != schema.NumFeatures {
		return Result{}, errors.Newf("predict: expected %d features, got %d", schema.NumFeatures, len(features))
	}

	scaled, err := s.scaler.TransformVector(features)
	if err != nil {
		return Result{}, errors.Wrap(err, "scale features")
	}
	label, err := s.model.Predict(scaled)
	if err != nil {
		return Result{}, errors.Wrap(err, "classify")
	}
	proba, err := s.model.PredictProba(scaled)
	if err != nil {
		return Result{}, errors.Wrap(err, "class probabilities")
	}

	return Result{
		Label:      label,
		NoDiabetes: proba[0],
		Diabetes:   proba[1],
		Message:    MessageFor(label),
	}, nil
}

// MessageFor maps a label to its human-readable message.
func MessageFor(label int) string {
	if label == 1 {
		return HighRiskMessage
	}
	return LowRiskMessage
}
