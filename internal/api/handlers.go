package api

import (
	"net/http"
	"time"

	"diabetes-api/internal/predictor"
	"diabetes-api/internal/schema"

	"github.com/cockroachdb/errors"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IndexResponse{
		Message: "Diabetes Detection API",
		Endpoints: map[string]string{
			"/api/health":  "GET - Health check",
			"/api/predict": "POST - Predict diabetes risk",
			"/api/model":   "GET - Model and feature information",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		ModelLoaded:  s.svc.ModelLoaded(),
		ScalerLoaded: s.svc.ScalerLoaded(),
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	res, err := s.predict(w, r)
	if err != nil {
		apiErr := asError(err)
		s.rec.PredictionFailed(string(apiErr.Kind))
		writeError(w, r, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		Prediction: res.Label,
		Probability: Probability{
			NoDiabetes: res.NoDiabetes,
			Diabetes:   res.Diabetes,
		},
		Message: res.Message,
	})
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) (predictor.Result, error) {
	if !s.svc.Ready() {
		return predictor.Result{}, newError(KindModelUnavailable, MsgModelUnavailable, s.svc.LoadError())
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	payload, err := predictor.DecodePayload(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return predictor.Result{}, newError(KindBadInput, MsgBodyTooLarge, err)
		}
		return predictor.Result{}, newError(KindBadInput, MsgNotObject, err)
	}

	vec, err := predictor.Vector(payload)
	if err != nil {
		var fieldErr *predictor.FieldError
		if errors.As(err, &fieldErr) {
			return predictor.Result{}, newError(KindBadInput, fieldErr.Error(), err)
		}
		return predictor.Result{}, newError(KindBadInput, MsgNotObject, err)
	}

	start := time.Now()
	res, err := s.svc.Predict(vec)
	if err != nil {
		if errors.Is(err, predictor.ErrUnavailable) {
			return predictor.Result{}, newError(KindModelUnavailable, MsgModelUnavailable, err)
		}
		return predictor.Result{}, newError(KindInternal, MsgInternal, err)
	}
	s.rec.ObservePrediction(res.Label, res.Diabetes, time.Since(start))
	return res, nil
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	features := make([]FeatureInfo, len(schema.Features))
	for i, f := range schema.Features {
		features[i] = FeatureInfo{Name: f.Name, Field: f.Field, Default: f.Default, Help: f.Help}
	}

	resp := ModelInfoResponse{
		ModelLoaded: s.svc.Ready(),
		Features:    features,
		LatestRun:   s.opts.LatestRun,
		RecentRuns:  s.opts.RecentRuns,
	}
	if p, ok := s.svc.Params(); ok {
		resp.Model = &ModelParams{
			Trees:     p.Trees,
			MaxDepth:  p.MaxDepth,
			Depth:     p.Depth,
			Seed:      p.Seed,
			NFeatures: p.NFeatures,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
