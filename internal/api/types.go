package api

import "diabetes-api/internal/storage"

// PredictResponse is the body of a successful POST /api/predict.
type PredictResponse struct {
	Prediction  int         `json:"prediction"`
	Probability Probability `json:"probability"`
	Message     string      `json:"message"`
}

type Probability struct {
	NoDiabetes float64 `json:"no_diabetes"`
	Diabetes   float64 `json:"diabetes"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ScalerLoaded bool   `json:"scaler_loaded"`
}

type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ModelInfoResponse describes the served model and its inputs.
type ModelInfoResponse struct {
	ModelLoaded bool          `json:"model_loaded"`
	Features    []FeatureInfo `json:"features"`
	Model       *ModelParams  `json:"model,omitempty"`
	LatestRun   *storage.Run  `json:"latest_run,omitempty"`
	RecentRuns  []storage.Run `json:"recent_runs,omitempty"`
}

type FeatureInfo struct {
	Name    string  `json:"name"`
	Field   string  `json:"field"`
	Default float64 `json:"default"`
	Help    string  `json:"help,omitempty"`
}

type ModelParams struct {
	Trees     int   `json:"trees"`
	MaxDepth  int   `json:"max_depth"`
	Depth     int   `json:"depth"`
	Seed      int64 `json:"seed"`
	NFeatures int   `json:"n_features"`
}
