package storage

import "time"

// Run summarizes one trainer invocation.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	DataPath   string `json:"data_path"`
	ModelPath  string `json:"model_path"`
	ScalerPath string `json:"scaler_path"`

	Rows      int `json:"rows"`
	Positives int `json:"positives"`
	TrainRows int `json:"train_rows"`
	TestRows  int `json:"test_rows"`

	// Classes counts rows per raw Diabetes_012 value.
	Classes map[int]int `json:"classes,omitempty"`

	Trees           int     `json:"trees"`
	MaxDepth        int     `json:"max_depth"`
	TestSize        float64 `json:"test_size"`
	Seed            int64   `json:"seed"`
	ScaleAfterSplit bool    `json:"scale_after_split"`

	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Duration is the wall time the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
