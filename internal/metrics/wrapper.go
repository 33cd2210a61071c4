package metrics

import "time"

// Recorder is what the HTTP layer needs from metrics; it lets handlers run
// without a registry when metrics are disabled.
type Recorder interface {
	ObservePrediction(label int, diabetes float64, elapsed time.Duration)
	PredictionFailed(kind string)
	ObserveRequest(route string, code int, elapsed time.Duration)
	SetArtifactsLoaded(loaded bool)
}

var (
	_ Recorder = (*Metrics)(nil)
	_ Recorder = Nop{}
)

// Nop discards everything.
type Nop struct{}

func (Nop) ObservePrediction(int, float64, time.Duration) {}

func (Nop) PredictionFailed(string) {}

func (Nop) ObserveRequest(string, int, time.Duration) {}

func (Nop) SetArtifactsLoaded(bool) {}
