// Package trainer runs the offline training pipeline: load the survey CSV,
// standardize, split, fit the forest, report test metrics and persist the
// scaler and model together.
package trainer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"diabetes-api/internal/artifact"
	"diabetes-api/internal/cfg"
	"diabetes-api/internal/dataset"
	"diabetes-api/internal/evaluation"
	"diabetes-api/internal/forest"
	"diabetes-api/internal/preprocessing"
	"diabetes-api/internal/schema"
	"diabetes-api/internal/storage"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Options controls one training run.
type Options struct {
	DataPath   string
	ModelPath  string
	ScalerPath string

	Trees    int
	MaxDepth int
	TestSize float64
	Seed     int64
	Jobs     int

	// ScaleAfterSplit fits the scaler on the training rows only. When false
	// the scaler sees the whole dataset, test rows included.
	ScaleAfterSplit bool

	// Out receives the progress and metric lines; nil means stdout.
	Out io.Writer
}

// OptionsFrom maps loaded settings onto trainer options.
func OptionsFrom(s cfg.Settings) Options {
	return Options{
		DataPath:        s.Training.DataPath,
		ModelPath:       s.ModelPath,
		ScalerPath:      s.ScalerPath,
		Trees:           s.Training.Trees,
		MaxDepth:        s.Training.MaxDepth,
		TestSize:        s.Training.TestSize,
		Seed:            s.Training.Seed,
		Jobs:            s.Training.Jobs,
		ScaleAfterSplit: s.Training.ScaleAfterSplit,
	}
}

// RunRecorder persists a finished run. *storage.Store satisfies it.
type RunRecorder interface {
	SaveRun(run storage.Run) error
}

// Result is what a successful run produced.
type Result struct {
	Run    storage.Run
	Report evaluation.Report
}

// Run trains and saves the model. Nothing is written to ModelPath or
// ScalerPath unless every step before saving succeeds. runs may be nil.
func Run(ctx context.Context, opts Options, runs RunRecorder) (*Result, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	started := time.Now().UTC()
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	fmt.Fprintln(out, "Loading data...")
	ds, err := dataset.LoadCSV(opts.DataPath)
	if err != nil {
		return nil, errors.Wrap(err, "load data")
	}

	classes := ds.ClassCounts()
	logger.Info().
		Int("no_diabetes", classes[0]).
		Int("prediabetes", classes[1]).
		Int("diabetes", classes[schema.DiabeticClass]).
		Msg("class distribution")

	if pos, neg := ds.Positives(), ds.Rows()-ds.Positives(); pos < 2 || neg < 2 {
		return nil, errors.Newf("need at least 2 rows of each class, got %d positive and %d negative", pos, neg)
	}
	trainIdx, testIdx, err := dataset.StratifiedSplit(ds.Y, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "split data")
	}

	fmt.Fprintln(out, "Scaling features...")
	scaler := preprocessing.NewStandardScaler(schema.Names())
	var XTrain, XTest *mat.Dense
	if opts.ScaleAfterSplit {
		XTrain, err = scaler.FitTransform(dataset.Rows(ds.X, trainIdx))
		if err != nil {
			return nil, errors.Wrap(err, "fit scaler")
		}
		XTest, err = scaler.Transform(dataset.Rows(ds.X, testIdx))
		if err != nil {
			return nil, errors.Wrap(err, "scale test rows")
		}
	} else {
		logger.Warn().Msg("scaler is fit on the full dataset before the split; test metrics are optimistic. set scale_after_split to fit on training rows only")
		scaled, err := scaler.FitTransform(ds.X)
		if err != nil {
			return nil, errors.Wrap(err, "fit scaler")
		}
		XTrain = dataset.Rows(scaled, trainIdx)
		XTest = dataset.Rows(scaled, testIdx)
	}
	yTrain := dataset.Labels(ds.Y, trainIdx)
	yTest := dataset.Labels(ds.Y, testIdx)

	fmt.Fprintln(out, "Training model...")
	model := forest.New(
		forest.WithEstimators(opts.Trees),
		forest.WithMaxDepth(opts.MaxDepth),
		forest.WithSeed(opts.Seed),
		forest.WithJobs(opts.Jobs),
	)
	fitStart := time.Now()
	if err := model.Fit(ctx, XTrain, yTrain); err != nil {
		return nil, errors.Wrap(err, "fit model")
	}
	logger.Info().
		Int("trees", opts.Trees).
		Int("train_rows", len(trainIdx)).
		Dur("elapsed", time.Since(fitStart)).
		Msg("forest fitted")

	pred, err := model.PredictMatrix(XTest)
	if err != nil {
		return nil, errors.Wrap(err, "predict test rows")
	}
	report, err := evaluation.Evaluate(yTest, pred)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}
	for _, w := range report.Warnings {
		logger.Warn().Str("metric", w.Metric).Msg(w.String())
	}

	fmt.Fprintln(out, "\nModel Performance:")
	fmt.Fprintf(out, "Accuracy: %.4f\n", report.Accuracy)
	fmt.Fprintf(out, "Precision: %.4f\n", report.Precision)
	fmt.Fprintf(out, "Recall: %.4f\n", report.Recall)
	fmt.Fprintf(out, "F1 Score: %.4f\n", report.F1)

	fmt.Fprintln(out, "\nSaving model and scaler...")
	if err := artifact.SavePair(opts.ScalerPath, opts.ModelPath, scaler, model); err != nil {
		return nil, errors.Wrap(err, "save artifacts")
	}
	fmt.Fprintln(out, "Model and scaler saved successfully!")

	run := storage.Run{
		ID:              runID,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
		DataPath:        opts.DataPath,
		ModelPath:       opts.ModelPath,
		ScalerPath:      opts.ScalerPath,
		Rows:            ds.Rows(),
		Positives:       ds.Positives(),
		Classes:         classes,
		TrainRows:       len(trainIdx),
		TestRows:        len(testIdx),
		Trees:           opts.Trees,
		MaxDepth:        opts.MaxDepth,
		TestSize:        opts.TestSize,
		Seed:            opts.Seed,
		ScaleAfterSplit: opts.ScaleAfterSplit,
		Accuracy:        report.Accuracy,
		Precision:       report.Precision,
		Recall:          report.Recall,
		F1:              report.F1,
	}
	if runs != nil {
		if err := runs.SaveRun(run); err != nil {
			logger.Warn().Err(err).Msg("failed to record training run")
		}
	}

	return &Result{Run: run, Report: report}, nil
}
