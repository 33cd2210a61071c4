package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"diabetes-api/internal/cfg"
	"diabetes-api/internal/common"
	"diabetes-api/internal/storage"
	"diabetes-api/internal/trainer"

	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	flag.StringVar(&c.Training.DataPath, "data", c.Training.DataPath, "Path to the training CSV")
	flag.StringVar(&c.ModelPath, "model", c.ModelPath, "Where to write the model artifact")
	flag.StringVar(&c.ScalerPath, "scaler", c.ScalerPath, "Where to write the scaler artifact")
	flag.StringVar(&c.RunsPath, "runs", c.RunsPath, "Training run store directory (empty to disable)")
	flag.IntVar(&c.Training.Trees, "trees", c.Training.Trees, "Number of trees")
	flag.IntVar(&c.Training.MaxDepth, "max-depth", c.Training.MaxDepth, "Maximum tree depth")
	flag.Float64Var(&c.Training.TestSize, "test-size", c.Training.TestSize, "Held-out fraction")
	flag.Int64Var(&c.Training.Seed, "seed", c.Training.Seed, "Random seed")
	flag.IntVar(&c.Training.Jobs, "jobs", c.Training.Jobs, "Trees fitted in parallel (0 = all CPUs)")
	flag.BoolVar(&c.Training.ScaleAfterSplit, "scale-after-split", c.Training.ScaleAfterSplit, "Fit the scaler on training rows only")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: json or console")
	flag.Parse()
	if err := c.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}

	common.SetupLogger(c.LogLevel, c.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := train(ctx, c, os.Stdout)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("training failed")
		os.Exit(1)
	}
	log.Info().
		Str("run_id", res.Run.ID).
		Dur("elapsed", res.Run.Duration()).
		Str("model", c.ModelPath).
		Str("scaler", c.ScalerPath).
		Msg("training complete")
}

// train runs one training pass, recording it in the run store when one is
// configured. The store is closed before train returns.
func train(ctx context.Context, c cfg.Settings, out io.Writer) (*trainer.Result, error) {
	var runs trainer.RunRecorder
	if c.RunsPath != "" {
		store, err := storage.New(c.RunsPath)
		if err != nil {
			log.Warn().Err(err).Msg("run store unavailable, continuing without run history")
		} else {
			defer store.Close()
			runs = store
		}
	}

	opts := trainer.OptionsFrom(c)
	opts.Out = out
	return trainer.Run(ctx, opts, runs)
}
