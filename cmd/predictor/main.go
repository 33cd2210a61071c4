package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diabetes-api/internal/api"
	"diabetes-api/internal/cfg"
	"diabetes-api/internal/common"
	"diabetes-api/internal/metrics"
	"diabetes-api/internal/predictor"
	"diabetes-api/internal/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	flag.StringVar(&c.Host, "host", c.Host, "Listen host")
	flag.IntVar(&c.Port, "port", c.Port, "Listen port")
	flag.StringVar(&c.ModelPath, "model", c.ModelPath, "Path to the model artifact")
	flag.StringVar(&c.ScalerPath, "scaler", c.ScalerPath, "Path to the scaler artifact")
	flag.StringVar(&c.RunsPath, "runs", c.RunsPath, "Training run store directory (empty to disable)")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	flag.Parse()
	if err := c.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}

	common.SetupLogger(c.LogLevel, c.LogFormat)

	svc := predictor.Load(c.ScalerPath, c.ModelPath)

	opts := api.Options{
		Addr:         c.Addr(),
		CORSOrigin:   c.CORSOrigin,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		MaxBodyBytes: c.MaxBodyBytes,
	}
	opts.LatestRun, opts.RecentRuns = runHistory(c.RunsPath, time.Now())
	if c.MetricsEnabled {
		opts.Metrics = metrics.New()
		opts.MetricsHandler = promhttp.Handler()
	}
	server := api.NewServer(svc, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		if err != nil {
			log.Fatal().Err(err).Msg("prediction server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown prediction server")
	}
	log.Info().Msg("prediction server stopped")
}

// runHistory reads the newest training run and the recent history once; the
// store is closed again so the trainer can keep writing to it.
func runHistory(dir string, now time.Time) (*storage.Run, []storage.Run) {
	if dir == "" {
		return nil, nil
	}
	store, err := storage.OpenReadOnly(dir)
	if err != nil {
		log.Debug().Err(err).Str("path", dir).Msg("no training run store")
		return nil, nil
	}
	defer store.Close()

	run, err := store.LatestRun()
	if err != nil {
		log.Debug().Err(err).Msg("no training run recorded")
		return nil, nil
	}
	recent, err := store.RecentRuns(now, common.RunHistoryWindow, common.RunHistoryLimit)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list recent training runs")
	}
	log.Info().
		Str("run_id", run.ID).
		Float64("accuracy", run.Accuracy).
		Int("recent_runs", len(recent)).
		Msg("latest training run")
	return &run, recent
}
