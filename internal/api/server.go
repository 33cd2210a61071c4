// Package api exposes the prediction service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"diabetes-api/internal/metrics"
	"diabetes-api/internal/predictor"
	"diabetes-api/internal/storage"

	"github.com/rs/zerolog/log"
)

// Options configures a Server. Zero values fall back to sensible defaults;
// a nil Metrics records nothing and a nil MetricsHandler leaves /metrics
// unrouted.
type Options struct {
	Addr           string
	CORSOrigin     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxBodyBytes   int64
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	LatestRun      *storage.Run
	RecentRuns     []storage.Run
}

// Server routes requests to a predictor.Service.
type Server struct {
	svc     *predictor.Service
	rec     metrics.Recorder
	opts    Options
	handler http.Handler
	server  *http.Server
}

// NewServer builds the router and middleware chain.
func NewServer(svc *predictor.Service, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Second
	}

	s := &Server{svc: svc, rec: opts.Metrics, opts: opts}
	s.rec.SetArtifactsLoaded(svc.Ready())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/model", s.handleModelInfo)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	var handler http.Handler = mux
	handler = withCORS(opts.CORSOrigin, handler)
	handler = withAccessLog(s.rec, handler)
	handler = withRecover(handler)
	handler = withRequestID(handler)
	s.handler = handler

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests on the configured address.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Bool("ready", s.svc.Ready()).Msg("starting prediction server")
	return s.server.ListenAndServe()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	log.Info().Str("addr", l.Addr().String()).Bool("ready", s.svc.Ready()).Msg("starting prediction server")
	return s.server.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}
