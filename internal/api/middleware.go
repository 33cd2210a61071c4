package api

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"diabetes-api/internal/metrics"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// withRequestID attaches a request-scoped zerolog logger carrying the id
// supplied by the client, or a fresh uuid.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// withAccessLog logs each request and records it in rec, labelled by the
// matched route pattern.
func withAccessLog(rec metrics.Recorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sr, r)

		if sr.status == 0 {
			sr.status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveRequest(route, sr.status, elapsed)

		logger := log.Ctx(r.Context())
		event := logger.Info()
		if sr.status >= http.StatusInternalServerError {
			event = logger.Error()
		} else if sr.status >= http.StatusBadRequest {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", sr.status).
			Int("bytes", sr.bytes).
			Dur("duration", elapsed).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// withCORS allows cross-origin calls from origin ("*" for any) and answers
// preflight requests directly.
func withCORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqOrigin := r.Header.Get("Origin")
		h := w.Header()
		switch {
		case origin == "*":
			h.Set("Access-Control-Allow-Origin", "*")
		case reqOrigin != "" && strings.EqualFold(reqOrigin, origin):
			h.Set("Access-Control-Allow-Origin", reqOrigin)
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			allowHeaders := r.Header.Get("Access-Control-Request-Headers")
			if allowHeaders == "" {
				allowHeaders = "Content-Type"
			}
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRecover turns a handler panic into an internal error response.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				log.Ctx(r.Context()).Error().
					Interface("panic", p).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				writeError(w, r, newError(KindInternal, MsgInternal, errors.Newf("panic: %v", p)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
