package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	h := NewServer(readyService(t), Options{}).Handler()

	rr := do(t, h, http.MethodGet, "/api/health", "")
	_, err := uuid.Parse(rr.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestAccessLog_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	h := NewServer(degradedService(t), Options{}).Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{}`))
	req.Header.Set(RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-42"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"kind":"model_unavailable"`)
	assert.Contains(t, out, `"cause"`, "underlying error is logged")
}

func TestCORS(t *testing.T) {
	h := NewServer(readyService(t), Options{}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "content-type", rr.Header().Get("Access-Control-Allow-Headers"))

	rr = do(t, h, http.MethodPost, "/api/predict", `{}`)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SpecificOrigin(t *testing.T) {
	h := NewServer(readyService(t), Options{CORSOrigin: "http://localhost:3000"}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	h := withRequestID(withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, ErrorResponse{Error: MsgInternal, Code: string(KindInternal)}, decode[ErrorResponse](t, rr))
	assert.NotContains(t, rr.Body.String(), "boom")
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindBadInput.Status())
	assert.Equal(t, http.StatusInternalServerError, KindModelUnavailable.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}
