package api

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Kind is the closed set of failures the API reports.
type Kind string

const (
	KindModelUnavailable Kind = "model_unavailable"
	KindBadInput         Kind = "bad_input"

	// KindInternal covers failures inside inference after the input was
	// accepted, such as a scaler/model width mismatch. The HTTP contract this
	// API replaces lists 400 for inference errors; they are 500 here since
	// the request itself was valid.
	KindInternal Kind = "internal"
)

// Stable client-facing messages.
const (
	MsgModelUnavailable = "Model not loaded. Please train the model first."
	MsgNotObject        = "request body must be a JSON object"
	MsgBodyTooLarge     = "request body too large"
	MsgInternal         = "prediction failed"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error pairs a kind and a client-safe message with the underlying cause,
// which is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// writeError logs the full error with the request logger and sends only the
// kind and stable message.
func writeError(w http.ResponseWriter, r *http.Request, apiErr *Error) {
	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if apiErr.Kind != KindBadInput {
		event = logger.Error()
	}
	event.
		Str("kind", string(apiErr.Kind)).
		AnErr("cause", apiErr.Err).
		Msg(apiErr.Message)

	writeJSON(w, apiErr.Kind.Status(), ErrorResponse{
		Error: apiErr.Message,
		Code:  string(apiErr.Kind),
	})
}

// asError converts any error into an *Error, defaulting to internal.
func asError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newError(KindInternal, MsgInternal, err)
}
