package predictor

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"diabetes-api/internal/schema"

	"github.com/cockroachdb/errors"
)

// ErrNotObject is returned when the request body is not a JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// FieldError reports a client field that could not be coerced to a number.
type FieldError struct {
	Field string
	Value any
}

func (e *FieldError) Error() string {
	return "invalid value for field \"" + e.Field + "\": must be a number"
}

// DecodePayload parses a flat JSON object, keeping numbers as json.Number so
// they convert without loss.
func DecodePayload(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode payload"), ErrNotObject)
	}
	payload, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	if dec.More() {
		return nil, errors.Mark(errors.New("trailing data after JSON object"), ErrNotObject)
	}
	return payload, nil
}

// Vector maps a payload onto the feature vector in schema order. Absent
// fields take the schema default; present ones must coerce to a number.
// Range is not validated.
func Vector(payload map[string]any) ([]float64, error) {
	vec := make([]float64, len(schema.Features))
	for i, f := range schema.Features {
		raw, ok := payload[f.Field]
		if !ok {
			vec[i] = f.Default
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return nil, errors.WithStack(&FieldError{Field: f.Field, Value: raw})
		}
		vec[i] = v
	}
	return vec, nil
}

// toFloat accepts JSON numbers, numeric strings (surrounding space allowed)
// and booleans. The result must be finite.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return parseFloat(t.String())
	case float64:
		return finite(t)
	case string:
		return parseFloat(strings.TrimSpace(t))
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errors.Newf("cannot convert %T to float", v)
	}
}

// parseFloat tolerates underflow to zero; overflow and the nan/inf spellings
// are rejected.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) || f != 0 {
			return 0, err
		}
	}
	return finite(f)
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Newf("non-finite value %v", f)
	}
	return f, nil
}
