// Package client is a small REST client for the prediction service.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"diabetes-api/internal/api"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("diabetes-api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("diabetes-api: %d %s", e.Status, e.Message)
}

type Client struct {
	base string
	rest *resty.Client
}

// New returns a client for the service at base, e.g. http://localhost:5001.
func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// Predict posts a payload of client field names to /api/predict. Values may
// be numbers, numeric strings or booleans; omitted fields use the server
// defaults.
func (c *Client) Predict(ctx context.Context, payload map[string]any) (*api.PredictResponse, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	result := &api.PredictResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(result).
		SetError(&api.ErrorResponse{}).
		Post(c.base + "/api/predict")
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return result, nil
}

// Health calls /api/health.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	result := &api.HealthResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&api.ErrorResponse{}).
		Get(c.base + "/api/health")
	if err != nil {
		return nil, fmt.Errorf("health request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return result, nil
}

// ModelInfo calls /api/model.
func (c *Client) ModelInfo(ctx context.Context) (*api.ModelInfoResponse, error) {
	result := &api.ModelInfoResponse{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&api.ErrorResponse{}).
		Get(c.base + "/api/model")
	if err != nil {
		return nil, fmt.Errorf("model info request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return result, nil
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*api.ErrorResponse); ok && body.Error != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	} else {
		apiErr.Message = strings.TrimSpace(resp.String())
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
	}
	return apiErr
}
