// Package sink provides scoring sinks for replayed traffic.
//
// A sink accepts one record at a time and reports only success or
// failure - prediction payloads are never parsed. The HTTP sink talks
// to a live scoring endpoint; the Kafka sink feeds collector pipelines
// that ingest through a broker; the Memory sink backs tests and dry
// runs.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/roach88/trickle/internal/dataset"
	"github.com/roach88/trickle/internal/replay"
)

// DeploymentHeader carries the routing hint selecting a specific
// deployment behind a shared endpoint.
const DeploymentHeader = "azureml-model-deployment"

// DefaultTimeout bounds a single scoring request.
const DefaultTimeout = 30 * time.Second

// HTTP submits records to a scoring endpoint as JSON over HTTP.
//
// The request body is {"data": [<field map>]} - the one-element list
// form that batch-capable collectors expect. Values that look numeric
// are sent as JSON numbers.
type HTTP struct {
	endpoint   string
	apiKey     string
	deployment string
	client     *http.Client
}

// HTTPOption configures an HTTP sink.
type HTTPOption func(*HTTP)

// WithClient replaces the underlying HTTP client. Used in tests.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithDeployment sets the deployment routing header.
func WithDeployment(name string) HTTPOption {
	return func(h *HTTP) { h.deployment = name }
}

// NewHTTP creates an HTTP sink for the given endpoint and bearer key.
func NewHTTP(endpoint, apiKey string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Submit implements replay.Sink.
//
// The response is interpreted only as success or failure: a non-2xx
// status rejects the record, transport failures map to the network
// kind, and deadline expiry maps to the timeout kind.
func (h *HTTP) Submit(ctx context.Context, rec dataset.Record) error {
	body, err := json.Marshal(Payload{Data: []map[string]any{recordFields(rec)}})
	if err != nil {
		return replay.NewSubmissionError(replay.KindRejected, "encode payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return replay.NewSubmissionError(replay.KindRejected, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	if h.deployment != "" {
		req.Header.Set(DeploymentHeader, h.deployment)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return replay.NewSubmissionError(replay.KindTimeout, "request deadline exceeded", err)
		}
		return replay.NewSubmissionError(replay.KindNetwork, "endpoint unreachable", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused across the whole run.
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return replay.NewSubmissionError(replay.KindTimeout, fmt.Sprintf("endpoint returned %s", resp.Status), nil)
	default:
		return replay.NewSubmissionError(replay.KindRejected, fmt.Sprintf("endpoint returned %s", resp.Status), nil)
	}
}

// Payload is the scoring request body.
type Payload struct {
	Data []map[string]any `json:"data"`
}

// recordFields converts a record to a JSON-ready field map, coercing
// numeric-looking values so the endpoint sees typed features.
func recordFields(rec dataset.Record) map[string]any {
	fields := make(map[string]any, len(rec.Fields))
	for name, value := range rec.Fields {
		fields[name] = coerce(value)
	}
	return fields
}

// coerce maps a raw string value to an int64, float64 or string.
func coerce(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
