package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trickle/internal/dataset"
	"github.com/roach88/trickle/internal/replay"
)

func testRecord() dataset.Record {
	return dataset.Record{Index: 4, Fields: map[string]string{
		"month":       "7",
		"temperature": "21.5",
		"holiday":     "no",
	}}
}

func TestHTTP_Submit_PayloadShape(t *testing.T) {
	var gotBody []byte
	var gotAuth, gotDeployment, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotAuth = r.Header.Get("Authorization")
		gotDeployment = r.Header.Get(DeploymentHeader)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "secret-key", WithDeployment("blue"))
	err := h.Submit(context.Background(), testRecord())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "blue", gotDeployment)
	assert.Equal(t, "application/json", gotContentType)

	var payload Payload
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Len(t, payload.Data, 1)

	// Numeric-looking values are sent as JSON numbers.
	assert.Equal(t, float64(7), payload.Data[0]["month"])
	assert.Equal(t, 21.5, payload.Data[0]["temperature"])
	assert.Equal(t, "no", payload.Data[0]["holiday"])
}

func TestHTTP_Submit_RejectedOnClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad feature vector", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "key")
	err := h.Submit(context.Background(), testRecord())

	var se *replay.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, replay.KindRejected, se.Kind)
}

func TestHTTP_Submit_TimeoutStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, "key")
	err := h.Submit(context.Background(), testRecord())

	var se *replay.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, replay.KindTimeout, se.Kind)
}

func TestHTTP_Submit_NetworkError(t *testing.T) {
	// A server that is already closed is unreachable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	h := NewHTTP(url, "key")
	err := h.Submit(context.Background(), testRecord())

	var se *replay.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, replay.KindNetwork, se.Kind)
}

func TestHTTP_Submit_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	h := NewHTTP(srv.URL, "key")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := h.Submit(ctx, testRecord())

	var se *replay.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, replay.KindTimeout, se.Kind)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(12), coerce("12"))
	assert.Equal(t, 3.25, coerce("3.25"))
	assert.Equal(t, "2023-07-01", coerce("2023-07-01"))
	assert.Equal(t, "", coerce(""))
}
