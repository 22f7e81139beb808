package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_Success(t *testing.T) {
	var got generateRequest
	var auth string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"generated_text": "  Thank you for visiting us!  "}]`))
	})

	c := NewClient(Options{Endpoint: srv.URL, Token: "secret"})
	out := c.Generate(context.Background(), Request{Prompt: "hello", MaxNewTokens: 100})

	require.True(t, out.OK(), out.String())
	assert.Equal(t, "Thank you for visiting us!", out.Text)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "hello", got.Inputs)
	assert.Equal(t, 100, got.Parameters.MaxNewTokens)
	assert.Equal(t, 0.7, got.Parameters.Temperature)
	assert.Equal(t, 0.9, got.Parameters.TopP)
	assert.False(t, got.Parameters.ReturnFullText)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, want: MalformedResponse},
		{name: "model loading", status: http.StatusServiceUnavailable, body: `{"error":"loading"}`, want: MalformedResponse},
		{name: "empty body", status: http.StatusOK, body: ``, want: MalformedResponse},
		{name: "empty list", status: http.StatusOK, body: `[]`, want: MalformedResponse},
		{name: "object not list", status: http.StatusOK, body: `{"generated_text":"hi there"}`, want: MalformedResponse},
		{name: "missing field", status: http.StatusOK, body: `[{"text":"hi"}]`, want: MalformedResponse},
		{name: "garbled", status: http.StatusOK, body: `<html>oops`, want: MalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			out := NewClient(Options{Endpoint: srv.URL}).Generate(context.Background(), Request{Prompt: "p", MaxNewTokens: 10})
			assert.Equal(t, tt.want, out.Kind, out.String())
			assert.Empty(t, out.Text)
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := NewClient(Options{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	out := c.Generate(context.Background(), Request{Prompt: "p", MaxNewTokens: 10})

	assert.Equal(t, TransportFailure, out.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := NewClient(Options{Endpoint: url}).Generate(context.Background(), Request{Prompt: "p"})
	assert.Equal(t, TransportFailure, out.Kind)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, DefaultEndpoint, c.endpoint)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "success", Succeeded("x").String())
	assert.Equal(t, "transport_failure: dial tcp", Failed(TransportFailure, "dial %s", "tcp").String())
}
