package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/generate"
	"github.com/hpungsan/kudos/internal/inference"
	"github.com/hpungsan/kudos/internal/ops"
	"github.com/hpungsan/kudos/internal/store"
)

// offlineGenerator fails every remote call so generators use their templates.
type offlineGenerator struct{}

func (offlineGenerator) Generate(context.Context, inference.Request) inference.Outcome {
	return inference.Failed(inference.TransportFailure, "offline")
}

func setupTest(t *testing.T) (*ops.Pipeline, http.Handler) {
	t.Helper()
	dir := t.TempDir()
	s := store.NewFileStore(filepath.Join(dir, "feedback_data.csv"), nil)
	p := ops.New(ops.Deps{
		Store:     s,
		Responder: generate.NewResponseGenerator(offlineGenerator{}, nil),
		Analyzer:  generate.NewAnalysisGenerator(offlineGenerator{}, nil),
		ExportDir: filepath.Join(dir, "exports"),
	})
	return p, NewServer(p, nil, "test", "127.0.0.1", 0).Handler
}

// seedFeedback submits a record and returns its id.
func seedFeedback(t *testing.T, p *ops.Pipeline, rating int) int64 {
	t.Helper()
	out, err := p.Submit(context.Background(), ops.SubmitInput{Rating: rating, Review: "A perfectly reasonable review text."})
	require.NoError(t, err)
	return out.ID
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", body)
	return e["code"].(string)
}

// --- HandleSubmit ---

func TestHandleSubmit(t *testing.T) {
	p, h := setupTest(t)

	w := do(h, "POST", "/feedback", `{"rating": 5, "review": "Amazing food and service tonight!"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, generate.ReplyTemplates[feedback.Positive], body["ai_response"])
	assert.Equal(t, string(generate.SourceFallback), body["source"])
	assert.NotZero(t, body["id"])

	assert.Len(t, p.Store().Load(context.Background()), 1)
}

func TestHandleSubmit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"review too short", `{"rating": 4, "review": "short"}`, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"missing rating", `{"review": "A perfectly reasonable review."}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"rating out of range", `{"rating": 6, "review": "A perfectly reasonable review."}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown field", `{"rating": 4, "review": "A perfectly reasonable review.", "extra": 1}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"not json", `rating=4`, http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, h := setupTest(t)
			w := do(h, "POST", "/feedback", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
			assert.Len(t, p.Store().Load(context.Background()), 0)
		})
	}
}

// --- HandleList / HandleDetail ---

func TestHandleList(t *testing.T) {
	p, h := setupTest(t)
	first := seedFeedback(t, p, 5)
	second := seedFeedback(t, p, 1)

	w := do(h, "GET", "/feedback", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, float64(second), items[0].(map[string]any)["id"])
	assert.Equal(t, float64(first), items[1].(map[string]any)["id"])
	assert.Equal(t, "timestamp_desc", body["sort"])

	w = do(h, "GET", "/feedback?bucket=negative", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["items"].([]any), 1)

	w = do(h, "GET", "/feedback?bucket=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDetail(t *testing.T) {
	p, h := setupTest(t)
	id := seedFeedback(t, p, 3)

	w := do(h, "GET", "/feedback/"+strconv.FormatInt(id, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "neutral", body["bucket"])
	assert.Equal(t, false, body["has_analysis"])

	w = do(h, "GET", "/feedback/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	w = do(h, "GET", "/feedback/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- HandleRegenerate ---

func TestHandleRegenerate(t *testing.T) {
	p, h := setupTest(t)
	id := seedFeedback(t, p, 2)

	w := do(h, "POST", "/feedback/"+strconv.FormatInt(id, 10)+"/analysis", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	want := generate.FallbackAnalysis(2)
	assert.Equal(t, want.Summary, body["summary"])
	assert.Len(t, body["actions"].([]any), 3)

	rec, err := p.Store().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want.Summary, rec.Summary)
}

func TestHandleRegenerateMissing(t *testing.T) {
	p, h := setupTest(t)
	seedFeedback(t, p, 1)
	seedFeedback(t, p, 4)

	w := do(h, "POST", "/feedback/analysis", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])
}

// --- HandleStats / HandleReport ---

func TestHandleStats(t *testing.T) {
	p, h := setupTest(t)
	for _, r := range []int{5, 5, 1, 3} {
		seedFeedback(t, p, r)
	}

	w := do(h, "GET", "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 3.5, body["mean_rating"])
	assert.Equal(t, 50.0, body["positive_pct"])
	assert.Equal(t, 25.0, body["negative_pct"])
	assert.Equal(t, true, body["trend_up"])
}

func TestHandleStats_Empty(t *testing.T) {
	_, h := setupTest(t)

	w := do(h, "GET", "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Nil(t, body["mean_rating"])
	assert.Equal(t, float64(0), body["count"])
}

func TestHandleReport(t *testing.T) {
	p, h := setupTest(t)
	seedFeedback(t, p, 4)

	w := do(h, "GET", "/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1>Feedback Report</h1>")

	w = do(h, "GET", "/report?format=md", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.True(t, strings.HasPrefix(w.Body.String(), "# Feedback Report"))
}

// --- Middleware ---

func TestMiddleware_Headers(t *testing.T) {
	_, h := setupTest(t)

	w := do(h, "GET", "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(RequestIDHeader), 26, "ULID request id")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	other := do(h, "GET", "/healthz", "")
	assert.NotEqual(t, w.Header().Get(RequestIDHeader), other.Header().Get(RequestIDHeader))
}

func TestRootRedirectsToReport(t *testing.T) {
	_, h := setupTest(t)

	w := do(h, "GET", "/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/report", w.Header().Get("Location"))
}
