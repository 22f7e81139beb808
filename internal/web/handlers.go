package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/ops"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Handlers contains HTTP route handlers for the feedback API.
type Handlers struct {
	pipeline *ops.Pipeline
	log      *zap.Logger
	version  string
}

type submitRequest struct {
	Rating *int   `json:"rating"`
	Review string `json:"review"`
}

// HandleSubmit handles POST /feedback: submit a rating and review.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.renderError(w, r, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}
	if req.Rating == nil {
		h.renderError(w, r, errors.NewInvalidRequest("rating is required"))
		return
	}
	if err := feedback.CheckRating(*req.Rating); err != nil {
		h.renderError(w, r, err)
		return
	}

	out, err := h.pipeline.Submit(r.Context(), ops.SubmitInput{Rating: *req.Rating, Review: req.Review})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, out)
}

// HandleList handles GET /feedback: newest first, with optional filters.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.pipeline.List(r.Context(), ops.ListInput{
		Limit:   parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:  parseIntParam(r, "offset", 0),
		Pending: parseBoolParam(r, "pending"),
		Bucket:  r.URL.Query().Get("bucket"),
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleDetail handles GET /feedback/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out, err := h.pipeline.Fetch(r.Context(), ops.FetchInput{ID: id})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleRegenerate handles POST /feedback/{id}/analysis: replace the stored analysis.
func (h *Handlers) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out, err := h.pipeline.Regenerate(r.Context(), ops.RegenerateInput{ID: id})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleRegenerateMissing handles POST /feedback/analysis: analyze every pending record.
func (h *Handlers) HandleRegenerateMissing(w http.ResponseWriter, r *http.Request) {
	out, err := h.pipeline.RegenerateMissing(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.pipeline.Stats(r.Context()))
}

// HandleReport handles GET /report: HTML by default, Markdown when asked.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.pipeline.Report(r.Context(), ops.ReportInput{Recent: parseIntParam(r, "recent", 0)})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "md" || strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, out.Markdown)
		return
	}
	renderHTML(w, http.StatusOK, out.HTML)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("id must be a positive integer")
	}
	return id, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
