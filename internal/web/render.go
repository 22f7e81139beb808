package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/errors"
)

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes a KudosError as a JSON error envelope. Anything else
// becomes a generic INTERNAL error; server-side failures are logged.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var kErr *errors.KudosError
	if !stderrors.As(err, &kErr) {
		kErr = errors.NewInternal(err)
	}

	if kErr.Status >= 500 {
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", string(kErr.Code)),
			zap.Error(err),
		)
	}

	body := map[string]any{
		"code":    string(kErr.Code),
		"message": kErr.Message,
		"status":  kErr.Status,
	}
	// Internal details stay in the log.
	if kErr.Code != errors.ErrInternal && kErr.Code != errors.ErrStorage && len(kErr.Details) > 0 {
		body["details"] = kErr.Details
	}
	renderJSON(w, kErr.Status, map[string]any{"error": body})
}

// renderHTML writes a complete HTML document.
func renderHTML(w http.ResponseWriter, status int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(page)
}
