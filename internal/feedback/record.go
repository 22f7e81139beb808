package feedback

import (
	"strings"
	"time"
)

// Record is one customer submission plus its generated artifacts.
// Fields correspond to the columns of the record table.
type Record struct {
	// ID is derived from the creation time in milliseconds and is monotonic per store
	ID int64 `json:"id"`

	// Timestamp is the creation instant; immutable
	Timestamp time.Time `json:"timestamp"`

	// Rating is the star rating, 1-5. Bounds are enforced by the input surface, not here.
	Rating int `json:"rating"`

	// Review is the customer's text exactly as submitted
	Review string `json:"review"`

	// AIResponse is the customer-facing reply; set once at creation
	AIResponse string `json:"ai_response"`

	// Summary is the operator-facing summary; empty until the first analysis
	Summary string `json:"summary,omitempty"`

	// Actions are the recommended actions; written together with Summary
	Actions []string `json:"actions,omitempty"`
}

// HasAnalysis reports whether an analysis has been stored for the record.
func (r *Record) HasAnalysis() bool {
	return r.Summary != ""
}

// NewRecord holds the fields fixed at submission time.
// ID and Timestamp are minted by the store.
type NewRecord struct {
	Rating     int
	Review     string
	AIResponse string
}

// NormalizeNewlines turns CRLF line breaks into LF. Stores apply it to
// every text field before persisting, so the record an Append returns is
// byte-identical to what a later Load yields on any backend.
func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Normalized returns a copy with line breaks normalized.
func (n NewRecord) Normalized() NewRecord {
	n.Review = NormalizeNewlines(n.Review)
	n.AIResponse = NormalizeNewlines(n.AIResponse)
	return n
}

// NormalizeActions applies NormalizeNewlines to each action in a fresh slice.
func NormalizeActions(actions []string) []string {
	if actions == nil {
		return nil
	}
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = NormalizeNewlines(a)
	}
	return out
}
