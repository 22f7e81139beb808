// Package generate turns a rating and review into the customer-facing reply
// and the operator-facing analysis. Both generators are total: a remote
// failure of any kind degrades to a fixed, rating-bucketed template.
package generate

import (
	"github.com/hpungsan/kudos/internal/inference"
)

// Source records where a generated artifact came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// resolve is the fallback-selection point shared by both generators.
// A successful outcome is offered to accept; a rejection is re-tagged as a
// validation failure. Anything that is not an accepted success yields fallback().
func resolve[T any](out inference.Outcome, accept func(text string) (T, bool), fallback func() T) (T, inference.Outcome) {
	if out.OK() {
		if v, ok := accept(out.Text); ok {
			return v, out
		}
		out = inference.Failed(inference.ValidationFailure, "generated text rejected (%d chars)", len(out.Text))
	}
	return fallback(), out
}

// sourceOf maps a resolved outcome onto the artifact source.
func sourceOf(out inference.Outcome) Source {
	if out.OK() {
		return SourceRemote
	}
	return SourceFallback
}
