package generate

import (
	"fmt"
	"strings"

	"github.com/hpungsan/kudos/internal/feedback"
)

const (
	summaryMarker = "SUMMARY:"
	actionPrefix  = "ACTION"
	maxActions    = 3

	// minActionChars is exclusive: shorter parsed actions are dropped.
	minActionChars = 10
)

// ParsedAnalysis is the field-by-field result of reading the
// SUMMARY:/ACTION n: grammar. A field is empty when its marker is absent
// or its text was unusable. Parsing never decides acceptance; see Gate.
type ParsedAnalysis struct {
	Summary string
	Actions [maxActions]string
}

// UsableActions returns the present actions in index order.
func (p ParsedAnalysis) UsableActions() []string {
	actions := make([]string, 0, maxActions)
	for _, a := range p.Actions {
		if a != "" {
			actions = append(actions, a)
		}
	}
	return actions
}

func actionMarker(i int) string {
	return fmt.Sprintf("%s %d:", actionPrefix, i)
}

// ParseAnalysis reads free text tolerantly. The summary runs from the first
// SUMMARY: to the first ACTION after it; action i runs from ACTION i: to
// ACTION i+1:. Each field keeps only its first line.
func ParseAnalysis(text string) ParsedAnalysis {
	var p ParsedAnalysis

	if segment, ok := segmentAfter(text, summaryMarker); ok {
		if i := strings.Index(segment, actionPrefix); i >= 0 {
			segment = segment[:i]
		}
		p.Summary = firstLine(segment)
	}

	for i := 1; i <= maxActions; i++ {
		segment, ok := segmentAfter(text, actionMarker(i))
		if !ok {
			continue
		}
		if j := strings.Index(segment, actionMarker(i+1)); j >= 0 {
			segment = segment[:j]
		}
		action := firstLine(segment)
		if feedback.CountChars(action) > minActionChars {
			p.Actions[i-1] = action
		}
	}

	return p
}

// segmentAfter returns the text between the first occurrence of marker and
// the next occurrence of the same marker (or end of text).
func segmentAfter(text, marker string) (string, bool) {
	_, after, ok := strings.Cut(text, marker)
	if !ok {
		return "", false
	}
	if i := strings.Index(after, marker); i >= 0 {
		after = after[:i]
	}
	return after, true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
