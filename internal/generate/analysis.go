package generate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/inference"
)

const (
	analysisMaxNewTokens = 150

	// Validation gate thresholds.
	minSummaryChars = 20 // exclusive
	minActions      = 2
)

// Analysis is an operator-facing summary with its recommended actions.
type Analysis struct {
	Summary string         `json:"summary"`
	Actions []string       `json:"actions"`
	Source  Source         `json:"source"`
	Outcome inference.Kind `json:"outcome"`
}

type analysisTemplate struct {
	summary string // takes the rating as its only verb
	actions []string
}

var analysisTemplates = map[feedback.Bucket]analysisTemplate{
	feedback.Positive: {
		summary: "Customer is highly satisfied with the service and experience (rated %d/5)",
		actions: []string{
			"Send personalized thank you message to customer",
			"Request permission to use review as testimonial",
			"Analyze what went well to replicate success",
		},
	},
	feedback.Neutral: {
		summary: "Customer had a mixed experience with room for improvement (rated %d/5)",
		actions: []string{
			"Contact customer to understand specific pain points",
			"Identify service gaps mentioned in the feedback",
			"Implement improvements in areas of concern",
		},
	},
	feedback.Negative: {
		summary: "Customer expressed dissatisfaction with the service experience (rated %d/5)",
		actions: []string{
			"Reach out immediately to apologize and resolve issue",
			"Conduct internal investigation into problems raised",
			"Offer compensation to recover customer relationship",
		},
	},
}

// FallbackAnalysis returns the heuristic analysis for a rating's bucket.
// The returned slice is a fresh copy.
func FallbackAnalysis(rating int) Analysis {
	tmpl := analysisTemplates[feedback.BucketFor(rating)]
	return Analysis{
		Summary: fmt.Sprintf(tmpl.summary, rating),
		Actions: append([]string(nil), tmpl.actions...),
		Source:  SourceFallback,
	}
}

// Gate accepts a parsed analysis only if the summary is longer than 20
// characters and at least two actions survived parsing.
func Gate(p ParsedAnalysis) (Analysis, bool) {
	actions := p.UsableActions()
	if feedback.CountChars(p.Summary) <= minSummaryChars || len(actions) < minActions {
		return Analysis{}, false
	}
	return Analysis{Summary: p.Summary, Actions: actions, Source: SourceRemote}, true
}

// BuildAnalysisPrompt asks for the SUMMARY:/ACTION n: grammar.
func BuildAnalysisPrompt(rating int, review string) string {
	return fmt.Sprintf(`Analyze this customer feedback professionally:

Rating: %d/5 stars
Review: "%s"

Provide:
1. One sentence summary of the key issue/sentiment
2. Three specific actionable recommendations

Format your response as:
SUMMARY: [one sentence]
ACTION 1: [specific action]
ACTION 2: [specific action]
ACTION 3: [specific action]`, rating, review)
}

// AnalysisGenerator produces the operator-facing summary and actions.
// It holds no per-record state; every call yields a complete fresh pair.
type AnalysisGenerator struct {
	client inference.Generator
	log    *zap.Logger
}

// NewAnalysisGenerator creates an AnalysisGenerator. A nil logger discards logs.
func NewAnalysisGenerator(client inference.Generator, log *zap.Logger) *AnalysisGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisGenerator{client: client, log: log.Named("analysis")}
}

// Generate never fails; it returns a parsed, gated analysis or the bucket's heuristic.
func (g *AnalysisGenerator) Generate(ctx context.Context, rating int, review string) Analysis {
	out := g.client.Generate(ctx, inference.Request{
		Prompt:       BuildAnalysisPrompt(rating, review),
		MaxNewTokens: analysisMaxNewTokens,
	})

	accept := func(text string) (Analysis, bool) {
		return Gate(ParseAnalysis(text))
	}
	analysis, out := resolve(out, accept, func() Analysis {
		return FallbackAnalysis(rating)
	})
	if !out.OK() {
		g.log.Warn("analysis fell back to heuristic",
			zap.Int("rating", rating),
			zap.String("outcome", string(out.Kind)),
			zap.String("detail", out.Detail))
	}

	analysis.Source = sourceOf(out)
	analysis.Outcome = out.Kind
	return analysis
}
