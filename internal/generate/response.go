package generate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/inference"
)

const (
	responseMaxNewTokens = 100

	// minReplyChars is exclusive: a reply must be longer than this after trimming.
	minReplyChars = 20
)

var toneContext = map[feedback.Bucket]string{
	feedback.Positive: "You are responding to positive feedback. Be warm and grateful (2-3 sentences).",
	feedback.Neutral:  "You are responding to neutral feedback. Be understanding (2-3 sentences).",
	feedback.Negative: "You are responding to negative feedback. Be apologetic and solution-focused (2-3 sentences).",
}

// ReplyTemplates are the canned replies used when remote generation fails.
var ReplyTemplates = map[feedback.Bucket]string{
	feedback.Positive: "Thank you so much for your wonderful feedback! We're thrilled to hear you had a great experience with us. We look forward to serving you again!",
	feedback.Neutral:  "Thank you for your feedback. We appreciate you taking the time to share your experience. We're always working to improve!",
	feedback.Negative: "We sincerely apologize for not meeting your expectations. Your feedback is invaluable to us, and we're committed to making things right.",
}

// Reply is a generated customer-facing response.
type Reply struct {
	Text    string         `json:"text"`
	Source  Source         `json:"source"`
	Outcome inference.Kind `json:"outcome"`
}

// ResponseGenerator produces the automatic reply shown to the customer.
type ResponseGenerator struct {
	client inference.Generator
	log    *zap.Logger
}

// NewResponseGenerator creates a ResponseGenerator. A nil logger discards logs.
func NewResponseGenerator(client inference.Generator, log *zap.Logger) *ResponseGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResponseGenerator{client: client, log: log.Named("response")}
}

// BuildResponsePrompt embeds the tone for the rating's bucket, the rating and the review.
func BuildResponsePrompt(rating int, review string) string {
	return fmt.Sprintf("%s\n\nCustomer gave %d/5 stars: \"%s\"\n\nYour response:",
		toneContext[feedback.BucketFor(rating)], rating, review)
}

// Generate never fails; it returns remote text or the bucket's canned reply.
func (g *ResponseGenerator) Generate(ctx context.Context, rating int, review string) Reply {
	out := g.client.Generate(ctx, inference.Request{
		Prompt:       BuildResponsePrompt(rating, review),
		MaxNewTokens: responseMaxNewTokens,
	})

	text, out := resolve(out, acceptReply, func() string {
		return ReplyTemplates[feedback.BucketFor(rating)]
	})
	if !out.OK() {
		g.log.Warn("reply fell back to template",
			zap.Int("rating", rating),
			zap.String("outcome", string(out.Kind)),
			zap.String("detail", out.Detail))
	}

	return Reply{Text: text, Source: sourceOf(out), Outcome: out.Kind}
}

func acceptReply(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, feedback.CountChars(text) > minReplyChars
}
