package ops

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/generate"
)

// SubmitInput contains parameters for the Submit operation.
// Rating bounds are checked by the input surface, not here.
type SubmitInput struct {
	Rating int
	Review string
}

// SubmitOutput contains the result of the Submit operation.
type SubmitOutput struct {
	ID         int64           `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	AIResponse string          `json:"ai_response"`
	Source     generate.Source `json:"source"`
}

// Submit validates the review, generates the customer reply and appends
// the record. A review that is too short is rejected before any remote
// call and nothing is stored.
func (p *Pipeline) Submit(ctx context.Context, input SubmitInput) (*SubmitOutput, error) {
	if err := feedback.ValidateReview(input.Review, p.cfg.MinReviewChars); err != nil {
		return nil, err
	}

	reply := p.responder.Generate(ctx, input.Rating, input.Review)

	rec, err := p.store.Append(ctx, feedback.NewRecord{
		Rating:     input.Rating,
		Review:     input.Review,
		AIResponse: reply.Text,
	})
	if err != nil {
		return nil, err
	}

	p.log.Info("feedback submitted",
		zap.Int64("id", rec.ID),
		zap.Int("rating", rec.Rating),
		zap.String("reply_source", string(reply.Source)),
	)

	return &SubmitOutput{
		ID:         rec.ID,
		Timestamp:  rec.Timestamp,
		AIResponse: rec.AIResponse,
		Source:     reply.Source,
	}, nil
}
