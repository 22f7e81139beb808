package ops

import (
	"context"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID int64
}

// FetchOutput is one record plus its derived display fields.
type FetchOutput struct {
	feedback.Record
	Bucket         feedback.Bucket `json:"bucket"`
	HasAnalysis    bool            `json:"has_analysis"`
	DisplayActions []string        `json:"display_actions,omitempty"`
}

// Fetch retrieves a single record by id.
func (p *Pipeline) Fetch(ctx context.Context, input FetchInput) (*FetchOutput, error) {
	if input.ID <= 0 {
		return nil, errors.NewInvalidRequest("id is required")
	}

	rec, err := p.store.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		Record:         *rec,
		Bucket:         feedback.BucketFor(rec.Rating),
		HasAnalysis:    rec.HasAnalysis(),
		DisplayActions: DisplayActions(rec),
	}, nil
}
