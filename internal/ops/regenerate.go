package ops

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/generate"
)

// RegenerateInput contains parameters for the Regenerate operation.
type RegenerateInput struct {
	ID int64
}

// RegenerateOutput contains the fresh analysis stored for a record.
type RegenerateOutput struct {
	ID      int64           `json:"id"`
	Summary string          `json:"summary"`
	Actions []string        `json:"actions"`
	Source  generate.Source `json:"source"`
}

// Regenerate re-runs analysis for one record and replaces its stored
// summary and actions. Prior actions are never merged into the new set.
func (p *Pipeline) Regenerate(ctx context.Context, input RegenerateInput) (*RegenerateOutput, error) {
	if input.ID <= 0 {
		return nil, errors.NewInvalidRequest("id is required")
	}

	rec, err := p.store.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	analysis := p.analyzer.Generate(ctx, rec.Rating, rec.Review)

	updated, err := p.store.UpdateAnalysis(ctx, rec.ID, analysis.Summary, analysis.Actions)
	if err != nil {
		return nil, err
	}

	p.log.Info("analysis regenerated",
		zap.Int64("id", updated.ID),
		zap.String("source", string(analysis.Source)),
		zap.Int("actions", len(updated.Actions)),
	)

	return &RegenerateOutput{
		ID:      updated.ID,
		Summary: updated.Summary,
		Actions: updated.Actions,
		Source:  analysis.Source,
	}, nil
}

// RegenerateMissingOutput reports a batch analysis run.
type RegenerateMissingOutput struct {
	Analyzed []RegenerateOutput `json:"analyzed"`
	Count    int                `json:"count"`
}

// RegenerateMissing analyzes every record that has no stored analysis,
// with at most RegenerateConcurrency calls in flight. The first storage
// error stops the batch; records already updated stay updated.
func (p *Pipeline) RegenerateMissing(ctx context.Context) (*RegenerateMissingOutput, error) {
	var pending []int64
	for _, r := range p.store.Load(ctx) {
		if !r.HasAnalysis() {
			pending = append(pending, r.ID)
		}
	}

	var (
		mu  sync.Mutex
		out = &RegenerateMissingOutput{Analyzed: []RegenerateOutput{}}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(RegenerateConcurrency)
	for _, id := range pending {
		g.Go(func() error {
			res, err := p.Regenerate(gctx, RegenerateInput{ID: id})
			if err != nil {
				return err
			}
			mu.Lock()
			out.Analyzed = append(out.Analyzed, *res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	out.Count = len(out.Analyzed)
	return out, err
}
