package ops

import (
	"context"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/report"
	"github.com/hpungsan/kudos/internal/stats"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Recent int // records to list; 0 means report.DefaultRecent, negative means all
}

// ReportOutput is the operator digest in both renderings.
type ReportOutput struct {
	Markdown string
	HTML     []byte
}

// Report renders the operator digest from the current record set.
func (p *Pipeline) Report(ctx context.Context, input ReportInput) (*ReportOutput, error) {
	records := p.store.Load(ctx)
	snap := stats.Aggregate(records)
	SortNewestFirst(records)

	md := report.Markdown(snap, records, report.Options{Recent: input.Recent})
	html, err := report.HTML(md)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ReportOutput{Markdown: md, HTML: html}, nil
}
