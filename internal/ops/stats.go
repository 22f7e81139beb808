package ops

import (
	"context"

	"github.com/hpungsan/kudos/internal/stats"
)

// Stats recomputes the dashboard aggregates from the current record set.
func (p *Pipeline) Stats(ctx context.Context) stats.Snapshot {
	return stats.Aggregate(p.store.Load(ctx))
}
