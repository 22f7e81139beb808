package ops

import (
	"context"
	"sort"
	"strings"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit   int    // default: 20, max: 100
	Offset  int    // default: 0
	Pending bool   // only records without an analysis
	Bucket  string // optional: positive, neutral or negative
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []feedback.Record `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// List returns records newest first with pagination.
func (p *Pipeline) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	var bucket feedback.Bucket
	if b := strings.ToLower(strings.TrimSpace(input.Bucket)); b != "" {
		switch feedback.Bucket(b) {
		case feedback.Positive, feedback.Neutral, feedback.Negative:
			bucket = feedback.Bucket(b)
		default:
			return nil, errors.NewInvalidRequest("bucket must be positive, neutral or negative")
		}
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	matched := make([]feedback.Record, 0)
	for _, r := range p.store.Load(ctx) {
		if input.Pending && r.HasAnalysis() {
			continue
		}
		if bucket != "" && feedback.BucketFor(r.Rating) != bucket {
			continue
		}
		matched = append(matched, r)
	}
	SortNewestFirst(matched)

	total := len(matched)
	start := min(offset, total)
	end := min(start+limit, total)
	items := matched[start:end]

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
		Sort: "timestamp_desc",
	}, nil
}

// SortNewestFirst orders records by timestamp descending, newest id first on ties.
func SortNewestFirst(records []feedback.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})
}
