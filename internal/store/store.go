// Package store persists feedback records. Every backend serializes its
// mutations through a single writer, so concurrent appends and analysis
// updates never overwrite each other.
package store

import (
	"context"
	"time"

	"github.com/hpungsan/kudos/internal/feedback"
)

// Store is the system of record for feedback.
type Store interface {
	// Load returns every record. A missing or unreadable table yields an
	// empty set rather than an error.
	Load(ctx context.Context) []feedback.Record

	// Get returns one record, or NOT_FOUND.
	Get(ctx context.Context, id int64) (*feedback.Record, error)

	// Append mints an id and timestamp and persists a new record. CRLF
	// line breaks in text fields are stored, and returned, as LF.
	Append(ctx context.Context, rec feedback.NewRecord) (*feedback.Record, error)

	// UpdateAnalysis replaces the summary and actions of an existing record.
	UpdateAnalysis(ctx context.Context, id int64, summary string, actions []string) (*feedback.Record, error)

	Close() error
}

// MintID derives an id from the creation time in milliseconds. If that
// would not exceed the highest id already stored (two submissions within
// one millisecond, or a clock step backwards), it takes maxID+1 instead.
// Callers must hold the store's write lock.
func MintID(now time.Time, maxID int64) int64 {
	id := now.UnixMilli()
	if id <= maxID {
		id = maxID + 1
	}
	return id
}

func maxID(records []feedback.Record) int64 {
	var m int64
	for i := range records {
		if records[i].ID > m {
			m = records[i].ID
		}
	}
	return m
}
