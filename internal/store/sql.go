package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/db"
	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
)

// SQLStore keeps the record table in SQLite. Appends run inside a
// transaction so id minting and the insert see the same snapshot; the
// mutex keeps this process down to one writer.
type SQLStore struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time

	mu sync.Mutex
}

// NewSQLStore wraps an initialized database (see db.Init).
func NewSQLStore(conn *sql.DB, log *zap.Logger) *SQLStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLStore{
		db:  conn,
		log: log.Named("store"),
		now: time.Now,
	}
}

// Load implements Store.
func (s *SQLStore) Load(ctx context.Context) []feedback.Record {
	records, err := db.ListAll(ctx, s.db)
	if err != nil {
		s.log.Warn("record table unreadable, treating as empty", zap.Error(err))
		return []feedback.Record{}
	}
	if records == nil {
		return []feedback.Record{}
	}
	return records
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id int64) (*feedback.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("get")
	}
	return db.GetByID(ctx, s.db, id)
}

// Append implements Store.
func (s *SQLStore) Append(ctx context.Context, in feedback.NewRecord) (*feedback.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("append")
	}
	in = in.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewStorage("append", err)
	}
	defer tx.Rollback() //nolint:errcheck

	highest, err := db.MaxID(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := &feedback.Record{
		ID:         MintID(now, highest),
		Timestamp:  now,
		Rating:     in.Rating,
		Review:     in.Review,
		AIResponse: in.AIResponse,
	}
	if err := db.Insert(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.NewStorage("append", err)
	}

	s.log.Debug("record appended", zap.Int64("id", rec.ID))
	return rec, nil
}

// UpdateAnalysis implements Store.
func (s *SQLStore) UpdateAnalysis(ctx context.Context, id int64, summary string, actions []string) (*feedback.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("update_analysis")
	}
	summary = feedback.NormalizeNewlines(summary)
	actions = feedback.NormalizeActions(actions)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := db.UpdateAnalysis(ctx, s.db, id, summary, actions); err != nil {
		return nil, err
	}
	return db.GetByID(ctx, s.db, id)
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
