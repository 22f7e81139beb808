package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
)

// FileStore keeps the record table in a single CSV file. Every mutation
// rewrites the whole file. Mutations run one at a time: a process-local
// mutex plus an advisory lock on "<path>.lock" cover the full
// read-modify-write, so no writer works from a stale snapshot.
type FileStore struct {
	path string
	log  *zap.Logger
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore creates a FileStore for the table at path. The file is
// created on the first append. A nil logger discards logs.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{
		path: path,
		log:  log.Named("store"),
		now:  time.Now,
	}
}

// Path returns the table location.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store. Readers take no lock: rewrites are atomic renames,
// so a reader sees either the previous or the next table.
func (s *FileStore) Load(_ context.Context) []feedback.Record {
	records, err := readTable(s.path)
	if err != nil {
		s.log.Warn("record table unreadable, treating as empty", zap.String("path", s.path), zap.Error(err))
		return []feedback.Record{}
	}
	if records == nil {
		return []feedback.Record{}
	}
	return records
}

// Get implements Store. Unlike Load, an unreadable table is a STORAGE error.
func (s *FileStore) Get(ctx context.Context, id int64) (*feedback.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("get")
	}
	records, err := readTable(s.path)
	if err != nil {
		return nil, errors.NewStorage("get", err)
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, errors.NewNotFound(id)
}

// Append implements Store.
func (s *FileStore) Append(ctx context.Context, in feedback.NewRecord) (*feedback.Record, error) {
	in = in.Normalized()
	return s.mutate(ctx, "append", func(records []feedback.Record) ([]feedback.Record, *feedback.Record, error) {
		now := s.now()
		rec := feedback.Record{
			ID:         MintID(now, maxID(records)),
			Timestamp:  now,
			Rating:     in.Rating,
			Review:     in.Review,
			AIResponse: in.AIResponse,
		}
		return append(records, rec), &rec, nil
	})
}

// UpdateAnalysis implements Store. The new pair fully replaces the old one.
func (s *FileStore) UpdateAnalysis(ctx context.Context, id int64, summary string, actions []string) (*feedback.Record, error) {
	summary = feedback.NormalizeNewlines(summary)
	actions = feedback.NormalizeActions(actions)
	return s.mutate(ctx, "update_analysis", func(records []feedback.Record) ([]feedback.Record, *feedback.Record, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			records[i].Summary = summary
			records[i].Actions = actions
			rec := records[i]
			return records, &rec, nil
		}
		return nil, nil, errors.NewNotFound(id)
	})
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

type mutation func(records []feedback.Record) ([]feedback.Record, *feedback.Record, error)

// mutate is the single writer: lock, read the latest table, apply fn, rewrite.
// A table that exists but cannot be parsed is never overwritten.
func (s *FileStore) mutate(ctx context.Context, op string, fn mutation) (*feedback.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled(op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return nil, errors.NewStorage(op, err)
	}
	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return nil, errors.NewStorage(op, err)
	}
	defer unlock()

	records, err := readTable(s.path)
	if err != nil {
		return nil, errors.NewStorage(op, err)
	}

	records, rec, err := fn(records)
	if err != nil {
		return nil, err
	}

	if err := WriteFileAtomic(s.path, func(w io.Writer) error {
		return encodeTable(w, records)
	}); err != nil {
		return nil, errors.NewStorage(op, err)
	}

	s.log.Debug("record table rewritten", zap.String("op", op), zap.Int64("id", rec.ID), zap.Int("records", len(records)))
	return rec, nil
}
