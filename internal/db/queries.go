package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectColumns = `
	SELECT id, timestamp, rating, review, ai_response, summary, actions
	FROM feedback
`

// Insert stores a new feedback record. The record's ID must already be minted.
func Insert(ctx context.Context, q Querier, r *feedback.Record) error {
	actions, err := feedback.EncodeActions(r.Actions)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO feedback (id, timestamp, rating, review, ai_response, summary, actions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		r.ID, r.Timestamp.Format(time.RFC3339Nano), r.Rating,
		r.Review, r.AIResponse, r.Summary, actions,
	)
	if err != nil {
		return errors.NewStorage("insert", err)
	}
	return nil
}

// MaxID returns the largest id in the table, or 0 when it is empty.
func MaxID(ctx context.Context, q Querier) (int64, error) {
	var max sql.NullInt64
	if err := q.QueryRowContext(ctx, "SELECT MAX(id) FROM feedback").Scan(&max); err != nil {
		return 0, errors.NewStorage("max id", err)
	}
	return max.Int64, nil
}

// GetByID retrieves a feedback record by id.
func GetByID(ctx context.Context, q Querier, id int64) (*feedback.Record, error) {
	row := q.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewStorage("get", err)
	}
	return r, nil
}

// ListAll returns every record in insertion (id) order.
func ListAll(ctx context.Context, q Querier) ([]feedback.Record, error) {
	rows, err := q.QueryContext(ctx, selectColumns+" ORDER BY id ASC")
	if err != nil {
		return nil, errors.NewStorage("list", err)
	}
	defer rows.Close()

	var out []feedback.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewStorage("list", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("list", err)
	}
	return out, nil
}

// UpdateAnalysis replaces the summary and actions of an existing record.
func UpdateAnalysis(ctx context.Context, q Querier, id int64, summary string, actions []string) error {
	encoded, err := feedback.EncodeActions(actions)
	if err != nil {
		return errors.NewInternal(err)
	}

	result, err := q.ExecContext(ctx,
		"UPDATE feedback SET summary = ?, actions = ? WHERE id = ?",
		summary, encoded, id,
	)
	if err != nil {
		return errors.NewStorage("update analysis", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorage("update analysis", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record.
func scanRecord(row scanner) (*feedback.Record, error) {
	var (
		r       feedback.Record
		ts      string
		actions string
	)
	if err := row.Scan(&r.ID, &ts, &r.Rating, &r.Review, &r.AIResponse, &r.Summary, &actions); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, err
	}
	r.Timestamp = parsed
	r.Summary = feedback.CleanSummary(r.Summary)
	// Actions only count alongside a summary.
	if r.Summary != "" {
		r.Actions = feedback.DecodeActions(actions)
	}
	return &r, nil
}
