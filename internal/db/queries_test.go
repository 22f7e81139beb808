package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRecord(id int64, rating int, review string) *feedback.Record {
	return &feedback.Record{
		ID:         id,
		Timestamp:  time.UnixMilli(id).UTC(),
		Rating:     rating,
		Review:     review,
		AIResponse: "Thanks for taking the time to write to us.",
	}
}

func TestInsertAndGetByID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r := newTestRecord(1700000000123, 4, "Pretty good overall, quick delivery.")
	if err := Insert(ctx, db, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != r.ID || got.Rating != 4 || got.Review != r.Review || got.AIResponse != r.AIResponse {
		t.Errorf("GetByID = %+v, want %+v", got, r)
	}
	if !got.Timestamp.Equal(r.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, r.Timestamp)
	}
	if got.Summary != "" || got.Actions != nil {
		t.Errorf("new record should have no analysis, got %q %v", got.Summary, got.Actions)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := GetByID(context.Background(), db, 42)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByID error = %v, want NOT_FOUND", err)
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r := newTestRecord(10, 5, "Loved every minute of it.")
	if err := Insert(ctx, db, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := Insert(ctx, db, r); !errors.Is(err, errors.ErrStorage) {
		t.Errorf("duplicate Insert error = %v, want STORAGE", err)
	}
}

func TestMaxID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	max, err := MaxID(ctx, db)
	if err != nil {
		t.Fatalf("MaxID failed: %v", err)
	}
	if max != 0 {
		t.Errorf("MaxID on empty table = %d, want 0", max)
	}

	for _, id := range []int64{5, 30, 12} {
		if err := Insert(ctx, db, newTestRecord(id, 3, "It was fine, nothing special.")); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	max, err = MaxID(ctx, db)
	if err != nil {
		t.Fatalf("MaxID failed: %v", err)
	}
	if max != 30 {
		t.Errorf("MaxID = %d, want 30", max)
	}
}

func TestListAll_OrderedByID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		if err := Insert(ctx, db, newTestRecord(id, 2, "Slow service and cold food.")); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	records, err := ListAll(ctx, db)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for i, want := range []int64{1, 2, 3} {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %d, want %d", i, records[i].ID, want)
		}
	}
}

func TestListAll_Empty(t *testing.T) {
	db := openTestDB(t)

	records, err := ListAll(context.Background(), db)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestUpdateAnalysis(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r := newTestRecord(7, 1, "Terrible, my order never arrived.")
	if err := Insert(ctx, db, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := UpdateAnalysis(ctx, db, 7, "first summary that is long enough", []string{"one action here", "two action here"}); err != nil {
		t.Fatalf("UpdateAnalysis failed: %v", err)
	}
	second := []string{"Escalate to support lead", "Refund the order in full"}
	if err := UpdateAnalysis(ctx, db, 7, "Customer never received the order", second); err != nil {
		t.Fatalf("UpdateAnalysis failed: %v", err)
	}

	got, err := GetByID(ctx, db, 7)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Summary != "Customer never received the order" {
		t.Errorf("Summary = %q", got.Summary)
	}
	if len(got.Actions) != 2 || got.Actions[0] != second[0] || got.Actions[1] != second[1] {
		t.Errorf("Actions = %v, want %v", got.Actions, second)
	}
	if got.Review != r.Review || got.AIResponse != r.AIResponse {
		t.Error("UpdateAnalysis must not touch review or ai_response")
	}
}

func TestUpdateAnalysis_NotFound(t *testing.T) {
	db := openTestDB(t)

	err := UpdateAnalysis(context.Background(), db, 99, "summary", []string{"a", "b"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateAnalysis error = %v, want NOT_FOUND", err)
	}
}

func TestScanRecord_TolerantActions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO feedback (id, timestamp, rating, review, ai_response, summary, actions)
		VALUES (1, ?, 5, 'Great place, will return.', 'Thank you!', 'nan', 'not json')`,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	got, err := GetByID(ctx, db, 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Summary != "" {
		t.Errorf("Summary = %q, want empty for nan", got.Summary)
	}
	if got.Actions != nil {
		t.Errorf("Actions = %v, want nil for undecodable JSON", got.Actions)
	}
}

func TestScanRecord_ActionsWithoutSummaryIgnored(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO feedback (id, timestamp, rating, review, ai_response, summary, actions)
		VALUES (1, ?, 2, 'Slow service tonight.', 'We are sorry.', '', '["Call the customer back","Audit the kitchen line"]')`,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	got, err := GetByID(ctx, db, 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.HasAnalysis() {
		t.Error("record without summary should not have analysis")
	}
	if got.Actions != nil {
		t.Errorf("Actions = %v, want nil without a summary", got.Actions)
	}
}
