package ops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/kudos/internal/db"
	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/store"
)

// TestFullWorkflow exercises the record lifecycle on the SQLite backend:
// submit → list → fetch → regenerate → regenerate again → stats → export
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)

	s := store.NewSQLStore(database, nil)
	defer s.Close()

	p := New(Deps{
		Store:     s,
		Responder: &stubResponder{text: "We appreciate you sharing this with us today."},
		Analyzer:  &stubAnalyzer{},
		ExportDir: filepath.Join(tmpDir, "exports"),
	})
	ctx := context.Background()

	// 1. Submit
	sub, err := p.Submit(ctx, SubmitInput{Rating: 1, Review: "The order was wrong and nobody helped."})
	require.NoError(t, err)
	require.NotZero(t, sub.ID)

	// 2. Rejected submission leaves the table untouched
	_, err = p.Submit(ctx, SubmitInput{Rating: 5, Review: "ok"})
	require.True(t, errors.Is(err, errors.ErrValidationFailed))

	// 3. List shows one pending record
	list, err := p.List(ctx, ListInput{Pending: true})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, sub.ID, list.Items[0].ID)

	// 4. Regenerate twice; second pair replaces the first
	first, err := p.Regenerate(ctx, RegenerateInput{ID: sub.ID})
	require.NoError(t, err)
	second, err := p.Regenerate(ctx, RegenerateInput{ID: sub.ID})
	require.NoError(t, err)
	require.Equal(t, first.Actions, second.Actions)
	require.Len(t, second.Actions, 3)

	fetched, err := p.Fetch(ctx, FetchInput{ID: sub.ID})
	require.NoError(t, err)
	require.Equal(t, second.Summary, fetched.Summary)
	require.Len(t, fetched.Actions, 3)

	// 5. Stats
	snap := p.Stats(ctx)
	require.Equal(t, 1, snap.Count)
	require.Equal(t, 100.0, snap.NegativePct)
	require.Equal(t, 0, snap.PendingAnalysis)

	// 6. Export
	exp, err := p.Export(ctx, ExportInput{})
	require.NoError(t, err)
	require.Equal(t, 1, exp.Count)
}
