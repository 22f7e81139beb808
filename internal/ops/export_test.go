package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/kudos/internal/feedback"
)

func readExport(t *testing.T, path string) (ExportHeader, []feedback.Record) {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	require.True(t, scanner.Scan(), "missing header line")
	var header ExportHeader
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &header))

	var records []feedback.Record
	for scanner.Scan() {
		var r feedback.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		records = append(records, r)
	}
	require.NoError(t, scanner.Err())
	return header, records
}

func TestExport_HappyPath(t *testing.T) {
	f := newFixture(t)
	ids := f.seed(t, 5, 2)
	ctx := context.Background()
	_, err := f.p.Regenerate(ctx, RegenerateInput{ID: ids[1]})
	require.NoError(t, err)

	out, err := f.p.Export(ctx, ExportInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, filepath.Join(f.dir, "exports"), filepath.Dir(out.Path))
	assert.True(t, strings.HasSuffix(out.Path, ".jsonl"))

	header, records := readExport(t, out.Path)
	assert.True(t, header.KudosExport)
	assert.Equal(t, ExportSchemaVersion, header.SchemaVersion)
	assert.Equal(t, out.ExportedAt, header.ExportedAt)
	require.Len(t, records, 2)
	assert.Equal(t, ids[0], records[0].ID)
	assert.Equal(t, ids[1], records[1].ID)
	assert.True(t, records[1].HasAnalysis())
	assert.Len(t, records[1].Actions, 3)

	// No temp files left behind
	matches, err := filepath.Glob(filepath.Join(f.dir, "exports", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestExport_PendingOnly(t *testing.T) {
	f := newFixture(t)
	ids := f.seed(t, 4, 4, 1)
	ctx := context.Background()
	_, err := f.p.Regenerate(ctx, RegenerateInput{ID: ids[0]})
	require.NoError(t, err)

	out, err := f.p.Export(ctx, ExportInput{Pending: true})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	_, records := readExport(t, out.Path)
	for _, r := range records {
		assert.False(t, r.HasAnalysis())
	}
}

func TestExport_Empty(t *testing.T) {
	f := newFixture(t)

	out, err := f.p.Export(context.Background(), ExportInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)

	_, records := readExport(t, out.Path)
	assert.Empty(t, records)
}
