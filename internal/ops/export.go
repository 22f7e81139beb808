package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/store"
)

// ExportSchemaVersion is written in every export header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Pending bool // only records without an analysis
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader represents the header line in a JSONL export file.
type ExportHeader struct {
	KudosExport   bool   `json:"_kudos_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// Export writes a JSONL snapshot of the record table into the export
// directory: one header line, then one record per line, oldest first.
// The file appears atomically or not at all.
func (p *Pipeline) Export(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	records := p.store.Load(ctx)
	exportPath := filepath.Join(p.exportDir, fmt.Sprintf("feedback-%s.jsonl", now.Format("2006-01-02T150405.000")))

	count := 0
	err := store.WriteFileAtomic(exportPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if err := enc.Encode(ExportHeader{
			KudosExport:   true,
			SchemaVersion: ExportSchemaVersion,
			ExportedAt:    exportedAt,
		}); err != nil {
			return err
		}
		for i := range records {
			if err := ctx.Err(); err != nil {
				return errors.NewCancelled("export")
			}
			if input.Pending && records[i].HasAnalysis() {
				continue
			}
			if err := enc.Encode(&records[i]); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errors.ErrCancelled) {
			return nil, err
		}
		return nil, errors.NewStorage("export", err)
	}

	p.log.Info("records exported", zap.String("path", exportPath), zap.Int("count", count))
	return &ExportOutput{
		Path:       exportPath,
		Count:      count,
		ExportedAt: exportedAt,
	}, nil
}
