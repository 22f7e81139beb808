// Package ops implements the feedback operations shared by the CLI, the
// web API and the MCP server. Each surface is a thin caller into Pipeline.
package ops

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/config"
	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/generate"
	"github.com/hpungsan/kudos/internal/store"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// RegenerateConcurrency bounds in-flight analysis calls in RegenerateMissing.
const RegenerateConcurrency = 4

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Responder produces the customer-facing reply. It never fails.
type Responder interface {
	Generate(ctx context.Context, rating int, review string) generate.Reply
}

// Analyzer produces the operator-facing analysis. It never fails.
type Analyzer interface {
	Generate(ctx context.Context, rating int, review string) generate.Analysis
}

// Deps wires a Pipeline.
type Deps struct {
	Store     store.Store
	Responder Responder
	Analyzer  Analyzer
	Config    *config.Config

	// ExportDir receives Export output. Defaults to "exports" under the working directory.
	ExportDir string

	Log *zap.Logger
}

// Pipeline runs the submission and regeneration flows against one store.
type Pipeline struct {
	store     store.Store
	responder Responder
	analyzer  Analyzer
	cfg       *config.Config
	exportDir string
	log       *zap.Logger
}

// New builds a Pipeline. Missing config and logger fall back to defaults.
func New(d Deps) *Pipeline {
	cfg := d.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	exportDir := d.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(".", "exports")
	}
	return &Pipeline{
		store:     d.Store,
		responder: d.Responder,
		analyzer:  d.Analyzer,
		cfg:       cfg,
		exportDir: exportDir,
		log:       log.Named("ops"),
	}
}

// Store exposes the underlying record store.
func (p *Pipeline) Store() store.Store {
	return p.store
}

// DisplayActions returns the actions to show for a record. An analyzed
// record whose actions could not be decoded shows a single generic hint.
func DisplayActions(r *feedback.Record) []string {
	if !r.HasAnalysis() {
		return nil
	}
	if len(r.Actions) == 0 {
		return []string{feedback.MissingActionsHint}
	}
	return r.Actions
}
