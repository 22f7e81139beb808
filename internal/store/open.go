package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/config"
	"github.com/hpungsan/kudos/internal/db"
)

// Open builds the backend selected by cfg under baseDir.
func Open(cfg *config.Config, baseDir string, log *zap.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		conn, err := db.Init(baseDir)
		if err != nil {
			return nil, err
		}
		db.ConfigurePool(conn, cfg)
		return NewSQLStore(conn, log), nil
	case config.BackendCSV, "":
		return NewFileStore(cfg.DataPath(baseDir), log), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
