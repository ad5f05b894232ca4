package storage

import (
	"context"
	"fmt"

	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/config"
)

// Open builds the backend named by cfg.DBType.
func Open(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "memory":
		if cfg.DataFile == "" {
			return NewMemoryStore(logger), nil
		}
		return NewFileStore(cfg.DataFile, logger)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.DBDSN, logger)
	case "sqlite":
		return NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}
