// Package backend opens the kv.Store selected by storage.backend.
package backend

import (
	"context"
	"fmt"

	"locktodo/internal/backend/filekv"
	"locktodo/internal/backend/sqlkv"
	"locktodo/internal/config"
	"locktodo/internal/kv"
)

// Open returns the configured backend. The caller owns Close.
func Open(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.Settings.Storage.Backend {
	case config.BackendFile, "":
		return filekv.New(cfg.DataPath())
	case config.BackendSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		return sqlkv.OpenSQLite(ctx, cfg.DatabasePath())
	case config.BackendMySQL:
		return sqlkv.OpenMySQL(ctx, cfg.Settings.Storage.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Settings.Storage.Backend)
	}
}
