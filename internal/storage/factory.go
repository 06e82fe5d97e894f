// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/apexsim/apexsim/internal/config"
	gormstorage "github.com/apexsim/apexsim/internal/storage/gorm"
	"github.com/apexsim/apexsim/internal/storage/memory"
)

// NewBackend creates a results store based on configuration. A postgres
// server that cannot be reached falls back to the configured sqlite
// file so results are not lost.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := gormstorage.OpenPostgres(cfg.Postgres, cfg.BatchSize)
		if err == nil {
			err = gormstorage.Ping(db)
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
			db, err = gormstorage.OpenSQLite(cfg.SQLite.Path, cfg.BatchSize)
			if err != nil {
				return nil, fmt.Errorf("failed to open local SQLite DB: %w", err)
			}
		}
		return gormstorage.New(db, log), nil
	case "sqlite":
		db, err := gormstorage.OpenSQLite(cfg.SQLite.Path, cfg.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
		}
		return gormstorage.New(db, log), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
