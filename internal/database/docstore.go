package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/docstore"
)

// NewDocstore opens the document store selected by DOCSTORE_DRIVER. The
// returned func releases the underlying connections.
func NewDocstore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (docstore.Store, func(), error) {
	if cfg.DocstoreDriver == config.DriverSQLite {
		store, err := docstore.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite docstore: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("SQLite document store opened")
		return store, func() { store.Close() }, nil
	}

	pool, err := NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return docstore.NewPostgresStore(pool), pool.Close, nil
}
