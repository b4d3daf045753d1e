package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmorales/gastosbot/internal/blob"
	"github.com/jmorales/gastosbot/internal/config"
	"github.com/jmorales/gastosbot/internal/service"
	"github.com/jmorales/gastosbot/internal/sheets"
	"github.com/jmorales/gastosbot/internal/storage"
)

// initStorage opens the ledger database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initMirror builds the spreadsheet mirror. A misconfigured mirror is a
// warning, not a failure: the ledger works without it, so the bot gets a
// permanently disabled mirror instead of refusing to start.
func initMirror(logger *slog.Logger) service.Mirror {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		logger.Warn("Spreadsheet mirror disabled", "error", err)
		cfg = &sheets.Config{}
	}

	mirror, err := sheets.NewMirror(*cfg, logger)
	if err != nil {
		logger.Warn("Spreadsheet mirror disabled", "error", err)
		mirror, _ = sheets.NewMirror(sheets.Config{}, logger)
	}

	if !mirror.Enabled() {
		logger.Debug("Spreadsheet mirror is not configured")
	}
	return mirror
}

// initBlobStore builds the receipt photo store named by blob.backend.
func initBlobStore(ctx context.Context) (service.BlobStore, error) {
	cfg, err := config.LoadBlob()
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case "gcs":
		store, err := blob.NewGCS(ctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to open GCS photo store: %w", err)
		}
		return store, nil
	default:
		store, err := blob.NewLocal(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open local photo store: %w", err)
		}
		return store, nil
	}
}
