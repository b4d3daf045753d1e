// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/jmorales/gastosbot/internal/storage"
)

// SetupTestDB creates an in-memory database with migrations applied and
// cleanup registered.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// MustSeedCategories seeds the default catalogs for a user or fails the test.
func MustSeedCategories(t *testing.T, store *storage.SQLiteStorage, userID int64) {
	t.Helper()

	if err := store.SeedDefaultCategories(context.Background(), userID); err != nil {
		t.Fatalf("failed to seed categories for user %d: %v", userID, err)
	}
}
