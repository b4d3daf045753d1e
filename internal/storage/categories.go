package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmorales/gastosbot/internal/model"
)

// Categories returns a user's catalog for one kind, in seed order.
func (s *SQLiteStorage) Categories(ctx context.Context, userID int64, kind model.TransactionKind) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, kind)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, emoji
		FROM categories
		WHERE user_id = ? AND kind = ?
		ORDER BY id ASC
	`, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var catKind string
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &catKind, &cat.Emoji); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Kind = model.TransactionKind(catKind)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("Retrieved categories", "user_id", userID, "kind", kind, "count", len(categories))
	return categories, nil
}

// SeedDefaultCategories inserts the default catalogs for a user. Existing
// rows are left untouched, so calling it repeatedly is safe.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO categories (user_id, name, kind, emoji)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	seeded := 0
	for _, set := range [][]model.Category{model.DefaultExpenseCategories, model.DefaultIncomeCategories} {
		for _, cat := range set {
			emoji := cat.Emoji
			if emoji == "" {
				emoji = model.DefaultEmoji
			}
			result, execErr := stmt.ExecContext(ctx, userID, cat.Name, string(cat.Kind), emoji)
			if execErr != nil {
				return fmt.Errorf("failed to seed category %q: %w", cat.Name, execErr)
			}
			if rows, raErr := result.RowsAffected(); raErr == nil {
				seeded += int(rows)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	if seeded > 0 {
		slog.Info("Seeded default categories", "user_id", userID, "count", seeded)
	}
	return nil
}
