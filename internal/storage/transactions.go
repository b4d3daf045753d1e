package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/service"
)

const transactionColumns = `id, user_id, kind, category, amount, description, payment_method, created_at, photo_ref`

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var kind string
	var amount float64
	var photoRef sql.NullString

	if err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&kind,
		&txn.Category,
		&amount,
		&txn.Description,
		&txn.PaymentMethod,
		&txn.CreatedAt,
		&photoRef,
	); err != nil {
		return nil, err
	}

	txn.Kind = model.TransactionKind(kind)
	txn.Amount = decimal.NewFromFloat(amount)
	if photoRef.Valid {
		txn.PhotoRef = photoRef.String
	}
	return &txn, nil
}

// AppendTransaction inserts a committed transaction and sets its ID.
func (s *SQLiteStorage) AppendTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	txn.CreatedAt = txn.CreatedAt.Truncate(time.Second)
	if txn.PaymentMethod == "" {
		txn.PaymentMethod = model.DefaultPaymentMethod
	}

	amount, _ := txn.Amount.Float64()
	photoRef := sql.NullString{String: txn.PhotoRef, Valid: txn.PhotoRef != ""}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, kind, category, amount, description, payment_method, created_at, photo_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.UserID, string(txn.Kind), txn.Category, amount, txn.Description, txn.PaymentMethod, txn.CreatedAt, photoRef)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}
	txn.ID = id

	slog.Info("Recorded transaction",
		"id", txn.ID,
		"user_id", txn.UserID,
		"kind", txn.Kind,
		"category", txn.Category)

	return nil
}

// LastTransaction returns the most recent transaction for a user, or nil
// when the user has none. Ties on created_at resolve to the higher ID.
func (s *SQLiteStorage) LastTransaction(ctx context.Context, userID int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last transaction: %w", err)
	}
	return txn, nil
}

// DeleteTransaction removes a transaction owned by the given user.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}

	slog.Info("Deleted transaction", "id", id, "user_id", userID)
	return nil
}

// RecentTransactions returns the newest transactions for a user, most
// recent first.
func (s *SQLiteStorage) RecentTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieved recent transactions", "user_id", userID, "count", len(transactions))
	return transactions, nil
}

// AllTransactions returns every transaction for a user, oldest first.
func (s *SQLiteStorage) AllTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// ExpensesBetween returns expense transactions in [start, end), newest first.
func (s *SQLiteStorage) ExpensesBetween(ctx context.Context, userID int64, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND kind = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at DESC, id DESC
	`, userID, string(model.KindExpense), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// SumByKind totals transaction amounts of one kind in [start, end).
func (s *SQLiteStorage) SumByKind(ctx context.Context, userID int64, kind model.TransactionKind, start, end time.Time) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return decimal.Zero, err
	}
	if !kind.Valid() {
		return decimal.Zero, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, kind)
	}
	if end.Before(start) {
		return decimal.Zero, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ? AND kind = ? AND created_at >= ? AND created_at < ?
	`, userID, string(kind), start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return decimal.NewFromFloat(total), nil
}

// CategoryTotals aggregates per-category spending of one kind in
// [start, end), largest total first.
func (s *SQLiteStorage) CategoryTotals(ctx context.Context, userID int64, kind model.TransactionKind, start, end time.Time) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, kind)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount), 0) AS total, COUNT(*)
		FROM transactions
		WHERE user_id = ? AND kind = ? AND created_at >= ? AND created_at < ?
		GROUP BY category
		ORDER BY total DESC
	`, userID, string(kind), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []service.CategoryTotal
	for rows.Next() {
		var ct service.CategoryTotal
		var total float64
		if err := rows.Scan(&ct.Category, &total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		ct.Total = decimal.NewFromFloat(total)
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}

	return totals, nil
}

func collectTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
