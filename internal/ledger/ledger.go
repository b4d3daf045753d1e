// Package ledger coordinates the persistent ledger, the spreadsheet
// mirror and the photo store. Writes land in SQLite first; mirroring is
// best-effort and never blocks or fails a commit.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/service"
)

// mirrorTimeout bounds each background sync, including its retries.
const mirrorTimeout = 10 * time.Second

// Ledger is the single write path for transactions.
type Ledger struct {
	store  service.Storage
	mirror service.Mirror
	blobs  service.BlobStore
	logger *slog.Logger
	clock  func() time.Time
	wg     sync.WaitGroup
}

// New creates a ledger over the given stores.
func New(store service.Storage, mirror service.Mirror, blobs service.BlobStore, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		mirror: mirror,
		blobs:  blobs,
		logger: logger,
		clock:  time.Now,
	}
}

// Commit persists the transaction and schedules a background mirror
// append. The transaction's ID is set on success.
func (l *Ledger) Commit(ctx context.Context, txn *model.Transaction) error {
	if txn != nil && txn.CreatedAt.IsZero() {
		txn.CreatedAt = l.clock()
	}

	if err := l.store.AppendTransaction(ctx, txn); err != nil {
		return common.NewUserError("Error guardando el registro", err)
	}

	l.syncAppend(*txn)
	return nil
}

// DeleteLast removes the user's most recent transaction, its stored
// photo, and the mirror's bottom row. It returns the removed transaction,
// or common.ErrNotFound when the user has none.
func (l *Ledger) DeleteLast(ctx context.Context, userID int64) (*model.Transaction, error) {
	txn, err := l.store.LastTransaction(ctx, userID)
	if err != nil {
		return nil, common.NewUserError("Error eliminando el registro", err)
	}
	if txn == nil {
		return nil, fmt.Errorf("%w: user %d has no transactions", common.ErrNotFound, userID)
	}

	if err := l.store.DeleteTransaction(ctx, txn.ID, userID); err != nil {
		return nil, common.NewUserError("Error eliminando el registro", err)
	}

	if txn.HasPhoto() {
		if err := l.blobs.Delete(ctx, txn.PhotoRef); err != nil {
			l.logger.Warn("Failed to delete receipt photo",
				"ref", txn.PhotoRef,
				"error", err)
		}
	}

	l.syncDeleteLast()
	return txn, nil
}

// Recent returns the newest transactions for a user.
func (l *Ledger) Recent(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	return l.store.RecentTransactions(ctx, userID, limit)
}

// ExpensesOn returns the expenses recorded on the given calendar day.
func (l *Ledger) ExpensesOn(ctx context.Context, userID int64, day time.Time) ([]model.Transaction, error) {
	start, end := dayBounds(day)
	return l.store.ExpensesBetween(ctx, userID, start, end)
}

// TotalOn returns the total of one kind on the given calendar day.
func (l *Ledger) TotalOn(ctx context.Context, userID int64, kind model.TransactionKind, day time.Time) (decimal.Decimal, error) {
	start, end := dayBounds(day)
	return l.store.SumByKind(ctx, userID, kind, start, end)
}

// MonthSummary aggregates the calendar month containing the given day:
// income, expenses and the per-category expense breakdown.
func (l *Ledger) MonthSummary(ctx context.Context, userID int64, day time.Time) (service.MonthSummary, error) {
	start, end := monthBounds(day)

	var summary service.MonthSummary
	var err error

	summary.Income, err = l.store.SumByKind(ctx, userID, model.KindIncome, start, end)
	if err != nil {
		return service.MonthSummary{}, err
	}

	summary.Expenses, err = l.store.SumByKind(ctx, userID, model.KindExpense, start, end)
	if err != nil {
		return service.MonthSummary{}, err
	}

	summary.ByCategory, err = l.store.CategoryTotals(ctx, userID, model.KindExpense, start, end)
	if err != nil {
		return service.MonthSummary{}, err
	}

	return summary, nil
}

// CategoryBreakdown returns per-category expense totals for the trailing
// window of whole days ending on the given day, largest first.
func (l *Ledger) CategoryBreakdown(ctx context.Context, userID int64, day time.Time, days int) ([]service.CategoryTotal, error) {
	if days <= 0 {
		days = 30
	}
	_, end := dayBounds(day)
	return l.store.CategoryTotals(ctx, userID, model.KindExpense, end.AddDate(0, 0, -days), end)
}

// Wait blocks until all scheduled mirror syncs have finished.
func (l *Ledger) Wait() {
	l.wg.Wait()
}

func (l *Ledger) syncAppend(txn model.Transaction) {
	if !l.mirror.Enabled() {
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		// Detached from the request context: the reply has already
		// been sent by the time this runs.
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()

		if err := l.mirror.Append(ctx, MirrorRowFor(txn)); err != nil {
			l.logMirrorFailure("append", err)
		}
	}()
}

func (l *Ledger) syncDeleteLast() {
	if !l.mirror.Enabled() {
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()

		if err := l.mirror.DeleteLastRow(ctx); err != nil {
			l.logMirrorFailure("delete", err)
		}
	}()
}

func (l *Ledger) logMirrorFailure(op string, err error) {
	if common.IsRetryable(err) {
		l.logger.Warn("Mirror sync failed, will reconnect on next sync", "op", op, "error", err)
		return
	}
	l.logger.Error("Mirror sync failed", "op", op, "error", err)
}

// MirrorRowFor converts a committed transaction to its spreadsheet row.
func MirrorRowFor(txn model.Transaction) service.MirrorRow {
	return service.MirrorRow{
		When:          txn.CreatedAt,
		Kind:          txn.Kind,
		Category:      txn.Category,
		Description:   txn.Description,
		PaymentMethod: txn.PaymentMethod,
		Amount:        txn.Amount,
	}
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func monthBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 1, 0)
}
