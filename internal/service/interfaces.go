// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	AppendTransaction(ctx context.Context, txn *model.Transaction) error
	LastTransaction(ctx context.Context, userID int64) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID int64) error
	RecentTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)
	AllTransactions(ctx context.Context, userID int64) ([]model.Transaction, error)
	ExpensesBetween(ctx context.Context, userID int64, start, end time.Time) ([]model.Transaction, error)
	SumByKind(ctx context.Context, userID int64, kind model.TransactionKind, start, end time.Time) (decimal.Decimal, error)
	CategoryTotals(ctx context.Context, userID int64, kind model.TransactionKind, start, end time.Time) ([]CategoryTotal, error)

	// Category operations
	Categories(ctx context.Context, userID int64, kind model.TransactionKind) ([]model.Category, error)
	SeedDefaultCategories(ctx context.Context, userID int64) error

	// Recurring rule operations
	CreateRule(ctx context.Context, rule *model.RecurringRule) error
	ActiveRules(ctx context.Context, userID int64) ([]model.RecurringRule, error)
	DueRules(ctx context.Context, day int, monthStamp string) ([]model.RecurringRule, error)
	MarkRuleApplied(ctx context.Context, id int64, monthStamp string) error
	DeactivateRule(ctx context.Context, id, userID int64) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Mirror replicates committed ledger rows to an external spreadsheet.
// Implementations must be safe for concurrent use.
type Mirror interface {
	// Enabled reports whether the mirror is configured. When false the
	// other methods return ErrMirrorDisabled-style failures and callers
	// should skip them entirely.
	Enabled() bool
	Append(ctx context.Context, row MirrorRow) error
	DeleteLastRow(ctx context.Context) error
}

// MirrorRow is one spreadsheet line derived from a committed transaction.
type MirrorRow struct {
	When          time.Time
	Category      string
	Description   string
	PaymentMethod string
	Kind          model.TransactionKind
	Amount        decimal.Decimal
}

// BlobStore persists receipt photos outside the relational store.
type BlobStore interface {
	// Store writes the photo bytes and returns an opaque reference that
	// can later be passed to Delete.
	Store(ctx context.Context, userID int64, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Button is a single inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// Replier delivers bot output back to a chat. The transport adapter
// implements it; the conversation layer never talks to the network
// directly.
type Replier interface {
	Send(ctx context.Context, chatID int64, text string, keyboard [][]Button) error
	Edit(ctx context.Context, chatID int64, messageID int, text string, keyboard [][]Button) error
}

// CategoryTotal aggregates spending for a single category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// BarLength maps the total onto a bar of at most width blocks,
// proportional to the largest total in the breakdown and clamped to
// [0, width].
func (c CategoryTotal) BarLength(largest decimal.Decimal, width int) int {
	if !largest.IsPositive() || width <= 0 {
		return 0
	}

	ratio, _ := c.Total.Div(largest).Float64()
	blocks := int(math.Round(ratio * float64(width)))
	if blocks < 0 {
		blocks = 0
	}
	if blocks > width {
		blocks = width
	}
	return blocks
}

// Percent returns the total as a percentage of whole, 0 when whole is
// not positive.
func (c CategoryTotal) Percent(whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}

	ratio, _ := c.Total.Div(whole).Float64()
	return ratio * 100
}

// MonthSummary aggregates a single month of ledger activity.
type MonthSummary struct {
	ByCategory []CategoryTotal
	Income     decimal.Decimal
	Expenses   decimal.Decimal
}

// Balance returns income minus expenses.
func (s MonthSummary) Balance() decimal.Decimal {
	return s.Income.Sub(s.Expenses)
}

// SavingsRate returns the balance as a percentage of income, or 0 when
// there is no income.
func (s MonthSummary) SavingsRate() float64 {
	if !s.Income.IsPositive() {
		return 0
	}
	rate, _ := s.Balance().Div(s.Income).Mul(decimal.NewFromInt(100)).Float64()
	return rate
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
