package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxRuleDay is the highest day-of-month a recurring rule may trigger on.
// Days 29-31 are rejected so that every rule can fire in every month,
// February included.
const MaxRuleDay = 28

// RecurringRule is a per-user template for a transaction that posts
// automatically once per calendar month. Rules are never physically removed;
// deactivation flips Active to false and keeps the row for history.
type RecurringRule struct {
	Category      string
	Description   string
	PaymentMethod string
	LastApplied   string // "YYYY-MM" month-stamp of the last posting, empty if never applied
	Kind          TransactionKind
	Amount        decimal.Decimal
	ID            int64
	UserID        int64
	DayOfMonth    int
	Active        bool
}

// MonthStamp returns the "YYYY-MM" idempotency key for t's month.
func MonthStamp(t time.Time) string {
	return t.Format("2006-01")
}

// Due reports whether the rule should materialize on the given day: the rule
// is active, today is its trigger day, and it has not yet posted this month.
func (r *RecurringRule) Due(today time.Time) bool {
	return r.Active && r.DayOfMonth == today.Day() && r.LastApplied != MonthStamp(today)
}

// Materialize builds the transaction this rule posts. The description is
// marked so automatic entries are recognizable in listings and the mirror.
func (r *RecurringRule) Materialize(now time.Time) Transaction {
	description := "🔁 Fijo"
	if r.Description != "" {
		description = "🔁 Fijo: " + r.Description
	}

	return Transaction{
		UserID:        r.UserID,
		Kind:          r.Kind,
		Category:      r.Category,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Description:   description,
		CreatedAt:     now,
	}
}
