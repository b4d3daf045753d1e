// Package model defines the core domain types shared across the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes money leaving the ledger from money entering it.
type TransactionKind string

const (
	// KindExpense represents money spent.
	KindExpense TransactionKind = "expense"
	// KindIncome represents money received.
	KindIncome TransactionKind = "income"
)

// Valid reports whether the kind is one of the two known values.
func (k TransactionKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Label returns the Spanish display name for the kind.
func (k TransactionKind) Label() string {
	if k == KindIncome {
		return "Ingreso"
	}
	return "Gasto"
}

// Transaction is a single ledger entry. Entries are immutable once created;
// the only mutation the ledger supports is whole-record deletion of a user's
// most recent entry.
type Transaction struct {
	CreatedAt     time.Time
	Category      string
	Description   string
	PaymentMethod string
	PhotoRef      string
	Kind          TransactionKind
	Amount        decimal.Decimal
	ID            int64
	UserID        int64
}

// HasPhoto reports whether a receipt photo is attached to the entry.
func (t *Transaction) HasPhoto() bool {
	return t.PhotoRef != ""
}
