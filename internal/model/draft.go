package model

import "github.com/shopspring/decimal"

// Draft accumulates the fields of a transaction or recurring rule while a
// conversation collects them step by step. Drafts live only in the bot's
// session store and are discarded on commit or cancel, never persisted.
type Draft struct {
	Category      string
	Description   string
	PaymentMethod string
	PhotoRef      string
	Kind          TransactionKind
	Amount        decimal.Decimal
	DayOfMonth    int
}

// Transaction converts the draft into a ledger entry for the given user.
func (d Draft) Transaction(userID int64) *Transaction {
	return &Transaction{
		UserID:        userID,
		Kind:          d.Kind,
		Category:      d.Category,
		Amount:        d.Amount,
		Description:   d.Description,
		PaymentMethod: d.PaymentMethod,
		PhotoRef:      d.PhotoRef,
	}
}

// Rule converts the draft into an active recurring rule for the given user.
func (d Draft) Rule(userID int64) *RecurringRule {
	return &RecurringRule{
		UserID:        userID,
		Kind:          d.Kind,
		Category:      d.Category,
		Amount:        d.Amount,
		Description:   d.Description,
		PaymentMethod: d.PaymentMethod,
		DayOfMonth:    d.DayOfMonth,
		Active:        true,
	}
}
