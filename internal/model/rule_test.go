package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKindValid(t *testing.T) {
	assert.True(t, KindExpense.Valid())
	assert.True(t, KindIncome.Valid())
	assert.False(t, TransactionKind("transfer").Valid())
	assert.False(t, TransactionKind("").Valid())
}

func TestMonthStamp(t *testing.T) {
	assert.Equal(t, "2025-03", MonthStamp(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-11", MonthStamp(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRuleDue(t *testing.T) {
	day5 := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule RecurringRule
		on   time.Time
		want bool
	}{
		{
			name: "active rule on trigger day never applied",
			rule: RecurringRule{DayOfMonth: 5, Active: true},
			on:   day5,
			want: true,
		},
		{
			name: "already applied this month",
			rule: RecurringRule{DayOfMonth: 5, Active: true, LastApplied: "2025-06"},
			on:   day5,
			want: false,
		},
		{
			name: "applied a previous month",
			rule: RecurringRule{DayOfMonth: 5, Active: true, LastApplied: "2025-05"},
			on:   day5,
			want: true,
		},
		{
			name: "wrong day",
			rule: RecurringRule{DayOfMonth: 6, Active: true},
			on:   day5,
			want: false,
		},
		{
			name: "inactive rule",
			rule: RecurringRule{DayOfMonth: 5, Active: false},
			on:   day5,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rule.Amount = decimal.NewFromInt(100)
			assert.Equal(t, tt.want, tt.rule.Due(tt.on))
		})
	}
}
