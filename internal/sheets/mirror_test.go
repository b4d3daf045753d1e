package sheets

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/service"
)

func TestRowValues(t *testing.T) {
	when := time.Date(2025, 6, 3, 14, 35, 0, 0, time.UTC)
	row := service.MirrorRow{
		When:          when,
		Kind:          model.KindExpense,
		Category:      "🍽️ Comida",
		Description:   "almuerzo",
		PaymentMethod: model.PaymentYape,
		Amount:        decimal.RequireFromString("45.90"),
	}

	values := rowValues(row)
	require.Len(t, values, len(headerRow))

	assert.Equal(t, "03/06/2025", values[0])
	assert.Equal(t, "Gasto", values[1])
	assert.Equal(t, "🍽️ Comida", values[2])
	assert.Equal(t, "almuerzo", values[3])
	assert.InDelta(t, 45.90, values[4], 0.001)
	assert.Equal(t, model.PaymentYape, values[5])
	assert.Equal(t, "14:35", values[6])
}

func TestRowValuesIncome(t *testing.T) {
	row := service.MirrorRow{
		When:   time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC),
		Kind:   model.KindIncome,
		Amount: decimal.NewFromInt(3000),
	}

	values := rowValues(row)
	assert.Equal(t, "Ingreso", values[1])
}

func TestDisabledMirror(t *testing.T) {
	mirror, err := NewMirror(Config{}, slog.Default())
	require.NoError(t, err)

	assert.False(t, mirror.Enabled())

	ctx := context.Background()
	assert.ErrorIs(t, mirror.Append(ctx, service.MirrorRow{}), common.ErrMirrorDisabled)
	assert.ErrorIs(t, mirror.DeleteLastRow(ctx), common.ErrMirrorDisabled)
}

func TestNewMirrorRejectsBadConfig(t *testing.T) {
	_, err := NewMirror(Config{SpreadsheetID: "sheet-id"}, slog.Default())
	assert.Error(t, err)
}

func TestMockMirror(t *testing.T) {
	mock := NewMockMirror()
	ctx := context.Background()

	require.NoError(t, mock.Append(ctx, service.MirrorRow{Category: "🍽️ Comida"}))
	require.NoError(t, mock.Append(ctx, service.MirrorRow{Category: "🚗 Transporte"}))
	assert.Equal(t, 2, mock.AppendCount())

	require.NoError(t, mock.DeleteLastRow(ctx))
	rows := mock.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "🍽️ Comida", rows[0].Category)

	t.Run("append error leaves rows untouched", func(t *testing.T) {
		mock.SetAppendError(assert.AnError)
		err := mock.Append(ctx, service.MirrorRow{Category: "💡 Servicios"})
		assert.Error(t, err)
		assert.Len(t, mock.Rows(), 1)
	})
}
