package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorales/gastosbot/internal/model"
)

// seed commits a transaction with an explicit timestamp, bypassing the
// conversation layer.
func (f *botFixture) seed(t *testing.T, kind model.TransactionKind, category, amount string, at time.Time) {
	t.Helper()

	txn := &model.Transaction{
		UserID:        1,
		Kind:          kind,
		Category:      category,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: model.PaymentCash,
		CreatedAt:     at,
	}
	require.NoError(t, f.ledger.Commit(context.Background(), txn))
}

func TestStartSeedsCatalogsAndGreets(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	f.handle(Event{User: 1, Command: "start", FirstName: "José"})

	greeting := f.replier.lastSend(t).text
	assert.Contains(t, greeting, "👋 ¡Hola José!")
	assert.Contains(t, greeting, "💰 *GastosBot* — Tu control financiero personal")
	assert.Contains(t, greeting, "   Hoy: $0.00 gastados")
	assert.Contains(t, greeting, "/fijo — Programar un movimiento fijo")

	expenses, err := f.store.Categories(ctx, 1, model.KindExpense)
	require.NoError(t, err)
	assert.Len(t, expenses, len(model.DefaultExpenseCategories))

	income, err := f.store.Categories(ctx, 1, model.KindIncome)
	require.NoError(t, err)
	assert.Len(t, income, len(model.DefaultIncomeCategories))

	// Seeding is idempotent.
	f.handle(Event{User: 1, Command: "start", FirstName: "José"})
	expenses, err = f.store.Categories(ctx, 1, model.KindExpense)
	require.NoError(t, err)
	assert.Len(t, expenses, len(model.DefaultExpenseCategories))
}

func TestStartWithoutFirstName(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "start"))

	assert.Contains(t, f.replier.lastSend(t).text, "👋 ¡Hola!\n")
}

func TestHelp(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "help"))

	help := f.replier.lastSend(t).text
	assert.Contains(t, help, "📖 *Guía de GastosBot*")
	assert.Contains(t, help, "`85 almuerzo` → con descripción")
	assert.Contains(t, help, "• Puedes adjuntar una foto del recibo")
	assert.Contains(t, help, "/fijos — Ver y eliminar movimientos fijos")
}

func TestTodayEmpty(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "hoy"))

	assert.Equal(t,
		"📅 *Gastos de Hoy*\n"+divider+"\n\n🎉 ¡No has gastado nada hoy!",
		f.replier.lastSend(t).text)
}

func TestTodayListsNewestFirst(t *testing.T) {
	f := newBotFixture(t)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	f.freeze(now)

	f.seed(t, model.KindExpense, "🍽️ Comida", "25.50", now.Add(-5*time.Hour))
	f.seed(t, model.KindExpense, "🚗 Transporte", "10", now.Add(-2*time.Hour))
	f.seed(t, model.KindExpense, "👔 Ropa", "99", now.AddDate(0, 0, -1)) // yesterday
	f.seed(t, model.KindIncome, "💼 Salario", "500", now.Add(-time.Hour))

	f.handle(commandEvent(1, "hoy"))

	assert.Equal(t,
		"📅 *Gastos de Hoy*\n"+divider+"\n\n"+
			"• 🚗 Transporte → $10.00\n"+
			"• 🍽️ Comida → $25.50\n"+
			"\n"+divider+"\n💸 *Total: $35.50*",
		f.replier.lastSend(t).text)
}

func TestTodayShowsDescriptions(t *testing.T) {
	f := newBotFixture(t)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	f.freeze(now)

	txn := &model.Transaction{
		UserID:        1,
		Kind:          model.KindExpense,
		Category:      "🍽️ Comida",
		Amount:        decimal.RequireFromString("25.50"),
		PaymentMethod: model.PaymentYape,
		Description:   "desayuno",
		CreatedAt:     now.Add(-time.Hour),
	}
	require.NoError(t, f.ledger.Commit(context.Background(), txn))

	f.handle(commandEvent(1, "hoy"))

	assert.Contains(t, f.replier.lastSend(t).text, "• 🍽️ Comida → $25.50 — desayuno\n")
}

func TestRecentEmpty(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "recientes"))

	assert.Contains(t, f.replier.lastSend(t).text, "No hay movimientos registrados.")
}

func TestRecentLimitsToTen(t *testing.T) {
	f := newBotFixture(t)
	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		f.seed(t, model.KindExpense, "🍽️ Comida", fmt.Sprintf("%d", 101+i), base.Add(time.Duration(i)*time.Minute))
	}

	f.handle(commandEvent(1, "recientes"))
	recent := f.replier.lastSend(t).text

	assert.Equal(t, 10, strings.Count(recent, "💸 `"))
	assert.Contains(t, recent, "$112.00")
	assert.Contains(t, recent, "$103.00")
	assert.NotContains(t, recent, "$102.00")
	assert.NotContains(t, recent, "$101.00")

	// Newest entry leads, with its timestamp in day/month order.
	assert.Contains(t, recent, "🕐 *Últimos Movimientos*\n"+divider+"\n\n💸 `10/06 09:11` 🍽️ Comida\n   $112.00 (Efectivo)\n")
}

func TestMonthSummary(t *testing.T) {
	f := newBotFixture(t)
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	f.freeze(now)

	f.seed(t, model.KindIncome, "💼 Salario", "3000", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	f.seed(t, model.KindExpense, "🍽️ Comida", "300", time.Date(2025, 6, 5, 13, 0, 0, 0, time.UTC))
	f.seed(t, model.KindExpense, "🚗 Transporte", "150", time.Date(2025, 6, 6, 9, 0, 0, 0, time.UTC))
	// Last month, so it counts toward the 30-day breakdown but not the
	// month header.
	f.seed(t, model.KindExpense, "👔 Ropa", "50", time.Date(2025, 5, 20, 18, 0, 0, 0, time.UTC))

	f.handle(commandEvent(1, "resumen"))

	assert.Equal(t,
		"📊 *Resumen del Mes*\n"+divider+"\n\n"+
			"💰 Ingresos:  $    3,000.00\n"+
			"💸 Gastos:    $      450.00\n"+
			divider+"\n"+
			"📊 Balance:   $    2,550.00\n"+
			"📈 Ahorro:    85.0%\n\n"+
			"*Gastos por categoría:*\n"+
			"`████████` 🍽️ Comida\n  $300.00 (67%)\n"+
			"`████░░░░` 🚗 Transporte\n  $150.00 (33%)\n"+
			"`█░░░░░░░` 👔 Ropa\n  $50.00 (11%)\n",
		f.replier.lastSend(t).text)
}

func TestMonthSummaryEmpty(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "resumen"))

	summary := f.replier.lastSend(t).text
	assert.Contains(t, summary, "📈 Ahorro:    0.0%")
	assert.NotContains(t, summary, "Gastos por categoría")
}

func TestDeleteLast(t *testing.T) {
	f := newBotFixture(t)
	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	f.seed(t, model.KindExpense, "🍽️ Comida", "20", base)
	f.seed(t, model.KindExpense, "🚗 Transporte", "15", base.Add(time.Hour))

	f.handle(commandEvent(1, "borrar"))
	assert.Equal(t, "🗑️ *Eliminado:* 🚗 Transporte → $15.00", f.replier.lastSend(t).text)

	f.handle(commandEvent(1, "borrar"))
	assert.Equal(t, "🗑️ *Eliminado:* 🍽️ Comida → $20.00", f.replier.lastSend(t).text)

	f.handle(commandEvent(1, "borrar"))
	assert.Equal(t, nothingToDeleteText, f.replier.lastSend(t).text)

	txn, err := f.store.LastTransaction(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, txn)
}

func TestInfoCommandsKeepFlowAlive(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "gasto"))
	f.handle(callbackEvent(1, "cat|🍽️ Comida"))

	// Checking reports mid-flow must not discard the draft.
	f.handle(commandEvent(1, "hoy"))
	f.handle(commandEvent(1, "recientes"))

	f.handle(textEvent(1, "150"))
	assert.Equal(t, "💵 Monto: *$150.00*\n\n💳 Método de pago:", f.replier.lastSend(t).text)
}
