package bot

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorales/gastosbot/internal/blob"
	"github.com/jmorales/gastosbot/internal/ledger"
	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/service"
	"github.com/jmorales/gastosbot/internal/sheets"
	"github.com/jmorales/gastosbot/internal/testutil"
)

func TestGuidedExpenseWalk(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	f.handle(commandEvent(1, "gasto"))

	intro := f.replier.lastSend(t)
	assert.Equal(t, "💸 *Registrar Gasto*\n\nSelecciona la categoría:", intro.text)
	require.Len(t, intro.keyboard, 6)
	assert.Equal(t, "🏠 Vivienda", intro.keyboard[0][0].Label)
	assert.Equal(t, "cat|🏠 Vivienda", intro.keyboard[0][0].Data)
	assert.Equal(t, "❌ Cancelar", intro.keyboard[5][0].Label)

	f.handle(callbackEvent(1, "cat|🍽️ Comida"))
	assert.Equal(t, "💸 *🍽️ Comida*\n\n💵 Escribe el monto:", f.replier.lastEdit(t).text)

	f.handle(textEvent(1, "150"))
	ask := f.replier.lastSend(t)
	assert.Equal(t, "💵 Monto: *$150.00*\n\n💳 Método de pago:", ask.text)
	require.Len(t, ask.keyboard, 4)
	assert.Equal(t, "💵 Efectivo", ask.keyboard[0][0].Label)
	assert.Equal(t, "pay|Yape", ask.keyboard[0][1].Data)
	assert.Equal(t, "⏭️ Saltar", ask.keyboard[3][0].Label)
	assert.Equal(t, "pay|No especificado", ask.keyboard[3][0].Data)

	f.handle(callbackEvent(1, "pay|Yape"))
	assert.Equal(t, "📝 ¿Descripción? (o escribe *no* para omitir)", f.replier.lastEdit(t).text)

	f.handle(textEvent(1, "almuerzo"))
	confirmation := f.replier.lastSend(t).text
	assert.Contains(t, confirmation, "✅ *Gasto registrado*")
	assert.Contains(t, confirmation, "💸 🍽️ Comida")
	assert.Contains(t, confirmation, "💵 $150.00")
	assert.Contains(t, confirmation, "💳 Yape")
	assert.Contains(t, confirmation, "📝 almuerzo")
	assert.Contains(t, confirmation, "📊 Total hoy: $150.00")

	txn, err := f.store.LastTransaction(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, model.KindExpense, txn.Kind)
	assert.Equal(t, "🍽️ Comida", txn.Category)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "Yape", txn.PaymentMethod)
	assert.Equal(t, "almuerzo", txn.Description)

	f.ledger.Wait()
	assert.Equal(t, 1, f.mirror.AppendCount())
}

func TestGuidedIncomeWalk(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	f.handle(commandEvent(1, "ingreso"))
	intro := f.replier.lastSend(t)
	assert.Equal(t, "💰 *Registrar Ingreso*\n\nSelecciona la categoría:", intro.text)
	// Five income categories fill three rows, plus the cancel row.
	require.Len(t, intro.keyboard, 4)
	assert.Equal(t, "💼 Salario", intro.keyboard[0][0].Label)

	f.handle(callbackEvent(1, "cat|💼 Salario"))
	f.handle(textEvent(1, "3,000"))
	f.handle(callbackEvent(1, "pay|Transferencia"))
	f.handle(textEvent(1, "no"))

	confirmation := f.replier.lastSend(t).text
	assert.Contains(t, confirmation, "✅ *Ingreso registrado*")
	assert.Contains(t, confirmation, "💰 💼 Salario")
	assert.Contains(t, confirmation, "💵 $3,000.00")
	assert.NotContains(t, confirmation, "Total hoy")
	assert.NotContains(t, confirmation, "📝")

	txn, err := f.store.LastTransaction(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, model.KindIncome, txn.Kind)
	assert.Empty(t, txn.Description)
}

func TestGuidedInvalidAmountReprompts(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "gasto"))
	f.handle(callbackEvent(1, "cat|🍽️ Comida"))

	for _, input := range []string{"abc", "-20", "0", "85 almuerzo"} {
		f.handle(textEvent(1, input))
		assert.Equal(t, "❌ Monto inválido. Escribe un número positivo:", f.replier.lastSend(t).text, "input %q", input)
	}

	// The flow is still parked on the amount stage.
	f.handle(textEvent(1, "85"))
	assert.Contains(t, f.replier.lastSend(t).text, "💵 Monto: *$85.00*")
}

func TestGuidedSkipTokens(t *testing.T) {
	for _, token := range []string{"no", "n", "-", "skip", "omitir", "NO", " Skip "} {
		t.Run(token, func(t *testing.T) {
			f := newBotFixture(t)

			f.handle(commandEvent(1, "gasto"))
			f.handle(callbackEvent(1, "cat|🚗 Transporte"))
			f.handle(textEvent(1, "12"))
			f.handle(callbackEvent(1, "pay|Efectivo"))
			f.handle(textEvent(1, token))

			txn, err := f.store.LastTransaction(context.Background(), 1)
			require.NoError(t, err)
			require.NotNil(t, txn)
			assert.Empty(t, txn.Description)
		})
	}
}

func TestGuidedIgnoresTextBeforeCategory(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "gasto"))
	sends := len(f.replier.sends)

	f.handle(textEvent(1, "150"))
	assert.Len(t, f.replier.sends, sends, "text before category selection should be ignored")

	// The category keyboard still works.
	f.handle(callbackEvent(1, "cat|🍽️ Comida"))
	assert.Contains(t, f.replier.lastEdit(t).text, "Escribe el monto")
}

func TestGuidedPhotoCommitsWithReceipt(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	f.handle(commandEvent(1, "gasto"))
	f.handle(callbackEvent(1, "cat|💡 Servicios"))
	f.handle(textEvent(1, "89.90"))
	f.handle(callbackEvent(1, "pay|BCP"))
	f.handle(photoEvent(1, "factura luz", []byte("jpeg-bytes")))

	confirmation := f.replier.lastSend(t).text
	assert.Contains(t, confirmation, "📝 factura luz")
	assert.Contains(t, confirmation, "📸 Foto adjunta")

	txn, err := f.store.LastTransaction(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.True(t, txn.HasPhoto())
	assert.Equal(t, "factura luz", txn.Description)
	assert.Equal(t, 1, f.blobs.Len())
}

func TestGuidedPhotoIgnoredBeforeDescription(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "gasto"))
	sends := len(f.replier.sends)

	f.handle(photoEvent(1, "", []byte("jpeg-bytes")))
	assert.Len(t, f.replier.sends, sends)
	assert.Zero(t, f.blobs.Len())

	f.handle(callbackEvent(1, "cat|🍽️ Comida"))
	assert.Contains(t, f.replier.lastEdit(t).text, "Escribe el monto")
}

func TestGuidedCancelDiscardsDraft(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	f.handle(commandEvent(1, "gasto"))
	f.handle(callbackEvent(1, "cat|🍽️ Comida"))
	f.handle(textEvent(1, "150"))
	f.handle(callbackEvent(1, "cancel"))

	assert.Equal(t, "❌ Cancelado", f.replier.lastEdit(t).text)

	txn, err := f.store.LastTransaction(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, txn)
}

// failingStore wraps real storage with an injectable append failure.
type failingStore struct {
	service.Storage
	appendErr error
}

func (f *failingStore) AppendTransaction(ctx context.Context, txn *model.Transaction) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.Storage.AppendTransaction(ctx, txn)
}

func TestGuidedCommitFailureKeepsDraft(t *testing.T) {
	store := testutil.SetupTestDB(t)
	failing := &failingStore{Storage: store}
	blobs := blob.NewMockStore()
	led := ledger.New(failing, sheets.NewMockMirror(), blobs, slog.Default())
	replier := &fakeReplier{}
	b := New(failing, led, blobs, replier, nil, slog.Default())
	ctx := context.Background()

	b.Handle(ctx, commandEvent(1, "gasto"))
	b.Handle(ctx, callbackEvent(1, "cat|🍽️ Comida"))
	b.Handle(ctx, textEvent(1, "150"))
	b.Handle(ctx, callbackEvent(1, "pay|Yape"))

	failing.appendErr = assert.AnError
	b.Handle(ctx, textEvent(1, "almuerzo"))
	assert.Equal(t, "⚠️ Error guardando el registro. Intenta de nuevo.", replier.lastSend(t).text)

	// The draft survived the failure; retrying the step commits it.
	failing.appendErr = nil
	b.Handle(ctx, textEvent(1, "almuerzo"))
	assert.Contains(t, replier.lastSend(t).text, "✅ *Gasto registrado*")

	txn, err := store.LastTransaction(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, "almuerzo", txn.Description)
}
