package bot

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorales/gastosbot/internal/blob"
	"github.com/jmorales/gastosbot/internal/ledger"
	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/service"
	"github.com/jmorales/gastosbot/internal/sheets"
	"github.com/jmorales/gastosbot/internal/storage"
	"github.com/jmorales/gastosbot/internal/testutil"
)

// sentMessage is one outbound reply captured by the fake replier.
type sentMessage struct {
	text      string
	keyboard  [][]service.Button
	chatID    int64
	messageID int
}

// fakeReplier records outbound messages for assertions.
type fakeReplier struct {
	sends []sentMessage
	edits []sentMessage
	err   error
}

func (f *fakeReplier) Send(_ context.Context, chatID int64, text string, keyboard [][]service.Button) error {
	if f.err != nil {
		return f.err
	}
	f.sends = append(f.sends, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeReplier) Edit(_ context.Context, chatID int64, messageID int, text string, keyboard [][]service.Button) error {
	if f.err != nil {
		return f.err
	}
	f.edits = append(f.edits, sentMessage{chatID: chatID, messageID: messageID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeReplier) lastSend(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, f.sends, "expected at least one sent message")
	return f.sends[len(f.sends)-1]
}

func (f *fakeReplier) lastEdit(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, f.edits, "expected at least one edited message")
	return f.edits[len(f.edits)-1]
}

type botFixture struct {
	bot     *Bot
	store   *storage.SQLiteStorage
	replier *fakeReplier
	mirror  *sheets.MockMirror
	blobs   *blob.MockStore
	ledger  *ledger.Ledger
}

func newBotFixture(t *testing.T, allowList ...int64) *botFixture {
	t.Helper()

	store := testutil.SetupTestDB(t)
	mirror := sheets.NewMockMirror()
	blobs := blob.NewMockStore()
	led := ledger.New(store, mirror, blobs, slog.Default())
	replier := &fakeReplier{}

	return &botFixture{
		bot:     New(store, led, blobs, replier, allowList, slog.Default()),
		store:   store,
		replier: replier,
		mirror:  mirror,
		blobs:   blobs,
		ledger:  led,
	}
}

func (f *botFixture) handle(ev Event) {
	f.bot.Handle(context.Background(), ev)
}

// freeze pins the bot's clock so day and month windows are deterministic.
func (f *botFixture) freeze(at time.Time) {
	f.bot.clock = func() time.Time { return at }
}

func commandEvent(user int64, name string) Event {
	return Event{User: user, Command: name}
}

func textEvent(user int64, body string) Event {
	return Event{User: user, Text: body}
}

func callbackEvent(user int64, data string) Event {
	return Event{User: user, Callback: data, MessageID: 42}
}

func photoEvent(user int64, caption string, data []byte) Event {
	return Event{User: user, Text: caption, Photo: data}
}

func TestAuthAllowListBlocksStrangers(t *testing.T) {
	f := newBotFixture(t, 1, 2)

	f.handle(commandEvent(99, "start"))

	last := f.replier.lastSend(t)
	assert.Equal(t, int64(99), last.chatID)
	assert.Equal(t, "⛔ No estás autorizado para usar este bot.", last.text)

	// Nothing was seeded for the stranger.
	categories, err := f.store.Categories(context.Background(), 99, model.KindExpense)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestAuthAllowListAdmitsMembers(t *testing.T) {
	f := newBotFixture(t, 1, 2)

	f.handle(commandEvent(2, "start"))

	assert.Contains(t, f.replier.lastSend(t).text, "GastosBot")
}

func TestAuthOpenWhenListEmpty(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(7, "start"))

	assert.Contains(t, f.replier.lastSend(t).text, "GastosBot")
}

func TestCancelButtonEndsFlow(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "gasto"))
	f.handle(callbackEvent(1, "cancel"))

	last := f.replier.lastEdit(t)
	assert.Equal(t, "❌ Cancelado", last.text)
	assert.Empty(t, last.keyboard)

	// The abandoned flow no longer consumes category presses.
	edits := len(f.replier.edits)
	f.handle(callbackEvent(1, "cat|🍽️ Comida"))
	assert.Len(t, f.replier.edits, edits)
}

func TestCancelCommandEndsFlow(t *testing.T) {
	for _, name := range []string{"cancel", "cancelar"} {
		t.Run(name, func(t *testing.T) {
			f := newBotFixture(t)

			f.handle(commandEvent(1, "gasto"))
			f.handle(commandEvent(1, name))

			assert.Equal(t, "❌ Cancelado", f.replier.lastSend(t).text)
		})
	}
}

func TestUnknownCommandIgnored(t *testing.T) {
	f := newBotFixture(t)

	f.handle(commandEvent(1, "dance"))

	assert.Empty(t, f.replier.sends)
	assert.Empty(t, f.replier.edits)
}

func TestUnknownCallbackIgnored(t *testing.T) {
	f := newBotFixture(t)

	f.handle(callbackEvent(1, "bogus|payload"))
	f.handle(callbackEvent(1, "no-separator"))

	assert.Empty(t, f.replier.sends)
	assert.Empty(t, f.replier.edits)
}
