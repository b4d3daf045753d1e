package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFromUpdateText(t *testing.T) {
	ev, fileID, ok := eventFromUpdate(tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 7,
			From:      &tgbotapi.User{ID: 42, FirstName: "José"},
			Text:      "45.50 almuerzo",
		},
	})

	require.True(t, ok)
	assert.Empty(t, fileID)
	assert.Equal(t, int64(42), ev.User)
	assert.Equal(t, "José", ev.FirstName)
	assert.Equal(t, 7, ev.MessageID)
	assert.Equal(t, "45.50 almuerzo", ev.Text)
	assert.Empty(t, ev.Command)
}

func TestEventFromUpdateCommand(t *testing.T) {
	ev, _, ok := eventFromUpdate(tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 42},
			Text: "/fijo luz",
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: 5},
			},
		},
	})

	require.True(t, ok)
	assert.Equal(t, "fijo", ev.Command)
	assert.Equal(t, "luz", ev.Text)
}

func TestEventFromUpdateCallback(t *testing.T) {
	ev, fileID, ok := eventFromUpdate(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			From:    &tgbotapi.User{ID: 42, FirstName: "José"},
			Message: &tgbotapi.Message{MessageID: 9},
			Data:    "cat|3",
		},
	})

	require.True(t, ok)
	assert.Empty(t, fileID)
	assert.Equal(t, int64(42), ev.User)
	assert.Equal(t, 9, ev.MessageID)
	assert.Equal(t, "cat|3", ev.Callback)
}

func TestEventFromUpdatePhotoPicksLargest(t *testing.T) {
	ev, fileID, ok := eventFromUpdate(tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:    &tgbotapi.User{ID: 42},
			Caption: "boleta",
			Photo: []tgbotapi.PhotoSize{
				{FileID: "small", Width: 90, Height: 90},
				{FileID: "large", Width: 800, Height: 600},
				{FileID: "medium", Width: 320, Height: 240},
			},
		},
	})

	require.True(t, ok)
	assert.Equal(t, "large", fileID)
	assert.Equal(t, "boleta", ev.Text)
}

func TestEventFromUpdateIgnored(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
	}{
		{name: "empty update"},
		{
			name: "message without sender",
			update: tgbotapi.Update{
				Message: &tgbotapi.Message{Text: "hola"},
			},
		},
		{
			name: "service message",
			update: tgbotapi.Update{
				Message: &tgbotapi.Message{
					From:           &tgbotapi.User{ID: 42},
					NewChatMembers: []tgbotapi.User{{ID: 99}},
				},
			},
		},
		{
			name: "callback without data",
			update: tgbotapi.Update{
				CallbackQuery: &tgbotapi.CallbackQuery{
					From: &tgbotapi.User{ID: 42},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := eventFromUpdate(tt.update)
			assert.False(t, ok)
		})
	}
}

func TestLargestPhotoEmpty(t *testing.T) {
	assert.Empty(t, largestPhoto(nil))
}
