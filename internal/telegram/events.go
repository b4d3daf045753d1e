package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jmorales/gastosbot/internal/bot"
)

// eventFromUpdate maps a Telegram update to a bot event. The returned
// fileID, when non-empty, identifies a receipt photo whose bytes still
// need downloading. ok is false for updates the bot has no use for
// (edits, channel posts, service messages, empty text).
func eventFromUpdate(update tgbotapi.Update) (ev bot.Event, fileID string, ok bool) {
	if cq := update.CallbackQuery; cq != nil && cq.From != nil && cq.Data != "" {
		ev = bot.Event{
			User:      cq.From.ID,
			FirstName: cq.From.FirstName,
			Callback:  cq.Data,
		}
		if cq.Message != nil {
			ev.MessageID = cq.Message.MessageID
		}
		return ev, "", true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return bot.Event{}, "", false
	}

	ev = bot.Event{
		User:      msg.From.ID,
		FirstName: msg.From.FirstName,
		MessageID: msg.MessageID,
	}

	switch {
	case msg.IsCommand():
		ev.Command = msg.Command()
		ev.Text = msg.CommandArguments()
	case len(msg.Photo) > 0:
		ev.Text = msg.Caption
		return ev, largestPhoto(msg.Photo), true
	case msg.Text != "":
		ev.Text = msg.Text
	default:
		return bot.Event{}, "", false
	}

	return ev, "", true
}

// largestPhoto picks the file ID of the biggest size variant Telegram
// offers for a photo message.
func largestPhoto(sizes []tgbotapi.PhotoSize) string {
	var fileID string
	var bestArea int
	for _, size := range sizes {
		if area := size.Width * size.Height; area >= bestArea {
			fileID, bestArea = size.FileID, area
		}
	}
	return fileID
}
