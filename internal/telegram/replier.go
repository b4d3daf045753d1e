package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jmorales/gastosbot/internal/service"
)

// Send implements service.Replier. Messages go out as Markdown with an
// optional inline keyboard.
func (c *Client) Send(_ context.Context, chatID int64, text string, keyboard [][]service.Button) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup := keyboardFor(keyboard); markup != nil {
		msg.ReplyMarkup = *markup
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return nil
}

// Edit implements service.Replier, rewriting a previously sent message in
// place. A nil keyboard clears any buttons the message carried.
func (c *Client) Edit(_ context.Context, chatID int64, messageID int, text string, keyboard [][]service.Button) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = keyboardFor(keyboard)

	if _, err := c.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message %d in %d: %w", messageID, chatID, err)
	}
	return nil
}

// keyboardFor converts button rows to Telegram inline keyboard markup,
// nil for no buttons.
func keyboardFor(keyboard [][]service.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, buttons)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
