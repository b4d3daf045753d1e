// Package telegram adapts the Telegram Bot API to the conversation core:
// it long-polls for updates, normalizes them into bot events and delivers
// replies. All Telegram-specific types stay inside this package.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jmorales/gastosbot/internal/bot"
)

// Handler consumes normalized chat events. *bot.Bot satisfies it.
type Handler interface {
	Handle(ctx context.Context, ev bot.Event)
}

// botAPI is the surface of tgbotapi.BotAPI the adapter depends on.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

// Client connects the bot to Telegram. It implements service.Replier for
// outbound messages and runs the inbound long-poll loop.
type Client struct {
	api    botAPI
	logger *slog.Logger
	http   *http.Client
}

// New authenticates against the Bot API with the given token.
func New(token string, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	logger.Info("Connected to Telegram", "username", api.Self.UserName)

	return &Client{
		api:    api,
		logger: logger,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Poll consumes updates until the context is canceled, handling them
// sequentially in arrival order. timeout is the long-poll timeout in
// seconds.
func (c *Client) Poll(ctx context.Context, timeout int, handler Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := c.api.GetUpdatesChan(cfg)
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, open := <-updates:
			if !open {
				return nil
			}
			c.dispatch(ctx, update, handler)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, update tgbotapi.Update, handler Handler) {
	// Ack the button press right away so the client stops its spinner.
	if cq := update.CallbackQuery; cq != nil {
		if _, err := c.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			c.logger.Debug("Failed to answer callback query", "error", err)
		}
	}

	ev, fileID, ok := eventFromUpdate(update)
	if !ok {
		return
	}

	if fileID != "" {
		data, err := c.downloadPhoto(ctx, fileID)
		if err != nil {
			// The event continues as plain text; the entry is worth more
			// than the receipt image.
			c.logger.Warn("Failed to download photo", "user_id", ev.User, "error", err)
		} else {
			ev.Photo = data
		}
	}

	handler.Handle(ctx, ev)
}

func (c *Client) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photo URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo download returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo body: %w", err)
	}
	return data, nil
}
