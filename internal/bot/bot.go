// Package bot implements the conversation core: entry flows, commands and
// reply rendering. It speaks to the chat network only through the Replier
// interface, so the whole package is testable without a network.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/ledger"
	"github.com/jmorales/gastosbot/internal/service"
)

// Event is one normalized chat interaction delivered by the transport.
// At most one of Command, Callback or Photo is set; the router dispatches
// on the first of those present and falls back to plain text.
type Event struct {
	FirstName string
	Command   string
	Text      string
	Callback  string
	Photo     []byte
	User      int64
	MessageID int
}

// Bot routes chat events through the entry flows and command handlers.
// A single Bot serves every authorized user; per-user conversation state
// lives in the session store.
type Bot struct {
	store    service.Storage
	ledger   *ledger.Ledger
	blobs    service.BlobStore
	replier  service.Replier
	sessions *sessionStore
	allowed  map[int64]struct{}
	logger   *slog.Logger
	clock    func() time.Time
}

// New creates a bot. An empty allow list leaves the bot open to anyone.
func New(store service.Storage, led *ledger.Ledger, blobs service.BlobStore, replier service.Replier, allowList []int64, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[int64]struct{}, len(allowList))
	for _, id := range allowList {
		allowed[id] = struct{}{}
	}

	return &Bot{
		store:    store,
		ledger:   led,
		blobs:    blobs,
		replier:  replier,
		sessions: newSessionStore(),
		allowed:  allowed,
		logger:   logger,
		clock:    time.Now,
	}
}

// Handle processes one event end to end. Failures are logged here rather
// than returned; the polling loop has nothing useful to do with them.
func (b *Bot) Handle(ctx context.Context, ev Event) {
	if !b.authorized(ev.User) {
		b.logger.Debug("Rejected unauthorized user", "user_id", ev.User)
		if err := b.send(ctx, ev.User, deniedText, nil); err != nil {
			b.logger.Warn("Failed to send denial", "user_id", ev.User, "error", err)
		}
		return
	}

	var err error
	switch {
	case ev.Callback != "":
		err = b.handleCallback(ctx, ev)
	case ev.Command != "":
		err = b.handleCommand(ctx, ev)
	case ev.Photo != nil:
		err = b.handlePhoto(ctx, ev)
	default:
		err = b.handleText(ctx, ev)
	}

	if err != nil {
		b.logger.Error("Event handling failed",
			"user_id", ev.User,
			"command", ev.Command,
			"error", err)
	}
}

func (b *Bot) authorized(userID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[userID]
	return ok
}

func (b *Bot) handleCallback(ctx context.Context, ev Event) error {
	if ev.Callback == callbackCancel {
		return b.cancel(ctx, ev, true)
	}

	namespace, payload, ok := strings.Cut(ev.Callback, "|")
	if !ok {
		b.logger.Debug("Ignoring malformed callback", "data", ev.Callback)
		return nil
	}

	switch namespace {
	case nsGuidedCategory:
		return b.guidedCategory(ctx, ev, payload)
	case nsGuidedPayment:
		return b.guidedPayment(ctx, ev, payload)
	case nsQuickCategory:
		return b.quickCategory(ctx, ev, payload)
	case nsQuickPayment:
		return b.quickPayment(ctx, ev, payload)
	case nsRuleKind:
		return b.ruleKind(ctx, ev, payload)
	case nsRuleCategory:
		return b.ruleCategory(ctx, ev, payload)
	case nsRulePayment:
		return b.rulePayment(ctx, ev, payload)
	case nsRuleOff:
		return b.ruleDeactivate(ctx, ev, payload)
	default:
		b.logger.Debug("Ignoring unknown callback", "data", ev.Callback)
		return nil
	}
}

// handleText routes free text to whichever flow is waiting for it. With no
// active session the quick entry trigger gets a shot at it.
func (b *Bot) handleText(ctx context.Context, ev Event) error {
	sess := b.sessions.get(ev.User)
	if sess == nil {
		return b.quickTrigger(ctx, ev)
	}

	switch sess.flow {
	case flowGuided:
		return b.guidedText(ctx, ev, sess)
	case flowQuick:
		return b.quickText(ctx, ev, sess)
	case flowRecurring:
		return b.ruleText(ctx, ev, sess)
	default:
		return b.quickTrigger(ctx, ev)
	}
}

// handlePhoto routes a photo either to the guided description stage or to
// the quick flow. Photos sent at button-driven stages are ignored.
func (b *Bot) handlePhoto(ctx context.Context, ev Event) error {
	sess := b.sessions.get(ev.User)
	if sess != nil && sess.flow == flowGuided {
		if sess.stage == stageDescription {
			return b.guidedPhoto(ctx, ev, sess)
		}
		b.logger.Debug("Ignoring photo mid-flow", "user_id", ev.User, "stage", sess.stage)
		return nil
	}
	if sess != nil && sess.flow == flowRecurring {
		b.logger.Debug("Ignoring photo during rule setup", "user_id", ev.User)
		return nil
	}
	return b.quickPhoto(ctx, ev)
}

// cancel aborts whatever flow is active, cleaning up any stored photo
// that never made it into a committed entry.
func (b *Bot) cancel(ctx context.Context, ev Event, fromButton bool) error {
	b.discard(ctx, ev.User)
	if fromButton {
		return b.edit(ctx, ev, canceledText, nil)
	}
	return b.send(ctx, ev.User, canceledText, nil)
}

// discard drops the user's active draft and deletes its orphaned photo.
func (b *Bot) discard(ctx context.Context, userID int64) {
	sess := b.sessions.get(userID)
	if sess == nil {
		return
	}
	if ref := sess.draft.PhotoRef; ref != "" {
		if err := b.blobs.Delete(ctx, ref); err != nil {
			b.logger.Warn("Failed to delete abandoned photo", "ref", ref, "error", err)
		}
	}
	b.sessions.clear(userID)
}

func (b *Bot) send(ctx context.Context, userID int64, text string, keyboard [][]service.Button) error {
	if err := b.replier.Send(ctx, userID, text, keyboard); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (b *Bot) edit(ctx context.Context, ev Event, text string, keyboard [][]service.Button) error {
	if err := b.replier.Edit(ctx, ev.User, ev.MessageID, text, keyboard); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// errorReply maps an internal failure to the message the user sees.
// Errors the ledger marked for the user keep their message; everything
// else collapses to a generic retry prompt.
func errorReply(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return "⚠️ " + userErr.UserMessage + ". Intenta de nuevo."
	}
	return genericErrorText
}
