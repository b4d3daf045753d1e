package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/money"
)

// skipTokens end the description stage without a description.
var skipTokens = map[string]struct{}{
	"no":     {},
	"n":      {},
	"-":      {},
	"skip":   {},
	"omitir": {},
}

func isSkipToken(text string) bool {
	_, ok := skipTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// startGuided opens the step-by-step flow with the category keyboard.
// Any flow already in progress is discarded.
func (b *Bot) startGuided(ctx context.Context, ev Event, kind model.TransactionKind) error {
	b.discard(ctx, ev.User)

	categories, err := b.categoriesFor(ctx, ev.User, kind)
	if err != nil {
		return err
	}

	sess := b.sessions.begin(ev.User, flowGuided, stageCategory)
	sess.draft.Kind = kind

	return b.send(ctx, ev.User, renderGuidedIntro(kind), categoryKeyboard(categories, nsGuidedCategory, true))
}

// categoriesFor returns the user's catalog for the kind, seeding the
// defaults first when it is empty.
func (b *Bot) categoriesFor(ctx context.Context, userID int64, kind model.TransactionKind) ([]model.Category, error) {
	categories, err := b.store.Categories(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) > 0 {
		return categories, nil
	}

	if err := b.store.SeedDefaultCategories(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}
	categories, err = b.store.Categories(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (b *Bot) guidedCategory(ctx context.Context, ev Event, category string) error {
	sess := b.sessions.get(ev.User)
	if !sess.expects(flowGuided, stageCategory) {
		b.logger.Debug("Ignoring stale category callback", "user_id", ev.User)
		return nil
	}

	sess.draft.Category = category
	sess.stage = stageAmount

	return b.edit(ctx, ev, renderAskAmount(sess.draft.Kind, category), nil)
}

// guidedText feeds free text to the stage waiting for it. Stages driven
// by buttons ignore text entirely.
func (b *Bot) guidedText(ctx context.Context, ev Event, sess *session) error {
	switch sess.stage {
	case stageAmount:
		return b.guidedAmount(ctx, ev, sess)
	case stageDescription:
		return b.guidedDescription(ctx, ev, sess)
	default:
		b.logger.Debug("Ignoring text at button stage", "user_id", ev.User, "stage", sess.stage)
		return nil
	}
}

func (b *Bot) guidedAmount(ctx context.Context, ev Event, sess *session) error {
	v, err := money.Parse(ev.Text)
	if err != nil {
		return b.send(ctx, ev.User, invalidAmountText, nil)
	}

	sess.draft.Amount = v
	sess.stage = stagePayment

	keyboard := paymentKeyboard(nsGuidedPayment, model.GuidedPaymentMethods, "⏭️ Saltar")
	return b.send(ctx, ev.User, renderAskPayment(v), keyboard)
}

func (b *Bot) guidedPayment(ctx context.Context, ev Event, method string) error {
	sess := b.sessions.get(ev.User)
	if !sess.expects(flowGuided, stagePayment) {
		b.logger.Debug("Ignoring stale payment callback", "user_id", ev.User)
		return nil
	}

	sess.draft.PaymentMethod = method
	sess.stage = stageDescription

	return b.edit(ctx, ev, askDescriptionText, nil)
}

func (b *Bot) guidedDescription(ctx context.Context, ev Event, sess *session) error {
	if !isSkipToken(ev.Text) {
		sess.draft.Description = strings.TrimSpace(ev.Text)
	}

	text, err := b.commitDraft(ctx, ev, sess)
	if err != nil {
		return err
	}
	return b.send(ctx, ev.User, text, nil)
}

// guidedPhoto closes the flow with a receipt photo: the caption becomes
// the description and the stored blob rides along on the entry.
func (b *Bot) guidedPhoto(ctx context.Context, ev Event, sess *session) error {
	ref, err := b.blobs.Store(ctx, ev.User, ev.Photo)
	if err != nil {
		// The entry is worth more than the receipt; commit without it.
		b.logger.Warn("Failed to store receipt photo", "user_id", ev.User, "error", err)
	} else {
		sess.draft.PhotoRef = ref
	}
	sess.draft.Description = strings.TrimSpace(ev.Text)

	text, err := b.commitDraft(ctx, ev, sess)
	if err != nil {
		return err
	}
	return b.send(ctx, ev.User, text, nil)
}

// commitDraft commits the session's draft and renders the confirmation.
// The session survives a failed commit so the user can retry the step.
func (b *Bot) commitDraft(ctx context.Context, ev Event, sess *session) (string, error) {
	txn := sess.draft.Transaction(ev.User)
	if err := b.ledger.Commit(ctx, txn); err != nil {
		if sendErr := b.send(ctx, ev.User, errorReply(err), nil); sendErr != nil {
			return "", sendErr
		}
		return "", fmt.Errorf("failed to commit draft: %w", err)
	}
	b.sessions.clear(ev.User)

	today := decimal.Zero
	if txn.Kind == model.KindExpense {
		var err error
		today, err = b.ledger.TotalOn(ctx, ev.User, model.KindExpense, b.clock())
		if err != nil {
			// Already committed; the confirmation just loses its total.
			b.logger.Warn("Failed to load today's total", "user_id", ev.User, "error", err)
		}
	}

	return renderCommitted(txn, today), nil
}
