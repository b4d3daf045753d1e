package bot

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/money"
)

// parseQuick splits a message into a leading amount and an inline
// description. ok is false when the first token is not a positive amount.
func parseQuick(text string) (decimal.Decimal, string, bool) {
	first, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	v, err := money.Parse(first)
	if err != nil {
		return decimal.Zero, "", false
	}
	return v, strings.TrimSpace(rest), true
}

// quickTrigger fires on plain text with no flow active. Messages that do
// not lead with an amount are somebody else's conversation; stay silent.
func (b *Bot) quickTrigger(ctx context.Context, ev Event) error {
	v, desc, ok := parseQuick(ev.Text)
	if !ok {
		return nil
	}

	sess := b.sessions.begin(ev.User, flowQuick, stageCategory)
	return b.quickAsk(ctx, ev, sess, v, desc)
}

// quickAsk (re)opens the quick category keyboard for the parsed amount.
// Re-triggering overwrites the amount and description but keeps any
// pending photo on the draft.
func (b *Bot) quickAsk(ctx context.Context, ev Event, sess *session, v decimal.Decimal, desc string) error {
	sess.draft.Kind = model.KindExpense
	sess.draft.Amount = v
	sess.draft.Description = desc
	sess.stage = stageCategory

	categories, err := b.categoriesFor(ctx, ev.User, model.KindExpense)
	if err != nil {
		return err
	}
	return b.send(ctx, ev.User, renderQuickIntro(v, desc), categoryKeyboard(categories, nsQuickCategory, false))
}

// quickText handles free text while a quick flow is open: a fresh leading
// number restarts it, anything else is chatter. A pending photo first
// gets a chance to claim the amount.
func (b *Bot) quickText(ctx context.Context, ev Event, sess *session) error {
	if sess.stage == stageAmount {
		return b.resolvePendingPhoto(ctx, ev, sess)
	}

	v, desc, ok := parseQuick(ev.Text)
	if !ok {
		b.logger.Debug("Ignoring chatter during quick flow", "user_id", ev.User)
		return nil
	}
	return b.quickAsk(ctx, ev, sess, v, desc)
}

// resolvePendingPhoto handles text while a stored photo waits for its
// amount: a number resumes the quick flow with the photo attached, a
// cancel word discards photo and draft, anything else is ignored.
func (b *Bot) resolvePendingPhoto(ctx context.Context, ev Event, sess *session) error {
	switch strings.ToLower(strings.TrimSpace(ev.Text)) {
	case "cancelar", "cancel", "no":
		b.discard(ctx, ev.User)
		return b.send(ctx, ev.User, canceledText, nil)
	}

	v, desc, ok := parseQuick(ev.Text)
	if !ok {
		b.logger.Debug("Ignoring text while photo pending", "user_id", ev.User)
		return nil
	}
	return b.quickAsk(ctx, ev, sess, v, desc)
}

// quickPhoto starts a quick entry from a photo. A caption that leads with
// an amount goes straight to the category keyboard; otherwise the photo
// is held and the user is asked for the amount.
func (b *Bot) quickPhoto(ctx context.Context, ev Event) error {
	// A replaced pending photo must not leave its blob behind.
	b.discard(ctx, ev.User)

	ref, err := b.blobs.Store(ctx, ev.User, ev.Photo)
	if err != nil {
		// Keep the flow alive; the entry just won't carry a photo.
		b.logger.Warn("Failed to store receipt photo", "user_id", ev.User, "error", err)
	}

	if v, desc, ok := parseQuick(ev.Text); ok {
		sess := b.sessions.begin(ev.User, flowQuick, stageCategory)
		sess.draft.PhotoRef = ref
		return b.quickAsk(ctx, ev, sess, v, desc)
	}

	sess := b.sessions.begin(ev.User, flowQuick, stageAmount)
	sess.draft.Kind = model.KindExpense
	sess.draft.PhotoRef = ref
	return b.send(ctx, ev.User, photoPendingText, nil)
}

func (b *Bot) quickCategory(ctx context.Context, ev Event, category string) error {
	sess := b.sessions.get(ev.User)
	if !sess.expects(flowQuick, stageCategory) {
		b.logger.Debug("Ignoring stale quick category callback", "user_id", ev.User)
		return nil
	}

	sess.draft.Category = category
	sess.stage = stagePayment

	keyboard := paymentKeyboard(nsQuickPayment, model.QuickPaymentMethods, "⏭️ Sin especificar")
	return b.edit(ctx, ev, renderQuickPayment(sess.draft.Amount, category), keyboard)
}

func (b *Bot) quickPayment(ctx context.Context, ev Event, method string) error {
	sess := b.sessions.get(ev.User)
	if !sess.expects(flowQuick, stagePayment) {
		b.logger.Debug("Ignoring stale quick payment callback", "user_id", ev.User)
		return nil
	}

	sess.draft.PaymentMethod = method

	text, err := b.commitDraft(ctx, ev, sess)
	if err != nil {
		return err
	}
	return b.edit(ctx, ev, text, nil)
}
