package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/money"
	"github.com/jmorales/gastosbot/internal/recurring"
)

// startRule opens the recurring-rule setup flow on the kind keyboard.
func (b *Bot) startRule(ctx context.Context, ev Event) error {
	b.discard(ctx, ev.User)
	b.sessions.begin(ev.User, flowRecurring, stageKind)
	return b.send(ctx, ev.User, renderRuleIntro(), kindKeyboard())
}

func (b *Bot) ruleKind(ctx context.Context, ev Event, payload string) error {
	sess := b.sessions.get(ev.User)
	if !sess.expects(flowRecurring, stageKind) {
		b.logger.Debug("Ignoring stale rule kind callback", "user_id", ev.User)
		return nil
	}

	switch payload {
	case "gasto":
		sess.draft.Kind = model.KindExpense
	case "ingreso":
		sess.draft.Kind = model.KindIncome
	default:
		b.logger.Debug("Ignoring unknown rule kind", "payload", payload)
		return nil
	}
	sess.stage = stageCategory

	categories, err := b.categoriesFor(ctx, ev.User, sess.draft.Kind)
	if err != nil {
		return err
	}
	return b.edit(ctx, ev, renderRuleAskCategory(), categoryKeyboard(categories, nsRuleCategory, true))
}

func (b *Bot) ruleCategory(ctx context.Context, ev Event, category string) error {
	sess := b.sessions.get(ev.User)
	if !sess.expects(flowRecurring, stageCategory) {
		b.logger.Debug("Ignoring stale rule category callback", "user_id", ev.User)
		return nil
	}

	sess.draft.Category = category
	sess.stage = stageAmount

	return b.edit(ctx, ev, renderRuleAskAmount(sess.draft.Kind, category), nil)
}

// ruleText feeds free text to the setup step waiting for it.
func (b *Bot) ruleText(ctx context.Context, ev Event, sess *session) error {
	switch sess.stage {
	case stageAmount:
		return b.ruleAmount(ctx, ev, sess)
	case stageDay:
		return b.ruleDay(ctx, ev, sess)
	case stageDescription:
		return b.ruleDescription(ctx, ev, sess)
	default:
		b.logger.Debug("Ignoring text at button stage", "user_id", ev.User, "stage", sess.stage)
		return nil
	}
}

func (b *Bot) ruleAmount(ctx context.Context, ev Event, sess *session) error {
	v, err := money.Parse(ev.Text)
	if err != nil {
		return b.send(ctx, ev.User, invalidAmountText, nil)
	}

	sess.draft.Amount = v
	sess.stage = stageDay

	return b.send(ctx, ev.User, askDayText, nil)
}

func (b *Bot) ruleDay(ctx context.Context, ev Event, sess *session) error {
	day, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if err != nil || day < 1 || day > model.MaxRuleDay {
		return b.send(ctx, ev.User, invalidDayText, nil)
	}

	sess.draft.DayOfMonth = day
	sess.stage = stagePayment

	keyboard := paymentKeyboard(nsRulePayment, model.GuidedPaymentMethods, "⏭️ Saltar")
	return b.send(ctx, ev.User, askPaymentText, keyboard)
}

func (b *Bot) rulePayment(ctx context.Context, ev Event, method string) error {
	sess := b.sessions.get(ev.User)
	if !sess.expects(flowRecurring, stagePayment) {
		b.logger.Debug("Ignoring stale rule payment callback", "user_id", ev.User)
		return nil
	}

	sess.draft.PaymentMethod = method
	sess.stage = stageDescription

	return b.edit(ctx, ev, askDescriptionText, nil)
}

func (b *Bot) ruleDescription(ctx context.Context, ev Event, sess *session) error {
	if !isSkipToken(ev.Text) {
		sess.draft.Description = strings.TrimSpace(ev.Text)
	}

	rule := sess.draft.Rule(ev.User)
	if err := b.store.CreateRule(ctx, rule); err != nil {
		wrapped := common.NewUserError("Error guardando el movimiento fijo", err)
		if sendErr := b.send(ctx, ev.User, errorReply(wrapped), nil); sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}
	b.sessions.clear(ev.User)

	return b.send(ctx, ev.User, renderRuleCreated(rule), nil)
}

// cmdRules lists active rules with a delete button per rule.
func (b *Bot) cmdRules(ctx context.Context, ev Event) error {
	rules, err := b.store.ActiveRules(ctx, ev.User)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	return b.send(ctx, ev.User, renderRules(rules), rulesKeyboard(rules))
}

// ruleDeactivate soft-deletes a rule and refreshes the listing in place.
// A second press on the same button finds the rule gone and simply
// re-renders the current state.
func (b *Bot) ruleDeactivate(ctx context.Context, ev Event, payload string) error {
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		b.logger.Debug("Ignoring malformed rule id", "payload", payload)
		return nil
	}

	err = b.store.DeactivateRule(ctx, id, ev.User)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}

	rules, err := b.store.ActiveRules(ctx, ev.User)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	return b.edit(ctx, ev, renderRules(rules), rulesKeyboard(rules))
}

// NotifyApplied messages each user whose recurring rules just posted.
// Delivery is best effort; a failed send never blocks the others.
func (b *Bot) NotifyApplied(ctx context.Context, applied []recurring.Applied) {
	byUser := make(map[int64][]model.Transaction)
	var order []int64
	for _, a := range applied {
		if _, seen := byUser[a.Rule.UserID]; !seen {
			order = append(order, a.Rule.UserID)
		}
		byUser[a.Rule.UserID] = append(byUser[a.Rule.UserID], a.Txn)
	}

	for _, userID := range order {
		if err := b.send(ctx, userID, renderApplied(byUser[userID]), nil); err != nil {
			b.logger.Warn("Failed to notify user of recurring postings",
				"user_id", userID,
				"error", err)
		}
	}
}
