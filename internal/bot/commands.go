package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/model"
)

// handleCommand dispatches slash commands. Info commands leave any active
// flow untouched; the flow starters and cancel replace or end it.
func (b *Bot) handleCommand(ctx context.Context, ev Event) error {
	switch ev.Command {
	case "start":
		return b.cmdStart(ctx, ev)
	case "help":
		return b.send(ctx, ev.User, renderHelp(), nil)
	case "gasto":
		return b.startGuided(ctx, ev, model.KindExpense)
	case "ingreso":
		return b.startGuided(ctx, ev, model.KindIncome)
	case "resumen":
		return b.cmdSummary(ctx, ev)
	case "hoy":
		return b.cmdToday(ctx, ev)
	case "recientes":
		return b.cmdRecent(ctx, ev)
	case "borrar":
		return b.cmdDeleteLast(ctx, ev)
	case "fijo":
		return b.startRule(ctx, ev)
	case "fijos":
		return b.cmdRules(ctx, ev)
	case "cancel", "cancelar":
		return b.cancel(ctx, ev, false)
	default:
		b.logger.Debug("Ignoring unknown command", "command", ev.Command)
		return nil
	}
}

// cmdStart seeds the user's catalogs and greets with the month so far.
func (b *Bot) cmdStart(ctx context.Context, ev Event) error {
	if err := b.store.SeedDefaultCategories(ctx, ev.User); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	now := b.clock()
	summary, err := b.ledger.MonthSummary(ctx, ev.User, now)
	if err != nil {
		return fmt.Errorf("failed to load month summary: %w", err)
	}
	today, err := b.ledger.TotalOn(ctx, ev.User, model.KindExpense, now)
	if err != nil {
		return fmt.Errorf("failed to load today's total: %w", err)
	}

	return b.send(ctx, ev.User, renderStart(ev.FirstName, summary, today), nil)
}

func (b *Bot) cmdSummary(ctx context.Context, ev Event) error {
	now := b.clock()
	summary, err := b.ledger.MonthSummary(ctx, ev.User, now)
	if err != nil {
		return fmt.Errorf("failed to load month summary: %w", err)
	}
	breakdown, err := b.ledger.CategoryBreakdown(ctx, ev.User, now, 30)
	if err != nil {
		return fmt.Errorf("failed to load category breakdown: %w", err)
	}

	return b.send(ctx, ev.User, renderMonthSummary(summary, breakdown), nil)
}

func (b *Bot) cmdToday(ctx context.Context, ev Event) error {
	txns, err := b.ledger.ExpensesOn(ctx, ev.User, b.clock())
	if err != nil {
		return fmt.Errorf("failed to load today's expenses: %w", err)
	}

	total := decimal.Zero
	for i := range txns {
		total = total.Add(txns[i].Amount)
	}

	return b.send(ctx, ev.User, renderToday(txns, total), nil)
}

func (b *Bot) cmdRecent(ctx context.Context, ev Event) error {
	txns, err := b.ledger.Recent(ctx, ev.User, 10)
	if err != nil {
		return fmt.Errorf("failed to load recent transactions: %w", err)
	}
	return b.send(ctx, ev.User, renderRecent(txns), nil)
}

func (b *Bot) cmdDeleteLast(ctx context.Context, ev Event) error {
	txn, err := b.ledger.DeleteLast(ctx, ev.User)
	if errors.Is(err, common.ErrNotFound) {
		return b.send(ctx, ev.User, nothingToDeleteText, nil)
	}
	if err != nil {
		if sendErr := b.send(ctx, ev.User, errorReply(err), nil); sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("failed to delete last transaction: %w", err)
	}

	return b.send(ctx, ev.User, renderDeleted(txn), nil)
}
