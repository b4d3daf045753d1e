// Package recurring materializes monthly fixed transactions from their
// rules. The engine runs once a day; the month stamp on each rule makes
// reruns within the same month harmless.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/service"
)

// Committer is the slice of the ledger the engine needs.
type Committer interface {
	Commit(ctx context.Context, txn *model.Transaction) error
}

// Applied reports one materialized rule.
type Applied struct {
	Rule model.RecurringRule
	Txn  model.Transaction
}

// Engine posts due recurring rules to the ledger.
type Engine struct {
	store     service.Storage
	committer Committer
	logger    *slog.Logger
}

// NewEngine creates an engine over the given storage and ledger.
func NewEngine(store service.Storage, committer Committer, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		committer: committer,
		logger:    logger,
	}
}

// ApplyDue posts every rule due at the given time and stamps it for the
// month. A rule that fails to post is left unstamped so a rerun on the
// same day picks it up again; other rules are unaffected.
func (e *Engine) ApplyDue(ctx context.Context, now time.Time) ([]Applied, error) {
	stamp := model.MonthStamp(now)

	rules, err := e.store.DueRules(ctx, now.Day(), stamp)
	if err != nil {
		return nil, fmt.Errorf("failed to load due rules: %w", err)
	}
	if len(rules) == 0 {
		e.logger.Debug("No recurring rules due", "day", now.Day(), "month", stamp)
		return nil, nil
	}

	var applied []Applied
	for _, rule := range rules {
		txn := rule.Materialize(now)
		if err := e.committer.Commit(ctx, &txn); err != nil {
			e.logger.Error("Failed to post recurring rule",
				"rule_id", rule.ID,
				"user_id", rule.UserID,
				"category", rule.Category,
				"error", err)
			continue
		}

		if err := e.store.MarkRuleApplied(ctx, rule.ID, stamp); err != nil {
			// The transaction is committed; without the stamp a rerun
			// today would post it twice.
			e.logger.Error("Failed to stamp recurring rule",
				"rule_id", rule.ID,
				"month", stamp,
				"error", err)
			continue
		}

		applied = append(applied, Applied{Rule: rule, Txn: txn})
	}

	e.logger.Info("Applied recurring rules",
		"due", len(rules),
		"posted", len(applied),
		"month", stamp)

	return applied, nil
}
