package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/common"
	"github.com/jmorales/gastosbot/internal/model"
)

const ruleColumns = `id, user_id, kind, category, amount, description, payment_method, day_of_month, active, last_applied`

func scanRule(row rowScanner) (*model.RecurringRule, error) {
	var rule model.RecurringRule
	var kind string
	var amount float64

	if err := row.Scan(
		&rule.ID,
		&rule.UserID,
		&kind,
		&rule.Category,
		&amount,
		&rule.Description,
		&rule.PaymentMethod,
		&rule.DayOfMonth,
		&rule.Active,
		&rule.LastApplied,
	); err != nil {
		return nil, err
	}

	rule.Kind = model.TransactionKind(kind)
	rule.Amount = decimal.NewFromFloat(amount)
	return &rule, nil
}

// CreateRule inserts a recurring rule and sets its ID.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.RecurringRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	if rule.PaymentMethod == "" {
		rule.PaymentMethod = model.DefaultPaymentMethod
	}
	rule.Active = true

	amount, _ := rule.Amount.Float64()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_rules (user_id, kind, category, amount, description, payment_method, day_of_month, active, last_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
	`, rule.UserID, string(rule.Kind), rule.Category, amount, rule.Description, rule.PaymentMethod, rule.DayOfMonth, rule.LastApplied)
	if err != nil {
		return fmt.Errorf("failed to insert recurring rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}
	rule.ID = id

	slog.Info("Created recurring rule",
		"id", rule.ID,
		"user_id", rule.UserID,
		"category", rule.Category,
		"day_of_month", rule.DayOfMonth)

	return nil
}

// ActiveRules returns a user's active rules ordered by trigger day.
func (s *SQLiteStorage) ActiveRules(ctx context.Context, userID int64) ([]model.RecurringRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM recurring_rules
		WHERE user_id = ? AND active = 1
		ORDER BY day_of_month ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rules, err := collectRules(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieved active rules", "user_id", userID, "count", len(rules))
	return rules, nil
}

// DueRules returns every active rule across users that triggers on the
// given day and has not been applied for the given month stamp.
func (s *SQLiteStorage) DueRules(ctx context.Context, day int, monthStamp string) ([]model.RecurringRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: day %d outside 1-31", ErrInvalidRule, day)
	}
	if err := validateString(monthStamp, "monthStamp"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM recurring_rules
		WHERE day_of_month = ? AND active = 1 AND last_applied != ?
		ORDER BY user_id ASC, id ASC
	`, day, monthStamp)
	if err != nil {
		return nil, fmt.Errorf("failed to query due rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRules(rows)
}

// MarkRuleApplied stamps the month a rule last materialized, making a
// second run in the same month a no-op.
func (s *SQLiteStorage) MarkRuleApplied(ctx context.Context, id int64, monthStamp string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateString(monthStamp, "monthStamp"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE recurring_rules SET last_applied = ? WHERE id = ?
	`, monthStamp, id)
	if err != nil {
		return fmt.Errorf("failed to mark rule applied: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}

	slog.Info("Marked rule applied", "id", id, "month", monthStamp)
	return nil
}

// DeactivateRule soft-deletes a rule owned by the given user.
func (s *SQLiteStorage) DeactivateRule(ctx context.Context, id, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE recurring_rules SET active = 0 WHERE id = ? AND user_id = ? AND active = 1
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}

	slog.Info("Deactivated recurring rule", "id", id, "user_id", userID)
	return nil
}

func collectRules(rows *sql.Rows) ([]model.RecurringRule, error) {
	var rules []model.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return rules, nil
}
