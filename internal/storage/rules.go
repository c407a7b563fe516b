package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
)

const ruleColumns = `id, deduction_type, percentage, description, destination_account,
	is_active, auto_generate, last_calculated_period, cumulative_deducted_cents,
	created_at, updated_at`

func scanRule(row rowScanner) (core.DeductionRule, error) {
	var (
		r                    core.DeductionRule
		pct                  string
		active, auto         int64
		lastPeriod           sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&r.ID, &r.Type, &pct, &r.Description, &r.DestinationAccount,
		&active, &auto, &lastPeriod, &r.CumulativeDeducted.Cents, &createdAt, &updatedAt)
	if err != nil {
		return core.DeductionRule{}, err
	}
	r.Percentage, err = decimal.NewFromString(pct)
	if err != nil {
		return core.DeductionRule{}, fmt.Errorf("stored percentage %q: %w", pct, err)
	}
	r.IsActive = active != 0
	r.AutoGenerate = auto != 0
	r.LastCalculatedPeriod = nullStr(lastPeriod)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func (r *Repository) CreateRule(ctx context.Context, rule core.DeductionRule) (core.DeductionRule, error) {
	now := formatTime(time.Now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO deduction_rules (deduction_type, percentage, description,
			destination_account, is_active, auto_generate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rule.Type), rule.Percentage.String(), rule.Description,
		rule.DestinationAccount, boolInt(rule.IsActive), boolInt(rule.AutoGenerate), now, now)
	if err != nil {
		return core.DeductionRule{}, fmt.Errorf("insert rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.DeductionRule{}, fmt.Errorf("rule insert id: %w", err)
	}
	return r.GetRule(ctx, id)
}

func (r *Repository) GetRule(ctx context.Context, id int64) (core.DeductionRule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM deduction_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DeductionRule{}, fmt.Errorf("rule %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.DeductionRule{}, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
}

func (r *Repository) UpdateRule(ctx context.Context, rule core.DeductionRule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE deduction_rules
		SET deduction_type = ?, percentage = ?, description = ?, destination_account = ?,
			is_active = ?, auto_generate = ?, updated_at = ?
		WHERE id = ?`,
		string(rule.Type), rule.Percentage.String(), rule.Description,
		rule.DestinationAccount, boolInt(rule.IsActive), boolInt(rule.AutoGenerate),
		formatTime(time.Now()), rule.ID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return rowsOrNotFound(res, "rule", rule.ID)
}

// DeleteRule removes a rule no generated expense points at.
func (r *Repository) DeleteRule(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM deduction_rules
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM expenses WHERE rule_id = ?)`,
		id, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetRule(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("rule %d has generated expenses: %w", id, core.ErrBlockedDeletion)
}

func (r *Repository) ListRules(ctx context.Context) ([]core.DeductionRule, error) {
	return r.listRules(ctx, `SELECT `+ruleColumns+` FROM deduction_rules ORDER BY id`)
}

// ListAutoRules returns the active rules eligible for automatic generation.
func (r *Repository) ListAutoRules(ctx context.Context) ([]core.DeductionRule, error) {
	return r.listRules(ctx, `SELECT `+ruleColumns+` FROM deduction_rules
		WHERE is_active = 1 AND auto_generate = 1 ORDER BY id`)
}

func (r *Repository) listRules(ctx context.Context, q string) ([]core.DeductionRule, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []core.DeductionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// GenerateDeduction inserts a rule's expense for a period and advances the
// rule's bookkeeping in one transaction. The period check is re-verified
// inside the transaction and the (rule_id, period_key) unique index backs it
// up, so two racing calculate() calls commit at most one expense. Returns
// created=false when another caller already generated for this period.
func (r *Repository) GenerateDeduction(ctx context.Context, ruleID int64, periodKey string, e core.Expense) (core.Expense, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("begin deduction tx: %w", err)
	}
	defer tx.Rollback()

	var lastPeriod sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT last_calculated_period FROM deduction_rules WHERE id = ?`, ruleID).
		Scan(&lastPeriod)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, false, fmt.Errorf("rule %d: %w", ruleID, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("recheck rule period: %w", err)
	}
	if lastPeriod.Valid && lastPeriod.String == periodKey {
		return core.Expense{}, false, nil
	}

	now := formatTime(time.Now())
	res, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (expense_number, category_id, description, amount_cents,
			payment_method, payment_date, notes, status, created_by, rule_id, period_key,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Number, e.CategoryID, e.Description, e.Amount.Cents,
		string(e.PaymentMethod), e.PaymentDate.ISO(), e.Notes,
		string(core.StatusPending), e.CreatedBy, ruleID, periodKey, now, now)
	if err != nil {
		if isUniqueViolation(err, "expenses.rule_id") {
			return core.Expense{}, false, nil
		}
		return core.Expense{}, false, fmt.Errorf("insert generated expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("generated expense id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE deduction_rules
		SET last_calculated_period = ?,
			cumulative_deducted_cents = cumulative_deducted_cents + ?,
			updated_at = ?
		WHERE id = ?`,
		periodKey, e.Amount.Cents, now, ruleID)
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("advance rule period: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, false, fmt.Errorf("commit deduction: %w", err)
	}

	out, err := r.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, false, err
	}
	return out, true, nil
}
