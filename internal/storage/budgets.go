package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outlay/internal/core"
)

const budgetColumns = `id, category_id, month, planned_cents, created_by, created_at, updated_at`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                    core.Budget
		month                string
		createdAt, updatedAt string
	)
	err := row.Scan(&b.ID, &b.CategoryID, &month, &b.Planned.Cents, &b.CreatedBy,
		&createdAt, &updatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	b.Month, _ = core.ParseDate(month)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

// CreateBudget inserts a budget row. The (category, month) unique constraint
// turns concurrent duplicate creates into ErrDuplicateBudget.
func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := formatTime(time.Now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category_id, month, planned_cents, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.CategoryID, b.Month.ISO(), b.Planned.Cents, b.CreatedBy, now, now)
	if err != nil {
		if isUniqueViolation(err, "budgets.category_id") {
			return core.Budget{}, fmt.Errorf("category %d month %s: %w",
				b.CategoryID, b.Month.ISO(), core.ErrDuplicateBudget)
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	return r.GetBudget(ctx, id)
}

func (r *Repository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// UpdateBudgetAmount revises the planned amount of an existing budget.
func (r *Repository) UpdateBudgetAmount(ctx context.Context, id int64, planned core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET planned_cents = ?, updated_at = ? WHERE id = ?`,
		planned.Cents, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return rowsOrNotFound(res, "budget", id)
}

func (r *Repository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return rowsOrNotFound(res, "budget", id)
}

func (r *Repository) ListBudgets(ctx context.Context, month core.Date) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE month = ? ORDER BY category_id`,
		month.ISO())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MonthActual sums approved and paid expenses for a category in the month
// containing the given date. Always computed fresh from the ledger, never
// cached, so budget utilization cannot go stale.
func (r *Repository) MonthActual(ctx context.Context, categoryID int64, month core.Date) (core.Money, error) {
	start := core.NewDate(month.Year(), int(month.Time.Month()), 1)
	next := core.Date{Time: start.AddDate(0, 1, 0)}
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE category_id = ? AND status IN (?, ?)
		  AND payment_date >= ? AND payment_date < ?`,
		categoryID, string(core.StatusApproved), string(core.StatusPaid),
		start.ISO(), next.ISO()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("month actual: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
