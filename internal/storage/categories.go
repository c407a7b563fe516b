package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outlay/internal/core"
)

const categoryColumns = `id, name, description, category_type, color,
	default_budget_cents, is_active, created_at, updated_at`

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c                    core.Category
		active               int64
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Type, &c.Color,
		&c.DefaultBudget.Cents, &active, &createdAt, &updatedAt)
	if err != nil {
		return core.Category{}, err
	}
	c.IsActive = active != 0
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := formatTime(time.Now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (name, description, category_type, color,
			default_budget_cents, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		c.Name, c.Description, string(c.Type), c.Color, c.DefaultBudget.Cents, now, now)
	if err != nil {
		if isUniqueViolation(err, "categories.name") {
			return core.Category{}, fmt.Errorf("category name %q: %w", c.Name, core.ErrStorageConflict)
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return r.GetCategory(ctx, id)
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, description = ?, category_type = ?, color = ?,
			default_budget_cents = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Description, string(c.Type), c.Color, c.DefaultBudget.Cents,
		formatTime(time.Now()), c.ID)
	if err != nil {
		if isUniqueViolation(err, "categories.name") {
			return fmt.Errorf("category name %q: %w", c.Name, core.ErrStorageConflict)
		}
		return fmt.Errorf("update category: %w", err)
	}
	return rowsOrNotFound(res, "category", c.ID)
}

// SetCategoryActive flips the active flag. Deactivation is the only way to
// retire a category that has expenses attached.
func (r *Repository) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolInt(active), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	return rowsOrNotFound(res, "category", id)
}

// DeleteCategory removes a category with no associated expenses. The
// reference count is checked inside the delete itself so a concurrent
// expense insert cannot slip between check and delete.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM categories
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM expenses WHERE category_id = ?)
		  AND NOT EXISTS (SELECT 1 FROM budgets WHERE category_id = ?)`,
		id, id, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetCategory(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("category %d has expenses or budgets: %w", id, core.ErrBlockedDeletion)
}

func (r *Repository) ListCategories(ctx context.Context, activeOnly bool) ([]core.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	rows, err := r.db.QueryContext(ctx, q+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// EnsureDeductionCategory returns the active category deductions of the
// given type post against, creating a dedicated one on first use.
func (r *Repository) EnsureDeductionCategory(ctx context.Context, t core.DeductionType) (core.Category, error) {
	ct := t.Category()
	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE category_type = ? AND is_active = 1
		ORDER BY id LIMIT 1`, string(ct))
	c, err := scanCategory(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("find deduction category: %w", err)
	}

	created, err := r.CreateCategory(ctx, core.Category{
		Name:        deductionCategoryName(t),
		Description: "Automatically generated " + string(t) + " deductions",
		Type:        ct,
	})
	if err == nil {
		return created, nil
	}
	if errors.Is(err, core.ErrStorageConflict) {
		// Lost a race with a concurrent calculate; the winner's row serves.
		row := r.db.QueryRowContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, deductionCategoryName(t))
		return scanCategory(row)
	}
	return core.Category{}, err
}

func deductionCategoryName(t core.DeductionType) string {
	switch t {
	case core.DeductTithe:
		return "Tithe"
	case core.DeductReserve:
		return "Reserve Fund"
	default:
		return "Other Deductions"
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func rowsOrNotFound(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	return nil
}
