package storage

import (
	"context"
	"fmt"
	"time"

	"outlay/internal/core"
)

// RangeTotals returns the amount and count of expenses matching the filter.
func (r *Repository) RangeTotals(ctx context.Context, f ExpenseFilter) (core.Totals, error) {
	where, args := f.clauses()
	var t core.Totals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM expenses`+where, args...).
		Scan(&t.Total.Cents, &t.Count)
	if err != nil {
		return core.Totals{}, fmt.Errorf("range totals: %w", err)
	}
	return t, nil
}

// RangeBreakdown groups a range's expenses by category. Percentages are
// filled in by the caller once the grand total is known.
func (r *Repository) RangeBreakdown(ctx context.Context, rng core.DateRange) ([]core.BreakdownRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(SUM(e.amount_cents), 0), COUNT(e.id)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.payment_date >= ? AND e.payment_date <= ?
		GROUP BY c.id, c.name
		ORDER BY SUM(e.amount_cents) DESC`,
		rng.From.ISO(), rng.To.ISO())
	if err != nil {
		return nil, fmt.Errorf("range breakdown: %w", err)
	}
	defer rows.Close()

	var out []core.BreakdownRow
	for rows.Next() {
		var row core.BreakdownRow
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.Total.Cents, &row.Count); err != nil {
			return nil, fmt.Errorf("scan breakdown row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MonthlyTrend returns one point per month for the last n months including
// the current one, counting approved and paid expenses only. Months with no
// spend appear as zero points.
func (r *Repository) MonthlyTrend(ctx context.Context, n int, now time.Time) ([]core.TrendPoint, error) {
	if n < 1 {
		n = 1
	}
	first := core.MonthOf(now).AddDate(0, -(n - 1), 0)
	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(payment_date, 1, 7), COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM expenses
		WHERE status IN (?, ?) AND payment_date >= ?
		GROUP BY substr(payment_date, 1, 7)`,
		string(core.StatusApproved), string(core.StatusPaid),
		first.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[string]core.TrendPoint)
	for rows.Next() {
		var (
			ym string
			p  core.TrendPoint
		)
		if err := rows.Scan(&ym, &p.Total.Cents, &p.Count); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		byMonth[ym] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]core.TrendPoint, 0, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, i, 0)
		p := byMonth[m.Format("2006-01")]
		p.Year = m.Year()
		p.Month = int(m.Month())
		out = append(out, p)
	}
	return out, nil
}

// CategorySummary reports every active category's month spend against its
// applicable budget: the explicit budget row if one exists, otherwise the
// category default.
func (r *Repository) CategorySummary(ctx context.Context, month core.Date) ([]core.CategorySummaryRow, error) {
	cats, err := r.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	budgets, err := r.ListBudgets(ctx, core.MonthOf(month.Time))
	if err != nil {
		return nil, err
	}
	byCategory := make(map[int64]core.Budget, len(budgets))
	for _, b := range budgets {
		byCategory[b.CategoryID] = b
	}

	out := make([]core.CategorySummaryRow, 0, len(cats))
	for _, c := range cats {
		actual, err := r.MonthActual(ctx, c.ID, month)
		if err != nil {
			return nil, err
		}
		row := core.CategorySummaryRow{Category: c, FromDefault: true}
		planned := c.DefaultBudget
		if b, ok := byCategory[c.ID]; ok {
			planned = b.Planned
			row.BudgetID = b.ID
			row.FromDefault = false
		}
		row.Utilization = core.ComputeUtilization(planned, actual)
		out = append(out, row)
	}
	return out, nil
}
