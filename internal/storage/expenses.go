package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outlay/internal/core"
)

const expenseColumns = `id, expense_number, category_id, description, amount_cents,
	payment_method, payment_date, vendor_name, vendor_contact, receipt_number,
	receipt_ref, notes, status, created_by, approved_by, approved_at, paid_by,
	paid_at, rule_id, period_key, created_at, updated_at`

// appendNoteSQL appends one line to the append-only notes column. The note
// text must be bound twice.
const appendNoteSQL = `CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                    core.Expense
		payDate              string
		approvedBy, paidBy   sql.NullString
		approvedAt, paidAt   sql.NullString
		ruleID               sql.NullInt64
		periodKey            sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&e.ID, &e.Number, &e.CategoryID, &e.Description, &e.Amount.Cents,
		&e.PaymentMethod, &payDate, &e.VendorName, &e.VendorContact, &e.ReceiptNumber,
		&e.ReceiptRef, &e.Notes, &e.Status, &e.CreatedBy, &approvedBy, &approvedAt,
		&paidBy, &paidAt, &ruleID, &periodKey, &createdAt, &updatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.PaymentDate, _ = core.ParseDate(payDate)
	e.ApprovedBy = nullStr(approvedBy)
	e.ApprovedAt = nullTime(approvedAt)
	e.PaidBy = nullStr(paidBy)
	e.PaidAt = nullTime(paidAt)
	if ruleID.Valid {
		e.RuleID = &ruleID.Int64
	}
	e.PeriodKey = nullStr(periodKey)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

// CreateExpense inserts a new ledger row. The caller is responsible for
// validation and for assigning the expense number.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	now := formatTime(time.Now())
	var ruleID any
	if e.RuleID != nil {
		ruleID = *e.RuleID
	}
	var periodKey any
	if e.PeriodKey != "" {
		periodKey = e.PeriodKey
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (expense_number, category_id, description, amount_cents,
			payment_method, payment_date, vendor_name, vendor_contact, receipt_number,
			receipt_ref, notes, status, created_by, rule_id, period_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Number, e.CategoryID, e.Description, e.Amount.Cents,
		string(e.PaymentMethod), e.PaymentDate.ISO(), e.VendorName, e.VendorContact,
		e.ReceiptNumber, e.ReceiptRef, e.Notes, string(core.StatusPending), e.CreatedBy,
		ruleID, periodKey, now, now)
	if err != nil {
		if isUniqueViolation(err, "expenses.expense_number") {
			return core.Expense{}, fmt.Errorf("expense number %s: %w", e.Number, core.ErrStorageConflict)
		}
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	return r.GetExpense(ctx, id)
}

func (r *Repository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ExpenseFilter narrows expense listings and rollups. Zero values mean
// "no constraint".
type ExpenseFilter struct {
	From       core.Date
	To         core.Date
	CategoryID int64
	Status     core.Status
}

func (f ExpenseFilter) clauses() (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if !f.From.IsZero() {
		where += " AND payment_date >= ?"
		args = append(args, f.From.ISO())
	}
	if !f.To.IsZero() {
		where += " AND payment_date <= ?"
		args = append(args, f.To.ISO())
	}
	if f.CategoryID > 0 {
		where += " AND category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, string(f.Status))
	}
	return where, args
}

func (r *Repository) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	where, args := f.clauses()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses`+where+` ORDER BY payment_date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApproveExpense moves a pending expense to approved. The WHERE clause is
// the compare-and-swap; zero affected rows is resolved to ErrNotFound or
// ErrInvalidTransition, never swallowed.
func (r *Repository) ApproveExpense(ctx context.Context, id int64, actor string, now time.Time) error {
	note := "approved by " + actor
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET status = ?, approved_by = ?, approved_at = ?, notes = `+appendNoteSQL+`, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(core.StatusApproved), actor, formatTime(now), note, note, formatTime(now),
		id, string(core.StatusPending))
	if err != nil {
		return fmt.Errorf("approve expense: %w", err)
	}
	return r.checkTransition(ctx, res, id, "approve")
}

// RejectExpense moves a pending expense to rejected. The deciding actor is
// recorded in the approval columns.
func (r *Repository) RejectExpense(ctx context.Context, id int64, actor, reason string, now time.Time) error {
	note := "rejected by " + actor + ": " + reason
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET status = ?, approved_by = ?, approved_at = ?, notes = `+appendNoteSQL+`, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(core.StatusRejected), actor, formatTime(now), note, note, formatTime(now),
		id, string(core.StatusPending))
	if err != nil {
		return fmt.Errorf("reject expense: %w", err)
	}
	return r.checkTransition(ctx, res, id, "reject")
}

// MarkExpensePaid moves an approved expense to paid.
func (r *Repository) MarkExpensePaid(ctx context.Context, id int64, actor string, now time.Time) error {
	note := "paid by " + actor
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET status = ?, paid_by = ?, paid_at = ?, notes = `+appendNoteSQL+`, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(core.StatusPaid), actor, formatTime(now), note, note, formatTime(now),
		id, string(core.StatusApproved))
	if err != nil {
		return fmt.Errorf("mark expense paid: %w", err)
	}
	return r.checkTransition(ctx, res, id, "mark_paid")
}

// CancelExpense cancels a pending or approved expense.
func (r *Repository) CancelExpense(ctx context.Context, id int64, actor, reason string, now time.Time) error {
	note := "cancelled by " + actor + ": " + reason
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET status = ?, notes = `+appendNoteSQL+`, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		string(core.StatusCancelled), note, note, formatTime(now),
		id, string(core.StatusPending), string(core.StatusApproved))
	if err != nil {
		return fmt.Errorf("cancel expense: %w", err)
	}
	return r.checkTransition(ctx, res, id, "cancel")
}

// UpdateExpense rewrites the editable fields of a pending or approved
// expense. Status, actor stamps and the expense number are untouched.
func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET category_id = ?, description = ?, amount_cents = ?, payment_method = ?,
			payment_date = ?, vendor_name = ?, vendor_contact = ?, receipt_number = ?,
			receipt_ref = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		e.CategoryID, e.Description, e.Amount.Cents, string(e.PaymentMethod),
		e.PaymentDate.ISO(), e.VendorName, e.VendorContact, e.ReceiptNumber,
		e.ReceiptRef, formatTime(now),
		e.ID, string(core.StatusPending), string(core.StatusApproved))
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return r.checkTransition(ctx, res, e.ID, "edit")
}

// DeleteExpense hard-deletes an expense still in a deletable status.
func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM expenses WHERE id = ? AND status IN (?, ?, ?)`,
		id, string(core.StatusPending), string(core.StatusCancelled), string(core.StatusRejected))
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetExpense(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("expense %d not in a deletable status: %w", id, core.ErrBlockedDeletion)
}

func (r *Repository) checkTransition(ctx context.Context, res sql.Result, id int64, command string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM expenses WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read status after failed transition: %w", err)
	}
	return fmt.Errorf("%w: cannot %s expense %d in status %s", core.ErrInvalidTransition, command, id, status)
}
