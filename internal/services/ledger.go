package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"outlay/internal/core"
	"outlay/internal/storage"
)

// LedgerService owns the expense lifecycle: creation, the approval state
// machine and deletion.
type LedgerService struct {
	store      ExpenseStore
	categories CategoryStore
	audit      AuditLogger
	now        func() time.Time
}

func NewLedgerService(store ExpenseStore, categories CategoryStore, audit AuditLogger) *LedgerService {
	return &LedgerService{
		store:      store,
		categories: categories,
		audit:      orNopAudit(audit),
		now:        time.Now,
	}
}

// ExpenseInput carries the caller-supplied fields for creating or editing
// an expense.
type ExpenseInput struct {
	CategoryID    int64
	Description   string
	Amount        core.Money
	PaymentMethod core.PaymentMethod
	PaymentDate   core.Date
	VendorName    string
	VendorContact string
	ReceiptNumber string
	ReceiptRef    string
	Notes         string
}

// Create validates the input, assigns a fresh expense number and records
// the expense as pending.
func (s *LedgerService) Create(ctx context.Context, actor string, in ExpenseInput) (core.Expense, error) {
	e := core.Expense{
		Number:        newExpenseNumber(s.now()),
		CategoryID:    in.CategoryID,
		Description:   strings.TrimSpace(in.Description),
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		PaymentDate:   in.PaymentDate,
		VendorName:    in.VendorName,
		VendorContact: in.VendorContact,
		ReceiptNumber: in.ReceiptNumber,
		ReceiptRef:    in.ReceiptRef,
		Notes:         in.Notes,
		Status:        core.StatusPending,
		CreatedBy:     actor,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.requireActiveCategory(ctx, in.CategoryID); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.audit.Record(ctx, actor, "expense.created", map[string]any{
		"expense_id": created.ID,
		"number":     created.Number,
		"amount":     created.Amount.String(),
	})
	return created, nil
}

// Approve moves a pending expense to approved.
func (s *LedgerService) Approve(ctx context.Context, id int64, actor string) error {
	if err := s.store.ApproveExpense(ctx, id, actor, s.now()); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "expense.approved", map[string]any{"expense_id": id})
	return nil
}

// Reject declines a pending expense. A reason is mandatory.
func (s *LedgerService) Reject(ctx context.Context, id int64, actor, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return core.ErrReasonRequired
	}
	if err := s.store.RejectExpense(ctx, id, actor, reason, s.now()); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "expense.rejected", map[string]any{
		"expense_id": id,
		"reason":     reason,
	})
	return nil
}

// MarkPaid settles an approved expense.
func (s *LedgerService) MarkPaid(ctx context.Context, id int64, actor string) error {
	if err := s.store.MarkExpensePaid(ctx, id, actor, s.now()); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "expense.paid", map[string]any{"expense_id": id})
	return nil
}

// Cancel withdraws a pending or approved expense. A reason is mandatory.
func (s *LedgerService) Cancel(ctx context.Context, id int64, actor, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return core.ErrReasonRequired
	}
	if err := s.store.CancelExpense(ctx, id, actor, reason, s.now()); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "expense.cancelled", map[string]any{
		"expense_id": id,
		"reason":     reason,
	})
	return nil
}

// Update rewrites the editable fields of a pending or approved expense.
func (s *LedgerService) Update(ctx context.Context, id int64, actor string, in ExpenseInput) error {
	e := core.Expense{
		ID:            id,
		CategoryID:    in.CategoryID,
		Description:   strings.TrimSpace(in.Description),
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		PaymentDate:   in.PaymentDate,
		VendorName:    in.VendorName,
		VendorContact: in.VendorContact,
		ReceiptNumber: in.ReceiptNumber,
		ReceiptRef:    in.ReceiptRef,
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.requireActiveCategory(ctx, in.CategoryID); err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, e, s.now()); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "expense.updated", map[string]any{"expense_id": id})
	return nil
}

// Delete hard-removes an expense still in pending, cancelled or rejected.
func (s *LedgerService) Delete(ctx context.Context, id int64, actor string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "expense.deleted", map[string]any{"expense_id": id})
	return nil
}

func (s *LedgerService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *LedgerService) List(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, f)
}

func (s *LedgerService) requireActiveCategory(ctx context.Context, id int64) error {
	cat, err := s.categories.GetCategory(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrInvalidCategory
	}
	if err != nil {
		return err
	}
	if !cat.IsActive {
		return core.ErrInvalidCategory
	}
	return nil
}

// newExpenseNumber builds a globally unique expense number: a date stamp
// plus a random suffix, e.g. EXP-20260115-9F2C41AB.
func newExpenseNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("EXP-%s-%s", now.UTC().Format("20060102"), suffix)
}
