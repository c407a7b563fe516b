package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outlay/internal/core"
)

// BudgetService tracks planned spend per category and month and derives
// utilization from the ledger.
type BudgetService struct {
	store      BudgetStore
	categories CategoryStore
	audit      AuditLogger
}

func NewBudgetService(store BudgetStore, categories CategoryStore, audit AuditLogger) *BudgetService {
	return &BudgetService{
		store:      store,
		categories: categories,
		audit:      orNopAudit(audit),
	}
}

// Create records a planned amount for a category and month. Creating a
// second budget for the same pair fails with ErrDuplicateBudget; revisions
// go through UpdatePlanned.
func (s *BudgetService) Create(ctx context.Context, actor string, categoryID int64, month time.Time, planned core.Money) (core.Budget, error) {
	b := core.Budget{
		CategoryID: categoryID,
		Month:      core.MonthOf(month),
		Planned:    planned,
		CreatedBy:  actor,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.categories.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Budget{}, core.ErrInvalidCategory
		}
		return core.Budget{}, err
	}

	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.audit.Record(ctx, actor, "budget.created", map[string]any{
		"budget_id":   created.ID,
		"category_id": categoryID,
		"month":       created.Month.ISO(),
		"planned":     planned.String(),
	})
	return created, nil
}

// UpdatePlanned revises an existing budget's planned amount.
func (s *BudgetService) UpdatePlanned(ctx context.Context, actor string, id int64, planned core.Money) error {
	if err := planned.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateBudgetAmount(ctx, id, planned); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "budget.updated", map[string]any{
		"budget_id": id,
		"planned":   planned.String(),
	})
	return nil
}

// Delete removes a budget. Months that already have recorded actuals are
// refused unless the caller passes force, so displayed totals are not
// orphaned by accident.
func (s *BudgetService) Delete(ctx context.Context, actor string, id int64, force bool) error {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return err
	}
	if !force {
		actual, err := s.store.MonthActual(ctx, b.CategoryID, b.Month)
		if err != nil {
			return err
		}
		if actual.Cents > 0 {
			return fmt.Errorf("budget %d has recorded actuals: %w", id, core.ErrBlockedDeletion)
		}
	}
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "budget.deleted", map[string]any{"budget_id": id})
	return nil
}

// Utilization compares a budget's plan against the ledger's approved+paid
// spend for its month.
func (s *BudgetService) Utilization(ctx context.Context, id int64) (core.Utilization, error) {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Utilization{}, err
	}
	actual, err := s.store.MonthActual(ctx, b.CategoryID, b.Month)
	if err != nil {
		return core.Utilization{}, err
	}
	return core.ComputeUtilization(b.Planned, actual), nil
}

// CategorySummary reports all active categories' spend for a month against
// explicit budgets, falling back to category defaults.
func (s *BudgetService) CategorySummary(ctx context.Context, month time.Time) ([]core.CategorySummaryRow, error) {
	return s.store.CategorySummary(ctx, core.MonthOf(month))
}
