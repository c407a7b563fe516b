// Package services wires the domain operations together: the expense
// lifecycle, budget tracking, automated deductions and dashboard rollups.
// Every service receives its store and collaborators explicitly; there is
// no ambient shared state.
package services

import (
	"context"
	"time"

	"outlay/internal/core"
	"outlay/internal/storage"
)

// ExpenseStore is the slice of the repository the ledger service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error)
	ApproveExpense(ctx context.Context, id int64, actor string, now time.Time) error
	RejectExpense(ctx context.Context, id int64, actor, reason string, now time.Time) error
	MarkExpensePaid(ctx context.Context, id int64, actor string, now time.Time) error
	CancelExpense(ctx context.Context, id int64, actor, reason string, now time.Time) error
	UpdateExpense(ctx context.Context, e core.Expense, now time.Time) error
	DeleteExpense(ctx context.Context, id int64) error
}

// CategoryStore manages expense categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	SetCategoryActive(ctx context.Context, id int64, active bool) error
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context, activeOnly bool) ([]core.Category, error)
}

// BudgetStore manages budget rows and derived actuals.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	UpdateBudgetAmount(ctx context.Context, id int64, planned core.Money) error
	DeleteBudget(ctx context.Context, id int64) error
	ListBudgets(ctx context.Context, month core.Date) ([]core.Budget, error)
	MonthActual(ctx context.Context, categoryID int64, month core.Date) (core.Money, error)
	CategorySummary(ctx context.Context, month core.Date) ([]core.CategorySummaryRow, error)
}

// RuleStore manages deduction rules and the atomic generation step.
type RuleStore interface {
	CreateRule(ctx context.Context, rule core.DeductionRule) (core.DeductionRule, error)
	GetRule(ctx context.Context, id int64) (core.DeductionRule, error)
	UpdateRule(ctx context.Context, rule core.DeductionRule) error
	DeleteRule(ctx context.Context, id int64) error
	ListRules(ctx context.Context) ([]core.DeductionRule, error)
	ListAutoRules(ctx context.Context) ([]core.DeductionRule, error)
	EnsureDeductionCategory(ctx context.Context, t core.DeductionType) (core.Category, error)
	GenerateDeduction(ctx context.Context, ruleID int64, periodKey string, e core.Expense) (core.Expense, bool, error)
}

// ReportStore feeds the dashboard's read-only rollups.
type ReportStore interface {
	RangeTotals(ctx context.Context, f storage.ExpenseFilter) (core.Totals, error)
	RangeBreakdown(ctx context.Context, rng core.DateRange) ([]core.BreakdownRow, error)
	MonthlyTrend(ctx context.Context, n int, now time.Time) ([]core.TrendPoint, error)
}

// RevenueSource is the external revenue aggregator. Implementations must
// return a non-negative total for the inclusive range.
type RevenueSource interface {
	RevenueForPeriod(ctx context.Context, from, to core.Date) (core.Money, error)
}

// AuditLogger records successful mutations. Best-effort: implementations
// must not fail the mutation they describe.
type AuditLogger interface {
	Record(ctx context.Context, actor, kind string, details map[string]any)
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, string, string, map[string]any) {}

func orNopAudit(a AuditLogger) AuditLogger {
	if a == nil {
		return nopAudit{}
	}
	return a
}
