package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
	"outlay/internal/storage"
)

func janPeriod() core.Period {
	return core.Period{
		Kind: core.PeriodCustom,
		From: core.NewDate(2026, 1, 1),
		To:   core.NewDate(2026, 1, 31),
	}
}

func seedAutoRule(t *testing.T, repo *storage.Repository, typ core.DeductionType, pct int64) core.DeductionRule {
	t.Helper()
	rule, err := repo.CreateRule(context.Background(), core.DeductionRule{
		Type:         typ,
		Percentage:   decimal.NewFromInt(pct),
		IsActive:     true,
		AutoGenerate: true,
	})
	if err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	return rule
}

func TestDeductionCalculate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	audit := &recordingAudit{}
	rev := &stubRevenue{total: core.Money{Cents: 100000_00}}
	svc := NewDeductionService(repo, rev, audit)
	rule := seedAutoRule(t, repo, core.DeductTithe, 10)

	ids, err := svc.Calculate(ctx, "scheduler", janPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("generated %d expenses, want 1", len(ids))
	}

	e, err := repo.GetExpense(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if e.Amount.Cents != 10000_00 {
		t.Errorf("deduction amount = %d, want 1000000", e.Amount.Cents)
	}
	if e.Status != core.StatusPending {
		t.Errorf("deduction status = %s, want pending", e.Status)
	}
	if e.RuleID == nil || *e.RuleID != rule.ID {
		t.Errorf("deduction not anchored to rule %d: %v", rule.ID, e.RuleID)
	}
	if e.PeriodKey != "20260101-20260131" {
		t.Errorf("period key = %q, want 20260101-20260131", e.PeriodKey)
	}
	if e.PaymentDate.ISO() != "2026-01-31" {
		t.Errorf("payment date = %s, want period end", e.PaymentDate.ISO())
	}

	cat, err := repo.GetCategory(ctx, e.CategoryID)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Type != core.Tithe {
		t.Errorf("deduction category type = %s, want tithe", cat.Type)
	}

	found := false
	for _, ev := range audit.events {
		if ev.Kind == "deduction.generated" {
			found = true
		}
	}
	if !found {
		t.Errorf("audit events = %v, want deduction.generated", audit.kinds())
	}
}

func TestDeductionCalculateIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rev := &stubRevenue{total: core.Money{Cents: 100000_00}}
	svc := NewDeductionService(repo, rev, nil)
	seedAutoRule(t, repo, core.DeductTithe, 10)

	first, err := svc.Calculate(ctx, "scheduler", janPeriod())
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("first run generated %d, want 1", len(first))
	}

	second, err := svc.Calculate(ctx, "scheduler", janPeriod())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second run generated %d, want 0", len(second))
	}

	all, err := repo.ListExpenses(ctx, storage.ExpenseFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("ledger has %d expenses after two runs, want 1", len(all))
	}
}

func TestDeductionCalculateRevenueFailure(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rev := &stubRevenue{err: errors.New("aggregator timeout")}
	svc := NewDeductionService(repo, rev, nil)
	seedAutoRule(t, repo, core.DeductTithe, 10)

	_, err := svc.Calculate(ctx, "scheduler", janPeriod())
	if !errors.Is(err, core.ErrRevenueUnavailable) {
		t.Fatalf("got %v, want ErrRevenueUnavailable", err)
	}

	// The failed run must leave no partial state behind.
	all, listErr := repo.ListExpenses(ctx, storage.ExpenseFilter{})
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(all) != 0 {
		t.Fatalf("ledger has %d expenses after failed run, want 0", len(all))
	}
}

func TestDeductionCalculateSkipsInertRules(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rev := &stubRevenue{total: core.Money{Cents: 100000_00}}
	svc := NewDeductionService(repo, rev, nil)

	// Zero percent yields nothing; inactive and manual rules are not listed.
	seedAutoRule(t, repo, core.DeductCustom, 0)
	if _, err := repo.CreateRule(ctx, core.DeductionRule{
		Type:       core.DeductTithe,
		Percentage: decimal.NewFromInt(10),
		IsActive:   false,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateRule(ctx, core.DeductionRule{
		Type:         core.DeductReserve,
		Percentage:   decimal.NewFromInt(5),
		IsActive:     true,
		AutoGenerate: false,
	}); err != nil {
		t.Fatal(err)
	}

	ids, err := svc.Calculate(ctx, "scheduler", janPeriod())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("generated %d expenses, want 0", len(ids))
	}
}

func TestDeductionCalculateMultipleRules(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rev := &stubRevenue{total: core.Money{Cents: 100000_00}}
	svc := NewDeductionService(repo, rev, nil)
	seedAutoRule(t, repo, core.DeductTithe, 10)
	seedAutoRule(t, repo, core.DeductReserve, 5)

	ids, err := svc.Calculate(ctx, "scheduler", janPeriod())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("generated %d expenses, want 2", len(ids))
	}
	if rev.calls != 1 {
		t.Errorf("revenue fetched %d times, want 1", rev.calls)
	}

	var total int64
	for _, id := range ids {
		e, err := repo.GetExpense(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		total += e.Amount.Cents
	}
	if total != 15000_00 {
		t.Errorf("generated total = %d, want 1500000", total)
	}
}

func TestDeductionRuleValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewDeductionService(repo, &stubRevenue{}, nil)

	_, err := svc.CreateRule(ctx, "admin", core.DeductionRule{
		Type:       core.DeductTithe,
		Percentage: decimal.NewFromInt(150),
	})
	if !errors.Is(err, core.ErrInvalidPercentage) {
		t.Fatalf("got %v, want ErrInvalidPercentage", err)
	}

	_, err = svc.CreateRule(ctx, "admin", core.DeductionRule{
		Type:       "skim",
		Percentage: decimal.NewFromInt(10),
	})
	if !errors.Is(err, core.ErrInvalidDeductionType) {
		t.Fatalf("got %v, want ErrInvalidDeductionType", err)
	}
}
