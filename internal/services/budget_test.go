package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"outlay/internal/core"
)

func TestBudgetCreate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewBudgetService(repo, repo, nil)
	cat := seedCategory(t, repo, "Operations")

	mid := time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC)
	b, err := svc.Create(ctx, "alice", cat.ID, mid, core.Money{Cents: 100_00})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Month.ISO() != "2026-01-01" {
		t.Errorf("month = %s, want normalized 2026-01-01", b.Month.ISO())
	}

	// Same category and month again, regardless of the day given.
	_, err = svc.Create(ctx, "alice", cat.ID, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), core.Money{Cents: 200_00})
	if !errors.Is(err, core.ErrDuplicateBudget) {
		t.Fatalf("duplicate: got %v, want ErrDuplicateBudget", err)
	}

	_, err = svc.Create(ctx, "alice", 9999, mid, core.Money{Cents: 100_00})
	if !errors.Is(err, core.ErrInvalidCategory) {
		t.Fatalf("missing category: got %v, want ErrInvalidCategory", err)
	}

	_, err = svc.Create(ctx, "alice", cat.ID, mid, core.Money{})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("zero planned: got %v, want ErrInvalidAmount", err)
	}
}

func TestBudgetDeleteGuard(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, repo, nil)
	svc := NewBudgetService(repo, repo, nil)
	cat := seedCategory(t, repo, "Operations")
	month := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	b, err := svc.Create(ctx, "alice", cat.ID, month, core.Money{Cents: 100_00})
	if err != nil {
		t.Fatal(err)
	}

	e, err := ledger.Create(ctx, "alice", validInput(cat.ID))
	if err != nil {
		t.Fatal(err)
	}
	if err := ledger.Approve(ctx, e.ID, "bob"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, "alice", b.ID, false); !errors.Is(err, core.ErrBlockedDeletion) {
		t.Fatalf("delete with actuals: got %v, want ErrBlockedDeletion", err)
	}
	if err := svc.Delete(ctx, "alice", b.ID, true); err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	if _, err := repo.GetBudget(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("budget still present after forced delete: %v", err)
	}
}

func TestBudgetUtilization(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, repo, nil)
	svc := NewBudgetService(repo, repo, nil)
	cat := seedCategory(t, repo, "Operations")
	month := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	b, err := svc.Create(ctx, "alice", cat.ID, month, core.Money{Cents: 100_00})
	if err != nil {
		t.Fatal(err)
	}

	in := validInput(cat.ID)
	in.Amount = core.Money{Cents: 90_00}
	e, err := ledger.Create(ctx, "alice", in)
	if err != nil {
		t.Fatal(err)
	}
	if err := ledger.Approve(ctx, e.ID, "bob"); err != nil {
		t.Fatal(err)
	}
	// A pending expense in the same month must not count.
	if _, err := ledger.Create(ctx, "alice", validInput(cat.ID)); err != nil {
		t.Fatal(err)
	}

	u, err := svc.Utilization(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u.Actual.Cents != 90_00 {
		t.Errorf("actual = %d, want 9000", u.Actual.Cents)
	}
	if u.Health != core.BudgetWarning {
		t.Errorf("health = %s, want warning at 90%%", u.Health)
	}
	if u.Remaining.Cents != 10_00 {
		t.Errorf("remaining = %d, want 1000", u.Remaining.Cents)
	}
}
