package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"outlay/internal/core"
)

func TestLedgerCreate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	audit := &recordingAudit{}
	svc := NewLedgerService(repo, repo, audit)
	cat := seedCategory(t, repo, "Operations")

	e, err := svc.Create(ctx, "alice", validInput(cat.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Status != core.StatusPending {
		t.Errorf("status = %s, want pending", e.Status)
	}
	if e.CreatedBy != "alice" {
		t.Errorf("created by = %q, want alice", e.CreatedBy)
	}
	numberFormat := regexp.MustCompile(`^EXP-\d{8}-[0-9A-F]{8}$`)
	if !numberFormat.MatchString(e.Number) {
		t.Errorf("expense number %q does not match expected format", e.Number)
	}
	if len(audit.events) != 1 || audit.events[0].Kind != "expense.created" {
		t.Errorf("audit events = %v, want single expense.created", audit.kinds())
	}

	second, err := svc.Create(ctx, "alice", validInput(cat.ID))
	if err != nil {
		t.Fatal(err)
	}
	if second.Number == e.Number {
		t.Error("expense numbers must be unique")
	}
}

func TestLedgerCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, repo, nil)
	cat := seedCategory(t, repo, "Operations")

	tests := []struct {
		name    string
		mutate  func(*ExpenseInput)
		wantErr error
	}{
		{"empty description", func(in *ExpenseInput) { in.Description = "  " }, core.ErrEmptyDescription},
		{"zero amount", func(in *ExpenseInput) { in.Amount = core.Money{} }, core.ErrInvalidAmount},
		{"unknown method", func(in *ExpenseInput) { in.PaymentMethod = "barter" }, core.ErrInvalidPaymentMethod},
		{"missing category", func(in *ExpenseInput) { in.CategoryID = 9999 }, core.ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(cat.ID)
			tt.mutate(&in)
			_, err := svc.Create(ctx, "alice", in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLedgerCreateInactiveCategory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, repo, nil)
	cat := seedCategory(t, repo, "Retired")
	if err := repo.SetCategoryActive(ctx, cat.ID, false); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, "alice", validInput(cat.ID))
	if !errors.Is(err, core.ErrInvalidCategory) {
		t.Fatalf("got %v, want ErrInvalidCategory", err)
	}
}

func TestLedgerLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	audit := &recordingAudit{}
	svc := NewLedgerService(repo, repo, audit)
	cat := seedCategory(t, repo, "Operations")

	e, err := svc.Create(ctx, "alice", validInput(cat.ID))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Approve(ctx, e.ID, "bob"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := svc.MarkPaid(ctx, e.ID, "carol"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	got, err := svc.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != core.StatusPaid || got.ApprovedBy != "bob" || got.PaidBy != "carol" {
		t.Errorf("final expense = status %s by %s/%s, want paid by bob/carol",
			got.Status, got.ApprovedBy, got.PaidBy)
	}

	want := []string{"expense.created", "expense.approved", "expense.paid"}
	got2 := audit.kinds()
	if len(got2) != len(want) {
		t.Fatalf("audit kinds = %v, want %v", got2, want)
	}
	for i := range want {
		if got2[i] != want[i] {
			t.Errorf("audit[%d] = %s, want %s", i, got2[i], want[i])
		}
	}
}

func TestLedgerReasonRequired(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	audit := &recordingAudit{}
	svc := NewLedgerService(repo, repo, audit)
	cat := seedCategory(t, repo, "Operations")

	e, err := svc.Create(ctx, "alice", validInput(cat.ID))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Reject(ctx, e.ID, "bob", "   "); !errors.Is(err, core.ErrReasonRequired) {
		t.Fatalf("reject without reason: got %v, want ErrReasonRequired", err)
	}
	if err := svc.Cancel(ctx, e.ID, "bob", ""); !errors.Is(err, core.ErrReasonRequired) {
		t.Fatalf("cancel without reason: got %v, want ErrReasonRequired", err)
	}

	// The refused commands must not have touched the expense or the audit log.
	got, err := svc.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != core.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if len(audit.events) != 1 {
		t.Errorf("audit events = %v, want only the creation", audit.kinds())
	}

	if err := svc.Reject(ctx, e.ID, "bob", "missing receipt"); err != nil {
		t.Fatalf("reject with reason: %v", err)
	}
}

func TestLedgerUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewLedgerService(repo, repo, nil)
	cat := seedCategory(t, repo, "Operations")

	e, err := svc.Create(ctx, "alice", validInput(cat.ID))
	if err != nil {
		t.Fatal(err)
	}

	in := validInput(cat.ID)
	in.Description = "Corrected description"
	in.Amount = core.Money{Cents: 75_00}
	if err := svc.Update(ctx, e.ID, "alice", in); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "Corrected description" || got.Amount.Cents != 75_00 {
		t.Errorf("updated expense = %q/%d", got.Description, got.Amount.Cents)
	}
	if got.Number != e.Number {
		t.Error("update must not change the expense number")
	}

	if err := svc.Delete(ctx, e.ID, "alice"); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if _, err := svc.Get(ctx, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get deleted: got %v, want ErrNotFound", err)
	}
}
