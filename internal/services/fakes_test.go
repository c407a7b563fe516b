package services

import (
	"context"
	"path/filepath"
	"testing"

	"outlay/internal/core"
	"outlay/internal/storage"
)

// recordingAudit captures audit events for assertions.
type recordingAudit struct {
	events []auditEvent
}

type auditEvent struct {
	Actor   string
	Kind    string
	Details map[string]any
}

func (a *recordingAudit) Record(_ context.Context, actor, kind string, details map[string]any) {
	a.events = append(a.events, auditEvent{Actor: actor, Kind: kind, Details: details})
}

func (a *recordingAudit) kinds() []string {
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}

// stubRevenue returns a fixed total or a fixed error.
type stubRevenue struct {
	total core.Money
	err   error
	calls int
}

func (s *stubRevenue) RevenueForPeriod(context.Context, core.Date, core.Date) (core.Money, error) {
	s.calls++
	if s.err != nil {
		return core.Money{}, s.err
	}
	return s.total, nil
}

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedCategory(t *testing.T, repo *storage.Repository, name string) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), core.Category{
		Name: name,
		Type: core.Operational,
	})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func validInput(categoryID int64) ExpenseInput {
	return ExpenseInput{
		CategoryID:    categoryID,
		Description:   "Office supplies",
		Amount:        core.Money{Cents: 50_00},
		PaymentMethod: core.Cash,
		PaymentDate:   core.NewDate(2026, 1, 15),
	}
}
