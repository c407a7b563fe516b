package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"outlay/internal/core"
)

// DeductionService manages percentage-of-revenue rules and turns them into
// generated expenses, exactly once per rule and period.
type DeductionService struct {
	rules   RuleStore
	revenue RevenueSource
	audit   AuditLogger
	now     func() time.Time
}

func NewDeductionService(rules RuleStore, revenue RevenueSource, audit AuditLogger) *DeductionService {
	return &DeductionService{
		rules:   rules,
		revenue: revenue,
		audit:   orNopAudit(audit),
		now:     time.Now,
	}
}

func (s *DeductionService) CreateRule(ctx context.Context, actor string, rule core.DeductionRule) (core.DeductionRule, error) {
	if err := rule.Validate(); err != nil {
		return core.DeductionRule{}, err
	}
	created, err := s.rules.CreateRule(ctx, rule)
	if err != nil {
		return core.DeductionRule{}, err
	}
	s.audit.Record(ctx, actor, "rule.created", map[string]any{
		"rule_id":    created.ID,
		"type":       string(created.Type),
		"percentage": created.Percentage.String(),
	})
	return created, nil
}

func (s *DeductionService) UpdateRule(ctx context.Context, actor string, rule core.DeductionRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if err := s.rules.UpdateRule(ctx, rule); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "rule.updated", map[string]any{"rule_id": rule.ID})
	return nil
}

// DeleteRule removes a rule; rules with generated expenses attached are
// refused by the store.
func (s *DeductionService) DeleteRule(ctx context.Context, actor string, id int64) error {
	if err := s.rules.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, "rule.deleted", map[string]any{"rule_id": id})
	return nil
}

func (s *DeductionService) ListRules(ctx context.Context) ([]core.DeductionRule, error) {
	return s.rules.ListRules(ctx)
}

// Calculate resolves the period, fetches revenue once and generates one
// pending expense per eligible rule that has not yet run for this period
// key. A revenue failure aborts the whole call before anything is written.
// Returns the IDs of the expenses created by this invocation; an empty
// result means everything was already generated.
func (s *DeductionService) Calculate(ctx context.Context, actor string, p core.Period) ([]int64, error) {
	rng, err := p.Resolve(s.now())
	if err != nil {
		return nil, err
	}
	key := rng.Key()

	revenue, err := s.revenue.RevenueForPeriod(ctx, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRevenueUnavailable, err)
	}
	if revenue.Cents < 0 {
		return nil, fmt.Errorf("%w: negative total for %s", core.ErrRevenueUnavailable, key)
	}

	rules, err := s.rules.ListAutoRules(ctx)
	if err != nil {
		return nil, err
	}

	var created []int64
	for _, rule := range rules {
		// Fast path; the store re-checks under the generation transaction.
		if rule.LastCalculatedPeriod == key {
			continue
		}
		expected := revenue.Percent(rule.Percentage)
		if expected.Cents <= 0 {
			continue
		}

		cat, err := s.rules.EnsureDeductionCategory(ctx, rule.Type)
		if err != nil {
			return created, fmt.Errorf("rule %d: %w", rule.ID, err)
		}

		e := core.Expense{
			Number:        newExpenseNumber(s.now()),
			CategoryID:    cat.ID,
			Description:   fmt.Sprintf("%s deduction for period %s", rule.Type, key),
			Amount:        expected,
			PaymentMethod: core.BankTransfer,
			PaymentDate:   rng.To,
			Notes:         "auto-generated",
			CreatedBy:     actor,
		}
		generated, ok, err := s.rules.GenerateDeduction(ctx, rule.ID, key, e)
		if err != nil {
			return created, fmt.Errorf("rule %d: %w", rule.ID, err)
		}
		if !ok {
			slog.InfoContext(ctx, "Deduction already generated for period",
				"rule_id", rule.ID, "period_key", key)
			continue
		}

		created = append(created, generated.ID)
		s.audit.Record(ctx, actor, "deduction.generated", map[string]any{
			"rule_id":    rule.ID,
			"expense_id": generated.ID,
			"period_key": key,
			"amount":     expected.String(),
		})
		slog.InfoContext(ctx, "Generated deduction expense",
			"rule_id", rule.ID,
			"expense_id", generated.ID,
			"period_key", key,
			"amount_cents", expected.Cents)
	}
	return created, nil
}
