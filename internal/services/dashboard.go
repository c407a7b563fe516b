package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"outlay/internal/core"
	"outlay/internal/storage"
)

// DashboardService serves read-only rollups. Nothing here mutates state, so
// its queries run without locking and, where useful, in parallel.
type DashboardService struct {
	store   ReportStore
	revenue RevenueSource
	now     func() time.Time
}

func NewDashboardService(store ReportStore, revenue RevenueSource) *DashboardService {
	return &DashboardService{
		store:   store,
		revenue: revenue,
		now:     time.Now,
	}
}

// DashboardFilter optionally narrows totals to a category and/or status.
type DashboardFilter struct {
	CategoryID int64
	Status     core.Status
}

func (s *DashboardService) Totals(ctx context.Context, p core.Period, f DashboardFilter) (core.Totals, error) {
	rng, err := p.Resolve(s.now())
	if err != nil {
		return core.Totals{}, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return core.Totals{}, fmt.Errorf("%w: unknown status filter %q", core.ErrValidation, f.Status)
	}
	return s.store.RangeTotals(ctx, storage.ExpenseFilter{
		From:       rng.From,
		To:         rng.To,
		CategoryID: f.CategoryID,
		Status:     f.Status,
	})
}

func (s *DashboardService) CategoryBreakdown(ctx context.Context, p core.Period) ([]core.BreakdownRow, error) {
	rng, err := p.Resolve(s.now())
	if err != nil {
		return nil, err
	}
	rows, err := s.store.RangeBreakdown(ctx, rng)
	if err != nil {
		return nil, err
	}
	core.FillPercents(rows)
	return rows, nil
}

func (s *DashboardService) MonthlyTrend(ctx context.Context, lastN int) ([]core.TrendPoint, error) {
	return s.store.MonthlyTrend(ctx, lastN, s.now())
}

// RevenueComparison fetches period expenses and period revenue side by side.
// The two reads are independent, so they run concurrently.
func (s *DashboardService) RevenueComparison(ctx context.Context, p core.Period) (core.RevenueComparison, error) {
	rng, err := p.Resolve(s.now())
	if err != nil {
		return core.RevenueComparison{}, err
	}

	var cmp core.RevenueComparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.store.RangeTotals(gctx, storage.ExpenseFilter{From: rng.From, To: rng.To})
		if err != nil {
			return err
		}
		cmp.Expenses = t
		return nil
	})
	g.Go(func() error {
		rev, err := s.revenue.RevenueForPeriod(gctx, rng.From, rng.To)
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrRevenueUnavailable, err)
		}
		cmp.Revenue = rev
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.RevenueComparison{}, err
	}
	cmp.Net = core.Money{Cents: cmp.Revenue.Cents - cmp.Expenses.Total.Cents}
	return cmp, nil
}
