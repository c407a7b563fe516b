package core

const (
	BudgetNormal  BudgetHealth = "normal"
	BudgetWarning BudgetHealth = "warning"
	BudgetOver    BudgetHealth = "over"
)

type (
	BudgetHealth string

	// Utilization compares actual spend against a planned ceiling.
	Utilization struct {
		Planned   Money
		Actual    Money
		Remaining Money
		Percent   float64
		Health    BudgetHealth
	}

	// CategorySummaryRow reports one active category's spend against the
	// budget that applies to it for a month. FromDefault marks rows where
	// no explicit budget exists and the category default was used.
	CategorySummaryRow struct {
		Category    Category
		BudgetID    int64 // 0 when FromDefault
		FromDefault bool
		Utilization Utilization
	}

	// Totals is a flat amount/count rollup.
	Totals struct {
		Total Money
		Count int
	}

	// BreakdownRow is one category's share of a period's spend.
	BreakdownRow struct {
		CategoryID   int64
		CategoryName string
		Total        Money
		Count        int
		Percent      float64
	}

	// TrendPoint is one month of approved+paid spend.
	TrendPoint struct {
		Year  int
		Month int // 1-12
		Total Money
		Count int
	}

	// RevenueComparison places period expenses next to period revenue.
	RevenueComparison struct {
		Expenses Totals
		Revenue  Money
		Net      Money // revenue minus expenses
	}
)

// ComputeUtilization derives remaining, percent and health from planned and
// actual amounts. A zero plan yields 0% utilization.
func ComputeUtilization(planned, actual Money) Utilization {
	u := Utilization{
		Planned:   planned,
		Actual:    actual,
		Remaining: Money{Cents: planned.Cents - actual.Cents},
	}
	if planned.Cents > 0 {
		u.Percent = float64(actual.Cents) / float64(planned.Cents) * 100
	}
	switch {
	case u.Percent > 100:
		u.Health = BudgetOver
	case u.Percent >= 80:
		u.Health = BudgetWarning
	default:
		u.Health = BudgetNormal
	}
	return u
}

// FillPercents computes each row's share of the grand total in place.
func FillPercents(rows []BreakdownRow) {
	var grand int64
	for _, r := range rows {
		grand += r.Total.Cents
	}
	if grand == 0 {
		return
	}
	for i := range rows {
		rows[i].Percent = float64(rows[i].Total.Cents) / float64(grand) * 100
	}
}
