package core

import "time"

const (
	PeriodToday   PeriodKind = "today"
	PeriodLast7   PeriodKind = "last-7-days"
	PeriodLast30  PeriodKind = "last-30-days"
	PeriodLast365 PeriodKind = "last-365-days"
	PeriodCustom  PeriodKind = "custom"
)

type (
	PeriodKind string

	// Period selects a date range for revenue and reporting queries.
	// From/To are consulted only when Kind is PeriodCustom.
	Period struct {
		Kind PeriodKind
		From Date
		To   Date
	}

	// DateRange is a resolved, inclusive calendar range.
	DateRange struct {
		From Date
		To   Date
	}
)

func (k PeriodKind) Valid() bool {
	switch k {
	case PeriodToday, PeriodLast7, PeriodLast30, PeriodLast365, PeriodCustom:
		return true
	}
	return false
}

// Resolve turns a period into a concrete inclusive range anchored at now.
// Relative kinds include today, so last-7-days covers today and the six
// days before it.
func (p Period) Resolve(now time.Time) (DateRange, error) {
	today := NewDate(now.Year(), int(now.Month()), now.Day())
	switch p.Kind {
	case PeriodToday:
		return DateRange{From: today, To: today}, nil
	case PeriodLast7:
		return DateRange{From: Date{Time: today.AddDate(0, 0, -6)}, To: today}, nil
	case PeriodLast30:
		return DateRange{From: Date{Time: today.AddDate(0, 0, -29)}, To: today}, nil
	case PeriodLast365:
		return DateRange{From: Date{Time: today.AddDate(0, 0, -364)}, To: today}, nil
	case PeriodCustom:
		if p.From.IsZero() || p.To.IsZero() || p.From.After(p.To.Time) {
			return DateRange{}, ErrInvalidPeriod
		}
		return DateRange{From: p.From, To: p.To}, nil
	default:
		return DateRange{}, ErrInvalidPeriod
	}
}

// Key is the stable identifier for a resolved range, used to deduplicate
// generated deductions. Two periods resolving to the same calendar range
// share a key regardless of kind.
func (r DateRange) Key() string {
	return r.From.Format("20060102") + "-" + r.To.Format("20060102")
}
