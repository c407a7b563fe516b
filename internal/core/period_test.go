package core

import (
	"errors"
	"testing"
	"time"
)

func TestPeriod_Resolve(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		period   Period
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{
			name:     "today",
			period:   Period{Kind: PeriodToday},
			wantFrom: "2026-01-15",
			wantTo:   "2026-01-15",
		},
		{
			name:     "last 7 days includes today",
			period:   Period{Kind: PeriodLast7},
			wantFrom: "2026-01-09",
			wantTo:   "2026-01-15",
		},
		{
			name:     "last 30 days",
			period:   Period{Kind: PeriodLast30},
			wantFrom: "2025-12-17",
			wantTo:   "2026-01-15",
		},
		{
			name:     "custom range",
			period:   Period{Kind: PeriodCustom, From: NewDate(2026, 1, 1), To: NewDate(2026, 1, 31)},
			wantFrom: "2026-01-01",
			wantTo:   "2026-01-31",
		},
		{
			name:    "custom range reversed",
			period:  Period{Kind: PeriodCustom, From: NewDate(2026, 2, 1), To: NewDate(2026, 1, 1)},
			wantErr: true,
		},
		{
			name:    "custom range missing bounds",
			period:  Period{Kind: PeriodCustom},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			period:  Period{Kind: "fortnight"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := tt.period.Resolve(now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("got %v, want ErrInvalidPeriod", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rng.From.ISO() != tt.wantFrom || rng.To.ISO() != tt.wantTo {
				t.Errorf("resolved [%s, %s], want [%s, %s]",
					rng.From.ISO(), rng.To.ISO(), tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestDateRange_Key(t *testing.T) {
	rng := DateRange{From: NewDate(2026, 1, 1), To: NewDate(2026, 1, 31)}
	if got := rng.Key(); got != "20260101-20260131" {
		t.Errorf("Key() = %q, want 20260101-20260131", got)
	}

	// Same range, same key: the key depends only on the resolved bounds.
	again := DateRange{From: NewDate(2026, 1, 1), To: NewDate(2026, 1, 31)}
	if rng.Key() != again.Key() {
		t.Error("identical ranges must produce identical keys")
	}
}
