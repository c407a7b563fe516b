// Package core holds the domain model for the expense engine: money,
// lifecycle statuses, categories, budgets, deduction rules and the
// aggregation math over them. It performs no I/O.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is an amount in the system's single currency, held in minor units
// (cents). Calculations stay in integers; decimal conversion happens only at
// the percentage-of-revenue boundary and for display.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the major-unit value as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two decimals, e.g. "1234.50".
func (m Money) String() string {
	neg := ""
	c := m.Cents
	if c < 0 {
		neg = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", neg, c/100, c%100)
}

// Percent returns pct% of m, rounded half-up to the minor unit.
func (m Money) Percent(pct decimal.Decimal) Money {
	v := m.Decimal().Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	return Money{Cents: v.Shift(2).IntPart()}
}

// ParseAmount converts a positive decimal string to Money with half-up
// rounding on the third decimal place. Both "12.34" and "12,34" are
// accepted. Zero, negative and malformed inputs fail with ErrInvalidAmount.
func ParseAmount(s string) (Money, error) {
	m, err := ParseNonNegativeAmount(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents == 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseNonNegativeAmount is ParseAmount for fields where zero is a valid
// value, such as a category's default budget.
func ParseNonNegativeAmount(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxUnits = (1<<63 - 1) / 100
	if units > maxUnits {
		return Money{}, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return Money{Cents: units*100 + frac}, nil
}
