package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validExpense() Expense {
	return Expense{
		CategoryID:    1,
		Description:   "Office supplies",
		Amount:        Money{Cents: 5000_00},
		PaymentMethod: BankTransfer,
		PaymentDate:   NewDate(2026, 1, 15),
	}
}

func TestExpense_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{"valid", func(e *Expense) {}, nil},
		{"missing category", func(e *Expense) { e.CategoryID = 0 }, ErrInvalidCategory},
		{"empty description", func(e *Expense) { e.Description = "   " }, ErrEmptyDescription},
		{"zero amount", func(e *Expense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"unknown payment method", func(e *Expense) { e.PaymentMethod = "barter" }, ErrInvalidPaymentMethod},
		{"zero payment date", func(e *Expense) { e.PaymentDate = Date{} }, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%v should classify as validation error", err)
			}
		})
	}
}

func TestStatus_Guards(t *testing.T) {
	all := []Status{StatusPending, StatusApproved, StatusPaid, StatusRejected, StatusCancelled}
	for _, s := range all {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("unknown").Valid() {
		t.Error("unknown status should not be valid")
	}

	tests := []struct {
		status    Status
		terminal  bool
		editable  bool
		deletable bool
		counted   bool
	}{
		{StatusPending, false, true, true, false},
		{StatusApproved, false, true, false, true},
		{StatusPaid, true, false, false, true},
		{StatusRejected, true, false, true, false},
		{StatusCancelled, true, false, true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.Editable(); got != tt.editable {
				t.Errorf("Editable() = %v, want %v", got, tt.editable)
			}
			if got := tt.status.Deletable(); got != tt.deletable {
				t.Errorf("Deletable() = %v, want %v", got, tt.deletable)
			}
			if got := tt.status.Counted(); got != tt.counted {
				t.Errorf("Counted() = %v, want %v", got, tt.counted)
			}
		})
	}
}

func TestDeductionRule_Validate(t *testing.T) {
	rule := DeductionRule{Type: DeductTithe, Percentage: decimal.NewFromInt(10)}
	if err := rule.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rule.Percentage = decimal.NewFromInt(101)
	if err := rule.Validate(); !errors.Is(err, ErrInvalidPercentage) {
		t.Fatalf("got %v, want ErrInvalidPercentage", err)
	}

	rule.Percentage = decimal.NewFromInt(-1)
	if err := rule.Validate(); !errors.Is(err, ErrInvalidPercentage) {
		t.Fatalf("got %v, want ErrInvalidPercentage", err)
	}

	rule = DeductionRule{Type: "skim", Percentage: decimal.NewFromInt(10)}
	if err := rule.Validate(); !errors.Is(err, ErrInvalidDeductionType) {
		t.Fatalf("got %v, want ErrInvalidDeductionType", err)
	}
}

func TestCategory_Validate(t *testing.T) {
	c := Category{Name: "Operations", Type: Operational}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Name = ""
	if err := c.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("got %v, want ErrEmptyName", err)
	}
	c = Category{Name: "Operations", Type: "misc"}
	if err := c.Validate(); !errors.Is(err, ErrInvalidCategoryType) {
		t.Fatalf("got %v, want ErrInvalidCategoryType", err)
	}
}

func TestMonthOf(t *testing.T) {
	got := MonthOf(time.Date(2026, 3, 17, 14, 30, 0, 0, time.UTC))
	want := NewDate(2026, 3, 1)
	if !got.Equal(want.Time) {
		t.Errorf("MonthOf = %v, want %v", got, want)
	}
}

func TestDeductionType_Category(t *testing.T) {
	if DeductTithe.Category() != Tithe {
		t.Error("tithe deductions should post to the tithe category type")
	}
	if DeductReserve.Category() != Reserve {
		t.Error("reserve deductions should post to the reserve category type")
	}
	if DeductCustom.Category() != Other {
		t.Error("custom deductions should post to the other category type")
	}
}
