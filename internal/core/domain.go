package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

const (
	BankTransfer PaymentMethod = "bank_transfer"
	Cash         PaymentMethod = "cash"
	Cheque       PaymentMethod = "cheque"
	Online       PaymentMethod = "online"
	POS          PaymentMethod = "pos"
	MobileMoney  PaymentMethod = "mobile_money"
)

const (
	Operational CategoryType = "operational"
	Fixed       CategoryType = "fixed"
	Variable    CategoryType = "variable"
	Tithe       CategoryType = "tithe"
	Reserve     CategoryType = "reserve"
	Other       CategoryType = "other"
)

const (
	DeductTithe   DeductionType = "tithe"
	DeductReserve DeductionType = "reserve"
	DeductCustom  DeductionType = "custom"
)

type (
	Status        string
	PaymentMethod string
	CategoryType  string
	DeductionType string

	Date struct {
		time.Time
	}

	// Expense is one recorded outlay moving through the approval lifecycle.
	Expense struct {
		ID            int64
		Number        string // globally unique, assigned at creation
		CategoryID    int64
		Description   string
		Amount        Money
		PaymentMethod PaymentMethod
		PaymentDate   Date
		VendorName    string
		VendorContact string
		ReceiptNumber string
		ReceiptRef    string // opaque handle to externally stored file
		Notes         string
		Status        Status
		CreatedBy     string
		ApprovedBy    string
		ApprovedAt    *time.Time
		PaidBy        string
		PaidAt        *time.Time
		// RuleID and PeriodKey are set only on expenses generated by the
		// deduction calculator; together they anchor idempotency.
		RuleID    *int64
		PeriodKey string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Category classifies expenses and carries an optional default budget.
	Category struct {
		ID            int64
		Name          string
		Description   string
		Type          CategoryType
		Color         string
		DefaultBudget Money
		IsActive      bool
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// Budget is the planned spend for a category in a specific month.
	// Actual spend is always derived from the ledger, never stored here.
	Budget struct {
		ID         int64
		CategoryID int64
		Month      Date // normalized to the first day of the month
		Planned    Money
		CreatedBy  string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// DeductionRule reserves a percentage of revenue as an automatically
	// generated expense, at most once per period.
	DeductionRule struct {
		ID                   int64
		Type                 DeductionType
		Percentage           decimal.Decimal // 0..100
		Description          string
		DestinationAccount   string
		IsActive             bool
		AutoGenerate         bool
		LastCalculatedPeriod string
		CumulativeDeducted   Money
		CreatedAt            time.Time
		UpdatedAt            time.Time
	}
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle command may move the record.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusRejected || s == StatusCancelled
}

// Editable reports whether field edits are still allowed.
func (s Status) Editable() bool {
	return s == StatusPending || s == StatusApproved
}

// Deletable reports whether a hard delete is allowed.
func (s Status) Deletable() bool {
	return s == StatusPending || s == StatusCancelled || s == StatusRejected
}

// Counted reports whether the expense contributes to budget actuals.
func (s Status) Counted() bool {
	return s == StatusApproved || s == StatusPaid
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case BankTransfer, Cash, Cheque, Online, POS, MobileMoney:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	switch t {
	case Operational, Fixed, Variable, Tithe, Reserve, Other:
		return true
	}
	return false
}

func (t DeductionType) Valid() bool {
	switch t {
	case DeductTithe, DeductReserve, DeductCustom:
		return true
	}
	return false
}

// Category returns the expense category type a deduction posts against.
func (t DeductionType) Category() CategoryType {
	switch t {
	case DeductTithe:
		return Tithe
	case DeductReserve:
		return Reserve
	default:
		return Other
	}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// MonthOf truncates a time to the first day of its month.
func MonthOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), 1)
}

func (e Expense) Validate() error {
	if e.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 500 {
		return ErrDescriptionTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if err := e.PaymentDate.Validate(); err != nil {
		return err
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidCategoryType
	}
	if c.DefaultBudget.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if err := b.Month.Validate(); err != nil {
		return err
	}
	return b.Planned.Validate()
}

func (r DeductionRule) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidDeductionType
	}
	if r.Percentage.IsNegative() || r.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidPercentage
	}
	return nil
}
