package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation failures all wrap ErrValidation so callers can
// classify with a single errors.Is check; the remaining sentinels map one to
// one onto the failure modes the services report.
var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount        = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrEmptyDescription     = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong   = fmt.Errorf("%w: description too long (max 500 characters)", ErrValidation)
	ErrEmptyName            = fmt.Errorf("%w: empty name", ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidCategory      = fmt.Errorf("%w: missing or inactive category", ErrValidation)
	ErrInvalidCategoryType  = fmt.Errorf("%w: unknown category type", ErrValidation)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: unknown payment method", ErrValidation)
	ErrInvalidDeductionType = fmt.Errorf("%w: unknown deduction type", ErrValidation)
	ErrInvalidPercentage    = fmt.Errorf("%w: percentage must be between 0 and 100", ErrValidation)
	ErrInvalidPeriod        = fmt.Errorf("%w: invalid period", ErrValidation)
	ErrReasonRequired       = fmt.Errorf("%w: reason required", ErrValidation)

	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrDuplicateBudget    = errors.New("budget already exists for category and month")
	ErrBlockedDeletion    = errors.New("deletion blocked by existing references")
	ErrRevenueUnavailable = errors.New("revenue figure unavailable")
	ErrStorageConflict    = errors.New("conditional update lost a race")
	ErrNotFound           = errors.New("not found")
)
