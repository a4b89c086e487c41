package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RejectFutureDate returns date unchanged unless it is zero or strictly after now
func RejectFutureDate(date, now time.Time) (time.Time, error) {
	return RejectFutureDateMsg(date, now, "")
}

// RejectFutureDateMsg is RejectFutureDate with a caller supplied message
func RejectFutureDateMsg(date, now time.Time, message string) (time.Time, error) {
	if date.IsZero() {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	if date.After(now) {
		if message != "" {
			return time.Time{}, fmt.Errorf("%w: %s", ErrFutureDate, message)
		}
		return time.Time{}, fmt.Errorf("%w: %s", ErrFutureDate, date.Format(time.DateOnly))
	}
	return date, nil
}

// RejectNonPositive returns the value when it is present and greater than zero
func RejectNonPositive(value decimal.NullDecimal) (decimal.Decimal, error) {
	return RejectNonPositiveMsg(value, "value")
}

// RejectNonPositiveMsg is RejectNonPositive naming the offending field
func RejectNonPositiveMsg(value decimal.NullDecimal, field string) (decimal.Decimal, error) {
	if !value.Valid {
		return decimal.Zero, fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	if value.Decimal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidArgument, field, value.Decimal)
	}
	return value.Decimal, nil
}
