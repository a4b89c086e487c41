package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the root of every input validation failure
var ErrInvalidArgument = errors.New("invalid argument")

// Validation errors raised at the point of the invalid call
var (
	ErrFutureDate   = fmt.Errorf("%w: date is in the future", ErrInvalidArgument)
	ErrCatalogEmpty = fmt.Errorf("%w: catalog has no condition modifiers", ErrInvalidArgument)
)

// Not-found errors raised when a temporally scoped query has no result
var (
	ErrPunishmentPolicyNotFound  = errors.New("punishment policy not found")
	ErrConditionModifierNotFound = errors.New("condition modifier not found")
	ErrCatalogNotFound           = errors.New("condition catalog not found")
)

// CodeCommunication is the valuation code used for unstructured transport failures
const CodeCommunication = "MV003"

// MessageCommunication accompanies CodeCommunication
const MessageCommunication = "communication error with reference service"

// ValuationError is the normalized shape of any reference-service failure
type ValuationError struct {
	Code    string
	Message string
	Actor   string
}

// NewValuationError creates a ValuationError
func NewValuationError(code, message, actor string) *ValuationError {
	return &ValuationError{Code: code, Message: message, Actor: actor}
}

func (e *ValuationError) Error() string {
	if e.Actor == "" {
		return fmt.Sprintf("valuation error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("valuation error %s: %s (actor: %s)", e.Code, e.Message, e.Actor)
}

// Is matches another ValuationError with the same code
func (e *ValuationError) Is(target error) bool {
	t, ok := target.(*ValuationError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsNotFound reports whether err means a policy, catalog or modifier does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPunishmentPolicyNotFound) ||
		errors.Is(err, ErrConditionModifierNotFound) ||
		errors.Is(err, ErrCatalogNotFound)
}
