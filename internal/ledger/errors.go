package ledger

import (
	"errors"
	"fmt"
)

// Validation failure reasons.
const (
	ReasonBudgetNotPositive = "budget must be positive"
	ReasonRequiredMissing   = "required fields missing"
	ReasonAmountNotPositive = "amount must be positive"
	ReasonAmountUnreadable  = "amount is not a number"
)

var (
	// ErrDeclined means the confirmation gate did not approve a destructive command.
	ErrDeclined = errors.New("operation not confirmed")
	// ErrUnknownEntry means an edit named an id the ledger does not hold.
	ErrUnknownEntry = errors.New("unknown entry id")
	// ErrClosed means the store was closed.
	ErrClosed = errors.New("ledger store closed")
)

// ValidationError reports malformed command input. State is unchanged.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError reports a backend failure.
type PersistenceError struct {
	Op  string // "load", "write" or "clear"
	Key string // empty for clear
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
