package parcel

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is the sentinel every rejected lifecycle transition unwraps to.
var ErrInvalidTransition = errors.New("invalid parcel transition")

// InvalidTransitionError carries the state a parcel was in and the state that was
// attempted. The parcel is left unchanged whenever this error is returned.
type InvalidTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func NewInvalidTransitionError(from, to Status, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Reason: reason}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %s", ErrInvalidTransition, e.From, e.To, e.Reason)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
