package mlang

import (
	"errors"
	"fmt"
)

// ErrPreconditionViolation is returned when a codec operation is called on
// input it is not defined for.
var ErrPreconditionViolation = errors.New("mlang: precondition violation")

// PreconditionError describes the violated precondition.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("mlang: %s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionViolation
}
