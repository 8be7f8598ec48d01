package commands

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
	commandPartialFailure   = "COMMAND_PARTIAL_FAILURE"
)

// BatchError reports the items of a batch command that failed. The batch is
// not rolled back; succeeded items stay applied.
type BatchError struct {
	Operation string
	Total     int
	Errs      []error
}

func (e *BatchError) Error() string {
	msg := fmt.Sprintf("%s: %d of %d items failed", e.Operation, len(e.Errs), e.Total)
	if len(e.Errs) > 0 {
		msg += ": " + e.Errs[0].Error()
	}
	return msg
}

func (e *BatchError) Unwrap() []error {
	return e.Errs
}

// NewBatchError returns nil when errs is empty.
func NewBatchError(operation string, total int, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Operation: operation, Total: total, Errs: errs}
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	var batch *BatchError
	if errors.As(err, &batch) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command partially failed").
			WithTextCode(commandPartialFailure)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}
