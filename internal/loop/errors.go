package loop

import (
	"errors"
	"fmt"
)

// RunError represents an infrastructure failure that aborts a run.
//
// Outcomes the search itself produces (rejections, anomalous verifier
// failures, cancellation, exhaustion, an unconfirmed encryption check)
// are never RunErrors; they travel in the Report. RunError is reserved
// for conditions where continuing would lose state or the run never
// validly started.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// RunErrorCode categorizes run-aborting errors.
type RunErrorCode string

const (
	// ErrCodeFatalInput indicates the run could not start: target
	// missing or not provided, unloadable plan, unopenable ledger.
	// Nothing was attempted and no partial state was written.
	ErrCodeFatalInput RunErrorCode = "FATAL_INPUT"

	// ErrCodeLedgerIO indicates a checkpoint write failed mid-run.
	// The run aborts immediately rather than risk silently losing
	// resume state.
	ErrCodeLedgerIO RunErrorCode = "LEDGER_IO"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *RunError) Unwrap() error {
	return e.Err
}

// IsFatalInput returns true if the error is a FATAL_INPUT run error.
// Uses errors.As to handle wrapped errors.
func IsFatalInput(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeFatalInput
	}
	return false
}

// IsLedgerIO returns true if the error is a LEDGER_IO run error.
// Uses errors.As to handle wrapped errors.
func IsLedgerIO(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeLedgerIO
	}
	return false
}

// NewFatalInput creates a RunError for an unusable input.
func NewFatalInput(message string, err error) *RunError {
	return &RunError{Code: ErrCodeFatalInput, Message: message, Err: err}
}

// NewLedgerIO creates a RunError for a failed checkpoint write.
func NewLedgerIO(message string, err error) *RunError {
	return &RunError{Code: ErrCodeLedgerIO, Message: message, Err: err}
}
