package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes shared by every command. A search that ends without the
// password is a completed run whose answer was no, not a broken
// invocation, so the codes keep the two apart.
const (
	ExitSuccess      = 0 // password recovered, target encrypted, listing produced
	ExitFailure      = 1 // terminal state without success: exhausted, cancelled, not encrypted
	ExitCommandError = 2 // unusable invocation: missing target, bad flags, unloadable plan
)

// ExitError carries the process exit code a command decided on. Commands
// return it from RunE; main translates it with GetExitCode.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError builds an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and context to an underlying error.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps a command error to the process exit code. An error that
// is not an ExitError never reached a command body (cobra flag and usage
// errors), which is an invocation problem: code 2.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Response is the envelope every command emits under --format json.
// Exactly one of Data and Error is set; Status says which.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the structured half of a failed Response.
type ResponseError struct {
	Code    string `json:"code"` // stable tag, e.g. "PLAN_INVALID"
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter renders command results as text or as the JSON envelope.
// Results go to Writer; diagnostics belong to slog, not here.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// Success emits data inside an ok envelope. Under text format each command
// renders its own payload; this fallback prints the value as-is.
func (f *OutputFormatter) Success(data any) error {
	if f.Format != "json" {
		fmt.Fprintln(f.Writer, data)
		return nil
	}
	return f.encode(Response{Status: "ok", Data: data})
}

// Error emits a structured error. Text format keeps it to one line unless
// --verbose asks for the details.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format != "json" {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
		if f.Verbose && details != nil {
			fmt.Fprintf(f.Writer, "Details: %v\n", details)
		}
		return nil
	}
	return f.encode(Response{
		Status: "error",
		Error:  &ResponseError{Code: code, Message: message, Details: details},
	})
}

func (f *OutputFormatter) encode(resp Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
