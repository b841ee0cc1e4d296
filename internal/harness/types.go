package harness

import "github.com/roach88/tumbler/internal/loop"

// TraceEvent is one observed loop event: a state transition or the
// disposition of one pulled candidate. RenderTrace serializes these
// into the golden trace text.
type TraceEvent struct {
	Type      string // "transition" or "attempt"
	From      string
	To        string
	Seq       int64
	Candidate string
	Verdict   string
	Detail    string
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if the report matched the expect clause.
	Pass bool

	// Trace contains all transitions and attempts in order.
	Trace []TraceEvent

	// Errors contains expectation mismatch messages.
	// Empty if Pass is true.
	Errors []string

	// Report is the terminal report the loop produced.
	Report loop.Report

	// Recorded is the password captured by the success writer, empty
	// when the run found nothing.
	Recorded string

	// Ledgered is the final ledger entry count, preloads included.
	Ledgered int
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an expectation mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
