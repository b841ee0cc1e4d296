package loop

// State identifies a phase of the verification loop.
// The three terminal states double as the run outcome carried by Report.
type State string

const (
	StateInit           State = "init"
	StateCheckEncrypted State = "check-encrypted"
	StateIterating      State = "iterating"
	StateSuccess        State = "success"
	StateExhausted      State = "exhausted"
	StateCancelled      State = "cancelled"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateExhausted, StateCancelled:
		return true
	}
	return false
}

// Verdict classifies what the loop did with one pulled candidate.
type Verdict string

const (
	// VerdictSkipped means the ledger already held the candidate;
	// the verifier was not invoked.
	VerdictSkipped Verdict = "skipped"

	// VerdictRejected means the verifier reported a wrong password.
	VerdictRejected Verdict = "rejected"

	// VerdictAnomalous means the verifier failed in an unexpected way;
	// the candidate still counts as tried.
	VerdictAnomalous Verdict = "anomalous"

	// VerdictFound means the candidate unlocked the target.
	VerdictFound Verdict = "found"
)

// Attempt describes the handling of one pulled candidate.
type Attempt struct {
	// Seq is the candidate's position in the run, stamped by Clock.
	// Skipped candidates consume sequence numbers too.
	Seq int64

	// Candidate is the password string under consideration.
	Candidate string

	// Verdict is how the loop disposed of the candidate.
	Verdict Verdict

	// Detail carries the verifier failure for anomalous attempts,
	// nil otherwise.
	Detail error
}

// Observer receives loop lifecycle notifications.
//
// Calls are synchronous from the runner's goroutine; implementations
// must return promptly or they stall the search. Implemented by the
// CLI's progress renderer and the harness trace recorder.
type Observer interface {
	OnTransition(from, to State)
	OnAttempt(a Attempt)
}
