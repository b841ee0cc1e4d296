package loop

import "time"

// minRateElapsed guards the throughput metric against a near-zero
// denominator: runs shorter than this report no rate at all.
const minRateElapsed = 100 * time.Millisecond

// Reason explains how a run reached its terminal state.
type Reason string

const (
	// ReasonFound: the password was recovered.
	ReasonFound Reason = "found"

	// ReasonNotEncrypted: the target needs no password; no candidates
	// were tried.
	ReasonNotEncrypted Reason = "not-encrypted"

	// ReasonUndetermined: the encryption check failed, so the search
	// conservatively did not start. Report.Detail carries diagnostics.
	ReasonUndetermined Reason = "undetermined"

	// ReasonExhausted: the generator drained without a hit.
	ReasonExhausted Reason = "space-exhausted"

	// ReasonInterrupted: cancellation was observed between candidates.
	ReasonInterrupted Reason = "interrupted"
)

// Report summarizes a finished run.
type Report struct {
	// Outcome is the terminal state the run reached. Empty when the
	// run aborted with a RunError before reaching a terminal state.
	Outcome State

	// Reason explains the outcome.
	Reason Reason

	// Detail carries diagnostics for undetermined outcomes.
	Detail string

	// Password is the recovered password, set only on success.
	Password string

	// Checked counts verifier invocations: rejections, anomalies, and
	// the successful attempt.
	Checked uint64

	// Skipped counts candidates the ledger already held; the verifier
	// was never invoked for them.
	Skipped uint64

	// Anomalies counts attempts that failed unexpectedly.
	// Always a subset of Checked.
	Anomalies uint64

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Rate returns the verification throughput in attempts per second.
//
// ok is false when the figure would be meaningless: nothing was checked,
// or the run finished faster than minRateElapsed.
func (r Report) Rate() (perSecond float64, ok bool) {
	if r.Checked == 0 || r.Elapsed < minRateElapsed {
		return 0, false
	}
	return float64(r.Checked) / r.Elapsed.Seconds(), true
}
