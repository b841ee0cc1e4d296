// Package loop drives a password search to a terminal state.
//
// The runner is the single consumer of the candidate stream: it pulls
// filtered candidates, skips the ones the checkpoint ledger already
// holds, hands the rest to the verifier, and records every failed
// attempt durably before moving on. It owns no policy about how
// candidates are produced (internal/gen) or persisted (internal/ledger);
// both collaborators arrive by injection and are released by the caller.
//
// State machine:
//
//	Init -> CheckEncrypted -> Iterating -> {Success, Exhausted, Cancelled}
//
// The three terminal states are final; the Report explains which one was
// reached and why. Infrastructure failures that abort the run before a
// terminal state (a checkpoint write that cannot complete, unusable
// inputs) surface as RunError values instead.
//
// All work happens on the caller's goroutine. Cancellation is
// cooperative: the runner checks the context between candidates and
// never verifies a candidate pulled after the signal was observed.
package loop
