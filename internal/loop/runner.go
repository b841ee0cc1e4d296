package loop

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/roach88/tumbler/internal/ledger"
	"github.com/roach88/tumbler/internal/verify"
)

// Runner drives one search over one target document.
//
// Construction injects the two collaborators the loop consults: the
// checkpoint ledger (exclusive owner of the resume state) and the
// verifier (exclusive owner of the target handle). The runner closes
// neither; the caller releases both on every exit path.
type Runner struct {
	ledger   ledger.Ledger
	verifier verify.Verifier
	clock    *Clock
	observer Observer
	success  func(password string) error
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver registers a lifecycle observer (progress rendering,
// harness traces).
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithSuccessWriter registers the durable success-record writer, invoked
// exactly once if the password is found, before Run returns. Without it
// the recovered password is carried only in the Report.
func WithSuccessWriter(w func(password string) error) Option {
	return func(r *Runner) { r.success = w }
}

// WithNow overrides the time source. Tests inject a deterministic clock
// so reported elapsed times are stable.
func WithNow(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner over an opened ledger and verifier.
func New(led ledger.Ledger, v verify.Verifier, opts ...Option) *Runner {
	r := &Runner{
		ledger:   led,
		verifier: v,
		clock:    NewClock(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clock returns the runner's logical clock.
func (r *Runner) Clock() *Clock {
	return r.clock
}

// Run pulls candidates until a terminal state is reached.
//
// The error return is reserved for run-aborting infrastructure failures
// (RunError). Every outcome the search itself produces, including
// cancellation and an encryption check that could not be confirmed, is a
// Report with a nil error. When a checkpoint write fails mid-run the
// returned Report carries the partial counts with an empty Outcome; when
// the success record cannot be written the Report still carries the
// recovered password alongside the error, so the caller can surface it.
//
// Must be called from exactly one goroutine. Every candidate append is
// durable before the next candidate is pulled, so an interruption at any
// point loses at most the attempt in flight.
func (r *Runner) Run(ctx context.Context, candidates iter.Seq[string]) (Report, error) {
	start := r.now()
	var checked, skipped, anomalies uint64

	finish := func(outcome State, reason Reason, detail, password string) Report {
		return Report{
			Outcome:   outcome,
			Reason:    reason,
			Detail:    detail,
			Password:  password,
			Checked:   checked,
			Skipped:   skipped,
			Anomalies: anomalies,
			Elapsed:   r.now().Sub(start),
		}
	}

	r.transition(StateInit, StateCheckEncrypted)
	encrypted, err := r.verifier.IsEncrypted()
	if err != nil {
		// Could not confirm the target is protected: conservatively
		// stop before generating anything.
		slog.Warn("encryption check failed", "error", err)
		r.transition(StateCheckEncrypted, StateExhausted)
		return finish(StateExhausted, ReasonUndetermined, err.Error(), ""), nil
	}
	if !encrypted {
		r.transition(StateCheckEncrypted, StateExhausted)
		return finish(StateExhausted, ReasonNotEncrypted, "", ""), nil
	}

	r.transition(StateCheckEncrypted, StateIterating)
	for candidate := range candidates {
		select {
		case <-ctx.Done():
			// The candidate just pulled is in flight and deliberately
			// not verified or recorded.
			r.transition(StateIterating, StateCancelled)
			return finish(StateCancelled, ReasonInterrupted, "", ""), nil
		default:
		}

		seq := r.clock.Next()

		if r.ledger.Contains(candidate) {
			skipped++
			r.attempt(Attempt{Seq: seq, Candidate: candidate, Verdict: VerdictSkipped})
			continue
		}

		res := r.verifier.Verify(candidate)
		checked++

		switch res.Kind {
		case verify.Success:
			r.attempt(Attempt{Seq: seq, Candidate: candidate, Verdict: VerdictFound})
			r.transition(StateIterating, StateSuccess)
			report := finish(StateSuccess, ReasonFound, "", candidate)
			if r.success != nil {
				if err := r.success(candidate); err != nil {
					return report, NewLedgerIO("record recovered password", err)
				}
			}
			return report, nil

		case verify.WrongPassword:
			slog.Debug("candidate rejected", "seq", seq, "candidate", candidate)
			r.attempt(Attempt{Seq: seq, Candidate: candidate, Verdict: VerdictRejected})
			if err := r.ledger.Append(candidate); err != nil {
				return finish("", "", "", ""), NewLedgerIO("record rejected candidate", err)
			}

		case verify.UnexpectedFailure:
			anomalies++
			slog.Warn("verifier anomaly",
				"seq", seq,
				"candidate", candidate,
				"error", res.Detail,
			)
			r.attempt(Attempt{Seq: seq, Candidate: candidate, Verdict: VerdictAnomalous, Detail: res.Detail})
			if err := r.ledger.Append(candidate); err != nil {
				return finish("", "", "", ""), NewLedgerIO("record anomalous candidate", err)
			}

		default:
			// A verdict outside the contract is handled like an
			// anomaly: the candidate was tried, record it, never abort.
			anomalies++
			detail := fmt.Errorf("unrecognized verifier verdict %d", res.Kind)
			slog.Warn("verifier anomaly",
				"seq", seq,
				"candidate", candidate,
				"error", detail,
			)
			r.attempt(Attempt{Seq: seq, Candidate: candidate, Verdict: VerdictAnomalous, Detail: detail})
			if err := r.ledger.Append(candidate); err != nil {
				return finish("", "", "", ""), NewLedgerIO("record anomalous candidate", err)
			}
		}
	}

	r.transition(StateIterating, StateExhausted)
	return finish(StateExhausted, ReasonExhausted, "", ""), nil
}

func (r *Runner) transition(from, to State) {
	slog.Debug("state transition", "from", from, "to", to)
	if r.observer != nil {
		r.observer.OnTransition(from, to)
	}
}

func (r *Runner) attempt(a Attempt) {
	if r.observer != nil {
		r.observer.OnAttempt(a)
	}
}
