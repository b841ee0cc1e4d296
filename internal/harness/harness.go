package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/roach88/tumbler/internal/gen"
	"github.com/roach88/tumbler/internal/ledger"
	"github.com/roach88/tumbler/internal/loop"
	"github.com/roach88/tumbler/internal/testutil"
)

// scenarioEpoch is the fixed start time every scenario clock begins at.
// With a one-second step and a runner that reads the clock twice, every
// trace reports an elapsed time of exactly one second.
var scenarioEpoch = time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

// scenarioIdentity is the ledger key scenarios run under. The ledger
// lives in a throwaway directory, so the name only has to be stable.
const scenarioIdentity = "scenario-target"

// Run executes a scenario against the real verification loop.
//
// Everything but the verifier is production code: the generator emits the
// plan's candidates in canonical order, a real file ledger in a fresh
// temporary directory persists rejections, and loop.Runner makes every
// skip/record/stop decision. The scripted verifier and a stepped fake
// clock make the resulting trace byte-stable.
//
// The returned error covers scenario infrastructure only (an invalid
// plan, an unusable temp dir). Expectation mismatches never error; they
// mark the Result failed with one message per mismatch.
func Run(scenario *Scenario) (*Result, error) {
	spec := gen.Spec{
		Mode:      gen.Mode(scenario.Plan.Mode),
		Bases:     scenario.Plan.Bases,
		Prefixes:  scenario.Plan.Prefixes,
		Suffixes:  scenario.Plan.Suffixes,
		MaxLength: scenario.Plan.MaxLength,
		Charset:   gen.Charset(scenario.Plan.Charset),
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("scenario plan does not generate: %w", err)
	}

	dir, err := os.MkdirTemp("", "tumbler-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario ledger dir: %w", err)
	}
	defer os.RemoveAll(dir)

	led, err := preloadLedger(dir, scenario.Ledger)
	if err != nil {
		return nil, err
	}
	defer led.Close()

	verifier := &testutil.ScriptedVerifier{
		Password:     scenario.Verifier.Password,
		Encrypted:    !scenario.Verifier.Unencrypted,
		Undetermined: scenario.Verifier.Undetermined,
		Anomalous:    scenario.Verifier.Anomalous,
	}

	// The loop logs through the default slogger; scenario runs keep it
	// out of test output.
	prevLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer slog.SetDefault(prevLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := NewResult()
	recorder := &traceRecorder{
		result:      result,
		cancel:      cancel,
		cancelAfter: scenario.CancelAfter,
	}

	clock := testutil.NewDeterministicClock(scenarioEpoch, time.Second)
	runner := loop.New(led, verifier,
		loop.WithObserver(recorder),
		loop.WithNow(clock.Now),
		loop.WithSuccessWriter(func(password string) error {
			result.Recorded = password
			return nil
		}),
	)

	filter := gen.NewFilter()
	report, err := runner.Run(ctx, filter.Wrap(spec.Candidates()))
	if err != nil {
		// The scripted collaborators never fail, so a run error here is
		// scenario infrastructure (a broken temp ledger), not behavior
		// under test.
		return nil, fmt.Errorf("loop aborted: %w", err)
	}

	result.Report = report
	result.Ledgered = led.Count()

	evaluateExpect(scenario, result)
	return result, nil
}

// preloadLedger creates the scenario's file ledger holding the preload
// entries. The file backend answers Contains from the entries present at
// open, so preloads are written with a first handle and the ledger is
// reopened for the run, exactly as a resumed process would see it.
func preloadLedger(dir string, entries []string) (ledger.Ledger, error) {
	seed, err := ledger.OpenFile(dir, scenarioIdentity)
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario ledger: %w", err)
	}
	for _, entry := range entries {
		if err := seed.Append(entry); err != nil {
			seed.Close()
			return nil, fmt.Errorf("failed to preload ledger entry %q: %w", entry, err)
		}
	}
	if err := seed.Close(); err != nil {
		return nil, fmt.Errorf("failed to close seed ledger: %w", err)
	}

	led, err := ledger.OpenFile(dir, scenarioIdentity)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen scenario ledger: %w", err)
	}
	return led, nil
}

// evaluateExpect compares the terminal report against the expect clause.
func evaluateExpect(scenario *Scenario, result *Result) {
	expect := scenario.Expect
	report := result.Report

	if string(report.Outcome) != expect.Outcome {
		result.AddError(fmt.Sprintf("outcome: got %q, want %q", report.Outcome, expect.Outcome))
	}
	if string(report.Reason) != expect.Reason {
		result.AddError(fmt.Sprintf("reason: got %q, want %q", report.Reason, expect.Reason))
	}
	if expect.DetailContains != "" && !strings.Contains(report.Detail, expect.DetailContains) {
		result.AddError(fmt.Sprintf("detail: %q does not contain %q", report.Detail, expect.DetailContains))
	}
	if report.Password != expect.Password {
		result.AddError(fmt.Sprintf("password: got %q, want %q", report.Password, expect.Password))
	}
	if report.Password != result.Recorded {
		result.AddError(fmt.Sprintf("recorded password: got %q, want %q", result.Recorded, report.Password))
	}
	if report.Checked != expect.Checked {
		result.AddError(fmt.Sprintf("checked: got %d, want %d", report.Checked, expect.Checked))
	}
	if report.Skipped != expect.Skipped {
		result.AddError(fmt.Sprintf("skipped: got %d, want %d", report.Skipped, expect.Skipped))
	}
	if report.Anomalies != expect.Anomalies {
		result.AddError(fmt.Sprintf("anomalies: got %d, want %d", report.Anomalies, expect.Anomalies))
	}
	if expect.Ledgered != nil && result.Ledgered != *expect.Ledgered {
		result.AddError(fmt.Sprintf("ledgered: got %d, want %d", result.Ledgered, *expect.Ledgered))
	}
}

// traceRecorder captures loop events and arms scenario cancellation.
type traceRecorder struct {
	result      *Result
	cancel      context.CancelFunc
	cancelAfter int
	attempts    int
}

func (r *traceRecorder) OnTransition(from, to loop.State) {
	r.result.Trace = append(r.result.Trace, TraceEvent{
		Type: "transition",
		From: string(from),
		To:   string(to),
	})
}

func (r *traceRecorder) OnAttempt(a loop.Attempt) {
	ev := TraceEvent{
		Type:      "attempt",
		Seq:       a.Seq,
		Candidate: a.Candidate,
		Verdict:   string(a.Verdict),
	}
	if a.Detail != nil {
		ev.Detail = a.Detail.Error()
	}
	r.result.Trace = append(r.result.Trace, ev)

	r.attempts++
	if r.cancelAfter > 0 && r.attempts == r.cancelAfter {
		// The loop observes the cancellation when it pulls the next
		// candidate; that candidate is left unverified and unrecorded.
		r.cancel()
	}
}
