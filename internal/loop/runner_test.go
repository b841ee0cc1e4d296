package loop

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tumbler/internal/ledger"
	"github.com/roach88/tumbler/internal/testutil"
	"github.com/roach88/tumbler/internal/verify"
)

func stream(items ...string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range items {
			if !yield(s) {
				return
			}
		}
	}
}

// countingStream additionally reports how many candidates were pulled.
func countingStream(pulled *int, items ...string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range items {
			*pulled++
			if !yield(s) {
				return
			}
		}
	}
}

func openTestLedger(t *testing.T) *ledger.FileLedger {
	t.Helper()
	led, err := ledger.OpenFile(t.TempDir(), "doc.zip")
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })
	return led
}

func TestRunner_SuccessStopsPulling(t *testing.T) {
	led := openTestLedger(t)

	var cands []string
	for i := 1; i <= 500; i++ {
		cands = append(cands, fmt.Sprintf("guess-%03d", i))
	}
	v := &testutil.ScriptedVerifier{Password: "guess-037", Encrypted: true}

	var recorded string
	pulled := 0
	r := New(led, v, WithSuccessWriter(func(pw string) error {
		recorded = pw
		return nil
	}))

	report, err := r.Run(context.Background(), countingStream(&pulled, cands...))
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, report.Outcome)
	assert.Equal(t, ReasonFound, report.Reason)
	assert.Equal(t, "guess-037", report.Password)
	assert.Equal(t, uint64(37), report.Checked)
	assert.Equal(t, uint64(0), report.Skipped)
	assert.Equal(t, uint64(0), report.Anomalies)
	assert.Equal(t, "guess-037", recorded, "success writer receives the password")
	assert.Equal(t, 37, pulled, "no candidates pulled past the hit")
	assert.Len(t, v.Calls, 37)
	assert.Equal(t, 36, led.Count(), "failures recorded, the hit is not")
}

func TestRunner_SkipsLedgeredCandidates(t *testing.T) {
	dir := t.TempDir()
	led, err := ledger.OpenFile(dir, "doc.zip")
	require.NoError(t, err)
	require.NoError(t, led.Append("aa"))
	require.NoError(t, led.Append("cc"))
	require.NoError(t, led.Close())

	// Reopen so the recorded candidates land in the loaded set.
	led, err = ledger.OpenFile(dir, "doc.zip")
	require.NoError(t, err)
	defer led.Close()

	v := &testutil.ScriptedVerifier{Encrypted: true}
	r := New(led, v)

	report, err := r.Run(context.Background(), stream("aa", "bb", "cc", "dd"))
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, report.Outcome)
	assert.Equal(t, ReasonExhausted, report.Reason)
	assert.Equal(t, uint64(2), report.Skipped)
	assert.Equal(t, uint64(2), report.Checked)
	assert.Equal(t, []string{"bb", "dd"}, v.Calls,
		"verifier never invoked for ledgered candidates")
}

func TestRunner_NotEncryptedShortCircuit(t *testing.T) {
	led := openTestLedger(t)
	v := &testutil.ScriptedVerifier{Encrypted: false}

	pulled := 0
	r := New(led, v)
	report, err := r.Run(context.Background(), countingStream(&pulled, "aa", "bb"))
	require.NoError(t, err, "an unprotected target is an outcome, not an error")

	assert.Equal(t, StateExhausted, report.Outcome)
	assert.Equal(t, ReasonNotEncrypted, report.Reason)
	assert.Zero(t, report.Checked)
	assert.Zero(t, pulled, "generator untouched")
	assert.Empty(t, v.Calls)
}

func TestRunner_EncryptionCheckUndetermined(t *testing.T) {
	led := openTestLedger(t)
	v := &testutil.ScriptedVerifier{Undetermined: "container unreadable"}

	r := New(led, v)
	report, err := r.Run(context.Background(), stream("aa"))
	require.NoError(t, err, "an unconfirmed check is an outcome, not an error")

	assert.Equal(t, StateExhausted, report.Outcome)
	assert.Equal(t, ReasonUndetermined, report.Reason)
	assert.Contains(t, report.Detail, "container unreadable")
	assert.Empty(t, v.Calls)
}

// cancelAfterAttempts cancels the run's context once the given attempt
// sequence number has been observed.
type cancelAfterAttempts struct {
	cancel context.CancelFunc
	after  int64
}

func (c *cancelAfterAttempts) OnTransition(from, to State) {}

func (c *cancelAfterAttempts) OnAttempt(a Attempt) {
	if a.Seq >= c.after {
		c.cancel()
	}
}

func TestRunner_CancellationBetweenCandidates(t *testing.T) {
	led := openTestLedger(t)
	v := &testutil.ScriptedVerifier{Encrypted: true}

	var cands []string
	for i := 1; i <= 100; i++ {
		cands = append(cands, fmt.Sprintf("guess-%03d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(led, v, WithObserver(&cancelAfterAttempts{cancel: cancel, after: 10}))
	report, err := r.Run(ctx, stream(cands...))
	require.NoError(t, err, "cancellation is an outcome, not an error")

	assert.Equal(t, StateCancelled, report.Outcome)
	assert.Equal(t, ReasonInterrupted, report.Reason)
	assert.Equal(t, uint64(10), report.Checked)
	assert.Len(t, v.Calls, 10,
		"the in-flight candidate is not verified after the signal")
	assert.Equal(t, 10, led.Count(), "all completed appends durable")
}

func TestRunner_AnomalyDoesNotAbort(t *testing.T) {
	led := openTestLedger(t)
	v := &testutil.ScriptedVerifier{
		Password:  "cc",
		Encrypted: true,
		Anomalous: []string{"bb"},
	}

	r := New(led, v)
	report, err := r.Run(context.Background(), stream("aa", "bb", "cc"))
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, report.Outcome)
	assert.Equal(t, "cc", report.Password)
	assert.Equal(t, uint64(3), report.Checked)
	assert.Equal(t, uint64(1), report.Anomalies)
	assert.Equal(t, 2, led.Count(),
		"rejected and anomalous candidates both recorded")
}

// brokenLedger fails every append, as a full or revoked volume would.
type brokenLedger struct{}

func (brokenLedger) Contains(string) bool { return false }
func (brokenLedger) Append(string) error  { return errors.New("disk full") }
func (brokenLedger) Count() int           { return 0 }
func (brokenLedger) Close() error         { return nil }

func TestRunner_LedgerWriteFailureAborts(t *testing.T) {
	v := &testutil.ScriptedVerifier{Encrypted: true}

	pulled := 0
	r := New(brokenLedger{}, v)
	report, err := r.Run(context.Background(), countingStream(&pulled, "aa", "bb"))

	require.Error(t, err)
	assert.True(t, IsLedgerIO(err))
	assert.False(t, IsFatalInput(err))
	assert.Empty(t, report.Outcome, "no terminal state was reached")
	assert.Equal(t, uint64(1), report.Checked, "partial counts preserved")
	assert.Equal(t, 1, pulled, "aborts before pulling further candidates")
}

func TestRunner_SuccessRecordWriteFailure(t *testing.T) {
	led := openTestLedger(t)
	v := &testutil.ScriptedVerifier{Password: "bb", Encrypted: true}

	r := New(led, v, WithSuccessWriter(func(string) error {
		return errors.New("disk full")
	}))
	report, err := r.Run(context.Background(), stream("aa", "bb"))

	require.Error(t, err)
	assert.True(t, IsLedgerIO(err))
	assert.Equal(t, StateSuccess, report.Outcome, "the recovery itself stands")
	assert.Equal(t, "bb", report.Password, "password still surfaced to the caller")
}

// weirdVerifier returns a verdict outside the contract.
type weirdVerifier struct{}

func (weirdVerifier) IsEncrypted() (bool, error) { return true, nil }
func (weirdVerifier) Verify(string) verify.Result {
	return verify.Result{Kind: verify.Kind(99)}
}
func (weirdVerifier) Close() error { return nil }

func TestRunner_UnrecognizedVerdictHandledAsAnomaly(t *testing.T) {
	led := openTestLedger(t)

	r := New(led, weirdVerifier{})
	report, err := r.Run(context.Background(), stream("aa"))
	require.NoError(t, err)

	assert.Equal(t, StateExhausted, report.Outcome)
	assert.Equal(t, uint64(1), report.Anomalies)
	assert.Equal(t, 1, led.Count(), "the candidate still counts as tried")
}

// transitionRecorder captures state transitions in order.
type transitionRecorder struct {
	transitions []string
}

func (r *transitionRecorder) OnTransition(from, to State) {
	r.transitions = append(r.transitions, string(from)+">"+string(to))
}

func (r *transitionRecorder) OnAttempt(Attempt) {}

func TestRunner_ObserverSeesTransitions(t *testing.T) {
	led := openTestLedger(t)
	v := &testutil.ScriptedVerifier{Password: "aa", Encrypted: true}

	rec := &transitionRecorder{}
	r := New(led, v, WithObserver(rec))
	_, err := r.Run(context.Background(), stream("aa"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"init>check-encrypted",
		"check-encrypted>iterating",
		"iterating>success",
	}, rec.transitions)
}

func TestRunner_DeterministicElapsed(t *testing.T) {
	led := openTestLedger(t)
	v := &testutil.ScriptedVerifier{Encrypted: true}

	clock := testutil.NewDeterministicClock(
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), 2*time.Second)
	r := New(led, v, WithNow(clock.Now))

	report, err := r.Run(context.Background(), stream("aa"))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, report.Elapsed)
	rate, ok := report.Rate()
	require.True(t, ok)
	assert.InDelta(t, 0.5, rate, 1e-9)
}
