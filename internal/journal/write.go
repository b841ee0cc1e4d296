package journal

import (
	"context"
	"fmt"
	"time"
)

// RunRecord describes one started run. Written at loop start, before
// any candidate is tried.
type RunRecord struct {
	ID          string
	Identity    string
	Path        string
	Fingerprint string
	Mode        string
	StartedAt   time.Time
}

// OutcomeRecord describes how a run ended. Written only when the loop
// reaches a terminal state; a run row without one was interrupted.
//
// The recovered password is deliberately not stored here. The success
// record is its single durable home.
type OutcomeRecord struct {
	RunID      string
	Outcome    string
	Reason     string
	Checked    int64
	Skipped    int64
	Anomalies  int64
	Elapsed    time.Duration
	FinishedAt time.Time
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations still return errors.
func (j *Journal) WriteRun(ctx context.Context, run RunRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, identity, path, fingerprint, mode, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Identity,
		run.Path,
		run.Fingerprint,
		run.Mode,
		run.StartedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// WriteOutcome inserts an outcome record.
// Uses ON CONFLICT DO NOTHING for idempotency - each run can carry
// exactly one outcome (PRIMARY KEY on run_id), and a second write for
// the same run is silently ignored.
//
// Note: the run referenced by RunID must exist (foreign key constraint).
func (j *Journal) WriteOutcome(ctx context.Context, o OutcomeRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO outcomes
		(run_id, outcome, reason, checked, skipped, anomalies, elapsed_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		o.RunID,
		o.Outcome,
		o.Reason,
		o.Checked,
		o.Skipped,
		o.Anomalies,
		o.Elapsed.Milliseconds(),
		o.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}

	return nil
}
