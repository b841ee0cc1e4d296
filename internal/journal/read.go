package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run couples a run record with its outcome, if any.
type Run struct {
	RunRecord

	// Outcome is nil when the run never reached a terminal state:
	// interrupted, killed, or still in flight.
	Outcome *OutcomeRecord
}

// Interrupted reports whether the run has no recorded outcome.
func (r Run) Interrupted() bool {
	return r.Outcome == nil
}

const selectRuns = `
	SELECT r.id, r.identity, r.path, r.fingerprint, r.mode, r.started_at,
	       o.run_id, o.outcome, o.reason, o.checked, o.skipped, o.anomalies,
	       o.elapsed_ms, o.finished_at
	FROM runs r
	LEFT JOIN outcomes o ON o.run_id = r.id
`

// ListRuns returns every recorded run.
// Results are ordered deterministically: started_at ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, selectRuns+`
		ORDER BY r.started_at ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ListRunsFor returns the recorded runs for one document identity,
// ordered like ListRuns.
func (j *Journal) ListRunsFor(ctx context.Context, identity string) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, selectRuns+`
		WHERE r.identity = ?
		ORDER BY r.started_at ASC, r.id COLLATE BINARY ASC
	`, identity)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			r         Run
			startedMS int64

			runID, outcome, reason                             sql.NullString
			checked, skipped, anomalies, elapsedMS, finishedMS sql.NullInt64
		)
		if err := rows.Scan(
			&r.ID, &r.Identity, &r.Path, &r.Fingerprint, &r.Mode, &startedMS,
			&runID, &outcome, &reason, &checked, &skipped, &anomalies,
			&elapsedMS, &finishedMS,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMS).UTC()

		if runID.Valid {
			r.Outcome = &OutcomeRecord{
				RunID:      runID.String,
				Outcome:    outcome.String,
				Reason:     reason.String,
				Checked:    checked.Int64,
				Skipped:    skipped.Int64,
				Anomalies:  anomalies.Int64,
				Elapsed:    time.Duration(elapsedMS.Int64) * time.Millisecond,
				FinishedAt: time.UnixMilli(finishedMS.Int64).UTC(),
			}
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// Fingerprints returns the distinct non-empty fingerprints recorded for
// one identity, sorted.
func (j *Journal) Fingerprints(ctx context.Context, identity string) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT DISTINCT fingerprint FROM runs
		WHERE identity = ? AND fingerprint != ''
		ORDER BY fingerprint ASC
	`, identity)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// ConflictingIdentities returns identities recorded with more than one
// distinct fingerprint. The ledger is keyed by base name, so two
// different files sharing a name share a ledger and poison each other's
// resume sets; the history command surfaces these.
func (j *Journal) ConflictingIdentities(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT identity FROM runs
		WHERE fingerprint != ''
		GROUP BY identity
		HAVING COUNT(DISTINCT fingerprint) > 1
		ORDER BY identity ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query conflicting identities: %w", err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}
