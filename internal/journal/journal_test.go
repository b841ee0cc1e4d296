package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpen_CreatesFileAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("journal file missing after Open: %v", err)
	}
	for _, table := range []string{"runs", "outcomes"} {
		var name string
		if err := j.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name); err != nil {
			t.Errorf("table %q missing: %v", table, err)
		}
	}
}

func TestOpen_ReopenKeepsConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for pass := 0; pass < 3; pass++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() pass %d failed: %v", pass, err)
		}
		if err := j.verifyPragma("journal_mode", "wal"); err != nil {
			t.Errorf("pass %d: %v", pass, err)
		}
		j.Close()
	}
}

func TestOpen_UncreatablePath(t *testing.T) {
	if _, err := Open("/nonexistent/dir/journal.db"); err == nil {
		t.Error("expected error for uncreatable path, got nil")
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	// A database stamped by a newer build must be refused, not migrated
	// downward.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open raw database: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("stamp version: %v", err)
	}
	db.Close()

	_, err = Open(path)
	if err == nil {
		t.Fatal("expected error for newer schema version, got nil")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("error = %q, want mention of newer schema", err)
	}
}

func TestClose_WithoutConnection(t *testing.T) {
	j := &Journal{}
	if err := j.Close(); err != nil {
		t.Errorf("Close() without a connection: %v", err)
	}
}

func TestOpen_Configuration(t *testing.T) {
	j := openTestJournal(t)

	// journal_mode reads back as its name; numeric pragmas read back
	// numeric (synchronous NORMAL = 1, foreign_keys ON = 1).
	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
	} {
		if err := j.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}

	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

// Write tests

func TestWriteRun_RoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	run := RunRecord{
		ID:          "run-1",
		Identity:    "bundle.zip",
		Path:        "/srv/jobs/bundle.zip",
		Fingerprint: "e3b0c44298fc1c14",
		Mode:        "templated",
		StartedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	if err := j.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	runs, err := j.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != run.ID {
		t.Errorf("ID = %q, want %q", got.ID, run.ID)
	}
	if got.Identity != run.Identity {
		t.Errorf("Identity = %q, want %q", got.Identity, run.Identity)
	}
	if got.Path != run.Path {
		t.Errorf("Path = %q, want %q", got.Path, run.Path)
	}
	if got.Fingerprint != run.Fingerprint {
		t.Errorf("Fingerprint = %q, want %q", got.Fingerprint, run.Fingerprint)
	}
	if got.Mode != run.Mode {
		t.Errorf("Mode = %q, want %q", got.Mode, run.Mode)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}

	// No outcome written yet: the run reads as interrupted.
	if !got.Interrupted() {
		t.Error("run without outcome should report Interrupted()")
	}
	if got.Outcome != nil {
		t.Errorf("Outcome = %+v, want nil", got.Outcome)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	run := testRun("run-1", "bundle.zip", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	for i := 0; i < 2; i++ {
		if err := j.WriteRun(ctx, run); err != nil {
			t.Fatalf("WriteRun() write %d failed: %v", i, err)
		}
	}

	n, err := j.count(ctx, "runs")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("runs count = %d, want 1 (duplicate ID should be ignored)", n)
	}
}

func TestWriteOutcome_RoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	run := testRun("run-1", "bundle.zip", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	if err := j.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	o := OutcomeRecord{
		RunID:      "run-1",
		Outcome:    "success",
		Reason:     "found",
		Checked:    37,
		Skipped:    12,
		Anomalies:  1,
		Elapsed:    90 * time.Second,
		FinishedAt: time.Date(2026, 3, 14, 9, 31, 30, 0, time.UTC),
	}
	if err := j.WriteOutcome(ctx, o); err != nil {
		t.Fatalf("WriteOutcome() failed: %v", err)
	}

	runs, err := j.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.Interrupted() {
		t.Fatal("run with outcome should not report Interrupted()")
	}
	if got.Outcome.RunID != o.RunID {
		t.Errorf("Outcome.RunID = %q, want %q", got.Outcome.RunID, o.RunID)
	}
	if got.Outcome.Outcome != o.Outcome {
		t.Errorf("Outcome.Outcome = %q, want %q", got.Outcome.Outcome, o.Outcome)
	}
	if got.Outcome.Reason != o.Reason {
		t.Errorf("Outcome.Reason = %q, want %q", got.Outcome.Reason, o.Reason)
	}
	if got.Outcome.Checked != o.Checked {
		t.Errorf("Outcome.Checked = %d, want %d", got.Outcome.Checked, o.Checked)
	}
	if got.Outcome.Skipped != o.Skipped {
		t.Errorf("Outcome.Skipped = %d, want %d", got.Outcome.Skipped, o.Skipped)
	}
	if got.Outcome.Anomalies != o.Anomalies {
		t.Errorf("Outcome.Anomalies = %d, want %d", got.Outcome.Anomalies, o.Anomalies)
	}
	if got.Outcome.Elapsed != o.Elapsed {
		t.Errorf("Outcome.Elapsed = %v, want %v", got.Outcome.Elapsed, o.Elapsed)
	}
	if !got.Outcome.FinishedAt.Equal(o.FinishedAt) {
		t.Errorf("Outcome.FinishedAt = %v, want %v", got.Outcome.FinishedAt, o.FinishedAt)
	}
}

func TestWriteOutcome_Idempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	run := testRun("run-1", "bundle.zip", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	if err := j.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	first := OutcomeRecord{
		RunID:      "run-1",
		Outcome:    "exhausted",
		Reason:     "space-exhausted",
		FinishedAt: time.Date(2026, 3, 14, 9, 31, 0, 0, time.UTC),
	}
	if err := j.WriteOutcome(ctx, first); err != nil {
		t.Fatalf("first WriteOutcome() failed: %v", err)
	}

	// Second write for the same run is silently ignored
	second := first
	second.Outcome = "success"
	if err := j.WriteOutcome(ctx, second); err != nil {
		t.Fatalf("second WriteOutcome() failed: %v", err)
	}

	runs, err := j.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs[0].Outcome.Outcome != "exhausted" {
		t.Errorf("Outcome = %q, want first write %q to win", runs[0].Outcome.Outcome, "exhausted")
	}
}

func TestWriteOutcome_RequiresRun(t *testing.T) {
	j := openTestJournal(t)

	o := OutcomeRecord{
		RunID:      "nonexistent",
		Outcome:    "success",
		Reason:     "found",
		FinishedAt: time.Now(),
	}
	err := j.WriteOutcome(context.Background(), o)
	if err == nil {
		t.Error("expected foreign key constraint violation, got nil")
	}
}

// Read tests

func TestListRuns_Empty(t *testing.T) {
	j := openTestJournal(t)

	runs, err := j.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	// Should return empty slice, not nil
	if runs == nil {
		t.Error("runs is nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}

func TestListRuns_OrderedByStartThenID(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	// Insert out of order; same started_at for run-b/run-a to exercise
	// the id tie-break.
	for _, run := range []RunRecord{
		testRun("run-c", "bundle.zip", base.Add(2*time.Minute)),
		testRun("run-b", "bundle.zip", base),
		testRun("run-a", "bundle.zip", base),
	} {
		if err := j.WriteRun(ctx, run); err != nil {
			t.Fatalf("WriteRun(%q) failed: %v", run.ID, err)
		}
	}

	runs, err := j.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	want := []string{"run-a", "run-b", "run-c"}
	if len(runs) != len(want) {
		t.Fatalf("len(runs) = %d, want %d", len(runs), len(want))
	}
	for i, id := range want {
		if runs[i].ID != id {
			t.Errorf("runs[%d].ID = %q, want %q", i, runs[i].ID, id)
		}
	}
}

func TestListRunsFor_FiltersByIdentity(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, run := range []RunRecord{
		testRun("run-1", "bundle.zip", base),
		testRun("run-2", "notes.rar", base.Add(time.Minute)),
		testRun("run-3", "bundle.zip", base.Add(2*time.Minute)),
	} {
		if err := j.WriteRun(ctx, run); err != nil {
			t.Fatalf("WriteRun() %d failed: %v", i, err)
		}
	}

	runs, err := j.ListRunsFor(ctx, "bundle.zip")
	if err != nil {
		t.Fatalf("ListRunsFor() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-1" || runs[1].ID != "run-3" {
		t.Errorf("got IDs %q, %q, want run-1, run-3", runs[0].ID, runs[1].ID)
	}

	none, err := j.ListRunsFor(ctx, "other.zip")
	if err != nil {
		t.Fatalf("ListRunsFor() failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("runs for unknown identity = %v, want empty slice", none)
	}
}

func TestFingerprints_DistinctNonEmpty(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	records := []RunRecord{
		{ID: "run-1", Identity: "bundle.zip", Path: "/a/bundle.zip", Fingerprint: "fp-beta", Mode: "templated", StartedAt: base},
		{ID: "run-2", Identity: "bundle.zip", Path: "/a/bundle.zip", Fingerprint: "fp-beta", Mode: "templated", StartedAt: base.Add(time.Minute)},
		{ID: "run-3", Identity: "bundle.zip", Path: "/b/bundle.zip", Fingerprint: "fp-alpha", Mode: "exhaustive", StartedAt: base.Add(2 * time.Minute)},
		{ID: "run-4", Identity: "bundle.zip", Path: "/c/bundle.zip", Fingerprint: "", Mode: "templated", StartedAt: base.Add(3 * time.Minute)},
	}
	for _, run := range records {
		if err := j.WriteRun(ctx, run); err != nil {
			t.Fatalf("WriteRun(%q) failed: %v", run.ID, err)
		}
	}

	fps, err := j.Fingerprints(ctx, "bundle.zip")
	if err != nil {
		t.Fatalf("Fingerprints() failed: %v", err)
	}

	want := []string{"fp-alpha", "fp-beta"}
	if len(fps) != len(want) {
		t.Fatalf("fingerprints = %v, want %v", fps, want)
	}
	for i := range want {
		if fps[i] != want[i] {
			t.Errorf("fingerprints[%d] = %q, want %q", i, fps[i], want[i])
		}
	}
}

func TestConflictingIdentities(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	records := []RunRecord{
		// Two distinct contents behind one name: conflict.
		{ID: "run-1", Identity: "bundle.zip", Path: "/a/bundle.zip", Fingerprint: "fp-1", Mode: "templated", StartedAt: base},
		{ID: "run-2", Identity: "bundle.zip", Path: "/b/bundle.zip", Fingerprint: "fp-2", Mode: "templated", StartedAt: base.Add(time.Minute)},
		// Same content twice: no conflict.
		{ID: "run-3", Identity: "notes.rar", Path: "/a/notes.rar", Fingerprint: "fp-3", Mode: "exhaustive", StartedAt: base.Add(2 * time.Minute)},
		{ID: "run-4", Identity: "notes.rar", Path: "/a/notes.rar", Fingerprint: "fp-3", Mode: "exhaustive", StartedAt: base.Add(3 * time.Minute)},
		// Unreadable fingerprint never counts.
		{ID: "run-5", Identity: "misc.zip", Path: "/a/misc.zip", Fingerprint: "", Mode: "templated", StartedAt: base.Add(4 * time.Minute)},
		{ID: "run-6", Identity: "misc.zip", Path: "/b/misc.zip", Fingerprint: "fp-4", Mode: "templated", StartedAt: base.Add(5 * time.Minute)},
	}
	for _, run := range records {
		if err := j.WriteRun(ctx, run); err != nil {
			t.Fatalf("WriteRun(%q) failed: %v", run.ID, err)
		}
	}

	conflicts, err := j.ConflictingIdentities(ctx)
	if err != nil {
		t.Fatalf("ConflictingIdentities() failed: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0] != "bundle.zip" {
		t.Errorf("conflicts = %v, want [bundle.zip]", conflicts)
	}
}

// ID generator tests

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if len(id) != 36 {
			t.Fatalf("id %q has length %d, want 36", id, len(id))
		}
		if id[14] != '7' {
			t.Fatalf("id %q is not version 7", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

// Helper functions

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func testRun(id, identity string, startedAt time.Time) RunRecord {
	return RunRecord{
		ID:          id,
		Identity:    identity,
		Path:        "/srv/jobs/" + identity,
		Fingerprint: "fp-" + id,
		Mode:        "templated",
		StartedAt:   startedAt,
	}
}
