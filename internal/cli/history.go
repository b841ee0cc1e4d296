package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/tumbler/internal/journal"
	"github.com/roach88/tumbler/internal/ledger"
)

// RunSummary is one journal row shaped for output.
type RunSummary struct {
	ID          string `json:"id"`
	Identity    string `json:"identity"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Mode        string `json:"mode"`
	StartedAt   string `json:"started_at"`
	Outcome     string `json:"outcome"`
	Reason      string `json:"reason,omitempty"`
	Checked     int64  `json:"checked"`
	Skipped     int64  `json:"skipped"`
	Anomalies   int64  `json:"anomalies"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	Interrupted bool   `json:"interrupted"`
}

// HistoryResult is the history command's output payload.
type HistoryResult struct {
	Runs []RunSummary `json:"runs"`

	// Conflicts lists identities recorded with more than one content
	// fingerprint: different files sharing a base name share a ledger,
	// and their resume sets are unreliable.
	Conflicts []string `json:"conflicts,omitempty"`
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Target    string
	LedgerDir string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List recorded runs, newest last.

A run without an outcome row was interrupted: killed, crashed, or still
in flight. Identities recorded with more than one content fingerprint
are flagged; they name different files sharing a base name, whose
ledgers have been mixed together.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "restrict to one document (path or base name)")
	cmd.Flags().StringVar(&opts.LedgerDir, "ledger-dir", defaultLedgerDir, "directory holding checkpoint ledgers")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	// Opening the journal would create it; an inspection command should
	// leave an untouched directory untouched.
	path := filepath.Join(opts.LedgerDir, journalFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return outputHistory(formatter, HistoryResult{Runs: []RunSummary{}})
	} else if err != nil {
		return WrapExitError(ExitCommandError, "failed to stat journal", err)
	}

	jnl, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer func() {
		if closeErr := jnl.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var runs []journal.Run
	if opts.Target != "" {
		runs, err = jnl.ListRunsFor(ctx, ledger.Identity(opts.Target))
	} else {
		runs, err = jnl.ListRuns(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	conflicts, err := jnl.ConflictingIdentities(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to check fingerprints", err)
	}

	result := HistoryResult{Runs: make([]RunSummary, 0, len(runs)), Conflicts: conflicts}
	for _, r := range runs {
		result.Runs = append(result.Runs, summarize(r))
	}

	return outputHistory(formatter, result)
}

func summarize(r journal.Run) RunSummary {
	s := RunSummary{
		ID:          r.ID,
		Identity:    r.Identity,
		Path:        r.Path,
		Fingerprint: r.Fingerprint,
		Mode:        r.Mode,
		StartedAt:   r.StartedAt.Format(time.RFC3339),
		Interrupted: r.Interrupted(),
	}
	if r.Outcome != nil {
		s.Outcome = r.Outcome.Outcome
		s.Reason = r.Outcome.Reason
		s.Checked = r.Outcome.Checked
		s.Skipped = r.Outcome.Skipped
		s.Anomalies = r.Outcome.Anomalies
		s.ElapsedMS = r.Outcome.Elapsed.Milliseconds()
	} else {
		s.Outcome = "interrupted"
	}
	return s
}

func outputHistory(formatter *OutputFormatter, result HistoryResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	p := message.NewPrinter(language.English)
	for _, r := range result.Runs {
		if r.Interrupted {
			p.Fprintf(w, "%s  %s  %s  %s  interrupted\n",
				r.StartedAt, r.Identity, r.Mode, shortID(r.ID))
			continue
		}
		p.Fprintf(w, "%s  %s  %s  %s  %s/%s  checked %d  skipped %d\n",
			r.StartedAt, r.Identity, r.Mode, shortID(r.ID),
			r.Outcome, r.Reason, r.Checked, r.Skipped)
	}

	for _, identity := range result.Conflicts {
		fmt.Fprintf(w, "warning: %s was run against files with different contents; its ledger mixes their histories\n", identity)
	}
	return nil
}

// shortID abbreviates a run ID for the text listing; JSON carries it whole.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
