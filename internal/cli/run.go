package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/tumbler/internal/gen"
	"github.com/roach88/tumbler/internal/journal"
	"github.com/roach88/tumbler/internal/ledger"
	"github.com/roach88/tumbler/internal/loop"
	"github.com/roach88/tumbler/internal/plan"
	"github.com/roach88/tumbler/internal/verify"
)

// journalFile is the run-history database inside the ledger directory.
const journalFile = "journal.db"

// defaultLedgerDir mirrors the directory name searches have always used
// for their checkpoint files, so existing ledgers keep working.
const defaultLedgerDir = "checked_files"

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Target        string
	PlanFile      string
	Mode          string
	Bases         []string
	Prefixes      []string
	Suffixes      []string
	MaxLength     int
	LedgerDir     string
	LedgerBackend string
	Container     string
	NoProgress    bool

	// RunIDs allows overriding the journal run-ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs journal.IDGenerator
}

// RunResult is the run command's output payload.
type RunResult struct {
	Target     string  `json:"target"`
	Identity   string  `json:"identity"`
	Outcome    string  `json:"outcome"`
	Reason     string  `json:"reason"`
	Detail     string  `json:"detail,omitempty"`
	Password   string  `json:"password,omitempty"`
	Checked    uint64  `json:"checked"`
	Skipped    uint64  `json:"skipped"`
	Anomalies  uint64  `json:"anomalies"`
	Duplicates uint64  `json:"duplicates"`
	ElapsedMS  int64   `json:"elapsed_ms"`
	Rate       float64 `json:"rate,omitempty"` // attempts per second, omitted when not meaningful
}

// reasonAlreadyFound reports a password recovered by an earlier run; the
// search itself never starts.
const reasonAlreadyFound = "already-found"

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search for the password of an encrypted document",
		Long: `Search for the password of an encrypted document.

Candidates come either from a CUE plan file or from vocabulary flags:
a templated search crosses the case variants of --prefix/--base/--suffix,
an exhaustive search enumerates every charset string up to --max-length.
Every failed candidate is recorded in the checkpoint ledger, so an
interrupted or exhausted run never re-tests a candidate when repeated
with a wider plan. Press Ctrl-C to stop; progress is kept.

Exit codes:
  0 - password found (now or by an earlier run)
  1 - search ended without success (exhausted, cancelled, not encrypted)
  2 - command error (missing target, unloadable plan, unopenable ledger)

Examples:
  tumbler run --target ledger.zip --base unccu --base baritone --suffix 2021 --suffix '202!'
  tumbler run --target ledger.zip --plan attack.cue
  tumbler run --target backup.rar --max-length 4 --ledger-backend leveldb`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "path to the encrypted document")
	cmd.Flags().StringVar(&opts.PlanFile, "plan", "", "CUE attack-plan file")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "generation mode (templated|exhaustive); inferred from flags when unset")
	cmd.Flags().StringArrayVar(&opts.Bases, "base", nil, "base word (repeatable, templated mode)")
	cmd.Flags().StringArrayVar(&opts.Prefixes, "prefix", nil, "prefix token (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Suffixes, "suffix", nil, "suffix token (repeatable)")
	cmd.Flags().IntVar(&opts.MaxLength, "max-length", 0, "maximum candidate length (exhaustive mode)")
	cmd.Flags().StringVar(&opts.LedgerDir, "ledger-dir", defaultLedgerDir, "directory holding checkpoint ledgers")
	cmd.Flags().StringVar(&opts.LedgerBackend, "ledger-backend", "file", "ledger storage backend (file|leveldb)")
	cmd.Flags().StringVar(&opts.Container, "container", "", "document container format (zip|rar); detected from the extension when unset")
	cmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false, "suppress the progress bar")

	return cmd
}

// resolvePlan produces the attack plan: compiled from --plan when given
// (--target still overrides the plan's target), assembled from vocabulary
// flags otherwise. Flag tokens get the same NFC normalization plan files do,
// so ledger keys never depend on how the shell encoded the input.
func (o *RunOptions) resolvePlan() (*plan.Plan, error) {
	if o.PlanFile != "" {
		p, err := plan.CompileFile(o.PlanFile)
		if err != nil {
			return nil, err
		}
		if o.Target != "" {
			p.Target = o.Target
		}
		return p, nil
	}

	p := &plan.Plan{
		Mode:      o.Mode,
		Bases:     plan.NormalizeTokens(o.Bases),
		Prefixes:  plan.NormalizeTokens(o.Prefixes),
		Suffixes:  plan.NormalizeTokens(o.Suffixes),
		MaxLength: o.MaxLength,
		Target:    o.Target,
	}
	if p.Mode == "" {
		switch {
		case len(p.Bases) > 0:
			p.Mode = string(gen.ModeTemplated)
		case p.MaxLength > 0:
			p.Mode = string(gen.ModeExhaustive)
		default:
			return nil, fmt.Errorf("no candidate plan: pass --plan, or --base for a templated search, or --max-length for an exhaustive one")
		}
	}
	return p, nil
}

func runSearch(opts *RunOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	pl, err := opts.resolvePlan()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load plan", err)
	}

	target := pl.Target
	if target == "" {
		return NewExitError(ExitCommandError, "no target: pass --target or set it in the plan")
	}

	spec := pl.Spec()
	if err := spec.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid generation spec", err)
	}

	identity := ledger.Identity(target)

	// A password recovered by an earlier run makes the search moot.
	if pw, ok, err := ledger.ReadSuccess(opts.LedgerDir, identity); err != nil {
		return WrapExitError(ExitCommandError, "failed to read success record", err)
	} else if ok {
		slog.Info("password already recovered by an earlier run", "identity", identity)
		return outputRun(formatter, RunResult{
			Target:   target,
			Identity: identity,
			Outcome:  string(loop.StateSuccess),
			Reason:   reasonAlreadyFound,
			Password: pw,
		})
	}

	verifier, err := verify.Open(target, verify.Format(opts.Container))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open target", err)
	}
	defer func() {
		if closeErr := verifier.Close(); closeErr != nil {
			slog.Error("error closing target", "error", closeErr)
		}
	}()

	led, err := ledger.Open(ledger.Backend(opts.LedgerBackend), opts.LedgerDir, identity)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open checkpoint ledger", err)
	}
	defer func() {
		if closeErr := led.Close(); closeErr != nil {
			slog.Error("error closing ledger", "error", closeErr)
		}
	}()

	// The fingerprint only feeds the journal's shared-ledger warning;
	// an unreadable target already failed above.
	fingerprint := ""
	if fp, err := ledger.Fingerprint(target); err != nil {
		slog.Warn("could not fingerprint target", "error", err)
	} else {
		fingerprint = fp
	}

	// Setup signal handling for graceful cancellation.
	// Use command's context if available (for testing), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping after the candidate in flight", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	// The journal is bookkeeping, never checkpoint state: when it cannot
	// be opened or written the search still runs, it just won't show up
	// in history.
	var jnl *journal.Journal
	if j, err := journal.Open(filepath.Join(opts.LedgerDir, journalFile)); err != nil {
		slog.Warn("run journal unavailable", "error", err)
	} else {
		jnl = j
		defer func() {
			if closeErr := jnl.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
	}

	idGen := opts.RunIDs
	if idGen == nil {
		idGen = journal.UUIDv7Generator{}
	}
	runID := idGen.Generate()
	if jnl != nil {
		rec := journal.RunRecord{
			ID:          runID,
			Identity:    identity,
			Path:        target,
			Fingerprint: fingerprint,
			Mode:        string(spec.Mode),
			StartedAt:   time.Now(),
		}
		if err := jnl.WriteRun(ctx, rec); err != nil {
			slog.Warn("could not journal the run", "error", err)
		}
	}

	total, exact := spec.Count()
	slog.Info("search starting",
		"target", target,
		"identity", identity,
		"mode", spec.Mode,
		"backend", opts.LedgerBackend,
		"resume_entries", led.Count(),
		"candidates", total,
		"count_exact", exact,
	)

	runnerOpts := []loop.Option{
		loop.WithSuccessWriter(func(password string) error {
			return ledger.WriteSuccess(opts.LedgerDir, identity, password)
		}),
	}

	var bar *progressbar.ProgressBar
	if opts.Format == "text" && !opts.NoProgress {
		if exact && total <= math.MaxInt64 {
			bar = progressbar.Default(int64(total), "testing")
		} else {
			// Saturated estimate: a determinate bar would lie.
			bar = progressbar.Default(-1, "testing")
		}
		runnerOpts = append(runnerOpts, loop.WithObserver(barObserver{bar: bar}))
	}

	filter := gen.NewFilter()
	runner := loop.New(led, verifier, runnerOpts...)
	report, runErr := runner.Run(ctx, filter.Wrap(spec.Candidates()))
	if bar != nil {
		_ = bar.Finish()
	}

	if jnl != nil && runErr == nil {
		out := journal.OutcomeRecord{
			RunID:      runID,
			Outcome:    string(report.Outcome),
			Reason:     string(report.Reason),
			Checked:    int64(report.Checked),
			Skipped:    int64(report.Skipped),
			Anomalies:  int64(report.Anomalies),
			Elapsed:    report.Elapsed,
			FinishedAt: time.Now(),
		}
		if err := jnl.WriteOutcome(ctx, out); err != nil {
			slog.Warn("could not journal the outcome", "error", err)
		}
	}

	if runErr != nil {
		// A found password survives even a failed success-record write.
		if report.Password != "" {
			slog.Error("password recovered but its record could not be written",
				"password", report.Password, "error", runErr)
			_ = outputRun(formatter, resultFrom(target, identity, report, filter))
		}
		return WrapExitError(ExitFailure, "search aborted", runErr)
	}

	return outputRun(formatter, resultFrom(target, identity, report, filter))
}

func resultFrom(target, identity string, report loop.Report, filter *gen.Filter) RunResult {
	res := RunResult{
		Target:     target,
		Identity:   identity,
		Outcome:    string(report.Outcome),
		Reason:     string(report.Reason),
		Detail:     report.Detail,
		Password:   report.Password,
		Checked:    report.Checked,
		Skipped:    report.Skipped,
		Anomalies:  report.Anomalies,
		Duplicates: filter.Dropped(),
		ElapsedMS:  report.Elapsed.Milliseconds(),
	}
	if rate, ok := report.Rate(); ok {
		res.Rate = rate
	}
	return res
}

// outputRun renders the result and maps non-success outcomes to exit code 1.
func outputRun(formatter *OutputFormatter, res RunResult) error {
	if formatter.Format == "json" {
		if err := formatter.Success(res); err != nil {
			return err
		}
	} else {
		renderRunText(formatter.Writer, res)
	}

	if res.Outcome == string(loop.StateSuccess) {
		return nil
	}
	return NewExitError(ExitFailure, failureMessage(res))
}

func renderRunText(w io.Writer, res RunResult) {
	p := message.NewPrinter(language.English)

	switch {
	case res.Reason == reasonAlreadyFound:
		p.Fprintf(w, "Password already recovered for %s: %q\n", res.Identity, res.Password)
		p.Fprintf(w, "(Recorded in an earlier run; delete the success record to search again.)\n")
		return
	case res.Outcome == string(loop.StateSuccess):
		p.Fprintf(w, "Success! The correct password is: %q\n", res.Password)
	default:
		p.Fprintf(w, "%s\n", failureMessage(res))
	}

	p.Fprintf(w, "  checked %d  skipped %d  anomalies %d  duplicates %d\n",
		res.Checked, res.Skipped, res.Anomalies, res.Duplicates)
	if res.Rate > 0 {
		p.Fprintf(w, "  elapsed %s (%.1f/s)\n", time.Duration(res.ElapsedMS)*time.Millisecond, res.Rate)
	} else {
		p.Fprintf(w, "  elapsed %s\n", time.Duration(res.ElapsedMS)*time.Millisecond)
	}
}

func failureMessage(res RunResult) string {
	switch loop.Reason(res.Reason) {
	case loop.ReasonExhausted:
		return "password not found: search space exhausted"
	case loop.ReasonNotEncrypted:
		return "target is not encrypted; nothing to recover"
	case loop.ReasonUndetermined:
		if res.Detail != "" {
			return fmt.Sprintf("could not confirm the target is encrypted: %s", res.Detail)
		}
		return "could not confirm the target is encrypted"
	case loop.ReasonInterrupted:
		return "search interrupted; progress saved, re-run to resume"
	default:
		return fmt.Sprintf("search ended without success (%s)", res.Reason)
	}
}

// barObserver feeds loop attempts into the progress bar. Skipped
// candidates advance it too: they consume search space.
type barObserver struct {
	bar *progressbar.ProgressBar
}

func (o barObserver) OnTransition(from, to loop.State) {}

func (o barObserver) OnAttempt(a loop.Attempt) {
	_ = o.bar.Add(1)
}
