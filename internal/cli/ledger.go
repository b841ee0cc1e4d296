package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/tumbler/internal/ledger"
)

// LedgerResult reports the durable recovery state for one identity.
type LedgerResult struct {
	Identity    string `json:"identity"`
	Dir         string `json:"dir"`
	FileEntries *int   `json:"file_entries,omitempty"`
	KVEntries   *int   `json:"leveldb_entries,omitempty"`
	Found       bool   `json:"found"`
	Password    string `json:"password,omitempty"`
}

// LedgerOptions holds flags for the ledger command.
type LedgerOptions struct {
	*RootOptions
	Target    string
	LedgerDir string
}

// NewLedgerCommand creates the ledger command.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the checkpoint state recorded for a document",
		Long: `Inspect the checkpoint state recorded for a document.

Reports how many candidates each ledger backend has already ruled out and
whether a password has been recovered. The target does not need to exist;
only its base name keys the ledger.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "document path or base name")
	cmd.Flags().StringVar(&opts.LedgerDir, "ledger-dir", defaultLedgerDir, "directory holding checkpoint ledgers")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runLedger(opts *LedgerOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	identity := ledger.Identity(opts.Target)
	stats, err := ledger.Collect(opts.LedgerDir, identity)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger state", err)
	}

	result := LedgerResult{
		Identity: identity,
		Dir:      opts.LedgerDir,
		Found:    stats.Found,
		Password: stats.Password,
	}
	if stats.FileExists {
		result.FileEntries = &stats.FileEntries
	}
	if stats.KVExists {
		result.KVEntries = &stats.KVEntries
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	renderLedgerText(formatter, result)
	return nil
}

func renderLedgerText(formatter *OutputFormatter, res LedgerResult) {
	p := message.NewPrinter(language.English)
	w := formatter.Writer

	p.Fprintf(w, "Ledger state for %s (in %s)\n", res.Identity, res.Dir)
	switch {
	case res.FileEntries == nil && res.KVEntries == nil:
		fmt.Fprintln(w, "  no candidates recorded")
	default:
		if res.FileEntries != nil {
			p.Fprintf(w, "  file ledger: %d candidates ruled out\n", *res.FileEntries)
		}
		if res.KVEntries != nil {
			p.Fprintf(w, "  leveldb ledger: %d candidates ruled out\n", *res.KVEntries)
		}
	}
	if res.Found {
		p.Fprintf(w, "  password recovered: %q\n", res.Password)
	}
}
