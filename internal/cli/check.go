package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tumbler/internal/ledger"
	"github.com/roach88/tumbler/internal/verify"
)

// CheckResult holds the encryption probe outcome.
type CheckResult struct {
	Target    string `json:"target"`
	Identity  string `json:"identity"`
	Encrypted bool   `json:"encrypted"`
	Container string `json:"container"`
}

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Target    string
	Container string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe whether a document is password-protected",
		Long: `Probe whether a document is password-protected, without searching.

This is the same encryption check a run performs before generating any
candidate. An unencrypted target exits 1 so scripts can gate a run on it;
a target that cannot be probed at all exits 2.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "path to the document to probe")
	cmd.Flags().StringVar(&opts.Container, "container", "", "document container format (zip|rar); detected from the extension when unset")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	verifier, err := verify.Open(opts.Target, verify.Format(opts.Container))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open target", err)
	}
	defer func() {
		if closeErr := verifier.Close(); closeErr != nil {
			slog.Error("error closing target", "error", closeErr)
		}
	}()

	encrypted, err := verifier.IsEncrypted()
	if err != nil {
		return WrapExitError(ExitCommandError, "could not probe target", err)
	}

	// Open already resolved the format, so Detect cannot fail here.
	container, _ := verify.Detect(opts.Target, verify.Format(opts.Container))

	result := CheckResult{
		Target:    opts.Target,
		Identity:  ledger.Identity(opts.Target),
		Encrypted: encrypted,
		Container: string(container),
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if encrypted {
		fmt.Fprintf(formatter.Writer, "✓ %s is password-protected\n", result.Identity)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s is not password-protected\n", result.Identity)
	}

	if !encrypted {
		return NewExitError(ExitFailure, fmt.Sprintf("%s is not password-protected", result.Identity))
	}
	return nil
}
