package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions carries the global flags into every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// NewRootCommand assembles the tumbler command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tumbler",
		Short: "Tumbler - resumable password recovery for encrypted documents",
		Long: `Tumbler recovers an unknown password protecting an encrypted document by
generating candidate strings and testing each against the document, while a
durable checkpoint ledger guarantees no candidate is ever re-tested across
runs. Interrupt a search at any point and resume it later without losing or
repeating completed work.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be \"text\" or \"json\"", opts.Format)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(
		NewRunCommand(opts),
		NewCheckCommand(opts),
		NewPlanCommand(opts),
		NewLedgerCommand(opts),
		NewHistoryCommand(opts),
	)

	return cmd
}

func isValidFormat(format string) bool {
	switch format {
	case "text", "json":
		return true
	}
	return false
}
