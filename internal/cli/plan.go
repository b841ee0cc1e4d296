package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/tumbler/internal/plan"
)

// PlanResult summarizes a compiled attack plan.
type PlanResult struct {
	File       string   `json:"file"`
	Mode       string   `json:"mode"`
	Target     string   `json:"target,omitempty"`
	Bases      []string `json:"bases,omitempty"`
	Prefixes   []string `json:"prefixes,omitempty"`
	Suffixes   []string `json:"suffixes,omitempty"`
	MaxLength  int      `json:"max_length,omitempty"`
	Candidates uint64   `json:"candidates"`
	CountExact bool     `json:"count_exact"`
}

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	File string
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compile an attack plan and preview its candidate space",
		Long: `Compile a CUE attack plan and preview its candidate space.

Reports the generation mode, the normalized vocabulary, and the size of
the raw candidate stream, so the cost of a run is visible before any
verifier is opened. A plan that does not compile exits 2 and points at
the offending field.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CUE attack-plan file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runPlan(opts *PlanOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	pl, err := plan.CompileFile(opts.File)
	if err != nil {
		var compileErr *plan.CompileError
		if errors.As(err, &compileErr) {
			_ = formatter.Error("PLAN_INVALID", compileErr.Error(), compileErr.Field)
			return NewExitError(ExitCommandError, compileErr.Error())
		}
		return WrapExitError(ExitCommandError, "failed to compile plan", err)
	}

	spec := pl.Spec()
	if err := spec.Validate(); err != nil {
		_ = formatter.Error("PLAN_INVALID", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid plan", err)
	}

	total, exact := spec.Count()
	result := PlanResult{
		File:       opts.File,
		Mode:       pl.Mode,
		Target:     pl.Target,
		Bases:      pl.Bases,
		Prefixes:   pl.Prefixes,
		Suffixes:   pl.Suffixes,
		MaxLength:  pl.MaxLength,
		Candidates: total,
		CountExact: exact,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	renderPlanText(formatter, result)
	return nil
}

func renderPlanText(formatter *OutputFormatter, res PlanResult) {
	p := message.NewPrinter(language.English)
	w := formatter.Writer

	p.Fprintf(w, "Plan %s compiles\n", res.File)
	p.Fprintf(w, "  mode: %s\n", res.Mode)
	if res.Target != "" {
		p.Fprintf(w, "  target: %s\n", res.Target)
	}
	if len(res.Bases) > 0 {
		p.Fprintf(w, "  bases: %d\n", len(res.Bases))
	}
	if len(res.Prefixes) > 0 {
		p.Fprintf(w, "  prefixes: %d\n", len(res.Prefixes))
	}
	if len(res.Suffixes) > 0 {
		p.Fprintf(w, "  suffixes: %d\n", len(res.Suffixes))
	}
	if res.MaxLength > 0 {
		p.Fprintf(w, "  max length: %d\n", res.MaxLength)
	}
	if res.CountExact {
		p.Fprintf(w, "  candidates: %d\n", res.Candidates)
	} else {
		p.Fprintf(w, "  candidates: more than %d\n", res.Candidates)
	}

	if res.Mode == "exhaustive" && !res.CountExact {
		fmt.Fprintln(w, "  (count saturated; this space is not exhaustible in practice)")
	}
}
