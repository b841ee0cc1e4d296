// Package plan loads attack plans: CUE files describing the candidate
// space to search and, optionally, the target they were written for.
//
// A plan is the declarative face of gen.Spec:
//
//	mode:      "templated"
//	bases:     ["unccu", "baritone", "admin"]
//	suffixes:  ["", "2021", "202!", "131", "13!", "1819", "1819!"]
//
// Compilation uses the CUE SDK's Go API directly (not a CLI subprocess)
// and reports failures with source positions, so a bad plan points at
// the offending field rather than at the command line.
package plan

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tumbler/internal/gen"
)

// Plan is a compiled, normalized attack plan.
type Plan struct {
	// Mode is the generation strategy: "templated" or "exhaustive".
	Mode string

	// Bases, Prefixes, and Suffixes are the vocabulary lists, already
	// NFC-normalized. Empty lists mean "no affix".
	Bases    []string
	Prefixes []string
	Suffixes []string

	// MaxLength bounds exhaustive enumeration. Zero in templated mode.
	MaxLength int

	// Target optionally names the document the plan was written for.
	// Flags override it.
	Target string
}

// Spec converts the plan into a generation spec.
func (p *Plan) Spec() gen.Spec {
	return gen.Spec{
		Mode:      gen.Mode(p.Mode),
		Bases:     p.Bases,
		Prefixes:  p.Prefixes,
		Suffixes:  p.Suffixes,
		MaxLength: p.MaxLength,
	}
}

// NormalizeTokens returns the NFC normalization of every token.
//
// Canonically equivalent inputs (precomposed vs combining accents) must
// generate identical candidate sets and ledger keys, so every vocabulary
// token is normalized once on the way in: here for plan files, and by
// the CLI for flag-supplied tokens.
func NormalizeTokens(tokens []string) []string {
	if tokens == nil {
		return nil
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = norm.NFC.String(t)
	}
	return out
}
