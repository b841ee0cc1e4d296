package gen

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Mode selects the generation strategy.
type Mode string

const (
	// ModeTemplated crosses prefix/base/suffix case variants.
	ModeTemplated Mode = "templated"
	// ModeExhaustive enumerates all charset strings up to MaxLength.
	ModeExhaustive Mode = "exhaustive"
)

// Spec describes one run's candidate space. Construct it once per run and
// treat it as immutable; generation never mutates it.
//
// Nil or empty Prefixes/Suffixes mean "no affix" and behave as {""}. Charset
// defaults to DefaultCharset. Bases is consulted only in templated mode,
// MaxLength and Charset only in exhaustive mode.
type Spec struct {
	Mode      Mode
	Bases     []string
	Prefixes  []string
	Suffixes  []string
	MaxLength int
	Charset   Charset
}

// Validate reports whether the spec describes a generable candidate space.
// Candidates yields nothing for an invalid spec, so callers that want a
// diagnostic must Validate first.
func (s Spec) Validate() error {
	switch s.Mode {
	case ModeTemplated:
		if len(s.Bases) == 0 {
			return fmt.Errorf("templated mode requires at least one base word")
		}
	case ModeExhaustive:
		if s.MaxLength < 1 {
			return fmt.Errorf("exhaustive mode requires max length >= 1, got %d", s.MaxLength)
		}
		if len(s.charset()) == 0 {
			return fmt.Errorf("exhaustive mode requires a non-empty charset")
		}
	case "":
		return fmt.Errorf("generation mode not set")
	default:
		return fmt.Errorf("unknown generation mode %q", s.Mode)
	}
	return nil
}

func (s Spec) charset() Charset {
	if s.Charset == "" {
		return DefaultCharset
	}
	return s.Charset
}

// orBlank substitutes the single empty affix for an unset affix list.
func orBlank(tokens []string) []string {
	if len(tokens) == 0 {
		return []string{""}
	}
	return tokens
}

// expandAll expands every token and deduplicates the union of the variants,
// preserving first-seen order. Distinct tokens can expand to overlapping
// variant sets (a token with no caseable runes expands to a singleton), so
// the set union is what the cross product must range over.
func expandAll(tokens []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		for v := range Expand(t) {
			if seen.Add(v) {
				out = append(out, v)
			}
		}
	}
	return out
}
