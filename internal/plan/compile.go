package plan

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tumbler/internal/gen"
)

// CompileError is a plan problem pinned to a field and, when the source
// is available, a position in it.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	msg := e.Field + ": " + e.Message
	if !e.Pos.IsValid() {
		return msg
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
}

// invalid builds the CompileError for a field that cannot stand.
func invalid(field string, pos token.Pos, format string, args ...any) *CompileError {
	return &CompileError{Field: field, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// CompileFile reads and compiles a plan from a CUE file.
func CompileFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	ctx := cuecontext.New()
	return Compile(ctx.CompileBytes(data, cue.Filename(path)))
}

// Compile parses a CUE value into a Plan. The value is the plan struct
// itself:
//
//	p, err := plan.Compile(ctx.CompileString(`mode: "templated", bases: ["admin"]`))
//
// Structural problems, including a mode/vocabulary combination that
// cannot generate, come back as *CompileError pointing at the offending
// field. Vocabulary tokens are NFC-normalized during parsing so ledger
// keys never depend on how the plan file encoded them.
func Compile(v cue.Value) (*Plan, error) {
	if err := v.Err(); err != nil {
		return nil, wrapCUE(err)
	}

	modeVal := v.LookupPath(cue.ParsePath("mode"))
	if !modeVal.Exists() {
		return nil, invalid("mode", v.Pos(), "mode is required")
	}
	mode, err := modeVal.String()
	if err != nil {
		return nil, wrapCUE(err)
	}
	switch gen.Mode(mode) {
	case gen.ModeTemplated, gen.ModeExhaustive:
	default:
		return nil, invalid("mode", modeVal.Pos(),
			"unknown mode %q (want %q or %q)", mode, gen.ModeTemplated, gen.ModeExhaustive)
	}

	p := &Plan{Mode: mode}
	if p.Bases, err = parseTokens(v, "bases"); err != nil {
		return nil, err
	}
	if p.Prefixes, err = parseTokens(v, "prefixes"); err != nil {
		return nil, err
	}
	if p.Suffixes, err = parseTokens(v, "suffixes"); err != nil {
		return nil, err
	}

	maxVal := v.LookupPath(cue.ParsePath("maxLength"))
	if maxVal.Exists() {
		n, err := maxVal.Int64()
		if err != nil {
			return nil, wrapCUE(err)
		}
		if n < 1 {
			return nil, invalid("maxLength", maxVal.Pos(), "maxLength must be at least 1, got %d", n)
		}
		p.MaxLength = int(n)
	}

	if targetVal := v.LookupPath(cue.ParsePath("target")); targetVal.Exists() {
		if p.Target, err = targetVal.String(); err != nil {
			return nil, wrapCUE(err)
		}
	}

	// A plan that can never generate is a plan error, caught here with a
	// position rather than downstream without one.
	switch gen.Mode(p.Mode) {
	case gen.ModeTemplated:
		if len(p.Bases) == 0 {
			return nil, invalid("bases", v.Pos(), "templated mode requires at least one base word")
		}
	case gen.ModeExhaustive:
		if !maxVal.Exists() {
			return nil, invalid("maxLength", v.Pos(), "maxLength is required in exhaustive mode")
		}
	}

	return p, nil
}

// parseTokens reads an optional list-of-strings field.
func parseTokens(v cue.Value, field string) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, wrapCUE(err)
	}

	var tokens []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, wrapCUE(err)
		}
		tokens = append(tokens, s)
	}
	return NormalizeTokens(tokens), nil
}

// wrapCUE turns a raw CUE evaluation error into a CompileError carrying
// the first reported position, when one exists.
func wrapCUE(err error) error {
	if err == nil {
		return nil
	}
	for _, e := range cueerrors.Errors(err) {
		ce := &CompileError{Field: "cue", Message: e.Error()}
		if pos := cueerrors.Positions(e); len(pos) > 0 {
			ce.Pos = pos[0]
		}
		return ce
	}
	return err
}
