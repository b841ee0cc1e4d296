// Package gen implements the candidate generation engine.
//
// Generation is a lazy pipeline: a Spec describes the candidate space, the
// generator walks it as an iter.Seq[string], and a Filter suppresses strings
// that multiple generation paths produce independently. Nothing materializes
// the stream itself; memory is bounded by the variant sets of the configured
// tokens plus the filter's distinct-candidate set, and the latter is the
// dominant cost for exhaustive runs at larger maximum lengths.
//
// Two modes share the pipeline:
//
// Templated: every configured prefix, base and suffix expands to its case
// variants; candidates are the concatenated cross product of the three
// variant sets.
//
// Exhaustive: candidates are all strings over the charset up to a maximum
// length, optionally wrapped with prefix/suffix variants. With no affixes
// configured, enumeration and case variation coincide and the separate
// expansion pass is skipped.
//
// Emission order is deterministic for a given Spec, which keeps golden
// traces stable, but order is not part of the contract and callers must not
// depend on it.
package gen
