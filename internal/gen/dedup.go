package gen

import (
	"iter"

	mapset "github.com/deckarep/golang-set/v2"
)

// Filter suppresses candidates already emitted during the current run, so a
// string produced by several generation paths reaches the consumer once.
//
// The filter retains every distinct candidate it has passed, so memory grows
// with the distinct-candidate count. That set is the dominant memory cost of
// exhaustive runs at larger maximum lengths; Spec.Count makes the size
// visible before a run commits to it. Not safe for concurrent use; the
// pipeline is single-threaded.
type Filter struct {
	seen    mapset.Set[string]
	dropped uint64
}

func NewFilter() *Filter {
	return &Filter{seen: mapset.NewThreadUnsafeSet[string]()}
}

// Wrap returns seq with repeated strings dropped.
func (f *Filter) Wrap(seq iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for c := range seq {
			if !f.seen.Add(c) {
				f.dropped++
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Distinct reports how many distinct candidates have passed through.
func (f *Filter) Distinct() int {
	return f.seen.Cardinality()
}

// Dropped reports how many duplicate emissions were suppressed.
func (f *Filter) Dropped() uint64 {
	return f.dropped
}
