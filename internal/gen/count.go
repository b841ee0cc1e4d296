package gen

import "math"

// Count returns the size of the raw candidate stream the spec emits, before
// cross-path deduplication collapses collisions, saturating at MaxUint64.
// exact is false when the arithmetic saturated; either way the figure is an
// upper bound on the number of distinct candidates. Templated counting
// shares the variant expansion with generation, so it costs no more than
// starting the stream does.
func (s Spec) Count() (n uint64, exact bool) {
	switch s.Mode {
	case ModeTemplated:
		return s.countTemplated()
	case ModeExhaustive:
		return s.countExhaustive()
	default:
		return 0, true
	}
}

func (s Spec) countTemplated() (uint64, bool) {
	n, ok := satMul(uint64(len(expandAll(orBlank(s.Prefixes)))), uint64(len(expandAll(s.Bases))))
	if !ok {
		return math.MaxUint64, false
	}
	n, ok = satMul(n, uint64(len(expandAll(orBlank(s.Suffixes)))))
	if !ok {
		return math.MaxUint64, false
	}
	return n, true
}

func (s Spec) countExhaustive() (uint64, bool) {
	cs := s.charset()
	prefixes := expandAll(orBlank(s.Prefixes))
	suffixes := expandAll(orBlank(s.Suffixes))
	pure := len(prefixes) == 1 && prefixes[0] == "" &&
		len(suffixes) == 1 && suffixes[0] == ""

	var total uint64
	var ok bool
	for _, p := range prefixes {
		for _, sfx := range suffixes {
			used := len(p) + len(sfx)
			if used > s.MaxLength {
				continue
			}
			if used == s.MaxLength {
				if total, ok = satAdd(total, 1); !ok {
					return math.MaxUint64, false
				}
				continue
			}

			first := cs
			if p == "" {
				first = cs.Alpha()
			}
			var firstW, restW uint64
			if pure {
				firstW, restW = uint64(len(first)), uint64(len(cs))
			} else {
				firstW, restW = expandedWeight(first), expandedWeight(cs)
			}

			term := firstW
			for l := 1; l <= s.MaxLength-used; l++ {
				if l > 1 {
					if term, ok = satMul(term, restW); !ok {
						return math.MaxUint64, false
					}
				}
				if total, ok = satAdd(total, term); !ok {
					return math.MaxUint64, false
				}
			}
		}
	}
	return total, true
}

// expandedWeight is the stream weight of one body position once bodies pass
// through case expansion: an alphabetic member contributes its two case
// variants, everything else contributes itself.
func expandedWeight(cs Charset) uint64 {
	var w uint64
	for i := 0; i < len(cs); i++ {
		if isAlpha(cs[i]) {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func satAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return math.MaxUint64, false
	}
	return a + b, true
}

func satMul(a, b uint64) (uint64, bool) {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64, false
	}
	return a * b, true
}
