package gen

import "iter"

// Candidates returns the spec's full candidate stream, lazily. The stream is
// restartable and deterministic for a given spec. It may contain duplicate
// strings when different generation paths render the same concatenation;
// wrap it in a Filter before consuming. An invalid spec yields nothing.
func (s Spec) Candidates() iter.Seq[string] {
	switch s.Mode {
	case ModeTemplated:
		return s.templated()
	case ModeExhaustive:
		return s.exhaustive()
	default:
		return func(yield func(string) bool) {}
	}
}

// templated crosses the deduplicated variant sets of prefixes, bases and
// suffixes, suffix varying fastest.
func (s Spec) templated() iter.Seq[string] {
	return func(yield func(string) bool) {
		prefixes := expandAll(orBlank(s.Prefixes))
		bases := expandAll(s.Bases)
		suffixes := expandAll(orBlank(s.Suffixes))
		for _, p := range prefixes {
			for _, b := range bases {
				for _, sfx := range suffixes {
					if !yield(p + b + sfx) {
						return
					}
				}
			}
		}
	}
}

// exhaustive enumerates charset bodies of every feasible length for every
// (prefix variant, suffix variant) pair. The first body character is
// restricted to alphabetic charset members exactly when the prefix is empty.
// In the pure submode (no affixes at all) the charset already supplies both
// cases, so bodies are emitted without the case-expansion pass.
func (s Spec) exhaustive() iter.Seq[string] {
	return func(yield func(string) bool) {
		cs := s.charset()
		prefixes := expandAll(orBlank(s.Prefixes))
		suffixes := expandAll(orBlank(s.Suffixes))
		pure := len(prefixes) == 1 && prefixes[0] == "" &&
			len(suffixes) == 1 && suffixes[0] == ""

		for _, p := range prefixes {
			for _, sfx := range suffixes {
				used := len(p) + len(sfx)
				if used > s.MaxLength {
					continue
				}
				if used == s.MaxLength {
					if !yield(p + sfx) {
						return
					}
					continue
				}
				for l := 1; l <= s.MaxLength-used; l++ {
					for body := range enumerate(cs, l, p == "") {
						if pure {
							if !yield(body) {
								return
							}
							continue
						}
						for v := range Expand(body) {
							if !yield(p + v + sfx) {
								return
							}
						}
					}
				}
			}
		}
	}
}

// enumerate yields every string of length n over cs in odometer order, the
// rightmost position varying fastest. With alphaFirst set, the first
// position ranges only over the alphabetic members of cs; an empty first
// alphabet yields nothing.
func enumerate(cs Charset, n int, alphaFirst bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		first := cs
		if alphaFirst {
			first = cs.Alpha()
		}
		if n < 1 || len(cs) == 0 || len(first) == 0 {
			return
		}

		idx := make([]int, n)
		buf := make([]byte, n)
		buf[0] = first[0]
		for i := 1; i < n; i++ {
			buf[i] = cs[0]
		}

		for {
			if !yield(string(buf)) {
				return
			}
			i := n - 1
			for ; i >= 0; i-- {
				set := cs
				if i == 0 {
					set = first
				}
				idx[i]++
				if idx[i] < len(set) {
					buf[i] = set[idx[i]]
					break
				}
				idx[i] = 0
				buf[i] = set[0]
			}
			if i < 0 {
				return
			}
		}
	}
}
