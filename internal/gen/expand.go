package gen

import (
	"iter"
	"unicode"
)

// Expand returns the case variants of token as a lazy, restartable sequence.
//
// Each caseable rune (one whose upper and lower forms differ) is an
// independent binary choice; every other rune is held fixed. A token with k
// caseable runes yields exactly 2^k distinct strings, all-lower first, the
// last caseable position varying fastest. The empty token yields exactly the
// empty string. Total over any finite input; no error conditions.
func Expand(token string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(token)
		lower := make([]rune, len(runes))
		upper := make([]rune, len(runes))
		var caseable []int
		for i, r := range runes {
			lower[i], upper[i] = unicode.ToLower(r), unicode.ToUpper(r)
			if lower[i] != upper[i] {
				caseable = append(caseable, i)
			}
		}

		buf := make([]rune, len(runes))
		copy(buf, runes)
		for _, p := range caseable {
			buf[p] = lower[p]
		}

		for {
			if !yield(string(buf)) {
				return
			}
			// Binary increment over the caseable positions, lower=0 upper=1,
			// last position least significant.
			i := len(caseable) - 1
			for ; i >= 0; i-- {
				p := caseable[i]
				if buf[p] == lower[p] {
					buf[p] = upper[p]
					break
				}
				buf[p] = lower[p]
			}
			if i < 0 {
				return
			}
		}
	}
}
