package gen

// Charset is an ordered set of single-byte characters for the exhaustive
// enumerator. Order determines enumeration order. Charsets are ASCII by
// construction; lengths measured in bytes and characters agree.
type Charset string

const (
	lowercase   = "abcdefghijklmnopqrstuvwxyz"
	uppercase   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits      = "0123456789"
	punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// DefaultCharset is the exhaustive-mode character set: ASCII letters, digits
// and punctuation, in that order. 94 characters, no whitespace, no controls.
const DefaultCharset Charset = lowercase + uppercase + digits + punctuation

// Alpha returns the alphabetic members of the charset, order preserved.
func (c Charset) Alpha() Charset {
	out := make([]byte, 0, len(c))
	for i := 0; i < len(c); i++ {
		if isAlpha(c[i]) {
			out = append(out, c[i])
		}
	}
	return Charset(out)
}

func isAlpha(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}
