// Package verify is the decryption-oracle boundary: it answers whether a
// document is password protected and whether one candidate unlocks it.
// Backends exist for ZIP and RAR archives; the loop depends only on the
// Verifier contract and the three-way Result, never on backend internals.
package verify

// Kind tags the outcome of one verification attempt.
type Kind int

const (
	// WrongPassword is the expected, high-frequency rejection.
	WrongPassword Kind = iota
	// Success means the candidate decrypted the document.
	Success
	// UnexpectedFailure is anything that is neither success nor a
	// recognizable rejection; Detail carries the cause for diagnostics.
	UnexpectedFailure
)

func (k Kind) String() string {
	switch k {
	case WrongPassword:
		return "wrong-password"
	case Success:
		return "success"
	case UnexpectedFailure:
		return "unexpected-failure"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of Verify. Detail is set only for
// UnexpectedFailure.
type Result struct {
	Kind   Kind
	Detail error
}

// Verifier is the decryption oracle for one target document. An instance
// acquires its document at construction and holds it until Close; the
// verification loop releases it on every exit path. Implementations need
// not be safe for concurrent use; the loop is single-threaded.
type Verifier interface {
	// IsEncrypted reports whether the document is password protected. An
	// error means encryption could not be confirmed; callers treat that as
	// not confirmed and stop before generating any candidates.
	IsEncrypted() (bool, error)

	// Verify attempts to unlock the document with the candidate.
	Verify(candidate string) Result

	Close() error
}
