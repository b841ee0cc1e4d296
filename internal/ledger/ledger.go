package ledger

import "fmt"

const (
	checkedSuffix = ".checked"
	foundSuffix   = ".found"
	kvSuffix      = ".ldb"
)

// Ledger is the durable set of candidates already tested and rejected for
// one document. An instance owns its storage exclusively for the duration of
// a run; the verification loop is the only writer.
type Ledger interface {
	// Contains reports membership against the entries known at open time.
	// Entries appended during the current run need not be visible, since
	// the generation pipeline never repeats a candidate within a run.
	Contains(candidate string) bool

	// Append durably records one tested-and-failed candidate. The entry is
	// synced before Append returns; appending a candidate twice is
	// permitted and harmless.
	Append(candidate string) error

	// Count reports the number of recorded entries, loaded plus appended
	// this run.
	Count() int

	Close() error
}

// Backend selects the ledger storage engine.
type Backend string

const (
	// BackendFile is the canonical newline-file ledger.
	BackendFile Backend = "file"
	// BackendLevelDB trades the in-memory checked set for point lookups.
	BackendLevelDB Backend = "leveldb"
)

// Open opens (creating if absent) the ledger for identity under dir.
// An empty backend means BackendFile.
func Open(backend Backend, dir, identity string) (Ledger, error) {
	switch backend {
	case BackendFile, "":
		return OpenFile(dir, identity)
	case BackendLevelDB:
		return OpenKV(dir, identity)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", backend)
	}
}
