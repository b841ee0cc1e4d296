package testutil

// FixedRunID generates the same run identifier every time.
//
// Unlike journal.UUIDv7Generator, which mints a fresh time-ordered UUID
// per run, this generator always returns the token it was built with, so
// journal rows written by command tests are byte-stable.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator returning id. If id is empty, Generate
// returns "run-00000000-0000-0000-0000-000000000001".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "run-00000000-0000-0000-0000-000000000001"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run identifier.
//
// Implements journal.IDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
