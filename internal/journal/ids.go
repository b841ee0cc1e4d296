package journal

import "github.com/google/uuid"

// IDGenerator mints run identifiers. UUIDv7Generator serves production;
// tests substitute a fixed generator for stable rows.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator issues UUIDv7 run identifiers. The version-7 layout
// leads with a timestamp, so journal rows sort by creation time even
// across processes. Stateless; safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a fresh hyphenated UUIDv7. Panics only if the
// system's entropy source is broken.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
