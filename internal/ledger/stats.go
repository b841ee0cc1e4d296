package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
)

// Stats describes the durable recovery state recorded for one identity.
type Stats struct {
	// FileExists/FileEntries describe the newline-file ledger. Entries are
	// distinct candidates, the same view Contains answers from.
	FileExists  bool
	FileEntries int

	// KVExists/KVEntries describe the LevelDB ledger.
	KVExists  bool
	KVEntries int

	// Found and Password report the success record.
	Found    bool
	Password string
}

// Checked is the total distinct-candidate count across backends. The two
// backends are alternatives, not replicas, so the sum is only meaningful
// when runs stuck to one of them.
func (s Stats) Checked() int {
	return s.FileEntries + s.KVEntries
}

// Collect reads the recovery state for identity under dir without creating
// anything: absent ledgers stay absent. Collecting the LevelDB count opens
// the database read-only briefly, so it fails while a run holds the ledger.
func Collect(dir, identity string) (Stats, error) {
	var s Stats

	filePath := filepath.Join(dir, identity+checkedSuffix)
	if _, err := os.Stat(filePath); err == nil {
		s.FileExists = true
		known := mapset.NewThreadUnsafeSet[string]()
		if err := loadLines(filePath, known); err != nil {
			return Stats{}, err
		}
		s.FileEntries = known.Cardinality()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Stats{}, fmt.Errorf("stat ledger: %w", err)
	}

	kvPath := filepath.Join(dir, identity+kvSuffix)
	if _, err := os.Stat(kvPath); err == nil {
		s.KVExists = true
		led, err := OpenKV(dir, identity)
		if err != nil {
			return Stats{}, err
		}
		s.KVEntries = led.Count()
		if err := led.Close(); err != nil {
			return Stats{}, fmt.Errorf("close ledger database: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Stats{}, fmt.Errorf("stat ledger database: %w", err)
	}

	pw, found, err := ReadSuccess(dir, identity)
	if err != nil {
		return Stats{}, err
	}
	s.Found = found
	s.Password = pw

	return s, nil
}
