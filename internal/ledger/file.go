package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
)

// FileLedger is the canonical ledger backend: one candidate per line, UTF-8,
// newline-delimited, in <dir>/<identity>.checked. The whole file is loaded
// into a string set at open; Contains answers from that set, so memory grows
// with the checked history of the document.
type FileLedger struct {
	f        *os.File
	known    mapset.Set[string]
	appended int
}

// OpenFile opens the file ledger for identity under dir, creating the
// directory and an empty ledger on first use. Idempotent.
func OpenFile(dir, identity string) (*FileLedger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	path := filepath.Join(dir, identity+checkedSuffix)

	known := mapset.NewThreadUnsafeSet[string]()
	if err := loadLines(path, known); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger for append: %w", err)
	}
	return &FileLedger{f: f, known: known}, nil
}

func loadLines(path string, into mapset.Set[string]) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		into.Add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan ledger: %w", err)
	}
	return nil
}

func (l *FileLedger) Contains(candidate string) bool {
	return l.known.Contains(candidate)
}

func (l *FileLedger) Append(candidate string) error {
	if _, err := l.f.WriteString(candidate + "\n"); err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	l.appended++
	return nil
}

func (l *FileLedger) Count() int {
	return l.known.Cardinality() + l.appended
}

func (l *FileLedger) Close() error {
	return l.f.Close()
}
