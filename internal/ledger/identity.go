package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Identity derives the ledger key for a target from its base file name. The
// directory is deliberately excluded so the ledger follows a logically-named
// file across locations. The flip side is that two different files sharing a
// name share a ledger; the run journal records a content fingerprint so
// history can surface that collision instead of hiding it.
func Identity(path string) string {
	return filepath.Base(path)
}

// Fingerprint returns the hex SHA-256 of the file's content. Computed once
// per run and stored in the journal alongside the identity.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint target: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint target: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
