package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WriteSuccess durably records the discovered password for the identity:
// one line in <dir>/<identity>.found. At most one record exists per
// identity; re-recording a discovery overwrites rather than appends, so the
// file never holds more than the single line.
func WriteSuccess(dir, identity, password string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	path := filepath.Join(dir, identity+foundSuffix)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create success record: %w", err)
	}
	if _, err := f.WriteString(password + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write success record: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync success record: %w", err)
	}
	return f.Close()
}

// ReadSuccess reports the previously recorded password for the identity, if
// any. A missing record is not an error.
func ReadSuccess(dir, identity string) (password string, ok bool, err error) {
	data, err := os.ReadFile(filepath.Join(dir, identity+foundSuffix))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read success record: %w", err)
	}

	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return line, true, nil
}
