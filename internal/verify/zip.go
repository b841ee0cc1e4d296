package verify

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yeka/zip"
)

// ZipVerifier probes a ZIP archive through its first encrypted entry. The
// archive stays open for the lifetime of the verifier.
//
// A candidate is rejected whenever the probe entry fails to open or read:
// the archive parsed at construction and the entry is known to be
// encrypted, so a failure here means the password or authentication check
// said no. Misclassifying a rare transient read fault costs one redundant
// ledger entry, which the ledger contract permits.
type ZipVerifier struct {
	rc      *zip.ReadCloser
	entry   *zip.File
	openErr error
}

// OpenZip opens the target archive. A missing file is an error; a file that
// exists but does not parse as ZIP yields a verifier whose IsEncrypted
// reports the parse failure, which callers treat as "could not confirm".
func OpenZip(path string) (*ZipVerifier, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return &ZipVerifier{openErr: fmt.Errorf("parse zip container: %w", err)}, nil
	}

	v := &ZipVerifier{rc: rc}
	for _, f := range rc.File {
		if f.IsEncrypted() {
			v.entry = f
			break
		}
	}
	return v, nil
}

func (v *ZipVerifier) IsEncrypted() (bool, error) {
	if v.openErr != nil {
		return false, v.openErr
	}
	return v.entry != nil, nil
}

func (v *ZipVerifier) Verify(candidate string) Result {
	if v.openErr != nil {
		return Result{Kind: UnexpectedFailure, Detail: v.openErr}
	}
	if v.entry == nil {
		return Result{Kind: UnexpectedFailure, Detail: errors.New("archive has no encrypted entries")}
	}

	v.entry.SetPassword(candidate)
	r, err := v.entry.Open()
	if err != nil {
		return Result{Kind: WrongPassword}
	}
	_, err = io.Copy(io.Discard, r)
	cerr := r.Close()
	if err != nil || cerr != nil {
		return Result{Kind: WrongPassword}
	}
	return Result{Kind: Success}
}

func (v *ZipVerifier) Close() error {
	if v.rc == nil {
		return nil
	}
	return v.rc.Close()
}
