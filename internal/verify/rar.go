package verify

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nwaples/rardecode"
)

// RarVerifier walks a RAR archive end to end per attempt. RAR binds the
// password at reader construction, so the verifier pins the target with one
// file handle for the run and rewinds it for every candidate.
//
// RAR has no uniform password-check record: RAR5 rejects at the header
// layer, RAR3 only through CRC mismatches while reading entry data. Any
// failure past reader construction therefore counts as a rejection; a clean
// walk to EOF is the only success.
type RarVerifier struct {
	f *os.File
}

func OpenRar(path string) (*RarVerifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	return &RarVerifier{f: f}, nil
}

// IsEncrypted probes the archive with the empty password. A clean walk
// means unprotected. A walk that fails past the signature means some layer
// refused the empty password, which is what a protected archive does. A
// reader that cannot even be constructed is not confirmably a RAR archive
// at all, and that is reported as an error for the caller's
// "could not confirm" handling.
func (v *RarVerifier) IsEncrypted() (bool, error) {
	if _, err := v.f.Seek(0, io.SeekStart); err != nil {
		return false, fmt.Errorf("rewind target: %w", err)
	}
	rd, err := rardecode.NewReader(v.f, "")
	if err != nil {
		return false, fmt.Errorf("parse rar container: %w", err)
	}
	for {
		if _, err := rd.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return true, nil
		}
		if _, err := io.Copy(io.Discard, rd); err != nil {
			return true, nil
		}
	}
}

func (v *RarVerifier) Verify(candidate string) Result {
	if _, err := v.f.Seek(0, io.SeekStart); err != nil {
		return Result{Kind: UnexpectedFailure, Detail: fmt.Errorf("rewind target: %w", err)}
	}
	rd, err := rardecode.NewReader(v.f, candidate)
	if err != nil {
		return Result{Kind: WrongPassword}
	}
	for {
		_, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return Result{Kind: Success}
		}
		if err != nil {
			return Result{Kind: WrongPassword}
		}
		if _, err := io.Copy(io.Discard, rd); err != nil {
			return Result{Kind: WrongPassword}
		}
	}
}

func (v *RarVerifier) Close() error {
	return v.f.Close()
}
