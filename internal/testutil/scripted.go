package testutil

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/tumbler/internal/verify"
)

// ScriptedVerifier is a verifier with entirely predetermined behavior,
// driven by plain fields so harness scenarios can declare it in YAML.
//
// Verification is classified by script: a candidate equal to Password
// succeeds, a candidate on the Anomalous list fails unexpectedly, and
// everything else is a plain rejection. The password match wins if a
// candidate appears in both. An empty Password means no candidate
// succeeds (the zero value scripts an exhaustible search).
//
// Implements verify.Verifier.
type ScriptedVerifier struct {
	// Password is the candidate that verifies successfully.
	Password string

	// Encrypted is what IsEncrypted reports when Undetermined is unset.
	Encrypted bool

	// Undetermined, when non-empty, makes IsEncrypted fail with this
	// message, scripting a target whose protection cannot be confirmed.
	Undetermined string

	// Anomalous lists candidates whose verification fails unexpectedly
	// rather than as a plain rejection.
	Anomalous []string

	// Calls records every candidate passed to Verify, in order.
	Calls []string

	// Closed reports whether Close was invoked.
	Closed bool
}

func (v *ScriptedVerifier) IsEncrypted() (bool, error) {
	if v.Undetermined != "" {
		return false, errors.New(v.Undetermined)
	}
	return v.Encrypted, nil
}

func (v *ScriptedVerifier) Verify(candidate string) verify.Result {
	v.Calls = append(v.Calls, candidate)
	if v.Password != "" && candidate == v.Password {
		return verify.Result{Kind: verify.Success}
	}
	if slices.Contains(v.Anomalous, candidate) {
		return verify.Result{
			Kind:   verify.UnexpectedFailure,
			Detail: fmt.Errorf("scripted anomaly for %q", candidate),
		}
	}
	return verify.Result{Kind: verify.WrongPassword}
}

func (v *ScriptedVerifier) Close() error {
	v.Closed = true
	return nil
}
