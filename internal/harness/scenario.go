package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate loop behavior by running a candidate plan against
// a scripted verifier and asserting on the resulting trace and report.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Plan describes the candidate space to generate.
	Plan PlanClause `yaml:"plan"`

	// Verifier scripts the verifier's behavior.
	// The zero value is an encrypted target that rejects everything.
	Verifier VerifierClause `yaml:"verifier,omitempty"`

	// Ledger preloads the checkpoint ledger, simulating an earlier
	// interrupted run over the same target.
	Ledger []string `yaml:"ledger,omitempty"`

	// CancelAfter cancels the run's context after this many attempts.
	// Zero means the run is never cancelled.
	CancelAfter int `yaml:"cancel_after,omitempty"`

	// Expect is the required terminal report.
	Expect ExpectClause `yaml:"expect"`
}

// PlanClause describes the candidate space for a scenario.
// It mirrors the plan file vocabulary, plus a charset override so
// exhaustive scenarios can stay tiny.
type PlanClause struct {
	Mode      string   `yaml:"mode"`
	Bases     []string `yaml:"bases,omitempty"`
	Prefixes  []string `yaml:"prefixes,omitempty"`
	Suffixes  []string `yaml:"suffixes,omitempty"`
	MaxLength int      `yaml:"max_length,omitempty"`
	Charset   string   `yaml:"charset,omitempty"`
}

// VerifierClause scripts the scenario's verifier.
type VerifierClause struct {
	// Password is the candidate that verifies successfully.
	// Empty means no candidate succeeds.
	Password string `yaml:"password,omitempty"`

	// Anomalous lists candidates whose verification fails unexpectedly
	// rather than as a plain rejection.
	Anomalous []string `yaml:"anomalous,omitempty"`

	// Unencrypted scripts a target that needs no password.
	Unencrypted bool `yaml:"unencrypted,omitempty"`

	// Undetermined, when non-empty, makes the encryption check fail
	// with this message.
	Undetermined string `yaml:"undetermined,omitempty"`
}

// ExpectClause specifies the required terminal report.
// Outcome, reason, password and the counters are compared exactly;
// zero counters are meaningful and still checked.
type ExpectClause struct {
	// Outcome is the expected terminal state: success, exhausted or
	// cancelled.
	Outcome string `yaml:"outcome"`

	// Reason is the expected outcome reason.
	Reason string `yaml:"reason"`

	// DetailContains, when set, requires the report detail to contain
	// this substring. Used for undetermined outcomes.
	DetailContains string `yaml:"detail_contains,omitempty"`

	// Password is the expected recovered password, empty unless the
	// outcome is success.
	Password string `yaml:"password,omitempty"`

	// Checked, Skipped and Anomalies are the expected counters.
	Checked   uint64 `yaml:"checked,omitempty"`
	Skipped   uint64 `yaml:"skipped,omitempty"`
	Anomalies uint64 `yaml:"anomalies,omitempty"`

	// Ledgered, when set, is the expected final ledger entry count
	// (preloaded entries included).
	Ledgered *int `yaml:"ledgered,omitempty"`
}

// Recognized expect values. The loop owns the canonical constants; the
// harness re-lists them so scenario typos fail at load time, not as a
// baffling report mismatch.
var (
	knownOutcomes = []string{"success", "exhausted", "cancelled"}
	knownReasons  = []string{"found", "not-encrypted", "undetermined", "space-exhausted", "interrupted"}
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like
	// "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Plan semantics (mode-specific requirements) are left to the generator
// spec's own validation at run time.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Plan.Mode == "" {
		return fmt.Errorf("plan.mode is required")
	}

	if s.CancelAfter < 0 {
		return fmt.Errorf("cancel_after must be non-negative")
	}

	if s.Expect.Outcome == "" {
		return fmt.Errorf("expect.outcome is required")
	}
	if !contains(knownOutcomes, s.Expect.Outcome) {
		return fmt.Errorf("expect.outcome %q is not one of %v", s.Expect.Outcome, knownOutcomes)
	}

	if s.Expect.Reason == "" {
		return fmt.Errorf("expect.reason is required")
	}
	if !contains(knownReasons, s.Expect.Reason) {
		return fmt.Errorf("expect.reason %q is not one of %v", s.Expect.Reason, knownReasons)
	}

	if s.Expect.Ledgered != nil && *s.Expect.Ledgered < 0 {
		return fmt.Errorf("expect.ledgered must be non-negative")
	}

	return nil
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
