// Package harness executes conformance scenarios against the real
// verification loop.
//
// A scenario is a YAML file pairing a small candidate plan with a
// scripted verifier and an expected terminal report. The harness runs
// the actual loop.Runner over the actual generator and a real file
// ledger in a throwaway directory; only the verifier is a double, so a
// scenario exercises the same skip/record/stop decisions production
// takes without needing an encrypted fixture per case.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: resume-skips-ledger
//	description: "Candidates recorded by an earlier run are skipped"
//	plan:
//	  mode: templated
//	  bases: [ab]
//	  suffixes: ["1"]
//	verifier:
//	  password: AB1
//	ledger: [ab1, aB1]
//	expect:
//	  outcome: success
//	  reason: found
//	  password: AB1
//	  checked: 2
//	  skipped: 2
//	  ledgered: 3
//
// The verifier clause scripts every behavior the loop distinguishes:
// password (the one candidate that verifies), anomalous (candidates
// whose verification fails unexpectedly), unencrypted (the target needs
// no password), and undetermined (the encryption check itself fails).
// cancel_after: N cancels the run's context after the Nth attempt,
// exercising the interruption path.
//
// # Deterministic Testing
//
// All scenarios execute with a stepped fake time source
// (testutil.DeterministicClock) and the generator's fixed candidate
// order, so two runs of one scenario produce byte-identical traces.
// RunWithGolden pins those traces as golden files under testdata/golden:
//
//	go test ./internal/harness -update
package harness
