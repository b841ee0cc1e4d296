package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RenderTrace serializes a scenario execution as the golden trace text:
// one line per loop event plus a final report line. The format is plain
// space-separated text rather than JSON so fixtures stay readable in
// review and diffs point at the exact event that moved.
//
//	scenario resume-skips-ledger
//	transition init -> check-encrypted
//	transition check-encrypted -> iterating
//	attempt 1 skipped ab1
//	attempt 2 skipped aB1
//	attempt 3 rejected Ab1
//	attempt 4 found AB1
//	transition iterating -> success
//	report outcome=success reason=found checked=2 skipped=2 anomalies=0 elapsed=1s password=AB1
//
// Every line is newline-terminated. Field order is fixed; optional report
// fields (password, detail) append only when set.
func RenderTrace(name string, result *Result) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "scenario %s\n", name)
	for _, ev := range result.Trace {
		switch ev.Type {
		case "transition":
			fmt.Fprintf(&b, "transition %s -> %s\n", ev.From, ev.To)
		case "attempt":
			fmt.Fprintf(&b, "attempt %d %s %s", ev.Seq, ev.Verdict, ev.Candidate)
			if ev.Detail != "" {
				fmt.Fprintf(&b, " detail=%q", ev.Detail)
			}
			b.WriteByte('\n')
		default:
			fmt.Fprintf(&b, "event %s\n", ev.Type)
		}
	}

	r := result.Report
	fmt.Fprintf(&b, "report outcome=%s reason=%s checked=%d skipped=%d anomalies=%d elapsed=%s",
		r.Outcome, r.Reason, r.Checked, r.Skipped, r.Anomalies, r.Elapsed)
	if r.Password != "" {
		fmt.Fprintf(&b, " password=%s", r.Password)
	}
	if r.Detail != "" {
		fmt.Fprintf(&b, " detail=%q", r.Detail)
	}
	b.WriteByte('\n')

	return []byte(b.String())
}

// RunWithGolden executes a scenario, enforces its expect clause, and
// compares the trace against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation mismatches fail t individually so one run reports them
// all; the returned error covers scenario infrastructure only.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, RenderTrace(scenario.Name, result))

	return nil
}
