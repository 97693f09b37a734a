package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/scribe/internal/ir"
)

// Snapshot returns the canonical JSON snapshot of a scenario run: its name,
// the step trace, and, when the history is non-empty, the compiled document
// and its hash.
func Snapshot(name string, result *Result) ([]byte, error) {
	trace := make(ir.IRArray, len(result.Trace))
	for i, ev := range result.Trace {
		trace[i] = ir.IRObject{
			"step":    ir.IRInt(ev.Step),
			"op":      ir.IRString(ev.Op),
			"outcome": ir.IRString(ev.Outcome),
			"entries": ir.IRInt(ev.Entries),
		}
	}
	snap := ir.IRObject{
		"scenario_name": ir.IRString(name),
		"trace":         trace,
	}
	if result.Compiled != nil {
		doc, err := result.Compiled.ToIR()
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		snap["compiled"] = doc
		snap["hash"] = ir.IRString(result.Hash)
	}
	return ir.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
