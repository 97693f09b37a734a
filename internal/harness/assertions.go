package harness

import (
	"fmt"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
)

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertState:
		return assertState(result, a)
	case AssertHistoryLength:
		if got := len(result.History()); got != *a.Count {
			return fmt.Errorf("expected %d entries, got %d", *a.Count, got)
		}
		return nil
	case AssertEntry:
		return assertEntry(result, a)
	case AssertRemoved:
		got := result.Compiled != nil && result.Compiled.Removed()
		if got != *a.Value {
			return fmt.Errorf("expected removed=%t, got %t", *a.Value, got)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertState(result *Result, a Assertion) error {
	if result.Compiled == nil {
		return fmt.Errorf("history is empty")
	}
	want, err := toObject(a.Expect)
	if err != nil {
		return err
	}
	return compareObjects("state", want, result.State())
}

func assertEntry(result *Result, a Assertion) error {
	entries := result.History()
	idx := a.Index
	if idx < 0 {
		idx += len(entries)
	}
	if idx < 0 || idx >= len(entries) {
		return fmt.Errorf("index %d out of range for %d entries", a.Index, len(entries))
	}
	e := entries[idx]

	if a.Kind != "" && e.Kind != history.Kind(a.Kind) {
		return fmt.Errorf("expected kind %s, got %s", a.Kind, e.Kind)
	}
	if a.At != nil && e.Timestamp != *a.At {
		return fmt.Errorf("expected timestamp %d, got %d", *a.At, e.Timestamp)
	}
	if a.Signature != nil {
		if e.Signature == nil {
			return fmt.Errorf("expected signature %q, got none", *a.Signature)
		}
		if *e.Signature != *a.Signature {
			return fmt.Errorf("expected signature %q, got %q", *a.Signature, *e.Signature)
		}
	}
	if a.Expect != nil {
		want, err := toObject(a.Expect)
		if err != nil {
			return err
		}
		return compareObjects("data", want, e.Data)
	}
	return nil
}

// compareObjects reports a mismatch using canonical encodings so the message
// is stable and readable.
func compareObjects(what string, want, got ir.IRObject) error {
	if want.Equal(got) {
		return nil
	}
	w, err := ir.CanonicalString(want)
	if err != nil {
		return err
	}
	g, err := ir.CanonicalString(got)
	if err != nil {
		return err
	}
	return fmt.Errorf("expected %s %s, got %s", what, w, g)
}
