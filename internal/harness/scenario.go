package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scribe/internal/history"
)

// Default clock settings used when a scenario omits them.
const (
	DefaultClockStart int64 = 1000
	DefaultClockStep  int64 = 100
)

// Scenario is a scripted sequence of history operations with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Options configures compaction for the Scribe under test.
	Options history.CompactionOptions `yaml:"options,omitempty"`

	// Clock configures the deterministic clock.
	Clock ClockConfig `yaml:"clock,omitempty"`

	// Steps are applied in order to a single evolving Scribe.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final compiled history.
	Assertions []Assertion `yaml:"assertions"`
}

// ClockConfig sets the first reading and the increment of the clock.
// Zero values select DefaultClockStart and DefaultClockStep.
type ClockConfig struct {
	Start int64 `yaml:"start,omitempty"`
	Step  int64 `yaml:"step,omitempty"`
}

// Step is one operation on the Scribe.
type Step struct {
	// Op is one of create, patch, remove, pop, revert, splice.
	Op string `yaml:"op"`

	// Data is the create or patch payload.
	Data map[string]any `yaml:"data,omitempty"`

	// Signature attributes the entry. Omit for a system event.
	Signature *string `yaml:"signature,omitempty"`

	// At stamps the entry explicitly instead of reading the clock.
	At int64 `yaml:"at,omitempty"`

	// Index and Time locate the position for revert and splice.
	// Exactly one must be set.
	Index *int   `yaml:"index,omitempty"`
	Time  *int64 `yaml:"time,omitempty"`

	// Count is the number of entries a splice deletes.
	Count int `yaml:"count,omitempty"`

	// Insert lists the entries a splice inserts.
	Insert []EntrySpec `yaml:"insert,omitempty"`

	// ExpectError is the validation error code the step must fail with.
	// A failing step leaves the Scribe unchanged.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// EntrySpec describes an entry inserted by a splice step.
type EntrySpec struct {
	Kind      string         `yaml:"kind"`
	Data      map[string]any `yaml:"data,omitempty"`
	Signature *string        `yaml:"signature,omitempty"`
	At        int64          `yaml:"at"`
}

// Assertion checks one property of the final result.
type Assertion struct {
	// Type is one of state, history_length, entry, removed.
	Type string `yaml:"type"`

	// Expect is the exact state (state) or exact entry data (entry).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected history length (history_length).
	Count *int `yaml:"count,omitempty"`

	// Index selects the entry; negative values count from the end (entry).
	Index int `yaml:"index,omitempty"`

	// Kind, Signature and At are optional entry checks (entry).
	Kind      string  `yaml:"kind,omitempty"`
	Signature *string `yaml:"signature,omitempty"`
	At        *int64  `yaml:"at,omitempty"`

	// Value is the expected removed flag (removed).
	Value *bool `yaml:"value,omitempty"`
}

// Step operations.
const (
	OpCreate = "create"
	OpPatch  = "patch"
	OpRemove = "remove"
	OpPop    = "pop"
	OpRevert = "revert"
	OpSplice = "splice"
)

// Assertion types.
const (
	AssertState         = "state"
	AssertHistoryLength = "history_length"
	AssertEntry         = "entry"
	AssertRemoved       = "removed"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so that typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
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

// FindScenarios returns the .yaml and .yml files under dir in lexical
// order. A non-empty filter is a glob matched against the file name
// without its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Options.CollapseWindowMs < 0 {
		return fmt.Errorf("options.collapse_window_ms must not be negative")
	}
	if s.Clock.Step < 0 {
		return fmt.Errorf("clock.step must not be negative")
	}
	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpCreate, OpPatch:
	case OpRemove, OpPop:
		if st.Data != nil {
			return fmt.Errorf("steps[%d]: data is not allowed for %s", index, st.Op)
		}
	case OpRevert, OpSplice:
		if (st.Index == nil) == (st.Time == nil) {
			return fmt.Errorf("steps[%d]: exactly one of index or time is required for %s", index, st.Op)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	if st.Op != OpSplice && (st.Count != 0 || len(st.Insert) > 0) {
		return fmt.Errorf("steps[%d]: count and insert are only valid for splice", index)
	}
	for j, e := range st.Insert {
		if !history.Kind(e.Kind).Valid() {
			return fmt.Errorf("steps[%d].insert[%d]: unknown kind %q", index, j, e.Kind)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertState:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for state", index)
		}
	case AssertHistoryLength:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for history_length", index)
		}
	case AssertEntry:
		if a.Kind != "" && !history.Kind(a.Kind).Valid() {
			return fmt.Errorf("assertions[%d]: unknown kind %q", index, a.Kind)
		}
	case AssertRemoved:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for removed", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
