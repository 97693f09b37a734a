package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
	"github.com/roach88/scribe/internal/store"
	"github.com/roach88/scribe/internal/testutil"
)

// Harness holds the per-run dependencies of a scenario.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	ids    *testutil.SequentialIDGenerator
	logger *slog.Logger
	opts   history.CompactionOptions
}

// Run executes a scenario and returns its result.
//
// Execution:
//  1. Open a fresh in-memory store
//  2. Apply each step to the evolving Scribe, recording a trace event
//  3. Compile the final history and round-trip it through the store
//  4. Evaluate assertions
//
// A step failing with a validation error is a scenario failure, not a run
// error, unless the step expects that error. Run returns an error only for
// problems outside the engine, such as unencodable step data.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	start, step := scenario.Clock.Start, scenario.Clock.Step
	if start == 0 {
		start = DefaultClockStart
	}
	if step == 0 {
		step = DefaultClockStep
	}

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(start, step),
		ids:    testutil.NewSequentialIDGenerator(scenario.Name),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		opts:   scenario.Options,
	}

	ctx := context.Background()
	result := NewResult()

	sc := history.New[string](history.WithCompaction(h.opts), history.WithClock(h.clock))
	for i, s := range scenario.Steps {
		next, err := h.apply(sc, s)
		outcome := OutcomeOK
		if err != nil {
			code := history.CodeOf(err)
			if code == "" {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			outcome = string(code)
		}

		switch {
		case s.ExpectError != "" && err == nil:
			result.AddError(fmt.Sprintf("steps[%d] (%s): expected %s, got success", i, s.Op, s.ExpectError))
		case s.ExpectError != "" && outcome != s.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] (%s): expected %s, got %s", i, s.Op, s.ExpectError, outcome))
		case s.ExpectError == "" && err != nil:
			result.AddError(fmt.Sprintf("steps[%d] (%s): unexpected error: %v", i, s.Op, err))
		}
		if err == nil {
			sc = next
		}

		h.logger.Debug("step applied", "step", i, "op", s.Op, "outcome", outcome, "entries", sc.Len())
		result.AddTrace(TraceEvent{Step: i, Op: s.Op, Outcome: outcome, Entries: sc.Len()})
	}

	if sc.Len() > 0 {
		if err := h.finish(ctx, sc, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// apply performs one step and returns the resulting Scribe.
func (h *Harness) apply(sc *history.Scribe[string], s Step) (*history.Scribe[string], error) {
	switch s.Op {
	case OpCreate, OpPatch:
		data, err := toObject(s.Data)
		if err != nil {
			return nil, err
		}
		meta := stepMeta(s.Signature, s.At)
		if s.Op == OpCreate {
			return sc.Create(data, meta)
		}
		return sc.Patch(data, meta)
	case OpRemove:
		return sc.Remove(stepMeta(s.Signature, s.At))
	case OpPop:
		return sc.Pop()
	case OpRevert:
		return sc.Revert(stepPosition(s))
	case OpSplice:
		insert := make([]history.Entry[string], 0, len(s.Insert))
		for j, es := range s.Insert {
			e, err := es.entry()
			if err != nil {
				return nil, fmt.Errorf("insert[%d]: %w", j, err)
			}
			insert = append(insert, e)
		}
		return sc.Splice(stepPosition(s), s.Count, insert...)
	default:
		return nil, fmt.Errorf("unknown op %q", s.Op)
	}
}

// finish compiles the final history, records it on the result, and checks
// that it survives a save and reload unchanged.
func (h *Harness) finish(ctx context.Context, sc *history.Scribe[string], result *Result) error {
	compiled, err := sc.Compile()
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	hash, err := compiled.Hash()
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	result.Compiled = &compiled
	result.Hash = hash

	id := h.ids.Generate()
	if _, err := store.SaveScribe(ctx, h.store, id, sc); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	// A cleaned history is a fixed point of validation without compaction.
	reloaded, err := store.Load[string](ctx, h.store, id)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if !reloaded.Equals(sc) {
		result.AddError("store round trip changed the history")
	}
	return nil
}

func (e EntrySpec) entry() (history.Entry[string], error) {
	meta := stepMeta(e.Signature, e.At)
	switch history.Kind(e.Kind) {
	case history.KindCreate, history.KindPatch:
		data, err := toObject(e.Data)
		if err != nil {
			return history.Entry[string]{}, err
		}
		if e.Kind == string(history.KindCreate) {
			return history.NewCreate(data, meta), nil
		}
		return history.NewPatch(data, meta), nil
	case history.KindRemove:
		return history.NewRemove(meta), nil
	default:
		return history.Entry[string]{}, fmt.Errorf("unknown kind %q", e.Kind)
	}
}

func stepMeta(sig *string, at int64) history.Meta[string] {
	m := history.Meta[string]{Timestamp: at}
	if sig != nil {
		s := *sig
		m.Signature = &s
	}
	return m
}

func stepPosition(s Step) history.Position {
	if s.Time != nil {
		return history.At(*s.Time)
	}
	return history.Index(*s.Index)
}

// toObject converts YAML-decoded data into an IRObject. A nil map becomes
// an empty object.
func toObject(data map[string]any) (ir.IRObject, error) {
	if data == nil {
		return ir.IRObject{}, nil
	}
	obj, err := ir.FromStruct(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert data: %w", err)
	}
	return obj, nil
}
