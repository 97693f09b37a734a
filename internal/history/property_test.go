package history

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/scribe/internal/ir"
)

var (
	propSigners = []*string{nil, sig("ana"), sig("ben")}
	propFields  = []string{"a", "b", "c"}
)

// sequenceFromOps decodes generated integers into a valid candidate: a create
// followed by patches with small time gaps, random signers, and values drawn
// from a tiny domain so redundant and collapsible patches are common.
func sequenceFromOps(ops []int) []Entry[string] {
	ts := int64(1000)
	entries := []Entry[string]{create(ts, nil, o("a", 0, "b", 0, "c", 0))}
	for _, v := range ops {
		ts += int64(v%7) * 50
		signer := propSigners[(v/7)%len(propSigners)]
		field := propFields[(v/21)%len(propFields)]

		var value ir.IRValue = ir.IRInt((v / 63) % 4)
		if value == ir.IRInt(3) {
			value = ir.IRNull{}
		}
		entries = append(entries, patch(ts, signer, ir.IRObject{field: value}))
	}
	return entries
}

// foldState replays entries without any compaction.
func foldState(entries []Entry[string]) ir.IRObject {
	var state ir.IRObject
	for _, e := range entries {
		switch e.Kind {
		case KindCreate:
			state = e.Data.Clone()
		case KindPatch:
			state = state.Merge(e.Data)
		}
	}
	return state
}

func propParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

func TestProperty_CompactionPreservesFinalState(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("compacted state equals the uncompacted replay", prop.ForAll(
		func(ops []int, window int64) bool {
			candidate := sequenceFromOps(ops)
			res, err := Validate(candidate, CompactionOptions{CollapseWindowMs: window})
			if err != nil {
				return false
			}
			return res.State.Equal(foldState(candidate)) &&
				res.State.Equal(foldState(res.Entries))
		},
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t)
}

func TestProperty_ValidationIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("validating a cleaned sequence changes nothing", prop.ForAll(
		func(ops []int, window int64) bool {
			opts := CompactionOptions{CollapseWindowMs: window}
			first, err := Validate(sequenceFromOps(ops), opts)
			if err != nil {
				return false
			}
			second, err := Validate(first.Entries, opts)
			if err != nil || len(second.Entries) != len(first.Entries) {
				return false
			}
			for i := range first.Entries {
				if !first.Entries[i].Equal(second.Entries[i]) {
					return false
				}
			}
			return first.State.Equal(second.State)
		},
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t)
}

func TestProperty_RetainedPatchesAreMinimal(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("every retained patch field changes the state", prop.ForAll(
		func(ops []int, window int64) bool {
			res, err := Validate(sequenceFromOps(ops), CompactionOptions{CollapseWindowMs: window})
			if err != nil {
				return false
			}
			var state ir.IRObject
			for _, e := range res.Entries {
				if e.Kind == KindCreate {
					state = e.Data.Clone()
					continue
				}
				if len(e.Data) == 0 || len(e.Data.Changes(state)) != len(e.Data) {
					return false
				}
				state = state.Merge(e.Data)
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t)
}

func TestProperty_NoCollapsibleNeighborsRemain(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("adjacent same-signer patches are at least a window apart", prop.ForAll(
		func(ops []int, window int64) bool {
			res, err := Validate(sequenceFromOps(ops), CompactionOptions{CollapseWindowMs: window})
			if err != nil {
				return false
			}
			for i := 2; i < len(res.Entries); i++ {
				prev, cur := res.Entries[i-1], res.Entries[i]
				if !signaturesEqual(prev.Signature, cur.Signature) {
					continue
				}
				if window > 0 && cur.Timestamp-prev.Timestamp < window {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t)
}

func TestProperty_RedundantPatchIsNoOp(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("patching with the current state adds no entry", prop.ForAll(
		func(ops []int, window int64) bool {
			s, err := FromEntries(sequenceFromOps(ops), WithCollapseWindow(window))
			if err != nil {
				return false
			}
			last, _ := s.EntryAt(Index(-1))
			next, err := s.Patch(s.State(), Meta[string]{Timestamp: last.Timestamp + window + 1})
			if err != nil {
				return false
			}
			return next.Equals(s)
		},
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t)
}

func TestProperty_BuildersNeverMutateReceiver(t *testing.T) {
	properties := gopter.NewProperties(propParameters())

	properties.Property("derived scribes leave the receiver intact", prop.ForAll(
		func(ops []int, at int) bool {
			s, err := FromEntries(sequenceFromOps(ops))
			if err != nil {
				return false
			}
			before := s.Entries()
			stateBefore := s.State()

			_, _ = s.Revert(Index(at % (s.Len() + 1)))
			_, _ = s.Patch(o("a", 99), Meta[string]{Timestamp: 1 << 40})
			_, _ = s.Remove(Meta[string]{Timestamp: 1 << 40})

			after := s.Entries()
			if len(after) != len(before) {
				return false
			}
			for i := range before {
				if !before[i].Equal(after[i]) {
					return false
				}
			}
			return stateBefore.Equal(s.State())
		},
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
