// Package history maintains an append-only record of lifecycle events
// (create, patch, remove) applied to one data object, and derives the
// object's current state by replaying that record.
//
// # Entry grammar
//
// A valid sequence is non-empty, ordered by non-decreasing timestamp, opens
// with its only create entry, holds at most one remove entry, and has no
// patch after the remove. Validate enforces the grammar in a single pass
// and reports the first violation as a *ValidationError.
//
// # Compaction
//
// During the same pass, Validate merges a patch into the previous patch when
// both were signed by the same author within CompactionOptions.CollapseWindowMs
// and the new patch touches no field in CompactionOptions.CollapseMask. Fields
// whose value already matches the state before the patch are pruned, and a
// patch left empty is dropped. Redundancy is judged against the immediately
// preceding state only, so a field changed and later changed back keeps both
// entries.
//
// # Immutability
//
// Scribe is the builder over a validated sequence. Every method returns a new
// Scribe; the receiver, its entries, and its state never change after
// construction. Payloads are deep-copied on ingestion and on every read, so a
// caller mutating its own map cannot rewrite a recorded history.
//
// # Usage
//
//	s, err := history.New[string](history.WithCollapseWindow(1000)).
//	    Create(ir.Obj(ir.O("stage", ir.IRString("carpentry"))), history.Signed("ana"))
//	if err != nil {
//	    return err
//	}
//	s, err = s.Patch(ir.Obj(ir.O("stage", ir.IRString("painting"))), history.Signed("ana"))
//	if err != nil {
//	    return err
//	}
//	compiled, err := s.Compile()
package history
