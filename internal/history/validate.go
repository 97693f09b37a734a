package history

import (
	"fmt"
	"math"

	"github.com/roach88/scribe/internal/ir"
)

// Result is the output of a successful validation: the cleaned entry
// sequence and the state derived by replaying it.
type Result[I any] struct {
	Entries []Entry[I]
	State   ir.IRObject
}

// Validate walks candidate once, enforcing the history grammar while
// compacting it.
//
// Grammar (first violation wins, see ErrorCode):
//   - timestamps never decrease
//   - a create may only appear at index 0
//   - patches and removes need a create before them
//   - at most one remove, and no patch after it
//
// Compaction:
//   - a patch collapses into the previous retained patch when both carry
//     equal signatures, the gap is under opts.CollapseWindowMs, and the
//     incoming payload touches no masked field; the merged patch takes the
//     later entry's metadata
//   - fields equal to the state before the patch are pruned, and a patch
//     left with no fields is dropped
//
// Validate never modifies candidate; every retained payload is copied.
// Identical inputs always produce identical outputs.
func Validate[I any](candidate []Entry[I], opts CompactionOptions) (Result[I], error) {
	var (
		cleaned   = make([]Entry[I], 0, len(candidate))
		derived   = make([]ir.IRObject, 0, len(candidate)) // one state per retained entry
		hasRemove bool
		prevTS    int64 = math.MinInt64
	)

	for i, entry := range candidate {
		if entry.Timestamp < prevTS {
			return Result[I]{}, newValidationError(ErrCodeOutOfOrder, i,
				fmt.Sprintf("timestamp %d precedes previous timestamp %d", entry.Timestamp, prevTS))
		}
		prevTS = entry.Timestamp

		switch entry.Kind {
		case KindCreate:
			if i != 0 {
				return Result[I]{}, newValidationError(ErrCodeCreateMustBeFirst, i,
					"create entry must be the first entry")
			}
			created := entry.Clone()
			if created.Data == nil {
				created.Data = ir.IRObject{}
			}
			derived = append(derived, created.Data.Clone())
			cleaned = append(cleaned, created)

		case KindPatch:
			if i == 0 {
				return Result[I]{}, newValidationError(ErrCodePatchNeedsCreate, i,
					"patch entry has no create before it")
			}
			if hasRemove {
				return Result[I]{}, newValidationError(ErrCodePatchAfterRemove, i,
					"patch entry follows the remove entry")
			}

			patch := entry.Clone()
			if canCollapse(cleaned, entry, opts) {
				last := cleaned[len(cleaned)-1]
				cleaned = cleaned[:len(cleaned)-1]
				derived = derived[:len(derived)-1]
				patch.Data = last.Data.Merge(entry.Data)
			}

			top := derived[len(derived)-1]
			patch.Data = patch.Data.Changes(top)
			if len(patch.Data) == 0 {
				continue
			}

			derived = append(derived, top.Merge(patch.Data))
			cleaned = append(cleaned, patch)

		case KindRemove:
			if i == 0 {
				return Result[I]{}, newValidationError(ErrCodeRemoveNeedsCreate, i,
					"remove entry has no create before it")
			}
			if hasRemove {
				return Result[I]{}, newValidationError(ErrCodeMultipleRemoves, i,
					"sequence already has a remove entry")
			}
			hasRemove = true
			removed := entry.Clone()
			removed.Data = nil
			cleaned = append(cleaned, removed)

		default:
			return Result[I]{}, fmt.Errorf("validate: entry %d has unknown kind %q", i, entry.Kind)
		}
	}

	if len(cleaned) == 0 {
		return Result[I]{}, newValidationError(ErrCodeEmptySequence, -1, "sequence has no entries")
	}

	return Result[I]{
		Entries: cleaned,
		State:   derived[len(derived)-1],
	}, nil
}

// canCollapse reports whether entry may be merged into the last retained
// entry of cleaned.
func canCollapse[I any](cleaned []Entry[I], entry Entry[I], opts CompactionOptions) bool {
	if opts.CollapseWindowMs <= 0 || len(cleaned) == 0 {
		return false
	}
	last := cleaned[len(cleaned)-1]
	if last.Kind != KindPatch {
		return false
	}
	if !signaturesEqual(last.Signature, entry.Signature) {
		return false
	}
	for field := range entry.Data {
		if opts.masks(field) {
			return false
		}
	}
	return entry.Timestamp-last.Timestamp < opts.CollapseWindowMs
}
