package history

import (
	"fmt"
	"sort"
	"time"
)

type positionKind int

const (
	positionIndex positionKind = iota
	positionTime
)

// Position addresses a point in an entry sequence, either by array index or
// by timestamp. Build one with Index, At, or AtTime.
type Position struct {
	kind  positionKind
	index int
	ms    int64
}

// Index addresses an entry by array index. Negative values count back from
// the end of the sequence: -1 is the last entry.
func Index(i int) Position {
	return Position{kind: positionIndex, index: i}
}

// At addresses the point just after every entry stamped at or before ms.
func At(ms int64) Position {
	return Position{kind: positionTime, ms: ms}
}

// AtTime is At for a time.Time.
func AtTime(t time.Time) Position {
	return At(t.UnixMilli())
}

// IsTime reports whether p was built from a timestamp.
func (p Position) IsTime() bool {
	return p.kind == positionTime
}

// String implements fmt.Stringer.
func (p Position) String() string {
	if p.kind == positionTime {
		return fmt.Sprintf("@%d", p.ms)
	}
	return fmt.Sprintf("#%d", p.index)
}

// Resolve converts p into a concrete offset into entries.
//
// For an index, negative values wrap once relative to len(entries). When
// allowLength is set, an index equal to len(entries) is returned unchanged
// as the "insert at end" offset; otherwise it names no entry and callers
// treat it as out of range. No clamping happens here: offsets that still
// fall outside the sequence are passed through for the caller to reject.
//
// For a timestamp, Resolve returns the number of entries stamped at or
// before it, which is the insertion point that keeps the sequence ordered.
// entries must already be in non-decreasing timestamp order.
func Resolve[I any](p Position, entries []Entry[I], allowLength bool) int {
	n := len(entries)
	if p.kind == positionTime {
		return sort.Search(n, func(i int) bool {
			return entries[i].Timestamp > p.ms
		})
	}

	i := p.index
	if allowLength && i == n {
		return n
	}
	if i < 0 {
		i += n
	}
	return i
}
