package history

import (
	"fmt"

	"github.com/roach88/scribe/internal/ir"
)

// Scribe is an immutable, validated history of one object.
//
// Every builder method returns a new Scribe and leaves the receiver
// untouched, so instances can be shared across goroutines without locking.
// A Scribe owns its entries and derived state exclusively: payloads are
// copied on the way in and on the way out.
//
// The zero-length Scribe returned by New is the starting point for Create;
// it is the only Scribe that does not hold a validated sequence.
type Scribe[I any] struct {
	entries  []Entry[I]
	state    ir.IRObject
	settings settings
}

// New returns an empty Scribe configured with opts.
func New[I any](opts ...Option) *Scribe[I] {
	return &Scribe[I]{settings: newSettings(opts)}
}

// FromEntries validates entries and wraps the result in a new Scribe.
// Raw sequences loaded from storage must come through here.
func FromEntries[I any](entries []Entry[I], opts ...Option) (*Scribe[I], error) {
	return New[I](opts...).Replace(entries)
}

// Load reconstructs a Scribe from a compiled historical by re-validating its
// history. The compiled state is ignored and re-derived.
func Load[I any](h Historical[I], opts ...Option) (*Scribe[I], error) {
	return FromEntries(h.History, opts...)
}

// Create appends a create entry holding data.
// meta is optional; an unpinned zero timestamp is filled in from the clock.
func (s *Scribe[I]) Create(data ir.IRObject, meta ...Meta[I]) (*Scribe[I], error) {
	return s.Push(NewCreate(data, s.resolveMeta(meta)))
}

// Patch appends a patch entry holding the fields in data.
// An empty or fully redundant patch is dropped during validation, so
// repeated Patch(nil) calls are no-ops.
func (s *Scribe[I]) Patch(data ir.IRObject, meta ...Meta[I]) (*Scribe[I], error) {
	return s.Push(NewPatch(data, s.resolveMeta(meta)))
}

// Remove appends a remove entry.
func (s *Scribe[I]) Remove(meta ...Meta[I]) (*Scribe[I], error) {
	return s.Push(NewRemove(s.resolveMeta(meta)))
}

// Push appends entry at the end of the sequence.
func (s *Scribe[I]) Push(entry Entry[I]) (*Scribe[I], error) {
	return s.Splice(Index(len(s.entries)), 0, entry)
}

// Pop removes the last entry. Popping an empty Scribe fails with
// ErrCodeEmptySequence.
func (s *Scribe[I]) Pop() (*Scribe[I], error) {
	if len(s.entries) == 0 {
		return nil, newValidationError(ErrCodeEmptySequence, 0, "nothing to pop")
	}
	return s.Splice(Index(-1), 1)
}

// Revert drops every entry at or after p. Reverting to a timestamp keeps
// the entries stamped at or before it.
func (s *Scribe[I]) Revert(p Position) (*Scribe[I], error) {
	return s.Splice(p, len(s.entries))
}

// Splice removes deleteCount entries at p, inserts the given entries in
// their place, and validates the result. deleteCount is clamped to the
// entries remaining after p.
func (s *Scribe[I]) Splice(p Position, deleteCount int, insert ...Entry[I]) (*Scribe[I], error) {
	n := len(s.entries)
	offset := Resolve(p, s.entries, true)
	if offset < 0 || offset > n {
		return nil, newValidationError(ErrCodeIndexOutOfRange, offset,
			fmt.Sprintf("position %s resolves outside a sequence of %d entries", p, n))
	}
	deleteCount = min(max(deleteCount, 0), n-offset)

	candidate := make([]Entry[I], 0, n-deleteCount+len(insert))
	candidate = append(candidate, s.entries[:offset]...)
	candidate = append(candidate, insert...)
	candidate = append(candidate, s.entries[offset+deleteCount:]...)
	return s.Replace(candidate)
}

// Replace validates entries and returns a new Scribe holding the cleaned
// sequence, sharing the receiver's options. It is the only path into the
// validation engine.
func (s *Scribe[I]) Replace(entries []Entry[I]) (*Scribe[I], error) {
	res, err := Validate(entries, s.settings.compaction)
	if err != nil {
		return nil, err
	}
	return &Scribe[I]{
		entries:  res.Entries,
		state:    res.State,
		settings: s.settings,
	}, nil
}

// Compile returns the derived state together with the cleaned history.
// Fails with ErrCodeEmptySequence on an empty Scribe.
func (s *Scribe[I]) Compile() (Historical[I], error) {
	if len(s.entries) == 0 {
		return Historical[I]{}, newValidationError(ErrCodeEmptySequence, -1, "cannot compile an empty history")
	}
	return Historical[I]{
		State:   s.state.Clone(),
		History: cloneEntries(s.entries),
	}, nil
}

// Entries returns a copy of the cleaned entry sequence.
func (s *Scribe[I]) Entries() []Entry[I] {
	return cloneEntries(s.entries)
}

// EntryAt returns a copy of the entry at p. The boolean is false when p
// names no entry.
func (s *Scribe[I]) EntryAt(p Position) (Entry[I], bool) {
	offset := Resolve(p, s.entries, false)
	if p.IsTime() {
		// the last entry at or before the timestamp
		offset--
	}
	if offset < 0 || offset >= len(s.entries) {
		return Entry[I]{}, false
	}
	return s.entries[offset].Clone(), true
}

// State returns a copy of the derived state, or nil for an empty Scribe.
func (s *Scribe[I]) State() ir.IRObject {
	return s.state.Clone()
}

// StateAt returns the state derived from the entries before p.
func (s *Scribe[I]) StateAt(p Position) (ir.IRObject, error) {
	reverted, err := s.Revert(p)
	if err != nil {
		return nil, err
	}
	return reverted.State(), nil
}

// Len returns the number of cleaned entries.
func (s *Scribe[I]) Len() int {
	return len(s.entries)
}

// IsRemoved reports whether the history ends in a remove entry.
func (s *Scribe[I]) IsRemoved() bool {
	n := len(s.entries)
	return n > 0 && s.entries[n-1].Kind == KindRemove
}

// Options returns the compaction options shared by every derived Scribe.
func (s *Scribe[I]) Options() CompactionOptions {
	return s.settings.compaction.clone()
}

// Equals reports whether s and other hold equal histories and states.
func (s *Scribe[I]) Equals(other *Scribe[I]) bool {
	if s == other {
		return true
	}
	if other == nil || len(s.entries) != len(other.entries) {
		return false
	}
	for i := range s.entries {
		if !s.entries[i].Equal(other.entries[i]) {
			return false
		}
	}
	return s.state.Equal(other.state)
}

func (s *Scribe[I]) resolveMeta(meta []Meta[I]) Meta[I] {
	var m Meta[I]
	if len(meta) > 0 {
		m = meta[0]
	}
	if m.Timestamp == 0 && !m.stamped {
		m.Timestamp = s.settings.clock.NowMs()
	}
	return m
}

// CreateFrom starts a new history with a create entry and compiles it.
func CreateFrom[I any](data ir.IRObject, meta Meta[I], opts ...Option) (Historical[I], error) {
	s, err := New[I](opts...).Create(data, meta)
	if err != nil {
		return Historical[I]{}, err
	}
	return s.Compile()
}

// UpdateFrom appends a patch to a compiled historical and recompiles it.
func UpdateFrom[I any](h Historical[I], data ir.IRObject, meta Meta[I], opts ...Option) (Historical[I], error) {
	s, err := Load(h, opts...)
	if err != nil {
		return Historical[I]{}, err
	}
	if s, err = s.Patch(data, meta); err != nil {
		return Historical[I]{}, err
	}
	return s.Compile()
}

// RemoveFrom appends a remove entry to a compiled historical and recompiles it.
func RemoveFrom[I any](h Historical[I], meta Meta[I], opts ...Option) (Historical[I], error) {
	s, err := Load(h, opts...)
	if err != nil {
		return Historical[I]{}, err
	}
	if s, err = s.Remove(meta); err != nil {
		return Historical[I]{}, err
	}
	return s.Compile()
}
