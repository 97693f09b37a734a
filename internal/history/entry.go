package history

import (
	"fmt"

	"github.com/roach88/scribe/internal/ir"
)

// Kind discriminates the three entry variants.
type Kind string

const (
	// KindCreate carries a full snapshot of the object at creation.
	KindCreate Kind = "create"

	// KindPatch carries only the fields that changed.
	KindPatch Kind = "patch"

	// KindRemove is a tombstone with no payload.
	KindRemove Kind = "remove"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCreate, KindPatch, KindRemove:
		return true
	}
	return false
}

// Meta is the event metadata attached to every entry.
// A nil Signature marks a system-authored event.
//
// A zero Timestamp set directly on the struct is filled in from the clock.
// Use At to pin a timestamp, including the epoch itself.
type Meta[I any] struct {
	Timestamp int64 `json:"timestamp"`
	Signature *I    `json:"signature,omitempty"`

	stamped bool
}

// Signed returns metadata authored by sig with the timestamp left for the
// clock to fill in.
func Signed[I any](sig I) Meta[I] {
	return Meta[I]{Signature: &sig}
}

// At returns a copy of m stamped with the given millisecond timestamp.
func (m Meta[I]) At(ms int64) Meta[I] {
	m.Timestamp = ms
	m.stamped = true
	return m
}

// Entry is one logged lifecycle event.
//
// For KindCreate, Data is the full object. For KindPatch, Data holds only
// the defined fields; an absent key means "no opinion", never "clear". For
// KindRemove, Data is nil.
type Entry[I any] struct {
	Kind      Kind        `json:"kind"`
	Timestamp int64       `json:"timestamp"`
	Signature *I          `json:"signature,omitempty"`
	Data      ir.IRObject `json:"data,omitempty"`
}

// NewCreate builds a create entry. data is copied.
func NewCreate[I any](data ir.IRObject, meta Meta[I]) Entry[I] {
	return newEntry(KindCreate, data, meta)
}

// NewPatch builds a patch entry. data is copied; nil becomes an empty patch.
func NewPatch[I any](data ir.IRObject, meta Meta[I]) Entry[I] {
	return newEntry(KindPatch, data, meta)
}

// NewRemove builds a remove entry.
func NewRemove[I any](meta Meta[I]) Entry[I] {
	return newEntry[I](KindRemove, nil, meta)
}

func newEntry[I any](kind Kind, data ir.IRObject, meta Meta[I]) Entry[I] {
	e := Entry[I]{
		Kind:      kind,
		Timestamp: meta.Timestamp,
		Signature: cloneSignature(meta.Signature),
	}
	if kind != KindRemove {
		e.Data = data.Clone()
		if e.Data == nil {
			e.Data = ir.IRObject{}
		}
	}
	return e
}

// Meta returns the entry's metadata.
func (e Entry[I]) Meta() Meta[I] {
	return Meta[I]{Timestamp: e.Timestamp, Signature: cloneSignature(e.Signature)}
}

// Clone returns a deep copy of e.
func (e Entry[I]) Clone() Entry[I] {
	e.Signature = cloneSignature(e.Signature)
	e.Data = e.Data.Clone()
	return e
}

// Equal reports whether two entries are structurally equal.
func (e Entry[I]) Equal(other Entry[I]) bool {
	return e.Kind == other.Kind &&
		e.Timestamp == other.Timestamp &&
		signaturesEqual(e.Signature, other.Signature) &&
		e.Data.Equal(other.Data)
}

// toIR converts the entry into its canonical object form for hashing.
func (e Entry[I]) toIR() (ir.IRObject, error) {
	obj := ir.IRObject{
		"kind":      ir.IRString(e.Kind),
		"timestamp": ir.IRInt(e.Timestamp),
	}
	if e.Signature != nil {
		sig, err := ir.FromGo(*e.Signature)
		if err != nil {
			return nil, fmt.Errorf("entry signature: %w", err)
		}
		obj["signature"] = sig
	}
	if e.Kind != KindRemove {
		obj["data"] = e.Data.Clone()
	}
	return obj, nil
}

// Hash returns the content hash of the entry.
func (e Entry[I]) Hash() (string, error) {
	obj, err := e.toIR()
	if err != nil {
		return "", err
	}
	return ir.EntryHash(obj)
}

func cloneEntries[I any](entries []Entry[I]) []Entry[I] {
	if entries == nil {
		return nil
	}
	out := make([]Entry[I], len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

func cloneSignature[I any](sig *I) *I {
	if sig == nil {
		return nil
	}
	c := *sig
	return &c
}
