package history

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/scribe/internal/ir"
)

// HistoryField is the key under which the entry sequence is stored next to
// the object's own fields in the compiled form.
const HistoryField = "history"

// Historical is the compiled, externally visible form of a Scribe: the
// derived state plus the cleaned history that produced it.
//
// Its JSON encoding flattens State's fields next to a "history" array:
//
//	{"stage":"finishing","finished":false,"history":[{"kind":"create",...}]}
//
// A state field named "history" is shadowed by the entry list.
type Historical[I any] struct {
	State   ir.IRObject
	History []Entry[I]
}

// MarshalJSON implements json.Marshaler.
func (h Historical[I]) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(h.State)+1)
	for k, v := range h.State {
		fields[k] = v
	}
	history := h.History
	if history == nil {
		history = []Entry[I]{}
	}
	fields[HistoryField] = history
	return json.Marshal(fields)
}

// UnmarshalJSON implements json.Unmarshaler.
// The history is decoded as-is; pass the result through Load to validate it.
func (h *Historical[I]) UnmarshalJSON(data []byte) error {
	var state ir.IRObject
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("historical: %w", err)
	}
	var wrapper struct {
		History []Entry[I] `json:"history"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("historical history: %w", err)
	}
	delete(state, HistoryField)
	if state == nil {
		state = ir.IRObject{}
	}
	h.State = state
	h.History = wrapper.History
	return nil
}

// Decode decodes the compiled state into dst, which must be a pointer.
func (h Historical[I]) Decode(dst any) error {
	return ir.DecodeObject(h.State, dst)
}

// ToIR returns the compiled document as an IRObject, the form used for
// canonical encoding and hashing.
func (h Historical[I]) ToIR() (ir.IRObject, error) {
	doc := h.State.Clone()
	if doc == nil {
		doc = ir.IRObject{}
	}
	history := make(ir.IRArray, len(h.History))
	for i, e := range h.History {
		obj, err := e.toIR()
		if err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
		history[i] = obj
	}
	doc[HistoryField] = history
	return doc, nil
}

// Canonical returns the RFC 8785 encoding of the compiled document.
func (h Historical[I]) Canonical() ([]byte, error) {
	doc, err := h.ToIR()
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(doc)
}

// Hash returns the content hash of the compiled document.
func (h Historical[I]) Hash() (string, error) {
	doc, err := h.ToIR()
	if err != nil {
		return "", err
	}
	return ir.HistoryHash(doc)
}

// Removed reports whether the history ends in a remove entry.
func (h Historical[I]) Removed() bool {
	n := len(h.History)
	return n > 0 && h.History[n-1].Kind == KindRemove
}
