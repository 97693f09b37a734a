package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Clone returns a deep copy of v. Containers are copied recursively so the
// result shares no maps or slices with v.
func Clone(v IRValue) IRValue {
	switch val := v.(type) {
	case IRArray:
		return val.Clone()
	case IRObject:
		return val.Clone()
	default:
		// Scalars are immutable values.
		return v
	}
}

// Clone returns a deep copy of the array. A nil array stays nil.
func (arr IRArray) Clone() IRArray {
	if arr == nil {
		return nil
	}
	out := make(IRArray, len(arr))
	for i, elem := range arr {
		out[i] = Clone(elem)
	}
	return out
}

// Clone returns a deep copy of the object. A nil object stays nil.
func (obj IRObject) Clone() IRObject {
	if obj == nil {
		return nil
	}
	out := make(IRObject, len(obj))
	for k, v := range obj {
		out[k] = Clone(v)
	}
	return out
}

// Equal reports whether a and b are structurally equal.
// Objects compare by key set and per-key value, arrays element-wise.
// A nil object and an empty object are equal.
func Equal(a, b IRValue) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case IRNull:
		_, ok := b.(IRNull)
		return ok
	case IRString:
		bv, ok := b.(IRString)
		return ok && av == bv
	case IRInt:
		bv, ok := b.(IRInt)
		return ok && av == bv
	case IRBool:
		bv, ok := b.(IRBool)
		return ok && av == bv
	case IRArray:
		bv, ok := b.(IRArray)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case IRObject:
		bv, ok := b.(IRObject)
		return ok && av.Equal(bv)
	default:
		return false
	}
}

// Equal reports whether two objects hold structurally equal fields.
func (obj IRObject) Equal(other IRObject) bool {
	if len(obj) != len(other) {
		return false
	}
	for k, v := range obj {
		ov, ok := other[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// Merge returns a new object holding obj's fields overwritten by every field
// defined in patch. Fields absent from patch keep obj's value. Neither input
// is modified and the result shares no containers with them.
func (obj IRObject) Merge(patch IRObject) IRObject {
	out := make(IRObject, len(obj)+len(patch))
	for k, v := range obj {
		out[k] = Clone(v)
	}
	for k, v := range patch {
		out[k] = Clone(v)
	}
	return out
}

// Changes returns the subset of patch whose values differ from the same
// field in base. A field missing from base always counts as a change.
func (obj IRObject) Changes(base IRObject) IRObject {
	out := make(IRObject, len(obj))
	for k, v := range obj {
		if bv, ok := base[k]; ok && Equal(v, bv) {
			continue
		}
		out[k] = Clone(v)
	}
	return out
}

// FromGo converts an arbitrary Go value into an IRValue by way of its JSON
// encoding. Values whose encoding contains floats are rejected.
func FromGo(v any) (IRValue, error) {
	if ir, ok := v.(IRValue); ok {
		return Clone(ir), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("from go: %w", err)
	}
	val, err := DecodeValue(data)
	if err != nil {
		return nil, fmt.Errorf("from go: %w", err)
	}
	return val, nil
}

// FromStruct converts a struct or map into an IRObject.
// Returns an error if v does not encode to a JSON object.
func FromStruct(v any) (IRObject, error) {
	val, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	obj, ok := val.(IRObject)
	if !ok {
		return nil, fmt.Errorf("from struct: %T does not encode to an object", v)
	}
	return obj, nil
}

// DecodeObject decodes obj into dst, which must be a pointer.
// Integers decode into any Go numeric field through encoding/json.
func DecodeObject(obj IRObject, dst any) error {
	data, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	return nil
}
