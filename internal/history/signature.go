package history

import "reflect"

// SignatureEqualer is implemented by signature types that define their own
// identity comparison. Types that do not implement it are compared with
// reflect.DeepEqual.
type SignatureEqualer[I any] interface {
	Equal(other I) bool
}

// signaturesEqual compares two optional signatures. Two absent signatures
// are equal; an absent and a present one never are.
func signaturesEqual[I any](a, b *I) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := any(*a).(SignatureEqualer[I]); ok {
		return eq.Equal(*b)
	}
	return reflect.DeepEqual(*a, *b)
}
