package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scribe/internal/ir"
	"github.com/roach88/scribe/internal/testutil"
)

// o builds an IRObject from alternating keys and Go values.
func o(pairs ...any) ir.IRObject {
	obj := make(ir.IRObject, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		v, err := ir.FromGo(pairs[i+1])
		if err != nil {
			panic(err)
		}
		obj[pairs[i].(string)] = v
	}
	return obj
}

func sig(s string) *string { return &s }

func create(ts int64, by *string, data ir.IRObject) Entry[string] {
	return Entry[string]{Kind: KindCreate, Timestamp: ts, Signature: by, Data: data}
}

func patch(ts int64, by *string, data ir.IRObject) Entry[string] {
	return Entry[string]{Kind: KindPatch, Timestamp: ts, Signature: by, Data: data}
}

func remove(ts int64, by *string) Entry[string] {
	return Entry[string]{Kind: KindRemove, Timestamp: ts, Signature: by}
}

// newTestScribe returns an empty Scribe on a clock starting at 1000 and
// stepping 100ms per entry.
func newTestScribe(opts ...Option) *Scribe[string] {
	clock := testutil.NewDeterministicClock(1000, 100)
	return New[string](append([]Option{WithClock(clock)}, opts...)...)
}

// must returns a function that unwraps a builder result, failing the test
// on error. Use it as must(t)(s.Patch(...)).
func must(t *testing.T) func(*Scribe[string], error) *Scribe[string] {
	t.Helper()
	return func(s *Scribe[string], err error) *Scribe[string] {
		t.Helper()
		require.NoError(t, err)
		require.NotNil(t, s)
		return s
	}
}

func mustCompile(t *testing.T, s *Scribe[string]) Historical[string] {
	t.Helper()
	h, err := s.Compile()
	require.NoError(t, err)
	return h
}
