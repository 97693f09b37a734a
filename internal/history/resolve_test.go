package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Index(t *testing.T) {
	entries := []Entry[string]{
		create(100, nil, o("a", 1)),
		patch(200, nil, o("a", 2)),
		patch(300, nil, o("a", 3)),
	}

	tests := []struct {
		name        string
		index       int
		allowLength bool
		want        int
	}{
		{"first", 0, false, 0},
		{"last", 2, false, 2},
		{"negative one is last", -1, false, 2},
		{"negative length is first", -3, false, 0},
		{"wraps only once", -4, false, -1},
		{"past the end passes through", 7, false, 7},
		{"length without allowLength", 3, false, 3},
		{"length with allowLength", 3, true, 3},
		{"negative with allowLength", -1, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(Index(tt.index), entries, tt.allowLength))
		})
	}
}

func TestResolve_Timestamp(t *testing.T) {
	entries := []Entry[string]{
		create(100, nil, o("a", 1)),
		patch(200, nil, o("a", 2)),
		patch(200, nil, o("b", 2)),
		patch(300, nil, o("a", 3)),
	}

	tests := []struct {
		name string
		ms   int64
		want int
	}{
		{"before everything", 50, 0},
		{"exactly first", 100, 1},
		{"between", 150, 1},
		{"ties count every entry at the timestamp", 200, 3},
		{"exactly last", 300, 4},
		{"after everything", 1000, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(At(tt.ms), entries, false))
			assert.Equal(t, tt.want, Resolve(At(tt.ms), entries, true))
		})
	}
}

func TestResolve_EmptySequence(t *testing.T) {
	var entries []Entry[string]

	assert.Equal(t, 0, Resolve(Index(0), entries, true))
	assert.Equal(t, -1, Resolve(Index(-1), entries, true))
	assert.Equal(t, 0, Resolve(At(100), entries, false))
}

func TestAtTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := AtTime(ts)

	assert.True(t, p.IsTime())
	assert.Equal(t, At(ts.UnixMilli()), p)
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "#-1", Index(-1).String())
	assert.Equal(t, "@1500", At(1500).String())
	assert.False(t, Index(3).IsTime())
}
