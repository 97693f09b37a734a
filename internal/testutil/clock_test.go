package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_FirstReadingIsStart(t *testing.T) {
	clock := NewDeterministicClock(1000, 10)
	assert.Equal(t, int64(1000), clock.NowMs())
}

func TestDeterministicClock_StepsMonotonically(t *testing.T) {
	clock := NewDeterministicClock(0, 250)

	assert.Equal(t, int64(0), clock.NowMs())
	assert.Equal(t, int64(250), clock.NowMs())
	assert.Equal(t, int64(500), clock.NowMs())
	assert.Equal(t, int64(750), clock.Peek())
}

func TestDeterministicClock_Advance(t *testing.T) {
	clock := NewDeterministicClock(0, 1)
	clock.Advance(5000)
	assert.Equal(t, int64(5000), clock.NowMs())
	assert.Equal(t, int64(5001), clock.NowMs())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(100, 100)

	clock.NowMs()
	clock.NowMs()
	assert.Equal(t, int64(300), clock.Peek())

	clock.Reset()
	assert.Equal(t, int64(100), clock.NowMs())
}

func TestDeterministicClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewDeterministicClock(42, 0)
	assert.Equal(t, int64(42), clock.NowMs())
	assert.Equal(t, int64(42), clock.NowMs())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(0, 1)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([][]int64, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]int64, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = clock.NowMs()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, numGoroutines*callsPerGoroutine)
	for _, r := range results {
		for _, v := range r {
			require.False(t, seen[v], "duplicate reading %d", v)
			seen[v] = true
		}
	}
	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
	assert.Equal(t, int64(numGoroutines*callsPerGoroutine), clock.Peek())
}
