package history

import "time"

// Clock supplies default timestamps, in milliseconds since the Unix epoch,
// for entries appended without an explicit one.
type Clock interface {
	NowMs() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowMs implements Clock.
func (SystemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

// NowMs implements Clock.
func (f ClockFunc) NowMs() int64 {
	return f()
}
