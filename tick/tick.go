// package tick provides the millisecond tick counter the input
// pipeline is timed against. The counter wraps at 2^32; spans are
// compared through signed subtraction so wraparound is harmless as
// long as two compared instants are less than 2^31 ms apart.
package tick

import "time"

// Tick is an instant on the tick counter, in milliseconds.
type Tick uint32

// Duration is a span between two Ticks, in milliseconds.
type Duration int32

// Since returns the signed span from b to a.
func Since(a, b Tick) Duration {
	return Duration(int32(a - b))
}

// Add returns t advanced by d.
func (t Tick) Add(d Duration) Tick {
	return t + Tick(d)
}

// A Clock reports the current tick. Now must be safe to call from
// any goroutine.
type Clock interface {
	Now() Tick
}

// Wall is a Clock backed by the wall clock.
type Wall struct {
	start time.Time
}

func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

func (w *Wall) Now() Tick {
	return Tick(time.Since(w.start) / time.Millisecond)
}
