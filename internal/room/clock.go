package room

import "time"

// Clock supplies the current time. Tests swap in a manual clock to drive
// heartbeats and sweeps deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
