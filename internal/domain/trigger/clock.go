package trigger

import "time"

// Clock supplies the current time. Injectable so tests drive sweeps
// with synthetic time instead of wall-clock waits.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
