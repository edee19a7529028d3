package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock times conversion jobs. Tests swap in a fake via SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the job clock. Pass nil to restore real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now reports the current time from the job clock in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}

// Since reports the time elapsed on the job clock since t.
func Since(t time.Time) time.Duration {
	return clock.Since(t)
}
