package action

import "time"

// TimeLayout renders ctime/utime values: UTC, millisecond precision,
// trailing Z. Matches the ISO-8601 form emitted by JavaScript's
// Date.prototype.toISOString, where this convention originated.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Clock supplies the current time to the factory. Injectable so tests and
// the scenario harness can run on deterministic time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// formatTime renders a timestamp in the convention's wire form.
func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
