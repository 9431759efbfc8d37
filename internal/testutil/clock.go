// Package testutil provides deterministic helpers for tests.
//
// Action records carry creation and revision timestamps taken from an
// injected clock. The clocks here replace the system clock in tests and in
// the conformance harness so that repeated runs produce byte-identical
// records and golden files.
package testutil

import (
	"sync"
	"time"
)

// FixedClock is a thread-safe clock frozen at a configurable instant.
//
// Every call to Now() returns the same time until Set or Advance changes it.
// This makes creation and revision timestamps fully predictable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock frozen at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the frozen instant.
//
// Implements action.Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
//
// Negative d moves the clock backward; callers that need monotonic
// timestamps should only pass positive durations.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SteppingClock is a thread-safe clock that advances by a fixed step on
// every read.
//
// The first call to Now() returns the start instant, the second returns
// start+step, and so on. Factories call the clock exactly once per produced
// record, so a stepping clock assigns each record in a scenario a distinct,
// predictable timestamp.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	next  time.Time
}

// NewSteppingClock creates a clock that starts at start and advances by
// step on each call to Now().
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{start: start, step: step, next: start}
}

// Now returns the current instant and advances the clock by one step.
//
// Implements action.Clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

// Reset rewinds the clock to its start instant.
//
// Used for test reuse. After Reset(), the next call to Now() returns the
// start instant again.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = c.start
}
