package timer

import (
	"sync"
	"time"
)

// Manual is a test double fired explicitly by the test.
type Manual struct {
	mu       sync.Mutex
	c        chan time.Time
	running  bool
	duration time.Duration

	// Starts and Stops count calls.
	Starts int
	Stops  int
}

// NewManual creates a stopped Manual source with an unbuffered channel, so
// Fire returns only once the receiver has taken the value.
func NewManual() *Manual {
	return &Manual{c: make(chan time.Time)}
}

// Start records the duration and arms the source.
func (m *Manual) Start(d time.Duration) {
	m.mu.Lock()
	m.running = true
	m.duration = d
	m.Starts++
	m.mu.Unlock()
}

// Stop disarms the source.
func (m *Manual) Stop() {
	m.mu.Lock()
	m.running = false
	m.Stops++
	m.mu.Unlock()
}

// C returns the fire channel.
func (m *Manual) C() <-chan time.Time {
	return m.c
}

// Fire delivers t if the source is armed and reports whether it did.
// A stopped source never fires, matching a real stopped timer.
func (m *Manual) Fire(t time.Time) bool {
	if !m.Running() {
		return false
	}
	m.c <- t
	return true
}

// Running reports whether the source is armed.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Duration returns the last duration passed to Start.
func (m *Manual) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}
