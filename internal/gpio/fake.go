package gpio

import (
	"sync"
	"time"
)

// FakeButton is a test double whose pushes and level are scripted by the test.
type FakeButton struct {
	mu     sync.Mutex
	pushes chan time.Time

	// held is the level returned by Held.
	held bool

	// HeldError, if set, will be returned by Held.
	HeldError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeButton creates a FakeButton with an unbuffered push channel, so
// Push returns only once the dispatch loop has received the push.
func NewFakeButton() *FakeButton {
	return &FakeButton{pushes: make(chan time.Time)}
}

// Push delivers a push at time t. Blocks until received.
func (f *FakeButton) Push(t time.Time) {
	f.pushes <- t
}

// SetHeld sets the level reported by Held.
func (f *FakeButton) SetHeld(held bool) {
	f.mu.Lock()
	f.held = held
	f.mu.Unlock()
}

// Pushes returns the scripted push channel.
func (f *FakeButton) Pushes() <-chan time.Time {
	return f.pushes
}

// Held returns the scripted level.
func (f *FakeButton) Held() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.HeldError != nil {
		return false, f.HeldError
	}
	return f.held, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakeLED records LED calls for test assertions.
type FakeLED struct {
	mu sync.Mutex

	// Toggles counts Toggle calls.
	Toggles int

	// Blinking is the pattern currently running, nil when stopped.
	Blinking *Pattern

	// Starts and Stops count StartBlink and StopBlink calls.
	Starts int
	Stops  int

	// ToggleError, if set, will be returned by Toggle.
	ToggleError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeLED creates a FakeLED for testing.
func NewFakeLED() *FakeLED {
	return &FakeLED{}
}

// Toggle records the toggle.
func (f *FakeLED) Toggle() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ToggleError != nil {
		return f.ToggleError
	}
	f.Toggles++
	return nil
}

// StartBlink records the pattern as running.
func (f *FakeLED) StartBlink(p Pattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Starts++
	f.Blinking = &p
	return nil
}

// StopBlink records the pattern as stopped.
func (f *FakeLED) StopBlink() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stops++
	f.Blinking = nil
	return nil
}

// Close marks the LED as closed.
func (f *FakeLED) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	f.Blinking = nil
	return nil
}

// Snapshot returns the recorded counters under the lock.
func (f *FakeLED) Snapshot() (toggles int, blinking bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Toggles, f.Blinking != nil
}
