package mqtt

import (
	"sync"
	"time"

	"github.com/sweeney/heartworm/internal/logic"
)

// FakePublisher records published messages for test assertions.
// Safe for use from the loop goroutine while a test goroutine reads Snapshot.
type FakePublisher struct {
	mu sync.Mutex

	// Transitions contains all state transitions that were published.
	Transitions []logic.Transition

	// Advertisements contains all beacon payloads that were published.
	Advertisements []logic.Advertisement

	// Payloads contains the JSON payloads for transitions and advertisements, in order.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishTransition and Advertise.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// BufferedMessages and DroppedMessages control Buffered and Dropped.
	BufferedMessages int
	DroppedMessages  int
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishTransition records the transition.
func (f *FakePublisher) PublishTransition(tr logic.Transition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatTransition(tr)
	if err != nil {
		return err
	}
	f.Transitions = append(f.Transitions, tr)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Advertise records the advertisement.
func (f *FakePublisher) Advertise(at time.Time, ad logic.Advertisement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatAdvertisement(at, ad)
	if err != nil {
		return err
	}
	f.Advertisements = append(f.Advertisements, ad)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// SetConnection updates the connection fields under the lock, for tests that
// change them while a loop is reading.
func (f *FakePublisher) SetConnection(connected bool, buffered, dropped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Connected = connected
	f.BufferedMessages = buffered
	f.DroppedMessages = dropped
}

// Buffered returns BufferedMessages.
func (f *FakePublisher) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.BufferedMessages
}

// Dropped returns DroppedMessages.
func (f *FakePublisher) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.DroppedMessages
}

// TransitionCount returns the number of recorded transitions.
func (f *FakePublisher) TransitionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Transitions)
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Transitions = nil
	f.Advertisements = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
	f.BufferedMessages = 0
	f.DroppedMessages = 0
}
