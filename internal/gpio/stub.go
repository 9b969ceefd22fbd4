//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(chip string, pin int, debounce time.Duration) (*RealButton, error) {
	return nil, errUnsupported
}

// Pushes returns nil on non-Linux platforms.
func (b *RealButton) Pushes() <-chan time.Time { return nil }

// Held is not implemented on non-Linux platforms.
func (b *RealButton) Held() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (b *RealButton) Close() error { return nil }

// RealLED is not available on non-Linux platforms.
type RealLED struct{}

// NewRealLED returns an error on non-Linux platforms.
func NewRealLED(chip string, pin int) (*RealLED, error) {
	return nil, errUnsupported
}

// Toggle is not implemented on non-Linux platforms.
func (l *RealLED) Toggle() error { return errUnsupported }

// StartBlink is not implemented on non-Linux platforms.
func (l *RealLED) StartBlink(p Pattern) error { return errUnsupported }

// StopBlink is not implemented on non-Linux platforms.
func (l *RealLED) StopBlink() error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (l *RealLED) Close() error { return nil }
