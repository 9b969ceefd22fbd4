// Package gpio provides the button and LED collaborators with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Button delivers debounced push notifications and can be queried for its level.
type Button interface {
	// Pushes returns a channel that receives the time of each debounced push.
	Pushes() <-chan time.Time

	// Held reports whether the button is currently pressed.
	Held() (bool, error)

	// Close releases GPIO resources and closes the Pushes channel.
	Close() error
}

// LED drives the indicator LED. Blink timing lives in the driver, never in the caller.
type LED interface {
	// Toggle inverts the LED output.
	Toggle() error

	// StartBlink runs the given pattern until StopBlink is called.
	StartBlink(p Pattern) error

	// StopBlink stops any running pattern and leaves the LED off.
	StopBlink() error

	// Close releases GPIO resources.
	Close() error
}

// Pattern describes a repeating on/off blink.
type Pattern struct {
	On  time.Duration
	Off time.Duration
}

// Pin definitions (BCM numbering) and chip.
const (
	DefaultChip      = "gpiochip0"
	DefaultPinButton = 25
	DefaultPinLED    = 24
)

// Timing defaults.
const (
	DefaultDebounce = 50 * time.Millisecond
	AckToggles      = 4
	AckInterval     = 100 * time.Millisecond
)

// DefaultSoftBlink is the period-complete pattern.
var DefaultSoftBlink = Pattern{On: 100 * time.Millisecond, Off: 100 * time.Millisecond}

// FaultPattern is the distinctive pattern shown after a fatal init failure.
var FaultPattern = Pattern{On: 25 * time.Millisecond, Off: 25 * time.Millisecond}

// pushBuffer bounds queued pushes so a stalled dispatch loop cannot block the edge handler.
const pushBuffer = 8
