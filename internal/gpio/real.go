//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealButton reads the push button through the Linux GPIO character device.
// Debounce is done by the kernel; edges arrive on a gpiocdev handler goroutine.
type RealButton struct {
	line   *gpiocdev.Line
	mu     sync.Mutex
	pushes chan time.Time
	closed bool
}

// NewRealButton requests the button line as an active-low input with pull-up,
// matching a button wired to ground.
func NewRealButton(chip string, pin int, debounce time.Duration) (*RealButton, error) {
	b := &RealButton{pushes: make(chan time.Time, pushBuffer)}

	line, err := gpiocdev.RequestLine(chip, pin,
		gpiocdev.AsInput,
		gpiocdev.AsActiveLow,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithEventHandler(b.handleEdge),
	)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d on %s: %w", pin, chip, err)
	}
	b.line = line
	return b, nil
}

// handleEdge forwards logical press edges. Active-low inverts the physical
// falling edge into a rising one.
func (b *RealButton) handleEdge(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.pushes <- time.Now():
	default:
		// Dispatch loop is behind; a dropped push is equivalent to a missed tap.
	}
}

// Pushes returns the channel of debounced push times.
func (b *RealButton) Pushes() <-chan time.Time {
	return b.pushes
}

// Held reports whether the button is pressed right now.
func (b *RealButton) Held() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v == 1, nil
}

// Close releases the line and closes the Pushes channel.
func (b *RealButton) Close() error {
	var err error
	if b.line != nil {
		if cerr := b.line.Close(); cerr != nil {
			err = fmt.Errorf("close button pin: %w", cerr)
		}
	}

	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.pushes)
	}
	b.mu.Unlock()

	return err
}

// RealLED drives the indicator LED through the Linux GPIO character device.
type RealLED struct {
	line  *gpiocdev.Line
	mu    sync.Mutex
	level int
	blink *blinker
}

// NewRealLED requests the LED line as an output, initially off.
func NewRealLED(chip string, pin int) (*RealLED, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request LED pin %d on %s: %w", pin, chip, err)
	}

	l := &RealLED{line: line}
	l.blink = newBlinker(l.set)
	return l, nil
}

func (l *RealLED) set(on bool) error {
	v := 0
	if on {
		v = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("write LED pin: %w", err)
	}
	l.level = v
	return nil
}

// Toggle inverts the LED output.
func (l *RealLED) Toggle() error {
	l.mu.Lock()
	on := l.level == 0
	l.mu.Unlock()
	return l.set(on)
}

// StartBlink runs p until StopBlink. A running pattern is replaced.
func (l *RealLED) StartBlink(p Pattern) error {
	return l.blink.start(p)
}

// StopBlink stops any pattern and turns the LED off.
func (l *RealLED) StopBlink() error {
	l.blink.halt()
	return l.set(false)
}

// Close stops any pattern, turns the LED off and releases the line.
func (l *RealLED) Close() error {
	var errs []error

	if err := l.StopBlink(); err != nil {
		errs = append(errs, err)
	}
	if err := l.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close LED pin: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
