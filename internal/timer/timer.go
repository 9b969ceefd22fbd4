// Package timer provides the tick and hold-confirmation timer collaborators.
// Start and Stop must be called from the goroutine that receives from C.
package timer

import "time"

// Source is a restartable timer whose channel stays the same across restarts.
type Source interface {
	// Start (re)arms the timer with period or delay d.
	Start(d time.Duration)

	// Stop disarms the timer and discards any pending fire.
	Stop()

	// C returns the fire channel.
	C() <-chan time.Time
}

// Nominal durations.
const (
	DefaultTick = time.Minute
	DefaultHold = time.Second
)

// Periodic fires every d until stopped.
type Periodic struct {
	ticker  *time.Ticker
	running bool
}

// NewPeriodic creates a stopped periodic source.
func NewPeriodic() *Periodic {
	t := time.NewTicker(time.Hour)
	t.Stop()
	return &Periodic{ticker: t}
}

// Start restarts the ticker with period d.
func (p *Periodic) Start(d time.Duration) {
	p.ticker.Stop()
	drain(p.ticker.C)
	p.ticker.Reset(d)
	p.running = true
}

// Stop halts the ticker.
func (p *Periodic) Stop() {
	p.ticker.Stop()
	drain(p.ticker.C)
	p.running = false
}

// C returns the tick channel.
func (p *Periodic) C() <-chan time.Time {
	return p.ticker.C
}

// Running reports whether the ticker is armed.
func (p *Periodic) Running() bool {
	return p.running
}

// OneShot fires once, d after Start.
type OneShot struct {
	timer *time.Timer
}

// NewOneShot creates a disarmed one-shot source.
func NewOneShot() *OneShot {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return &OneShot{timer: t}
}

// Start arms the timer to fire once after d, replacing any pending fire.
func (o *OneShot) Start(d time.Duration) {
	o.Stop()
	o.timer.Reset(d)
}

// Stop disarms the timer.
func (o *OneShot) Stop() {
	if !o.timer.Stop() {
		drain(o.timer.C)
	}
}

// C returns the fire channel.
func (o *OneShot) C() <-chan time.Time {
	return o.timer.C
}

func drain(c <-chan time.Time) {
	select {
	case <-c:
	default:
	}
}
