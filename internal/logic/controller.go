package logic

import (
	"fmt"
	"time"
)

// Result is the outcome of delivering one event to the Controller.
type Result struct {
	// Commands are side effects in the order the runtime must execute them.
	Commands []Command
	// Transitions lists every state change, including transient states.
	Transitions []Transition
}

// Changed reports whether the event moved the controller to another state.
func (r Result) Changed() bool {
	return len(r.Transitions) > 0
}

// Controller owns the device state and the elapsed-time counter.
// It is not safe for concurrent use; a single dispatch loop drives it.
type Controller struct {
	state         State
	elapsed       ElapsedTime
	started       bool
	startTime     time.Time
	counts        Counts
	lastHeartbeat time.Time
}

// NewController creates a controller in the RESETTING state.
// The startTime is used for calculating uptime in heartbeat events.
func NewController(startTime time.Time) *Controller {
	return &Controller{
		state:         StateResetting,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Start runs the RESETTING entry sequence once. Later calls return an empty result.
func (c *Controller) Start(now time.Time) Result {
	if c.started {
		return Result{}
	}
	c.started = true

	var r Result
	c.enterResetting(&r, now, "")
	return r
}

// HandleEvent applies one event and returns the side effects to perform.
// Events with no transition defined for the current state are ignored.
func (c *Controller) HandleEvent(ev Event) Result {
	var r Result
	if !c.started {
		return r
	}

	switch c.state {
	case StateWaiting:
		switch ev.Type {
		case EventTick:
			c.counts.Ticks++
			if c.elapsed.Advance() {
				c.enterPeriodComplete(&r, ev)
			}
		case EventButtonPush:
			c.enterConfirmingReset(&r, ev)
		}

	case StateIdle:
		if ev.Type == EventButtonPush {
			c.enterConfirmingReset(&r, ev)
		}

	case StateFlashing:
		if ev.Type == EventButtonPush {
			c.enterIdle(&r, ev)
		}

	case StateConfirmingReset:
		if ev.Type == EventHoldExpired {
			if ev.Held {
				c.enterResetting(&r, ev.Time, ev.Type)
			} else {
				c.counts.Snoozes++
				c.enterIdle(&r, ev)
			}
		}

	case StateResetting, StatePeriodComplete:
		// Transient: entry actions always leave these states before returning.
		panic(fmt.Sprintf("logic: controller at rest in transient state %s", c.state))

	default:
		panic(fmt.Sprintf("logic: unknown state %q", c.state))
	}

	return r
}

func (c *Controller) enterResetting(r *Result, now time.Time, cause EventType) {
	if c.state != StateResetting {
		c.moveTo(r, StateResetting, now, cause)
	}
	c.elapsed.Reset()
	c.counts.Resets++
	r.Commands = append(r.Commands, CmdAckBlink, CmdStopHoldTimer, CmdStartTick)
	c.moveTo(r, StateWaiting, now, cause)
}

func (c *Controller) enterPeriodComplete(r *Result, ev Event) {
	c.moveTo(r, StatePeriodComplete, ev.Time, ev.Type)
	c.counts.PeriodsCompleted++
	r.Commands = append(r.Commands, CmdStartSoftBlink)
	c.moveTo(r, StateFlashing, ev.Time, ev.Type)
}

func (c *Controller) enterConfirmingReset(r *Result, ev Event) {
	c.moveTo(r, StateConfirmingReset, ev.Time, ev.Type)
	r.Commands = append(r.Commands, CmdStartHoldTimer)
}

func (c *Controller) enterIdle(r *Result, ev Event) {
	c.moveTo(r, StateIdle, ev.Time, ev.Type)
	r.Commands = append(r.Commands, CmdStopSoftBlink, CmdStopTick)
}

func (c *Controller) moveTo(r *Result, to State, now time.Time, cause EventType) {
	r.Transitions = append(r.Transitions, Transition{
		Timestamp: now,
		From:      c.state,
		To:        to,
		Cause:     cause,
		Elapsed:   c.elapsed,
	})
	c.state = to
}

// State returns the current device state.
func (c *Controller) State() State {
	return c.state
}

// Elapsed returns a copy of the elapsed-time counter.
func (c *Controller) Elapsed() ElapsedTime {
	return c.elapsed
}

// IsStarted returns whether Start has run.
func (c *Controller) IsStarted() bool {
	return c.started
}

// CountsSnapshot returns a copy of the outcome counters.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		State:     c.state,
		Elapsed:   c.elapsed,
		Counts:    c.counts,
	}
}
