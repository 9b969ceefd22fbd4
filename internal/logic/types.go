// Package logic contains the pure timing/reset controller for the reminder device.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Side effects are returned as commands for the runtime to execute.
package logic

import "time"

// State is the device state held by the Controller.
type State string

const (
	StateIdle            State = "IDLE"
	StateWaiting         State = "WAITING"
	StatePeriodComplete  State = "PERIOD_COMPLETE"
	StateFlashing        State = "FLASHING"
	StateConfirmingReset State = "CONFIRMING_RESET"
	StateResetting       State = "RESETTING"
)

// EventType identifies an input to the state machine.
type EventType string

const (
	EventTick        EventType = "TICK"
	EventButtonPush  EventType = "BUTTON_PUSH"
	EventHoldExpired EventType = "HOLD_EXPIRED"
)

// Event is a single input delivered to the Controller.
type Event struct {
	Type EventType
	Time time.Time
	// Held is the button level sampled when the hold timer expired.
	// Only meaningful for EventHoldExpired.
	Held bool
}

// Command is a side effect requested by a transition.
type Command string

const (
	CmdAckBlink       Command = "ACK_BLINK"        // short LED toggle burst acknowledging a reset
	CmdStartTick      Command = "START_TICK"       // start the one-minute tick source
	CmdStopTick       Command = "STOP_TICK"        // stop the one-minute tick source
	CmdStartHoldTimer Command = "START_HOLD_TIMER" // arm the hold-confirmation timer
	CmdStopHoldTimer  Command = "STOP_HOLD_TIMER"  // disarm the hold-confirmation timer
	CmdStartSoftBlink Command = "START_SOFT_BLINK" // start the period-complete LED pattern
	CmdStopSoftBlink  Command = "STOP_SOFT_BLINK"  // stop the period-complete LED pattern
)

// Transition records a state change for logging and publishing.
type Transition struct {
	Timestamp time.Time
	From      State
	To        State
	Cause     EventType
	Elapsed   ElapsedTime
}

// Counts tracks notable controller outcomes since startup.
type Counts struct {
	Ticks            int
	Resets           int
	Snoozes          int
	PeriodsCompleted int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	State     State
	Elapsed   ElapsedTime
	Counts    Counts
}
