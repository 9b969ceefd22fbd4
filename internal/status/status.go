// Package status provides a thread-safe status tracker for the heartworm daemon.
// The dispatch loop writes it; HTTP handlers and MQTT lifecycle events read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/heartworm/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	HoldMs      int64
	AdvertiseMs int64
	HeartbeatMs int64
	Rotate      bool
	IdentityURL string
	Broker      string
	HTTPAddr    string
	WSBroker    string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	Elapsed       logic.ElapsedTime
	Started       bool
	Counts        logic.Counts
	LastBeacon    logic.AdvertisementKind
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	MQTTDropped   int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Remaining returns the per-unit countdown for the current elapsed time.
func (s Snapshot) Remaining() logic.ElapsedTime {
	return s.Elapsed.Remaining()
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the controller state, counter and outcome counts.
// Called from the dispatch loop after every event.
func (t *Tracker) Update(state logic.State, elapsed logic.ElapsedTime, started bool, counts logic.Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Elapsed = elapsed
	t.snap.Started = started
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetLastBeacon records the kind of the most recent advertisement.
func (t *Tracker) SetLastBeacon(kind logic.AdvertisementKind) {
	t.mu.Lock()
	t.snap.LastBeacon = kind
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBacklog records the publisher's reconnect backlog.
func (t *Tracker) SetMQTTBacklog(buffered, dropped int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = buffered
	t.snap.MQTTDropped = dropped
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
