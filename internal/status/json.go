package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/heartworm/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	Ready         bool         `json:"ready"`
	Elapsed       TimeJSON     `json:"elapsed"`
	Remaining     TimeJSON     `json:"remaining"`
	LastBeacon    string       `json:"last_beacon,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// TimeJSON is a days/hours/minutes triple, shared by status and transition payloads.
type TimeJSON struct {
	Days    uint8 `json:"days"`
	Hours   uint8 `json:"hours"`
	Minutes uint8 `json:"minutes"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Buffered  int    `json:"buffered"`
	Dropped   int    `json:"dropped"`
}

// CountsJSON is the JSON representation of controller outcome counts.
type CountsJSON struct {
	Ticks            int `json:"ticks"`
	Resets           int `json:"resets"`
	Snoozes          int `json:"snoozes"`
	PeriodsCompleted int `json:"periods_completed"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	HoldMs      int64  `json:"hold_ms"`
	AdvertiseMs int64  `json:"advertise_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Rotate      bool   `json:"rotate"`
	IdentityURL string `json:"identity_url"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	WSBroker    string `json:"ws_broker,omitempty"`
}

// NewTimeJSON converts a counter value.
func NewTimeJSON(e logic.ElapsedTime) TimeJSON {
	return TimeJSON{Days: e.Days, Hours: e.Hours, Minutes: e.Minutes}
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		State:         state,
		Ready:         snap.Started,
		Elapsed:       NewTimeJSON(snap.Elapsed),
		Remaining:     NewTimeJSON(snap.Remaining()),
		LastBeacon:    string(snap.LastBeacon),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Buffered:  snap.MQTTBuffered,
			Dropped:   snap.MQTTDropped,
		},
		Counts: CountsJSON{
			Ticks:            snap.Counts.Ticks,
			Resets:           snap.Counts.Resets,
			Snoozes:          snap.Counts.Snoozes,
			PeriodsCompleted: snap.Counts.PeriodsCompleted,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			HoldMs:      snap.Config.HoldMs,
			AdvertiseMs: snap.Config.AdvertiseMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Rotate:      snap.Config.Rotate,
			IdentityURL: snap.Config.IdentityURL,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			WSBroker:    snap.Config.WSBroker,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
