// Package mqtt carries beacon advertisements and device events to an MQTT
// broker, with abstraction for testing.
package mqtt

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/heartworm/internal/logic"
	"github.com/sweeney/heartworm/internal/status"
)

// TopicEvents is the MQTT topic for state transitions.
const TopicEvents = "wearable/heartworm/events"

// TopicBeacon is the MQTT topic for advertisements.
const TopicBeacon = "wearable/heartworm/beacon"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "wearable/heartworm/system"

// Publisher publishes device output to MQTT.
type Publisher interface {
	// PublishTransition sends a state transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishTransition(tr logic.Transition) error

	// Advertise broadcasts one beacon payload.
	Advertise(at time.Time, ad logic.Advertisement) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how
// much output is waiting for it.
type ConnectionStatus interface {
	IsConnected() bool

	// Buffered is the number of messages held for replay on reconnect.
	Buffered() int

	// Dropped is the number of held messages lost to backlog overflow.
	Dropped() int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "FAULT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// TransitionPayload is the message structure for state transitions.
type TransitionPayload struct {
	Transition TransitionInner `json:"transition"`
}

// TransitionInner contains the transition details.
type TransitionInner struct {
	Timestamp string          `json:"timestamp"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Cause     string          `json:"cause,omitempty"`
	Elapsed   status.TimeJSON `json:"elapsed"`
	Remaining status.TimeJSON `json:"remaining"`
}

// FormatTransition creates the JSON payload for a transition.
func FormatTransition(tr logic.Transition) ([]byte, error) {
	payload := TransitionPayload{
		Transition: TransitionInner{
			Timestamp: tr.Timestamp.UTC().Format(time.RFC3339),
			From:      string(tr.From),
			To:        string(tr.To),
			Cause:     string(tr.Cause),
			Elapsed:   status.NewTimeJSON(tr.Elapsed),
			Remaining: status.NewTimeJSON(tr.Elapsed.Remaining()),
		},
	}
	return json.Marshal(payload)
}

// BeaconPayload is the message structure for advertisements.
type BeaconPayload struct {
	Beacon BeaconInner `json:"beacon"`
}

// BeaconInner contains one advertisement. URL is set for identity beacons;
// CompanyID and Data (hex) for status beacons.
type BeaconInner struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	URL       string `json:"url,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Data      string `json:"data,omitempty"`
}

// FormatAdvertisement creates the JSON payload for an advertisement.
func FormatAdvertisement(at time.Time, ad logic.Advertisement) ([]byte, error) {
	inner := BeaconInner{
		Timestamp: at.UTC().Format(time.RFC3339),
		Kind:      string(ad.Kind),
	}
	switch ad.Kind {
	case logic.AdIdentity:
		inner.URL = ad.URL
	case logic.AdStatus:
		inner.CompanyID = fmt.Sprintf("0x%04x", ad.CompanyID)
		inner.Data = hex.EncodeToString(ad.Data)
	default:
		return nil, fmt.Errorf("unknown advertisement kind %q", ad.Kind)
	}
	return json.Marshal(BeaconPayload{Beacon: inner})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
