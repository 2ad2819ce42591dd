// Package mqtt publishes controller telemetry with abstraction for
// testing. Publish-only: the daemon never subscribes, so there is no
// remote-control path into the control loop.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/JeffRocchio/TemperatureController/internal/control"
)

// Topic is the MQTT topic for heater controller events.
const Topic = "home/heater/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/heater/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// EventType represents a controller transition event.
type EventType string

const (
	EventHeaterOn     EventType = "HEATER_ON"
	EventHeaterOff    EventType = "HEATER_OFF"
	EventRegionChange EventType = "REGION_CHANGE"
)

// Event represents a controller transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Heater    control.State
	Region    string
	TempF     float64
	SetpointF float64
}

// SystemEvent represents a system lifecycle event (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Heater HeaterPayload `json:"heater"`
}

// HeaterPayload contains the controller event details.
type HeaterPayload struct {
	Timestamp string  `json:"timestamp"`
	Event     string  `json:"event"`
	State     string  `json:"state"`
	Region    string  `json:"region"`
	TempF     float64 `json:"temp_f"`
	SetpointF float64 `json:"setpoint_f"`
}

// FormatPayload creates the JSON payload for a controller event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Heater: HeaterPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(event.Heater),
			Region:    event.Region,
			TempF:     event.TempF,
			SetpointF: event.SetpointF,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
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
