package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Heater        string     `json:"heater"`
	Region        string     `json:"region"`
	TempF         float64    `json:"temp_f"`
	SetpointF     float64    `json:"setpoint_f"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"transition_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	HeaterOn  int `json:"heater_on"`
	HeaterOff int `json:"heater_off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SampleMs    uint32  `json:"sample_ms"`
	ControlMs   uint32  `json:"control_ms"`
	DisplayMs   uint32  `json:"display_ms"`
	HysteresisF float64 `json:"hysteresis_f"`
	MinSetF     float64 `json:"min_setpoint_f"`
	MaxSetF     float64 `json:"max_setpoint_f"`
	Broker      string  `json:"broker"`
	HTTPAddr    string  `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	heater := string(snap.Heater)
	if heater == "" {
		heater = "UNKNOWN"
	}
	region := snap.Region
	if region == "" {
		region = "UNKNOWN"
	}

	return StatusInner{
		Heater:        heater,
		Region:        region,
		TempF:         snap.TempF,
		SetpointF:     snap.SetpointF,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			HeaterOn:  snap.Counts.HeaterOn,
			HeaterOff: snap.Counts.HeaterOff,
		},
		Config: ConfigJSON{
			SampleMs:    snap.Config.SampleMs,
			ControlMs:   snap.Config.ControlMs,
			DisplayMs:   snap.Config.DisplayMs,
			HysteresisF: snap.Config.HysteresisF,
			MinSetF:     snap.Config.MinSetF,
			MaxSetF:     snap.Config.MaxSetF,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
