// Package status provides a thread-safe status tracker for the
// controller daemon. The control loop writes it every control tick;
// HTTP handlers and system-event payloads read point-in-time snapshots.
package status

import (
	"sync"
	"time"

	"github.com/JeffRocchio/TemperatureController/internal/control"
)

// Counts tracks heater transitions since startup.
type Counts struct {
	HeaterOn  int
	HeaterOff int
}

// Config contains daemon configuration for display.
type Config struct {
	SampleMs    uint32
	ControlMs   uint32
	DisplayMs   uint32
	HysteresisF float64
	MinSetF     float64
	MaxSetF     float64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Heater        control.State
	Region        string
	TempF         float64
	SetpointF     float64
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
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

// Update sets the controller view: heater state, display region, and
// the values they were decided from. Called every control tick.
func (t *Tracker) Update(heater control.State, region string, tempF, setpointF float64) {
	t.mu.Lock()
	t.snap.Heater = heater
	t.snap.Region = region
	t.snap.TempF = tempF
	t.snap.SetpointF = setpointF
	t.mu.Unlock()
}

// CountTransition bumps the transition counter for the new state and
// returns the updated counts.
func (t *Tracker) CountTransition(to control.State) Counts {
	t.mu.Lock()
	if to == control.StateOn {
		t.snap.Counts.HeaterOn++
	} else {
		t.snap.Counts.HeaterOff++
	}
	c := t.snap.Counts
	t.mu.Unlock()
	return c
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
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
