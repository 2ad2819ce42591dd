// Package control contains the heater hysteresis state machine. It is
// pure logic: no hardware, no clocks. The caller feeds it the filtered
// temperature and setpoint each control tick and applies the returned
// state to the actuator.
package control

// State represents the heater actuator command.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Decision reports the outcome of one control evaluation.
type Decision struct {
	State    State
	Changed  bool
	Filtered float64
	Setpoint float64
}

// Controller decides the heater state with a symmetric hysteresis band
// around the setpoint. Inside the band the current state is held, so
// noise near the setpoint cannot chatter the actuator.
type Controller struct {
	halfBand float64
	state    State
}

// New creates a Controller for the given total band width. The half
// width is used as the offset on each side of the setpoint, matching
// the display's region boundaries. Initial state is OFF, the safe
// power-on state.
func New(hysteresis float64) *Controller {
	return &Controller{halfBand: hysteresis / 2, state: StateOff}
}

// Evaluate applies the transition rule against the filtered temperature
// and setpoint:
//
//	filtered <= setpoint - band/2  -> ON
//	filtered >= setpoint + band/2  -> OFF
//	otherwise                      -> hold current state
//
// The caller must write the actuator to Decision.State on every call,
// changed or not; the unconditional write makes a glitched previous
// write self-correcting.
func (c *Controller) Evaluate(filtered, setpoint float64) Decision {
	prev := c.state
	switch {
	case filtered <= setpoint-c.halfBand:
		c.state = StateOn
	case filtered >= setpoint+c.halfBand:
		c.state = StateOff
	}
	return Decision{
		State:    c.state,
		Changed:  c.state != prev,
		Filtered: filtered,
		Setpoint: setpoint,
	}
}

// State returns the current heater state.
func (c *Controller) State() State {
	return c.state
}
