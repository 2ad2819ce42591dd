// End-to-end test of the control pipeline: scripted ADC conversions
// flow through the probe, filter, hysteresis controller, LED panel, and
// MQTT publisher, driven by the cooperative scheduler exactly as the
// daemon drives them.
package internal_test

import (
	"encoding/json"
	"testing"

	"github.com/JeffRocchio/TemperatureController/internal/config"
	"github.com/JeffRocchio/TemperatureController/internal/control"
	"github.com/JeffRocchio/TemperatureController/internal/display"
	"github.com/JeffRocchio/TemperatureController/internal/hal"
	"github.com/JeffRocchio/TemperatureController/internal/mqtt"
	"github.com/JeffRocchio/TemperatureController/internal/sched"
	"github.com/JeffRocchio/TemperatureController/internal/sensor"
)

// Unity-gain calibration: tempF = 212 - 0.18*raw, so raw 850 reads
// 59 F and raw 750 reads 77 F. The dial maps 0/500/1000 to 50/72/90 F.
func pipelineConfig() *config.Config {
	cfg := config.Default()
	cfg.Sensor.Samples = 1
	cfg.Sensor.VRef = 1.0
	cfg.Sensor.FullScale = 1000
	cfg.Sensor.VoltMin = 0.0
	cfg.Sensor.VoltMax = 1.0
	cfg.Sensor.VZeroC = 1.0
	cfg.Sensor.SlopeVPerC = 0.01
	cfg.Setpoint.MidRaw = 500
	return cfg
}

func TestPipelineWarmupAndOvershoot(t *testing.T) {
	cfg := pipelineConfig()

	// The room starts cold at 59 F, warms through the setpoint band
	// around 72 F, and overshoots to a steady 77 F.
	adc := hal.NewFakeADC(map[int][]int{
		0: {850, 850, 850, 850, 800, 800, 780, 770, 760, 750},
		1: {500},
	})
	pins := hal.NewFakePins()
	pub := mqtt.NewFakePublisher()
	pub.Connected = true

	probe := sensor.NewProbe(adc, cfg.Sensor)
	dial := sensor.NewDial(adc, cfg.Sensor, cfg.Setpoint)
	panel := display.NewPanel(pins, cfg.Pins, cfg.Control.HysteresisF, cfg.Control.DisplayIntervalMs)
	controller := control.New(cfg.Control.HysteresisF)

	seed, err := probe.Read()
	if err != nil {
		t.Fatalf("prime probe: %v", err)
	}
	if seed != 59 {
		t.Fatalf("seed temp: got %v, want 59", seed)
	}
	filter := sensor.NewFilter(0.5, seed)

	setpointF := cfg.Setpoint.MidF
	tasks := sched.New()
	tasks.Add("sample", cfg.Control.SampleIntervalMs, func(now uint32) {
		if tempF, err := probe.Read(); err == nil {
			filter.Update(tempF)
		}
	})
	tasks.Add("control", cfg.Control.ControlIntervalMs, func(now uint32) {
		if setF, err := dial.Read(); err == nil {
			setpointF = setF
		}
		d := controller.Evaluate(filter.Value(), setpointF)
		if err := pins.Set(cfg.Pins.Heater, d.State == control.StateOn); err != nil {
			t.Fatalf("heater write: %v", err)
		}
		panel.SetDisplayState(d.Filtered, d.Setpoint)
		if d.Changed {
			eventType := mqtt.EventHeaterOff
			if d.State == control.StateOn {
				eventType = mqtt.EventHeaterOn
			}
			pub.Publish(mqtt.Event{
				Type:      eventType,
				Heater:    d.State,
				Region:    panel.Region().String(),
				TempF:     d.Filtered,
				SetpointF: d.Setpoint,
			})
		}
	})
	tasks.Add("display", cfg.Control.DisplayIntervalMs, func(now uint32) {
		if err := panel.Update(now); err != nil {
			t.Fatalf("led write: %v", err)
		}
	})

	var sawHeaterOn bool
	for now := uint32(10); now <= 15000; now += 10 {
		tasks.Poll(now)
		if !sawHeaterOn && now >= cfg.Control.ControlIntervalMs {
			if !pins.Levels[cfg.Pins.Heater] {
				t.Fatalf("heater not on after first control tick (t=%d)", now)
			}
			sawHeaterOn = true
		}
	}

	// 59 F start, steady 77 F end: exactly one ON and one OFF.
	if len(pub.Events) != 2 {
		t.Fatalf("heater events: got %d, want 2 (%+v)", len(pub.Events), pub.Events)
	}
	if pub.Events[0].Type != mqtt.EventHeaterOn {
		t.Errorf("first event: got %s, want HEATER_ON", pub.Events[0].Type)
	}
	if pub.Events[0].Region != "BELOW" {
		t.Errorf("first event region: got %s, want BELOW", pub.Events[0].Region)
	}
	if pub.Events[1].Type != mqtt.EventHeaterOff {
		t.Errorf("second event: got %s, want HEATER_OFF", pub.Events[1].Type)
	}
	if pub.Events[1].TempF < 73 {
		t.Errorf("off event temp %v should be at or above the band top 73", pub.Events[1].TempF)
	}

	if pins.Levels[cfg.Pins.Heater] {
		t.Error("heater should end off at steady 77 F")
	}

	// Steady 77 F with setpoint 72 classifies ABOVE: only the above
	// LED lit.
	if !pins.Levels[cfg.Pins.Above] || pins.Levels[cfg.Pins.InBand] || pins.Levels[cfg.Pins.Below] {
		t.Errorf("final leds: above=%v inBand=%v below=%v, want 1/0/0",
			pins.Levels[cfg.Pins.Above], pins.Levels[cfg.Pins.InBand], pins.Levels[cfg.Pins.Below])
	}

	// The panel writes all three lines together on each region change,
	// and only on region changes, so heater writes aside the pin log
	// length must be a multiple of three.
	ledWrites := 0
	for _, w := range pins.Writes {
		if w.Pin != cfg.Pins.Heater {
			ledWrites++
		}
	}
	if ledWrites == 0 || ledWrites%3 != 0 {
		t.Errorf("led writes: got %d, want a positive multiple of 3", ledWrites)
	}
	if ledWrites > 5*3 {
		t.Errorf("led writes: got %d, more batches than region transitions", ledWrites)
	}
}

func TestPipelinePayloadFormat(t *testing.T) {
	cfg := pipelineConfig()
	adc := hal.NewFakeADC(map[int][]int{0: {850}, 1: {500}})
	pins := hal.NewFakePins()
	pub := mqtt.NewFakePublisher()

	probe := sensor.NewProbe(adc, cfg.Sensor)
	panel := display.NewPanel(pins, cfg.Pins, cfg.Control.HysteresisF, cfg.Control.DisplayIntervalMs)
	controller := control.New(cfg.Control.HysteresisF)

	tempF, err := probe.Read()
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	d := controller.Evaluate(tempF, cfg.Setpoint.MidF)
	panel.SetDisplayState(d.Filtered, d.Setpoint)
	pub.Publish(mqtt.Event{
		Type:      mqtt.EventHeaterOn,
		Heater:    d.State,
		Region:    panel.Region().String(),
		TempF:     d.Filtered,
		SetpointF: d.Setpoint,
	})

	if len(pub.Payloads) != 1 {
		t.Fatalf("payloads: got %d, want 1", len(pub.Payloads))
	}

	var parsed mqtt.Payload
	if err := json.Unmarshal(pub.Payloads[0], &parsed); err != nil {
		t.Fatalf("invalid payload JSON: %v", err)
	}
	h := parsed.Heater
	if h.Event != "HEATER_ON" || h.State != "ON" {
		t.Errorf("payload event/state: got %s/%s", h.Event, h.State)
	}
	if h.Region != "BELOW" {
		t.Errorf("payload region: got %s", h.Region)
	}
	if h.TempF != 59 || h.SetpointF != 72 {
		t.Errorf("payload temps: got (%v, %v), want (59, 72)", h.TempF, h.SetpointF)
	}
}

func TestPipelineDeadbandNoChatter(t *testing.T) {
	cfg := pipelineConfig()

	// A cold start, then the temperature oscillates inside the deadband
	// around 72 F: raw 778 is 71.96 F, raw 779 is 71.78 F. Neither
	// crosses a threshold once the heater is on.
	adc := hal.NewFakeADC(map[int][]int{
		0: {850, 850, 850, 850, 778, 779, 778, 779, 778},
		1: {500},
	})
	pub := mqtt.NewFakePublisher()
	pins := hal.NewFakePins()

	probe := sensor.NewProbe(adc, cfg.Sensor)
	controller := control.New(cfg.Control.HysteresisF)
	filter := sensor.NewFilter(0.9, 59)

	tasks := sched.New()
	tasks.Add("sample", cfg.Control.SampleIntervalMs, func(now uint32) {
		if tempF, err := probe.Read(); err == nil {
			filter.Update(tempF)
		}
	})
	tasks.Add("control", cfg.Control.ControlIntervalMs, func(now uint32) {
		d := controller.Evaluate(filter.Value(), cfg.Setpoint.MidF)
		pins.Set(cfg.Pins.Heater, d.State == control.StateOn)
		if d.Changed {
			eventType := mqtt.EventHeaterOff
			if d.State == control.StateOn {
				eventType = mqtt.EventHeaterOn
			}
			pub.Publish(mqtt.Event{Type: eventType, Heater: d.State})
		}
	})

	for now := uint32(10); now <= 10000; now += 10 {
		tasks.Poll(now)
	}

	// One ON transition on warm-up, then the deadband holds it.
	if len(pub.Events) != 1 {
		t.Fatalf("events: got %d, want 1 (%+v)", len(pub.Events), pub.Events)
	}
	if pub.Events[0].Type != mqtt.EventHeaterOn {
		t.Errorf("event: got %s, want HEATER_ON", pub.Events[0].Type)
	}
	if !pins.Levels[cfg.Pins.Heater] {
		t.Error("heater should stay on inside the deadband")
	}
}
