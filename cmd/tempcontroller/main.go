// Command tempcontroller regulates a resistive heating element from an
// analog temperature probe and a setpoint dial. A cooperative scheduler
// drives the sampling, control, and LED display tasks; state changes
// are published to MQTT and a read-only status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/JeffRocchio/TemperatureController/internal/config"
	"github.com/JeffRocchio/TemperatureController/internal/control"
	"github.com/JeffRocchio/TemperatureController/internal/display"
	"github.com/JeffRocchio/TemperatureController/internal/hal"
	"github.com/JeffRocchio/TemperatureController/internal/mqtt"
	"github.com/JeffRocchio/TemperatureController/internal/sched"
	"github.com/JeffRocchio/TemperatureController/internal/sensor"
	"github.com/JeffRocchio/TemperatureController/internal/status"
	"github.com/JeffRocchio/TemperatureController/internal/web"
)

func main() {
	confPath := flag.String("conf", "/etc/tempcontroller.yaml", "Configuration file (YAML)")
	tick := flag.Duration("tick", time.Millisecond, "Scheduler poll interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", `MQTT broker address ("off" disables publishing)`)
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "Print one probe/dial reading and exit")
	skipSelfTest := flag.Bool("skip-self-test", false, "Skip the boot LED lamp sequence")
	verbose := flag.Bool("verbose", false, "Verbose logging")

	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(*confPath, *tick, *broker, *heartbeat, *httpAddr, *printState, *skipSelfTest); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(confPath string, tick time.Duration, broker string, heartbeat time.Duration, httpAddr string, printState, skipSelfTest bool) error {
	cfg, err := config.Load(confPath)
	if err != nil {
		return err
	}

	adc, err := hal.NewRealADC(cfg.Sensor.ProbeChannel, cfg.Sensor.DialChannel)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer adc.Close()

	pins, err := hal.NewRealPins(cfg.Pins.Heater, cfg.Pins.Above, cfg.Pins.InBand, cfg.Pins.Below)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	// Close forces the heater and LEDs low on the way out.
	defer pins.Close()

	probe := sensor.NewProbe(adc, cfg.Sensor)
	dial := sensor.NewDial(adc, cfg.Sensor, cfg.Setpoint)

	if printState {
		tempF, err := probe.Read()
		if err != nil {
			return fmt.Errorf("read probe: %w", err)
		}
		setF, err := dial.Read()
		if err != nil {
			return fmt.Errorf("read dial: %w", err)
		}
		fmt.Printf("temp: %.1f F, setpoint: %.1f F\n", tempF, setF)
		return nil
	}

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if broker != "off" {
		real := mqtt.NewRealPublisher(broker)
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		SampleMs:    cfg.Control.SampleIntervalMs,
		ControlMs:   cfg.Control.ControlIntervalMs,
		DisplayMs:   cfg.Control.DisplayIntervalMs,
		HysteresisF: cfg.Control.HysteresisF,
		MinSetF:     cfg.Setpoint.MinF,
		MaxSetF:     cfg.Setpoint.MaxF,
		Broker:      broker,
		HTTPAddr:    httpAddr,
	})

	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Warnf("failed to publish startup event: %v", err)
		} else {
			log.Infof("published startup event")
		}
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warnf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", httpAddr)
	}

	panel := display.NewPanel(pins, cfg.Pins, cfg.Control.HysteresisF, cfg.Control.DisplayIntervalMs)
	if !skipSelfTest {
		if err := panel.SelfTest(time.Sleep); err != nil {
			log.Warnf("led self test: %v", err)
		}
	}

	// Seed the filter from a real reading where possible so the first
	// control decisions aren't made against an assumed room value.
	seed := cfg.Setpoint.MidF
	if tempF, err := probe.Read(); err == nil {
		seed = tempF
	} else {
		log.Warnf("initial probe read: %v", err)
	}

	l := &loop{
		cfg:        cfg,
		probe:      probe,
		dial:       dial,
		filter:     sensor.NewFilter(cfg.Control.FilterAlpha, seed),
		controller: control.New(cfg.Control.HysteresisF),
		panel:      panel,
		pins:       pins,
		heaterPin:  cfg.Pins.Heater,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		setpointF:  cfg.Setpoint.MidF,
		lastRegion: display.AtSetpoint,
		heartbeat:  heartbeat,
	}

	log.Infof("started: tick=%v sample=%dms control=%dms display=%dms broker=%s",
		tick, cfg.Control.SampleIntervalMs, cfg.Control.ControlIntervalMs, cfg.Control.DisplayIntervalMs, broker)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(l, hal.NewClock(), ticker.C, sigCh)
}

// loop owns the controller state. The scheduler hands each task
// mutable access one at a time; no locking is needed because the
// whole control path runs on one goroutine.
type loop struct {
	cfg        *config.Config
	probe      *sensor.Probe
	dial       *sensor.Dial
	filter     *sensor.Filter
	controller *control.Controller
	panel      *display.Panel
	pins       hal.Pins
	heaterPin  int
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker

	setpointF  float64
	lastRegion display.Region

	heartbeat     time.Duration
	lastHeartbeat time.Time
}

// sampleTask reads the probe and folds it into the filter.
func (l *loop) sampleTask(now uint32) {
	tempF, err := l.probe.Read()
	if err != nil {
		log.Warnf("probe read: %v", err)
		return
	}
	filtered := l.filter.Update(tempF)
	log.Debugf("sample: raw=%.2fF filtered=%.2fF", tempF, filtered)
}

// controlTask reads the dial, evaluates the hysteresis controller,
// writes the actuator, and reclassifies the display region. The
// actuator write happens on every tick, changed or not, so a glitched
// previous write corrects itself.
func (l *loop) controlTask(now uint32) {
	if setF, err := l.dial.Read(); err != nil {
		log.Warnf("dial read: %v", err)
	} else {
		l.setpointF = setF
	}

	d := l.controller.Evaluate(l.filter.Value(), l.setpointF)
	if err := l.pins.Set(l.heaterPin, d.State == control.StateOn); err != nil {
		log.Warnf("heater write: %v", err)
	}

	l.panel.SetDisplayState(d.Filtered, d.Setpoint)
	region := l.panel.Region()

	l.tracker.Update(d.State, region.String(), d.Filtered, d.Setpoint)
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}

	if d.Changed {
		counts := l.tracker.CountTransition(d.State)
		log.Infof("heater %s (temp=%.1fF setpoint=%.1fF on=%d off=%d)",
			d.State, d.Filtered, d.Setpoint, counts.HeaterOn, counts.HeaterOff)
		l.publishEvent(heaterEventType(d.State), d, region)
	}

	if region != l.lastRegion {
		l.lastRegion = region
		log.Debugf("region %s (temp=%.1fF setpoint=%.1fF)", region, d.Filtered, d.Setpoint)
		l.publishEvent(mqtt.EventRegionChange, d, region)
	}
}

// displayTask rewrites the LEDs on its own cadence; the panel applies
// its own debounce and change suppression.
func (l *loop) displayTask(now uint32) {
	if err := l.panel.Update(now); err != nil {
		log.Warnf("led write: %v", err)
	}
}

func (l *loop) publishEvent(eventType mqtt.EventType, d control.Decision, region display.Region) {
	if l.publisher == nil {
		return
	}
	err := l.publisher.Publish(mqtt.Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Heater:    d.State,
		Region:    region.String(),
		TempF:     d.Filtered,
		SetpointF: d.Setpoint,
	})
	if err != nil {
		log.Warnf("publish %s: %v", eventType, err)
	}
}

// checkHeartbeat publishes a status snapshot if the interval elapsed.
func (l *loop) checkHeartbeat(now time.Time) {
	if l.heartbeat <= 0 || l.publisher == nil {
		return
	}
	if l.lastHeartbeat.IsZero() {
		l.lastHeartbeat = now
		return
	}
	if now.Sub(l.lastHeartbeat) < l.heartbeat {
		return
	}
	l.lastHeartbeat = now

	snap := l.tracker.Snapshot()
	log.Infof("heartbeat: uptime=%v heater=%s on=%d off=%d",
		snap.Uptime().Truncate(time.Second), snap.Heater, snap.Counts.HeaterOn, snap.Counts.HeaterOff)

	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Warnf("heartbeat publish error: %v", err)
	}
}

// shutdown forces the safe state and publishes a retained SHUTDOWN
// event before the daemon exits.
func (l *loop) shutdown(reason string) {
	if err := l.pins.Set(l.heaterPin, false); err != nil {
		log.Warnf("heater off on shutdown: %v", err)
	}
	if err := l.panel.AllOff(); err != nil {
		log.Warnf("leds off on shutdown: %v", err)
	}

	if l.publisher == nil {
		return
	}
	snap := l.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Warnf("failed to publish shutdown event: %v", err)
	} else {
		log.Infof("published shutdown event")
	}
}

// runLoop drives the scheduler from the tick channel until a signal
// arrives. Split from run so tests can feed scripted ticks and signals.
func runLoop(l *loop, clock hal.Clock, tick <-chan time.Time, sig <-chan os.Signal) error {
	tasks := sched.New()
	tasks.Add("sample", l.cfg.Control.SampleIntervalMs, l.sampleTask)
	tasks.Add("control", l.cfg.Control.ControlIntervalMs, l.controlTask)
	tasks.Add("display", l.cfg.Control.DisplayIntervalMs, l.displayTask)

	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			l.shutdown(signalName(s))
			return nil

		case <-tick:
			tasks.Poll(clock())
			l.checkHeartbeat(time.Now())
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func heaterEventType(s control.State) mqtt.EventType {
	if s == control.StateOn {
		return mqtt.EventHeaterOn
	}
	return mqtt.EventHeaterOff
}
