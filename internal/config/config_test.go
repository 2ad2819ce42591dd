package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Setpoint.MinF != 50 || cfg.Setpoint.MaxF != 90 {
		t.Errorf("setpoint range: got [%v, %v], want [50, 90]", cfg.Setpoint.MinF, cfg.Setpoint.MaxF)
	}
	if cfg.Setpoint.MidF != 72 {
		t.Errorf("mid setpoint: got %v, want 72", cfg.Setpoint.MidF)
	}
	if cfg.Control.HysteresisF != 2.0 {
		t.Errorf("hysteresis: got %v, want 2.0", cfg.Control.HysteresisF)
	}
	if cfg.Control.FilterAlpha != 0.1 {
		t.Errorf("filter alpha: got %v, want 0.1", cfg.Control.FilterAlpha)
	}
	if cfg.Control.SampleIntervalMs != 250 || cfg.Control.ControlIntervalMs != 1000 || cfg.Control.DisplayIntervalMs != 200 {
		t.Errorf("intervals: got %d/%d/%d, want 250/1000/200",
			cfg.Control.SampleIntervalMs, cfg.Control.ControlIntervalMs, cfg.Control.DisplayIntervalMs)
	}
	if cfg.Sensor.Samples != 8 {
		t.Errorf("samples: got %d, want 8", cfg.Sensor.Samples)
	}
}

func TestLoadFileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("missing file should use defaults, got error: %v", err)
	}
	if cfg.Setpoint.MidF != 72 {
		t.Errorf("mid setpoint: got %v, want default 72", cfg.Setpoint.MidF)
	}
}

func TestLoadPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
setpoint:
  min_f: 55
  max_f: 85
  mid_f: 70
  mid_raw: 500

control:
  hysteresis_f: 3.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Setpoint.MinF != 55 || cfg.Setpoint.MaxF != 85 {
		t.Errorf("setpoint range: got [%v, %v], want [55, 85]", cfg.Setpoint.MinF, cfg.Setpoint.MaxF)
	}
	if cfg.Control.HysteresisF != 3.0 {
		t.Errorf("hysteresis: got %v, want 3.0", cfg.Control.HysteresisF)
	}
	// Fields missing from the file keep defaults
	if cfg.Control.FilterAlpha != 0.1 {
		t.Errorf("filter alpha: got %v, want default 0.1", cfg.Control.FilterAlpha)
	}
	if cfg.Sensor.VRef != 3.3 {
		t.Errorf("vref: got %v, want default 3.3", cfg.Sensor.VRef)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("setpoint: ["), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty setpoint range", func(c *Config) { c.Setpoint.MinF = 90; c.Setpoint.MaxF = 50 }},
		{"mid outside range", func(c *Config) { c.Setpoint.MidF = 120 }},
		{"zero hysteresis", func(c *Config) { c.Control.HysteresisF = 0 }},
		{"alpha too large", func(c *Config) { c.Control.FilterAlpha = 1.0 }},
		{"alpha zero", func(c *Config) { c.Control.FilterAlpha = 0 }},
		{"no samples", func(c *Config) { c.Sensor.Samples = 0 }},
		{"zero full scale", func(c *Config) { c.Sensor.FullScale = 0 }},
		{"empty clamp range", func(c *Config) { c.Sensor.VoltMin = 2.8; c.Sensor.VoltMax = 0.2 }},
		{"zero slope", func(c *Config) { c.Sensor.SlopeVPerC = 0 }},
		{"zero interval", func(c *Config) { c.Control.ControlIntervalMs = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
