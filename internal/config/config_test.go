package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/form"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt != 0.01 {
		t.Errorf("expected dt 0.01, got %f", cfg.Dt)
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrInvalidConfig},
		{"zero steps", func(c *Config) { c.Steps = 0 }, dynamo.ErrInvalidConfig},
		{"zero caliber", func(c *Config) { c.Env.Caliber = 0 }, dynamo.ErrParameterBounds},
		{"negative bc", func(c *Config) { c.Env.BallisticCoefficient = -1 }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.yaml")
	data := []byte("elevation: 30\nenvironment:\n  wind: 2.5\nsteps: 250\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Elevation != 30 {
		t.Errorf("expected elevation 30, got %f", cfg.Elevation)
	}
	if cfg.Env.Wind != 2.5 {
		t.Errorf("expected wind 2.5, got %f", cfg.Env.Wind)
	}
	if cfg.Steps != 250 {
		t.Errorf("expected 250 steps, got %d", cfg.Steps)
	}
	if cfg.Env.Caliber != form.DefaultCaliber {
		t.Errorf("expected default caliber, got %f", cfg.Env.Caliber)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("expected default dt, got %f", cfg.Dt)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("steps: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("crosswind")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", *cfg, *loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("reference")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Elevation != 45 || cfg.Env.Caliber != 0.00762 || cfg.Env.BallisticCoefficient != 0.4 {
		t.Errorf("unexpected reference preset %+v", cfg)
	}

	cfg.Elevation = 10
	if Presets["reference"].Elevation != 45 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestPresetsValidateState(t *testing.T) {
	for _, name := range ListPresets() {
		if !GetPreset(name).ValidateState {
			t.Errorf("preset %s should stop on non-finite states like the default config", name)
		}
	}
}

func TestForm(t *testing.T) {
	cfg := GetPreset("crosswind")
	f := cfg.Form()

	if f.Environment() != cfg.Environment() {
		t.Errorf("expected %+v, got %+v", cfg.Environment(), f.Environment())
	}
	if f.Elevation() != 30 {
		t.Errorf("expected elevation 30, got %f", f.Elevation())
	}
}
