package config

import "sort"

// Presets are named launch setups. "reference" reproduces the default form
// of the original calculator, which diverges within a few steps.
var Presets = map[string]*Config{
	"reference": {
		Name: "reference", Elevation: 45, Dt: 0.01, Steps: 100, ValidateState: true,
		Env: EnvironmentConfig{Caliber: 0.00762, BallisticCoefficient: 0.4},
	},
	"flat": {
		Name: "flat", Elevation: 0, Dt: 0.01, Steps: 100, ValidateState: true,
		Env: EnvironmentConfig{Caliber: 0.00762, BallisticCoefficient: 0.4},
	},
	"vertical": {
		Name: "vertical", Elevation: 90, Dt: 0.01, Steps: 100, ValidateState: true,
		Env: EnvironmentConfig{Caliber: 0.00762, BallisticCoefficient: 0.4},
	},
	"lob": {
		Name: "lob", Elevation: 45, Dt: 0.01, Steps: 20000, StopAtGround: true, ValidateState: true,
		Env: EnvironmentConfig{Caliber: 20, BallisticCoefficient: 0.9},
	},
	"crosswind": {
		Name: "crosswind", Elevation: 30, Dt: 0.01, Steps: 20000, StopAtGround: true, ValidateState: true,
		Env: EnvironmentConfig{Wind: -15, Caliber: 20, BallisticCoefficient: 0.9},
	},
	"vacuum": {
		Name: "vacuum", Elevation: 45, Dt: 0.01, Steps: 20000, StopAtGround: true, ValidateState: true,
		Env: EnvironmentConfig{Caliber: 1, BallisticCoefficient: 1e12},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
