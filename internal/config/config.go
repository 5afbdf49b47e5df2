package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/form"
	"github.com/san-kum/trajsim/internal/physics"
)

const (
	DefaultSteps     = 100
	DefaultElevation = 45.0
	DefaultLogLevel  = "info"
)

type Config struct {
	Name          string            `yaml:"name,omitempty"`
	Elevation     float64           `yaml:"elevation"`
	Env           EnvironmentConfig `yaml:"environment"`
	Dt            float64           `yaml:"dt"`
	Steps         int               `yaml:"steps"`
	StopAtGround  bool              `yaml:"stop_at_ground"`
	ValidateState bool              `yaml:"validate_state"`
	LogLevel      string            `yaml:"log_level"`
}

type EnvironmentConfig struct {
	Wind                 float64 `yaml:"wind"`
	Caliber              float64 `yaml:"caliber"`
	BallisticCoefficient float64 `yaml:"ballistic_coefficient"`
}

func DefaultConfig() *Config {
	return &Config{
		Elevation: DefaultElevation,
		Env: EnvironmentConfig{
			Caliber:              form.DefaultCaliber,
			BallisticCoefficient: form.DefaultBallisticCoefficient,
		},
		Dt:            physics.DefaultDt,
		Steps:         DefaultSteps,
		ValidateState: true,
		LogLevel:      DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrInvalidConfig)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d: %w", c.Steps, dynamo.ErrInvalidConfig)
	}
	return c.Environment().Validate()
}

func (c *Config) Environment() dynamo.Environment {
	return dynamo.Environment{
		Wind:                 c.Env.Wind,
		Caliber:              c.Env.Caliber,
		BallisticCoefficient: c.Env.BallisticCoefficient,
	}
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		StopAtGround:  c.StopAtGround,
		ValidateState: c.ValidateState,
	}
}

// Form seeds an input form with this config's launch parameters.
func (c *Config) Form() *form.Form {
	f := form.New()
	f.Set(form.Wind, c.Env.Wind)
	f.Set(form.Elevation, c.Elevation)
	f.Set(form.Caliber, c.Env.Caliber)
	f.Set(form.BallisticCoefficient, c.Env.BallisticCoefficient)
	return f
}
