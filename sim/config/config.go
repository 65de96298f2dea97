// Package config loads and validates the YAML run configuration.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tasha-sim/tasha-sim/sim"
	"github.com/tasha-sim/tasha-sim/sim/modechoice"
	"github.com/tasha-sim/tasha-sim/sim/scheduler"
	"github.com/tasha-sim/tasha-sim/sim/trace"
)

// RunConfig is the top-level run configuration.
// Loaded from YAML via Load(path).
type RunConfig struct {
	Seed          int64            `yaml:"seed"`
	QueueCapacity int              `yaml:"queue_capacity"` // 0 = 10 x GOMAXPROCS
	LoaderWorkers int              `yaml:"loader_workers"` // 0 = GOMAXPROCS
	Inputs        InputsConfig     `yaml:"inputs"`
	Scheduler     SchedulerConfig  `yaml:"scheduler"`
	ModeChoice    ModeChoiceConfig `yaml:"mode_choice"`
	Trace         TraceConfig      `yaml:"trace"`
}

// InputsConfig names the survey CSV files.
type InputsConfig struct {
	Households string `yaml:"households"`
	Persons    string `yaml:"persons,omitempty"`
	Trips      string `yaml:"trips,omitempty"`
	Zones      string `yaml:"zones"`
}

// SchedulerConfig selects the scheduler stage.
type SchedulerConfig struct {
	Name string `yaml:"name"` // "", "none" or "tasha1"
}

// ModeChoiceConfig enables the mode-choice stage and holds its mode table.
type ModeChoiceConfig struct {
	Enabled bool              `yaml:"enabled"`
	Modes   []modechoice.Mode `yaml:"modes,omitempty"`
}

// TraceConfig selects decision tracing.
type TraceConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration with the default seed and no inputs.
func Default() *RunConfig {
	return &RunConfig{Seed: int64(sim.DefaultSimulationKey)}
}

// Load reads a run configuration from path. Unknown fields are rejected and
// omitted fields keep the values from Default.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all fields in the configuration are valid.
func (c *RunConfig) Validate() error {
	if _, err := sim.NewSimulationKey(c.Seed); err != nil {
		return err
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue_capacity must be >= 0, got %d", c.QueueCapacity)
	}
	if c.LoaderWorkers < 0 {
		return fmt.Errorf("loader_workers must be >= 0, got %d", c.LoaderWorkers)
	}
	if c.Inputs.Households == "" {
		return fmt.Errorf("inputs.households is required")
	}
	if c.Inputs.Zones == "" {
		return fmt.Errorf("inputs.zones is required")
	}
	if !scheduler.IsValidScheduler(c.Scheduler.Name) {
		return fmt.Errorf("unknown scheduler %q; valid: %v", c.Scheduler.Name, scheduler.ValidSchedulerNames())
	}
	if c.ModeChoice.Enabled {
		if err := modechoice.ValidateModes(c.ModeChoice.Modes); err != nil {
			return fmt.Errorf("mode_choice: %w", err)
		}
	}
	if !trace.IsValidTraceLevel(c.Trace.Level) {
		return fmt.Errorf("unknown trace level %q; valid: none, decisions", c.Trace.Level)
	}
	return nil
}

// SimulationKey returns the run-level seed as a SimulationKey. Call Validate first.
func (c *RunConfig) SimulationKey() sim.SimulationKey {
	return sim.SimulationKey(c.Seed)
}
