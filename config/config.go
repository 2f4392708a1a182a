// Package config loads the settings of a simulation from a YAML file and from
// THREEPHASE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/threephase/sim"
)

// Simulation holds the parameters pushed into the configurator.
type Simulation struct {
	Duration      uint32 `yaml:"duration"`
	NumberOfRuns  uint32 `yaml:"number_of_runs"`
	WarmUpTime    uint32 `yaml:"warm_up_time"`
	Speed         uint32 `yaml:"speed"`
	DelayDuration uint32 `yaml:"delay_duration"`
	Step          bool   `yaml:"step"`
}

// Recording selects where the trace and the lifecycle are recorded.
type Recording struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"`
}

// Monitoring selects how the monitoring server is started.
type Monitoring struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// Config is the full configuration file.
type Config struct {
	Simulation Simulation `yaml:"simulation"`
	Recording  Recording  `yaml:"recording"`
	Monitoring Monitoring `yaml:"monitoring"`
	LogLevel   string     `yaml:"log_level"`
	Seed       int64      `yaml:"seed"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Simulation: Simulation{
			Duration:      uint32(sim.DefaultDuration),
			NumberOfRuns:  sim.DefaultNumberOfRuns,
			Speed:         uint32(sim.DefaultSpeed),
			DelayDuration: sim.DefaultDelayDuration,
		},
		LogLevel: logrus.InfoLevel.String(),
		Seed:     1,
	}
}

// Load reads the configuration file at path. Values missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if err := c.ReadFile(path); err != nil {
		return nil, err
	}

	return c, nil
}

// Parse decodes a configuration. Unknown fields are rejected.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	if err := c.Decode(r); err != nil {
		return nil, err
	}

	return c, nil
}

// ReadFile overrides the configuration with the values set in the file at
// path.
func (c *Config) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	return c.Decode(bytes.NewReader(data))
}

// Decode overrides the configuration with the values set in the YAML
// document. Unknown fields are rejected.
func (c *Config) Decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	err := decoder.Decode(c)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config: %w", err)
	}

	return nil
}

// Level returns the log level.
func (c *Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}

// Validate checks the values against the limits of the configurator.
func (c *Config) Validate() error {
	s := c.Simulation

	checks := []struct {
		parameter string
		value     uint64
		min, max  uint64
	}{
		{"duration", uint64(s.Duration), 0, sim.UpperBound},
		{"number of runs", uint64(s.NumberOfRuns), 1, sim.UpperBound},
		{"warm-up time", uint64(s.WarmUpTime), 0, sim.UpperBound},
		{"speed", uint64(s.Speed), 0, uint64(sim.MaxSpeed)},
		{"delay duration", uint64(s.DelayDuration), 0, sim.UpperBound},
	}

	for _, check := range checks {
		if check.value < check.min || check.value > check.max {
			return &sim.RangeError{
				Parameter: check.parameter,
				Value:     check.value,
				Min:       check.min,
				Max:       check.max,
			}
		}
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Monitoring.Port < 0 || c.Monitoring.Port > 65535 {
		return fmt.Errorf("invalid monitoring port %d", c.Monitoring.Port)
	}

	if !c.Monitoring.Enabled &&
		(c.Monitoring.Port != 0 || c.Monitoring.OpenBrowser) {
		return errors.New("monitoring options are set but monitoring is disabled")
	}

	if !c.Recording.Enabled && c.Recording.Output != "" {
		return errors.New("recording output is set but recording is disabled")
	}

	return nil
}

// Apply pushes the simulation section into the configurator. The
// configurator must be idle.
func (c *Config) Apply(configurator *sim.Configurator) error {
	s := c.Simulation

	setters := []struct {
		parameter string
		set       func() error
	}{
		{"duration", func() error {
			return configurator.SetDuration(sim.VTime(s.Duration))
		}},
		{"number of runs", func() error {
			return configurator.SetNumberOfRuns(s.NumberOfRuns)
		}},
		{"warm-up time", func() error {
			return configurator.SetWarmUpTime(sim.VTime(s.WarmUpTime))
		}},
		{"speed", func() error { return configurator.SetSpeed(s.Speed) }},
		{"delay duration", func() error {
			return configurator.SetDelayDuration(s.DelayDuration)
		}},
		{"step", func() error { return configurator.SetStep(s.Step) }},
	}

	for _, setter := range setters {
		if err := setter.set(); err != nil {
			return fmt.Errorf("applying %s: %w", setter.parameter, err)
		}
	}

	return nil
}
