package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of the environment variables read by LoadEnv.
const EnvPrefix = "THREEPHASE_"

// LoadEnv loads the given .env files, when they exist, into the process
// environment and then overrides the configuration with the THREEPHASE_*
// variables. Variables already set in the process win over the files.
func (c *Config) LoadEnv(envFiles ...string) error {
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return c.applyEnv()
}

func (c *Config) applyEnv() error {
	s := &c.Simulation

	vars := []struct {
		name  string
		parse func(string) error
	}{
		{"DURATION", uint32Parser(&s.Duration)},
		{"NUMBER_OF_RUNS", uint32Parser(&s.NumberOfRuns)},
		{"WARM_UP_TIME", uint32Parser(&s.WarmUpTime)},
		{"SPEED", uint32Parser(&s.Speed)},
		{"DELAY_DURATION", uint32Parser(&s.DelayDuration)},
		{"STEP", boolParser(&s.Step)},
		{"RECORDING", boolParser(&c.Recording.Enabled)},
		{"RECORDING_OUTPUT", stringParser(&c.Recording.Output)},
		{"MONITORING", boolParser(&c.Monitoring.Enabled)},
		{"MONITORING_PORT", intParser(&c.Monitoring.Port)},
		{"OPEN_BROWSER", boolParser(&c.Monitoring.OpenBrowser)},
		{"LOG_LEVEL", stringParser(&c.LogLevel)},
		{"SEED", int64Parser(&c.Seed)},
	}

	for _, v := range vars {
		value, ok := os.LookupEnv(EnvPrefix + v.name)
		if !ok {
			continue
		}

		if err := v.parse(value); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, v.name, err)
		}
	}

	return nil
}

func uint32Parser(dst *uint32) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return err
		}

		*dst = uint32(v)

		return nil
	}
}

func intParser(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}

		*dst = v

		return nil
	}
}

func int64Parser(dst *int64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}

		*dst = v

		return nil
	}
}

func boolParser(dst *bool) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}

		*dst = v

		return nil
	}
}

func stringParser(dst *string) func(string) error {
	return func(s string) error {
		*dst = s
		return nil
	}
}
