package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/threephase/config"
	"github.com/sarchlab/threephase/examples/ccu"
	"github.com/sarchlab/threephase/simulation"
)

type runOptions struct {
	configFile  string
	envFile     string
	duration    uint32
	runs        uint32
	warmUp      uint32
	seed        int64
	logLevel    string
	record      bool
	output      string
	monitor     bool
	monitorPort int
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the critical care unit model",
		Long: `Run the critical care unit model and print the results of ` +
			`every run and their averages. Flags override the config file, ` +
			`which overrides the THREEPHASE_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			return runCCU(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := runCmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "YAML config file")
	f.StringVar(&opts.envFile, "env-file", ".env", "File of THREEPHASE_* variables")
	f.Uint32Var(&opts.duration, "duration", ccu.DefaultRunDuration,
		"Length of a run, in hours")
	f.Uint32Var(&opts.runs, "runs", ccu.DefaultNumberOfRuns, "Number of runs")
	f.Uint32Var(&opts.warmUp, "warm-up", 0, "Warm-up time, in hours")
	f.Int64Var(&opts.seed, "seed", 1, "Seed of the random source")
	f.StringVar(&opts.logLevel, "log", "warn",
		"Log level (trace, debug, info, warn, error, fatal, panic)")
	f.BoolVar(&opts.record, "record", false,
		"Record the trace into a SQLite database")
	f.StringVar(&opts.output, "output", "", "Name of the database, without extension")
	f.BoolVar(&opts.monitor, "monitor", false, "Start the monitoring server")
	f.IntVar(&opts.monitorPort, "monitor-port", 0,
		"Port of the monitoring server, random if not set")

	return runCmd
}

// loadConfig merges the defaults, the environment, the config file and the
// flags that are set, in that order.
func (o *runOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	cfg.Simulation.Duration = ccu.DefaultRunDuration
	cfg.Simulation.NumberOfRuns = ccu.DefaultNumberOfRuns
	cfg.LogLevel = o.logLevel

	if err := cfg.LoadEnv(o.envFile); err != nil {
		return nil, err
	}

	if o.configFile != "" {
		if err := cfg.ReadFile(o.configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("duration") {
		cfg.Simulation.Duration = o.duration
	}

	if flags.Changed("runs") {
		cfg.Simulation.NumberOfRuns = o.runs
	}

	if flags.Changed("warm-up") {
		cfg.Simulation.WarmUpTime = o.warmUp
	}

	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}

	if flags.Changed("log") {
		cfg.LogLevel = o.logLevel
	}

	if flags.Changed("record") {
		cfg.Recording.Enabled = o.record
	}

	if flags.Changed("output") {
		cfg.Recording.Output = o.output
	}

	if flags.Changed("monitor") {
		cfg.Monitoring.Enabled = o.monitor
	}

	if flags.Changed("monitor-port") {
		cfg.Monitoring.Port = o.monitorPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runCCU(ctx context.Context, cfg *config.Config, out io.Writer) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logrus.SetLevel(level)

	s := buildSimulation(cfg).Build()
	defer s.Terminate()

	if err := cfg.Apply(s.Controller().Configurator()); err != nil {
		return err
	}

	model := ccu.MakeBuilder().
		WithSeed(cfg.Seed).
		WithOutput(out).
		WithDataRecorder(s.DataRecorder()).
		Build()
	if err := s.RegisterModel(model); err != nil {
		return err
	}

	fmt.Fprintln(out, "Critical Care Unit Model")
	fmt.Fprintf(out, "Run Duration: %d hours\n", cfg.Simulation.Duration)
	fmt.Fprintf(out, "Number of Runs: %d\n\n", cfg.Simulation.NumberOfRuns)

	if err := s.Run(); err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	if s.OutputPath() != "" {
		logrus.Infof("trace recorded in %s.sqlite3", s.OutputPath())
	}

	if s.Monitor() != nil {
		waitForInterrupt(ctx, s.Monitor().URL())
	}

	return nil
}

func buildSimulation(cfg *config.Config) simulation.Builder {
	b := simulation.MakeBuilder().WithLogger(logrus.StandardLogger())

	if cfg.Recording.Enabled {
		b = b.WithRecording()
		if cfg.Recording.Output != "" {
			b = b.WithOutputFileName(cfg.Recording.Output)
		}
	}

	if cfg.Monitoring.Enabled {
		b = b.WithMonitoring()
		if cfg.Monitoring.Port != 0 {
			b = b.WithMonitorPort(cfg.Monitoring.Port)
		}

		if cfg.Monitoring.OpenBrowser {
			b = b.WithBrowser()
		}
	}

	return b
}

// waitForInterrupt keeps the monitoring server alive until the user stops the
// process.
func waitForInterrupt(ctx context.Context, url string) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "Monitor still serving at %s, press Ctrl+C to exit\n",
		url)
	<-ctx.Done()
}
