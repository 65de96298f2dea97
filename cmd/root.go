package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tasha-sim/tasha-sim/sim/config"
	"github.com/tasha-sim/tasha-sim/sim/loader"
	"github.com/tasha-sim/tasha-sim/sim/modechoice"
	"github.com/tasha-sim/tasha-sim/sim/pipeline"
	"github.com/tasha-sim/tasha-sim/sim/scheduler"
	"github.com/tasha-sim/tasha-sim/sim/trace"
)

var (
	// CLI flags for the run command
	configPath    string // YAML run configuration
	seed          int64  // Base seed; overrides the config file when set
	loaderWorkers int    // Household builders; overrides the config file when set
	queueCapacity int    // Loader queue bound; overrides the config file when set
	logLevel      string // Log verbosity level
	metricsOut    string // Optional Prometheus text-format output path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tasha-sim",
	Short: "Household travel-demand microsimulation",
}

// runCmd streams the survey households through the configured stages
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the household pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		if configPath == "" {
			logrus.Fatalf("--config is required")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load run config: %v", err)
		}
		applyRunOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid run config: %v", err)
		}

		reg := prometheus.NewRegistry()
		p, tr, err := buildPipeline(cfg, reg)
		if err != nil {
			logrus.Fatalf("Failed to build pipeline: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		summary, err := p.Run(ctx)
		if err != nil {
			logrus.Fatalf("Run %s failed: %v", summary.RunID, err)
		}

		printSummary(os.Stdout, summary, tr)
		if metricsOut != "" {
			if err := prometheus.WriteToTextfile(metricsOut, reg); err != nil {
				logrus.Fatalf("Failed to write metrics to %s: %v", metricsOut, err)
			}
			logrus.Infof("Metrics written to %s", metricsOut)
		}
		logrus.Info("Simulation complete.")
	},
}

// setLogLevel parses and applies a logrus level, exiting on unknown names.
func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// applyRunOverrides copies explicitly set CLI flags over the config file values.
func applyRunOverrides(cmd *cobra.Command, cfg *config.RunConfig) {
	if cmd.Flags().Changed("seed") {
		logrus.Infof("CLI --seed %d overrides config seed %d", seed, cfg.Seed)
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.LoaderWorkers = loaderWorkers
	}
	if cmd.Flags().Changed("queue-capacity") {
		cfg.QueueCapacity = queueCapacity
	}
}

// buildPipeline wires the loader and stages described by a validated config.
// Metrics register on reg when it is non-nil.
func buildPipeline(cfg *config.RunConfig, reg prometheus.Registerer) (*pipeline.Pipeline, *trace.SimulationTrace, error) {
	zones, err := loader.LoadZoneSystem(cfg.Inputs.Zones)
	if err != nil {
		return nil, nil, err
	}
	logrus.Infof("Loaded %d zones from %s", zones.Len(), cfg.Inputs.Zones)

	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace.Level)})
	p := &pipeline.Pipeline{
		Source: &loader.CSVSource{
			Households: cfg.Inputs.Households,
			Persons:    cfg.Inputs.Persons,
			Trips:      cfg.Inputs.Trips,
			Zones:      zones,
			Workers:    cfg.LoaderWorkers,
		},
		Scheduler:     scheduler.New(cfg.Scheduler.Name),
		Key:           cfg.SimulationKey(),
		QueueCapacity: cfg.QueueCapacity,
	}
	if cfg.ModeChoice.Enabled {
		model, err := modechoice.NewModel(cfg.ModeChoice.Modes, tr)
		if err != nil {
			return nil, nil, err
		}
		p.ModeChoice = model
	}
	if reg != nil {
		p.Metrics = pipeline.NewMetrics(reg)
	}
	return p, tr, nil
}

// printSummary writes the run totals and, when tracing, the mode split.
func printSummary(w io.Writer, summary pipeline.Summary, tr *trace.SimulationTrace) {
	_, _ = fmt.Fprintln(w, "=== Run Summary ===")
	_, _ = fmt.Fprintf(w, "Run ID     : %s\n", summary.RunID)
	_, _ = fmt.Fprintf(w, "Households : %d\n", summary.Households)
	_, _ = fmt.Fprintf(w, "Persons    : %d\n", summary.Persons)
	_, _ = fmt.Fprintf(w, "Trips      : %d\n", summary.Trips)
	_, _ = fmt.Fprintf(w, "Elapsed    : %v\n", summary.Elapsed)
	if !tr.Config.Enabled() {
		return
	}

	ts := trace.Summarize(tr)
	_, _ = fmt.Fprintln(w, "=== Mode Choice Trace ===")
	_, _ = fmt.Fprintf(w, "Choices    : %d over %d households (mean draw %.4f)\n",
		ts.TotalChoices, ts.UniqueHouseholds, ts.MeanDraw)
	modes := make([]string, 0, len(ts.ModeDistribution))
	for m := range ts.ModeDistribution {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	for _, m := range modes {
		_, _ = fmt.Fprintf(w, "  %-10s %d\n", m, ts.ModeDistribution[m])
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to the YAML run configuration")
	runCmd.Flags().Int64Var(&seed, "seed", 12345, "Base seed for household generators (overrides config)")
	runCmd.Flags().IntVar(&loaderWorkers, "workers", 0, "Household loader workers, 0 = GOMAXPROCS (overrides config)")
	runCmd.Flags().IntVar(&queueCapacity, "queue-capacity", 0, "Loader queue bound, 0 = 10 x GOMAXPROCS (overrides config)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write pipeline metrics in Prometheus text format to this file")

	rootCmd.AddCommand(runCmd)
}
