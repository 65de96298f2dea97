package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasha-sim/tasha-sim/sim/config"
	"github.com/tasha-sim/tasha-sim/sim/modechoice"
	"github.com/tasha-sim/tasha-sim/sim/trace"
)

// writeSurvey writes a two-household survey and returns a config pointing at it.
func writeSurvey(t *testing.T) *config.RunConfig {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, lines ...string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
		return path
	}
	cfg := config.Default()
	cfg.Inputs = config.InputsConfig{
		Zones: write("zones.csv", "zone", "1", "2"),
		Households: write("households.csv",
			"household_id,home_zone,expansion_factor,dwelling_type,persons,vehicles",
			"1,1,1.0,1,1,1",
			"2,2,1.0,1,1,0",
		),
		Persons: write("persons.csv",
			"household_id,person_number,age,sex,license,employment_status,occupation",
			"1,1,40,F,Y,1,1",
			"2,1,25,M,N,1,2",
		),
		Trips: write("trips.csv",
			"household_id,person_number,trip_chain,trip_number,origin_zone,destination_zone,start_time,activity_start_time",
			"1,1,1,1,1,2,480,500",
			"1,1,1,2,2,1,1020,1040",
			"2,1,1,1,2,1,420,460",
		),
	}
	cfg.Scheduler.Name = "tasha1"
	cfg.ModeChoice = config.ModeChoiceConfig{
		Enabled: true,
		Modes: []modechoice.Mode{
			{Name: "auto", Share: 0.5, RequiresLicense: true, RequiresVehicle: true},
			{Name: "transit", Share: 0.5},
		},
	}
	cfg.Trace.Level = string(trace.TraceLevelDecisions)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBuildPipeline_RunsConfiguredStages(t *testing.T) {
	// GIVEN a validated config with scheduler, mode choice and tracing
	cfg := writeSurvey(t)
	reg := prometheus.NewRegistry()

	// WHEN the pipeline is built and run
	p, tr, err := buildPipeline(cfg, reg)
	require.NoError(t, err)
	require.NotNil(t, p.Scheduler)
	require.NotNil(t, p.ModeChoice)
	summary, err := p.Run(t.Context())
	require.NoError(t, err)

	// THEN totals, trace and metrics agree
	assert.Equal(t, 2, summary.Households)
	assert.Equal(t, 3, summary.Trips)
	assert.Len(t, tr.Choices(), 3)
	assert.Equal(t, 2.0, testutil.ToFloat64(p.Metrics.Processed))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.Metrics.Trips))

	var buf bytes.Buffer
	printSummary(&buf, summary, tr)
	out := buf.String()
	assert.Contains(t, out, "Households : 2")
	assert.Contains(t, out, "Trips      : 3")
	assert.Contains(t, out, "=== Mode Choice Trace ===")
	assert.Contains(t, out, "Choices    : 3 over 2 households")
}

func TestBuildPipeline_SameSeedSameModes(t *testing.T) {
	cfg := writeSurvey(t)
	modes := func() map[string]int {
		p, tr, err := buildPipeline(cfg, nil)
		require.NoError(t, err)
		_, err = p.Run(t.Context())
		require.NoError(t, err)
		return trace.Summarize(tr).ModeDistribution
	}
	assert.Equal(t, modes(), modes())
}

func TestBuildPipeline_OptionalStagesAbsent(t *testing.T) {
	cfg := writeSurvey(t)
	cfg.Scheduler.Name = "none"
	cfg.ModeChoice.Enabled = false
	cfg.Trace.Level = ""

	p, tr, err := buildPipeline(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, p.Scheduler)
	assert.Nil(t, p.ModeChoice)
	assert.Nil(t, p.Metrics)

	summary, err := p.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Households)

	var buf bytes.Buffer
	printSummary(&buf, summary, tr)
	assert.NotContains(t, buf.String(), "Mode Choice Trace")
}

func TestBuildPipeline_MissingZones(t *testing.T) {
	cfg := writeSurvey(t)
	cfg.Inputs.Zones = filepath.Join(t.TempDir(), "missing.csv")
	_, _, err := buildPipeline(cfg, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyRunOverrides_OnlyChangedFlags(t *testing.T) {
	// GIVEN a command where only --seed and --workers were set
	cmd := &cobra.Command{}
	cmd.Flags().Int64Var(&seed, "seed", 12345, "")
	cmd.Flags().IntVar(&loaderWorkers, "workers", 0, "")
	cmd.Flags().IntVar(&queueCapacity, "queue-capacity", 0, "")
	require.NoError(t, cmd.Flags().Set("seed", "99"))
	require.NoError(t, cmd.Flags().Set("workers", "3"))

	cfg := config.Default()
	cfg.Seed = 7
	cfg.QueueCapacity = 50

	// WHEN overrides are applied
	applyRunOverrides(cmd, cfg)

	// THEN set flags win and untouched ones keep the file values
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 3, cfg.LoaderWorkers)
	assert.Equal(t, 50, cfg.QueueCapacity)
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["draws"])
	assert.NotNil(t, runCmd.Flags().Lookup("metrics-out"))
}
