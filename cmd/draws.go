package cmd

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tasha-sim/tasha-sim/sim"
)

var (
	drawsSeed   int64 // Generator seed
	drawsCount  int   // Number of draws to print
	drawsNormal bool  // Print normal deviates instead of uniforms
	drawsRaw    bool  // Print raw 32-bit words instead of uniforms
	drawsQuiet  bool  // Print only the summary
)

// drawsCmd prints a generator's output for reproducibility checks
var drawsCmd = &cobra.Command{
	Use:   "draws",
	Short: "Print draws from the seeded generator with summary statistics",
	Run: func(cmd *cobra.Command, args []string) {
		if drawsSeed < 0 || drawsSeed > math.MaxUint32 {
			logrus.Fatalf("--seed must be in [0, %d], got %d", uint32(math.MaxUint32), drawsSeed)
		}
		if drawsCount <= 0 {
			logrus.Fatalf("--count must be > 0, got %d", drawsCount)
		}
		if drawsNormal && drawsRaw {
			logrus.Fatalf("--normal and --raw are mutually exclusive")
		}
		values := generateDraws(sim.NewGenerator(uint32(drawsSeed)), drawsCount, drawsNormal, drawsRaw)
		if !drawsQuiet {
			printDraws(os.Stdout, values, drawsRaw)
		}
		if err := printDrawStats(os.Stdout, values); err != nil {
			logrus.Fatalf("Failed to summarize draws: %v", err)
		}
		chi2, p := goodnessOfFit(values, drawsCDF(drawsNormal, drawsRaw), fitBins)
		fmt.Printf("ChiSq  : %.4f (df=%d, p=%.4f)\n", chi2, fitBins-1, p)
	},
}

// fitBins is the number of equal-probability bins in the goodness-of-fit check.
const fitBins = 10

// drawsCDF returns the distribution function the draws should follow.
func drawsCDF(normal, raw bool) func(float64) float64 {
	switch {
	case raw:
		return func(v float64) float64 { return v / (float64(math.MaxUint32) + 1) }
	case normal:
		return distuv.UnitNormal.CDF
	default:
		return func(v float64) float64 { return v }
	}
}

// goodnessOfFit bins values into equal-probability bins under cdf and returns
// Pearson's chi-square statistic with its upper-tail p-value.
func goodnessOfFit(values []float64, cdf func(float64) float64, bins int) (chi2, p float64) {
	observed := make([]float64, bins)
	for _, v := range values {
		b := int(cdf(v) * float64(bins))
		b = max(0, min(b, bins-1))
		observed[b]++
	}
	expected := make([]float64, bins)
	for i := range expected {
		expected[i] = float64(len(values)) / float64(bins)
	}
	chi2 = stat.ChiSquare(observed, expected)
	dist := distuv.ChiSquared{K: float64(bins - 1)}
	return chi2, dist.Survival(chi2)
}

// generateDraws takes count values from g: raw words, normal deviates or uniforms.
func generateDraws(g *sim.Generator, count int, normal, raw bool) []float64 {
	values := make([]float64, count)
	for i := range values {
		switch {
		case raw:
			values[i] = float64(g.Uint32())
		case normal:
			values[i] = g.NextNormal()
		default:
			values[i] = g.NextUniform()
		}
	}
	return values
}

func printDraws(w io.Writer, values []float64, raw bool) {
	for i, v := range values {
		if raw {
			_, _ = fmt.Fprintf(w, "%d\t%d\n", i, uint32(v))
			continue
		}
		_, _ = fmt.Fprintf(w, "%d\t%.10f\n", i, v)
	}
}

// printDrawStats writes count, mean, standard deviation and range of values.
func printDrawStats(w io.Writer, values []float64) error {
	mean, err := stats.Mean(values)
	if err != nil {
		return err
	}
	stddev, err := stats.StandardDeviation(values)
	if err != nil {
		return err
	}
	lo, err := stats.Min(values)
	if err != nil {
		return err
	}
	hi, err := stats.Max(values)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "=== Draw Summary ===")
	_, _ = fmt.Fprintf(w, "Count  : %d\n", len(values))
	_, _ = fmt.Fprintf(w, "Mean   : %.6f\n", mean)
	_, _ = fmt.Fprintf(w, "StdDev : %.6f\n", stddev)
	_, _ = fmt.Fprintf(w, "Min    : %.6f\n", lo)
	_, _ = fmt.Fprintf(w, "Max    : %.6f\n", hi)
	return nil
}

func init() {
	drawsCmd.Flags().Int64Var(&drawsSeed, "seed", 12345, "Generator seed (unsigned 32-bit)")
	drawsCmd.Flags().IntVar(&drawsCount, "count", 10, "Number of draws")
	drawsCmd.Flags().BoolVar(&drawsNormal, "normal", false, "Draw standard-normal deviates")
	drawsCmd.Flags().BoolVar(&drawsRaw, "raw", false, "Print raw tempered 32-bit words")
	drawsCmd.Flags().BoolVar(&drawsQuiet, "quiet", false, "Print only the summary")

	rootCmd.AddCommand(drawsCmd)
}
