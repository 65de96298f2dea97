package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFromProbabilities_Boundaries(t *testing.T) {
	probabilities := []float64{0.2, 0.3, 0.5}
	tests := []struct {
		name string
		draw float64
		want int
	}{
		{"zero draw", 0.0, 0},
		{"below first threshold", 0.19, 0},
		{"exactly first threshold is inclusive", 0.2, 0},
		{"just past first threshold", 0.21, 1},
		{"inside last bucket", 0.51, 2},
		{"near one", 0.999999, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectFromProbabilities(tt.draw, probabilities)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectFromProbabilities_ShortfallFallsThroughToLast(t *testing.T) {
	// GIVEN a vector that sums to less than the draw
	got, err := SelectFromProbabilities(0.9, []float64{0.1, 0.1, 0.1})
	require.NoError(t, err)
	// THEN the last index is returned rather than an error
	assert.Equal(t, 2, got)
}

func TestSelectFromProbabilities_SkipsZeroWeights(t *testing.T) {
	got, err := SelectFromProbabilities(0.5, []float64{0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestSelectFromProbabilities_Empty_ReturnsInvalidArgument(t *testing.T) {
	_, err := SelectFromProbabilities(0.5, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSelectFromCDF_Boundaries(t *testing.T) {
	cdf := []float64{0.2, 0.5, 1.0}
	tests := []struct {
		name string
		draw float64
		want int
	}{
		{"zero draw", 0.0, 0},
		{"on first threshold", 0.2, 0},
		{"between thresholds", 0.3, 1},
		{"on second threshold", 0.5, 1},
		{"above intermediate thresholds", 0.51, 2},
		{"near one", 0.999999, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectFromCDF(tt.draw, cdf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectFromCDF_SingleElement(t *testing.T) {
	got, err := SelectFromCDF(0.7, []float64{1.0})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestSelectFromCDF_Empty_ReturnsInvalidArgument(t *testing.T) {
	_, err := SelectFromCDF(0.5, []float64{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSelect_ProbabilitiesAndCDF_Agree(t *testing.T) {
	// GIVEN random probability vectors and their CDF conversions
	g := NewGenerator(12345)
	for trial := 0; trial < 50; trial++ {
		n := 1 + int(g.NextUniform()*20)
		p := make([]float64, n)
		for i := range p {
			p[i] = g.NextUniform()
		}
		require.NoError(t, Normalize(p))
		cdf := append([]float64(nil), p...)
		require.NoError(t, ProbabilitiesToCDF(cdf))

		// WHEN selecting with the same draw from both
		// THEN both selectors pick the same index
		for i := 0; i < 200; i++ {
			d := g.NextUniform()
			a, err := SelectFromProbabilities(d, p)
			require.NoError(t, err)
			b, err := SelectFromCDF(d, cdf)
			require.NoError(t, err)
			if a != b {
				t.Fatalf("trial %d draw %v: probabilities picked %d, cdf picked %d", trial, d, a, b)
			}
		}
	}
}

func TestChooseFromProbabilities_ConsumesExactlyOneDraw(t *testing.T) {
	g := NewGenerator(42)
	twin := NewGenerator(42)

	_, err := ChooseFromProbabilities(g, []float64{0.5, 0.5})
	require.NoError(t, err)
	twin.NextUniform()

	assert.Equal(t, twin.NextUniform(), g.NextUniform())
}

func TestChooseFromCDF_ConsumesExactlyOneDraw(t *testing.T) {
	g := NewGenerator(42)
	twin := NewGenerator(42)

	_, err := ChooseFromCDF(g, []float64{0.5, 1.0})
	require.NoError(t, err)
	twin.NextUniform()

	assert.Equal(t, twin.NextUniform(), g.NextUniform())
}

func TestChoose_NilGenerator_ReturnsInvalidArgument(t *testing.T) {
	_, err := ChooseFromProbabilities(nil, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ChooseFromCDF(nil, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestChooseFromProbabilities_IndexAlwaysInRange(t *testing.T) {
	g := NewGenerator(12345)
	p := make([]float64, 100)
	for i := range p {
		p[i] = g.NextUniform()
	}
	require.NoError(t, Normalize(p))
	for i := 0; i < 1000; i++ {
		idx, err := ChooseFromProbabilities(g, p)
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(p))
	}
}

func TestProbabilitiesToCDF_ConvertsInPlace(t *testing.T) {
	weights := []float64{0.2, 0.3, 0.5}
	require.NoError(t, ProbabilitiesToCDF(weights))
	assert.InDeltaSlice(t, []float64{0.2, 0.5, 1.0}, weights, 1e-12)
}

func TestProbabilitiesToCDF_SingleElementUnchanged(t *testing.T) {
	weights := []float64{1.0}
	require.NoError(t, ProbabilitiesToCDF(weights))
	assert.Equal(t, []float64{1.0}, weights)
}

func TestProbabilitiesToCDF_Empty_ReturnsInvalidArgument(t *testing.T) {
	assert.ErrorIs(t, ProbabilitiesToCDF(nil), ErrInvalidArgument)
}

func TestNormalize(t *testing.T) {
	weights := []float64{1, 3}
	require.NoError(t, Normalize(weights))
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, weights, 1e-12)

	assert.ErrorIs(t, Normalize([]float64{0, 0}), ErrInvalidArgument)
	assert.ErrorIs(t, Normalize([]float64{1, -1}), ErrInvalidArgument)
	assert.ErrorIs(t, Normalize(nil), ErrInvalidArgument)
}
