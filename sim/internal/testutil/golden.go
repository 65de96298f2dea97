// Package testutil provides shared test infrastructure for the sim packages:
// the golden generator dataset and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDraws represents the structure of testdata/golden_draws.json.
type GoldenDraws struct {
	Tests []GoldenDrawCase `json:"tests"`
}

// GoldenDrawCase is an expected run of one seed's sequence starting at Offset.
type GoldenDrawCase struct {
	Name     string    `json:"name"`
	Seed     uint32    `json:"seed"`
	Offset   int       `json:"offset"`   // words consumed before the first expected word
	Words    []uint32  `json:"words"`    // raw tempered words
	Uniforms []float64 `json:"uniforms"` // the same words as NextUniform draws
}

// LoadGoldenDraws loads the golden generator dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDraws(t *testing.T) *GoldenDraws {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_draws.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden draws: %v", err)
	}

	var dataset GoldenDraws
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden draws: %v", err)
	}
	for _, tc := range dataset.Tests {
		if len(tc.Words) != len(tc.Uniforms) {
			t.Fatalf("golden case %q: %d words but %d uniforms", tc.Name, len(tc.Words), len(tc.Uniforms))
		}
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
