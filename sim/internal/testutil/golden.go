// Package testutil provides shared test infrastructure for the simulator.
// It consolidates the golden dataset types and assertion helpers used by
// the sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one recorded network run with its expected outcome.
// Either Seed or RndNumbers selects the deviate source.
type GoldenTestCase struct {
	Name       string                 `json:"name"`
	Queues     map[string]GoldenQueue `json:"queues"`
	Network    []GoldenRoute          `json:"network"`
	Arrivals   map[string]int64       `json:"arrivals"`
	Seed       int64                  `json:"seed"`
	RndNumbers []float64              `json:"rndnumbers"`
	Expected   GoldenExpected         `json:"expected"`
}

// GoldenQueue describes one station. Arrival bounds are present only on
// nodes that receive external traffic.
type GoldenQueue struct {
	Servers    int      `json:"servers"`
	Capacity   int      `json:"capacity"`
	MinService float64  `json:"min_service"`
	MaxService float64  `json:"max_service"`
	MinArrival *float64 `json:"min_arrival"`
	MaxArrival *float64 `json:"max_arrival"`
}

// GoldenRoute is one probabilistic forwarding rule.
type GoldenRoute struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Probability float64 `json:"probability"`
}

// GoldenExpected pins the run outcome down to individual counters and the
// per-state occupancy clock.
type GoldenExpected struct {
	EndTime          float64                      `json:"end_time"`
	DeviatesUsed     int64                        `json:"deviates_used"`
	ExternalArrivals int64                        `json:"external_arrivals"`
	Queues           map[string]GoldenQueueResult `json:"queues"`
}

// GoldenQueueResult is the expected per-queue outcome.
type GoldenQueueResult struct {
	Served         int64     `json:"served"`
	Lost           int64     `json:"lost"`
	FinalOccupancy int       `json:"final_occupancy"`
	TimeInState    []float64 `json:"time_in_state"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
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
