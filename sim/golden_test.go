package sim

import (
	"fmt"
	"sort"
	"testing"

	"github.com/qnet-sim/qnet-sim/sim/internal/testutil"
)

// goldenConfig converts a dataset case into an engine Config. Nodes are laid
// out in sorted name order, the same order the model file loader produces, so
// bootstrap arrivals consume deviates in a fixed order.
func goldenConfig(tc testutil.GoldenTestCase) Config {
	names := make([]string, 0, len(tc.Queues))
	for name := range tc.Queues {
		names = append(names, name)
	}
	sort.Strings(names)

	cfg := Config{Arrivals: tc.Arrivals}
	for _, name := range names {
		q := tc.Queues[name]
		node := NodeConfig{
			ID:       name,
			Servers:  q.Servers,
			Capacity: q.Capacity,
			Service:  DistConfig{Dist: DistUniform, Min: q.MinService, Max: q.MaxService},
		}
		if q.MinArrival != nil && q.MaxArrival != nil {
			node.Arrival = &DistConfig{Dist: DistUniform, Min: *q.MinArrival, Max: *q.MaxArrival}
		}
		cfg.Nodes = append(cfg.Nodes, node)
	}
	for _, r := range tc.Network {
		cfg.Routes = append(cfg.Routes, RouteRule{Source: r.Source, Target: r.Target, Probability: r.Probability})
	}
	if len(tc.RndNumbers) > 0 {
		cfg.RNG = RNGConfig{Deviates: tc.RndNumbers}
	} else {
		cfg.RNG = RNGConfig{Seed: tc.Seed}
	}
	return cfg
}

// TestRun_GoldenDataset_Equivalence verifies:
// GIVEN recorded network scenarios with known outcomes
// WHEN each scenario is run on a fresh engine
// THEN every counter and occupancy clock matches the recorded values
func TestRun_GoldenDataset_Equivalence(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)

	if len(dataset.Tests) == 0 {
		t.Fatal("Golden dataset contains no test cases")
	}

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			s, err := New(goldenConfig(tc))
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if err := s.Run(); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			r := s.Results()

			const relTol = 1e-9
			testutil.AssertFloat64Equal(t, "end_time", tc.Expected.EndTime, r.EndTime, relTol)
			if r.DeviatesUsed != tc.Expected.DeviatesUsed {
				t.Errorf("deviates_used: got %d, want %d", r.DeviatesUsed, tc.Expected.DeviatesUsed)
			}
			if r.ExternalArrivals != tc.Expected.ExternalArrivals {
				t.Errorf("external_arrivals: got %d, want %d", r.ExternalArrivals, tc.Expected.ExternalArrivals)
			}

			for name, want := range tc.Expected.Queues {
				got, ok := r.Nodes[name]
				if !ok {
					t.Fatalf("results missing queue %q", name)
				}
				if got.Served != want.Served {
					t.Errorf("%s served: got %d, want %d", name, got.Served, want.Served)
				}
				if got.Lost != want.Lost {
					t.Errorf("%s lost: got %d, want %d", name, got.Lost, want.Lost)
				}
				if got.FinalOccupancy != want.FinalOccupancy {
					t.Errorf("%s final occupancy: got %d, want %d", name, got.FinalOccupancy, want.FinalOccupancy)
				}
				if len(got.TimeInState) != len(want.TimeInState) {
					t.Fatalf("%s time in state: got %d entries, want %d", name, len(got.TimeInState), len(want.TimeInState))
				}
				for i, w := range want.TimeInState {
					testutil.AssertFloat64Equal(t, fmt.Sprintf("%s time_in_state[%d]", name, i), w, got.TimeInState[i], relTol)
				}
			}
		})
	}
}

// TestRun_GoldenDataset_Invariants verifies conservation laws alongside the
// recorded scenarios. Equivalence answers "did the output change?" but not
// "is the output consistent?"; these checks hold for any correct run.
func TestRun_GoldenDataset_Invariants(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)

	if len(dataset.Tests) == 0 {
		t.Fatal("Golden dataset contains no test cases")
	}

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			s, err := New(goldenConfig(tc))
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if err := s.Run(); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			r := s.Results()

			const relTol = 1e-9
			for name, node := range r.Nodes {
				if node.Capacity > 0 {
					if len(node.TimeInState) != node.Capacity+1 {
						t.Errorf("%s: %d occupancy states for capacity %d", name, len(node.TimeInState), node.Capacity)
					}
					if node.FinalOccupancy > node.Capacity {
						t.Errorf("%s: final occupancy %d exceeds capacity %d", name, node.FinalOccupancy, node.Capacity)
					}
				}

				clock := 0.0
				for i, d := range node.TimeInState {
					if d < 0 {
						t.Errorf("%s: negative time in state %d: %v", name, i, d)
					}
					clock += d
				}
				testutil.AssertFloat64Equal(t, name+" occupancy clock", r.EndTime, clock, relTol)

				probSum := 0.0
				for _, p := range node.OccupancyProbs {
					probSum += p
				}
				if r.EndTime > 0 {
					testutil.AssertFloat64Equal(t, name+" probability mass", 1.0, probSum, relTol)
				}
			}
		})
	}
}
