package analytic

import (
	"math"
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/qnet-sim/qnet-sim/sim"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestNewMMCK_Rejections(t *testing.T) {
	cases := []struct {
		name              string
		lambda, mu        float64
		servers, capacity int
	}{
		{"zero lambda", 0, 1, 1, 1},
		{"negative lambda", -1, 1, 1, 1},
		{"infinite lambda", math.Inf(1), 1, 1, 1},
		{"zero mu", 1, 0, 1, 1},
		{"zero servers", 1, 1, 0, 1},
		{"capacity below servers", 1, 1, 3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewMMCK(tc.lambda, tc.mu, tc.servers, tc.capacity); err == nil {
				t.Error("expected construction to fail")
			}
		})
	}
}

func TestStateProbabilities_LossSystem(t *testing.T) {
	// M/M/1/1 at balanced load splits evenly between empty and full.
	m, err := NewMMCK(1, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewMMCK: %v", err)
	}
	p := m.StateProbabilities()
	if p[0] != 0.5 || p[1] != 0.5 {
		t.Errorf("probabilities: got %v, want [0.5 0.5]", p)
	}
	if m.LossProbability() != 0.5 {
		t.Errorf("LossProbability: got %v, want 0.5", m.LossProbability())
	}
	if m.Throughput() != 0.5 {
		t.Errorf("Throughput: got %v, want 0.5", m.Throughput())
	}
}

func TestStateProbabilities_BalancedLoadIsUniform(t *testing.T) {
	// At a = 1 every state of M/M/1/K is equally likely. The geometric
	// closed form needs a special case here; the ratio recursion does not.
	m, err := NewMMCK(2, 2, 1, 2)
	if err != nil {
		t.Fatalf("NewMMCK: %v", err)
	}
	for n, p := range m.StateProbabilities() {
		if math.Abs(p-1.0/3.0) > 1e-15 {
			t.Errorf("P(%d): got %v, want 1/3", n, p)
		}
	}
	if math.Abs(m.MeanOccupancy()-1.0) > 1e-15 {
		t.Errorf("MeanOccupancy: got %v, want 1", m.MeanOccupancy())
	}
}

func TestStateProbabilities_TwoServerLossSystem(t *testing.T) {
	// M/M/2/2 with offered load 2 is the classic Erlang-B configuration:
	// blocking (2^2/2!)/(1 + 2 + 2^2/2!) = 0.4.
	m, err := NewMMCK(2, 1, 2, 2)
	if err != nil {
		t.Fatalf("NewMMCK: %v", err)
	}
	p := m.StateProbabilities()
	if p[0] != 0.2 || p[1] != 0.4 || p[2] != 0.4 {
		t.Errorf("probabilities: got %v, want [0.2 0.4 0.4]", p)
	}
}

func TestStateProbabilities_MatchesGeometricForm(t *testing.T) {
	// M/M/1/3 at rho = 1/2: p_n = (1-rho) rho^n / (1-rho^4).
	m, err := NewMMCK(1, 2, 1, 3)
	if err != nil {
		t.Fatalf("NewMMCK: %v", err)
	}
	want := []float64{8.0 / 15, 4.0 / 15, 2.0 / 15, 1.0 / 15}
	for n, p := range m.StateProbabilities() {
		if math.Abs(p-want[n]) > 1e-15 {
			t.Errorf("P(%d): got %v, want %v", n, p, want[n])
		}
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	cases := []struct {
		lambda, mu        float64
		servers, capacity int
	}{
		{0.3, 1, 1, 5},
		{5, 1, 3, 12},
		{2.5, 0.7, 2, 40},
	}
	for _, tc := range cases {
		m, err := NewMMCK(tc.lambda, tc.mu, tc.servers, tc.capacity)
		if err != nil {
			t.Fatalf("NewMMCK(%v): %v", tc, err)
		}
		sum := 0.0
		for _, p := range m.StateProbabilities() {
			sum += p
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("M/M/%d/%d: probabilities sum to %v", tc.servers, tc.capacity, sum)
		}
	}
}

func TestDerivedMeasures_LittlesLaw(t *testing.T) {
	// M/M/1/2 at lambda = mu = 1: X = 2/3, L = 1, W = 3/2, Wq = 1/2.
	m, err := NewMMCK(1, 1, 1, 2)
	if err != nil {
		t.Fatalf("NewMMCK: %v", err)
	}
	if math.Abs(m.Throughput()-2.0/3.0) > 1e-15 {
		t.Errorf("Throughput: got %v, want 2/3", m.Throughput())
	}
	if math.Abs(m.MeanResponseTime()-1.5) > 1e-12 {
		t.Errorf("MeanResponseTime: got %v, want 1.5", m.MeanResponseTime())
	}
	if math.Abs(m.MeanWaitTime()-0.5) > 1e-12 {
		t.Errorf("MeanWaitTime: got %v, want 0.5", m.MeanWaitTime())
	}
	if math.Abs(m.MeanQueueLength()-1.0/3.0) > 1e-12 {
		t.Errorf("MeanQueueLength: got %v, want 1/3", m.MeanQueueLength())
	}
}

func TestSimulatedOccupancyMatchesTheory(t *testing.T) {
	// GIVEN an M/M/2/4 station driven by exponential samplers
	lambda, mu := 1.5, 1.0
	model, err := NewMMCK(lambda, mu, 2, 4)
	if err != nil {
		t.Fatalf("NewMMCK: %v", err)
	}
	cfg := sim.Config{
		Nodes: []sim.NodeConfig{{ID: "station", Servers: 2, Capacity: 4,
			Service: sim.DistConfig{Dist: sim.DistExponential, Mean: 1 / mu},
			Arrival: &sim.DistConfig{Dist: sim.DistExponential, Mean: 1 / lambda}}},
		Arrivals: map[string]int64{"station": 30000},
		RNG:      sim.RNGConfig{Seed: 1234},
	}
	engine, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// THEN the time-weighted occupancy distribution tracks the closed form
	station := engine.Results().Nodes["station"]
	theory := model.StateProbabilities()
	for n, want := range theory {
		if got := station.OccupancyProbs[n]; math.Abs(got-want) > 0.03 {
			t.Errorf("P(%d): simulated %v, analytic %v", n, got, want)
		}
	}
	if got := station.LossRatio(); math.Abs(got-model.LossProbability()) > 0.03 {
		t.Errorf("loss: simulated %v, analytic %v", got, model.LossProbability())
	}
	if got := station.MeanOccupancy(); math.Abs(got-model.MeanOccupancy()) > 0.1 {
		t.Errorf("mean occupancy: simulated %v, analytic %v", got, model.MeanOccupancy())
	}
}
