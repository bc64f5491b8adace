package sim

import (
	"fmt"
	"math"
)

// Deviate source selectors for RNGConfig.Source.
const (
	SourceLCG       = "lcg"
	SourceRngStream = "rngstream"
)

// probSumTolerance absorbs float accumulation noise when checking that a
// source's outgoing probabilities do not exceed 1.
const probSumTolerance = 1e-9

// Config is the complete, typed description of one simulation run. It is
// validated as a whole before the engine is built; a Config that passes
// Validate always constructs a runnable Simulator.
type Config struct {
	Nodes    []NodeConfig
	Routes   []RouteRule
	Arrivals map[string]int64
	RNG      RNGConfig
	Limits   RunLimits
}

// NodeConfig describes one service station. Capacity 0 means unbounded.
type NodeConfig struct {
	ID       string
	Servers  int
	Capacity int
	Service  DistConfig
	Arrival  *DistConfig
}

// DistConfig parameterizes a duration distribution. Uniform uses Min/Max,
// exponential uses Mean; an empty Dist means uniform.
type DistConfig struct {
	Dist string
	Min  float64
	Max  float64
	Mean float64
}

// RNGConfig selects the deviate source for a run. Exactly one style applies:
// a non-empty Deviates slice replays that sequence, otherwise Source and
// Seed pick an algorithmic generator (empty Source means LCG, zero Seed
// means DefaultSeed).
type RNGConfig struct {
	Source   string
	Seed     int64
	Deviates []float64
}

// RunLimits bounds a run beyond the arrival target. Zero means unlimited.
type RunLimits struct {
	MaxEvents   int64
	TimeHorizon float64
}

// Validate checks the whole configuration and reports the first violation,
// wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("network has no nodes")
	}
	ids := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		prefix := fmt.Sprintf("node[%d]", i)
		if n.ID == "" {
			return fmt.Errorf("%s: empty id", prefix)
		}
		if ids[n.ID] {
			return fmt.Errorf("%s: duplicate id %q", prefix, n.ID)
		}
		ids[n.ID] = true
		if n.Servers < 1 {
			return fmt.Errorf("%s (%s): servers must be at least 1, got %d", prefix, n.ID, n.Servers)
		}
		if n.Capacity < 0 {
			return fmt.Errorf("%s (%s): capacity must be non-negative, got %d", prefix, n.ID, n.Capacity)
		}
		if n.Capacity > 0 && n.Capacity < n.Servers {
			return fmt.Errorf("%s (%s): capacity %d below server count %d", prefix, n.ID, n.Capacity, n.Servers)
		}
		if err := validateDist(prefix+" ("+n.ID+"): service", n.Service); err != nil {
			return err
		}
		if n.Arrival != nil {
			if err := validateDist(prefix+" ("+n.ID+"): arrival", *n.Arrival); err != nil {
				return err
			}
		}
	}

	sums := make(map[string]float64)
	for i, r := range c.Routes {
		prefix := fmt.Sprintf("route[%d]", i)
		if !ids[r.Source] {
			return fmt.Errorf("%s: unknown source node %q", prefix, r.Source)
		}
		if !ids[r.Target] {
			return fmt.Errorf("%s: unknown target node %q", prefix, r.Target)
		}
		if r.Probability < 0 || r.Probability > 1 {
			return fmt.Errorf("%s: probability must be in [0, 1], got %v", prefix, r.Probability)
		}
		sums[r.Source] += r.Probability
	}
	for source, sum := range sums {
		if sum > 1+probSumTolerance {
			return fmt.Errorf("outgoing probabilities of %q sum to %v, exceeding 1", source, sum)
		}
	}

	for node, count := range c.Arrivals {
		if !ids[node] {
			return fmt.Errorf("arrivals: unknown node %q", node)
		}
		if count < 0 {
			return fmt.Errorf("arrivals: negative count %d for node %q", count, node)
		}
	}

	if err := c.RNG.validate(); err != nil {
		return err
	}

	if c.Limits.MaxEvents < 0 {
		return fmt.Errorf("limits: max events must be non-negative, got %d", c.Limits.MaxEvents)
	}
	if c.Limits.TimeHorizon < 0 || math.IsNaN(c.Limits.TimeHorizon) || math.IsInf(c.Limits.TimeHorizon, 0) {
		return fmt.Errorf("limits: time horizon must be a non-negative finite number, got %v", c.Limits.TimeHorizon)
	}
	return nil
}

func (r *RNGConfig) validate() error {
	if len(r.Deviates) > 0 {
		if r.Seed != 0 {
			return fmt.Errorf("rng: seed and replay deviates are mutually exclusive")
		}
		if r.Source != "" {
			return fmt.Errorf("rng: source %q and replay deviates are mutually exclusive", r.Source)
		}
		for i, u := range r.Deviates {
			if u < 0 || u >= 1 || math.IsNaN(u) {
				return fmt.Errorf("rng: deviate[%d] must be in [0, 1), got %v", i, u)
			}
		}
		return nil
	}
	switch r.Source {
	case "", SourceLCG, SourceRngStream:
	default:
		return fmt.Errorf("rng: unknown source %q; valid: lcg, rngstream", r.Source)
	}
	if r.Seed < 0 {
		return fmt.Errorf("rng: seed must be non-negative, got %d", r.Seed)
	}
	return nil
}

func validateDist(prefix string, d DistConfig) error {
	for _, v := range []float64{d.Min, d.Max, d.Mean} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: parameters must be finite numbers", prefix)
		}
	}
	switch d.Dist {
	case DistUniform, "":
		if d.Mean != 0 {
			return fmt.Errorf("%s: mean is not a uniform parameter", prefix)
		}
		if d.Min < 0 {
			return fmt.Errorf("%s: min must be non-negative, got %v", prefix, d.Min)
		}
		if d.Max < d.Min {
			return fmt.Errorf("%s: max %v below min %v", prefix, d.Max, d.Min)
		}
	case DistExponential:
		if d.Min != 0 || d.Max != 0 {
			return fmt.Errorf("%s: min/max are not exponential parameters", prefix)
		}
		if d.Mean <= 0 {
			return fmt.Errorf("%s: mean must be positive, got %v", prefix, d.Mean)
		}
	default:
		return fmt.Errorf("%s: unknown distribution %q; valid: uniform, exponential", prefix, d.Dist)
	}
	return nil
}

// newSource builds the deviate source a validated RNGConfig describes.
// The name seeds per-run stream identity for the rngstream variant.
func (r *RNGConfig) newSource(name string) DeviateSource {
	if len(r.Deviates) > 0 {
		return NewReplay(r.Deviates)
	}
	seed := r.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	if r.Source == SourceRngStream {
		return NewStream(name, uint64(seed))
	}
	return NewLCG(uint64(seed))
}
