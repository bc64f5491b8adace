// Package modelfile reads YAML model descriptions and translates them into
// engine configurations. The format keeps compatibility with the historical
// model files: full-line # and ! directives are stripped before decoding,
// queues are a name-keyed map, and a run is seeded by exactly one of seed,
// seeds, or a literal rndnumbers list.
package modelfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qnet-sim/qnet-sim/sim"
)

// ErrInvalidModel marks any model-level validation failure.
var ErrInvalidModel = errors.New("invalid model file")

// Model is the top-level YAML model description.
// Loaded from disk via Load(path).
type Model struct {
	Seed       *int64    `yaml:"seed,omitempty"`
	Seeds      []int64   `yaml:"seeds,omitempty"`
	RndNumbers []float64 `yaml:"rndnumbers,omitempty"`
	RNG        string    `yaml:"rng,omitempty"`

	MaxEvents int64   `yaml:"maxEvents,omitempty"`
	Horizon   float64 `yaml:"horizon,omitempty"`

	Queues   map[string]QueueSpec `yaml:"queues"`
	Network  []RouteSpec          `yaml:"network,omitempty"`
	Arrivals map[string]int64     `yaml:"arrivals,omitempty"`
}

// QueueSpec describes one station. Omitting capacity makes the queue
// unbounded; the service distribution is either uniform (minService and
// maxService together) or exponential (meanService). Arrival keys follow
// the same pairing and are absent on internal queues.
type QueueSpec struct {
	Servers  int  `yaml:"servers"`
	Capacity *int `yaml:"capacity,omitempty"`

	MinService  *float64 `yaml:"minService,omitempty"`
	MaxService  *float64 `yaml:"maxService,omitempty"`
	MeanService *float64 `yaml:"meanService,omitempty"`

	MinArrival  *float64 `yaml:"minArrival,omitempty"`
	MaxArrival  *float64 `yaml:"maxArrival,omitempty"`
	MeanArrival *float64 `yaml:"meanArrival,omitempty"`
}

// RouteSpec is one probabilistic routing edge.
type RouteSpec struct {
	Source      string  `yaml:"source"`
	Target      string  `yaml:"target"`
	Probability float64 `yaml:"probability"`
}

// Load reads and strictly decodes a model file. Lines whose first
// non-blank character is # or ! are dropped before decoding, so historical
// files with bang directives parse unchanged.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return Parse(data)
}

// Parse decodes model YAML from memory. Unknown keys are rejected.
func Parse(data []byte) (*Model, error) {
	var m Model
	decoder := yaml.NewDecoder(bytes.NewReader(stripDirectives(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}
	return &m, nil
}

func stripDirectives(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		kept = append(kept, line)
	}
	return []byte(strings.Join(kept, "\n"))
}

// Validate checks the file-level rules and reports the first violation,
// wrapped in ErrInvalidModel. Numeric ranges shared with the engine are
// checked again by sim.Config.Validate on the translated configuration.
func (m *Model) Validate() error {
	if err := m.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return nil
}

func (m *Model) validate() error {
	if len(m.Queues) == 0 {
		return fmt.Errorf("model defines no queues")
	}

	if len(m.RndNumbers) > 0 {
		if m.Seed != nil {
			return fmt.Errorf("rndnumbers conflicts with seed; pick one source of randomness")
		}
		if len(m.Seeds) > 0 {
			return fmt.Errorf("rndnumbers conflicts with seeds; pick one source of randomness")
		}
		if m.RNG != "" {
			return fmt.Errorf("rng selector %q is meaningless with rndnumbers", m.RNG)
		}
	}
	if m.Seed != nil && len(m.Seeds) > 0 {
		return fmt.Errorf("seed conflicts with seeds; use seeds alone for a batch run")
	}
	if m.RNG != "" && m.RNG != sim.SourceLCG && m.RNG != sim.SourceRngStream {
		return fmt.Errorf("unknown rng %q; valid: %s, %s", m.RNG, sim.SourceLCG, sim.SourceRngStream)
	}
	if m.Seed != nil && *m.Seed < 1 {
		return fmt.Errorf("seed must be positive, got %d", *m.Seed)
	}
	seen := make(map[int64]bool, len(m.Seeds))
	for i, s := range m.Seeds {
		if s < 1 {
			return fmt.Errorf("seeds[%d]: seed must be positive, got %d", i, s)
		}
		if seen[s] {
			return fmt.Errorf("seeds[%d]: duplicate seed %d", i, s)
		}
		seen[s] = true
	}

	for _, name := range m.queueNames() {
		q := m.Queues[name]
		if q.Capacity != nil && *q.Capacity == 0 {
			return fmt.Errorf("queue %q: capacity 0 admits nobody; omit capacity for an unbounded queue", name)
		}
		svc, err := resolveDist(name, "Service", q.MinService, q.MaxService, q.MeanService)
		if err != nil {
			return err
		}
		if svc == nil {
			return fmt.Errorf("queue %q: no service distribution; give minService/maxService or meanService", name)
		}
		if _, err := resolveDist(name, "Arrival", q.MinArrival, q.MaxArrival, q.MeanArrival); err != nil {
			return err
		}
	}
	return nil
}

// resolveDist maps one queue's distribution keys to an engine DistConfig.
// All keys absent yields (nil, nil).
func resolveDist(queue, kind string, min, max, mean *float64) (*sim.DistConfig, error) {
	switch {
	case mean != nil && (min != nil || max != nil):
		return nil, fmt.Errorf("queue %q: mean%s conflicts with min%s/max%s", queue, kind, kind, kind)
	case mean != nil:
		return &sim.DistConfig{Dist: sim.DistExponential, Mean: *mean}, nil
	case min != nil && max != nil:
		return &sim.DistConfig{Dist: sim.DistUniform, Min: *min, Max: *max}, nil
	case min != nil:
		return nil, fmt.Errorf("queue %q: min%s given without max%s", queue, kind, kind)
	case max != nil:
		return nil, fmt.Errorf("queue %q: max%s given without min%s", queue, kind, kind)
	default:
		return nil, nil
	}
}

// BaseConfig translates the model into an engine configuration. For a
// batch model the result carries no seed; the batch runner stamps one per
// replication. Node order is the sorted queue names, so the deviate
// consumption order never depends on YAML map iteration.
func (m *Model) BaseConfig() (sim.Config, error) {
	if err := m.Validate(); err != nil {
		return sim.Config{}, err
	}

	var cfg sim.Config
	for _, name := range m.queueNames() {
		q := m.Queues[name]
		svc, _ := resolveDist(name, "Service", q.MinService, q.MaxService, q.MeanService)
		arr, _ := resolveDist(name, "Arrival", q.MinArrival, q.MaxArrival, q.MeanArrival)
		nc := sim.NodeConfig{
			ID:      name,
			Servers: q.Servers,
			Service: *svc,
			Arrival: arr,
		}
		if q.Capacity != nil {
			nc.Capacity = *q.Capacity
		}
		cfg.Nodes = append(cfg.Nodes, nc)
	}

	for _, r := range m.Network {
		cfg.Routes = append(cfg.Routes, sim.RouteRule{
			Source:      r.Source,
			Target:      r.Target,
			Probability: r.Probability,
		})
	}

	if len(m.Arrivals) > 0 {
		cfg.Arrivals = make(map[string]int64, len(m.Arrivals))
		for name, count := range m.Arrivals {
			cfg.Arrivals[name] = count
		}
	}

	switch {
	case len(m.RndNumbers) > 0:
		cfg.RNG.Deviates = append([]float64(nil), m.RndNumbers...)
	case m.Seed != nil:
		cfg.RNG = sim.RNGConfig{Source: m.RNG, Seed: *m.Seed}
	default:
		cfg.RNG = sim.RNGConfig{Source: m.RNG}
	}

	cfg.Limits = sim.RunLimits{MaxEvents: m.MaxEvents, TimeHorizon: m.Horizon}
	return cfg, nil
}

// SeedList returns the batch seeds, nil for a single-run model.
func (m *Model) SeedList() []int64 {
	if len(m.Seeds) == 0 {
		return nil
	}
	return append([]int64(nil), m.Seeds...)
}

func (m *Model) queueNames() []string {
	names := make([]string, 0, len(m.Queues))
	for name := range m.Queues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
