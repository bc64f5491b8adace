package sim

import (
	"fmt"
	"math"
)

// Distribution names accepted in configurations.
const (
	DistUniform     = "uniform"
	DistExponential = "exponential"
)

// Sampler turns uniform deviates into durations. Every call consumes exactly
// one deviate from the source, so the number of deviates a run needs follows
// directly from its event count.
type Sampler interface {
	Sample(src DeviateSource) (float64, error)
}

// Uniform produces durations uniformly distributed over [Min, Max).
type Uniform struct {
	Min, Max float64
}

func (u Uniform) Sample(src DeviateSource) (float64, error) {
	v, err := src.Next()
	if err != nil {
		return 0, err
	}
	return u.Min + (u.Max-u.Min)*v, nil
}

// Exponential produces exponentially distributed durations with the given
// mean, via the inverse CDF.
type Exponential struct {
	Mean float64
}

func (e Exponential) Sample(src DeviateSource) (float64, error) {
	v, err := src.Next()
	if err != nil {
		return 0, err
	}
	return -e.Mean * math.Log(1-v), nil
}

// NewSampler creates a Sampler from a validated distribution config.
func NewSampler(cfg DistConfig) (Sampler, error) {
	switch cfg.Dist {
	case DistUniform, "":
		return Uniform{Min: cfg.Min, Max: cfg.Max}, nil
	case DistExponential:
		return Exponential{Mean: cfg.Mean}, nil
	default:
		return nil, fmt.Errorf("unknown distribution %q; valid: uniform, exponential", cfg.Dist)
	}
}
