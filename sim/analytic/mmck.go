// Package analytic solves M/M/c/K queues in closed form. The results give
// an exact reference for simulated occupancy distributions when both the
// arrival and service distributions are exponential.
package analytic

import (
	"fmt"
	"math"
)

// MMCK is a Markovian queue with c parallel servers and room for K
// customers in the system, waiting and in service together. State
// probabilities are computed once at construction.
type MMCK struct {
	Lambda   float64 // arrival rate
	Mu       float64 // per-server service rate
	Servers  int
	Capacity int

	probs []float64
}

// NewMMCK validates the parameters and solves the model.
func NewMMCK(lambda, mu float64, servers, capacity int) (*MMCK, error) {
	switch {
	case lambda <= 0 || math.IsInf(lambda, 0):
		return nil, fmt.Errorf("arrival rate must be positive and finite, got %v", lambda)
	case mu <= 0 || math.IsInf(mu, 0):
		return nil, fmt.Errorf("service rate must be positive and finite, got %v", mu)
	case servers < 1:
		return nil, fmt.Errorf("servers must be at least 1, got %d", servers)
	case capacity < servers:
		return nil, fmt.Errorf("capacity %d cannot be below server count %d", capacity, servers)
	}
	m := &MMCK{Lambda: lambda, Mu: mu, Servers: servers, Capacity: capacity}
	m.solve()
	return m, nil
}

// solve fills probs via the birth-death ratio recursion
// p_n/p_(n-1) = a/min(n, c) with offered load a = lambda/mu, then
// normalizes. The recursion has no special case at a = c, unlike the
// geometric closed form.
func (m *MMCK) solve() {
	weights := make([]float64, m.Capacity+1)
	weights[0] = 1
	a := m.Lambda / m.Mu
	for n := 1; n <= m.Capacity; n++ {
		rate := float64(n)
		if n > m.Servers {
			rate = float64(m.Servers)
		}
		weights[n] = weights[n-1] * a / rate
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	for n := range weights {
		weights[n] /= sum
	}
	m.probs = weights
}

// StateProbabilities returns P(N = n) for n in 0..Capacity.
func (m *MMCK) StateProbabilities() []float64 {
	out := make([]float64, len(m.probs))
	copy(out, m.probs)
	return out
}

// LossProbability is the chance an arrival finds the system full.
func (m *MMCK) LossProbability() float64 {
	return m.probs[m.Capacity]
}

// Throughput is the effective departure rate, lambda scaled by the
// admitted fraction.
func (m *MMCK) Throughput() float64 {
	return m.Lambda * (1 - m.LossProbability())
}

// MeanOccupancy is the expected number of customers in the system.
func (m *MMCK) MeanOccupancy() float64 {
	mean := 0.0
	for n, p := range m.probs {
		mean += float64(n) * p
	}
	return mean
}

// MeanResponseTime is the expected time an admitted customer spends in the
// system, by Little's law.
func (m *MMCK) MeanResponseTime() float64 {
	return m.MeanOccupancy() / m.Throughput()
}

// MeanWaitTime is the expected time an admitted customer queues before
// service starts.
func (m *MMCK) MeanWaitTime() float64 {
	w := m.MeanResponseTime() - 1/m.Mu
	if w < 0 {
		return 0
	}
	return w
}

// MeanQueueLength is the expected number of customers waiting.
func (m *MMCK) MeanQueueLength() float64 {
	return m.Throughput() * m.MeanWaitTime()
}

// Print writes the solved model to stdout in the same shape as a simulated
// report. States below 1e-6 probability are omitted.
func (m *MMCK) Print() {
	fmt.Printf("M/M/%d/%d at lambda=%.4f, mu=%.4f\n", m.Servers, m.Capacity, m.Lambda, m.Mu)
	fmt.Printf("  Loss probability : %.6f\n", m.LossProbability())
	fmt.Printf("  Throughput       : %.4f\n", m.Throughput())
	fmt.Printf("  Mean occupancy   : %.4f\n", m.MeanOccupancy())
	fmt.Printf("  Mean response    : %.4f\n", m.MeanResponseTime())
	fmt.Println("  Occupancy probabilities:")
	for n, p := range m.probs {
		if p > 1e-6 {
			fmt.Printf("    P(%d customers) = %.2f%%\n", n, p*100)
		}
	}
}
