// Package batch replicates one model across many seeds and aggregates the
// per-node statistics over the replications.
package batch

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/qnet-sim/qnet-sim/sim"
)

// Runner executes the same base configuration once per seed. Engines are
// built sequentially, then run in parallel; replications share nothing, so
// per-seed results are identical to running each seed alone.
type Runner struct {
	Base  sim.Config
	Seeds []int64

	// Workers caps concurrent replications. Zero means one per CPU.
	Workers int
}

// Run is one replication's outcome.
type Run struct {
	Seed    int64        `json:"seed"`
	Results *sim.Results `json:"results"`
}

// AggregateStat is a mean and standard deviation over the replications.
// StdDev is zero when fewer than two replications contributed.
type AggregateStat struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// NodeAggregate summarizes one node across all replications.
type NodeAggregate struct {
	MeanOccupancy AggregateStat `json:"mean_occupancy"`
	LossRatio     AggregateStat `json:"loss_ratio"`
	Throughput    AggregateStat `json:"throughput"`
}

// Summary is a completed batch: the per-seed runs in seed order plus the
// cross-seed aggregates keyed by node.
type Summary struct {
	Runs      []Run                    `json:"runs"`
	Aggregate map[string]NodeAggregate `json:"aggregate"`
}

// Run executes every replication and aggregates. The first failing seed
// aborts the whole batch.
func (r *Runner) Run() (*Summary, error) {
	if len(r.Seeds) == 0 {
		return nil, fmt.Errorf("batch has no seeds")
	}
	if len(r.Base.RNG.Deviates) > 0 {
		return nil, fmt.Errorf("a replay deviate list cannot drive a batch; use seeds")
	}

	// The rngstream master seed is package-global state, so engine
	// construction must stay on one goroutine. Running is engine-local.
	engines := make([]*sim.Simulator, len(r.Seeds))
	for i, seed := range r.Seeds {
		cfg := r.Base
		cfg.RNG.Seed = seed
		engine, err := sim.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		engines[i] = engine
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(engines) {
		workers = len(engines)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errs := make([]error, len(engines))
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs[i] = engines[i].Run()
			if errs[i] == nil {
				logrus.Infof("seed %d finished at t=%.4f", r.Seeds[i], engines[i].Clock())
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", r.Seeds[i], err)
		}
	}

	summary := &Summary{Runs: make([]Run, len(engines))}
	for i, engine := range engines {
		summary.Runs[i] = Run{Seed: r.Seeds[i], Results: engine.Results()}
	}
	summary.Aggregate = aggregateNodes(summary.Runs)
	return summary, nil
}

func aggregateNodes(runs []Run) map[string]NodeAggregate {
	agg := make(map[string]NodeAggregate)
	for id := range runs[0].Results.Nodes {
		occ := make([]float64, len(runs))
		loss := make([]float64, len(runs))
		tput := make([]float64, len(runs))
		for i, run := range runs {
			n := run.Results.Nodes[id]
			occ[i] = n.MeanOccupancy()
			loss[i] = n.LossRatio()
			if run.Results.EndTime > 0 {
				tput[i] = float64(n.Served) / run.Results.EndTime
			}
		}
		agg[id] = NodeAggregate{
			MeanOccupancy: newAggregateStat(occ),
			LossRatio:     newAggregateStat(loss),
			Throughput:    newAggregateStat(tput),
		}
	}
	return agg
}

func newAggregateStat(xs []float64) AggregateStat {
	s := AggregateStat{Mean: stat.Mean(xs, nil)}
	if len(xs) >= 2 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	return s
}

// Print writes the cross-seed aggregate table to stdout.
func (s *Summary) Print() {
	fmt.Printf("Aggregate over %d seeds:\n", len(s.Runs))
	ids := make([]string, 0, len(s.Aggregate))
	for id := range s.Aggregate {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := s.Aggregate[id]
		fmt.Printf("\nQueue: %s\n", id)
		fmt.Printf("  Mean occupancy : %.4f (stddev %.4f)\n", a.MeanOccupancy.Mean, a.MeanOccupancy.StdDev)
		fmt.Printf("  Loss ratio     : %.4f (stddev %.4f)\n", a.LossRatio.Mean, a.LossRatio.StdDev)
		fmt.Printf("  Throughput     : %.4f (stddev %.4f)\n", a.Throughput.Mean, a.Throughput.StdDev)
	}
}
