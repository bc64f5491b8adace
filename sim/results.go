package sim

import (
	"fmt"
	"sort"
	"strconv"
)

// Results is an immutable snapshot of a finished or aborted run, detached
// from the engine that produced it.
type Results struct {
	EndTime          float64                `json:"end_time"`
	DeviatesUsed     int64                  `json:"deviates_used"`
	ExternalArrivals int64                  `json:"external_arrivals"`
	EventsProcessed  int64                  `json:"events_processed"`
	Nodes            map[string]*NodeResult `json:"nodes"`
}

// NodeResult carries one node's counters and occupancy statistics.
// Capacity 0 means the node was unbounded.
type NodeResult struct {
	Servers        int       `json:"servers"`
	Capacity       int       `json:"capacity"`
	Served         int64     `json:"served"`
	Lost           int64     `json:"lost"`
	FinalOccupancy int       `json:"final_occupancy"`
	TimeInState    []float64 `json:"time_in_state"`
	OccupancyProbs []float64 `json:"occupancy_probability"`
}

// Results extracts the current statistics snapshot. Safe to call after Run
// returned, including after an exhaustion abort.
func (s *Simulator) Results() *Results {
	r := &Results{
		EndTime:          s.clock,
		DeviatesUsed:     s.rng.Used(),
		ExternalArrivals: s.arrivalsSeen,
		EventsProcessed:  s.eventsProcessed,
		Nodes:            make(map[string]*NodeResult, len(s.nodes)),
	}
	for _, node := range s.nodes {
		tis := make([]float64, len(node.TimeInState))
		copy(tis, node.TimeInState)
		total := 0.0
		for _, t := range tis {
			total += t
		}
		probs := make([]float64, len(tis))
		if total > 0 {
			for i, t := range tis {
				probs[i] = t / total
			}
		}
		r.Nodes[node.ID] = &NodeResult{
			Servers:        node.Servers,
			Capacity:       node.Capacity,
			Served:         node.Served,
			Lost:           node.Lost,
			FinalOccupancy: node.Occupancy,
			TimeInState:    tis,
			OccupancyProbs: probs,
		}
	}
	return r
}

// MeanOccupancy is the time-weighted average number of customers present.
func (n *NodeResult) MeanOccupancy() float64 {
	mean := 0.0
	for i, p := range n.OccupancyProbs {
		mean += float64(i) * p
	}
	return mean
}

// Offered is the total number of customers that tried to enter the node,
// whether admitted or refused.
func (n *NodeResult) Offered() int64 {
	return n.Served + n.Lost + int64(n.FinalOccupancy)
}

// LossRatio is the fraction of offered customers refused for capacity.
func (n *NodeResult) LossRatio() float64 {
	offered := n.Offered()
	if offered == 0 {
		return 0
	}
	return float64(n.Lost) / float64(offered)
}

// Print writes the human-readable report to stdout. States with probability
// below 1e-6 are omitted.
func (r *Results) Print() {
	fmt.Printf("Simulation ended at time: %.4f\n", r.EndTime)
	fmt.Printf("Random deviates used: %d\n", r.DeviatesUsed)
	fmt.Printf("External arrivals processed: %d\n", r.ExternalArrivals)

	ids := make([]string, 0, len(r.Nodes))
	for id := range r.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := r.Nodes[id]
		fmt.Printf("\nQueue: %s (servers=%d, capacity=%s)\n", id, n.Servers, capacityLabel(n.Capacity))
		fmt.Printf("  Customers served: %d\n", n.Served)
		fmt.Printf("  Capacity losses: %d\n", n.Lost)
		fmt.Println("  Occupancy probabilities:")
		for i, p := range n.OccupancyProbs {
			if p > 1e-6 {
				fmt.Printf("    P(%d customers) = %.2f%%\n", i, p*100)
			}
		}
	}
}

func capacityLabel(k int) string {
	if k == 0 {
		return "unbounded"
	}
	return strconv.Itoa(k)
}
