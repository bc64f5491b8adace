package sim

import "fmt"

// Node is a single G/G/c/K service station. Servers is the parallel service
// capacity c; Capacity is the admission bound k counting waiting and
// in-service customers together, with 0 meaning unbounded. All state is
// owned by one Simulator and mutated from its event loop only.
type Node struct {
	ID       string
	Servers  int
	Capacity int

	// Occupancy is the number of customers currently present, waiting or in
	// service.
	Occupancy int

	// TimeInState[n] accumulates simulated time spent with exactly n
	// customers present. Bounded nodes span 0..Capacity from the start;
	// unbounded nodes grow the vector with the highest occupancy observed.
	TimeInState []float64

	Served int64
	Lost   int64

	service Sampler
	arrival Sampler
}

// NewNode builds a node from a validated config.
func NewNode(cfg NodeConfig) (*Node, error) {
	svc, err := NewSampler(cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("node %s: service: %w", cfg.ID, err)
	}
	n := &Node{
		ID:       cfg.ID,
		Servers:  cfg.Servers,
		Capacity: cfg.Capacity,
		service:  svc,
	}
	if cfg.Capacity > 0 {
		n.TimeInState = make([]float64, cfg.Capacity+1)
	} else {
		n.TimeInState = make([]float64, 1)
	}
	if cfg.Arrival != nil {
		arr, err := NewSampler(*cfg.Arrival)
		if err != nil {
			return nil, fmt.Errorf("node %s: arrival: %w", cfg.ID, err)
		}
		n.arrival = arr
	}
	return n, nil
}

// Bounded reports whether the node has a finite capacity.
func (n *Node) Bounded() bool {
	return n.Capacity > 0
}

// HasExternalArrivals reports whether the node generates its own arrivals.
func (n *Node) HasExternalArrivals() bool {
	return n.arrival != nil
}

// Admit takes in one customer. A full node refuses and counts the loss;
// refusal is an expected outcome, not an error.
func (n *Node) Admit() bool {
	if n.Bounded() && n.Occupancy >= n.Capacity {
		n.Lost++
		return false
	}
	n.Occupancy++
	return true
}

// FinishService completes one customer's service and releases its position.
func (n *Node) FinishService() {
	n.Occupancy--
	n.Served++
}

// SampleService draws one service duration from the node's distribution.
func (n *Node) SampleService(src DeviateSource) (float64, error) {
	return n.service.Sample(src)
}

// SampleArrival draws the gap to the node's next external arrival. Only
// valid when HasExternalArrivals reports true.
func (n *Node) SampleArrival(src DeviateSource) (float64, error) {
	return n.arrival.Sample(src)
}

// accrue charges dt of simulated time to the current occupancy state.
func (n *Node) accrue(dt float64) {
	n.ensureState(n.Occupancy)
	n.TimeInState[n.Occupancy] += dt
}

func (n *Node) ensureState(state int) {
	for len(n.TimeInState) <= state {
		n.TimeInState = append(n.TimeInState, 0)
	}
}
