package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator owns the complete state of one run: the virtual clock, pending
// events, node states, the routing table, and the deviate source. All of it
// is mutated from a single goroutine; parallelism happens across independent
// Simulators, never inside one.
type Simulator struct {
	clock           float64
	lastStatsUpdate float64

	events   *EventQueue
	nodes    []*Node
	nodeByID map[string]*Node
	routes   *RoutingTable
	rng      DeviateSource

	arrivalTarget   int64
	arrivalsSeen    int64
	eventsProcessed int64
	limits          RunLimits
}

// New builds a Simulator from a configuration, validating it first. An
// invalid configuration never produces a partially constructed engine.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		events:   NewEventQueue(),
		nodeByID: make(map[string]*Node, len(cfg.Nodes)),
		routes:   NewRoutingTable(cfg.Routes),
		rng:      cfg.RNG.newSource("sim"),
		limits:   cfg.Limits,
	}
	for _, nc := range cfg.Nodes {
		node, err := NewNode(nc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		s.nodes = append(s.nodes, node)
		s.nodeByID[node.ID] = node
	}
	for _, count := range cfg.Arrivals {
		s.arrivalTarget += count
	}
	return s, nil
}

// Run executes the event loop until the external-arrival target is reached,
// the event set is exhausted, or a configured ceiling is hit. When a replay
// deviate source runs dry the run aborts with ErrDeviatesExhausted; the
// statistics accrued up to the abort instant remain readable.
func (s *Simulator) Run() error {
	for _, node := range s.nodes {
		if !node.HasExternalArrivals() {
			continue
		}
		gap, err := node.SampleArrival(s.rng)
		if err != nil {
			return err
		}
		s.events.Schedule(gap, KindArrival, node.ID)
	}

	for s.events.Len() > 0 && !s.targetReached() && !s.eventCeilingReached() {
		next, _ := s.events.Peek()
		if s.limits.TimeHorizon > 0 && next.Time > s.limits.TimeHorizon {
			s.accrueAll(s.limits.TimeHorizon)
			s.clock = s.limits.TimeHorizon
			logrus.Infof("[t=%.4f] time horizon reached, stopping", s.clock)
			return nil
		}
		ev, _ := s.events.PopEarliest()
		if ev.Time < s.clock {
			panic(fmt.Sprintf("event at t=%v precedes clock t=%v", ev.Time, s.clock))
		}
		s.accrueAll(ev.Time)
		s.clock = ev.Time
		s.eventsProcessed++
		logrus.Infof("[t=%.4f] %s at %s", s.clock, ev.Kind, ev.Node)

		var err error
		switch ev.Kind {
		case KindArrival:
			err = s.handleArrival(ev)
		case KindDeparture:
			err = s.handleDeparture(ev)
		}
		if err != nil {
			return err
		}
	}

	s.accrueAll(s.clock)
	logrus.Infof("[t=%.4f] simulation ended: %d events, %d external arrivals",
		s.clock, s.eventsProcessed, s.arrivalsSeen)
	return nil
}

func (s *Simulator) targetReached() bool {
	return s.arrivalTarget > 0 && s.arrivalsSeen >= s.arrivalTarget
}

func (s *Simulator) eventCeilingReached() bool {
	return s.limits.MaxEvents > 0 && s.eventsProcessed >= s.limits.MaxEvents
}

// accrueAll charges the gap since the last stats update to every node's
// current occupancy state. It runs before each dispatch, so the per-state
// vectors always cover the full clock span, including at an abort.
func (s *Simulator) accrueAll(tNew float64) {
	dt := tNew - s.lastStatsUpdate
	if dt > 0 {
		for _, node := range s.nodes {
			node.accrue(dt)
		}
	}
	s.lastStatsUpdate = tNew
}

func (s *Simulator) handleArrival(ev Event) error {
	node := s.nodeByID[ev.Node]
	s.arrivalsSeen++

	// The external stream sustains itself regardless of admission outcome.
	if node.HasExternalArrivals() {
		gap, err := node.SampleArrival(s.rng)
		if err != nil {
			return err
		}
		s.events.Schedule(s.clock+gap, KindArrival, node.ID)
	}

	if node.Admit() && node.Occupancy <= node.Servers {
		dur, err := node.SampleService(s.rng)
		if err != nil {
			return err
		}
		s.events.Schedule(s.clock+dur, KindDeparture, node.ID)
	}
	return nil
}

func (s *Simulator) handleDeparture(ev Event) error {
	node := s.nodeByID[ev.Node]
	node.FinishService()

	// A waiting customer takes over the freed server.
	if node.Occupancy >= node.Servers {
		dur, err := node.SampleService(s.rng)
		if err != nil {
			return err
		}
		s.events.Schedule(s.clock+dur, KindDeparture, node.ID)
	}

	target, ok, err := s.routes.Pick(node.ID, s.rng)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	dest := s.nodeByID[target]
	if dest.Admit() && dest.Occupancy <= dest.Servers {
		dur, err := dest.SampleService(s.rng)
		if err != nil {
			return err
		}
		s.events.Schedule(s.clock+dur, KindDeparture, dest.ID)
	}
	return nil
}

// Clock returns the current simulated time.
func (s *Simulator) Clock() float64 {
	return s.clock
}

// DeviatesUsed reports how many uniform deviates the run has consumed,
// counting a failed draw on an exhausted replay source.
func (s *Simulator) DeviatesUsed() int64 {
	return s.rng.Used()
}

// ArrivalsSeen reports the number of external arrival events processed.
func (s *Simulator) ArrivalsSeen() int64 {
	return s.arrivalsSeen
}

// EventsProcessed reports the number of dispatched events.
func (s *Simulator) EventsProcessed() int64 {
	return s.eventsProcessed
}

// PendingEvents reports how many events are still scheduled.
func (s *Simulator) PendingEvents() int {
	return s.events.Len()
}

// Node returns the live state of the named node, or nil if undefined.
func (s *Simulator) Node(id string) *Node {
	return s.nodeByID[id]
}
