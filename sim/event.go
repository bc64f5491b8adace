package sim

// EventKind discriminates the two event types that drive a simulation.
type EventKind int

const (
	// KindArrival is a customer arriving at a node from outside the network.
	KindArrival EventKind = iota
	// KindDeparture is a service completion at a node.
	KindDeparture
)

func (k EventKind) String() string {
	switch k {
	case KindArrival:
		return "ARRIVAL"
	case KindDeparture:
		return "DEPARTURE"
	default:
		return "UNKNOWN"
	}
}

// Event is an immutable scheduled occurrence. Seq is assigned by the queue at
// schedule time and breaks ties between events with equal times, so
// simultaneous events dispatch in the order they were scheduled.
type Event struct {
	Time float64
	Seq  uint64
	Kind EventKind
	Node string
}
