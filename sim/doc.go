// Package sim is the discrete-event engine for networks of finite-capacity
// queueing stations with probabilistic routing.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - node.go: the G/G/c/K station, its admission rule, and its
//     time-in-state occupancy accounting
//   - event_heap.go: the pending-event set, ordered by time with FIFO
//     tie-breaking in schedule order
//   - simulator.go: the event loop that pops, accrues statistics, and
//     dispatches arrivals and departures
//
// # Architecture
//
// The sim package owns the run semantics; collaborators live in
// sub-packages:
//   - sim/modelfile/: YAML model descriptions and their translation into
//     an engine Config
//   - sim/batch/: multi-seed replication runs with aggregate statistics
//   - sim/analytic/: closed-form M/M/c/K results for validating simulated
//     occupancy distributions
//
// # Randomness
//
// Every stochastic decision draws a uniform deviate from a single
// DeviateSource, in a fixed order per event. Three sources exist: a
// portable linear congruential generator (the default), the rngstream
// package's MRG32k3a streams, and a replay source fed a recorded deviate
// list. Two runs with the same model and the same source reproduce each
// other exactly; a replay that runs dry aborts the run with
// ErrDeviatesExhausted while leaving all statistics inspectable.
package sim
