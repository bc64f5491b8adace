package sim

import (
	"fmt"

	"github.com/iti/rngstream"
)

// DeviateSource produces the uniform deviates that drive every random choice
// in a simulation: inter-arrival times, service durations, and routing picks.
//
// Next returns a value in [0, 1). Used reports how many deviates have been
// requested so far, counting a final failing request too, so an aborted
// replay run still shows the position at which the sequence ran dry.
//
// Thread-safety: NOT thread-safe. Each Simulator owns exactly one source.
type DeviateSource interface {
	Next() (float64, error)
	Used() int64
}

// === LCG ===

// Numerical Recipes ranqd1 parameters, 32-bit linear congruential recurrence.
const (
	lcgMultiplier uint64 = 1664525
	lcgIncrement  uint64 = 1013904223
	lcgModulus    uint64 = 1 << 32
)

// DefaultSeed is used when a configuration supplies neither a seed nor a
// replay sequence.
const DefaultSeed = 1

// LCG is the default algorithmic deviate source. The same seed always
// reproduces the identical sequence, which makes runs replayable from the
// seed alone.
type LCG struct {
	state uint64
	used  int64
}

// NewLCG creates an LCG source seeded with the given value.
func NewLCG(seed uint64) *LCG {
	return &LCG{state: seed % lcgModulus}
}

func (g *LCG) Next() (float64, error) {
	g.used++
	g.state = (lcgMultiplier*g.state + lcgIncrement) % lcgModulus
	return float64(g.state) / float64(lcgModulus), nil
}

func (g *LCG) Used() int64 {
	return g.used
}

// === Replay ===

// Replay feeds a recorded deviate sequence back in order, which pins every
// random choice of a run to known values. When the sequence runs out, Next
// returns ErrDeviatesExhausted and the simulation aborts.
type Replay struct {
	deviates []float64
	pos      int
	used     int64
}

// NewReplay creates a replay source over the given sequence.
func NewReplay(deviates []float64) *Replay {
	return &Replay{deviates: deviates}
}

func (r *Replay) Next() (float64, error) {
	r.used++
	if r.pos >= len(r.deviates) {
		return 0, fmt.Errorf("%w: %d supplied, %d requested", ErrDeviatesExhausted, len(r.deviates), r.used)
	}
	u := r.deviates[r.pos]
	r.pos++
	return u, nil
}

func (r *Replay) Used() int64 {
	return r.used
}

// Remaining reports how many deviates have not been consumed yet.
func (r *Replay) Remaining() int {
	return len(r.deviates) - r.pos
}

// === Stream ===

// Stream adapts an MRG32k3a generator (L'Ecuyer RngStream) to the
// DeviateSource interface. It trades the LCG's simplicity for a far longer
// period; select it with RNGConfig.Source "rngstream".
//
// Seeding goes through the rngstream package's master seed, which is global
// state: constructing Streams from multiple goroutines is not safe. Batch
// runs construct all engines sequentially before running them in parallel.
type Stream struct {
	rng  *rngstream.RngStream
	used int64
}

// NewStream creates a named MRG32k3a stream seeded with the given value.
func NewStream(name string, seed uint64) *Stream {
	rngstream.SetRngStreamMasterSeed(seed)
	return &Stream{rng: rngstream.New(name)}
}

func (s *Stream) Next() (float64, error) {
	s.used++
	return s.rng.RandU01(), nil
}

func (s *Stream) Used() int64 {
	return s.used
}
