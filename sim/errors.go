package sim

import "errors"

// Sentinel errors returned by the engine. Callers match them with errors.Is;
// the wrapped message carries the offending field or the abort position.
var (
	// ErrInvalidConfig marks any configuration rejected at construction time.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDeviatesExhausted is returned when a replay deviate source runs out
	// mid-simulation. The run aborts; statistics accumulated so far stay valid.
	ErrDeviatesExhausted = errors.New("deviate sequence exhausted")
)
