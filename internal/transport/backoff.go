package transport

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultFloor   = time.Second
	DefaultCeiling = 30 * time.Second
)

// Backoff bounds the reconnection delay. The delay starts at Floor,
// doubles after each failed attempt, and never exceeds Ceiling.
type Backoff struct {
	Floor   time.Duration
	Ceiling time.Duration
}

func (b Backoff) withDefaults() Backoff {
	if b.Floor <= 0 {
		b.Floor = DefaultFloor
	}
	if b.Ceiling <= 0 {
		b.Ceiling = DefaultCeiling
	}
	if b.Ceiling < b.Floor {
		b.Ceiling = b.Floor
	}
	return b
}

// exponential returns a jitter-free schedule that never gives up.
func (b Backoff) exponential() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.Floor
	eb.MaxInterval = b.Ceiling
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()
	return eb
}
