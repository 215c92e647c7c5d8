package relay

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// keyedLimiter applies a token bucket per identity and evicts idle
// buckets every 512 hits.
type keyedLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	byKey map[string]*bucket
	hits  uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newKeyedLimiter returns nil, which allows everything, when rps or burst
// is not positive.
func newKeyedLimiter(rps float64, burst int) *keyedLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &keyedLimiter{limit: rate.Limit(rps), burst: burst, byKey: make(map[string]*bucket)}
}

func (l *keyedLimiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byKey[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-limiterIdleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}
