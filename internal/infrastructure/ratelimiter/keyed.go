package ratelimiter

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyedEntry struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key in process memory. Idle keys
// are evicted after idleTTL.
type KeyedLimiter struct {
	entries sync.Map // string -> *keyedEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
}

func NewKeyedLimiter(perSecond float64, burst int, idleTTL time.Duration) *KeyedLimiter {
	if burst <= 0 {
		burst = int(math.Max(1, perSecond))
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	l := &KeyedLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: idleTTL,
		ticker:  time.NewTicker(idleTTL),
		done:    make(chan struct{}),
	}
	go l.startCleanup()
	return l
}

func (l *KeyedLimiter) entry(key string) *keyedEntry {
	val, _ := l.entries.LoadOrStore(key, &keyedEntry{limiter: rate.NewLimiter(l.limit, l.burst)})
	return val.(*keyedEntry)
}

func (l *KeyedLimiter) Allow(_ context.Context, key string) (Decision, error) {
	e := l.entry(key)
	now := time.Now()

	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Limit: l.burst}, nil
	}

	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Limit: l.burst, RetryAfter: delay}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     l.burst,
		Remaining: int(math.Max(0, e.limiter.TokensAt(now))),
	}, nil
}

func (l *KeyedLimiter) startCleanup() {
	for {
		select {
		case <-l.ticker.C:
			l.cleanup(time.Now())
		case <-l.done:
			return
		}
	}
}

func (l *KeyedLimiter) cleanup(now time.Time) {
	l.entries.Range(func(key, value any) bool {
		e := value.(*keyedEntry)
		e.mu.Lock()
		idle := now.Sub(e.lastSeen) > l.idleTTL
		e.mu.Unlock()
		if idle {
			l.entries.Delete(key)
		}
		return true
	})
}

func (l *KeyedLimiter) Close() {
	l.once.Do(func() {
		close(l.done)
		l.ticker.Stop()
	})
}
