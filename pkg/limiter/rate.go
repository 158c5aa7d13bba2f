// Package limiter implements per-host politeness delay for the crawler. It
// is not a retry mechanism and never blocks indefinitely: it only sleeps a
// bounded base-delay-plus-jitter interval between successive fetches to the
// same host.
package limiter

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ryzhov/crawlsearch/pkg/timeutil"
)

// RateLimiter gates fetches to a single host so the crawler doesn't hammer
// it with concurrent requests.
type RateLimiter interface {
	// Wait blocks until it is polite to fetch host again, then records the
	// fetch time.
	Wait(host string)
}

type hostTiming struct {
	last time.Time
}

// ConcurrentRateLimiter is a RateLimiter safe for concurrent use by many
// crawl workers. It enforces baseDelay between fetches to the same host,
// plus a uniform random jitter in [0, jitter).
type ConcurrentRateLimiter struct {
	baseDelay time.Duration
	jitter    time.Duration

	mu     sync.RWMutex
	timing map[string]*hostTiming

	rngMu sync.Mutex
	rng   *rand.Rand

	sleeper timeutil.Sleeper
}

// NewConcurrentRateLimiter builds a limiter with the given base delay and
// jitter ceiling, sleeping on the real clock.
func NewConcurrentRateLimiter(baseDelay, jitter time.Duration) *ConcurrentRateLimiter {
	return NewConcurrentRateLimiterWithSleeper(baseDelay, jitter, timeutil.NewRealSleeper())
}

// NewConcurrentRateLimiterWithSleeper builds a limiter whose delay is
// driven by sleeper rather than the real clock, so politeness delay is
// testable without actually waiting.
func NewConcurrentRateLimiterWithSleeper(baseDelay, jitter time.Duration, sleeper timeutil.Sleeper) *ConcurrentRateLimiter {
	return &ConcurrentRateLimiter{
		baseDelay: baseDelay,
		jitter:    jitter,
		timing:    make(map[string]*hostTiming),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sleeper:   sleeper,
	}
}

func (l *ConcurrentRateLimiter) jitterDuration() time.Duration {
	if l.jitter <= 0 {
		return 0
	}
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return time.Duration(l.rng.Int63n(int64(l.jitter)))
}

// Wait sleeps, if needed, so that at least baseDelay+jitter has elapsed
// since the last fetch to host, then records this fetch's timestamp.
func (l *ConcurrentRateLimiter) Wait(host string) {
	if l.baseDelay <= 0 && l.jitter <= 0 {
		return
	}

	l.mu.RLock()
	t, ok := l.timing[host]
	l.mu.RUnlock()

	wait := l.baseDelay + l.jitterDuration()

	if ok {
		l.mu.Lock()
		elapsed := time.Since(t.last)
		l.mu.Unlock()
		if remaining := wait - elapsed; remaining > 0 {
			l.sleeper.Sleep(remaining)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.timing[host]
	if !ok {
		e = &hostTiming{}
		l.timing[host] = e
	}
	e.last = time.Now()
}
