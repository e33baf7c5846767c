package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Config holds token bucket settings shared by every resource
type Config struct {
	Capacity int           `yaml:"capacity"` // tokens per window
	Window   time.Duration `yaml:"window"`   // time to refill a full bucket
	MaxWait  time.Duration `yaml:"max_wait"` // blocking acquire gives up (and proceeds) after this
}

// DefaultConfig returns the policy used for external providers: 2 requests per 10s
func DefaultConfig() Config {
	return Config{
		Capacity: 2,
		Window:   10 * time.Second,
		MaxWait:  5 * time.Second,
	}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter bounds outbound request rate per resource (usually a host name).
// Buckets refill lazily on every call; there is no background goroutine.
type Limiter struct {
	config Config
	clock  clockwork.Clock

	mu      sync.Mutex
	buckets map[string]*bucket

	onFailOpen func(resource string)
}

// NewLimiter creates a limiter using the real clock
func NewLimiter(cfg Config) *Limiter {
	return NewLimiterWithClock(cfg, clockwork.NewRealClock())
}

// NewLimiterWithClock creates a limiter driven by the given clock
func NewLimiterWithClock(cfg Config, clock clockwork.Clock) *Limiter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	return &Limiter{
		config:  cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// OnFailOpen registers a hook called whenever Acquire gives up waiting
func (l *Limiter) OnFailOpen(fn func(resource string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onFailOpen = fn
}

// rate returns tokens per nanosecond
func (l *Limiter) rate() float64 {
	return float64(l.config.Capacity) / float64(l.config.Window)
}

// refill must be called with mu held
func (l *Limiter) refill(resource string, now time.Time) *bucket {
	b, ok := l.buckets[resource]
	if !ok {
		b = &bucket{tokens: float64(l.config.Capacity), lastRefill: now}
		l.buckets[resource] = b
		return b
	}
	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 {
		b.tokens += float64(elapsed) * l.rate()
		if b.tokens > float64(l.config.Capacity) {
			b.tokens = float64(l.config.Capacity)
		}
		b.lastRefill = now
	}
	return b
}

// take tries to consume one token. When none is available it reports how long
// until the next token is due.
func (l *Limiter) take(resource string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(resource, l.clock.Now())
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	missing := 1 - b.tokens
	wait := time.Duration(missing / l.rate())
	if wait <= 0 {
		wait = time.Millisecond
	}
	return false, wait
}

// TryAcquire consumes a token if one is available right now
func (l *Limiter) TryAcquire(resource string) bool {
	ok, _ := l.take(resource)
	return ok
}

// Acquire blocks until a token for resource is available. It returns true when a
// token was consumed and false when the wait bound elapsed and the caller should
// proceed anyway. Context cancellation also returns false.
func (l *Limiter) Acquire(ctx context.Context, resource string) bool {
	deadline := l.clock.Now().Add(l.config.MaxWait)
	for {
		ok, wait := l.take(resource)
		if ok {
			return true
		}

		remaining := deadline.Sub(l.clock.Now())
		if remaining <= 0 {
			l.failOpen(resource)
			return false
		}
		if wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return false
		case <-l.clock.After(wait):
		}
	}
}

// Release hands an unused token back, for requests that were never sent
func (l *Limiter) Release(resource string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(resource, l.clock.Now())
	b.tokens++
	if b.tokens > float64(l.config.Capacity) {
		b.tokens = float64(l.config.Capacity)
	}
}

// Available reports the current (refilled) token count for resource
func (l *Limiter) Available(resource string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refill(resource, l.clock.Now()).tokens
}

func (l *Limiter) failOpen(resource string) {
	log.Warn().
		Str("resource", resource).
		Dur("max_wait", l.config.MaxWait).
		Msg("rate limit wait exceeded, proceeding anyway")

	l.mu.Lock()
	hook := l.onFailOpen
	l.mu.Unlock()
	if hook != nil {
		hook(resource)
	}
}
