package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Local is the in-process tier. It has no expiry of its own: entries are compared
// against MaxAge on read and dropped when stale.
type Local struct {
	mu      sync.Mutex
	entries map[string]Entry
	maxAge  time.Duration
	clock   clockwork.Clock
}

func NewLocal(maxAge time.Duration) *Local {
	return NewLocalWithClock(maxAge, clockwork.NewRealClock())
}

func NewLocalWithClock(maxAge time.Duration, clock clockwork.Clock) *Local {
	return &Local{
		entries: make(map[string]Entry),
		maxAge:  maxAge,
		clock:   clock,
	}
}

func (l *Local) Get(_ context.Context, key string) (Entry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if l.clock.Since(entry.Timestamp) > l.maxAge {
		delete(l.entries, key)
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Set stores entry; ttl is ignored because freshness is judged by MaxAge
func (l *Local) Set(_ context.Context, key string, entry Entry, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = entry
	return nil
}

func (l *Local) Delete(_ context.Context, keys ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		delete(l.entries, k)
	}
	return nil
}

// Len reports the number of entries held, stale ones included
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
