package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

const windowSeconds = 60

// Error reports an exceeded limit and how long until the window rolls over.
type Error struct {
	Route      string
	RetryAfter int
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %ds", e.Route, e.RetryAfter)
}

type counter struct {
	window int64
	count  int
}

// Limiter is a fixed-window per-route-per-client counter. It is in-memory
// and single-process; a multi-instance deployment would need a shared store.
type Limiter struct {
	mu    sync.Mutex
	store map[string]counter
	now   func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		store: make(map[string]counter),
		now:   time.Now,
	}
}

// Check records one call for (route, clientKey) and returns *Error when the
// incremented count exceeds limit within the current 60-second window.
// A stale counter from a previous window resets to 1 and is allowed.
func (l *Limiter) Check(clientKey, route string, limit int) error {
	now := l.now().Unix()
	window := now / windowSeconds
	key := route + ":" + clientKey

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.store[key]
	if !ok || entry.window != window {
		l.store[key] = counter{window: window, count: 1}
		return nil
	}

	entry.count++
	if entry.count > limit {
		return &Error{
			Route:      route,
			RetryAfter: windowSeconds - int(now%windowSeconds),
		}
	}
	l.store[key] = entry
	return nil
}
