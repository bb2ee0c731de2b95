// Package ratelimit implements the per-client fixed-window limiter in front of the search pipeline.
//
// Windows are not aligned across clients: each client's window starts on its first request
// after the previous window ended. A client may therefore send up to twice the limit across a
// window boundary; that burst is accepted behavior.
package ratelimit

import (
	"sync"
	"time"

	"github.com/saintathena/backend/internal/domain"
)

// Defaults: 60 requests per client per minute
const (
	DefaultLimit  = 60
	DefaultWindow = 60 * time.Second
)

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow counts requests per client. One mutex guards the whole map, so the
// read-increment-write on a client's counter is atomic.
type FixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     domain.Clock
}

// NewFixedWindow creates a limiter allowing limit requests per period per client
func NewFixedWindow(limit int, period time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if period <= 0 {
		period = DefaultWindow
	}
	return &FixedWindow{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow reports whether the client may make another request now
func (l *FixedWindow) Allow(clientID string) bool {
	return l.Check(clientID).Allowed
}

// Check records a request for the client and returns the decision.
// A new window starts on the first request or once the current time passes the reset time.
// Rejected requests do not advance the counter.
func (l *FixedWindow) Check(clientID string) domain.RateDecision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[clientID]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.period)}
		l.windows[clientID] = w
		return l.decision(true, w)
	}

	if w.count >= l.limit {
		return l.decision(false, w)
	}

	w.count++
	return l.decision(true, w)
}

// Sweep drops windows that have already ended and returns how many were removed
func (l *FixedWindow) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

// Clients returns the number of tracked clients
func (l *FixedWindow) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *FixedWindow) decision(allowed bool, w *window) domain.RateDecision {
	return domain.RateDecision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: max(0, l.limit-w.count),
		ResetAt:   w.resetAt,
	}
}
