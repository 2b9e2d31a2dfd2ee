// Package ratelimit provides the shared concurrency gate that bounds
// in-flight remote calls and enforces a rolling-window call rate.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults match the remote service's published limits.
const (
	// DefaultMaxInFlight bounds concurrently in-flight remote calls.
	DefaultMaxInFlight = 50
	// DefaultWindow is the rolling rate-limit window.
	DefaultWindow = time.Second
	// DefaultMaxCalls is the number of calls permitted per window.
	DefaultMaxCalls = 5
)

// Gate bounds how many remote calls may be in flight at once and how many
// may start within a rolling time window. Every Acquire must be paired
// with exactly one Release, including on error paths; use Do for scoped
// acquisition.
type Gate struct {
	permits chan struct{}

	mu       sync.Mutex
	window   time.Duration
	maxCalls int
	recent   []time.Time // acquisition times inside the window, oldest first
}

// New creates a gate with the given in-flight bound and rolling-window
// rate. Non-positive arguments fall back to the defaults.
func New(maxInFlight int, window time.Duration, maxCalls int) *Gate {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if maxCalls <= 0 {
		maxCalls = DefaultMaxCalls
	}
	return &Gate{
		permits:  make(chan struct{}, maxInFlight),
		window:   window,
		maxCalls: maxCalls,
		recent:   make([]time.Time, 0, maxCalls),
	}
}

// Default returns a gate configured with the service defaults.
func Default() *Gate {
	return New(DefaultMaxInFlight, DefaultWindow, DefaultMaxCalls)
}

// Acquire blocks until a permit is available and the rolling window has
// room, or the context is done. On success the caller holds one permit and
// must Release it.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.permits <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := g.throttle(ctx); err != nil {
		<-g.permits
		return err
	}
	return nil
}

// Release returns a permit to the gate.
func (g *Gate) Release() {
	<-g.permits
}

// Do runs fn while holding a permit, releasing it when fn returns.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// throttle waits until starting a call keeps the rolling window within
// maxCalls, then records the acquisition.
func (g *Gate) throttle(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := time.Now()
		for len(g.recent) > 0 && now.Sub(g.recent[0]) >= g.window {
			g.recent = g.recent[1:]
		}
		if len(g.recent) < g.maxCalls {
			g.recent = append(g.recent, now)
			g.mu.Unlock()
			return nil
		}
		// Window full: wait for the oldest acquisition to age out.
		wait := g.window - now.Sub(g.recent[0])
		g.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
