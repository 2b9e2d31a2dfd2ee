package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	g := New(2, time.Second, 100)
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx))
	require.NoError(t, g.Acquire(ctx))

	// Both permits held: a third acquire must block until one is released.
	acquired := make(chan struct{})
	go func() {
		if err := g.Acquire(ctx); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("third acquire should block while all permits are held")
	case <-time.After(50 * time.Millisecond):
	}

	g.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire did not proceed after a release")
	}
}

func TestAcquireContextCanceled(t *testing.T) {
	g := New(1, time.Second, 100)
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRollingWindowThrottles(t *testing.T) {
	window := 200 * time.Millisecond
	g := New(10, window, 3)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, g.Acquire(ctx))
		g.Release()
	}
	elapsed := time.Since(start)

	// The fourth call must wait for the first to age out of the window.
	assert.GreaterOrEqual(t, elapsed, window/2, "fourth call within the window should be throttled")
}

func TestRollingWindowContextCanceled(t *testing.T) {
	g := New(10, time.Minute, 1)
	ctx := context.Background()

	require.NoError(t, g.Acquire(ctx))
	g.Release()

	// The window is full for a minute; a short deadline must fail fast and
	// return the permit.
	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Acquire(shortCtx)
	require.Error(t, err)

	// The permit taken before throttling must have been returned.
	assert.Zero(t, len(g.permits), "permit leaked after throttle cancellation")
}

func TestDo(t *testing.T) {
	g := New(1, time.Second, 100)

	ran := false
	err := g.Do(context.Background(), func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// The permit is free again after Do returns.
	require.NoError(t, g.Acquire(context.Background()))
	g.Release()
}

func TestDefaults(t *testing.T) {
	g := New(0, 0, 0)
	assert.Equal(t, DefaultMaxInFlight, cap(g.permits))
	assert.Equal(t, DefaultWindow, g.window)
	assert.Equal(t, DefaultMaxCalls, g.maxCalls)
}
