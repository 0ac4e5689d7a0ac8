package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowAdmitSequence(t *testing.T) {
	s := NewSlidingWindow(3, 60*time.Second)
	ctx := context.Background()

	now := time.Unix(1_000_000, 0)
	s.nowFn = func() time.Time { return now }

	var got []bool
	for i := 0; i < 4; i++ {
		got = append(got, s.Admit(ctx, "client-a"))
		now = now.Add(250 * time.Millisecond)
	}
	assert.Equal(t, []bool{true, true, true, false}, got)

	// A rejected attempt is not recorded: after the window passes the
	// client starts fresh.
	now = now.Add(61 * time.Second)
	assert.True(t, s.Admit(ctx, "client-a"))
}

func TestSlidingWindowBoundary(t *testing.T) {
	s := NewSlidingWindow(1, 60*time.Second)
	ctx := context.Background()

	start := time.Unix(1_000_000, 0)
	s.nowFn = func() time.Time { return start }
	assert.True(t, s.Admit(ctx, "k"))

	// Exactly one window later the first timestamp is stale: staleness is
	// ts <= now-window, so the slot is free again.
	s.nowFn = func() time.Time { return start.Add(60 * time.Second) }
	assert.True(t, s.Admit(ctx, "k"))
}

func TestSlidingWindowJustInsideWindow(t *testing.T) {
	s := NewSlidingWindow(1, 60*time.Second)
	ctx := context.Background()

	start := time.Unix(1_000_000, 0)
	s.nowFn = func() time.Time { return start }
	assert.True(t, s.Admit(ctx, "k"))

	s.nowFn = func() time.Time { return start.Add(60*time.Second - time.Millisecond) }
	assert.False(t, s.Admit(ctx, "k"))
}

func TestSlidingWindowIsolatesKeys(t *testing.T) {
	s := NewSlidingWindow(1, time.Minute)
	ctx := context.Background()

	assert.True(t, s.Admit(ctx, "a"))
	assert.True(t, s.Admit(ctx, "b"))
	assert.False(t, s.Admit(ctx, "a"))
}

func TestSlidingWindowPrunesEmptyKeys(t *testing.T) {
	s := NewSlidingWindow(5, time.Minute)
	ctx := context.Background()

	now := time.Unix(1_000_000, 0)
	s.nowFn = func() time.Time { return now }
	s.Admit(ctx, "a")
	s.Admit(ctx, "b")
	assert.Equal(t, 2, s.TrackedKeys())

	now = now.Add(2 * time.Minute)
	s.Admit(ctx, "c")
	assert.Equal(t, 1, s.TrackedKeys(), "stale keys must be garbage-collected by the sweep")
}

func TestSlidingWindowConcurrent(t *testing.T) {
	const max = 50
	s := NewSlidingWindow(max, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	admitted := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- s.Admit(ctx, "shared")
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for ok := range admitted {
		if ok {
			count++
		}
	}
	assert.Equal(t, max, count, "concurrent requests must not over-admit")
}
