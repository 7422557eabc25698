package game

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestNextDelay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		period := time.Duration(rapid.Int64Range(1, int64(time.Second)).Draw(t, "period"))
		elapsed := time.Duration(rapid.Int64Range(0, int64(2*time.Second)).Draw(t, "elapsed"))

		d := NextDelay(period, elapsed)
		if d < 0 || d > period {
			t.Fatalf("delay %v outside [0, %v]", d, period)
		}
		if elapsed < period && d+elapsed != period {
			t.Fatalf("expected delay %v to complete the period, got %v", period-elapsed, d)
		}
		if elapsed >= period && d != 0 {
			t.Fatalf("expected an overrun to tick immediately, got %v", d)
		}
	})
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(time.Millisecond, 0, func(time.Time) {
		if ticks.Add(1) == 5 {
			cancel()
		}
	})

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	if ticks.Load() < 5 {
		t.Errorf("expected at least 5 ticks, got %d", ticks.Load())
	}
}

func TestLoopSamplesWindow(t *testing.T) {
	l := NewLoop(30*time.Millisecond, 3, nil)
	l.sample(time.Millisecond)
	l.sample(time.Millisecond)
	if len(l.samples) != 2 {
		t.Fatalf("expected 2 buffered samples, got %d", len(l.samples))
	}
	l.sample(time.Millisecond)
	if len(l.samples) != 0 {
		t.Error("expected the window flushed")
	}
}
