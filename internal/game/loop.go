package game

import (
	"context"
	"log"
	"time"

	"gas-arena/internal/metrics"
)

// Loop drives a tick function at a fixed period. After each tick it waits
// for the remainder of the period, so a slow tick shortens the next gap
// instead of pushing the schedule back. A tick longer than the period is
// followed immediately by the next one; ticks are never skipped or
// batched.
type Loop struct {
	Period       time.Duration
	SampleWindow int
	Tick         func(now time.Time)

	// Clock defaults to time.Now.
	Clock func() time.Time

	samples []time.Duration
}

// NewLoop creates a loop for tick at the configured cadence.
func NewLoop(period time.Duration, sampleWindow int, tick func(now time.Time)) *Loop {
	return &Loop{
		Period:       period,
		SampleWindow: sampleWindow,
		Tick:         tick,
	}
}

// NextDelay is the wait before the next tick given how long the last one
// took: max(0, period-elapsed).
func NextDelay(period, elapsed time.Duration) time.Duration {
	if elapsed >= period {
		return 0
	}
	return period - elapsed
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	clock := l.Clock
	if clock == nil {
		clock = time.Now
	}

	log.Printf("🎮 Tick loop started (%v per tick)", l.Period)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Tick loop stopped")
			return ctx.Err()
		case <-timer.C:
		}

		start := clock()
		l.Tick(start)
		elapsed := clock().Sub(start)

		metrics.RecordTick(elapsed)
		l.sample(elapsed)
		timer.Reset(NextDelay(l.Period, elapsed))
	}
}

// sample records a tick duration and logs the rolling average once per
// window. The average is diagnostic only.
func (l *Loop) sample(elapsed time.Duration) {
	if l.SampleWindow <= 0 {
		return
	}
	l.samples = append(l.samples, elapsed)
	if len(l.samples) < l.SampleWindow {
		return
	}

	var total time.Duration
	for _, s := range l.samples {
		total += s
	}
	l.samples = l.samples[:0]

	avgMs := float64(total) / float64(l.SampleWindow) / float64(time.Millisecond)
	load := 100 * avgMs / (float64(l.Period) / float64(time.Millisecond))
	log.Printf("📊 Average ms/tick: %.3f", avgMs)
	log.Printf("📊 Server load: %.1f%%", load)
	metrics.RecordTickAverage(avgMs, load)
}
