// Package debounce delays an action until a burst of triggers quiesces.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"
)

// DefaultDelay is the quiescence window used for email lookups.
const DefaultDelay = 750 * time.Millisecond

// RunFunc performs the debounced action on its own goroutine. ctx is cancelled as soon as a newer trigger, Cancel or
// Close supersedes this run, so a run must check ctx before publishing anything it produced.
type RunFunc func(ctx context.Context, input string)

// Debouncer is idle until Trigger arms it. It collapses back to idle when the timer fires or
// when Cancel is called.
type Debouncer struct {
	clock  clock.Clock
	delay  time.Duration
	run    RunFunc
	logger zerolog.Logger

	mu     sync.Mutex
	timer  *clock.Timer
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

func New(c clock.Clock, delay time.Duration, run RunFunc, logger zerolog.Logger) *Debouncer {
	if c == nil {
		c = clock.New()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		clock:  c,
		delay:  delay,
		run:    run,
		logger: logger.With().Str("component", "debouncer").Logger(),
	}
}

// Trigger re-arms the timer for input and invalidates every earlier run, pending or in flight.
func (d *Debouncer) Trigger(input string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.invalidateLocked()

	d.seq++
	seq := d.seq
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.fire(ctx, seq, input)
	})
}

func (d *Debouncer) fire(ctx context.Context, seq uint64, input string) {
	d.mu.Lock()
	if d.closed || d.seq != seq || ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.logger.Debug().Uint64("seq", seq).Msg("debounce window elapsed")
	go d.run(ctx, input)
}

// Cancel disarms the timer and invalidates any run in flight.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidateLocked()
}

// Close cancels and makes every later Trigger a no-op.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidateLocked()
	d.closed = true
}

// Armed reports whether a timer is pending.
func (d *Debouncer) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) invalidateLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
