// Package debounce provides a delay-coalescing primitive: rapidly
// changing input values collapse into a single callback once the input
// has been stable for the configured delay.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the most recent value passed to Set to fn after the
// value has been stable for delay. Each Set restarts the timer; only the
// latest value survives. Independent instances do not interfere.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	last    T
	pending bool
	stopped bool
}

// New creates a Debouncer invoking fn with the settled value.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Set records a new input value and restarts the delay timer.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.last = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.last
	d.pending = false
	d.mu.Unlock()

	d.fn(v)
}

// Flush fires the pending value immediately, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.fire()
}

// Stop cancels any pending timer and prevents further callbacks. The
// debouncer cannot be reused after Stop.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
