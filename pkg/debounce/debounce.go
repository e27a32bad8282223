package debounce

import (
	"sync"
	"time"
)

// Debouncer delays propagation of a rapidly changing value. The callback
// fires with the most recent value once no newer value has arrived for the
// full delay. Intermediate values are dropped, never queued.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New creates a debouncer that invokes fn on its own timer goroutine
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
	}
}

// Set replaces the pending value and restarts the delay
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	// Stop can miss a timer whose callback already fired and is waiting
	// on the lock. The generation check inside the callback keeps such a
	// stale fire from propagating its value.
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := d.stopped || gen != d.gen
		d.mu.Unlock()

		if !stale {
			d.fn(value)
		}
	})
}

// Stop cancels any pending propagation permanently. No invocation of the
// callback starts after Stop returns.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
