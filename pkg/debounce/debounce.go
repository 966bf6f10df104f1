// Package debounce provides a trailing-edge debouncer with explicit
// schedule, cancel and flush operations.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays a call until no newer call has been scheduled for the
// configured wait. At most one call runs at a time; a call that fires while a
// previous one is still running waits for it to finish.
type Debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
	// inflight counts calls taken off the timer that have not returned yet.
	inflight int
	idle     *sync.Cond

	running sync.Mutex
}

// New returns a debouncer that waits d after the last Schedule call.
func New(d time.Duration) *Debouncer {
	deb := &Debouncer{wait: d}
	deb.idle = sync.NewCond(&deb.mu)
	return deb
}

// Schedule replaces any pending call with fn and re-arms the timer.
func (d *Debouncer) Schedule(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.wait, func() {
		d.fire(gen)
	})
}

// Cancel drops the pending call, if any. It does not interrupt a call that is
// already running.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// CancelAndWait drops the pending call and blocks until a call that already
// started has returned. Nothing scheduled before it runs after it returns.
func (d *Debouncer) CancelAndWait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	for d.inflight > 0 {
		d.idle.Wait()
	}
}

// Flush runs the pending call immediately on the caller's goroutine and
// reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	if fn != nil {
		d.inflight++
	}
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	d.run(fn)
	return true
}

// Pending reports whether a call is waiting for its timer.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.inflight++
	d.mu.Unlock()

	d.run(fn)
}

func (d *Debouncer) run(fn func()) {
	defer func() {
		d.mu.Lock()
		d.inflight--
		d.idle.Broadcast()
		d.mu.Unlock()
	}()
	d.running.Lock()
	defer d.running.Unlock()
	fn()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
