// Package search provides the typeahead debouncer used by interactive
// query inputs: a request fires only after the input has been quiet for the
// debounce window, and only for the latest value typed.
package search

import (
	"sync"
	"time"
)

// DefaultQuiescence matches the UI's typeahead delay.
const DefaultQuiescence = 250 * time.Millisecond

// Debouncer coalesces a burst of Input calls into a single emit of the last
// value once the input goes quiet. Safe for concurrent use.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending string
	emit    func(string)
	stopped bool
}

// NewDebouncer builds a debouncer that calls emit with the settled query.
// A non-positive delay falls back to DefaultQuiescence.
func NewDebouncer(delay time.Duration, emit func(query string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultQuiescence
	}
	return &Debouncer{delay: delay, emit: emit}
}

// Input records a new query value and restarts the quiescence window.
func (d *Debouncer) Input(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = query
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	query := d.pending
	emit := d.emit
	d.mu.Unlock()

	emit(query)
}

// Flush emits the pending value immediately, cancelling any scheduled fire.
// Used when the user submits explicitly instead of waiting out the delay.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	query := d.pending
	emit := d.emit
	d.mu.Unlock()

	emit(query)
}

// Stop cancels any pending emit. Further Input calls are ignored, so a late
// timer cannot act on behalf of an unmounted view.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
