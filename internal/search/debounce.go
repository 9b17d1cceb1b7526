package search

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through
// TimeAfterFunc; tests substitute a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

// TimeAfterFunc is the real-clock AfterFunc.
func TimeAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type slot struct {
	timer Timer
	gen   uint64
}

// Debouncer delays a callback until input for an instance has settled.
// Each instance id has at most one pending timer; triggering again replaces
// it. It is safe for concurrent use.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	after   AfterFunc
	gen     uint64
	pending map[string]slot
}

// NewDebouncer returns a debouncer firing delay after the last trigger.
// A nil after uses the real clock.
func NewDebouncer(delay time.Duration, after AfterFunc) *Debouncer {
	if after == nil {
		after = TimeAfterFunc
	}
	return &Debouncer{
		delay:   delay,
		after:   after,
		pending: make(map[string]slot),
	}
}

// Trigger cancels any pending callback for id and schedules fn. The timer
// is created without holding the lock, so an AfterFunc may call back
// synchronously.
func (d *Debouncer) Trigger(id string, fn func()) {
	d.mu.Lock()
	if s, ok := d.pending[id]; ok && s.timer != nil {
		s.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending[id] = slot{gen: gen}
	d.mu.Unlock()

	t := d.after(d.delay, func() {
		if d.claim(id, gen) {
			fn()
		}
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.pending[id]
	if !ok || s.gen != gen {
		// Fired, cancelled or replaced while the timer was being created.
		t.Stop()
		return
	}
	s.timer = t
	d.pending[id] = s
}

// claim removes the slot if it still belongs to gen. A timer that fires
// after being replaced loses the race here and does nothing.
func (d *Debouncer) claim(id string, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.pending[id]
	if !ok || s.gen != gen {
		return false
	}
	delete(d.pending, id)
	return true
}

// Cancel drops the pending callback for id and reports whether one existed.
func (d *Debouncer) Cancel(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.pending[id]
	if !ok {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	delete(d.pending, id)
	return true
}

// Pending reports whether a callback is scheduled for id.
func (d *Debouncer) Pending(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[id]
	return ok
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, s := range d.pending {
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(d.pending, id)
	}
}
