package otel

import "sync"

// DefaultRingSize is the ring capacity used when none is given.
const DefaultRingSize = 512

// RingBuffer keeps the most recent events in memory for the debug panel.
type RingBuffer struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewRingBuffer creates a ring holding up to size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Push stores e, evicting the oldest event when full. Extra is copied so
// later changes by the caller are not visible.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		extra := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			extra[k] = v
		}
		e.Extra = extra
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
}

// ordered returns events oldest first. Caller holds r.mu.
func (r *RingBuffer) ordered() []Event {
	if !r.full {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Snapshot returns all buffered events, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size() == 0 {
		return nil
	}
	return r.ordered()
}

// Last returns up to n of the newest events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	all := r.Snapshot()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

// Where returns the buffered events matching keep, oldest first.
func (r *RingBuffer) Where(keep func(Event) bool) []Event {
	var out []Event
	for _, e := range r.Snapshot() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Len is the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size()
}

// size is Len without locking. Caller holds r.mu.
func (r *RingBuffer) size() int {
	if r.full {
		return len(r.events)
	}
	return r.next
}

// Cap is the ring capacity.
func (r *RingBuffer) Cap() int {
	return len(r.events)
}

// Stats counts buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	counts := make(map[EventKind]int)
	for _, e := range r.Snapshot() {
		counts[e.Kind]++
	}
	return counts
}
