package tracker

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/foglomon/FSAR/internal/core/domain"
)

// pendingEvent is one path's buffered change waiting out its quiet window.
type pendingEvent struct {
	event domain.Event
	timer *time.Timer
}

// Debouncer buffers events per path and emits exactly one settled event
// once a path has been quiet for the window. The latest kind and timestamp
// observed during the window win outright; a rename origin seen earlier in
// the window is carried onto the settled event so the move is never lost.
//
// Settled events surface on the Settled channel from timer goroutines; the
// consumer loop is the only receiver.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[domain.PathKey]*pendingEvent
	settled chan domain.Event
	closed  bool
}

// NewDebouncer creates a debouncer with the given quiet window. buffer
// sizes the settled channel.
func NewDebouncer(window time.Duration, buffer int) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[domain.PathKey]*pendingEvent),
		settled: make(chan domain.Event, buffer),
	}
}

// Submit buffers an event for its path, restarting the path's quiet
// window. A pending event for the same path is overwritten: latest kind
// and timestamp win, and an already-buffered rename origin is preserved
// unless the new event carries its own.
func (d *Debouncer) Submit(ev domain.Event) {
	key := domain.KeyFor(ev.Path)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		if ev.OldPath == "" {
			ev.OldPath = p.event.OldPath
		}
		p.event = ev
		p.timer = time.AfterFunc(d.window, func() { d.fire(key) })
		return
	}

	d.pending[key] = &pendingEvent{
		event: ev,
		timer: time.AfterFunc(d.window, func() { d.fire(key) }),
	}
}

// Discard drops the pending event for path, if any. Used when a buffered
// deletion turns out to be one half of a rename.
func (d *Debouncer) Discard(path string) {
	key := domain.KeyFor(path)

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Settled is the stream of events whose quiet window elapsed.
func (d *Debouncer) Settled() <-chan domain.Event {
	return d.settled
}

// Flush stops every timer and returns the still-pending events sorted by
// path, for the shutdown path where the consumer applies the remainder
// synchronously. The debouncer accepts no submissions afterwards.
func (d *Debouncer) Flush() []domain.Event {
	d.mu.Lock()
	d.closed = true
	events := make([]domain.Event, 0, len(d.pending))
	for _, p := range d.pending {
		p.timer.Stop()
		events = append(events, p.event)
	}
	clear(d.pending)
	d.mu.Unlock()

	slices.SortFunc(events, func(a, b domain.Event) int {
		return strings.Compare(a.Path, b.Path)
	})
	return events
}

// fire is called when a path's quiet window expires.
func (d *Debouncer) fire(key domain.PathKey) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	d.settled <- p.event
}
