package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer coalesces rapid file system events. Once no path has been added
// for the window, Ready receives a signal and Take returns the batch.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	gen     uint64 // bumped by every Add and Stop; stale timers compare it
	window  time.Duration
	ready   chan struct{}
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		pending: make(map[string]struct{}),
		window:  window,
		ready:   make(chan struct{}, 1),
	}
}

// Add records path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// fire signals Ready unless a later Add or Stop superseded the timer that
// scheduled it. Timer.Stop cannot cancel a callback that is already waiting
// on mu.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	empty := len(d.pending) == 0
	d.mu.Unlock()

	if empty {
		return
	}
	// A signal already queued covers this batch too.
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled when a batch is waiting.
func (d *Debouncer) Ready() <-chan struct{} {
	return d.ready
}

// Take returns the pending paths in sorted order and clears them.
func (d *Debouncer) Take() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	d.pending = make(map[string]struct{})
	return paths
}

// Stop cancels a running window. Pending paths are kept.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
