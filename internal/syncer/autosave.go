package syncer

import (
	"sync"
	"time"
)

// autoSaveWindow is the quiet period after the last mutation before the
// document is pushed. Long enough to not flood the backend on every
// keystroke, short enough to keep staleness bounded.
const autoSaveWindow = 3 * time.Second

// debouncer is a single-slot cancellable timer. Triggering always cancels
// the pending run first, so overlapping timers never stack: only the most
// recent mutation's timer may fire.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

// Trigger (re)schedules fn to run after the quiet window.
func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending run, if any.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a run is scheduled.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
