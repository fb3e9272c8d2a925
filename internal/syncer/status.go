package syncer

import (
	"sync"
	"time"
)

// Status is the user-visible sync state. Transitions per session:
// idle -> syncing -> {success | error} -> idle, where the terminal display
// states auto-return to idle after a fixed interval. Success and error are
// display-only: nothing else acts on them.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// statusDisplayInterval is how long success/error stay visible before the
// tracker returns to idle.
const statusDisplayInterval = 3 * time.Second

type statusTracker struct {
	mu       sync.Mutex
	status   Status
	reset    *time.Timer
	onChange func(Status)
}

func newStatusTracker(onChange func(Status)) *statusTracker {
	return &statusTracker{status: StatusIdle, onChange: onChange}
}

func (t *statusTracker) Current() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// begin marks a push/pull in progress. A pending idle reset is cancelled so
// an older operation's display timer cannot clobber the new state.
func (t *statusTracker) begin() {
	t.mu.Lock()
	if t.reset != nil {
		t.reset.Stop()
		t.reset = nil
	}
	t.set(StatusSyncing)
	t.mu.Unlock()
}

// finish records the outcome and schedules the return to idle.
func (t *statusTracker) finish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		t.set(StatusError)
	} else {
		t.set(StatusSuccess)
	}

	if t.reset != nil {
		t.reset.Stop()
	}
	t.reset = time.AfterFunc(statusDisplayInterval, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.reset = nil
		t.set(StatusIdle)
	})
}

// set must be called with the lock held.
func (t *statusTracker) set(s Status) {
	if t.status == s {
		return
	}
	t.status = s
	if t.onChange != nil {
		t.onChange(s)
	}
}
