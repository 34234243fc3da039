package runner

import (
	"sync"
	"time"
)

// Run outcome labels reported through the status endpoint.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Status describes the most recent pipeline run.
type Status struct {
	LastRun    *time.Time `json:"last_run"`
	LastStatus string     `json:"last_status,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// Tracker guards the shared job status record and enforces a single
// in-flight pipeline run. It is the only cross-run shared state.
type Tracker struct {
	mu      sync.Mutex
	status  Status
	running bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Status returns a copy of the current job status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Running reports whether a run is currently in flight.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// TryStart claims the in-flight slot. It returns false when a run is
// already executing; callers must not start a second concurrent run against
// the same output paths.
func (t *Tracker) TryStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false
	}
	t.running = true
	return true
}

// Finish records the outcome of a run started via TryStart and releases the
// in-flight slot.
func (t *Tracker) Finish(started time.Time, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.status = Status{LastRun: &started, LastStatus: StatusCompleted}
	if err != nil {
		t.status.LastStatus = StatusFailed
		t.status.LastError = err.Error()
	}
}
