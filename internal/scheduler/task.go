package scheduler

import (
	"fmt"
	"time"
)

// Status describes where a task is in its lifecycle.
type Status int

const (
	// StatusPending means the task has been submitted but not yet dispatched,
	// or has been returned to the ready set for a retry.
	StatusPending Status = iota
	// StatusRunning means the task is currently executing on a worker slot.
	StatusRunning
	// StatusCompleted means the task's work returned successfully.
	StatusCompleted
	// StatusFailed means the task exhausted its retry budget, or was failed
	// by propagation from an upstream dependency.
	StatusFailed
)

// String returns the human-readable form of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result is the outcome of a terminal task. Exactly one of Value and Err is
// meaningful: Err is nil for a completed task and non-nil for a failed one.
type Result struct {
	// Value is whatever the work returned on success.
	Value any
	// Err is the captured execution error for a failed task. For a task
	// failed by an upstream dependency it is a *PropagatedError.
	Err error
	// Attempts is the number of execution attempts made. Zero for tasks
	// whose work never ran (failed by propagation).
	Attempts int
}

// Failed reports whether the result captures an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// task is a single schedulable unit tracked in the manager's task table.
// It is un-exported to enforce that all mutation happens inside the
// manager's mutual-exclusion domain; callers only ever see a Handle.
type task struct {
	id   string
	name string
	work Work

	priority   int
	maxRetries int

	// deps holds the ids this task depends on; dependents the reverse edges.
	deps       map[string]struct{}
	dependents map[string]struct{}
	// waiting counts dependencies that have not yet completed.
	waiting int

	// attempt counts execution attempts made so far. It is incremented at
	// dispatch time, so it never exceeds maxRetries+1.
	attempt int

	status Status
	result *Result

	// seq is the submission sequence number, used as the deterministic
	// tie-break alongside submittedAt.
	seq         uint64
	submittedAt time.Time
	startedAt   time.Time
	finishedAt  time.Time
}

// Handle is the caller-facing view of a submitted task. It allows polling
// status and result without granting mutation rights over the task itself.
type Handle struct {
	m  *Manager
	id string
}

// ID returns the task's unique identifier.
func (h *Handle) ID() string { return h.id }

// Name returns the task's diagnostic label. Names are not unique.
func (h *Handle) Name() string {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if t, ok := h.m.tasks[h.id]; ok {
		return t.name
	}
	return ""
}

// Status returns the task's current status. The second return is false if
// the task has been cleared from the manager's table.
func (h *Handle) Status() (Status, bool) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	t, ok := h.m.tasks[h.id]
	if !ok {
		return 0, false
	}
	return t.status, true
}

// Result returns a copy of the task's terminal result. The second return is
// false while the task is still pending or running.
func (h *Handle) Result() (Result, bool) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	t, ok := h.m.tasks[h.id]
	if !ok || t.result == nil {
		return Result{}, false
	}
	return *t.result, true
}

// TaskView is the read-only snapshot of a task that reached a terminal state
// during a dispatch round. It is copied out of the task table and carries no
// reference back into it.
type TaskView struct {
	ID       string
	Name     string
	Status   Status
	Result   Result
	Attempts int
}
