package scheduler

import (
	"errors"
	"fmt"
)

// Sentinel errors returned synchronously by manager operations.
var (
	// ErrManagerClosed indicates Submit or ProcessTasks was called after
	// shutdown began.
	ErrManagerClosed = errors.New("scheduler: manager closed")

	// ErrUnknownDependency indicates a submission referenced a task id that
	// was never returned by Submit on this manager.
	ErrUnknownDependency = errors.New("scheduler: unknown dependency id")
)

// CycleError is returned by Submit when the declared dependencies would
// make the task depend, directly or transitively, on itself. The submission
// is rejected and no task is created.
type CycleError struct {
	// TaskID is the id of a task involved in the detected cycle.
	TaskID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("scheduler: dependency cycle involving task %q", e.TaskID)
}

// ExecError captures the failure of a task's work. It is never returned to
// the caller of ProcessTasks directly; it surfaces inside the failed task's
// Result.
type ExecError struct {
	TaskID   string
	Attempts int
	Err      error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("scheduler: task %q failed after %d attempt(s): %v", e.TaskID, e.Attempts, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// PropagatedError marks a task that was failed without ever running because
// an upstream dependency failed terminally. AncestorID names the failed
// dependency the failure propagated from.
type PropagatedError struct {
	TaskID     string
	AncestorID string
}

func (e *PropagatedError) Error() string {
	return fmt.Sprintf("scheduler: task %q skipped due to failed dependency %q", e.TaskID, e.AncestorID)
}
