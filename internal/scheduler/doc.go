// Package scheduler implements the parallel task-scheduling engine that
// coordinates page collection, per-page analysis and report generation work
// across a bounded worker pool. Callers submit opaque work units, drive
// progress with ProcessTasks, and poll handles for terminal results.
package scheduler
