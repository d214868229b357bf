package scheduler

import "time"

// The resolver functions below maintain the dependency bookkeeping of the
// task table: pending-dependency counters, promotion of dependents when a
// dependency completes, and failure propagation when one fails terminally.
// All of them run inside the manager's mutual-exclusion domain.

// wouldCycle reports whether linking newID to its declared dependencies
// creates a cycle. Dependencies normally point backwards in submission
// time, so this only triggers on self-references or table corruption, but
// the check is a full depth-first search so transitive cycles are caught
// regardless of how the edges got there.
func wouldCycle(tasks map[string]*task, newID string, deps map[string]struct{}) bool {
	// Classic three-color DFS: permanent nodes are known safe, temporary
	// nodes are on the current traversal stack.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	edges := func(id string) map[string]struct{} {
		if id == newID {
			return deps
		}
		if t, ok := tasks[id]; ok {
			return t.deps
		}
		return nil
	}

	var visit func(id string) bool
	visit = func(id string) bool {
		if permanent[id] {
			return false
		}
		if temporary[id] {
			return true
		}
		temporary[id] = true
		for dep := range edges(id) {
			if visit(dep) {
				return true
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return false
	}

	return visit(newID)
}

// link registers the new task's edges in the table and initializes its
// pending-dependency counter. Dependencies that already completed do not
// count against it; dependencies that already failed are handled by the
// caller via propagation.
func link(tasks map[string]*task, t *task) {
	for depID := range t.deps {
		dep := tasks[depID]
		dep.dependents[t.id] = struct{}{}
		if dep.status != StatusCompleted {
			t.waiting++
		}
	}
}

// promoteDependents decrements the pending counters of every direct
// dependent of a completed task. A counter reaching zero makes the
// dependent eligible for the next dispatch round.
func promoteDependents(tasks map[string]*task, done *task) {
	for depID := range done.dependents {
		if dep, ok := tasks[depID]; ok && dep.status == StatusPending {
			dep.waiting--
		}
	}
}

// failDependents marks every direct and transitive dependent of a failed
// task as terminally failed by propagation, without ever running its work.
// It returns the tasks it failed so the round can report them.
func failDependents(tasks map[string]*task, failed *task) []*task {
	var propagated []*task
	var walk func(from *task)
	walk = func(from *task) {
		for depID := range from.dependents {
			dep, ok := tasks[depID]
			if !ok || dep.status.Terminal() {
				continue
			}
			dep.status = StatusFailed
			dep.finishedAt = time.Now()
			dep.result = &Result{
				Err: &PropagatedError{TaskID: dep.id, AncestorID: failed.id},
			}
			propagated = append(propagated, dep)
			walk(dep)
		}
	}
	walk(failed)
	return propagated
}
