package scheduler

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy is the ordering discipline a manager applies when selecting
// eligible tasks for a dispatch round. A manager is configured with exactly
// one strategy at construction time.
type Strategy int

const (
	// StrategyParallel selects every eligible task, limited only by worker
	// capacity, in submission order.
	StrategyParallel Strategy = iota
	// StrategyBatched selects at most BatchSize eligible tasks per round,
	// in submission order, enforcing a backpressure ceiling.
	StrategyBatched
	// StrategyPriority selects eligible tasks in descending priority order,
	// ties broken by submission time. A lower-priority task is never
	// dispatched while a higher-priority eligible task waits for a slot.
	StrategyPriority
	// StrategyDependencyGraph selects tasks whose dependencies have all
	// completed, in submission order among the newly eligible.
	StrategyDependencyGraph
)

// String returns the canonical name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyParallel:
		return "parallel"
	case StrategyBatched:
		return "batched"
	case StrategyPriority:
		return "priority"
	case StrategyDependencyGraph:
		return "dependency_graph"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "parallel":
		return StrategyParallel, nil
	case "batched":
		return StrategyBatched, nil
	case "priority":
		return StrategyPriority, nil
	case "dependency_graph", "dependency-graph", "graph":
		return StrategyDependencyGraph, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q: must be 'parallel', 'batched', 'priority' or 'dependency_graph'", s)
	}
}

// selectReady returns the ordered set of tasks the given strategy makes
// eligible for one dispatch round. The input holds every task in the
// manager's table; the function filters for tasks that are pending with no
// unmet dependencies and applies the strategy's ordering and ceiling.
//
// This is a pure function over the task table so it can be tested without a
// running manager. The caller holds the manager lock.
func selectReady(strategy Strategy, batchSize int, tasks []*task) []*task {
	ready := make([]*task, 0, len(tasks))
	for _, t := range tasks {
		if t.status == StatusPending && t.waiting == 0 {
			ready = append(ready, t)
		}
	}

	switch strategy {
	case StrategyPriority:
		sort.SliceStable(ready, func(i, j int) bool {
			if ready[i].priority != ready[j].priority {
				return ready[i].priority > ready[j].priority
			}
			return ready[i].seq < ready[j].seq
		})
	default:
		// Submission order for parallel, batched and dependency_graph.
		sort.SliceStable(ready, func(i, j int) bool {
			return ready[i].seq < ready[j].seq
		})
	}

	if strategy == StrategyBatched && len(ready) > batchSize {
		ready = ready[:batchSize]
	}
	return ready
}
