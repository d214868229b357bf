package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingTask(id string, seq uint64, priority int) *task {
	return &task{
		id:         id,
		name:       id,
		priority:   priority,
		deps:       map[string]struct{}{},
		dependents: map[string]struct{}{},
		status:     StatusPending,
		seq:        seq,
	}
}

func idsOf(tasks []*task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.id)
	}
	return ids
}

func TestParseStrategy(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Strategy
	}{
		{"parallel", StrategyParallel},
		{"BATCHED", StrategyBatched},
		{"priority", StrategyPriority},
		{"dependency_graph", StrategyDependencyGraph},
		{"dependency-graph", StrategyDependencyGraph},
	} {
		got, err := ParseStrategy(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseStrategy("round_robin")
	assert.Error(t, err)
}

func TestSelectReadyFiltersIneligible(t *testing.T) {
	running := pendingTask("b", 1, 0)
	running.status = StatusRunning
	done := pendingTask("c", 2, 0)
	done.status = StatusCompleted
	waiting := pendingTask("d", 3, 0)
	waiting.waiting = 1

	ready := selectReady(StrategyParallel, 0, []*task{
		pendingTask("a", 0, 0), running, done, waiting,
	})
	assert.Equal(t, []string{"a"}, idsOf(ready))
}

func TestSelectReadySubmissionOrder(t *testing.T) {
	tasks := []*task{
		pendingTask("c", 2, 0),
		pendingTask("a", 0, 0),
		pendingTask("b", 1, 0),
	}

	for _, strategy := range []Strategy{StrategyParallel, StrategyDependencyGraph} {
		ready := selectReady(strategy, 0, tasks)
		assert.Equal(t, []string{"a", "b", "c"}, idsOf(ready), "strategy %v", strategy)
	}
}

func TestSelectReadyPriorityOrder(t *testing.T) {
	tasks := []*task{
		pendingTask("low", 0, 1),
		pendingTask("high", 1, 5),
		pendingTask("mid-late", 3, 3),
		pendingTask("mid-early", 2, 3),
	}

	ready := selectReady(StrategyPriority, 0, tasks)
	assert.Equal(t, []string{"high", "mid-early", "mid-late", "low"}, idsOf(ready))
}

func TestSelectReadyBatchCeiling(t *testing.T) {
	tasks := []*task{
		pendingTask("a", 0, 0),
		pendingTask("b", 1, 0),
		pendingTask("c", 2, 0),
	}

	ready := selectReady(StrategyBatched, 2, tasks)
	assert.Equal(t, []string{"a", "b"}, idsOf(ready))

	ready = selectReady(StrategyBatched, 5, tasks)
	assert.Len(t, ready, 3)
}
