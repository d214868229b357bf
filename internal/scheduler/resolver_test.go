package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(tasks ...*task) map[string]*task {
	table := make(map[string]*task, len(tasks))
	for _, t := range tasks {
		table[t.id] = t
	}
	return table
}

func TestWouldCycle(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		assert.True(t, wouldCycle(tableOf(), "x", map[string]struct{}{"x": {}}))
	})

	t.Run("no cycle", func(t *testing.T) {
		a := pendingTask("a", 0, 0)
		b := pendingTask("b", 1, 0)
		b.deps = map[string]struct{}{"a": {}}
		assert.False(t, wouldCycle(tableOf(a, b), "c", map[string]struct{}{"b": {}}))
	})

	t.Run("transitive cycle", func(t *testing.T) {
		// a -> b -> c, then c declares a dependency back on... a task that
		// depends on it. Build the back-edge directly in the table.
		a := pendingTask("a", 0, 0)
		b := pendingTask("b", 1, 0)
		b.deps = map[string]struct{}{"a": {}}
		a.deps = map[string]struct{}{"c": {}}
		assert.True(t, wouldCycle(tableOf(a, b), "c", map[string]struct{}{"b": {}}))
	})
}

func TestLinkCountsUnmetDependencies(t *testing.T) {
	done := pendingTask("done", 0, 0)
	done.status = StatusCompleted
	open := pendingTask("open", 1, 0)

	c := pendingTask("c", 2, 0)
	c.deps = map[string]struct{}{"done": {}, "open": {}}

	table := tableOf(done, open, c)
	link(table, c)

	assert.Equal(t, 1, c.waiting)
	assert.Contains(t, open.dependents, "c")
	assert.Contains(t, done.dependents, "c")
}

func TestPromoteDependents(t *testing.T) {
	a := pendingTask("a", 0, 0)
	c := pendingTask("c", 1, 0)
	c.deps = map[string]struct{}{"a": {}}
	table := tableOf(a, c)
	link(table, c)
	require.Equal(t, 1, c.waiting)

	a.status = StatusCompleted
	promoteDependents(table, a)
	assert.Equal(t, 0, c.waiting)
}

func TestFailDependentsPropagatesTransitively(t *testing.T) {
	a := pendingTask("a", 0, 0)
	b := pendingTask("b", 1, 0)
	b.deps = map[string]struct{}{"a": {}}
	c := pendingTask("c", 2, 0)
	c.deps = map[string]struct{}{"b": {}}

	table := tableOf(a, b, c)
	link(table, b)
	link(table, c)

	a.status = StatusFailed
	propagated := failDependents(table, a)
	require.Len(t, propagated, 2)

	for _, dep := range []*task{b, c} {
		assert.Equal(t, StatusFailed, dep.status)
		require.NotNil(t, dep.result)
		var perr *PropagatedError
		require.ErrorAs(t, dep.result.Err, &perr)
		assert.Equal(t, "a", perr.AncestorID)
	}
}
