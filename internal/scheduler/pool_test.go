package scheduler

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCapacity(t *testing.T) {
	p := newPool(ExecutorThread, 2, 3)
	assert.Equal(t, 6, p.capacity)
	assert.Equal(t, 6, p.free())
}

func TestPoolRunsWorkAndReportsCompletion(t *testing.T) {
	p := newPool(ExecutorThread, 1, 1)
	p.start()
	defer p.stop()

	p.dispatch(dispatched{
		ctx: context.Background(),
		id:  "t1",
		work: WorkFunc(func(ctx context.Context) (any, error) {
			return 42, nil
		}),
	})

	c := <-p.results
	assert.Equal(t, "t1", c.id)
	assert.Equal(t, 42, c.value)
	assert.NoError(t, c.err)
	assert.Equal(t, 1, p.free())
}

func TestPoolContainsPanics(t *testing.T) {
	p := newPool(ExecutorThread, 1, 1)
	p.start()
	defer p.stop()

	p.dispatch(dispatched{
		ctx: context.Background(),
		id:  "boom",
		work: WorkFunc(func(ctx context.Context) (any, error) {
			panic("kaboom")
		}),
	})

	c := <-p.results
	require.Error(t, c.err)
	assert.Contains(t, c.err.Error(), "panicked")
	assert.Contains(t, c.err.Error(), "kaboom")
}

func TestProcessPoolRunsCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}

	p := newPool(ExecutorProcess, 1, 1)
	p.start()
	defer p.stop()

	p.dispatch(dispatched{
		ctx:  context.Background(),
		id:   "echo",
		work: CommandWork{Command: []string{"sh", "-c", "echo hello"}},
	})

	c := <-p.results
	require.NoError(t, c.err)
	assert.Equal(t, "hello\n", c.value)
}

func TestProcessPoolRejectsNonSerializableWork(t *testing.T) {
	p := newPool(ExecutorProcess, 1, 1)
	p.start()
	defer p.stop()

	p.dispatch(dispatched{
		ctx: context.Background(),
		id:  "closure",
		work: WorkFunc(func(ctx context.Context) (any, error) {
			return nil, nil
		}),
	})

	c := <-p.results
	require.Error(t, c.err)
	assert.Contains(t, c.err.Error(), "not serializable")
}

func TestPoolStopIsIdempotent(t *testing.T) {
	p := newPool(ExecutorThread, 2, 1)
	p.start()
	p.stop()
	assert.NotPanics(t, func() { p.stop() })
}
