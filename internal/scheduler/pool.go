package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hazlamahedich/summit-seo-sub001/internal/ctxlog"
)

// ExecutorKind selects how the worker pool executes dispatched work.
type ExecutorKind int

const (
	// ExecutorThread runs work on pool goroutines inside the current process.
	ExecutorThread ExecutorKind = iota
	// ExecutorProcess runs work in a child OS process. Dispatched work must
	// implement ProcessWork; this is a configuration-time contract the pool
	// only verifies at execution time, surfacing violations as task failures.
	ExecutorProcess
)

// String returns the canonical name of the executor kind.
func (k ExecutorKind) String() string {
	switch k {
	case ExecutorThread:
		return "thread"
	case ExecutorProcess:
		return "process"
	default:
		return fmt.Sprintf("executor(%d)", int(k))
	}
}

// ParseExecutorKind converts a configuration string into an ExecutorKind.
func ParseExecutorKind(s string) (ExecutorKind, error) {
	switch s {
	case "thread", "":
		return ExecutorThread, nil
	case "process":
		return ExecutorProcess, nil
	default:
		return 0, fmt.Errorf("unknown executor kind %q: must be 'thread' or 'process'", s)
	}
}

// dispatched pairs a task id with its work and the context of the round
// that issued it.
type dispatched struct {
	ctx  context.Context
	id   string
	work Work
}

// completion is the outcome a worker reports back to the coordinator.
// Workers own no shared manager state; this channel message is their only
// way to communicate.
type completion struct {
	id    string
	value any
	err   error
}

// pool is a bounded set of execution slots. Capacity is
// numWorkers * maxTasksPerWorker; the manager never dispatches beyond the
// free slot count, so sends on the work channel do not block.
type pool struct {
	kind     ExecutorKind
	capacity int

	work     chan dispatched
	results  chan completion
	inFlight atomic.Int64

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newPool(kind ExecutorKind, numWorkers, maxTasksPerWorker int) *pool {
	capacity := numWorkers * maxTasksPerWorker
	return &pool{
		kind:     kind,
		capacity: capacity,
		work:     make(chan dispatched, capacity),
		results:  make(chan completion, capacity),
	}
}

// start launches the pool's worker goroutines.
func (p *pool) start() {
	p.wg.Add(p.capacity)
	for i := 0; i < p.capacity; i++ {
		go p.worker(i)
	}
}

// free returns the number of slots not currently holding a task.
func (p *pool) free() int {
	return p.capacity - int(p.inFlight.Load())
}

// dispatch hands one task to the pool. The caller must have checked free()
// first; dispatching beyond capacity would block the coordinator.
func (p *pool) dispatch(d dispatched) {
	p.inFlight.Add(1)
	p.work <- d
}

// worker is the processing loop for a single slot.
func (p *pool) worker(slot int) {
	defer p.wg.Done()
	for d := range p.work {
		logger := ctxlog.FromContext(d.ctx).With("slot", slot, "taskID", d.id)
		logger.Debug("Worker picked up task.")

		value, err := p.run(d.ctx, d.work)
		if err != nil {
			logger.Debug("Task attempt failed.", "error", err)
		} else {
			logger.Debug("Task attempt succeeded.")
		}

		p.inFlight.Add(-1)
		p.results <- completion{id: d.id, value: value, err: err}
	}
}

// run executes one unit of work according to the pool's executor kind.
// Panics inside the work are contained and surfaced as that task's error,
// never the coordinator's.
func (p *pool) run(ctx context.Context, w Work) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("scheduler: work panicked: %v", r)
		}
	}()

	switch p.kind {
	case ExecutorProcess:
		pw, ok := w.(ProcessWork)
		if !ok {
			return nil, fmt.Errorf("scheduler: work %T is not serializable for a process-backed pool", w)
		}
		return runArgv(ctx, pw.Argv())
	default:
		return w.Invoke(ctx)
	}
}

// stop closes the work channel and waits for the workers to drain. Safe to
// call more than once.
func (p *pool) stop() {
	p.stopOnce.Do(func() {
		close(p.work)
		p.wg.Wait()
	})
}
