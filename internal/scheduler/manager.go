package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazlamahedich/summit-seo-sub001/internal/ctxlog"
)

// State is the manager's lifecycle state.
type State int

const (
	// StateCreated means the manager exists but its pool has not started.
	StateCreated State = iota
	// StateRunning means the pool is up and rounds can be dispatched.
	StateRunning
	// StateShuttingDown means new submissions are refused and in-flight
	// work is draining.
	StateShuttingDown
	// StateClosed means the pool is torn down. The manager is inert.
	StateClosed
)

// String returns the human-readable form of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds everything needed to construct a Manager.
type Config struct {
	// Strategy is the ordering discipline for dispatch rounds.
	Strategy Strategy
	// NumWorkers is the number of worker slots. Required, >= 1.
	NumWorkers int
	// ExecutorKind selects thread- or process-backed execution.
	ExecutorKind ExecutorKind
	// MaxTasksPerWorker caps concurrent tasks per worker slot. Total
	// in-flight capacity is NumWorkers * MaxTasksPerWorker. Defaults to 1.
	MaxTasksPerWorker int
	// BatchSize is the per-round ceiling for StrategyBatched. Required and
	// >= 1 for that strategy, ignored otherwise.
	BatchSize int
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.NumWorkers < 1 {
		return nil, fmt.Errorf("NumWorkers must be at least 1, got %d", cfg.NumWorkers)
	}
	if cfg.MaxTasksPerWorker == 0 {
		cfg.MaxTasksPerWorker = 1
	}
	if cfg.MaxTasksPerWorker < 1 {
		return nil, fmt.Errorf("MaxTasksPerWorker must be at least 1, got %d", cfg.MaxTasksPerWorker)
	}
	switch cfg.Strategy {
	case StrategyParallel, StrategyPriority, StrategyDependencyGraph:
	case StrategyBatched:
		if cfg.BatchSize < 1 {
			return nil, fmt.Errorf("BatchSize must be at least 1 for the batched strategy, got %d", cfg.BatchSize)
		}
	default:
		return nil, fmt.Errorf("unknown strategy %v", cfg.Strategy)
	}
	switch cfg.ExecutorKind {
	case ExecutorThread, ExecutorProcess:
	default:
		return nil, fmt.Errorf("unknown executor kind %v", cfg.ExecutorKind)
	}
	return &cfg, nil
}

// Manager is the scheduling façade. It owns the task table, the dependency
// bookkeeping and the worker pool. All task-table mutation happens under one
// mutex so task state transitions are linearizable; only work execution is
// parallel. The owner drives progress by calling ProcessTasks repeatedly.
type Manager struct {
	cfg Config

	mu    sync.Mutex
	state State
	tasks map[string]*task
	// order holds task ids in submission order; selection iterates it so
	// submission-order strategies stay deterministic.
	order []string
	seq   uint64

	submitted int
	completed int
	failed    int

	startedAt time.Time
	stoppedAt time.Time

	pool *pool

	// roundMu serializes dispatch rounds so completions are always consumed
	// by the round that issued them.
	roundMu sync.Mutex
}

// New constructs a Manager in StateCreated. The worker pool starts on the
// first call to Start or ProcessTasks.
func New(cfg Config) (*Manager, error) {
	validated, err := NewConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{
		cfg:   *validated,
		tasks: make(map[string]*task),
		pool:  newPool(validated.ExecutorKind, validated.NumWorkers, validated.MaxTasksPerWorker),
	}, nil
}

// With runs fn against a freshly constructed manager and guarantees
// shutdown on every exit path, including a panic inside fn.
func With(cfg Config, fn func(*Manager) error) (err error) {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	if err := m.Start(); err != nil {
		return err
	}
	defer func() {
		if serr := m.Shutdown(); serr != nil && err == nil {
			err = serr
		}
	}()
	return fn(m)
}

// State returns the manager's lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start brings the manager to StateRunning and launches the worker pool.
// Starting an already-running manager is a no-op; starting after shutdown
// returns ErrManagerClosed.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked()
}

func (m *Manager) startLocked() error {
	switch m.state {
	case StateRunning:
		return nil
	case StateShuttingDown, StateClosed:
		return ErrManagerClosed
	}
	m.pool.start()
	m.state = StateRunning
	m.startedAt = time.Now()
	return nil
}

// TaskOption configures a submission.
type TaskOption func(*taskOptions)

type taskOptions struct {
	name       string
	priority   int
	maxRetries int
	deps       []string
}

// WithName sets the task's diagnostic label.
func WithName(name string) TaskOption {
	return func(o *taskOptions) { o.name = name }
}

// WithPriority sets the task's priority. Higher values are more urgent;
// only StrategyPriority consults it.
func WithPriority(priority int) TaskOption {
	return func(o *taskOptions) { o.priority = priority }
}

// WithMaxRetries sets how many times a failed attempt may be retried.
func WithMaxRetries(n int) TaskOption {
	return func(o *taskOptions) { o.maxRetries = n }
}

// DependsOn declares dependencies on previously submitted tasks by id. The
// task will not dispatch until every dependency completes.
func DependsOn(ids ...string) TaskOption {
	return func(o *taskOptions) { o.deps = append(o.deps, ids...) }
}

// Submit registers one unit of work and returns its handle. It is a pure
// metadata operation and never blocks on execution; it may be called from
// inside running work. Submissions after shutdown fail with
// ErrManagerClosed; a dependency cycle fails with *CycleError and creates
// no task.
func (m *Manager) Submit(work Work, opts ...TaskOption) (*Handle, error) {
	if work == nil {
		return nil, fmt.Errorf("scheduler: work must not be nil")
	}
	var o taskOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxRetries < 0 {
		return nil, fmt.Errorf("scheduler: max retries must not be negative, got %d", o.maxRetries)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateShuttingDown || m.state == StateClosed {
		return nil, ErrManagerClosed
	}

	id := uuid.NewString()
	deps := make(map[string]struct{}, len(o.deps))
	for _, depID := range o.deps {
		if depID == id {
			return nil, &CycleError{TaskID: id}
		}
		if _, ok := m.tasks[depID]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDependency, depID)
		}
		deps[depID] = struct{}{}
	}
	if wouldCycle(m.tasks, id, deps) {
		return nil, &CycleError{TaskID: id}
	}

	t := &task{
		id:          id,
		name:        o.name,
		work:        work,
		priority:    o.priority,
		maxRetries:  o.maxRetries,
		deps:        deps,
		dependents:  make(map[string]struct{}),
		status:      StatusPending,
		seq:         m.seq,
		submittedAt: time.Now(),
	}
	if t.name == "" {
		t.name = fmt.Sprintf("task-%d", m.seq)
	}
	m.seq++

	m.tasks[id] = t
	m.order = append(m.order, id)
	link(m.tasks, t)
	m.submitted++

	// A dependency that already failed terminally propagates at submit
	// time; the new task is dead on arrival and reports so when polled.
	for depID := range deps {
		if dep := m.tasks[depID]; dep.status == StatusFailed {
			t.status = StatusFailed
			t.finishedAt = time.Now()
			t.result = &Result{Err: &PropagatedError{TaskID: t.id, AncestorID: dep.id}}
			m.failed++
			break
		}
	}

	return &Handle{m: m, id: id}, nil
}

// ProcessTasks performs exactly one dispatch round: it asks the ordering
// policy for the eligible set, dispatches up to the pool's free capacity,
// waits for those tasks (and only those) to finish, applies retry policy to
// failures, and returns the tasks that became terminal during the round.
// It returns an empty slice when nothing was eligible.
//
// ProcessTasks must not be called from inside dispatched work.
func (m *Manager) ProcessTasks(ctx context.Context) ([]TaskView, error) {
	m.roundMu.Lock()
	defer m.roundMu.Unlock()

	logger := ctxlog.FromContext(ctx)

	m.mu.Lock()
	switch m.state {
	case StateShuttingDown, StateClosed:
		m.mu.Unlock()
		return nil, ErrManagerClosed
	case StateCreated:
		if err := m.startLocked(); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}

	all := make([]*task, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.tasks[id])
	}
	ready := selectReady(m.cfg.Strategy, m.cfg.BatchSize, all)
	if free := m.pool.free(); len(ready) > free {
		ready = ready[:free]
	}
	now := time.Now()
	for _, t := range ready {
		t.status = StatusRunning
		t.startedAt = now
		t.attempt++
	}
	m.mu.Unlock()

	if len(ready) == 0 {
		return []TaskView{}, nil
	}

	logger.Debug("Dispatching round.", "count", len(ready), "strategy", m.cfg.Strategy.String())
	for _, t := range ready {
		m.pool.dispatch(dispatched{ctx: ctx, id: t.id, work: t.work})
	}

	views := make([]TaskView, 0, len(ready))
	for i := 0; i < len(ready); i++ {
		c := <-m.pool.results

		m.mu.Lock()
		t := m.tasks[c.id]
		if c.err != nil {
			if t.attempt <= t.maxRetries {
				logger.Debug("Task attempt failed, retrying.", "taskID", t.id, "attempt", t.attempt)
				t.status = StatusPending
			} else {
				t.status = StatusFailed
				t.finishedAt = time.Now()
				t.result = &Result{
					Err:      &ExecError{TaskID: t.id, Attempts: t.attempt, Err: c.err},
					Attempts: t.attempt,
				}
				m.failed++
				views = append(views, viewOf(t))
				for _, p := range failDependents(m.tasks, t) {
					m.failed++
					views = append(views, viewOf(p))
				}
			}
		} else {
			t.status = StatusCompleted
			t.finishedAt = time.Now()
			t.result = &Result{Value: c.value, Attempts: t.attempt}
			m.completed++
			promoteDependents(m.tasks, t)
			views = append(views, viewOf(t))
		}
		m.mu.Unlock()
	}

	return views, nil
}

// Remaining returns the number of tasks that have not reached a terminal
// state.
func (m *Manager) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := 0
	for _, t := range m.tasks {
		if !t.status.Terminal() {
			remaining++
		}
	}
	return remaining
}

// ClearTerminal drops terminal tasks from the table, releasing them for
// garbage collection. Handles for cleared tasks report nothing afterwards,
// so callers should observe results first.
func (m *Manager) ClearTerminal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cleared := 0
	kept := m.order[:0]
	for _, id := range m.order {
		t := m.tasks[id]
		if t.status.Terminal() {
			for depID := range t.dependents {
				if dep, ok := m.tasks[depID]; ok {
					delete(dep.deps, id)
				}
			}
			delete(m.tasks, id)
			cleared++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return cleared
}

// Shutdown stops accepting submissions, waits for in-flight work to finish,
// and tears the pool down. It is idempotent: repeated calls, or a scope
// exiting twice, perform teardown exactly once.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	switch m.state {
	case StateClosed, StateShuttingDown:
		m.mu.Unlock()
		return nil
	case StateCreated:
		m.state = StateClosed
		m.mu.Unlock()
		return nil
	}
	m.state = StateShuttingDown
	m.mu.Unlock()

	// Let a round in progress finish consuming its completions before the
	// pool goes away.
	m.roundMu.Lock()
	m.pool.stop()
	m.roundMu.Unlock()

	m.mu.Lock()
	m.state = StateClosed
	m.stoppedAt = time.Now()
	m.mu.Unlock()
	return nil
}

// Stats is a point-in-time snapshot of the manager's counters. It is
// recomputed on every call, never cached.
type Stats struct {
	Submitted int
	Completed int
	Failed    int
	Uptime    time.Duration
	// Throughput is completed tasks per second of uptime.
	Throughput float64
}

// Stats returns the current snapshot. Uptime runs from the transition to
// StateRunning and freezes at shutdown.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Submitted: m.submitted,
		Completed: m.completed,
		Failed:    m.failed,
	}
	if !m.startedAt.IsZero() {
		end := time.Now()
		if !m.stoppedAt.IsZero() {
			end = m.stoppedAt
		}
		s.Uptime = end.Sub(m.startedAt)
	}
	if secs := s.Uptime.Seconds(); secs > 0 {
		s.Throughput = float64(s.Completed) / secs
	}
	return s
}

func viewOf(t *task) TaskView {
	return TaskView{
		ID:       t.id,
		Name:     t.name,
		Status:   t.status,
		Result:   *t.result,
		Attempts: t.attempt,
	}
}
