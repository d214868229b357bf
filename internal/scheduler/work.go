package scheduler

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

var errEmptyArgv = errors.New("scheduler: empty command argv")

// Work is one unit of work as the manager sees it: a pre-bound callable
// invoked with no arguments beyond a context. The manager never introspects
// the value it returns.
type Work interface {
	Invoke(ctx context.Context) (any, error)
}

// WorkFunc adapts a plain function to the Work interface.
type WorkFunc func(ctx context.Context) (any, error)

// Invoke implements Work.
func (f WorkFunc) Invoke(ctx context.Context) (any, error) {
	return f(ctx)
}

// ProcessWork is work that can describe itself as a command line, which is
// the serializability contract required by process-backed pools. A pool
// configured with ExecutorProcess fails any dispatched work that does not
// implement this interface.
type ProcessWork interface {
	Work
	// Argv returns the command and its arguments. It must be non-empty.
	Argv() []string
}

// CommandWork runs an external command and satisfies both executor kinds:
// a thread-backed pool invokes it in-process via os/exec, a process-backed
// pool uses its Argv directly.
type CommandWork struct {
	Command []string
}

// Argv implements ProcessWork.
func (w CommandWork) Argv() []string { return w.Command }

// Invoke runs the command and returns its combined output as a string.
func (w CommandWork) Invoke(ctx context.Context) (any, error) {
	return runArgv(ctx, w.Command)
}

func runArgv(ctx context.Context, argv []string) (any, error) {
	if len(argv) == 0 {
		return nil, errEmptyArgv
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &commandError{argv: argv, output: string(out), err: err}
	}
	return string(out), nil
}

type commandError struct {
	argv   []string
	output string
	err    error
}

func (e *commandError) Error() string {
	msg := "scheduler: command " + strings.Join(e.argv, " ") + " failed: " + e.err.Error()
	if e.output != "" {
		msg += ": " + strings.TrimSpace(e.output)
	}
	return msg
}

func (e *commandError) Unwrap() error { return e.err }
