package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hazlamahedich/summit-seo-sub001/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("summit-seo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
summit-seo - A parallel SEO audit task runner.

Usage:
  summit-seo [options] [PLAN_PATH]

Arguments:
  PLAN_PATH
    Path to an .hcl plan file describing the audit tasks.

Options:
`)
		flagSet.PrintDefaults()
	}

	planFlag := flagSet.String("plan", "", "Path to the plan file.")
	pFlag := flagSet.String("p", "", "Path to the plan file (shorthand).")
	strategyFlag := flagSet.String("strategy", "parallel", "Scheduling strategy. Options: 'parallel', 'batched', 'priority' or 'dependency_graph'.")
	executorFlag := flagSet.String("executor", "thread", "Executor kind. Options: 'thread' or 'process'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent worker slots.")
	maxTasksFlag := flagSet.Int("max-tasks-per-worker", 1, "Concurrent tasks a single worker slot may hold.")
	batchSizeFlag := flagSet.Int("batch-size", 0, "Tasks per round for the batched strategy.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *planFlag != "" {
		path = *planFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Plan path determined.", "path", path)

	if path == "" {
		slog.Debug("No plan path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PlanPath:          path,
		Strategy:          strings.ToLower(*strategyFlag),
		ExecutorKind:      strings.ToLower(*executorFlag),
		NumWorkers:        *workersFlag,
		MaxTasksPerWorker: *maxTasksFlag,
		BatchSize:         *batchSizeFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
