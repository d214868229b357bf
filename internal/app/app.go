package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazlamahedich/summit-seo-sub001/internal/ctxlog"
	"github.com/hazlamahedich/summit-seo-sub001/internal/fetch"
	"github.com/hazlamahedich/summit-seo-sub001/internal/plan"
	"github.com/hazlamahedich/summit-seo-sub001/internal/scheduler"
)

const fetchTimeout = 30 * time.Second

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW, errW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, errW)
	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		config: config,
	}
}

// Run loads the plan, submits every task to a scoped manager and drives
// dispatch rounds until all tasks are terminal. It returns an error if the
// plan is invalid or any task ends up failed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	p, err := plan.Load(ctx, a.config.PlanPath)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}
	ordered, err := p.Ordered()
	if err != nil {
		return fmt.Errorf("failed to order plan: %w", err)
	}
	if len(ordered) == 0 {
		a.logger.Warn("No tasks found in plan, execution not required.")
		return nil
	}

	schedCfg, err := a.config.SchedulerConfig()
	if err != nil {
		return err
	}

	client := fetch.NewClient(fetchTimeout)
	failed := 0

	a.logger.Info("🚀 Starting concurrent execution...",
		"tasks", len(ordered),
		"strategy", schedCfg.Strategy.String(),
		"workers", schedCfg.NumWorkers,
	)

	err = scheduler.With(schedCfg, func(m *scheduler.Manager) error {
		ids := make(map[string]string, len(ordered))
		for _, t := range ordered {
			opts := []scheduler.TaskOption{
				scheduler.WithName(t.ID()),
				scheduler.WithPriority(t.Priority),
				scheduler.WithMaxRetries(t.MaxRetries),
			}
			if len(t.DependsOn) > 0 {
				depIDs := make([]string, 0, len(t.DependsOn))
				for _, dep := range t.DependsOn {
					depIDs = append(depIDs, ids[dep])
				}
				opts = append(opts, scheduler.DependsOn(depIDs...))
			}

			h, err := m.Submit(a.workFor(t, client), opts...)
			if err != nil {
				return fmt.Errorf("failed to submit task %q: %w", t.ID(), err)
			}
			ids[t.ID()] = h.ID()
		}

		for m.Remaining() > 0 {
			views, err := m.ProcessTasks(ctx)
			if err != nil {
				return err
			}
			for _, v := range views {
				if v.Status == scheduler.StatusFailed {
					failed++
					fmt.Fprintf(a.outW, "FAIL %s: %v\n", v.Name, v.Result.Err)
				} else {
					fmt.Fprintf(a.outW, "OK   %s\n", v.Name)
				}
			}
		}

		stats := m.Stats()
		a.logger.Info("🏁 Execution finished.",
			"completed", stats.Completed,
			"failed", stats.Failed,
			"uptime", stats.Uptime.String(),
			"throughput", fmt.Sprintf("%.2f/s", stats.Throughput),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d task(s) failed", failed)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// workFor maps a plan task onto the work value its kind of step needs.
func (a *App) workFor(t *plan.Task, client *http.Client) scheduler.Work {
	if t.URL != "" {
		return fetch.PageWork{Client: client, URL: t.URL}
	}
	return scheduler.CommandWork{Command: t.Command}
}
