package app

import (
	"errors"
	"fmt"

	"github.com/hazlamahedich/summit-seo-sub001/internal/scheduler"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPath string

	Strategy          string
	ExecutorKind      string
	NumWorkers        int
	MaxTasksPerWorker int
	BatchSize         int

	LogFormat string
	LogLevel  string
}

// NewConfig validates an App configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PlanPath == "" {
		return nil, errors.New("PlanPath is a required configuration field and cannot be empty")
	}
	if cfg.NumWorkers < 1 {
		return nil, fmt.Errorf("NumWorkers must be at least 1, got %d", cfg.NumWorkers)
	}
	if _, err := scheduler.ParseStrategy(cfg.Strategy); err != nil {
		return nil, err
	}
	if _, err := scheduler.ParseExecutorKind(cfg.ExecutorKind); err != nil {
		return nil, err
	}

	// The scheduler re-validates batch size against the strategy; checking
	// here keeps the failure synchronous with flag parsing.
	if _, err := cfg.SchedulerConfig(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SchedulerConfig translates the app configuration into the engine's.
func (c *Config) SchedulerConfig() (scheduler.Config, error) {
	strategy, err := scheduler.ParseStrategy(c.Strategy)
	if err != nil {
		return scheduler.Config{}, err
	}
	kind, err := scheduler.ParseExecutorKind(c.ExecutorKind)
	if err != nil {
		return scheduler.Config{}, err
	}
	cfg := scheduler.Config{
		Strategy:          strategy,
		NumWorkers:        c.NumWorkers,
		ExecutorKind:      kind,
		MaxTasksPerWorker: c.MaxTasksPerWorker,
		BatchSize:         c.BatchSize,
	}
	if _, err := scheduler.NewConfig(cfg); err != nil {
		return scheduler.Config{}, err
	}
	return cfg, nil
}
