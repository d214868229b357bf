package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazlamahedich/summit-seo-sub001/internal/scheduler"
)

func validConfig() Config {
	return Config{
		PlanPath:     "plan.hcl",
		Strategy:     "parallel",
		ExecutorKind: "thread",
		NumWorkers:   4,
		LogFormat:    "json",
		LogLevel:     "info",
	}
}

func TestNewConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg, err := NewConfig(validConfig())
		require.NoError(t, err)
		assert.Equal(t, "plan.hcl", cfg.PlanPath)
	})

	t.Run("plan path required", func(t *testing.T) {
		c := validConfig()
		c.PlanPath = ""
		_, err := NewConfig(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PlanPath")
	})

	t.Run("workers required", func(t *testing.T) {
		c := validConfig()
		c.NumWorkers = 0
		_, err := NewConfig(c)
		assert.Error(t, err)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		c := validConfig()
		c.Strategy = "lifo"
		_, err := NewConfig(c)
		assert.Error(t, err)
	})

	t.Run("unknown executor", func(t *testing.T) {
		c := validConfig()
		c.ExecutorKind = "fiber"
		_, err := NewConfig(c)
		assert.Error(t, err)
	})

	t.Run("batched needs batch size", func(t *testing.T) {
		c := validConfig()
		c.Strategy = "batched"
		_, err := NewConfig(c)
		require.Error(t, err)

		c.BatchSize = 3
		cfg, err := NewConfig(c)
		require.NoError(t, err)

		sc, err := cfg.SchedulerConfig()
		require.NoError(t, err)
		assert.Equal(t, scheduler.StrategyBatched, sc.Strategy)
		assert.Equal(t, 3, sc.BatchSize)
	})
}
