package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runApp(t *testing.T, planPath, strategy string) (string, error) {
	t.Helper()
	cfg, err := NewConfig(Config{
		PlanPath:     planPath,
		Strategy:     strategy,
		ExecutorKind: "thread",
		NumWorkers:   2,
		LogFormat:    "text",
		LogLevel:     "error",
	})
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	a := NewApp(&out, &errOut, cfg)
	runErr := a.Run(context.Background())
	return out.String(), runErr
}

func TestRunExecutesPlan(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}

	path := writePlan(t, `
task "collect" "home" {
  command = ["sh", "-c", "echo collected"]
}

task "analyze" "home" {
  command    = ["sh", "-c", "echo analyzed"]
  depends_on = ["collect.home"]
}

task "report" "site" {
  command    = ["sh", "-c", "echo reported"]
  depends_on = ["analyze.home"]
}
`)

	out, err := runApp(t, path, "dependency_graph")
	require.NoError(t, err)
	assert.Contains(t, out, "OK   collect.home")
	assert.Contains(t, out, "OK   analyze.home")
	assert.Contains(t, out, "OK   report.site")
}

func TestRunReportsFailures(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}

	path := writePlan(t, `
task "collect" "home" {
  command = ["sh", "-c", "exit 3"]
}

task "analyze" "home" {
  command    = ["sh", "-c", "echo analyzed"]
  depends_on = ["collect.home"]
}
`)

	out, err := runApp(t, path, "dependency_graph")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 task(s) failed")
	assert.Contains(t, out, "FAIL collect.home")
	assert.Contains(t, out, "FAIL analyze.home")
}

func TestRunRejectsBrokenPlan(t *testing.T) {
	path := writePlan(t, `task "collect" "home" {}`)
	_, err := runApp(t, path, "parallel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load plan")
}
