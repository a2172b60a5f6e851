package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnt creates a fake Ant installation whose launcher script prints a
// canned build log and exits with the given code.
func stubAnt(t *testing.T, exitCode int) string {
	t.Helper()
	home := t.TempDir()
	binDir := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))

	script := fmt.Sprintf("#!/bin/sh\necho 'compile:'\necho 'BUILD SUCCESSFUL'\nexit %d\n", exitCode)
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "ant"), []byte(script), 0o755))
	return home
}

func setupJob(t *testing.T, antHome string) *Config {
	t.Helper()
	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "build.xml"), []byte("<project/>"), 0o644))

	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.hcl")
	require.NoError(t, os.WriteFile(jobPath, []byte(`
step "ci" {
  targets = "compile"
  ant     = "stub-ant"
}
`), 0o644))

	installationsPath := filepath.Join(dir, "installations.hcl")
	require.NoError(t, os.WriteFile(installationsPath, []byte(fmt.Sprintf(
		"installation \"stub-ant\" {\n  home = %q\n}\n", antHome)), 0o644))

	cfg, err := NewConfig(Config{
		JobPath:           jobPath,
		InstallationsPath: installationsPath,
		Workspace:         workspace,
		LogLevel:          "error",
		LogFormat:         "text",
	})
	require.NoError(t, err)
	return cfg
}

func TestAppRunSucceedsEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh launcher scripts")
	}

	cfg := setupJob(t, stubAnt(t, 0))
	var out bytes.Buffer

	a := NewApp(&out, cfg)
	require.NoError(t, a.Run(context.Background(), cfg))

	// The console shows the echoed command and the annotated build log.
	assert.Contains(t, out.String(), "$ ")
	assert.Contains(t, out.String(), "BUILD SUCCESSFUL")
}

func TestAppRunReportsStepFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh launcher scripts")
	}

	cfg := setupJob(t, stubAnt(t, 3))
	var out bytes.Buffer

	a := NewApp(&out, cfg)
	err := a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step ci failed")
}

func TestNewAppPanicsOnBrokenJobFile(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.hcl")
	require.NoError(t, os.WriteFile(jobPath, []byte("step {{{{"), 0o644))

	cfg, err := NewConfig(Config{JobPath: jobPath, Workspace: dir})
	require.NoError(t, err)

	assert.Panics(t, func() { NewApp(&bytes.Buffer{}, cfg) })
}

func TestNewAppLoadsRegistry(t *testing.T) {
	cfg := setupJob(t, t.TempDir())
	a := NewApp(&bytes.Buffer{}, cfg)

	_, ok := a.Registry().Lookup("stub-ant")
	assert.True(t, ok)
}
