package invoker

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fugi/antrun/internal/envvars"
	"github.com/fugi/antrun/internal/install"
	"github.com/fugi/antrun/internal/launch"
	"github.com/fugi/antrun/internal/testutil"
)

func unixContext(launcher *testutil.FakeLauncher, files ...string) BuildContext {
	return BuildContext{
		Node:      testutil.NewUnixNode(files...),
		Launcher:  launcher,
		Workspace: "/ws",
		Env:       envvars.Vars{},
		Console:   &bytes.Buffer{},
	}
}

func envMap(t *testing.T, spec launch.Spec) map[string]string {
	t.Helper()
	out := make(map[string]string, len(spec.Env))
	for _, kv := range spec.Env {
		k, v, ok := strings.Cut(kv, "=")
		require.True(t, ok, "malformed env entry %q", kv)
		out[k] = v
	}
	return out
}

func TestPerformUnresolvedInstallationUsesBareCommand(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher, filepath.Join("/ws", "build.xml"))

	ok, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Equal(t, 1, launcher.Launched)
	assert.Equal(t, []string{"ant", "compile"}, launcher.Last.Args)
	_, hasAntHome := envMap(t, launcher.Last)["ANT_HOME"]
	assert.False(t, hasAntHome, "ANT_HOME must not be set without an installation")
}

func TestPerformResolvedInstallation(t *testing.T) {
	exe := "/opt/ant/bin/ant"
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher, exe, filepath.Join("/ws", "build.xml"))

	// Trailing slash in the configured home is laundered away.
	reg := install.NewRegistry(install.New("ant-1.10", "/opt/ant/"))

	ok, err := New(reg).Perform(context.Background(), Step{Targets: "compile", AntName: "ant-1.10"}, build)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, exe, launcher.Last.Args[0])
	assert.Equal(t, "/opt/ant", envMap(t, launcher.Last)["ANT_HOME"])
}

func TestPerformExecutableMissingAborts(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher, filepath.Join("/ws", "build.xml"))
	reg := install.NewRegistry(install.New("ant-1.10", "/opt/ant"))

	_, err := New(reg).Perform(context.Background(), Step{AntName: "ant-1.10"}, build)

	var abort *AbortError
	require.ErrorAs(t, err, &abort)
	assert.Contains(t, abort.Message, "cannot find executable")
	assert.Zero(t, launcher.Launched)
}

func TestPerformOfflineNodeAborts(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher)
	build.Node = &testutil.FakeNode{NodeName: "gone", IsUnix: true, Offline: true}
	reg := install.NewRegistry(install.New("ant-1.10", "/opt/ant"))

	_, err := New(reg).Perform(context.Background(), Step{AntName: "ant-1.10"}, build)

	var abort *AbortError
	require.ErrorAs(t, err, &abort)
	assert.Contains(t, abort.Message, "offline")
	assert.Zero(t, launcher.Launched)
}

func TestPerformMissingBuildFileAbortsBeforeLaunch(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher) // no files exist anywhere

	_, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)

	var abort *AbortError
	require.ErrorAs(t, err, &abort)
	assert.Contains(t, abort.Message, "unable to find build script")
	assert.Zero(t, launcher.Launched, "launcher must never be invoked when the script is missing")
}

func TestPerformMissingWorkspaceAborts(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher)
	build.Workspace = ""

	_, err := New(install.NewRegistry()).Perform(context.Background(), Step{}, build)

	var abort *AbortError
	require.ErrorAs(t, err, &abort)
	assert.Contains(t, abort.Message, "workspace")
	assert.Zero(t, launcher.Launched)
}

func TestPerformExitCodeMapping(t *testing.T) {
	for code, want := range map[int]bool{0: true, 1: false, 2: false} {
		launcher := &testutil.FakeLauncher{ExitCode: code}
		build := unixContext(launcher, filepath.Join("/ws", "build.xml"))

		ok, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "exit code %d", code)
	}
}

func TestPerformFileOptionOnlyWithExplicitBuildFile(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher,
		filepath.Join("/ws", "build.xml"),
		filepath.Join("/ws", "scripts", "ci.xml"),
	)

	_, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)
	require.NoError(t, err)
	assert.NotContains(t, launcher.Last.Args, "-file")

	_, err = New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile", BuildFile: "scripts/ci.xml"}, build)
	require.NoError(t, err)
	assert.Equal(t, []string{"ant", "-file", "ci.xml", "compile"}, launcher.Last.Args)
	assert.Equal(t, filepath.Join("/ws", "scripts"), launcher.Last.Dir)
}

func TestPerformWorkingDirectoryIsScriptParent(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher, filepath.Join("/ws", "build.xml"))

	_, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)
	require.NoError(t, err)
	assert.Equal(t, "/ws", launcher.Last.Dir)
}

func TestPerformSensitiveBuildVarsAreMasked(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher, filepath.Join("/ws", "build.xml"))
	build.BuildVars = map[string]string{"DEPLOY_KEY": "s3cret", "RELEASE": "1.2"}
	build.SensitiveVars = map[string]struct{}{"DEPLOY_KEY": {}}

	_, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)
	require.NoError(t, err)

	spec := launcher.Last
	assert.Equal(t, []string{"ant", "-DDEPLOY_KEY=s3cret", "-DRELEASE=1.2", "compile"}, spec.Args)
	assert.Equal(t, []bool{false, true, false, false}, spec.Masks)
	assert.NotContains(t, spec.CommandLine(), "s3cret")
}

func TestPerformPropertiesTextAndTargets(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher, filepath.Join("/ws", "build.xml"))
	build.Env = envvars.Vars{"VERSION": "1.2.3"}

	step := Step{
		Targets:    "clean\ndist",
		Properties: "release=${VERSION}",
	}
	_, err := New(install.NewRegistry()).Perform(context.Background(), step, build)
	require.NoError(t, err)
	assert.Equal(t, []string{"ant", "-Drelease=1.2.3", "clean", "dist"}, launcher.Last.Args)
}

func TestPerformAntOptsExported(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := unixContext(launcher, filepath.Join("/ws", "build.xml"))

	step := Step{Targets: "compile", AntOpts: "-Xmx512m"}
	_, err := New(install.NewRegistry()).Perform(context.Background(), step, build)
	require.NoError(t, err)
	assert.Equal(t, "-Xmx512m", envMap(t, launcher.Last)["ANT_OPTS"])
}

func TestPerformWindowsNodeWrapsAndReescapes(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	build := BuildContext{
		Node:      testutil.NewWindowsNode(filepath.Join("/ws", "build.xml")),
		Launcher:  launcher,
		Workspace: "/ws",
		Env:       envvars.Vars{},
		Console:   &bytes.Buffer{},
	}
	build.BuildVars = map[string]string{"EMPTY": ""}

	_, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)
	require.NoError(t, err)

	assert.Equal(t, []string{"cmd.exe", "/C", "ant.bat", `-DEMPTY=""`, "compile"}, launcher.Last.Args)
}

func TestPerformQuickLaunchFailureDiagnostics(t *testing.T) {
	t.Run("no installations configured", func(t *testing.T) {
		launcher := &testutil.FakeLauncher{Err: errors.New("spawn failed")}
		build := unixContext(launcher, filepath.Join("/ws", "build.xml"))

		_, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)

		var abort *AbortError
		require.ErrorAs(t, err, &abort)
		assert.Contains(t, abort.Message, "no Ant installations are configured")
	})

	t.Run("installations exist but none selected", func(t *testing.T) {
		launcher := &testutil.FakeLauncher{Err: errors.New("spawn failed")}
		build := unixContext(launcher, filepath.Join("/ws", "build.xml"))
		reg := install.NewRegistry(install.New("ant-1.10", "/opt/ant"))

		_, err := New(reg).Perform(context.Background(), Step{Targets: "compile"}, build)

		var abort *AbortError
		require.ErrorAs(t, err, &abort)
		assert.Contains(t, abort.Message, "does not select one")
	})
}

func TestPerformConsoleReceivesAnnotatedOutput(t *testing.T) {
	launcher := &testutil.FakeLauncher{}
	console := &bytes.Buffer{}
	build := unixContext(launcher, filepath.Join("/ws", "build.xml"))
	build.Console = console

	_, err := New(install.NewRegistry()).Perform(context.Background(), Step{Targets: "compile"}, build)
	require.NoError(t, err)
	assert.Same(t, console, build.Console)
	assert.NotNil(t, launcher.Last.Stdout, "subprocess output must be wired to the annotator")
}
