// Package invoker orchestrates one Ant build-step execution: it resolves
// the configured installation, locates the build script, assembles the
// command line and environment, launches the subprocess through the
// host-provided launcher, and maps the exit code to pass/fail.
package invoker

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fugi/antrun/internal/annotate"
	"github.com/fugi/antrun/internal/argbuilder"
	"github.com/fugi/antrun/internal/buildfile"
	"github.com/fugi/antrun/internal/ctxlog"
	"github.com/fugi/antrun/internal/envvars"
	"github.com/fugi/antrun/internal/execnode"
	"github.com/fugi/antrun/internal/install"
	"github.com/fugi/antrun/internal/launch"
)

// Step is the user-configured build step: what to run and with which
// installation.
type Step struct {
	// Targets holds targets, properties and other Ant options, separated
	// by whitespace or newlines.
	Targets string
	// AntName selects a registered installation; empty means the bare
	// "ant" command on the node's PATH.
	AntName string
	// AntOpts is exported as ANT_OPTS when set.
	AntOpts string
	// BuildFile is the optional build script path relative to the
	// workspace, used for Ant's -file option.
	BuildFile string
	// Properties is optional properties-file style text passed to Ant as
	// -D definitions.
	Properties string
}

// BuildContext carries everything the host provides for one execution.
type BuildContext struct {
	Node     execnode.Node
	Launcher launch.Launcher
	// Workspace is the checkout root on the node.
	Workspace string
	// ModuleRoot is the host's module root, which can diverge from the
	// workspace depending on the SCM in use. Empty means the workspace.
	ModuleRoot string
	// Env is the host-provided base environment.
	Env envvars.Vars
	// BuildVars are build-scoped variables layered over Env and passed to
	// Ant as -D definitions.
	BuildVars map[string]string
	// SensitiveVars names the BuildVars keys that must be masked wherever
	// the command line is logged.
	SensitiveVars map[string]struct{}
	// Console receives the annotated subprocess output.
	Console io.Writer
}

// AbortError is the non-retried error class: misconfiguration or launch
// failure that terminates the step immediately. The message is meant for
// the build log.
type AbortError struct {
	Message string
	Err     error
}

func (e *AbortError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AbortError) Unwrap() error { return e.Err }

func abortf(format string, args ...any) *AbortError {
	return &AbortError{Message: fmt.Sprintf(format, args...)}
}

// Invoker executes Ant build steps against a shared installation
// registry. The registry is passed in by reference; the invoker never
// owns or mutates it.
type Invoker struct {
	registry *install.Registry
	// shellPrefixLen is the Windows wrapper token count used by the
	// re-escaping transform.
	shellPrefixLen int
}

// New creates an Invoker backed by the given registry.
func New(registry *install.Registry) *Invoker {
	return &Invoker{
		registry:       registry,
		shellPrefixLen: argbuilder.DefaultShellPrefixLen,
	}
}

// lineBreaks collapses the newline-separated targets field into the
// single-line form Ant expects.
var lineBreaks = regexp.MustCompile(`[\t\r\n]+`)

// Perform runs the step and reports whether the tool exited zero. A
// returned *AbortError means the step never produced a meaningful tool
// result: the node was offline, the executable or build script was
// missing, or the subprocess could not be spawned. A non-zero exit is not
// an error, just a false result.
func (iv *Invoker) Perform(ctx context.Context, step Step, build BuildContext) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("node", build.Node.Name())

	args := argbuilder.New()

	env := build.Env.Clone()
	env.OverrideAll(build.BuildVars)

	selected, found := iv.registry.Lookup(step.AntName)
	if found {
		if !build.Node.Online() {
			return false, abortf("cannot run %q: node %s is offline", step.AntName, build.Node.Name())
		}
		selected = selected.ForNode(build.Node)
		selected = selected.ForEnvironment(env)
		exe, ok := selected.Executable(build.Node)
		if !ok {
			return false, abortf("cannot find executable for Ant installation %q at %s", selected.Name, exe)
		}
		args.Add(exe)
	} else {
		if build.Node.Unix() {
			args.Add("ant")
		} else {
			args.Add("ant.bat")
		}
	}

	explicit := env.Expand(step.BuildFile)
	targets := env.Expand(step.Targets)

	if build.Workspace == "" {
		return false, abortf("workspace is not available; the node may be disconnected")
	}
	moduleRoot := build.ModuleRoot
	if moduleRoot == "" {
		moduleRoot = build.Workspace
	}

	scriptPath := buildfile.Choose(build.Node, moduleRoot, build.Workspace, explicit, targets)
	if !build.Node.FileExists(scriptPath) {
		return false, abortf("unable to find build script at %s", scriptPath)
	}
	logger.Debug("Build script resolved.", "path", scriptPath)

	if explicit != "" {
		args.Add("-file", filepath.Base(scriptPath))
	}

	args.AddKeyValuePairs("-D", build.BuildVars, build.SensitiveVars)

	if _, err := args.AddKeyValuePairsFromPropertyString("-D", step.Properties, env.Resolver(), build.SensitiveVars); err != nil {
		return false, &AbortError{Message: "invalid step properties", Err: err}
	}

	if _, err := args.AddTokenized(lineBreaks.ReplaceAllString(targets, " ")); err != nil {
		return false, &AbortError{Message: "invalid targets", Err: err}
	}

	if found {
		selected.BuildEnvVars(env)
	}
	if step.AntOpts != "" {
		env.Override("ANT_OPTS", env.Expand(step.AntOpts))
	}

	if !build.Node.Unix() {
		args = argbuilder.ToWindowsCommand(args.WrapWindows(), iv.shellPrefixLen)
	}

	annotator := annotate.New(build.Console)
	started := time.Now()

	code, launchErr := build.Launcher.Launch(ctx, launch.Spec{
		Args:   args.ToList(),
		Masks:  args.MaskArray(),
		Env:    env.Environ(),
		Dir:    filepath.Dir(scriptPath),
		Stdout: annotator,
	})
	if flushErr := annotator.ForceEOL(); flushErr != nil {
		logger.Warn("Failed to flush console output.", "error", flushErr)
	}

	if launchErr != nil {
		msg := "command execution failed"
		if !found && time.Since(started) < time.Second {
			msg += iv.diagnoseQuickFailure()
		}
		return false, &AbortError{Message: msg, Err: launchErr}
	}

	logger.Debug("Subprocess finished.", "exitCode", code, "duration", time.Since(started))
	return code == 0, nil
}

// diagnoseQuickFailure guesses the most likely misconfiguration when the
// bare tool command dies within a second of starting. A heuristic hint,
// nothing more.
func (iv *Invoker) diagnoseQuickFailure() string {
	if iv.registry.Len() == 0 {
		return "; no Ant installations are configured"
	}
	return "; Ant installations exist but this step does not select one"
}
