package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/fugi/antrun/internal/ctxlog"
)

// Local launches subprocesses on the controller's own machine.
type Local struct{}

// NewLocal creates a local launcher.
func NewLocal() *Local {
	return &Local{}
}

// Launch echoes the masked command line to the sink, then runs the
// process with stdout and stderr piped into it. The call blocks until the
// process exits; cancelling ctx kills the process. Output is fully
// drained before Launch returns.
func (l *Local) Launch(ctx context.Context, spec Spec) (int, error) {
	logger := ctxlog.FromContext(ctx)

	if len(spec.Args) == 0 {
		return -1, errors.New("launch: empty argument list")
	}

	if spec.Stdout != nil {
		fmt.Fprintf(spec.Stdout, "$ %s\n", spec.CommandLine())
	}
	logger.Debug("Launching subprocess.", "cmd", spec.CommandLine(), "dir", spec.Dir)

	cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stdout

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			// Killed by cancellation, not a real tool exit.
			return -1, fmt.Errorf("subprocess terminated: %w", ctx.Err())
		}
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("starting %s: %w", spec.Args[0], err)
}
