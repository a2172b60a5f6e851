// Package launch defines the process-launch primitive consumed by the
// invoker: argument list plus sensitivity mask, environment, working
// directory, and an output sink, mapped to an exit code.
package launch

import (
	"context"
	"io"
	"strings"
)

// Spec describes one subprocess launch.
type Spec struct {
	// Args is the full argument vector; Args[0] is the executable.
	Args []string
	// Masks is parallel to Args; masked tokens are blanked in the echoed
	// command line. A nil mask echoes everything.
	Masks []bool
	// Env is the complete environment in KEY=value form.
	Env []string
	// Dir is the working directory for the subprocess.
	Dir string
	// Stdout receives the subprocess's combined output.
	Stdout io.Writer
}

// CommandLine renders the spec's command with masked tokens blanked, the
// way it is echoed to the build console.
func (s Spec) CommandLine() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		if i < len(s.Masks) && s.Masks[i] {
			parts[i] = "********"
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}

// Launcher starts a subprocess and blocks until it exits or ctx is
// cancelled. Cancellation must terminate the subprocess. The returned int
// is the process exit code; a non-nil error means the process could not
// be launched or was killed before producing an exit status.
type Launcher interface {
	Launch(ctx context.Context, spec Spec) (int, error)
}
