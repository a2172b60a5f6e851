package execnode

import (
	"os"
	"runtime"
)

// Local is the in-process execution node: the subprocess runs on the same
// machine as the controller.
type Local struct {
	name string
}

// NewLocal creates a local node. An empty name falls back to the OS
// hostname, or "local" if that cannot be determined.
func NewLocal(name string) *Local {
	if name == "" {
		if hn, err := os.Hostname(); err == nil {
			name = hn
		} else {
			name = "local"
		}
	}
	return &Local{name: name}
}

func (l *Local) Name() string { return l.name }

func (l *Local) Unix() bool { return runtime.GOOS != "windows" }

func (l *Local) Online() bool { return true }

func (l *Local) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
