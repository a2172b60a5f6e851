// Package execnode abstracts the machine a build step executes on. The
// controller that orchestrates a build is not necessarily the machine
// that runs the subprocess, so executable and build-file existence checks
// go through this interface rather than the local filesystem directly.
package execnode

// Node describes an execution node.
type Node interface {
	// Name is the node's unique name within the host.
	Name() string
	// Unix reports whether the node runs a Unix-like OS. Non-Unix nodes
	// get the Windows command wrapping and re-escaping treatment.
	Unix() bool
	// Online reports whether the node is currently reachable.
	Online() bool
	// FileExists checks a path on the node's filesystem.
	FileExists(path string) bool
}
