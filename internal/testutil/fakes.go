// Package testutil provides hand-written fakes shared across package
// tests: an execution node with a scripted filesystem and a launcher that
// records what it was asked to run.
package testutil

import (
	"context"
	"sync"

	"github.com/fugi/antrun/internal/launch"
)

// FakeNode implements execnode.Node with fully scripted behavior.
type FakeNode struct {
	NodeName string
	IsUnix   bool
	Offline  bool
	// Files is the set of paths FileExists reports as present.
	Files map[string]bool
}

// NewUnixNode returns an online Unix node with the given existing files.
func NewUnixNode(files ...string) *FakeNode {
	n := &FakeNode{NodeName: "fake-unix", IsUnix: true, Files: map[string]bool{}}
	for _, f := range files {
		n.Files[f] = true
	}
	return n
}

// NewWindowsNode returns an online Windows node with the given existing files.
func NewWindowsNode(files ...string) *FakeNode {
	n := &FakeNode{NodeName: "fake-windows", IsUnix: false, Files: map[string]bool{}}
	for _, f := range files {
		n.Files[f] = true
	}
	return n
}

func (n *FakeNode) Name() string { return n.NodeName }

func (n *FakeNode) Unix() bool { return n.IsUnix }

func (n *FakeNode) Online() bool { return !n.Offline }

func (n *FakeNode) FileExists(path string) bool { return n.Files[path] }

// FakeLauncher implements launch.Launcher, recording every launch and
// returning a scripted exit code or error.
type FakeLauncher struct {
	mu sync.Mutex

	ExitCode int
	Err      error

	// Launched counts Launch calls; Last holds the most recent spec.
	Launched int
	Last     launch.Spec
}

func (l *FakeLauncher) Launch(ctx context.Context, spec launch.Spec) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Launched++
	l.Last = spec
	if l.Err != nil {
		return -1, l.Err
	}
	return l.ExitCode, nil
}
