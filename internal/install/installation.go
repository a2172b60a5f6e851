// Package install manages named Ant installations: where the tool lives,
// per-node and per-environment specialization, and the process-wide
// registry the invoker resolves names against.
package install

import (
	"path"
	"strings"

	"github.com/fugi/antrun/internal/envvars"
	"github.com/fugi/antrun/internal/execnode"
)

// Installation is a named record describing one Ant distribution. Values
// are immutable: ForNode and ForEnvironment return adjusted copies and
// never mutate the original.
type Installation struct {
	// Name uniquely identifies the installation in the registry.
	Name string
	// Home is the installation directory. It may contain unexpanded
	// variable references until ForEnvironment is applied. Never carries a
	// trailing path separator; Ant rejects homes with one.
	Home string
	// NodeHomes maps execution-node names to overriding home directories,
	// for nodes where the tool lives somewhere else.
	NodeHomes map[string]string
	// Properties carries optional free-form installation properties.
	Properties map[string]string
	// DownloadURL, when set, lets the auto-installer provision this
	// installation from an archive.
	DownloadURL string
}

// New constructs an Installation with a laundered home directory.
func New(name, home string, opts ...Option) Installation {
	inst := Installation{Name: name, Home: launderHome(home)}
	for _, opt := range opts {
		opt(&inst)
	}
	return inst
}

// Option customizes an Installation at construction.
type Option func(*Installation)

// WithNodeHomes sets per-node home overrides.
func WithNodeHomes(homes map[string]string) Option {
	return func(i *Installation) { i.NodeHomes = homes }
}

// WithProperties sets installation properties.
func WithProperties(props map[string]string) Option {
	return func(i *Installation) { i.Properties = props }
}

// WithDownloadURL sets the auto-install archive URL.
func WithDownloadURL(url string) Option {
	return func(i *Installation) { i.DownloadURL = url }
}

// launderHome strips a trailing path separator. Ant mishandles homes with
// one, especially on Windows.
func launderHome(home string) string {
	if len(home) > 1 && (strings.HasSuffix(home, "/") || strings.HasSuffix(home, `\`)) {
		return home[:len(home)-1]
	}
	return home
}

// ForNode returns a copy specialized for the given execution node,
// applying any per-node home override. Must be applied before
// ForEnvironment.
func (i Installation) ForNode(node execnode.Node) Installation {
	out := i
	if override, ok := i.NodeHomes[node.Name()]; ok {
		out.Home = launderHome(override)
	}
	return out
}

// ForEnvironment returns a copy with variable references in the home
// directory expanded against env.
func (i Installation) ForEnvironment(env envvars.Vars) Installation {
	out := i
	out.Home = launderHome(env.Expand(i.Home))
	return out
}

// Executable returns the tool's launch path on the node, and whether it
// exists there. The existence check runs against the node's filesystem,
// not the controller's.
func (i Installation) Executable(node execnode.Node) (string, bool) {
	name := "ant"
	if !node.Unix() {
		name = "ant.bat"
	}
	// Slash-joined on purpose: the path is interpreted on the node, and
	// both supported platforms accept forward slashes.
	exe := path.Join(i.Home, "bin", name)
	return exe, node.FileExists(exe)
}

// BuildEnvVars injects the tool-specific variables into env.
func (i Installation) BuildEnvVars(env envvars.Vars) {
	env.Override("ANT_HOME", i.Home)
}
