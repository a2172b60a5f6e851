// Package buildfile locates the Ant build script for a step. Users can
// name the script explicitly, smuggle a -f/-file/-buildfile flag into the
// targets field, or rely on Ant's default build.xml.
package buildfile

import (
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/fugi/antrun/internal/execnode"
)

// DefaultName is the build script Ant looks for when none is named.
const DefaultName = "build.xml"

// buildFileFlags are the Ant options whose following token names the
// build script.
var buildFileFlags = map[string]bool{
	"-f":         true,
	"-file":      true,
	"-buildfile": true,
}

// Resolve determines the build script path under base. An explicit path
// wins; otherwise the tokenized targets string is scanned for a
// build-file flag; otherwise base/build.xml. Resolve is pure: it never
// touches the filesystem.
func Resolve(base, explicit, targets string) string {
	if explicit != "" {
		return filepath.Join(base, explicit)
	}
	tokens := tokenize(targets)
	for i := 0; i < len(tokens)-1; i++ {
		if buildFileFlags[tokens[i]] {
			return filepath.Join(base, tokens[i+1])
		}
	}
	return filepath.Join(base, DefaultName)
}

// Choose runs the three-tier fallback: resolve against the module root,
// then against the workspace root, then treat the raw explicit path as an
// absolute filesystem path. It commits to the first candidate that exists
// on the node; if none do, the final candidate is returned anyway and the
// not-found error is left to the caller. The module root can diverge from
// the actual checkout location depending on the SCM in use, which is why
// a miss there is not an error by itself.
func Choose(node execnode.Node, moduleRoot, workspace, explicit, targets string) string {
	path := Resolve(moduleRoot, explicit, targets)
	if node.FileExists(path) {
		return path
	}

	path = Resolve(workspace, explicit, targets)
	if node.FileExists(path) {
		return path
	}

	if explicit != "" {
		return explicit
	}
	return path
}

func tokenize(s string) []string {
	tokens, err := shellquote.Split(s)
	if err != nil {
		// Unbalanced quoting; fall back to plain whitespace splitting so a
		// stray quote in the targets field doesn't hide a -f flag.
		return strings.Fields(s)
	}
	return tokens
}
