// Package envvars models the execution environment passed to a launched
// build tool: a variable map inherited from the host process, overridable
// by build-scoped variables, with $VAR / ${VAR} expansion.
package envvars

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Vars is a mapping from environment variable name to value.
type Vars map[string]string

// FromOS snapshots the current process environment.
func FromOS() Vars {
	v := make(Vars)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			v[pair[0]] = pair[1]
		}
	}
	return v
}

// Clone returns an independent copy of the variable map.
func (v Vars) Clone() Vars {
	out := make(Vars, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Override sets a single variable, replacing any inherited value.
func (v Vars) Override(key, value string) {
	v[key] = value
}

// OverrideAll applies every pair from m on top of the current map.
func (v Vars) OverrideAll(m map[string]string) {
	for k, val := range m {
		v[k] = val
	}
}

// Expand substitutes $VAR and ${VAR} references in s with the values held
// in the map. References to unknown variables are left intact so the
// launched tool can still resolve them from its own environment.
func (v Vars) Expand(s string) string {
	return os.Expand(s, func(name string) string {
		if val, ok := v[name]; ok {
			return val
		}
		return "${" + name + "}"
	})
}

// Resolver adapts the map to the callback shape the argument builder uses
// for property-value expansion.
func (v Vars) Resolver() func(string) string {
	return v.Expand
}

// Environ renders the map in the KEY=value form accepted by os/exec, with
// keys sorted for deterministic command echoing and tests.
func (v Vars) Environ() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, v[k]))
	}
	return out
}
