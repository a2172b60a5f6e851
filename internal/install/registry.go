package install

import "sync/atomic"

// Registry holds the process-wide set of named installations. It is
// read-mostly with copy-on-write semantics: readers get an immutable
// snapshot, updates replace the whole array atomically, and concurrent
// readers never observe a torn state.
type Registry struct {
	snapshot atomic.Pointer[[]Installation]
}

// NewRegistry creates a registry seeded with the given installations.
func NewRegistry(installations ...Installation) *Registry {
	r := &Registry{}
	r.Replace(installations)
	return r
}

// Snapshot returns a copy of the current installation array. The copy is
// the caller's to keep; later Replace calls do not affect it.
func (r *Registry) Snapshot() []Installation {
	current := *r.snapshot.Load()
	out := make([]Installation, len(current))
	copy(out, current)
	return out
}

// Replace swaps in a new installation array. The slice is copied, so the
// caller may keep mutating its own.
func (r *Registry) Replace(installations []Installation) {
	next := make([]Installation, len(installations))
	copy(next, installations)
	r.snapshot.Store(&next)
}

// Lookup finds an installation by name in the current snapshot.
func (r *Registry) Lookup(name string) (Installation, bool) {
	if name == "" {
		return Installation{}, false
	}
	for _, inst := range *r.snapshot.Load() {
		if inst.Name == name {
			return inst, true
		}
	}
	return Installation{}, false
}

// Len reports the number of registered installations.
func (r *Registry) Len() int {
	return len(*r.snapshot.Load())
}
