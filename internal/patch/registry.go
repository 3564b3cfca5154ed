package patch

import (
	"slices"
	"sort"
	"sync"
)

// Registry maps target classes to their patches. It is populated during the
// pre-load phase and usually frozen before the host loads its first class.
// While it is not frozen, registration and planning for one class exclude
// each other through a lock held per class; unrelated classes never wait on
// each other.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*classPatches
	ids     map[string]string // patch ID -> class
	seq     uint64
	frozen  bool
}

type classPatches struct {
	mu      sync.RWMutex
	patches []*Patch // registration order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*classPatches), ids: make(map[string]string)}
}

func (r *Registry) lookup(class string) *classPatches {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[InternalName(class)]
}

// Register validates p and stores a copy of it. A second replace patch on
// the same method fails with *DuplicateTargetError.
func (r *Registry) Register(p *Patch) error {
	q := p.normalize()
	if err := validate(q); err != nil {
		return err
	}

	r.mu.Lock()
	if r.frozen {
		r.mu.Unlock()
		return ErrFrozen
	}
	if _, dup := r.ids[q.ID]; dup {
		r.mu.Unlock()
		return invalid(q, "id already registered")
	}
	r.seq++
	q.seq = r.seq
	r.ids[q.ID] = q.Target.Class
	e := r.classes[q.Target.Class]
	if e == nil {
		e = &classPatches{}
		r.classes[q.Target.Class] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	if q.Strategy.Exclusive() {
		for _, old := range e.patches {
			if old.Strategy == q.Strategy && old.Target == q.Target {
				e.mu.Unlock()
				r.mu.Lock()
				delete(r.ids, q.ID)
				r.mu.Unlock()
				return &DuplicateTargetError{Target: q.Target, Existing: old.ID, Patch: q.ID}
			}
		}
	}
	e.patches = append(e.patches, q)
	e.mu.Unlock()
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// PatchesFor returns the patches targeting one method, by ascending
// priority and then registration order.
func (r *Registry) PatchesFor(class, method, desc string) []*Patch {
	var out []*Patch
	r.View(class, func(ps []*Patch) error {
		for _, p := range ps {
			if p.Target.Method == method && p.Target.Desc == desc {
				out = append(out, p)
			}
		}
		return nil
	})
	return out
}

// ForClass returns every patch targeting class, in plan order.
func (r *Registry) ForClass(class string) []*Patch {
	var out []*Patch
	r.View(class, func(ps []*Patch) error {
		out = ps
		return nil
	})
	return out
}

// View calls fn with the ordered patches of class while holding the class's
// read lock, so no registration for the class can interleave with it. fn
// must not register or unregister patches.
func (r *Registry) View(class string, fn func([]*Patch) error) error {
	e := r.lookup(class)
	if e == nil {
		return fn(nil)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	ps := slices.Clone(e.patches)
	slices.SortStableFunc(ps, Compare)
	return fn(ps)
}

// Has reports whether any patch targets class.
func (r *Registry) Has(class string) bool {
	e := r.lookup(class)
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.patches) > 0
}

// Classes lists every targeted class, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.classes))
	entries := make([]*classPatches, 0, len(r.classes))
	for name, e := range r.classes {
		names = append(names, name)
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var out []string
	for i, e := range entries {
		e.mu.RLock()
		if len(e.patches) > 0 {
			out = append(out, names[i])
		}
		e.mu.RUnlock()
	}
	sort.Strings(out)
	return out
}

// All returns every patch, grouped by class in name order.
func (r *Registry) All() []*Patch {
	var out []*Patch
	for _, class := range r.Classes() {
		out = append(out, r.ForClass(class)...)
	}
	return out
}

// Len returns the number of registered patches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// UnregisterAll removes every patch declared by source and returns how many
// were removed.
func (r *Registry) UnregisterAll(source string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return 0, ErrFrozen
	}
	n := 0
	for _, e := range r.classes {
		e.mu.Lock()
		kept := e.patches[:0]
		for _, p := range e.patches {
			if p.Source == source {
				delete(r.ids, p.ID)
				n++
				continue
			}
			kept = append(kept, p)
		}
		clear(e.patches[len(kept):])
		e.patches = kept
		e.mu.Unlock()
	}
	return n, nil
}
