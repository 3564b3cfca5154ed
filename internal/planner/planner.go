// Package planner orders the patches of one method and rejects
// combinations that cannot be applied consistently.
package planner

import (
	"fmt"
	"slices"

	"hyinit/internal/patch"
)

// Plan is the ordered patch list for one method. It references the
// registry's patches without owning them.
type Plan struct {
	Target  patch.Target
	Patches []*patch.Patch
}

// Len returns the number of patches.
func (p *Plan) Len() int { return len(p.Patches) }

// PatchConflictError names two patches that cannot both apply.
type PatchConflictError struct {
	A, B   *patch.Patch
	Reason string
}

func (e *PatchConflictError) Error() string {
	return fmt.Sprintf("planner: %s conflicts with %s: %s", e.A.ID, e.B.ID, e.Reason)
}

// Build orders patches by (priority, registration order) and fails on the
// first conflicting pair.
func Build(patches []*patch.Patch) (*Plan, error) {
	plan := newPlan(patches)
	for i, b := range plan.Patches {
		for _, a := range plan.Patches[:i] {
			if reason := conflict(a, b); reason != "" {
				return nil, &PatchConflictError{A: a, B: b, Reason: reason}
			}
		}
	}
	return plan, nil
}

// BuildDegraded keeps, in order, every patch that does not conflict with a
// patch already kept, so the highest-priority member of each conflicting
// group survives. The dropped patches are reported.
func BuildDegraded(patches []*patch.Patch) (*Plan, []*PatchConflictError) {
	all := newPlan(patches)
	plan := &Plan{Target: all.Target}
	var dropped []*PatchConflictError
	for _, b := range all.Patches {
		var c *PatchConflictError
		for _, a := range plan.Patches {
			if reason := conflict(a, b); reason != "" {
				c = &PatchConflictError{A: a, B: b, Reason: reason}
				break
			}
		}
		if c != nil {
			dropped = append(dropped, c)
			continue
		}
		plan.Patches = append(plan.Patches, b)
	}
	return plan, dropped
}

func newPlan(patches []*patch.Patch) *Plan {
	ps := slices.Clone(patches)
	slices.SortStableFunc(ps, patch.Compare)
	plan := &Plan{Patches: ps}
	if len(ps) > 0 {
		plan.Target = ps[0].Target
	}
	return plan
}

// conflict explains why a, ordered before b, cannot be combined with it,
// or returns "".
func conflict(a, b *patch.Patch) string {
	if a.Target != b.Target {
		return ""
	}
	switch {
	case a.Strategy == patch.Replace && b.Strategy == patch.Replace:
		return "both replace the method"
	case b.Strategy == patch.Replace:
		return "replace would discard the earlier patch"
	}

	pa, pb := point(a), point(b)
	if pa == nil || pb == nil || !pa.overlaps(pb) {
		return ""
	}
	switch {
	case a.Strategy == patch.RedirectCall && b.Strategy == patch.RedirectCall:
		return "both redirect " + pa.describe()
	case a.Strategy == patch.RedirectCall:
		if pb.shift == patch.Instead {
			return "redirect and replace at " + pa.describe()
		}
		return ""
	case b.Strategy == patch.RedirectCall:
		if pa.shift == patch.Instead {
			return "redirect and replace at " + pa.describe()
		}
		return ""
	}
	if pa.same(pb) && !(a.CompatibleWith(b) && b.CompatibleWith(a)) {
		return "both inject at " + pa.describe()
	}
	if (pa.shift == patch.Instead || pb.shift == patch.Instead) && !(a.CompatibleWith(b) && b.CompatibleWith(a)) {
		return "replace overlaps injection at " + pa.describe()
	}
	return ""
}

// injection is the instruction-level point a patch occupies.
type injection struct {
	kind    patch.AnchorKind
	invoke  patch.Member
	ordinal int
	index   int
	shift   patch.Shift
}

func point(p *patch.Patch) *injection {
	switch p.Strategy {
	case patch.RedirectCall, patch.InjectAtPoint:
	default:
		return nil
	}
	a := p.Anchor
	return &injection{kind: a.Kind, invoke: a.Invoke, ordinal: a.Ordinal, index: a.Index, shift: a.EffectiveShift()}
}

// overlaps reports whether both points can resolve to the same
// instruction.
func (x *injection) overlaps(y *injection) bool {
	if x.kind != y.kind {
		return false
	}
	switch x.kind {
	case patch.AtInvoke:
		if x.invoke != y.invoke {
			return false
		}
		return x.ordinal == y.ordinal || x.ordinal == patch.AllOrdinals || y.ordinal == patch.AllOrdinals
	case patch.AtIndex:
		return x.index == y.index
	}
	return false
}

// same reports an exact match, placement included.
func (x *injection) same(y *injection) bool { return x.overlaps(y) && x.shift == y.shift }

func (x *injection) describe() string {
	if x.kind == patch.AtIndex {
		return fmt.Sprintf("instruction %d", x.index)
	}
	if x.ordinal == patch.AllOrdinals {
		return "every call to " + x.invoke.String()
	}
	return fmt.Sprintf("call %d to %s", x.ordinal, x.invoke)
}
