package patch

import (
	"hyinit/internal/classfile"
)

// validate checks a normalized patch.
func validate(p *Patch) error {
	if p.ID == "" {
		return invalid(p, "empty id")
	}
	t := p.Target
	if t.Class == "" || t.Method == "" || t.Desc == "" {
		return invalid(p, "incomplete target %s", t)
	}
	if _, err := classfile.ParseMethodDescriptor(t.Desc); err != nil {
		return invalid(p, "target descriptor: %v", err)
	}
	if !p.Strategy.Valid() {
		return invalid(p, "unknown strategy %q", p.Strategy)
	}
	if p.Priority < -1<<20 || p.Priority > 1<<20 {
		return invalid(p, "priority %d out of range", p.Priority)
	}
	if p.MaxStack < 0 || p.MaxLocals < 0 || p.MaxStack > 0xFFFF || p.MaxLocals > 0xFFFF {
		return invalid(p, "declared maxs %d/%d", p.MaxStack, p.MaxLocals)
	}

	a := p.Anchor
	switch p.Strategy {
	case RedirectCall:
		if a.Kind != AtInvoke {
			return invalid(p, "redirect-call needs an invoke anchor")
		}
	case InjectAtPoint:
		if a.Kind != AtInvoke && a.Kind != AtIndex {
			return invalid(p, "inject-at-point needs an invoke or index anchor, got %q", a.Kind)
		}
		switch a.EffectiveShift() {
		case Before, After, Instead:
		default:
			return invalid(p, "unknown shift %q", a.Shift)
		}
	}
	switch a.Kind {
	case AtInvoke:
		if a.Invoke.Owner == "" || a.Invoke.Name == "" {
			return invalid(p, "invoke anchor without a member")
		}
		if _, err := classfile.ParseMethodDescriptor(a.Invoke.Desc); err != nil {
			return invalid(p, "invoke anchor descriptor: %v", err)
		}
		if a.Ordinal < AllOrdinals {
			return invalid(p, "ordinal %d", a.Ordinal)
		}
	case AtIndex:
		if a.Index < 0 {
			return invalid(p, "index %d", a.Index)
		}
	}

	if len(p.Body) == 0 && a.EffectiveShift() != Instead {
		return invalid(p, "empty body")
	}
	labels := make(map[string]bool)
	for _, op := range p.Body {
		if op.Code == "" {
			return invalid(p, "body op without a mnemonic")
		}
		if op.Code == OpProceed && (a.Kind != AtInvoke || a.EffectiveShift() != Instead) {
			return invalid(p, "proceed outside a call replacement")
		}
		if op.Code == OpLabel {
			if op.Label == "" || labels[op.Label] {
				return invalid(p, "bad or repeated label %q", op.Label)
			}
			labels[op.Label] = true
		}
	}
	return nil
}
