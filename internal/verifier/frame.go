package verifier

import "slices"

// Frame is the abstract machine state at the start of an instruction.
type Frame struct {
	Locals []Type
	Stack  []Type
}

func (f *Frame) clone() *Frame {
	return &Frame{Locals: slices.Clone(f.Locals), Stack: slices.Clone(f.Stack)}
}

func (f *Frame) equal(o *Frame) bool {
	return slices.Equal(f.Locals, o.Locals) && slices.Equal(f.Stack, o.Stack)
}

// mergeFrom folds an incoming state into f. It reports whether f changed,
// or a merge failure kind when the stacks cannot be reconciled.
func (f *Frame) mergeFrom(in *Frame, h Hierarchy) (bool, error) {
	if len(f.Stack) != len(in.Stack) {
		return false, ErrInconsistentStack
	}
	changed := false
	for i := range f.Stack {
		t, ok := mergeType(f.Stack[i], in.Stack[i], h)
		if !ok {
			return false, ErrTypeMismatch
		}
		if t != f.Stack[i] {
			f.Stack[i] = t
			changed = true
		}
	}
	for i := range f.Locals {
		t, ok := mergeType(f.Locals[i], in.Locals[i], h)
		if !ok {
			t = tTop
		}
		if t != f.Locals[i] {
			f.Locals[i] = t
			changed = true
		}
	}
	return changed, nil
}

// mergeType returns the least type covering a and b.
func mergeType(a, b Type, h Hierarchy) (Type, bool) {
	if a == b {
		return a, true
	}
	switch {
	case a.Kind == Null && b.Kind == Ref:
		return b, true
	case a.Kind == Ref && b.Kind == Null:
		return a, true
	case a.Kind == Ref && b.Kind == Ref:
		return refType(h.CommonSuperclass(a.Name, b.Name)), true
	}
	return tTop, false
}
