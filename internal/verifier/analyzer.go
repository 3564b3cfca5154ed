// Package verifier re-validates woven method bodies by abstract
// interpretation and regenerates their StackMapTable.
package verifier

import (
	"errors"
	"fmt"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

// Options configures analysis.
type Options struct {
	// Hierarchy resolves reference merges. Nil means ObjectHierarchy.
	Hierarchy Hierarchy
}

// Analysis is the result of interpreting one method body.
type Analysis struct {
	// Frames[i] is the state before instruction i, nil when unreachable.
	Frames []*Frame
	// MaxStack is the deepest operand stack reached, in slots.
	MaxStack int
	// MaxLocals is one past the highest local slot touched, in slots,
	// including the receiver and parameters.
	MaxLocals int

	overflowAt int
}

// Reachable reports whether instruction i is reachable from the entry.
func (a *Analysis) Reachable(i int) bool { return a.Frames[i] != nil }

type analyzer struct {
	cls    *classfile.Class
	method *classfile.Method
	code   *bytecode.Code
	h      Hierarchy
	ret    string
	frames []*Frame
	peak   int
	locals int

	cur        int
	overflowAt int
}

type stepError struct {
	kind   error
	detail string
}

func (e *stepError) Error() string { return e.kind.Error() + ": " + e.detail }
func (e *stepError) Unwrap() error { return e.kind }

func failf(kind error, format string, args ...any) error {
	return &stepError{kind: kind, detail: fmt.Sprintf(format, args...)}
}

func (a *analyzer) fail(i int, err error) *VerificationError {
	ve := &VerificationError{
		Class:  a.cls.Name,
		Method: a.method.Name + a.method.Desc,
		Index:  i,
		Kind:   err,
	}
	var se *stepError
	if errors.As(err, &se) {
		ve.Kind, ve.Detail = se.kind, se.detail
	}
	if i >= 0 && i < len(a.code.Insts) {
		ve.Op = a.code.Insts[i].Op.String()
	}
	return ve
}

// Verify interprets code along every reachable path and checks it against
// the declared max_stack and max_locals.
func Verify(c *classfile.Class, m *classfile.Method, code *bytecode.Code, opts Options) (*Analysis, error) {
	an, err := Analyze(c, m, code, opts)
	if err != nil {
		return nil, err
	}
	if an.MaxStack > int(code.MaxStack) {
		a := &analyzer{cls: c, method: m, code: code}
		return an, a.fail(an.overflowAt, failf(ErrStackOverflow, "needs %d, max_stack %d", an.MaxStack, code.MaxStack))
	}
	return an, nil
}

// Analyze interprets code along every reachable path. Local slots are
// bounded by code.MaxLocals; the operand stack is unbounded and its peak is
// reported, so callers can size max_stack from the result.
func Analyze(c *classfile.Class, m *classfile.Method, code *bytecode.Code, opts Options) (*Analysis, error) {
	a := &analyzer{cls: c, method: m, code: code, h: opts.Hierarchy, overflowAt: -1}
	if a.h == nil {
		a.h = ObjectHierarchy{}
	}
	n := len(code.Insts)
	if n == 0 {
		return nil, a.fail(-1, ErrFallsOffEnd)
	}
	mt, err := classfile.ParseMethodDescriptor(m.Desc)
	if err != nil {
		return nil, a.fail(-1, failf(ErrTypeMismatch, "%v", err))
	}
	a.ret = mt.Return

	entry, err := a.entryFrame(mt)
	if err != nil {
		return nil, a.fail(-1, err)
	}
	for _, h := range code.Handlers {
		if h.Start < 0 || h.End > n || h.Start >= h.End || h.Handler < 0 || h.Handler >= n {
			return nil, a.fail(-1, failf(ErrBadBranchTarget, "handler [%d,%d) -> %d", h.Start, h.End, h.Handler))
		}
	}

	a.frames = make([]*Frame, n)
	a.frames[0] = entry
	work := []int{0}
	queued := make([]bool, n)
	queued[0] = true

	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		queued[i] = false
		a.cur = i

		in := &code.Insts[i]
		pre := a.frames[i]
		f := pre.clone()
		if err := a.step(i, in, f); err != nil {
			return nil, a.fail(i, err)
		}

		enqueue := func(t int, state *Frame) error {
			if t < 0 || t >= n {
				return failf(ErrBadBranchTarget, "%d -> %d", i, t)
			}
			if a.frames[t] == nil {
				a.frames[t] = state.clone()
			} else {
				changed, err := a.frames[t].mergeFrom(state, a.h)
				if err != nil {
					return failf(err, "merging %d into %d", i, t)
				}
				if !changed {
					return nil
				}
			}
			if !queued[t] {
				queued[t] = true
				work = append(work, t)
			}
			return nil
		}

		for _, h := range code.Handlers {
			if i < h.Start || i >= h.End {
				continue
			}
			catch := throwableClass
			if h.CatchType != 0 {
				if catch, err = c.Pool.ClassName(h.CatchType); err != nil {
					return nil, a.fail(i, failf(ErrBadConstant, "catch type #%d", h.CatchType))
				}
			}
			for _, locals := range [][]Type{pre.Locals, f.Locals} {
				hf := &Frame{Locals: locals, Stack: []Type{refType(catch)}}
				if err := enqueue(h.Handler, hf); err != nil {
					return nil, a.fail(i, err)
				}
			}
		}
		for _, t := range in.Targets() {
			if err := enqueue(t, f); err != nil {
				return nil, a.fail(i, err)
			}
		}
		if !in.Op.EndsFlow() {
			if i+1 >= n {
				return nil, a.fail(i, ErrFallsOffEnd)
			}
			if err := enqueue(i+1, f); err != nil {
				return nil, a.fail(i, err)
			}
		}
	}

	return &Analysis{Frames: a.frames, MaxStack: a.peak, MaxLocals: a.locals, overflowAt: a.overflowAt}, nil
}

func (a *analyzer) entryFrame(mt classfile.MethodType) (*Frame, error) {
	f := &Frame{Locals: make([]Type, a.code.MaxLocals)}
	slot := 0
	if !a.method.Access.IsStatic() {
		if slot >= len(f.Locals) {
			return nil, failf(ErrLocalOutOfBounds, "receiver needs slot 0, max_locals %d", a.code.MaxLocals)
		}
		this := refType(a.cls.Name)
		if a.method.Name == "<init>" && a.cls.Name != objectClass {
			this = Type{Kind: UninitThis}
		}
		f.Locals[0] = this
		slot = 1
	}
	for _, p := range mt.Params {
		t := typeOf(p)
		w := 1
		if t.Wide() {
			w = 2
		}
		if slot+w > len(f.Locals) {
			return nil, failf(ErrLocalOutOfBounds, "parameters need %d slots, max_locals %d", slot+w, a.code.MaxLocals)
		}
		f.Locals[slot] = t
		slot += w
	}
	a.locals = slot
	return f, nil
}
