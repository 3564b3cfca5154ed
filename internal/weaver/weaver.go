// Package weaver applies a method's ordered patches to its instruction
// sequence.
//
// Every patch resolves its anchor against the sequence as the previous
// patches left it. Weaving happens on a copy of the method body and the
// result is handed back only when every patch applied.
package weaver

import (
	"errors"
	"fmt"
	"slices"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
	"hyinit/internal/planner"
	"hyinit/internal/verifier"
)

// Options configures weaving.
type Options struct {
	// ComputeMaxs raises max_stack and max_locals to what analysis of the
	// woven body finds.
	ComputeMaxs bool
	// Hierarchy is passed to the analysis ComputeMaxs runs.
	Hierarchy verifier.Hierarchy
}

// Applied records one woven patch.
type Applied struct {
	Patch *patch.Patch
	Sites int
}

// Result is a woven method body. The class's pool already holds every
// constant the body references; the method itself is unchanged until
// Commit.
type Result struct {
	Target  patch.Target
	Code    *bytecode.Code
	Applied []Applied
}

// Commit encodes the woven body into the method's Code attribute.
func (r *Result) Commit(c *classfile.Class, m *classfile.Method) error {
	data, err := r.Code.Encode(c)
	if err != nil {
		return fmt.Errorf("weaver: encode %s: %w", r.Target, err)
	}
	return c.SetCode(m, data)
}

type weave struct {
	cls   *classfile.Class
	code  *bytecode.Code
	entry int // instructions placed at entry by wrap-before patches
	// tails counts the instructions inject-after patches placed behind each
	// anchor, keyed by the anchor's original index.
	tails map[int]int
}

// WeaveMethod decodes m and applies plan to a copy of its body.
func WeaveMethod(c *classfile.Class, m *classfile.Method, plan *planner.Plan, opts Options) (*Result, error) {
	attr, err := c.Code(m)
	if err != nil {
		return nil, err
	}
	code, err := bytecode.DecodeCode(c, attr)
	if err != nil {
		return nil, err
	}
	return Weave(c, m, code, plan, opts)
}

// Weave applies plan to a copy of code, which stays untouched.
func Weave(c *classfile.Class, m *classfile.Method, code *bytecode.Code, plan *planner.Plan, opts Options) (*Result, error) {
	w := &weave{cls: c, code: code.Clone(), tails: make(map[int]int)}
	res := &Result{Target: plan.Target, Code: w.code}
	if res.Target == (patch.Target{}) {
		res.Target = patch.Target{Class: c.Name, Method: m.Name, Desc: m.Desc}
	}

	for _, p := range plan.Patches {
		n, err := w.apply(p)
		if err != nil {
			var anf *AnchorNotFoundError
			if errors.As(err, &anf) {
				return nil, err
			}
			return nil, &PatchError{Patch: p, Err: err}
		}
		res.Applied = append(res.Applied, Applied{Patch: p, Sites: n})
	}

	if opts.ComputeMaxs {
		if an, err := verifier.Analyze(c, m, w.code, verifier.Options{Hierarchy: opts.Hierarchy}); err == nil {
			w.raise(an.MaxStack, an.MaxLocals)
		}
	}
	return res, nil
}

// apply weaves one patch and returns how many sites it touched.
func (w *weave) apply(p *patch.Patch) (int, error) {
	body, err := Lower(w.cls.Pool, p.Body)
	if err != nil {
		return 0, err
	}
	stack, locals := estimate(w.cls.Pool, body)
	w.raise(max(stack, p.MaxStack), max(locals, p.MaxLocals))

	switch p.Strategy {
	case patch.Replace:
		w.code.Handlers = nil
		w.code.Lines = nil
		w.code.Locals = nil
		w.code.LocalTypes = nil
		if err := w.code.Replace(0, w.code.Len(), body); err != nil {
			return 0, err
		}
		w.entry = 0
		clear(w.tails)
		return 1, nil

	case patch.WrapBefore:
		if err := w.code.InsertChained(w.entry, 0, body); err != nil {
			return 0, err
		}
		w.entry += len(body)
		return 1, nil

	case patch.WrapAfter:
		rets := w.code.Returns()
		if len(rets) == 0 {
			return 0, &AnchorNotFoundError{Patch: p, Target: p.Target}
		}
		for k := len(rets) - 1; k >= 0; k-- {
			w.shift(rets[k], len(body))
			if err := w.code.Insert(rets[k], body, true); err != nil {
				return 0, err
			}
		}
		return len(rets), nil
	}

	at := w.sites(p.Anchor)
	if len(at) == 0 {
		return 0, &AnchorNotFoundError{Patch: p, Target: p.Target}
	}
	for k := len(at) - 1; k >= 0; k-- {
		if err := w.inject(at[k], p.Anchor.EffectiveShift(), body); err != nil {
			return 0, err
		}
	}
	return len(at), nil
}

func (w *weave) inject(at int, shift patch.Shift, body []bytecode.Instruction) error {
	switch shift {
	case patch.Before:
		w.shift(at, len(body))
		return w.code.Insert(at, body, true)
	case patch.After:
		// Earlier after-patches of this anchor run first.
		orig := w.code.Insts[at].Origin
		tail := at + 1 + w.tails[orig]
		w.shift(tail, len(body))
		if err := w.code.InsertChained(tail, at+1, body); err != nil {
			return err
		}
		w.tails[orig] += len(body)
		return nil
	case patch.Instead:
		call := w.code.Insts[at]
		body = proceed(body, call)
		w.shift(at, len(body)-1)
		delete(w.tails, call.Origin)
		return w.code.Replace(at, 1, body)
	}
	return fmt.Errorf("%w: shift %q", ErrBadBody, shift)
}

// shift accounts for delta instructions about to be inserted at index at:
// the entry cursor moves when at lies inside the entry code, and an
// after-run grows when at lies strictly inside it.
func (w *weave) shift(at, delta int) {
	if at < w.entry {
		w.entry += delta
	}
	for orig, n := range w.tails {
		a := w.code.IndexOfOrigin(orig)
		if a >= 0 && at > a+1 && at < a+1+n {
			w.tails[orig] = n + delta
		}
	}
}

// proceed substitutes the replaced call for every proceed placeholder.
func proceed(body []bytecode.Instruction, call bytecode.Instruction) []bytecode.Instruction {
	if !slices.ContainsFunc(body, isProceed) {
		return body
	}
	out := slices.Clone(body)
	for i := range out {
		if isProceed(out[i]) {
			out[i] = call
			out[i].Origin = -1
		}
	}
	return out
}

func isProceed(in bytecode.Instruction) bool { return in.Origin == proceedOrigin }

// raise grows the declared maxs; they never shrink.
func (w *weave) raise(stack, locals int) {
	stack = min(stack, 0xFFFF)
	locals = min(locals, 0xFFFF)
	w.code.MaxStack = max(w.code.MaxStack, uint16(stack))
	w.code.MaxLocals = max(w.code.MaxLocals, uint16(locals))
}
