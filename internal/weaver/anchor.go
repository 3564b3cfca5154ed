package weaver

import (
	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
)

// sites resolves an invoke or index anchor against the current sequence and
// returns the matching instruction indexes in ascending order.
//
// Call sites are counted from the entry cursor, past the code earlier
// wrap-before patches placed there, and only instructions that were part of
// the method as loaded are considered. Code injected by an earlier patch
// therefore never shifts the ordinal a later patch names, while a call an
// earlier patch removed is no longer found.
func (w *weave) sites(a patch.Anchor) []int {
	switch a.Kind {
	case patch.AtIndex:
		if i := w.code.IndexOfOrigin(a.Index); i >= 0 {
			return []int{i}
		}
	case patch.AtInvoke:
		var out []int
		n := 0
		for i := w.entry; i < len(w.code.Insts); i++ {
			in := &w.code.Insts[i]
			if in.Origin < 0 || !in.Op.IsInvoke() {
				continue
			}
			if !w.calls(in, a.Invoke) {
				continue
			}
			if a.Ordinal == patch.AllOrdinals || a.Ordinal == n {
				out = append(out, i)
			}
			n++
		}
		return out
	}
	return nil
}

func (w *weave) calls(in *bytecode.Instruction, m patch.Member) bool {
	ref, err := w.cls.Pool.Member(in.Index)
	if err != nil {
		return false
	}
	switch ref.Tag {
	case classfile.ConstantMethodref, classfile.ConstantInterfaceMethodref:
	default:
		return false
	}
	return ref.Owner == m.Owner && ref.Name == m.Name && ref.Desc == m.Desc
}
