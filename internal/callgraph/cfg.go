package callgraph

import (
	"fmt"

	"github.com/zboralski/lattice"

	"hyinit/internal/bytecode"
)

// BuildCFG constructs a lattice.CFGGraph from decoded methods. Each method
// is partitioned by bytecode.BuildCFG and then mapped to lattice types.
func BuildCFG(methods []MethodInfo) *lattice.CFGGraph {
	cg := &lattice.CFGGraph{}
	for _, m := range methods {
		lcfg, _ := BuildFuncCFG(m)
		cg.Funcs = append(cg.Funcs, lcfg)
	}
	return cg
}

// BuildFuncCFG builds a single-method lattice.FuncCFG. It also returns the
// number of basic blocks, for filtering trivial methods.
func BuildFuncCFG(m MethodInfo) (*lattice.FuncCFG, int) {
	mcfg := bytecode.BuildCFG(m.ID(), m.Code)
	return convertMethodCFG(&mcfg, m), len(mcfg.Blocks)
}

// convertMethodCFG maps a bytecode.MethodCFG to a lattice.FuncCFG. Every
// invoke becomes a call site of its block; string constants and injected
// code show up as pseudo-calls so they are visible in the rendering.
func convertMethodCFG(mcfg *bytecode.MethodCFG, m MethodInfo) *lattice.FuncCFG {
	lcfg := &lattice.FuncCFG{Name: mcfg.Name}
	for _, blk := range mcfg.Blocks {
		lb := &lattice.BasicBlock{
			ID:    blk.ID,
			Start: blk.Start,
			End:   blk.End,
			Term:  blk.IsTerm,
		}
		for _, s := range blk.Succs {
			lb.Succs = append(lb.Succs, lattice.Successor{BlockID: s.BlockID, Cond: s.Cond})
		}

		injected := false
		for i := blk.Start; i < blk.End; i++ {
			in := &m.Code.Insts[i]
			if in.Origin < 0 && !injected {
				injected = true
				lb.Calls = append(lb.Calls, lattice.CallSite{Offset: i, Callee: "[injected]"})
			}
			if c := callee(m.Pool, in); c != "" {
				lb.Calls = append(lb.Calls, lattice.CallSite{Offset: i, Callee: c})
				continue
			}
			if s, ok := stringConst(m, in); ok {
				if len(s) > 50 {
					s = s[:47] + "..."
				}
				lb.Calls = append(lb.Calls, lattice.CallSite{Offset: i, Callee: fmt.Sprintf("%q", s)})
			}
		}
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

func stringConst(m MethodInfo, in *bytecode.Instruction) (string, bool) {
	if in.Op != bytecode.OpLdc && in.Op != bytecode.OpLdcW {
		return "", false
	}
	s, err := m.Pool.StringValue(in.Index)
	if err != nil {
		return "", false
	}
	return s, true
}
