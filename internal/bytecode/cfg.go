package bytecode

import "sort"

// BasicBlock represents a sequence of instructions with a single entry point.
type BasicBlock struct {
	ID        int
	Start     int    // index into Code.Insts (inclusive)
	End       int    // index into Code.Insts (exclusive)
	Succs     []Succ // successor edges
	IsEntry   bool
	IsHandler bool // start of an exception handler
	IsTerm    bool // ends with a return or athrow
}

// Succ describes a control-flow successor edge.
type Succ struct {
	BlockID int
	Cond    string // "" = unconditional, "T" = taken, "F" = fallthrough, "case", "default", "catch"
}

// MethodCFG is a per-method control flow graph.
type MethodCFG struct {
	Name   string
	Blocks []BasicBlock
	Code   *Code
}

// BlockOf returns the ID of the block containing instruction i, or -1.
func (g *MethodCFG) BlockOf(i int) int {
	k := sort.Search(len(g.Blocks), func(k int) bool { return g.Blocks[k].End > i })
	if k < len(g.Blocks) && g.Blocks[k].Start <= i {
		return k
	}
	return -1
}

// BuildCFG constructs a control flow graph from a method body.
// The algorithm:
//  1. Find block leaders: index 0, branch and switch targets, handler
//     entries, instructions after a branch or terminator.
//  2. Partition instructions into blocks by leaders.
//  3. Compute successor edges from each block's last instruction, plus a
//     "catch" edge to every handler covering an instruction of the block.
func BuildCFG(name string, code *Code) MethodCFG {
	insts := code.Insts
	if len(insts) == 0 {
		return MethodCFG{Name: name, Code: code}
	}

	// Pass 1: Identify block leaders.
	leaders := map[int]bool{0: true}
	handlers := make(map[int]bool)
	for _, h := range code.Handlers {
		if h.Handler < len(insts) {
			leaders[h.Handler] = true
			handlers[h.Handler] = true
		}
		if h.Start < len(insts) {
			leaders[h.Start] = true
		}
		if h.End < len(insts) {
			leaders[h.End] = true
		}
	}
	for i := range insts {
		in := &insts[i]
		targets := in.Targets()
		if targets == nil && !in.Op.EndsFlow() {
			continue
		}
		if i+1 < len(insts) {
			leaders[i+1] = true
		}
		for _, t := range targets {
			if t >= 0 && t < len(insts) {
				leaders[t] = true
			}
		}
	}

	sorted := make([]int, 0, len(leaders))
	for idx := range leaders {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	// Pass 2: Partition into blocks.
	blocks := make([]BasicBlock, len(sorted))
	leaderToBlock := make(map[int]int, len(sorted))
	for i, start := range sorted {
		end := len(insts)
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		blocks[i] = BasicBlock{
			ID:        i,
			Start:     start,
			End:       end,
			IsEntry:   start == 0,
			IsHandler: handlers[start],
		}
		leaderToBlock[start] = i
	}

	// Pass 3: Compute successors.
	for i := range blocks {
		blk := &blocks[i]
		last := &insts[blk.End-1]
		next, hasNext := leaderToBlock[blk.End]

		switch {
		case last.Switch != nil:
			if bid, ok := leaderToBlock[last.Switch.Default]; ok {
				blk.Succs = append(blk.Succs, Succ{BlockID: bid, Cond: "default"})
			}
			for _, t := range last.Switch.Targets {
				if bid, ok := leaderToBlock[t]; ok {
					blk.Succs = append(blk.Succs, Succ{BlockID: bid, Cond: "case"})
				}
			}
		case last.Op.IsConditional():
			if bid, ok := leaderToBlock[last.Target]; ok {
				blk.Succs = append(blk.Succs, Succ{BlockID: bid, Cond: "T"})
			}
			if hasNext {
				blk.Succs = append(blk.Succs, Succ{BlockID: next, Cond: "F"})
			}
		case last.Op.IsBranch():
			if bid, ok := leaderToBlock[last.Target]; ok {
				blk.Succs = append(blk.Succs, Succ{BlockID: bid})
			}
			if (last.Op == OpJsr || last.Op == OpJsrW) && hasNext {
				blk.Succs = append(blk.Succs, Succ{BlockID: next, Cond: "F"})
			}
		case last.Op.IsReturn() || last.Op == OpAthrow || last.Op == OpRet:
			blk.IsTerm = true
		default:
			if hasNext {
				blk.Succs = append(blk.Succs, Succ{BlockID: next})
			}
		}

		for _, h := range code.Handlers {
			if h.Start < blk.End && blk.Start < h.End {
				if bid, ok := leaderToBlock[h.Handler]; ok {
					blk.Succs = append(blk.Succs, Succ{BlockID: bid, Cond: "catch"})
				}
			}
		}
	}

	return MethodCFG{
		Name:   name,
		Blocks: blocks,
		Code:   code,
	}
}
