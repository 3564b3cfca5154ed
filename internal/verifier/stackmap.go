package verifier

import (
	"fmt"
	"sort"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

// verification_type_info tags.
const (
	itemTop               = 0
	itemInteger           = 1
	itemFloat             = 2
	itemDouble            = 3
	itemLong              = 4
	itemNull              = 5
	itemUninitializedThis = 6
	itemObject            = 7
	itemUninitialized     = 8

	fullFrame = 255
)

// GenerateFrames analyzes code and installs a freshly computed
// StackMapTable. Unreachable instructions are overwritten with nops ending
// in athrow and dropped from exception ranges, so every frame the table
// needs can be derived. The returned analysis describes the final body.
func GenerateFrames(c *classfile.Class, m *classfile.Method, code *bytecode.Code, opts Options) (*Analysis, error) {
	an, err := Analyze(c, m, code, opts)
	if err != nil {
		return nil, err
	}
	dead := deadRuns(an)
	if len(dead) > 0 {
		neutralize(code, dead)
		if an, err = Analyze(c, m, code, opts); err != nil {
			return nil, err
		}
	}

	l, err := code.Layout()
	if err != nil {
		a := &analyzer{cls: c, method: m, code: code}
		return nil, a.fail(-1, failf(ErrUnsupported, "%v", err))
	}

	deadStart := make(map[int]bool, len(dead))
	for _, r := range dead {
		deadStart[r[0]] = true
	}
	at := framePoints(code)
	w := classfile.NewWriter(64)
	w.WriteUint16(uint16(len(at)))
	prev := -1
	for _, i := range at {
		off := l.Offsets[i]
		delta := off
		if prev >= 0 {
			delta = off - prev - 1
		}
		prev = off

		f := an.Frames[i]
		if f == nil {
			if !deadStart[i] {
				a := &analyzer{cls: c, method: m, code: code}
				return nil, a.fail(i, failf(ErrBadBranchTarget, "no frame for unreachable target"))
			}
			f = &Frame{Stack: []Type{refType(throwableClass)}}
		}
		w.WriteUint8(fullFrame)
		w.WriteUint16(uint16(delta))
		if err := writeTypes(w, c.Pool, l, trimLocals(f.Locals)); err != nil {
			return nil, err
		}
		if err := writeTypes(w, c.Pool, l, f.Stack); err != nil {
			return nil, err
		}
	}
	if len(at) == 0 {
		code.SetStackMap(nil)
	} else {
		code.SetStackMap(w.Bytes())
	}
	return an, nil
}

// deadRuns returns maximal [start, end) runs of unreachable instructions.
func deadRuns(an *Analysis) [][2]int {
	var out [][2]int
	n := len(an.Frames)
	for i := 0; i < n; {
		if an.Reachable(i) {
			i++
			continue
		}
		j := i
		for j < n && !an.Reachable(j) {
			j++
		}
		out = append(out, [2]int{i, j})
		i = j
	}
	return out
}

// neutralize rewrites each dead run as nop ... athrow, keeping the
// instruction count, and cuts the runs out of every exception range.
func neutralize(code *bytecode.Code, dead [][2]int) {
	for _, r := range dead {
		for i := r[0]; i < r[1]; i++ {
			op := bytecode.OpNop
			if i == r[1]-1 {
				op = bytecode.OpAthrow
			}
			code.Insts[i] = bytecode.Instruction{Op: op, Origin: code.Insts[i].Origin}
		}
	}
	var handlers []bytecode.Handler
	for _, h := range code.Handlers {
		parts := []bytecode.Handler{h}
		for _, r := range dead {
			var next []bytecode.Handler
			for _, p := range parts {
				if r[1] <= p.Start || r[0] >= p.End {
					next = append(next, p)
					continue
				}
				if p.Start < r[0] {
					q := p
					q.End = r[0]
					next = append(next, q)
				}
				if r[1] < p.End {
					q := p
					q.Start = r[1]
					next = append(next, q)
				}
			}
			parts = next
		}
		handlers = append(handlers, parts...)
	}
	code.Handlers = handlers
}

// framePoints lists, in order, the instructions that start a basic block:
// branch and switch targets, handler entries and anything following an
// instruction that does not fall through.
func framePoints(code *bytecode.Code) []int {
	n := len(code.Insts)
	need := make(map[int]bool)
	for i := range code.Insts {
		in := &code.Insts[i]
		for _, t := range in.Targets() {
			need[t] = true
		}
		if in.Op.EndsFlow() && i+1 < n {
			need[i+1] = true
		}
	}
	for _, h := range code.Handlers {
		need[h.Handler] = true
	}
	out := make([]int, 0, len(need))
	for i := range need {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// trimLocals drops trailing tops, which a frame leaves implicit.
func trimLocals(locals []Type) []Type {
	n := len(locals)
	for n > 0 && locals[n-1].Kind == Top {
		if n >= 2 && locals[n-2].Wide() {
			break
		}
		n--
	}
	return locals[:n]
}

// writeTypes writes a count followed by verification_type_info entries.
// The top half of a long or double is implied by its first half.
func writeTypes(w *classfile.Writer, pool *classfile.Pool, l *bytecode.Layout, types []Type) error {
	var items []Type
	for k := 0; k < len(types); k++ {
		items = append(items, types[k])
		if types[k].Wide() {
			k++
		}
	}
	w.WriteUint16(uint16(len(items)))
	for _, t := range items {
		switch t.Kind {
		case Top:
			w.WriteUint8(itemTop)
		case Int:
			w.WriteUint8(itemInteger)
		case Float:
			w.WriteUint8(itemFloat)
		case Long:
			w.WriteUint8(itemLong)
		case Double:
			w.WriteUint8(itemDouble)
		case Null:
			w.WriteUint8(itemNull)
		case UninitThis:
			w.WriteUint8(itemUninitializedThis)
		case Uninit:
			w.WriteUint8(itemUninitialized)
			w.WriteUint16(uint16(l.Offsets[t.New]))
		case Ref:
			idx, err := pool.AddClass(t.Name)
			if err != nil {
				return fmt.Errorf("verifier: frame type %s: %w", t.Name, err)
			}
			w.WriteUint8(itemObject)
			w.WriteUint16(idx)
		}
	}
	return nil
}
