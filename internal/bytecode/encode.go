package bytecode

import (
	"fmt"
	"math"

	"hyinit/internal/classfile"
)

const maxCodeLength = 65535

// Layout is the byte placement of a code sequence.
type Layout struct {
	// Offsets[i] is the byte offset of instruction i; the final element is
	// the code length.
	Offsets []int
	long    []bool // goto/jsr promoted to goto_w/jsr_w
}

// Layout assigns byte offsets to every instruction. Unconditional jumps
// whose distance does not fit 16 bits are promoted to their wide forms until
// the placement is stable; a conditional branch that does not fit fails with
// ErrBranchOutOfRange.
func (c *Code) Layout() (*Layout, error) {
	n := len(c.Insts)
	for i := range c.Insts {
		if c.Insts[i].Op.IsSwitch() && c.Insts[i].Switch == nil {
			return nil, fmt.Errorf("%w: %s at %d has no table", ErrBadEdit, c.Insts[i].Op, i)
		}
		for _, t := range c.Insts[i].Targets() {
			if t < 0 || t >= n {
				return nil, fmt.Errorf("%w: %s at %d -> %d", ErrBadTarget, c.Insts[i].Op, i, t)
			}
		}
	}

	l := &Layout{Offsets: make([]int, n+1), long: make([]bool, n)}
	for {
		pc := 0
		for i := range c.Insts {
			l.Offsets[i] = pc
			pc += c.Insts[i].size(pc, l.long[i])
		}
		l.Offsets[n] = pc

		changed := false
		for i := range c.Insts {
			in := &c.Insts[i]
			if in.Op.Format() != FmtBranch || l.long[i] {
				continue
			}
			d := l.Offsets[in.Target] - l.Offsets[i]
			if d >= math.MinInt16 && d <= math.MaxInt16 {
				continue
			}
			if in.Op != OpGoto && in.Op != OpJsr {
				return nil, fmt.Errorf("%w: %s at %d spans %d bytes", ErrBranchOutOfRange, in.Op, i, d)
			}
			l.long[i] = true
			changed = true
		}
		if !changed {
			break
		}
	}
	if l.Offsets[n] > maxCodeLength {
		return nil, fmt.Errorf("%w: %d", ErrCodeTooLarge, l.Offsets[n])
	}
	return l, nil
}

func switchPad(pc int) int { return (4 - (pc+1)%4) % 4 }

func (in *Instruction) wideLocal() bool { return in.Wide || in.Local > 0xFF }

func (in *Instruction) size(pc int, long bool) int {
	switch in.Op.Format() {
	case FmtS1, FmtNewArray:
		return 2
	case FmtS2, FmtCP:
		return 3
	case FmtLdc:
		if in.Index > 0xFF {
			return 3
		}
		return 2
	case FmtLocal:
		if in.wideLocal() {
			return 4
		}
		return 2
	case FmtIinc:
		if in.wideLocal() || in.Const < math.MinInt8 || in.Const > math.MaxInt8 {
			return 6
		}
		return 3
	case FmtBranch:
		if long {
			return 5
		}
		return 3
	case FmtBranchW, FmtInvokeInterface, FmtInvokeDynamic:
		return 5
	case FmtMultiANewArray:
		return 4
	case FmtTableSwitch:
		return 1 + switchPad(pc) + 12 + 4*len(in.Switch.Targets)
	case FmtLookupSwitch:
		return 1 + switchPad(pc) + 8 + 8*len(in.Switch.Targets)
	}
	return 1
}

// Encode serializes the code into the body of a Code attribute. The pool of
// cls is used to intern the StackMapTable name when a regenerated table has
// to be added to a method that had none.
func (c *Code) Encode(cls *classfile.Class) ([]byte, error) {
	l, err := c.Layout()
	if err != nil {
		return nil, err
	}
	off := l.Offsets
	n := len(c.Insts)

	w := classfile.NewWriter(off[n] + 64)
	w.WriteUint16(c.MaxStack)
	w.WriteUint16(c.MaxLocals)
	w.WriteUint32(uint32(off[n]))
	for i := range c.Insts {
		c.Insts[i].encode(w, off[i], l.long[i], off)
	}

	var handlers []Handler
	for _, h := range c.Handlers {
		if h.Start < h.End && h.End <= n && h.Handler < n {
			handlers = append(handlers, h)
		}
	}
	w.WriteUint16(uint16(len(handlers)))
	for _, h := range handlers {
		w.WriteUint16(uint16(off[h.Start]))
		w.WriteUint16(uint16(off[h.End]))
		w.WriteUint16(uint16(off[h.Handler]))
		w.WriteUint16(h.CatchType)
	}

	attrs, err := c.encodeAttributes(cls, off)
	if err != nil {
		return nil, err
	}
	classfile.WriteAttributes(w, attrs)
	return w.Bytes(), nil
}

func (c *Code) encodeAttributes(cls *classfile.Class, off []int) ([]classfile.Attribute, error) {
	var out []classfile.Attribute
	seen := make(map[string]bool)
	for _, a := range c.Attributes {
		name := cls.AttributeName(a)
		switch name {
		case classfile.AttrLineNumberTable, classfile.AttrLocalVariableTable,
			classfile.AttrLocalVariableTypeTable, classfile.AttrStackMapTable:
			// Split tables are merged on decode and written back as one.
			if seen[name] {
				continue
			}
			seen[name] = true
		}
		switch name {
		case classfile.AttrLineNumberTable:
			out = append(out, classfile.Attribute{NameIndex: a.NameIndex, Data: encodeLines(c.Lines, off)})
		case classfile.AttrLocalVariableTable:
			out = append(out, classfile.Attribute{NameIndex: a.NameIndex, Data: encodeLocals(c.Locals, off)})
		case classfile.AttrLocalVariableTypeTable:
			out = append(out, classfile.Attribute{NameIndex: a.NameIndex, Data: encodeLocals(c.LocalTypes, off)})
		case classfile.AttrStackMapTable:
			switch {
			case !c.stackMapSet:
				out = append(out, a)
			case c.stackMap != nil:
				out = append(out, classfile.Attribute{NameIndex: a.NameIndex, Data: c.stackMap})
			}
		default:
			out = append(out, a)
		}
	}
	if c.stackMapSet && c.stackMap != nil && !seen[classfile.AttrStackMapTable] {
		idx, err := cls.Pool.AddUtf8(classfile.AttrStackMapTable)
		if err != nil {
			return nil, err
		}
		out = append(out, classfile.Attribute{NameIndex: idx, Data: c.stackMap})
	}
	return out, nil
}

func encodeLines(lines []LineNumber, off []int) []byte {
	n := len(off) - 1
	var kept []LineNumber
	for _, ln := range lines {
		if ln.Start >= 0 && ln.Start < n {
			kept = append(kept, ln)
		}
	}
	w := classfile.NewWriter(2 + 4*len(kept))
	w.WriteUint16(uint16(len(kept)))
	for _, ln := range kept {
		w.WriteUint16(uint16(off[ln.Start]))
		w.WriteUint16(ln.Line)
	}
	return w.Bytes()
}

func encodeLocals(vars []LocalVar, off []int) []byte {
	n := len(off) - 1
	var kept []LocalVar
	for _, v := range vars {
		if v.Start >= 0 && v.Start <= v.End && v.End <= n {
			kept = append(kept, v)
		}
	}
	w := classfile.NewWriter(2 + 10*len(kept))
	w.WriteUint16(uint16(len(kept)))
	for _, v := range kept {
		w.WriteUint16(uint16(off[v.Start]))
		w.WriteUint16(uint16(off[v.End] - off[v.Start]))
		w.WriteUint16(v.NameIndex)
		w.WriteUint16(v.DescIndex)
		w.WriteUint16(v.Slot)
	}
	return w.Bytes()
}

func (in *Instruction) encode(w *classfile.Writer, pc int, long bool, off []int) {
	switch in.Op.Format() {
	case FmtNone:
		w.WriteUint8(uint8(in.Op))
	case FmtS1, FmtNewArray:
		w.WriteUint8(uint8(in.Op))
		w.WriteUint8(uint8(in.Const))
	case FmtS2:
		w.WriteUint8(uint8(in.Op))
		w.WriteUint16(uint16(in.Const))
	case FmtLdc:
		if in.Index > 0xFF {
			w.WriteUint8(uint8(OpLdcW))
			w.WriteUint16(in.Index)
			return
		}
		w.WriteUint8(uint8(in.Op))
		w.WriteUint8(uint8(in.Index))
	case FmtCP:
		w.WriteUint8(uint8(in.Op))
		w.WriteUint16(in.Index)
	case FmtLocal:
		if in.wideLocal() {
			w.WriteUint8(uint8(OpWide))
			w.WriteUint8(uint8(in.Op))
			w.WriteUint16(uint16(in.Local))
			return
		}
		w.WriteUint8(uint8(in.Op))
		w.WriteUint8(uint8(in.Local))
	case FmtIinc:
		if in.wideLocal() || in.Const < math.MinInt8 || in.Const > math.MaxInt8 {
			w.WriteUint8(uint8(OpWide))
			w.WriteUint8(uint8(in.Op))
			w.WriteUint16(uint16(in.Local))
			w.WriteUint16(uint16(int16(in.Const)))
			return
		}
		w.WriteUint8(uint8(in.Op))
		w.WriteUint8(uint8(in.Local))
		w.WriteUint8(uint8(int8(in.Const)))
	case FmtBranch:
		d := off[in.Target] - pc
		if long {
			op := OpGotoW
			if in.Op == OpJsr {
				op = OpJsrW
			}
			w.WriteUint8(uint8(op))
			w.WriteUint32(uint32(int32(d)))
			return
		}
		w.WriteUint8(uint8(in.Op))
		w.WriteUint16(uint16(int16(d)))
	case FmtBranchW:
		w.WriteUint8(uint8(in.Op))
		w.WriteUint32(uint32(int32(off[in.Target] - pc)))
	case FmtTableSwitch, FmtLookupSwitch:
		w.WriteUint8(uint8(in.Op))
		for range switchPad(pc) {
			w.WriteUint8(0)
		}
		sw := in.Switch
		w.WriteUint32(uint32(int32(off[sw.Default] - pc)))
		if in.Op == OpTableswitch {
			w.WriteUint32(uint32(sw.Low))
			w.WriteUint32(uint32(sw.High))
			for _, t := range sw.Targets {
				w.WriteUint32(uint32(int32(off[t] - pc)))
			}
			return
		}
		w.WriteUint32(uint32(len(sw.Keys)))
		for k, key := range sw.Keys {
			w.WriteUint32(uint32(key))
			w.WriteUint32(uint32(int32(off[sw.Targets[k]] - pc)))
		}
	case FmtInvokeInterface:
		w.WriteUint8(uint8(in.Op))
		w.WriteUint16(in.Index)
		w.WriteUint8(uint8(in.Const))
		w.WriteUint8(0)
	case FmtInvokeDynamic:
		w.WriteUint8(uint8(in.Op))
		w.WriteUint16(in.Index)
		w.WriteUint16(0)
	case FmtMultiANewArray:
		w.WriteUint8(uint8(in.Op))
		w.WriteUint16(in.Index)
		w.WriteUint8(uint8(in.Const))
	}
}
