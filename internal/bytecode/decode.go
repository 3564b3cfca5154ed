package bytecode

import (
	"fmt"

	"hyinit/internal/classfile"
)

// DecodeCode decodes a Code attribute belonging to class c.
func DecodeCode(c *classfile.Class, attr classfile.Attribute) (*Code, error) {
	s := classfile.NewStream(attr.Data)
	code := &Code{}
	var err error
	if code.MaxStack, err = s.ReadUint16(); err != nil {
		return nil, fmt.Errorf("bytecode: max_stack: %w", err)
	}
	if code.MaxLocals, err = s.ReadUint16(); err != nil {
		return nil, fmt.Errorf("bytecode: max_locals: %w", err)
	}
	n, err := s.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("bytecode: code_length: %w", err)
	}
	raw, err := s.ReadBytes(int(n))
	if err != nil {
		return nil, fmt.Errorf("bytecode: code: %w", err)
	}

	insts, offsets, err := DecodeInsts(raw)
	if err != nil {
		return nil, err
	}
	code.Insts = insts

	// at[off] is the index of the instruction starting at off, -1 inside an
	// instruction; at[len(raw)] is the end of the code.
	at := make([]int, len(raw)+1)
	for i := range at {
		at[i] = -1
	}
	for i, off := range offsets {
		at[off] = i
	}
	at[len(raw)] = len(insts)
	index := func(off int, end bool) (int, bool) {
		if off < 0 || off > len(raw) || (off == len(raw) && !end) {
			return 0, false
		}
		i := at[off]
		return i, i >= 0
	}

	for i := range code.Insts {
		in := &code.Insts[i]
		if in.Op.IsBranch() {
			t, ok := index(in.Target, false)
			if !ok {
				return nil, fmt.Errorf("%w: %s at %d -> %d", ErrBadTarget, in.Op, offsets[i], in.Target)
			}
			in.Target = t
		}
		if in.Switch != nil {
			t, ok := index(in.Switch.Default, false)
			if !ok {
				return nil, fmt.Errorf("%w: %s default at %d", ErrBadTarget, in.Op, offsets[i])
			}
			in.Switch.Default = t
			for k, off := range in.Switch.Targets {
				t, ok := index(off, false)
				if !ok {
					return nil, fmt.Errorf("%w: %s case at %d", ErrBadTarget, in.Op, offsets[i])
				}
				in.Switch.Targets[k] = t
			}
		}
	}

	hn, err := s.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("bytecode: exception_table_length: %w", err)
	}
	for range hn {
		var v [4]uint16
		for k := range v {
			if v[k], err = s.ReadUint16(); err != nil {
				return nil, fmt.Errorf("bytecode: exception table: %w", err)
			}
		}
		start, ok1 := index(int(v[0]), false)
		end, ok2 := index(int(v[1]), true)
		handler, ok3 := index(int(v[2]), false)
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("%w: handler [%d,%d) -> %d", ErrBadRange, v[0], v[1], v[2])
		}
		code.Handlers = append(code.Handlers, Handler{Start: start, End: end, Handler: handler, CatchType: v[3]})
	}

	if code.Attributes, err = classfile.ReadAttributes(s); err != nil {
		return nil, fmt.Errorf("bytecode: code attributes: %w", err)
	}
	if s.Remaining() != 0 {
		return nil, ErrTrailingCode
	}

	for _, a := range code.Attributes {
		switch c.AttributeName(a) {
		case classfile.AttrStackMapTable:
			code.hasFrames = true
		case classfile.AttrLineNumberTable:
			lines, err := decodeLines(a.Data, index)
			if err != nil {
				return nil, err
			}
			code.Lines = append(code.Lines, lines...)
		case classfile.AttrLocalVariableTable:
			vars, err := decodeLocals(a.Data, index)
			if err != nil {
				return nil, err
			}
			code.Locals = append(code.Locals, vars...)
		case classfile.AttrLocalVariableTypeTable:
			vars, err := decodeLocals(a.Data, index)
			if err != nil {
				return nil, err
			}
			code.LocalTypes = append(code.LocalTypes, vars...)
		}
	}
	return code, nil
}

type indexFunc func(off int, end bool) (int, bool)

func decodeLines(data []byte, index indexFunc) ([]LineNumber, error) {
	s := classfile.NewStream(data)
	n, err := s.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("bytecode: LineNumberTable: %w", err)
	}
	out := make([]LineNumber, 0, n)
	for range n {
		pc, err := s.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("bytecode: LineNumberTable: %w", err)
		}
		line, err := s.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("bytecode: LineNumberTable: %w", err)
		}
		start, ok := index(int(pc), false)
		if !ok {
			return nil, fmt.Errorf("%w: line %d at pc %d", ErrBadRange, line, pc)
		}
		out = append(out, LineNumber{Start: start, Line: line})
	}
	return out, nil
}

func decodeLocals(data []byte, index indexFunc) ([]LocalVar, error) {
	s := classfile.NewStream(data)
	n, err := s.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("bytecode: local variable table: %w", err)
	}
	out := make([]LocalVar, 0, n)
	for range n {
		var v [5]uint16
		for k := range v {
			if v[k], err = s.ReadUint16(); err != nil {
				return nil, fmt.Errorf("bytecode: local variable table: %w", err)
			}
		}
		start, ok1 := index(int(v[0]), true)
		end, ok2 := index(int(v[0])+int(v[1]), true)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: local %d [%d,+%d)", ErrBadRange, v[4], v[0], v[1])
		}
		out = append(out, LocalVar{Start: start, End: end, NameIndex: v[2], DescIndex: v[3], Slot: v[4]})
	}
	return out, nil
}

// DecodeInsts decodes a raw code array. Branch and switch targets are left
// as absolute byte offsets; offsets[i] is the start of instruction i.
func DecodeInsts(raw []byte) (insts []Instruction, offsets []int, err error) {
	s := classfile.NewStream(raw)
	for s.Remaining() > 0 {
		pc := s.Position()
		in, err := decodeInst(s, pc)
		if err != nil {
			return nil, nil, fmt.Errorf("bytecode: at pc %d: %w", pc, err)
		}
		in.Origin = len(insts)
		insts = append(insts, in)
		offsets = append(offsets, pc)
	}
	return insts, offsets, nil
}

func decodeInst(s *classfile.Stream, pc int) (Instruction, error) {
	b, err := s.ReadUint8()
	if err != nil {
		return Instruction{}, err
	}
	in := Instruction{Op: Opcode(b)}
	if in.Op == OpWide {
		return decodeWide(s)
	}
	if !in.Op.Valid() {
		return in, fmt.Errorf("%w: 0x%02x", ErrBadOpcode, b)
	}
	if _, slot, ok := in.Op.ImplicitLocal(); ok {
		in.Local = slot
	}

	switch in.Op.Format() {
	case FmtNone:
	case FmtS1:
		v, err := s.ReadInt8()
		in.Const = int32(v)
		return in, err
	case FmtS2:
		v, err := s.ReadInt16()
		in.Const = int32(v)
		return in, err
	case FmtLdc:
		v, err := s.ReadUint8()
		in.Index = uint16(v)
		return in, err
	case FmtCP:
		in.Index, err = s.ReadUint16()
		return in, err
	case FmtLocal:
		v, err := s.ReadUint8()
		in.Local = int(v)
		return in, err
	case FmtIinc:
		v, err := s.ReadUint8()
		if err != nil {
			return in, err
		}
		d, err := s.ReadInt8()
		in.Local, in.Const = int(v), int32(d)
		return in, err
	case FmtBranch:
		d, err := s.ReadInt16()
		in.Target = pc + int(d)
		return in, err
	case FmtBranchW:
		d, err := s.ReadInt32()
		in.Target = pc + int(d)
		return in, err
	case FmtTableSwitch:
		s.Align(0, 4)
		def, err := s.ReadInt32()
		if err != nil {
			return in, err
		}
		low, err := s.ReadInt32()
		if err != nil {
			return in, err
		}
		high, err := s.ReadInt32()
		if err != nil {
			return in, err
		}
		if high < low || int64(high)-int64(low)+1 > int64(s.Remaining()/4) {
			return in, fmt.Errorf("%w: tableswitch range %d..%d", ErrBadOpcode, low, high)
		}
		sw := &Switch{Default: pc + int(def), Low: low, High: high}
		for k := int64(low); k <= int64(high); k++ {
			d, err := s.ReadInt32()
			if err != nil {
				return in, err
			}
			sw.Targets = append(sw.Targets, pc+int(d))
		}
		in.Switch = sw
	case FmtLookupSwitch:
		s.Align(0, 4)
		def, err := s.ReadInt32()
		if err != nil {
			return in, err
		}
		n, err := s.ReadInt32()
		if err != nil {
			return in, err
		}
		if n < 0 || int(n) > s.Remaining()/8 {
			return in, fmt.Errorf("%w: lookupswitch npairs %d", ErrBadOpcode, n)
		}
		sw := &Switch{Default: pc + int(def)}
		for range n {
			key, err := s.ReadInt32()
			if err != nil {
				return in, err
			}
			d, err := s.ReadInt32()
			if err != nil {
				return in, err
			}
			sw.Keys = append(sw.Keys, key)
			sw.Targets = append(sw.Targets, pc+int(d))
		}
		in.Switch = sw
	case FmtInvokeInterface:
		if in.Index, err = s.ReadUint16(); err != nil {
			return in, err
		}
		count, err := s.ReadUint8()
		if err != nil {
			return in, err
		}
		in.Const = int32(count)
		_, err = s.ReadUint8()
		return in, err
	case FmtInvokeDynamic:
		if in.Index, err = s.ReadUint16(); err != nil {
			return in, err
		}
		_, err = s.ReadUint16()
		return in, err
	case FmtNewArray:
		v, err := s.ReadUint8()
		in.Const = int32(v)
		return in, err
	case FmtMultiANewArray:
		if in.Index, err = s.ReadUint16(); err != nil {
			return in, err
		}
		v, err := s.ReadUint8()
		in.Const = int32(v)
		return in, err
	}
	return in, nil
}

func decodeWide(s *classfile.Stream) (Instruction, error) {
	b, err := s.ReadUint8()
	if err != nil {
		return Instruction{}, err
	}
	in := Instruction{Op: Opcode(b), Wide: true}
	f := in.Op.Format()
	if f != FmtLocal && f != FmtIinc {
		return in, fmt.Errorf("%w: wide %s", ErrBadOpcode, in.Op)
	}
	v, err := s.ReadUint16()
	if err != nil {
		return in, err
	}
	in.Local = int(v)
	if f == FmtIinc {
		d, err := s.ReadInt16()
		in.Const = int32(d)
		return in, err
	}
	return in, nil
}
