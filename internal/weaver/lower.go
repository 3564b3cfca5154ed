package weaver

import (
	"math"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
)

// proceedOrigin marks the placeholder Lower emits for patch.OpProceed.
const proceedOrigin = -2

// Lower turns patch ops into instructions, interning every symbolic operand
// into pool. Branch targets are body-local: a label defined after the last
// op addresses the instruction that follows the body.
func Lower(pool *classfile.Pool, body []patch.Op) ([]bytecode.Instruction, error) {
	labels := make(map[string]int)
	n := 0
	for i, op := range body {
		if op.Code == patch.OpLabel {
			if _, dup := labels[op.Label]; dup || op.Label == "" {
				return nil, badBody(i, op, "label %q redefined", op.Label)
			}
			labels[op.Label] = n
			continue
		}
		n++
	}

	out := make([]bytecode.Instruction, 0, n)
	for i, op := range body {
		if op.Code == patch.OpLabel {
			continue
		}
		if op.Code == patch.OpProceed {
			out = append(out, bytecode.Instruction{Op: bytecode.OpNop, Origin: proceedOrigin})
			continue
		}
		in, err := lowerOp(pool, labels, i, op)
		if err != nil {
			return nil, err
		}
		in.Origin = -1
		out = append(out, in)
	}
	return out, nil
}

func lowerOp(pool *classfile.Pool, labels map[string]int, i int, op patch.Op) (bytecode.Instruction, error) {
	switch op.Code {
	case patch.OpPush:
		return push(pool, op.Int)
	case patch.OpLdc, "ldc_w", "ldc2_w":
		return ldc(pool, i, op)
	}

	code, ok := bytecode.Lookup(op.Code)
	if !ok || !code.Valid() {
		return bytecode.Instruction{}, badBody(i, op, "unknown mnemonic")
	}
	if code.IsJSR() {
		return bytecode.Instruction{}, badBody(i, op, "subroutines are not supported")
	}
	in := bytecode.Instruction{Op: code}
	var err error
	switch code.Format() {
	case bytecode.FmtNone:
		if _, slot, short := code.ImplicitLocal(); short {
			in.Local = slot
		}
	case bytecode.FmtS1:
		if op.Int < math.MinInt8 || op.Int > math.MaxInt8 {
			return in, badBody(i, op, "%d does not fit a byte", op.Int)
		}
		in.Const = op.Int
	case bytecode.FmtS2:
		if op.Int < math.MinInt16 || op.Int > math.MaxInt16 {
			return in, badBody(i, op, "%d does not fit a short", op.Int)
		}
		in.Const = op.Int
	case bytecode.FmtLocal:
		if op.Local < 0 || op.Local > math.MaxUint16 {
			return in, badBody(i, op, "local %d", op.Local)
		}
		in.Local = op.Local
	case bytecode.FmtIinc:
		if op.Local < 0 || op.Local > math.MaxUint16 || op.Int < math.MinInt16 || op.Int > math.MaxInt16 {
			return in, badBody(i, op, "iinc %d by %d", op.Local, op.Int)
		}
		in.Local, in.Const = op.Local, op.Int
	case bytecode.FmtBranch, bytecode.FmtBranchW:
		t, ok := labels[op.Label]
		if !ok {
			return in, badBody(i, op, "undefined label %q", op.Label)
		}
		in.Target = t
	case bytecode.FmtCP:
		in.Index, err = memberOrClass(pool, code, op)
	case bytecode.FmtInvokeInterface:
		var mt classfile.MethodType
		if mt, err = classfile.ParseMethodDescriptor(op.Desc); err == nil {
			in.Const = int32(mt.ArgSlots() + 1)
			in.Index, err = pool.AddInterfaceMethodref(op.Owner, op.Name, op.Desc)
		}
	case bytecode.FmtNewArray:
		if op.Int < 4 || op.Int > 11 {
			return in, badBody(i, op, "array type %d", op.Int)
		}
		in.Const = op.Int
	case bytecode.FmtMultiANewArray:
		if op.Int < 1 || op.Int > math.MaxUint8 {
			return in, badBody(i, op, "%d dimensions", op.Int)
		}
		in.Const = op.Int
		in.Index, err = pool.AddClass(op.Owner)
	default:
		return in, badBody(i, op, "not supported in patch bodies")
	}
	if err != nil {
		return in, badBody(i, op, "%v", err)
	}
	return in, nil
}

func memberOrClass(pool *classfile.Pool, code bytecode.Opcode, op patch.Op) (uint16, error) {
	switch {
	case code >= bytecode.OpGetstatic && code <= bytecode.OpPutfield:
		if !classfile.ValidFieldDescriptor(op.Desc) {
			return 0, classfile.ErrBadDescriptor
		}
		return pool.AddFieldref(op.Owner, op.Name, op.Desc)
	case code.IsInvoke():
		if _, err := classfile.ParseMethodDescriptor(op.Desc); err != nil {
			return 0, err
		}
		if op.Interface {
			return pool.AddInterfaceMethodref(op.Owner, op.Name, op.Desc)
		}
		return pool.AddMethodref(op.Owner, op.Name, op.Desc)
	}
	if op.Owner == "" {
		return 0, classfile.ErrBadDescriptor
	}
	return pool.AddClass(op.Owner)
}

func push(pool *classfile.Pool, v int32) (bytecode.Instruction, error) {
	switch {
	case v >= -1 && v <= 5:
		return bytecode.Instruction{Op: bytecode.OpIconstM1 + bytecode.Opcode(v+1)}, nil
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return bytecode.Instruction{Op: bytecode.OpBipush, Const: v}, nil
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return bytecode.Instruction{Op: bytecode.OpSipush, Const: v}, nil
	}
	idx, err := pool.AddInteger(v)
	return bytecode.Instruction{Op: bytecode.OpLdc, Index: idx}, err
}

func ldc(pool *classfile.Pool, i int, op patch.Op) (bytecode.Instruction, error) {
	c := op.Const
	if c == nil {
		return bytecode.Instruction{}, badBody(i, op, "missing constant")
	}
	var (
		idx uint16
		err error
	)
	in := bytecode.Instruction{Op: bytecode.OpLdc}
	switch c.Kind {
	case patch.ConstInt:
		if c.Int < math.MinInt32 || c.Int > math.MaxInt32 {
			return in, badBody(i, op, "%d does not fit an int", c.Int)
		}
		idx, err = pool.AddInteger(int32(c.Int))
	case patch.ConstFloat:
		idx, err = pool.AddFloat(float32(c.Float))
	case patch.ConstString:
		idx, err = pool.AddString(c.String)
	case patch.ConstClass:
		if c.String == "" {
			return in, badBody(i, op, "empty class name")
		}
		idx, err = pool.AddClass(patch.InternalName(c.String))
	case patch.ConstLong:
		in.Op = bytecode.OpLdc2W
		idx, err = pool.AddLong(c.Int)
	case patch.ConstDouble:
		in.Op = bytecode.OpLdc2W
		idx, err = pool.AddDouble(c.Float)
	default:
		return in, badBody(i, op, "unknown constant kind %q", c.Kind)
	}
	if err != nil {
		return in, badBody(i, op, "%v", err)
	}
	in.Index = idx
	return in, nil
}
