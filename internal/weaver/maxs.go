package weaver

import (
	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

// estimate walks a body in order and returns its operand stack peak and
// one past the highest local slot it touches. Branches are not followed;
// the result sizes max_stack and max_locals before the verifier's
// analysis refines them.
func estimate(pool *classfile.Pool, insts []bytecode.Instruction) (stack, locals int) {
	depth := 0
	for i := range insts {
		in := &insts[i]
		depth += stackDelta(pool, in)
		if depth < 0 {
			depth = 0
		}
		stack = max(stack, depth)

		width := 0
		switch {
		case in.Op == bytecode.OpIinc:
			width = 1
		default:
			if _, w, _, ok := in.Op.LocalKind(); ok {
				width = w
			}
		}
		if width > 0 {
			locals = max(locals, in.Local+width)
		}
	}
	return stack, locals
}

// stackDelta is the net operand stack change of one instruction, in slots.
func stackDelta(pool *classfile.Pool, in *bytecode.Instruction) int {
	op := in.Op
	switch {
	case op == bytecode.OpNop:
		return 0
	case op == bytecode.OpLconst0, op == bytecode.OpLconst1, op == bytecode.OpDconst0, op == bytecode.OpDconst1, op == bytecode.OpLdc2W:
		return 2
	case op >= bytecode.OpAconstNull && op <= bytecode.OpLdcW:
		return 1
	case op >= bytecode.OpIload && op <= bytecode.OpAload3:
		_, w, _, _ := op.LocalKind()
		return w
	case op == bytecode.OpLaload, op == bytecode.OpDaload:
		return 0
	case op >= bytecode.OpIaload && op <= bytecode.OpSaload:
		return -1
	case op >= bytecode.OpIstore && op <= bytecode.OpAstore3:
		_, w, _, _ := op.LocalKind()
		return -w
	case op == bytecode.OpLastore, op == bytecode.OpDastore:
		return -4
	case op >= bytecode.OpIastore && op <= bytecode.OpSastore:
		return -3
	case op == bytecode.OpPop:
		return -1
	case op == bytecode.OpPop2:
		return -2
	case op >= bytecode.OpDup && op <= bytecode.OpDupX2:
		return 1
	case op >= bytecode.OpDup2 && op <= bytecode.OpDup2X2:
		return 2
	case op >= bytecode.OpIadd && op <= bytecode.OpDrem:
		if (op-bytecode.OpIadd)%2 == 1 {
			return -2
		}
		return -1
	case op >= bytecode.OpIshl && op <= bytecode.OpLushr:
		return -1
	case op >= bytecode.OpIand && op <= bytecode.OpLxor:
		if (op-bytecode.OpIand)%2 == 1 {
			return -2
		}
		return -1
	case op == bytecode.OpI2l, op == bytecode.OpI2d, op == bytecode.OpF2l, op == bytecode.OpF2d:
		return 1
	case op == bytecode.OpL2i, op == bytecode.OpL2f, op == bytecode.OpD2i, op == bytecode.OpD2f:
		return -1
	case op == bytecode.OpLcmp, op == bytecode.OpDcmpl, op == bytecode.OpDcmpg:
		return -3
	case op == bytecode.OpFcmpl, op == bytecode.OpFcmpg:
		return -1
	case op >= bytecode.OpIfeq && op <= bytecode.OpIfle, op == bytecode.OpIfnull, op == bytecode.OpIfnonnull:
		return -1
	case op >= bytecode.OpIfIcmpeq && op <= bytecode.OpIfAcmpne:
		return -2
	case op == bytecode.OpTableswitch, op == bytecode.OpLookupswitch:
		return -1
	case op == bytecode.OpLreturn, op == bytecode.OpDreturn:
		return -2
	case op >= bytecode.OpIreturn && op <= bytecode.OpAreturn:
		return -1
	case op >= bytecode.OpGetstatic && op <= bytecode.OpPutfield:
		ref, err := pool.Member(in.Index)
		if err != nil {
			return 0
		}
		w := classfile.SlotSize(ref.Desc)
		switch op {
		case bytecode.OpGetstatic:
			return w
		case bytecode.OpPutstatic:
			return -w
		case bytecode.OpGetfield:
			return w - 1
		}
		return -w - 1
	case op.IsInvoke():
		ref, err := pool.Member(in.Index)
		if err != nil {
			return 0
		}
		mt, err := classfile.ParseMethodDescriptor(ref.Desc)
		if err != nil {
			return 0
		}
		d := classfile.SlotSize(mt.Return) - mt.ArgSlots()
		if op != bytecode.OpInvokestatic {
			d--
		}
		return d
	case op == bytecode.OpNew:
		return 1
	case op == bytecode.OpAthrow, op == bytecode.OpMonitorenter, op == bytecode.OpMonitorexit:
		return -1
	case op == bytecode.OpMultianewarray:
		return 1 - int(in.Const)
	}
	return 0
}
