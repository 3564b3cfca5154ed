package verifier

import (
	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

func (a *analyzer) push(f *Frame, t Type) {
	f.Stack = append(f.Stack, t)
	if t.Wide() {
		f.Stack = append(f.Stack, tTop)
	}
	if len(f.Stack) > a.peak {
		a.peak = len(f.Stack)
	}
	if len(f.Stack) > int(a.code.MaxStack) && a.overflowAt < 0 {
		a.overflowAt = a.cur
	}
}

// pop removes one value, two entries for long and double.
func (a *analyzer) pop(f *Frame) (Type, error) {
	n := len(f.Stack)
	if n == 0 {
		return tTop, ErrStackUnderflow
	}
	top := f.Stack[n-1]
	if top.Kind == Top {
		if n < 2 || !f.Stack[n-2].Wide() {
			return tTop, failf(ErrTypeMismatch, "stack holds half of a wide value")
		}
		t := f.Stack[n-2]
		f.Stack = f.Stack[:n-2]
		return t, nil
	}
	f.Stack = f.Stack[:n-1]
	return top, nil
}

func (a *analyzer) popKind(f *Frame, k Kind) error {
	t, err := a.pop(f)
	if err != nil {
		return err
	}
	if t.Kind != k {
		return failf(ErrTypeMismatch, "expected %s on stack, found %s", Type{Kind: k}, t)
	}
	return nil
}

func (a *analyzer) popRef(f *Frame) (Type, error) {
	t, err := a.pop(f)
	if err != nil {
		return t, err
	}
	if !t.IsReference() {
		return t, failf(ErrTypeMismatch, "expected reference on stack, found %s", t)
	}
	return t, nil
}

func (a *analyzer) popInitialized(f *Frame) (Type, error) {
	t, err := a.popRef(f)
	if err != nil {
		return t, err
	}
	if !t.IsInitialized() {
		return t, failf(ErrTypeMismatch, "use of %s object", t)
	}
	return t, nil
}

// popDesc pops a value matching a field descriptor.
func (a *analyzer) popDesc(f *Frame, desc string) error {
	want := typeOf(desc)
	if want.Kind == Ref {
		_, err := a.popInitialized(f)
		return err
	}
	return a.popKind(f, want.Kind)
}

func (a *analyzer) pushDesc(f *Frame, desc string) {
	if desc == "V" {
		return
	}
	a.push(f, typeOf(desc))
}

func (a *analyzer) checkLocal(f *Frame, slot, width int) error {
	if slot < 0 || slot+width > len(f.Locals) {
		return failf(ErrLocalOutOfBounds, "slot %d, max_locals %d", slot, len(f.Locals))
	}
	if slot+width > a.locals {
		a.locals = slot + width
	}
	return nil
}

func (a *analyzer) load(f *Frame, slot int, k Kind) error {
	width := 1
	if k == Long || k == Double {
		width = 2
	}
	if err := a.checkLocal(f, slot, width); err != nil {
		return err
	}
	t := f.Locals[slot]
	switch {
	case k == Ref && t.IsReference():
	case k != Ref && t.Kind == k:
	default:
		return failf(ErrTypeMismatch, "load %s from slot %d holding %s", Type{Kind: k}, slot, t)
	}
	a.push(f, t)
	return nil
}

func (a *analyzer) store(f *Frame, slot int, t Type) error {
	width := 1
	if t.Wide() {
		width = 2
	}
	if err := a.checkLocal(f, slot, width); err != nil {
		return err
	}
	if slot > 0 && f.Locals[slot-1].Wide() {
		f.Locals[slot-1] = tTop
	}
	f.Locals[slot] = t
	if width == 2 {
		f.Locals[slot+1] = tTop
	}
	return nil
}

var kindOfLocalOp = map[bytecode.Opcode]Kind{
	bytecode.OpIload: Int, bytecode.OpLload: Long, bytecode.OpFload: Float, bytecode.OpDload: Double, bytecode.OpAload: Ref,
	bytecode.OpIstore: Int, bytecode.OpLstore: Long, bytecode.OpFstore: Float, bytecode.OpDstore: Double, bytecode.OpAstore: Ref,
}

// arithmetic kind by (op - base) % 4 for the i/l/f/d families.
var numericKinds = [4]Kind{Int, Long, Float, Double}

var conversions = map[bytecode.Opcode][2]Kind{
	bytecode.OpI2l: {Int, Long}, bytecode.OpI2f: {Int, Float}, bytecode.OpI2d: {Int, Double},
	bytecode.OpL2i: {Long, Int}, bytecode.OpL2f: {Long, Float}, bytecode.OpL2d: {Long, Double},
	bytecode.OpF2i: {Float, Int}, bytecode.OpF2l: {Float, Long}, bytecode.OpF2d: {Float, Double},
	bytecode.OpD2i: {Double, Int}, bytecode.OpD2l: {Double, Long}, bytecode.OpD2f: {Double, Float},
	bytecode.OpI2b: {Int, Int}, bytecode.OpI2c: {Int, Int}, bytecode.OpI2s: {Int, Int},
}

func kindType(k Kind) Type { return Type{Kind: k} }

// step applies the effect of one instruction to f.
func (a *analyzer) step(i int, in *bytecode.Instruction, f *Frame) error {
	op := in.Op
	pool := a.cls.Pool

	if base, _, isStore, ok := op.LocalKind(); ok {
		k := kindOfLocalOp[base]
		if !isStore {
			return a.load(f, in.Local, k)
		}
		var t Type
		var err error
		if k == Ref {
			t, err = a.popRef(f)
		} else {
			t = kindType(k)
			err = a.popKind(f, k)
		}
		if err != nil {
			return err
		}
		return a.store(f, in.Local, t)
	}

	switch {
	case op >= bytecode.OpIadd && op <= bytecode.OpDrem:
		k := numericKinds[(op-bytecode.OpIadd)%4]
		if err := a.popKind(f, k); err != nil {
			return err
		}
		if err := a.popKind(f, k); err != nil {
			return err
		}
		a.push(f, kindType(k))
		return nil
	case op >= bytecode.OpIneg && op <= bytecode.OpDneg:
		k := numericKinds[(op-bytecode.OpIneg)%4]
		if err := a.popKind(f, k); err != nil {
			return err
		}
		a.push(f, kindType(k))
		return nil
	case op >= bytecode.OpIshl && op <= bytecode.OpLushr:
		k := Int
		if (op-bytecode.OpIshl)%2 == 1 {
			k = Long
		}
		if err := a.popKind(f, Int); err != nil {
			return err
		}
		if err := a.popKind(f, k); err != nil {
			return err
		}
		a.push(f, kindType(k))
		return nil
	case op >= bytecode.OpIand && op <= bytecode.OpLxor:
		k := Int
		if (op-bytecode.OpIand)%2 == 1 {
			k = Long
		}
		if err := a.popKind(f, k); err != nil {
			return err
		}
		if err := a.popKind(f, k); err != nil {
			return err
		}
		a.push(f, kindType(k))
		return nil
	case op >= bytecode.OpIfeq && op <= bytecode.OpIfle:
		return a.popKind(f, Int)
	case op >= bytecode.OpIfIcmpeq && op <= bytecode.OpIfIcmple:
		if err := a.popKind(f, Int); err != nil {
			return err
		}
		return a.popKind(f, Int)
	}
	if conv, ok := conversions[op]; ok {
		if err := a.popKind(f, conv[0]); err != nil {
			return err
		}
		a.push(f, kindType(conv[1]))
		return nil
	}

	switch op {
	case bytecode.OpNop, bytecode.OpGoto, bytecode.OpGotoW:
	case bytecode.OpAconstNull:
		a.push(f, tNull)
	case bytecode.OpIconstM1, bytecode.OpIconst0, bytecode.OpIconst1, bytecode.OpIconst2,
		bytecode.OpIconst3, bytecode.OpIconst4, bytecode.OpIconst5, bytecode.OpBipush, bytecode.OpSipush:
		a.push(f, tInt)
	case bytecode.OpLconst0, bytecode.OpLconst1:
		a.push(f, tLong)
	case bytecode.OpFconst0, bytecode.OpFconst1, bytecode.OpFconst2:
		a.push(f, tFloat)
	case bytecode.OpDconst0, bytecode.OpDconst1:
		a.push(f, tDouble)
	case bytecode.OpLdc, bytecode.OpLdcW, bytecode.OpLdc2W:
		t, err := a.constType(in.Index, op == bytecode.OpLdc2W)
		if err != nil {
			return err
		}
		a.push(f, t)

	case bytecode.OpIaload, bytecode.OpBaload, bytecode.OpCaload, bytecode.OpSaload,
		bytecode.OpLaload, bytecode.OpFaload, bytecode.OpDaload, bytecode.OpAaload:
		if err := a.popKind(f, Int); err != nil {
			return err
		}
		arr, err := a.popInitialized(f)
		if err != nil {
			return err
		}
		switch op {
		case bytecode.OpLaload:
			a.push(f, tLong)
		case bytecode.OpFaload:
			a.push(f, tFloat)
		case bytecode.OpDaload:
			a.push(f, tDouble)
		case bytecode.OpAaload:
			a.push(f, componentOf(arr))
		default:
			a.push(f, tInt)
		}
	case bytecode.OpIastore, bytecode.OpBastore, bytecode.OpCastore, bytecode.OpSastore,
		bytecode.OpLastore, bytecode.OpFastore, bytecode.OpDastore, bytecode.OpAastore:
		var err error
		switch op {
		case bytecode.OpLastore:
			err = a.popKind(f, Long)
		case bytecode.OpFastore:
			err = a.popKind(f, Float)
		case bytecode.OpDastore:
			err = a.popKind(f, Double)
		case bytecode.OpAastore:
			_, err = a.popInitialized(f)
		default:
			err = a.popKind(f, Int)
		}
		if err != nil {
			return err
		}
		if err := a.popKind(f, Int); err != nil {
			return err
		}
		if _, err := a.popInitialized(f); err != nil {
			return err
		}

	case bytecode.OpPop:
		return a.stackOp(f, 1, 0, false)
	case bytecode.OpPop2:
		return a.stackOp(f, 2, 0, false)
	case bytecode.OpDup:
		return a.stackOp(f, 1, 0, true)
	case bytecode.OpDupX1:
		return a.stackOp(f, 1, 1, true)
	case bytecode.OpDupX2:
		return a.stackOp(f, 1, 2, true)
	case bytecode.OpDup2:
		return a.stackOp(f, 2, 0, true)
	case bytecode.OpDup2X1:
		return a.stackOp(f, 2, 1, true)
	case bytecode.OpDup2X2:
		return a.stackOp(f, 2, 2, true)
	case bytecode.OpSwap:
		n := len(f.Stack)
		if n < 2 {
			return ErrStackUnderflow
		}
		if f.Stack[n-1].Kind == Top || f.Stack[n-2].Kind == Top || f.Stack[n-2].Wide() {
			return failf(ErrTypeMismatch, "swap of a wide value")
		}
		f.Stack[n-1], f.Stack[n-2] = f.Stack[n-2], f.Stack[n-1]

	case bytecode.OpIinc:
		if err := a.checkLocal(f, in.Local, 1); err != nil {
			return err
		}
		if f.Locals[in.Local].Kind != Int {
			return failf(ErrTypeMismatch, "iinc of slot %d holding %s", in.Local, f.Locals[in.Local])
		}

	case bytecode.OpLcmp:
		return a.compare(f, Long)
	case bytecode.OpFcmpl, bytecode.OpFcmpg:
		return a.compare(f, Float)
	case bytecode.OpDcmpl, bytecode.OpDcmpg:
		return a.compare(f, Double)

	case bytecode.OpIfAcmpeq, bytecode.OpIfAcmpne:
		if _, err := a.popRef(f); err != nil {
			return err
		}
		_, err := a.popRef(f)
		return err
	case bytecode.OpIfnull, bytecode.OpIfnonnull:
		_, err := a.popRef(f)
		return err

	case bytecode.OpJsr, bytecode.OpJsrW, bytecode.OpRet:
		if classfile.Profile(a.cls.Major).AllowJSR {
			return failf(ErrUnsupported, "%s: subroutines are not analyzed", op)
		}
		return failf(ErrUnsupported, "%s is illegal in class version %d", op, a.cls.Major)

	case bytecode.OpTableswitch, bytecode.OpLookupswitch:
		return a.popKind(f, Int)

	case bytecode.OpIreturn, bytecode.OpLreturn, bytecode.OpFreturn, bytecode.OpDreturn, bytecode.OpAreturn, bytecode.OpReturn:
		return a.ret0(f, op)

	case bytecode.OpGetstatic, bytecode.OpPutstatic, bytecode.OpGetfield, bytecode.OpPutfield:
		ref, err := a.member(in.Index, classfile.ConstantFieldref)
		if err != nil {
			return err
		}
		switch op {
		case bytecode.OpGetstatic:
			a.pushDesc(f, ref.Desc)
		case bytecode.OpPutstatic:
			return a.popDesc(f, ref.Desc)
		case bytecode.OpGetfield:
			if _, err := a.popInitialized(f); err != nil {
				return err
			}
			a.pushDesc(f, ref.Desc)
		case bytecode.OpPutfield:
			if err := a.popDesc(f, ref.Desc); err != nil {
				return err
			}
			// Fields of this may be set before the super constructor runs.
			recv, err := a.popRef(f)
			if err != nil {
				return err
			}
			if !recv.IsInitialized() && recv.Kind != UninitThis {
				return failf(ErrTypeMismatch, "putfield on %s object", recv)
			}
		}

	case bytecode.OpInvokevirtual, bytecode.OpInvokespecial, bytecode.OpInvokestatic, bytecode.OpInvokeinterface:
		return a.invoke(f, in)
	case bytecode.OpInvokedynamic:
		if pool.Tag(in.Index) != classfile.ConstantInvokeDynamic {
			return failf(ErrBadConstant, "invokedynamic #%d is %s", in.Index, pool.Tag(in.Index))
		}
		_, desc, err := pool.DynamicNameAndType(in.Index)
		if err != nil {
			return failf(ErrBadConstant, "%v", err)
		}
		return a.call(f, desc)

	case bytecode.OpNew:
		if _, err := a.className(in.Index); err != nil {
			return err
		}
		a.push(f, Type{Kind: Uninit, New: i})
	case bytecode.OpNewarray:
		name, ok := newArrayTypes[in.Const]
		if !ok {
			return failf(ErrTypeMismatch, "newarray type %d", in.Const)
		}
		if err := a.popKind(f, Int); err != nil {
			return err
		}
		a.push(f, refType(name))
	case bytecode.OpAnewarray:
		name, err := a.className(in.Index)
		if err != nil {
			return err
		}
		if err := a.popKind(f, Int); err != nil {
			return err
		}
		a.push(f, refType(arrayOf(name)))
	case bytecode.OpMultianewarray:
		name, err := a.className(in.Index)
		if err != nil {
			return err
		}
		if in.Const < 1 {
			return failf(ErrTypeMismatch, "multianewarray with %d dimensions", in.Const)
		}
		for range in.Const {
			if err := a.popKind(f, Int); err != nil {
				return err
			}
		}
		a.push(f, refType(name))
	case bytecode.OpArraylength:
		if _, err := a.popInitialized(f); err != nil {
			return err
		}
		a.push(f, tInt)
	case bytecode.OpAthrow, bytecode.OpMonitorenter, bytecode.OpMonitorexit:
		_, err := a.popInitialized(f)
		return err
	case bytecode.OpCheckcast:
		name, err := a.className(in.Index)
		if err != nil {
			return err
		}
		if _, err := a.popInitialized(f); err != nil {
			return err
		}
		a.push(f, refType(name))
	case bytecode.OpInstanceof:
		if _, err := a.className(in.Index); err != nil {
			return err
		}
		if _, err := a.popInitialized(f); err != nil {
			return err
		}
		a.push(f, tInt)
	default:
		return failf(ErrUnsupported, "opcode %s", op)
	}
	return nil
}

func (a *analyzer) compare(f *Frame, k Kind) error {
	if err := a.popKind(f, k); err != nil {
		return err
	}
	if err := a.popKind(f, k); err != nil {
		return err
	}
	a.push(f, tInt)
	return nil
}

// stackOp implements pop, pop2 and the dup family on raw stack entries:
// the top n entries are removed (dup=false) or copied to m entries below
// themselves (dup=true). Neither the moved block nor the insertion point
// may split a long or double.
func (a *analyzer) stackOp(f *Frame, n, m int, dup bool) error {
	size := len(f.Stack)
	if size < n+m {
		return ErrStackUnderflow
	}
	if f.Stack[size-n].Kind == Top || (n == 1 && f.Stack[size-1].Wide()) {
		return failf(ErrTypeMismatch, "operation splits a wide value")
	}
	if !dup {
		f.Stack = f.Stack[:size-n]
		return nil
	}
	at := size - n - m
	if m > 0 && f.Stack[at].Kind == Top {
		return failf(ErrTypeMismatch, "insertion splits a wide value")
	}
	block := append([]Type(nil), f.Stack[size-n:]...)
	out := make([]Type, 0, size+n)
	out = append(out, f.Stack[:at]...)
	out = append(out, block...)
	out = append(out, f.Stack[at:]...)
	f.Stack = out
	if len(f.Stack) > a.peak {
		a.peak = len(f.Stack)
	}
	if len(f.Stack) > int(a.code.MaxStack) && a.overflowAt < 0 {
		a.overflowAt = a.cur
	}
	return nil
}

func (a *analyzer) ret0(f *Frame, op bytecode.Opcode) error {
	want := typeOf(a.ret)
	if a.ret == "V" {
		if op != bytecode.OpReturn {
			return failf(ErrTypeMismatch, "%s in void method", op)
		}
		if a.method.Name == "<init>" && len(f.Locals) > 0 && f.Locals[0].Kind == UninitThis {
			return failf(ErrTypeMismatch, "constructor returns before calling super")
		}
		return nil
	}
	var k Kind
	switch op {
	case bytecode.OpIreturn:
		k = Int
	case bytecode.OpLreturn:
		k = Long
	case bytecode.OpFreturn:
		k = Float
	case bytecode.OpDreturn:
		k = Double
	case bytecode.OpAreturn:
		k = Ref
	default:
		return failf(ErrTypeMismatch, "return in method returning %s", a.ret)
	}
	if want.Kind != k {
		return failf(ErrTypeMismatch, "%s in method returning %s", op, a.ret)
	}
	if k == Ref {
		_, err := a.popInitialized(f)
		return err
	}
	return a.popKind(f, k)
}

func (a *analyzer) member(index uint16, tags ...classfile.ConstantTag) (classfile.MemberRef, error) {
	ref, err := a.cls.Pool.Member(index)
	if err != nil {
		return ref, failf(ErrBadConstant, "#%d: %v", index, err)
	}
	for _, t := range tags {
		if ref.Tag == t {
			return ref, nil
		}
	}
	return ref, failf(ErrBadConstant, "#%d is %s", index, ref.Tag)
}

func (a *analyzer) className(index uint16) (string, error) {
	name, err := a.cls.Pool.ClassName(index)
	if err != nil {
		return "", failf(ErrBadConstant, "#%d: %v", index, err)
	}
	return name, nil
}

func (a *analyzer) invoke(f *Frame, in *bytecode.Instruction) error {
	tags := []classfile.ConstantTag{classfile.ConstantMethodref}
	switch in.Op {
	case bytecode.OpInvokeinterface:
		tags = []classfile.ConstantTag{classfile.ConstantInterfaceMethodref}
	case bytecode.OpInvokespecial, bytecode.OpInvokestatic:
		tags = append(tags, classfile.ConstantInterfaceMethodref)
	}
	ref, err := a.member(in.Index, tags...)
	if err != nil {
		return err
	}
	mt, err := classfile.ParseMethodDescriptor(ref.Desc)
	if err != nil {
		return failf(ErrBadConstant, "%s: %v", ref, err)
	}
	for k := len(mt.Params) - 1; k >= 0; k-- {
		if err := a.popDesc(f, mt.Params[k]); err != nil {
			return err
		}
	}
	if in.Op == bytecode.OpInvokestatic {
		a.pushDesc(f, mt.Return)
		return nil
	}

	recv, err := a.popRef(f)
	if err != nil {
		return err
	}
	if ref.Name != "<init>" {
		if !recv.IsInitialized() {
			return failf(ErrTypeMismatch, "call %s on %s object", ref, recv)
		}
		a.pushDesc(f, mt.Return)
		return nil
	}
	if in.Op != bytecode.OpInvokespecial {
		return failf(ErrTypeMismatch, "%s of a constructor", in.Op)
	}

	var init Type
	switch recv.Kind {
	case UninitThis:
		init = refType(a.cls.Name)
	case Uninit:
		name, err := a.className(a.code.Insts[recv.New].Index)
		if err != nil {
			return err
		}
		init = refType(name)
	default:
		return failf(ErrTypeMismatch, "constructor call on %s", recv)
	}
	for k := range f.Stack {
		if f.Stack[k] == recv {
			f.Stack[k] = init
		}
	}
	for k := range f.Locals {
		if f.Locals[k] == recv {
			f.Locals[k] = init
		}
	}
	return nil
}

// call pops the arguments of desc and pushes its result.
func (a *analyzer) call(f *Frame, desc string) error {
	mt, err := classfile.ParseMethodDescriptor(desc)
	if err != nil {
		return failf(ErrBadConstant, "%s: %v", desc, err)
	}
	for k := len(mt.Params) - 1; k >= 0; k-- {
		if err := a.popDesc(f, mt.Params[k]); err != nil {
			return err
		}
	}
	a.pushDesc(f, mt.Return)
	return nil
}

func (a *analyzer) constType(index uint16, wide bool) (Type, error) {
	pool := a.cls.Pool
	c := pool.Get(index)
	if c == nil {
		return tTop, failf(ErrBadConstant, "ldc #%d out of range", index)
	}
	var t Type
	switch c.Tag {
	case classfile.ConstantInteger:
		t = tInt
	case classfile.ConstantFloat:
		t = tFloat
	case classfile.ConstantLong:
		t = tLong
	case classfile.ConstantDouble:
		t = tDouble
	case classfile.ConstantString:
		t = refType("java/lang/String")
	case classfile.ConstantClass:
		t = refType("java/lang/Class")
	case classfile.ConstantMethodType:
		t = refType("java/lang/invoke/MethodType")
	case classfile.ConstantMethodHandle:
		t = refType("java/lang/invoke/MethodHandle")
	case classfile.ConstantDynamic:
		_, desc, err := pool.DynamicNameAndType(index)
		if err != nil {
			return tTop, failf(ErrBadConstant, "%v", err)
		}
		t = typeOf(desc)
	default:
		return tTop, failf(ErrBadConstant, "ldc #%d is %s", index, c.Tag)
	}
	if t.Wide() != wide {
		return tTop, failf(ErrBadConstant, "ldc #%d: %s needs ldc2_w", index, c.Tag)
	}
	return t, nil
}
