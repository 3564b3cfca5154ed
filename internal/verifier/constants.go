package verifier

import (
	"fmt"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

// CheckConstants checks that every constant pool operand in code, reachable
// or not, names an entry of the kind its instruction requires.
func CheckConstants(c *classfile.Class, m *classfile.Method, code *bytecode.Code) error {
	a := &analyzer{cls: c, method: m, code: code}
	pool := c.Pool
	for i := range code.Insts {
		in := &code.Insts[i]
		var want []classfile.ConstantTag
		switch in.Op {
		case bytecode.OpLdc, bytecode.OpLdcW:
			want = []classfile.ConstantTag{
				classfile.ConstantInteger, classfile.ConstantFloat, classfile.ConstantString,
				classfile.ConstantClass, classfile.ConstantMethodType, classfile.ConstantMethodHandle,
				classfile.ConstantDynamic,
			}
		case bytecode.OpLdc2W:
			want = []classfile.ConstantTag{classfile.ConstantLong, classfile.ConstantDouble, classfile.ConstantDynamic}
		case bytecode.OpGetstatic, bytecode.OpPutstatic, bytecode.OpGetfield, bytecode.OpPutfield:
			want = []classfile.ConstantTag{classfile.ConstantFieldref}
		case bytecode.OpInvokevirtual:
			want = []classfile.ConstantTag{classfile.ConstantMethodref}
		case bytecode.OpInvokespecial, bytecode.OpInvokestatic:
			want = []classfile.ConstantTag{classfile.ConstantMethodref, classfile.ConstantInterfaceMethodref}
		case bytecode.OpInvokeinterface:
			want = []classfile.ConstantTag{classfile.ConstantInterfaceMethodref}
		case bytecode.OpInvokedynamic:
			want = []classfile.ConstantTag{classfile.ConstantInvokeDynamic}
		case bytecode.OpNew, bytecode.OpAnewarray, bytecode.OpCheckcast,
			bytecode.OpInstanceof, bytecode.OpMultianewarray:
			want = []classfile.ConstantTag{classfile.ConstantClass}
		default:
			continue
		}
		if !hasTag(pool.Tag(in.Index), want) {
			return a.fail(i, failf(ErrBadConstant, "#%d is %s", in.Index, pool.Tag(in.Index)))
		}
	}
	for _, h := range code.Handlers {
		if h.CatchType != 0 && pool.Tag(h.CatchType) != classfile.ConstantClass {
			return a.fail(-1, failf(ErrBadConstant, "catch type #%d is %s", h.CatchType, pool.Tag(h.CatchType)))
		}
	}
	return nil
}

func hasTag(t classfile.ConstantTag, want []classfile.ConstantTag) bool {
	for _, w := range want {
		if t == w {
			return true
		}
	}
	return false
}

// CheckPool checks that every cross reference inside the constant pool
// points at an entry of the right kind. Entries appended by patches are
// held to the same rules as those read from the input.
func CheckPool(c *classfile.Class) error {
	p := c.Pool
	bad := func(i int, format string, args ...any) error {
		return &VerificationError{Class: c.Name, Method: "<pool>", Index: -1, Kind: ErrBadConstant,
			Detail: fmt.Sprintf("#%d: ", i) + fmt.Sprintf(format, args...)}
	}
	is := func(idx uint16, tags ...classfile.ConstantTag) bool { return hasTag(p.Tag(idx), tags) }
	for i := 1; i < p.Count(); i++ {
		e := p.Get(uint16(i))
		if e == nil {
			continue
		}
		switch e.Tag {
		case classfile.ConstantClass, classfile.ConstantString, classfile.ConstantMethodType,
			classfile.ConstantModule, classfile.ConstantPackage:
			if !is(e.Ref1, classfile.ConstantUtf8) {
				return bad(i, "%s names #%d", e.Tag, e.Ref1)
			}
		case classfile.ConstantFieldref, classfile.ConstantMethodref, classfile.ConstantInterfaceMethodref:
			if !is(e.Ref1, classfile.ConstantClass) || !is(e.Ref2, classfile.ConstantNameAndType) {
				return bad(i, "%s refers to #%d, #%d", e.Tag, e.Ref1, e.Ref2)
			}
		case classfile.ConstantNameAndType:
			if !is(e.Ref1, classfile.ConstantUtf8) || !is(e.Ref2, classfile.ConstantUtf8) {
				return bad(i, "%s refers to #%d, #%d", e.Tag, e.Ref1, e.Ref2)
			}
		case classfile.ConstantDynamic, classfile.ConstantInvokeDynamic:
			if !is(e.Ref2, classfile.ConstantNameAndType) {
				return bad(i, "%s refers to #%d", e.Tag, e.Ref2)
			}
		case classfile.ConstantMethodHandle:
			if !is(e.Ref1, classfile.ConstantFieldref, classfile.ConstantMethodref, classfile.ConstantInterfaceMethodref) {
				return bad(i, "%s refers to #%d", e.Tag, e.Ref1)
			}
		}
	}
	return nil
}
