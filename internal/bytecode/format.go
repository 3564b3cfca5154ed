package bytecode

import (
	"fmt"
	"strings"

	"hyinit/internal/classfile"
)

// Annotator returns an optional comment for instruction i, or "".
type Annotator func(i int, in *Instruction) string

// InjectedAnnotator marks instructions that were not part of the loaded body.
func InjectedAnnotator(i int, in *Instruction) string {
	if in.Origin < 0 {
		return "injected"
	}
	return ""
}

// Format renders a body one instruction per line, resolving pool operands
// against pool. It is meant for diagnostics, not for reassembly.
func Format(pool *classfile.Pool, code *Code, annotators ...Annotator) string {
	var b strings.Builder
	for i := range code.Insts {
		in := &code.Insts[i]
		fmt.Fprintf(&b, "%5d  %s", i, Operands(pool, in))
		for _, ann := range annotators {
			if s := ann(i, in); s != "" {
				fmt.Fprintf(&b, "  ; %s", s)
				break
			}
		}
		b.WriteByte('\n')
	}
	for _, h := range code.Handlers {
		catch := "any"
		if h.CatchType != 0 {
			if name, err := pool.ClassName(h.CatchType); err == nil {
				catch = name
			}
		}
		fmt.Fprintf(&b, "  try [%d,%d) -> %d %s\n", h.Start, h.End, h.Handler, catch)
	}
	return b.String()
}

// Operands renders one instruction with its operands.
func Operands(pool *classfile.Pool, in *Instruction) string {
	op := in.Op.String()
	switch in.Op.Format() {
	case FmtS1, FmtS2:
		return fmt.Sprintf("%s %d", op, in.Const)
	case FmtNewArray:
		return fmt.Sprintf("%s %d", op, in.Const)
	case FmtLocal:
		return fmt.Sprintf("%s %d", op, in.Local)
	case FmtIinc:
		return fmt.Sprintf("%s %d %d", op, in.Local, in.Const)
	case FmtBranch, FmtBranchW:
		return fmt.Sprintf("%s -> %d", op, in.Target)
	case FmtTableSwitch, FmtLookupSwitch:
		var parts []string
		for k, t := range in.Switch.Targets {
			key := int64(in.Switch.Low) + int64(k)
			if in.Switch.Keys != nil {
				key = int64(in.Switch.Keys[k])
			}
			parts = append(parts, fmt.Sprintf("%d: %d", key, t))
		}
		parts = append(parts, fmt.Sprintf("default: %d", in.Switch.Default))
		return fmt.Sprintf("%s { %s }", op, strings.Join(parts, ", "))
	case FmtLdc, FmtCP, FmtInvokeInterface, FmtInvokeDynamic, FmtMultiANewArray:
		return fmt.Sprintf("%s #%d %s", op, in.Index, describeConstant(pool, in.Index))
	}
	return op
}

func describeConstant(pool *classfile.Pool, index uint16) string {
	c := pool.Get(index)
	if c == nil {
		return "<invalid>"
	}
	switch c.Tag {
	case classfile.ConstantClass:
		name, _ := pool.ClassName(index)
		return name
	case classfile.ConstantString:
		s, _ := pool.StringValue(index)
		return fmt.Sprintf("%q", s)
	case classfile.ConstantInteger:
		return fmt.Sprint(c.Int())
	case classfile.ConstantLong:
		return fmt.Sprintf("%dL", c.Long())
	case classfile.ConstantFloat:
		return fmt.Sprintf("%gf", c.Float())
	case classfile.ConstantDouble:
		return fmt.Sprintf("%gd", c.Double())
	case classfile.ConstantFieldref, classfile.ConstantMethodref, classfile.ConstantInterfaceMethodref:
		ref, err := pool.Member(index)
		if err != nil {
			return "<invalid>"
		}
		return ref.String()
	case classfile.ConstantInvokeDynamic, classfile.ConstantDynamic:
		name, desc, _ := pool.DynamicNameAndType(index)
		return fmt.Sprintf("bsm:%d %s%s", c.Ref1, name, desc)
	}
	return c.Tag.String()
}
