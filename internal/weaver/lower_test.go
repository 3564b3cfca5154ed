package weaver

import (
	"testing"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
)

func TestLowerPush(t *testing.T) {
	tests := []struct {
		v    int32
		want bytecode.Opcode
	}{
		{-1, bytecode.OpIconstM1},
		{0, bytecode.OpIconst0},
		{5, bytecode.OpIconst5},
		{6, bytecode.OpBipush},
		{-128, bytecode.OpBipush},
		{1000, bytecode.OpSipush},
		{-40000, bytecode.OpLdc},
	}
	pool := classfile.NewPool()
	for _, tt := range tests {
		insts, err := Lower(pool, []patch.Op{patch.Push(tt.v)})
		if err != nil {
			t.Fatalf("push %d: %v", tt.v, err)
		}
		if got := insts[0].Op; got != tt.want {
			t.Errorf("push %d = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestLowerConstants(t *testing.T) {
	pool := classfile.NewPool()
	insts, err := Lower(pool, []patch.Op{
		patch.LdcString("manifest.json"),
		patch.LdcInt(7),
		patch.LdcFloat(1.5),
		patch.LdcLong(1 << 40),
		patch.LdcDouble(2.5),
		patch.LdcClass("java.util.Collections"),
	})
	if err != nil {
		t.Fatal(err)
	}
	wantOps := []bytecode.Opcode{bytecode.OpLdc, bytecode.OpLdc, bytecode.OpLdc, bytecode.OpLdc2W, bytecode.OpLdc2W, bytecode.OpLdc}
	wantTags := []classfile.ConstantTag{
		classfile.ConstantString, classfile.ConstantInteger, classfile.ConstantFloat,
		classfile.ConstantLong, classfile.ConstantDouble, classfile.ConstantClass,
	}
	for i, in := range insts {
		if in.Op != wantOps[i] {
			t.Errorf("op %d = %s, want %s", i, in.Op, wantOps[i])
		}
		if got := pool.Tag(in.Index); got != wantTags[i] {
			t.Errorf("tag %d = %s, want %s", i, got, wantTags[i])
		}
		if in.Origin != -1 {
			t.Errorf("origin %d = %d, want -1", i, in.Origin)
		}
	}
	name, err := pool.ClassName(insts[5].Index)
	if err != nil || name != "java/util/Collections" {
		t.Errorf("class = %q, %v", name, err)
	}
}

func TestLowerLabels(t *testing.T) {
	pool := classfile.NewPool()
	insts, err := Lower(pool, []patch.Op{
		patch.Mark("top"),
		patch.Var("aload", 1),
		patch.Jump("ifnull", "end"),
		patch.Jump("goto", "top"),
		patch.Mark("end"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != 3 {
		t.Fatalf("len = %d, want 3", len(insts))
	}
	if insts[1].Target != 3 {
		t.Errorf("ifnull target = %d, want 3", insts[1].Target)
	}
	if insts[2].Target != 0 {
		t.Errorf("goto target = %d, want 0", insts[2].Target)
	}
}

func TestLowerInterfaceCall(t *testing.T) {
	pool := classfile.NewPool()
	insts, err := Lower(pool, []patch.Op{
		patch.Call("invokeinterface", "java/util/List", "add", "(Ljava/lang/Object;)Z", false),
		patch.Call("invokestatic", "java/util/List", "of", "()Ljava/util/List;", true),
	})
	if err != nil {
		t.Fatal(err)
	}
	if insts[0].Const != 2 {
		t.Errorf("count = %d, want 2", insts[0].Const)
	}
	for i, in := range insts {
		if got := pool.Tag(in.Index); got != classfile.ConstantInterfaceMethodref {
			t.Errorf("tag %d = %s, want InterfaceMethodref", i, got)
		}
	}
}

func TestEstimate(t *testing.T) {
	pool := classfile.NewPool()
	insts, err := Lower(pool, []patch.Op{
		patch.Var("aload", 0),
		patch.LdcString("x"),
		patch.Call("invokevirtual", "java/lang/String", "equalsIgnoreCase", "(Ljava/lang/String;)Z", false),
		patch.Var("istore", 4),
		patch.Push(1), patch.Push(2), patch.Push(3), patch.Ins("pop2"), patch.Ins("pop"),
	})
	if err != nil {
		t.Fatal(err)
	}
	stack, locals := estimate(pool, insts)
	if stack != 3 || locals != 5 {
		t.Errorf("estimate = %d/%d, want 3/5", stack, locals)
	}
}
