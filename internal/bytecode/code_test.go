package bytecode_test

import (
	"bytes"
	"strings"
	"testing"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/testutil"
)

func switchClass(t *testing.T) (*classfile.Class, *classfile.Method) {
	t.Helper()
	data := testutil.NewClass("com/example/Switch").
		Method(classfile.AccPublic|classfile.AccStatic, "classify", "(I)I", func(a *testutil.Asm) {
			a.Maxs(2, 1).
				Line(7).Op(bytecode.OpIload0).
				TableSwitch(1, "dflt", "one", "two").
				Label("one").Op(bytecode.OpIconst1).Op(bytecode.OpIreturn).
				Label("two").Op(bytecode.OpIload0).
				LookupSwitch("dflt", []int32{-5, 100}, "neg", "big").
				Label("neg").Label("start").Op(bytecode.OpIconstM1).Label("end").Op(bytecode.OpIreturn).
				Label("big").Push(100).Op(bytecode.OpIreturn).
				Label("dflt").Op(bytecode.OpIconst0).Op(bytecode.OpIreturn).
				Label("handler").Op(bytecode.OpPop).Op(bytecode.OpIconst0).Op(bytecode.OpIreturn).
				Try("start", "end", "handler", "java/lang/RuntimeException")
		}).
		Build(t)
	c, err := classfile.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	return c, c.FindMethod("classify", "(I)I")
}

func TestDecodeEncode_RoundTrip(t *testing.T) {
	c, m := switchClass(t)
	attr, err := c.Code(m)
	if err != nil {
		t.Fatal(err)
	}
	code, err := bytecode.DecodeCode(c, attr)
	if err != nil {
		t.Fatal(err)
	}
	if code.Len() != 15 {
		t.Fatalf("instructions = %d, want 15", code.Len())
	}
	sw := code.Insts[1].Switch
	if sw == nil || sw.Low != 1 || sw.High != 2 {
		t.Fatalf("tableswitch = %+v", sw)
	}
	if code.Insts[sw.Targets[0]].Op != bytecode.OpIconst1 {
		t.Errorf("case 1 lands on %s", code.Insts[sw.Targets[0]].Op)
	}
	if len(code.Handlers) != 1 || code.Handlers[0].Start != 6 || code.Handlers[0].End != 7 {
		t.Errorf("handlers = %+v", code.Handlers)
	}
	out, err := code.Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, attr.Data) {
		t.Errorf("re-encoded Code differs:\n got % x\nwant % x", out, attr.Data)
	}
}

func TestInsertThenEncode_SwitchTargetsFollow(t *testing.T) {
	c, m := switchClass(t)
	attr, _ := c.Code(m)
	code, err := bytecode.DecodeCode(c, attr)
	if err != nil {
		t.Fatal(err)
	}
	// Shift the switch's padding by inserting one nop before it.
	if err := code.Insert(0, []bytecode.Instruction{{Op: bytecode.OpNop}}, false); err != nil {
		t.Fatal(err)
	}
	data, err := code.Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	again, err := bytecode.DecodeCode(c, classfile.Attribute{NameIndex: attr.NameIndex, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	for k, tgt := range again.Insts[2].Switch.Targets {
		if want := code.Insts[2].Switch.Targets[k]; tgt != want {
			t.Errorf("case %d -> %d, want %d", k, tgt, want)
		}
	}
	if again.Lines[0].Start != 1 {
		t.Errorf("line 7 starts at %d, want 1", again.Lines[0].Start)
	}
}

func TestBuildCFG_Switch(t *testing.T) {
	c, m := switchClass(t)
	attr, _ := c.Code(m)
	code, err := bytecode.DecodeCode(c, attr)
	if err != nil {
		t.Fatal(err)
	}
	g := bytecode.BuildCFG("classify", code)
	entry := g.Blocks[0]
	if !entry.IsEntry {
		t.Error("block 0 should be the entry")
	}
	if len(entry.Succs) != 3 {
		t.Fatalf("entry succs = %+v, want default + 2 cases", entry.Succs)
	}
	h := g.BlockOf(12)
	if h < 0 || !g.Blocks[h].IsHandler {
		t.Errorf("handler block = %d", h)
	}
	var caught bool
	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			if s.Cond == "catch" && s.BlockID == h {
				caught = true
			}
		}
	}
	if !caught {
		t.Error("no catch edge into the handler")
	}
}

func TestFormat(t *testing.T) {
	c, m := switchClass(t)
	attr, _ := c.Code(m)
	code, _ := bytecode.DecodeCode(c, attr)
	text := bytecode.Format(c.Pool, code, bytecode.InjectedAnnotator)
	for _, want := range []string{"tableswitch { 1: 2, 2: 4, default: 10 }", "lookupswitch", "try [6,7) -> 12 java/lang/RuntimeException"} {
		if !strings.Contains(text, want) {
			t.Errorf("format missing %q:\n%s", want, text)
		}
	}
}

func TestOperandFormat(t *testing.T) {
	tests := []struct {
		op   bytecode.Opcode
		want bytecode.OperandFormat
	}{
		{bytecode.OpNop, bytecode.FmtNone},
		{bytecode.OpGoto, bytecode.FmtBranch},
		{bytecode.OpGotoW, bytecode.FmtBranchW},
		{bytecode.OpInvokestatic, bytecode.FmtCP},
		{bytecode.OpIinc, bytecode.FmtIinc},
		{bytecode.OpTableswitch, bytecode.FmtTableSwitch},
	}
	for _, tt := range tests {
		if got := tt.op.Format(); got != tt.want {
			t.Errorf("%s: format = %d, want %d", tt.op, got, tt.want)
		}
	}
}
