package bytecode

import (
	"errors"
	"testing"

	"hyinit/internal/classfile"
)

func nops(n int) []Instruction {
	out := make([]Instruction, n)
	for i := range out {
		out[i] = Instruction{Op: OpNop, Origin: i}
	}
	return out
}

func TestLayout_WidensGoto(t *testing.T) {
	// goto over 40000 bytes of nops does not fit in 16 bits.
	insts := append([]Instruction{{Op: OpGoto, Target: 40001}}, nops(40000)...)
	insts = append(insts, Instruction{Op: OpReturn})
	c := &Code{Insts: insts}
	l, err := c.Layout()
	if err != nil {
		t.Fatal(err)
	}
	if l.Offsets[1] != 5 {
		t.Errorf("goto size = %d, want 5 (goto_w)", l.Offsets[1])
	}
	if l.Offsets[len(insts)] != 5+40000+1 {
		t.Errorf("code length = %d", l.Offsets[len(insts)])
	}
}

func TestLayout_ConditionalOutOfRange(t *testing.T) {
	insts := append([]Instruction{{Op: OpIconst0}, {Op: OpIfeq, Target: 40002}}, nops(40000)...)
	insts = append(insts, Instruction{Op: OpReturn})
	c := &Code{Insts: insts}
	if _, err := c.Layout(); !errors.Is(err, ErrBranchOutOfRange) {
		t.Errorf("err = %v, want ErrBranchOutOfRange", err)
	}
}

func TestLayout_BadTarget(t *testing.T) {
	c := &Code{Insts: []Instruction{{Op: OpGoto, Target: 3}, {Op: OpReturn}}}
	if _, err := c.Layout(); !errors.Is(err, ErrBadTarget) {
		t.Errorf("err = %v, want ErrBadTarget", err)
	}
}

func TestInstructionSizes(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
		pc   int
		want int
	}{
		{"ldc", Instruction{Op: OpLdc, Index: 255}, 0, 2},
		{"ldc promoted", Instruction{Op: OpLdc, Index: 256}, 0, 3},
		{"iload", Instruction{Op: OpIload, Local: 4}, 0, 2},
		{"iload wide", Instruction{Op: OpIload, Local: 300}, 0, 4},
		{"iinc", Instruction{Op: OpIinc, Local: 1, Const: 5}, 0, 3},
		{"iinc wide delta", Instruction{Op: OpIinc, Local: 1, Const: 1000}, 0, 6},
		{"tableswitch pc0", Instruction{Op: OpTableswitch, Switch: &Switch{Targets: []int{0, 0}}}, 0, 1 + 3 + 12 + 8},
		{"tableswitch pc3", Instruction{Op: OpTableswitch, Switch: &Switch{Targets: []int{0, 0}}}, 3, 1 + 0 + 12 + 8},
		{"lookupswitch pc1", Instruction{Op: OpLookupswitch, Switch: &Switch{Keys: []int32{1}, Targets: []int{0}}}, 1, 1 + 2 + 8 + 8},
		{"invokeinterface", Instruction{Op: OpInvokeinterface}, 0, 5},
		{"aload_0", Instruction{Op: OpAload0}, 0, 1},
	}
	for _, tt := range tests {
		if got := tt.in.size(tt.pc, false); got != tt.want {
			t.Errorf("%s: size = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEncodeDecode_Operands(t *testing.T) {
	c := &Code{MaxStack: 2, MaxLocals: 400, Insts: []Instruction{
		{Op: OpLdc, Index: 300},
		{Op: OpIstore, Local: 299},
		{Op: OpIinc, Local: 299, Const: -200},
		{Op: OpSipush, Const: -1234},
		{Op: OpPop},
		{Op: OpReturn},
	}}
	l, err := c.Layout()
	if err != nil {
		t.Fatal(err)
	}
	w := make([]byte, 0, 32)
	for i := range c.Insts {
		wr := classfile.NewWriter(16)
		c.Insts[i].encode(wr, l.Offsets[i], false, l.Offsets)
		w = append(w, wr.Bytes()...)
	}
	insts, _, err := DecodeInsts(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != len(c.Insts) {
		t.Fatalf("decoded %d instructions, want %d", len(insts), len(c.Insts))
	}
	if insts[0].Op != OpLdcW || insts[0].Index != 300 {
		t.Errorf("inst 0 = %s #%d", insts[0].Op, insts[0].Index)
	}
	if !insts[1].Wide || insts[1].Local != 299 {
		t.Errorf("inst 1 = %+v", insts[1])
	}
	if !insts[2].Wide || insts[2].Const != -200 {
		t.Errorf("inst 2 = %+v", insts[2])
	}
	if insts[3].Const != -1234 {
		t.Errorf("inst 3 = %+v", insts[3])
	}
}
