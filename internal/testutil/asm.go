package testutil

import (
	"fmt"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

// Asm records a method body. Branches name labels that are resolved when
// the class is built.
type Asm struct {
	pool      *classfile.Pool
	insts     []bytecode.Instruction
	labels    map[string]int
	fixups    []fixup
	handlers  []handlerSpec
	lines     []bytecode.LineNumber
	maxStack  int
	maxLocals int
	err       error
}

type fixup struct {
	at    int
	label string
	slot  int // -1 branch target, -2 switch default, else switch case index
}

type handlerSpec struct {
	start, end, handler string
	catch               string
}

// Maxs sets the declared max_stack and max_locals (both 8 unless set).
func (a *Asm) Maxs(stack, locals int) *Asm {
	a.maxStack, a.maxLocals = stack, locals
	return a
}

// Op appends an instruction without operands (or with an implied slot).
func (a *Asm) Op(ops ...bytecode.Opcode) *Asm {
	for _, op := range ops {
		in := bytecode.Instruction{Op: op}
		if _, slot, ok := op.ImplicitLocal(); ok {
			in.Local = slot
		}
		a.emit(in)
	}
	return a
}

// Push appends bipush or sipush.
func (a *Asm) Push(v int32) *Asm {
	op := bytecode.OpBipush
	if v < -128 || v > 127 {
		op = bytecode.OpSipush
	}
	return a.emit(bytecode.Instruction{Op: op, Const: v})
}

// Local appends a load, store or ret with an explicit slot.
func (a *Asm) Local(op bytecode.Opcode, slot int) *Asm {
	return a.emit(bytecode.Instruction{Op: op, Local: slot})
}

// Iinc appends iinc.
func (a *Asm) Iinc(slot int, delta int32) *Asm {
	return a.emit(bytecode.Instruction{Op: bytecode.OpIinc, Local: slot, Const: delta})
}

// Ldc appends an ldc of a string, int32, float32, int64 or float64.
func (a *Asm) Ldc(v any) *Asm {
	var idx uint16
	var err error
	op := bytecode.OpLdc
	switch v := v.(type) {
	case string:
		idx, err = a.pool.AddString(v)
	case int32:
		idx, err = a.pool.AddInteger(v)
	case float32:
		idx, err = a.pool.AddFloat(v)
	case int64:
		idx, err = a.pool.AddLong(v)
		op = bytecode.OpLdc2W
	case float64:
		idx, err = a.pool.AddDouble(v)
		op = bytecode.OpLdc2W
	default:
		err = fmt.Errorf("testutil: ldc of %T", v)
	}
	if err != nil {
		a.err = err
		return a
	}
	return a.emit(bytecode.Instruction{Op: op, Index: idx})
}

// Type appends new, anewarray, checkcast or instanceof.
func (a *Asm) Type(op bytecode.Opcode, class string) *Asm {
	idx, err := a.pool.AddClass(class)
	if err != nil {
		a.err = err
		return a
	}
	return a.emit(bytecode.Instruction{Op: op, Index: idx})
}

// Field appends a get/put field or static.
func (a *Asm) Field(op bytecode.Opcode, owner, name, desc string) *Asm {
	idx, err := a.pool.AddFieldref(owner, name, desc)
	if err != nil {
		a.err = err
		return a
	}
	return a.emit(bytecode.Instruction{Op: op, Index: idx})
}

// Invoke appends a method call.
func (a *Asm) Invoke(op bytecode.Opcode, owner, name, desc string) *Asm {
	in := bytecode.Instruction{Op: op}
	var err error
	if op == bytecode.OpInvokeinterface {
		in.Index, err = a.pool.AddInterfaceMethodref(owner, name, desc)
		if t, terr := classfile.ParseMethodDescriptor(desc); terr == nil {
			in.Const = int32(t.ArgSlots() + 1)
		}
	} else {
		in.Index, err = a.pool.AddMethodref(owner, name, desc)
	}
	if err != nil {
		a.err = err
		return a
	}
	return a.emit(in)
}

// Jump appends a branch to label.
func (a *Asm) Jump(op bytecode.Opcode, label string) *Asm {
	a.fixups = append(a.fixups, fixup{at: len(a.insts), label: label, slot: -1})
	return a.emit(bytecode.Instruction{Op: op})
}

// TableSwitch appends a tableswitch over low..low+len(cases)-1.
func (a *Asm) TableSwitch(low int32, def string, cases ...string) *Asm {
	sw := &bytecode.Switch{Low: low, High: low + int32(len(cases)) - 1, Targets: make([]int, len(cases))}
	a.switchFixups(def, cases)
	return a.emit(bytecode.Instruction{Op: bytecode.OpTableswitch, Switch: sw})
}

// LookupSwitch appends a lookupswitch; keys and cases pair up.
func (a *Asm) LookupSwitch(def string, keys []int32, cases ...string) *Asm {
	sw := &bytecode.Switch{Keys: append([]int32(nil), keys...), Targets: make([]int, len(cases))}
	a.switchFixups(def, cases)
	return a.emit(bytecode.Instruction{Op: bytecode.OpLookupswitch, Switch: sw})
}

func (a *Asm) switchFixups(def string, cases []string) {
	a.fixups = append(a.fixups, fixup{at: len(a.insts), label: def, slot: -2})
	for k, l := range cases {
		a.fixups = append(a.fixups, fixup{at: len(a.insts), label: l, slot: k})
	}
}

// Label names the next instruction.
func (a *Asm) Label(name string) *Asm {
	a.labels[name] = len(a.insts)
	return a
}

// Line starts a line number entry at the next instruction.
func (a *Asm) Line(n uint16) *Asm {
	a.lines = append(a.lines, bytecode.LineNumber{Start: len(a.insts), Line: n})
	return a
}

// Try declares an exception handler; catch "" catches everything.
func (a *Asm) Try(start, end, handler, catch string) *Asm {
	a.handlers = append(a.handlers, handlerSpec{start, end, handler, catch})
	return a
}

func (a *Asm) emit(in bytecode.Instruction) *Asm {
	in.Origin = len(a.insts)
	a.insts = append(a.insts, in)
	return a
}

func (a *Asm) label(name string) (int, error) {
	i, ok := a.labels[name]
	if !ok {
		return 0, fmt.Errorf("testutil: undefined label %q", name)
	}
	return i, nil
}

func (a *Asm) code() (*bytecode.Code, error) {
	if a.err != nil {
		return nil, a.err
	}
	for _, f := range a.fixups {
		t, err := a.label(f.label)
		if err != nil {
			return nil, err
		}
		in := &a.insts[f.at]
		switch f.slot {
		case -1:
			in.Target = t
		case -2:
			in.Switch.Default = t
		default:
			in.Switch.Targets[f.slot] = t
		}
	}
	code := &bytecode.Code{
		MaxStack:  uint16(a.maxStack),
		MaxLocals: uint16(a.maxLocals),
		Insts:     a.insts,
		Lines:     a.lines,
	}
	for _, h := range a.handlers {
		start, err := a.label(h.start)
		if err != nil {
			return nil, err
		}
		end, err := a.label(h.end)
		if err != nil {
			return nil, err
		}
		handler, err := a.label(h.handler)
		if err != nil {
			return nil, err
		}
		var catch uint16
		if h.catch != "" {
			if catch, err = a.pool.AddClass(h.catch); err != nil {
				return nil, err
			}
		}
		code.Handlers = append(code.Handlers, bytecode.Handler{Start: start, End: end, Handler: handler, CatchType: catch})
	}
	return code, nil
}
