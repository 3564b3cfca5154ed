package bytecode

import "fmt"

// Opcode is a JVM instruction opcode.
type Opcode uint8

// OperandFormat describes how an opcode's operands are laid out in the code
// array.
type OperandFormat uint8

const (
	FmtNone            OperandFormat = iota // no operands
	FmtS1                                   // bipush: s1 value
	FmtS2                                   // sipush: s2 value
	FmtLdc                                  // ldc: u1 pool index
	FmtCP                                   // u2 pool index
	FmtLocal                                // u1 local index (u2 under wide)
	FmtIinc                                 // u1 local, s1 increment (u2/s2 under wide)
	FmtBranch                               // s2 branch offset
	FmtBranchW                              // s4 branch offset
	FmtTableSwitch                          // padded tableswitch
	FmtLookupSwitch                         // padded lookupswitch
	FmtInvokeInterface                      // u2 pool index, u1 count, u1 zero
	FmtInvokeDynamic                        // u2 pool index, u2 zero
	FmtNewArray                             // u1 array type
	FmtMultiANewArray                       // u2 pool index, u1 dimensions
	FmtWide                                 // wide prefix
)

type opInfo struct {
	name   string
	format OperandFormat
}

var mnemonics map[string]Opcode

func init() {
	mnemonics = make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		if info.name != "" {
			mnemonics[info.name] = Opcode(op)
		}
	}
}

// Lookup maps a mnemonic such as "invokevirtual" to its opcode.
func Lookup(name string) (Opcode, bool) {
	op, ok := mnemonics[name]
	return op, ok
}

func (op Opcode) String() string {
	if name := opcodeTable[op].name; name != "" {
		return name
	}
	return fmt.Sprintf("op_%02x", uint8(op))
}

// Valid reports whether op is a defined instruction (the wide prefix is not).
func (op Opcode) Valid() bool {
	return opcodeTable[op].name != "" && op != OpWide
}

// Format returns the operand layout of op.
func (op Opcode) Format() OperandFormat { return opcodeTable[op].format }

// IsBranch reports whether op carries a single branch target.
func (op Opcode) IsBranch() bool {
	f := op.Format()
	return f == FmtBranch || f == FmtBranchW
}

// IsConditional reports whether op is a two-way conditional branch.
func (op Opcode) IsConditional() bool {
	return (op >= OpIfeq && op <= OpIfAcmpne) || op == OpIfnull || op == OpIfnonnull
}

// IsSwitch reports whether op is tableswitch or lookupswitch.
func (op Opcode) IsSwitch() bool {
	return op == OpTableswitch || op == OpLookupswitch
}

// IsReturn reports whether op returns from the method.
func (op Opcode) IsReturn() bool {
	return op >= OpIreturn && op <= OpReturn
}

// IsInvoke reports whether op calls a method through a member reference.
func (op Opcode) IsInvoke() bool {
	return op >= OpInvokevirtual && op <= OpInvokeinterface
}

// IsJSR reports whether op belongs to the subroutine instructions removed in
// class version 51.
func (op Opcode) IsJSR() bool {
	return op == OpJsr || op == OpJsrW || op == OpRet
}

// EndsFlow reports whether control never falls through to the next
// instruction.
func (op Opcode) EndsFlow() bool {
	switch op {
	case OpGoto, OpGotoW, OpAthrow, OpRet, OpTableswitch, OpLookupswitch:
		return true
	}
	return op.IsReturn()
}

// ImplicitLocal reports the local slot encoded in a short form such as
// aload_2, together with the long form it abbreviates.
func (op Opcode) ImplicitLocal() (base Opcode, slot int, ok bool) {
	switch {
	case op >= OpIload0 && op <= OpAload3:
		n := int(op - OpIload0)
		return OpIload + Opcode(n/4), n % 4, true
	case op >= OpIstore0 && op <= OpAstore3:
		n := int(op - OpIstore0)
		return OpIstore + Opcode(n/4), n % 4, true
	}
	return op, 0, false
}

// LocalKind returns the long form of a local load or store, the slot width
// it moves, and whether it stores.
func (op Opcode) LocalKind() (base Opcode, width int, store bool, ok bool) {
	if b, _, short := op.ImplicitLocal(); short {
		op = b
	}
	switch op {
	case OpIload, OpFload, OpAload:
		return op, 1, false, true
	case OpLload, OpDload:
		return op, 2, false, true
	case OpIstore, OpFstore, OpAstore:
		return op, 1, true, true
	case OpLstore, OpDstore:
		return op, 2, true, true
	}
	return op, 0, false, false
}
