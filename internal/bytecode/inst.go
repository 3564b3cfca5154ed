// Package bytecode decodes JVM method bodies into editable instruction
// sequences and encodes them back into Code attributes.
//
// Branch targets, exception ranges, line numbers and local variable ranges
// are held as instruction indexes rather than byte offsets. Every edit
// re-resolves them, and byte offsets only exist again at encode time.
package bytecode

import (
	"hyinit/internal/classfile"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Op     Opcode
	Index  uint16  // constant pool index
	Local  int     // local slot, explicit or implied by a short form
	Const  int32   // bipush/sipush value, iinc delta, newarray type, dimensions, invokeinterface count
	Target int     // branch target as an instruction index
	Switch *Switch // tableswitch / lookupswitch table
	Wide   bool    // carried a wide prefix in the input
	Origin int     // index in the method as loaded, -1 for injected code
}

// Switch holds the targets of a tableswitch or lookupswitch.
// For tableswitch, Targets[i] belongs to key Low+i and Keys is nil.
type Switch struct {
	Default int
	Low     int32
	High    int32
	Keys    []int32
	Targets []int
}

func (s *Switch) clone() *Switch {
	if s == nil {
		return nil
	}
	ns := *s
	ns.Keys = append([]int32(nil), s.Keys...)
	ns.Targets = append([]int(nil), s.Targets...)
	return &ns
}

// Targets returns every instruction index the instruction can branch to,
// not counting fallthrough.
func (in *Instruction) Targets() []int {
	switch {
	case in.Op.IsBranch():
		return []int{in.Target}
	case in.Switch != nil:
		out := make([]int, 0, len(in.Switch.Targets)+1)
		out = append(out, in.Switch.Default)
		return append(out, in.Switch.Targets...)
	}
	return nil
}

// Handler is one exception table entry. End is exclusive and may equal the
// instruction count.
type Handler struct {
	Start     int
	End       int
	Handler   int
	CatchType uint16 // 0 catches everything
}

// LineNumber maps the instruction at Start, and those after it, to a line.
type LineNumber struct {
	Start int
	Line  uint16
}

// LocalVar is a LocalVariableTable or LocalVariableTypeTable entry.
type LocalVar struct {
	Start     int
	End       int // exclusive
	NameIndex uint16
	DescIndex uint16 // descriptor or signature index
	Slot      uint16
}

// Code is a decoded Code attribute.
type Code struct {
	MaxStack   uint16
	MaxLocals  uint16
	Insts      []Instruction
	Handlers   []Handler
	Lines      []LineNumber
	Locals     []LocalVar
	LocalTypes []LocalVar

	// Attributes are the Code attribute's own attributes in input order.
	// LineNumberTable and local variable tables are rebuilt from the fields
	// above when encoding; the StackMapTable is replaced by SetStackMap.
	Attributes []classfile.Attribute

	stackMap    []byte
	stackMapSet bool
	hasFrames   bool
}

// Len returns the instruction count.
func (c *Code) Len() int { return len(c.Insts) }

// Clone returns a deep copy.
func (c *Code) Clone() *Code {
	nc := *c
	nc.Insts = make([]Instruction, len(c.Insts))
	for i, in := range c.Insts {
		in.Switch = in.Switch.clone()
		nc.Insts[i] = in
	}
	nc.Handlers = append([]Handler(nil), c.Handlers...)
	nc.Lines = append([]LineNumber(nil), c.Lines...)
	nc.Locals = append([]LocalVar(nil), c.Locals...)
	nc.LocalTypes = append([]LocalVar(nil), c.LocalTypes...)
	nc.Attributes = make([]classfile.Attribute, len(c.Attributes))
	for i, a := range c.Attributes {
		nc.Attributes[i] = classfile.Attribute{NameIndex: a.NameIndex, Data: append([]byte(nil), a.Data...)}
	}
	nc.stackMap = append([]byte(nil), c.stackMap...)
	return &nc
}

// IndexOfOrigin returns the current index of the instruction that was at
// orig when the method was loaded, or -1 if it no longer exists.
func (c *Code) IndexOfOrigin(orig int) int {
	for i := range c.Insts {
		if c.Insts[i].Origin == orig {
			return i
		}
	}
	return -1
}

// Returns lists the indexes of every return instruction.
func (c *Code) Returns() []int {
	var out []int
	for i := range c.Insts {
		if c.Insts[i].Op.IsReturn() {
			out = append(out, i)
		}
	}
	return out
}

// HasFrames reports whether the input carried a StackMapTable.
func (c *Code) HasFrames() bool { return c.hasFrames }

// SetStackMap installs the body of a regenerated StackMapTable attribute
// (number_of_entries followed by the frames). A nil body removes it.
func (c *Code) SetStackMap(body []byte) {
	c.stackMap = body
	c.stackMapSet = true
}
