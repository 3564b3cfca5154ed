package patch

// Op is one symbolic instruction of a patch body. Code is a JVM mnemonic
// ("aload", "invokestatic", "ifeq"), or one of the pseudo-ops "label" (names
// the next instruction), "push" (the smallest int constant form) and "ldc"
// (a Const of any kind).
type Op struct {
	Code string `json:"op" yaml:"op" toml:"op"`
	// Local is the slot of loads, stores and iinc.
	Local int `json:"local,omitempty" yaml:"local,omitempty" toml:"local,omitempty"`
	// Int is the push value, iinc delta, newarray type code or
	// multianewarray dimension count.
	Int int32 `json:"int,omitempty" yaml:"int,omitempty" toml:"int,omitempty"`
	// Owner, Name and Desc name a field or method; Owner alone names the
	// class of new, checkcast, instanceof and the array ops.
	Owner     string `json:"owner,omitempty" yaml:"owner,omitempty" toml:"owner,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Desc      string `json:"desc,omitempty" yaml:"desc,omitempty" toml:"desc,omitempty"`
	Interface bool   `json:"interface,omitempty" yaml:"interface,omitempty" toml:"interface,omitempty"`
	// Label is the branch target of a jump, or the name defined by "label".
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Const *Const `json:"const,omitempty" yaml:"const,omitempty" toml:"const,omitempty"`
}

// ConstKind is the type of an ldc constant.
type ConstKind string

const (
	ConstInt    ConstKind = "int"
	ConstLong   ConstKind = "long"
	ConstFloat  ConstKind = "float"
	ConstDouble ConstKind = "double"
	ConstString ConstKind = "string"
	ConstClass  ConstKind = "class"
)

// Const is an ldc operand.
type Const struct {
	Kind   ConstKind `json:"kind" yaml:"kind" toml:"kind"`
	Int    int64     `json:"int,omitempty" yaml:"int,omitempty" toml:"int,omitempty"`
	Float  float64   `json:"float,omitempty" yaml:"float,omitempty" toml:"float,omitempty"`
	String string    `json:"string,omitempty" yaml:"string,omitempty" toml:"string,omitempty"`
}

// Pseudo-op mnemonics. OpProceed stands for the call a redirect replaces
// and is only valid in bodies that replace an invoke.
const (
	OpLabel   = "label"
	OpPush    = "push"
	OpLdc     = "ldc"
	OpProceed = "proceed"
)

// Ins is an instruction without operands.
func Ins(code string) Op { return Op{Code: code} }

// Var is a local load or store.
func Var(code string, slot int) Op { return Op{Code: code, Local: slot} }

// Iinc increments an int local.
func Iinc(slot int, delta int32) Op { return Op{Code: "iinc", Local: slot, Int: delta} }

// Push pushes an int constant.
func Push(v int32) Op { return Op{Code: OpPush, Int: v} }

// Field is a get/put field or static.
func Field(code, owner, name, desc string) Op {
	return Op{Code: code, Owner: owner, Name: name, Desc: desc}
}

// Call is an invoke. Interface methods called through invokestatic or
// invokespecial set iface.
func Call(code, owner, name, desc string, iface bool) Op {
	return Op{Code: code, Owner: owner, Name: name, Desc: desc, Interface: iface || code == "invokeinterface"}
}

// Type is new, checkcast, instanceof or anewarray.
func Type(code, class string) Op { return Op{Code: code, Owner: class} }

// Jump branches to label.
func Jump(code, label string) Op { return Op{Code: code, Label: label} }

// Proceed performs the replaced call.
func Proceed() Op { return Op{Code: OpProceed} }

// Mark names the next instruction. A label after the last op names the
// instruction the body falls through to.
func Mark(label string) Op { return Op{Code: OpLabel, Label: label} }

// LdcString, LdcInt, LdcLong, LdcFloat, LdcDouble and LdcClass load a
// constant.
func LdcString(s string) Op { return Op{Code: OpLdc, Const: &Const{Kind: ConstString, String: s}} }
func LdcInt(v int32) Op     { return Op{Code: OpLdc, Const: &Const{Kind: ConstInt, Int: int64(v)}} }
func LdcLong(v int64) Op    { return Op{Code: OpLdc, Const: &Const{Kind: ConstLong, Int: v}} }
func LdcFloat(v float32) Op {
	return Op{Code: OpLdc, Const: &Const{Kind: ConstFloat, Float: float64(v)}}
}
func LdcDouble(v float64) Op { return Op{Code: OpLdc, Const: &Const{Kind: ConstDouble, Float: v}} }
func LdcClass(name string) Op {
	return Op{Code: OpLdc, Const: &Const{Kind: ConstClass, String: name}}
}
