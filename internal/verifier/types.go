package verifier

import "strings"

// Kind is a verification type category.
type Kind uint8

const (
	Top Kind = iota
	Int
	Float
	Long
	Double
	Null
	UninitThis
	Uninit
	Ref
)

// Type is a verification type. Long and Double values occupy two entries,
// the second being Top, both on the operand stack and in locals.
type Type struct {
	Kind Kind
	Name string // Ref: internal class name or array descriptor
	New  int    // Uninit: index of the allocating new instruction
}

var (
	tTop    = Type{Kind: Top}
	tInt    = Type{Kind: Int}
	tFloat  = Type{Kind: Float}
	tLong   = Type{Kind: Long}
	tDouble = Type{Kind: Double}
	tNull   = Type{Kind: Null}
)

func refType(name string) Type { return Type{Kind: Ref, Name: name} }

func (t Type) String() string {
	switch t.Kind {
	case Top:
		return "top"
	case Int:
		return "int"
	case Float:
		return "float"
	case Long:
		return "long"
	case Double:
		return "double"
	case Null:
		return "null"
	case UninitThis:
		return "uninitializedThis"
	case Uninit:
		return "uninitialized"
	}
	return t.Name
}

// Wide reports whether t occupies two slots.
func (t Type) Wide() bool { return t.Kind == Long || t.Kind == Double }

// IsReference reports whether t can flow where an object is expected.
func (t Type) IsReference() bool {
	switch t.Kind {
	case Ref, Null, Uninit, UninitThis:
		return true
	}
	return false
}

// IsInitialized reports whether t is a usable object reference.
func (t Type) IsInitialized() bool { return t.Kind == Ref || t.Kind == Null }

// typeOf maps a field descriptor to its verification type. Booleans,
// bytes, chars and shorts are all int.
func typeOf(desc string) Type {
	if desc == "" {
		return tTop
	}
	switch desc[0] {
	case 'Z', 'B', 'C', 'S', 'I':
		return tInt
	case 'F':
		return tFloat
	case 'J':
		return tLong
	case 'D':
		return tDouble
	case 'L':
		return refType(strings.TrimSuffix(desc[1:], ";"))
	case '[':
		return refType(desc)
	}
	return tTop
}

// arrayOf returns the array type whose components are named by class, in
// constant-pool class name form.
func arrayOf(class string) string {
	if strings.HasPrefix(class, "[") {
		return "[" + class
	}
	return "[L" + class + ";"
}

// componentOf returns the element type of an array reference.
func componentOf(t Type) Type {
	if t.Kind == Null {
		return tNull
	}
	if t.Kind != Ref || !strings.HasPrefix(t.Name, "[") {
		return refType(objectClass)
	}
	return typeOf(t.Name[1:])
}

const (
	objectClass    = "java/lang/Object"
	throwableClass = "java/lang/Throwable"
)

var newArrayTypes = map[int32]string{
	4: "[Z", 5: "[C", 6: "[F", 7: "[D", 8: "[B", 9: "[S", 10: "[I", 11: "[J",
}
