package classfile

import (
	"fmt"
	"strings"
)

// MethodType is a parsed method descriptor.
type MethodType struct {
	Params []string // field descriptors, e.g. "I", "Ljava/lang/String;", "[J"
	Return string   // field descriptor or "V"
}

// ArgSlots returns the number of local slots the parameters occupy,
// excluding the receiver.
func (t MethodType) ArgSlots() int {
	n := 0
	for _, p := range t.Params {
		n += SlotSize(p)
	}
	return n
}

// SlotSize returns 2 for long and double descriptors, 0 for void, else 1.
func SlotSize(desc string) int {
	switch desc {
	case "J", "D":
		return 2
	case "V", "":
		return 0
	}
	return 1
}

// ParseMethodDescriptor splits "(ILjava/lang/String;)V" into its parts.
func ParseMethodDescriptor(desc string) (MethodType, error) {
	var t MethodType
	if !strings.HasPrefix(desc, "(") {
		return t, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		n, err := fieldDescriptorLen(desc[i:])
		if err != nil {
			return t, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
		}
		t.Params = append(t.Params, desc[i:i+n])
		i += n
	}
	if i >= len(desc) {
		return t, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
	}
	ret := desc[i+1:]
	if ret != "V" {
		n, err := fieldDescriptorLen(ret)
		if err != nil || n != len(ret) {
			return t, fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
		}
	}
	t.Return = ret
	return t, nil
}

// ValidFieldDescriptor reports whether desc is exactly one field descriptor.
func ValidFieldDescriptor(desc string) bool {
	n, err := fieldDescriptorLen(desc)
	return err == nil && n == len(desc)
}

func fieldDescriptorLen(s string) (int, error) {
	i := 0
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i >= len(s) {
		return 0, ErrBadDescriptor
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1, nil
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end <= 1 {
			return 0, ErrBadDescriptor
		}
		return i + end + 1, nil
	}
	return 0, ErrBadDescriptor
}
