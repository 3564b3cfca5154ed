package classfile

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic       = errors.New("classfile: bad magic")
	ErrBadPoolIndex   = errors.New("classfile: constant pool index out of range")
	ErrBadPoolTag     = errors.New("classfile: unknown constant pool tag")
	ErrTrailingData   = errors.New("classfile: trailing data after class file")
	ErrUnsupported    = errors.New("classfile: unsupported class file version")
	ErrNoCode         = errors.New("classfile: method has no Code attribute")
	ErrBadDescriptor  = errors.New("classfile: malformed descriptor")
	ErrPoolOverflow   = errors.New("classfile: constant pool full")
	ErrWrongEntryKind = errors.New("classfile: constant pool entry has unexpected tag")
)

// MalformedClassError reports input bytes that are not a valid class file.
// The class is never transformed when parsing fails.
type MalformedClassError struct {
	Offset int
	Err    error
}

func (e *MalformedClassError) Error() string {
	return fmt.Sprintf("classfile: malformed class at offset 0x%x: %v", e.Offset, e.Err)
}

func (e *MalformedClassError) Unwrap() error { return e.Err }

func malformed(s *Stream, err error) error {
	return &MalformedClassError{Offset: s.Position(), Err: err}
}
