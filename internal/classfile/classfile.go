// Package classfile reads, mutates and writes JVM class files.
//
// Parsing keeps every constant and every attribute it does not interpret as
// raw bytes, so a class that is parsed and serialized without mutation comes
// back byte-identical. Method bodies are decoded on demand by the bytecode
// package; methods whose Code attribute was never replaced are written back
// from their original bytes.
package classfile

import (
	"fmt"
)

// Attribute is a raw attribute_info structure.
type Attribute struct {
	NameIndex uint16
	Data      []byte
}

// Member is a field_info or method_info structure.
type Member struct {
	Access     AccessFlags
	NameIndex  uint16
	DescIndex  uint16
	Attributes []Attribute

	Name string // resolved from NameIndex at parse time
	Desc string // resolved from DescIndex at parse time
}

// Method is a method_info structure.
type Method struct {
	Member
}

// Field is a field_info structure.
type Field struct {
	Member
}

// Class is the in-memory form of one class file.
type Class struct {
	Minor      uint16
	Major      uint16
	Pool       *Pool
	Access     AccessFlags
	ThisClass  uint16
	SuperClass uint16
	Interfaces []uint16
	Fields     []*Field
	Methods    []*Method
	Attributes []Attribute

	Name      string // internal name of ThisClass
	SuperName string // internal name of SuperClass, "" for java/lang/Object
}

// Parse decodes a class file. Any structural problem yields a
// *MalformedClassError.
func Parse(data []byte) (*Class, error) {
	s := NewStream(data)
	magic, err := s.ReadUint32()
	if err != nil {
		return nil, malformed(s, err)
	}
	if magic != Magic {
		return nil, malformed(s, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic))
	}

	c := &Class{Pool: NewPool()}
	if c.Minor, err = s.ReadUint16(); err != nil {
		return nil, malformed(s, err)
	}
	if c.Major, err = s.ReadUint16(); err != nil {
		return nil, malformed(s, err)
	}
	if !Profile(c.Major).Supported {
		return nil, malformed(s, fmt.Errorf("%w: %d.%d", ErrUnsupported, c.Major, c.Minor))
	}

	count, err := s.ReadUint16()
	if err != nil {
		return nil, malformed(s, err)
	}
	for c.Pool.Count() < int(count) {
		entry, err := readConstant(s)
		if err != nil {
			return nil, malformed(s, err)
		}
		c.Pool.append(entry)
	}
	if c.Pool.Count() != int(count) {
		return nil, malformed(s, fmt.Errorf("%w: wide entry overruns pool count %d", ErrBadPoolIndex, count))
	}

	access, err := s.ReadUint16()
	if err != nil {
		return nil, malformed(s, err)
	}
	c.Access = AccessFlags(access)
	if c.ThisClass, err = s.ReadUint16(); err != nil {
		return nil, malformed(s, err)
	}
	if c.SuperClass, err = s.ReadUint16(); err != nil {
		return nil, malformed(s, err)
	}
	if c.Name, err = c.Pool.ClassName(c.ThisClass); err != nil {
		return nil, malformed(s, err)
	}
	if c.SuperClass != 0 {
		if c.SuperName, err = c.Pool.ClassName(c.SuperClass); err != nil {
			return nil, malformed(s, err)
		}
	}

	n, err := s.ReadUint16()
	if err != nil {
		return nil, malformed(s, err)
	}
	c.Interfaces = make([]uint16, n)
	for i := range c.Interfaces {
		if c.Interfaces[i], err = s.ReadUint16(); err != nil {
			return nil, malformed(s, err)
		}
	}

	if n, err = s.ReadUint16(); err != nil {
		return nil, malformed(s, err)
	}
	c.Fields = make([]*Field, n)
	for i := range c.Fields {
		m, err := readMember(s, c.Pool)
		if err != nil {
			return nil, malformed(s, err)
		}
		c.Fields[i] = &Field{Member: m}
	}

	if n, err = s.ReadUint16(); err != nil {
		return nil, malformed(s, err)
	}
	c.Methods = make([]*Method, n)
	for i := range c.Methods {
		m, err := readMember(s, c.Pool)
		if err != nil {
			return nil, malformed(s, err)
		}
		c.Methods[i] = &Method{Member: m}
	}

	if c.Attributes, err = readAttributes(s); err != nil {
		return nil, malformed(s, err)
	}
	if s.Remaining() != 0 {
		return nil, malformed(s, ErrTrailingData)
	}
	return c, nil
}

func readMember(s *Stream, pool *Pool) (Member, error) {
	var m Member
	access, err := s.ReadUint16()
	if err != nil {
		return m, err
	}
	m.Access = AccessFlags(access)
	if m.NameIndex, err = s.ReadUint16(); err != nil {
		return m, err
	}
	if m.DescIndex, err = s.ReadUint16(); err != nil {
		return m, err
	}
	if m.Name, err = pool.Utf8(m.NameIndex); err != nil {
		return m, err
	}
	if m.Desc, err = pool.Utf8(m.DescIndex); err != nil {
		return m, err
	}
	m.Attributes, err = readAttributes(s)
	return m, err
}

func readAttributes(s *Stream) ([]Attribute, error) {
	n, err := s.ReadUint16()
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, n)
	for i := range attrs {
		if attrs[i].NameIndex, err = s.ReadUint16(); err != nil {
			return nil, err
		}
		length, err := s.ReadUint32()
		if err != nil {
			return nil, err
		}
		if attrs[i].Data, err = s.ReadBytes(int(length)); err != nil {
			return nil, err
		}
	}
	return attrs, nil
}

// Serialize encodes the class. Every length prefix is recomputed from the
// content actually written.
func Serialize(c *Class) []byte {
	w := NewWriter(4096)
	w.WriteUint32(Magic)
	w.WriteUint16(c.Minor)
	w.WriteUint16(c.Major)
	w.WriteUint16(uint16(c.Pool.Count()))
	for _, entry := range c.Pool.entries {
		if entry != nil {
			writeConstant(w, entry)
		}
	}
	w.WriteUint16(uint16(c.Access))
	w.WriteUint16(c.ThisClass)
	w.WriteUint16(c.SuperClass)
	w.WriteUint16(uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		w.WriteUint16(i)
	}
	w.WriteUint16(uint16(len(c.Fields)))
	for _, f := range c.Fields {
		writeMember(w, &f.Member)
	}
	w.WriteUint16(uint16(len(c.Methods)))
	for _, m := range c.Methods {
		writeMember(w, &m.Member)
	}
	WriteAttributes(w, c.Attributes)
	return w.Bytes()
}

// Bytes is shorthand for Serialize(c).
func (c *Class) Bytes() []byte { return Serialize(c) }

func writeMember(w *Writer, m *Member) {
	w.WriteUint16(uint16(m.Access))
	w.WriteUint16(m.NameIndex)
	w.WriteUint16(m.DescIndex)
	WriteAttributes(w, m.Attributes)
}

// WriteAttributes writes an attributes_count followed by each attribute.
func WriteAttributes(w *Writer, attrs []Attribute) {
	w.WriteUint16(uint16(len(attrs)))
	for _, a := range attrs {
		w.WriteUint16(a.NameIndex)
		w.WriteUint32(uint32(len(a.Data)))
		w.WriteBytes(a.Data)
	}
}

// ReadAttributes reads an attributes_count followed by each attribute.
func ReadAttributes(s *Stream) ([]Attribute, error) { return readAttributes(s) }

// FindMethod returns the method with the given name and descriptor, or nil.
func (c *Class) FindMethod(name, desc string) *Method {
	for _, m := range c.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}
	return nil
}

// AttributeName resolves the name of a raw attribute.
func (c *Class) AttributeName(a Attribute) string {
	name, err := c.Pool.Utf8(a.NameIndex)
	if err != nil {
		return ""
	}
	return name
}

// Attribute returns the first attribute of m with the given name.
func (c *Class) Attribute(m *Member, name string) (Attribute, int, bool) {
	for i, a := range m.Attributes {
		if c.AttributeName(a) == name {
			return a, i, true
		}
	}
	return Attribute{}, -1, false
}

// Code returns the raw Code attribute of m.
func (c *Class) Code(m *Method) (Attribute, error) {
	a, _, ok := c.Attribute(&m.Member, AttrCode)
	if !ok {
		return Attribute{}, fmt.Errorf("%w: %s%s", ErrNoCode, m.Name, m.Desc)
	}
	return a, nil
}

// SetCode replaces the Code attribute of m with data.
func (c *Class) SetCode(m *Method, data []byte) error {
	_, i, ok := c.Attribute(&m.Member, AttrCode)
	if !ok {
		return fmt.Errorf("%w: %s%s", ErrNoCode, m.Name, m.Desc)
	}
	m.Attributes[i].Data = data
	return nil
}

// Clone returns a deep copy of c. Transformations work on a clone so a
// failed weave never leaves partial edits behind.
func (c *Class) Clone() *Class {
	nc := *c
	nc.Pool = c.Pool.clone()
	nc.Interfaces = append([]uint16(nil), c.Interfaces...)
	nc.Attributes = cloneAttributes(c.Attributes)
	nc.Fields = make([]*Field, len(c.Fields))
	for i, f := range c.Fields {
		nf := *f
		nf.Attributes = cloneAttributes(f.Attributes)
		nc.Fields[i] = &nf
	}
	nc.Methods = make([]*Method, len(c.Methods))
	for i, m := range c.Methods {
		nm := *m
		nm.Attributes = cloneAttributes(m.Attributes)
		nc.Methods[i] = &nm
	}
	return &nc
}

func cloneAttributes(attrs []Attribute) []Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = Attribute{NameIndex: a.NameIndex, Data: append([]byte(nil), a.Data...)}
	}
	return out
}
