// Package testutil builds class files in memory for tests.
package testutil

import (
	"testing"

	"hyinit/internal/classfile"
)

// ClassBuilder assembles a class file from method bodies written with Asm.
type ClassBuilder struct {
	name    string
	super   string
	major   uint16
	access  classfile.AccessFlags
	fields  []fieldSpec
	methods []methodSpec
	attrs   []rawAttr
}

type fieldSpec struct {
	access     classfile.AccessFlags
	name, desc string
}

type methodSpec struct {
	access     classfile.AccessFlags
	name, desc string
	body       func(*Asm)
}

type rawAttr struct {
	name string
	data []byte
}

// NewClass starts a public class extending java/lang/Object at version 52.
func NewClass(name string) *ClassBuilder {
	return &ClassBuilder{
		name:   name,
		super:  "java/lang/Object",
		major:  52,
		access: classfile.AccPublic | classfile.AccSuper,
	}
}

func (b *ClassBuilder) Super(name string) *ClassBuilder    { b.super = name; return b }
func (b *ClassBuilder) Version(major uint16) *ClassBuilder { b.major = major; return b }

func (b *ClassBuilder) Field(access classfile.AccessFlags, name, desc string) *ClassBuilder {
	b.fields = append(b.fields, fieldSpec{access, name, desc})
	return b
}

// Method adds a method. A nil body declares it abstract or native, without
// a Code attribute.
func (b *ClassBuilder) Method(access classfile.AccessFlags, name, desc string, body func(*Asm)) *ClassBuilder {
	b.methods = append(b.methods, methodSpec{access, name, desc, body})
	return b
}

// Attribute adds an opaque class attribute.
func (b *ClassBuilder) Attribute(name string, data []byte) *ClassBuilder {
	b.attrs = append(b.attrs, rawAttr{name, data})
	return b
}

// Build encodes the class, failing the test on error.
func (b *ClassBuilder) Build(t testing.TB) []byte {
	t.Helper()
	c, err := b.Class()
	if err != nil {
		t.Fatalf("build %s: %v", b.name, err)
	}
	return c.Bytes()
}

// Class assembles the in-memory class.
func (b *ClassBuilder) Class() (*classfile.Class, error) {
	c := &classfile.Class{
		Major:     b.major,
		Pool:      classfile.NewPool(),
		Access:    b.access,
		Name:      b.name,
		SuperName: b.super,
	}
	var err error
	if c.ThisClass, err = c.Pool.AddClass(b.name); err != nil {
		return nil, err
	}
	if c.SuperClass, err = c.Pool.AddClass(b.super); err != nil {
		return nil, err
	}
	for _, f := range b.fields {
		m, err := member(c.Pool, f.access, f.name, f.desc)
		if err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, &classfile.Field{Member: m})
	}
	for _, def := range b.methods {
		m, err := member(c.Pool, def.access, def.name, def.desc)
		if err != nil {
			return nil, err
		}
		method := &classfile.Method{Member: m}
		c.Methods = append(c.Methods, method)
		if def.body == nil {
			continue
		}
		a := &Asm{pool: c.Pool, labels: make(map[string]int), maxStack: 8, maxLocals: 8}
		def.body(a)
		code, err := a.code()
		if err != nil {
			return nil, err
		}
		if len(code.Lines) > 0 {
			idx, err := c.Pool.AddUtf8(classfile.AttrLineNumberTable)
			if err != nil {
				return nil, err
			}
			code.Attributes = append(code.Attributes, classfile.Attribute{NameIndex: idx})
		}
		data, err := code.Encode(c)
		if err != nil {
			return nil, err
		}
		idx, err := c.Pool.AddUtf8(classfile.AttrCode)
		if err != nil {
			return nil, err
		}
		method.Attributes = append(method.Attributes, classfile.Attribute{NameIndex: idx, Data: data})
	}
	for _, a := range b.attrs {
		idx, err := c.Pool.AddUtf8(a.name)
		if err != nil {
			return nil, err
		}
		c.Attributes = append(c.Attributes, classfile.Attribute{NameIndex: idx, Data: a.data})
	}
	return c, nil
}

func member(pool *classfile.Pool, access classfile.AccessFlags, name, desc string) (classfile.Member, error) {
	m := classfile.Member{Access: access, Name: name, Desc: desc}
	var err error
	if m.NameIndex, err = pool.AddUtf8(name); err != nil {
		return m, err
	}
	m.DescIndex, err = pool.AddUtf8(desc)
	return m, err
}
