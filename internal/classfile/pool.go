package classfile

import (
	"bytes"
	"fmt"
	"math"
)

// Constant is one constant pool entry. Values are kept in their raw class
// file form (modified UTF-8 bytes, IEEE bit patterns) so that serialization
// reproduces the input exactly.
type Constant struct {
	Tag   ConstantTag
	Bytes []byte // Utf8: modified UTF-8 payload
	Value uint64 // Integer/Float: low 32 bits; Long/Double: all 64 bits
	Ref1  uint16 // name, class, string, descriptor, bootstrap or reference index
	Ref2  uint16 // name-and-type or descriptor index
	Kind  uint8  // MethodHandle reference kind
}

func (c *Constant) equal(o *Constant) bool {
	return c.Tag == o.Tag && c.Value == o.Value && c.Ref1 == o.Ref1 &&
		c.Ref2 == o.Ref2 && c.Kind == o.Kind && bytes.Equal(c.Bytes, o.Bytes)
}

// Pool is the append-only constant pool of one class.
// Index 0 is unused and the slot after a Long or Double is nil, exactly as
// the class file numbers them. Entries are never removed or reordered, so an
// index handed out once stays valid for the lifetime of the Class.
type Pool struct {
	entries []*Constant
	lookup  map[string]uint16
}

// NewPool returns an empty pool (count 1, slot 0 reserved).
func NewPool() *Pool {
	return &Pool{entries: []*Constant{nil}}
}

// Count returns the constant_pool_count value (number of slots + 1).
func (p *Pool) Count() int { return len(p.entries) }

// Get returns the entry at index, or nil when index is 0, out of range or the
// second half of a wide entry.
func (p *Pool) Get(index uint16) *Constant {
	if index == 0 || int(index) >= len(p.entries) {
		return nil
	}
	return p.entries[index]
}

// Tag returns the tag at index, or 0 when there is no entry.
func (p *Pool) Tag(index uint16) ConstantTag {
	if c := p.Get(index); c != nil {
		return c.Tag
	}
	return 0
}

// Utf8 returns the decoded string of a Utf8 entry.
func (p *Pool) Utf8(index uint16) (string, error) {
	c := p.Get(index)
	if c == nil {
		return "", fmt.Errorf("%w: %d", ErrBadPoolIndex, index)
	}
	if c.Tag != ConstantUtf8 {
		return "", fmt.Errorf("%w: #%d is %s, want Utf8", ErrWrongEntryKind, index, c.Tag)
	}
	return decodeModifiedUTF8(c.Bytes), nil
}

// ClassName returns the internal name referenced by a Class entry.
func (p *Pool) ClassName(index uint16) (string, error) {
	c := p.Get(index)
	if c == nil {
		return "", fmt.Errorf("%w: %d", ErrBadPoolIndex, index)
	}
	if c.Tag != ConstantClass {
		return "", fmt.Errorf("%w: #%d is %s, want Class", ErrWrongEntryKind, index, c.Tag)
	}
	return p.Utf8(c.Ref1)
}

// NameAndType returns the name and descriptor of a NameAndType entry.
func (p *Pool) NameAndType(index uint16) (name, desc string, err error) {
	c := p.Get(index)
	if c == nil {
		return "", "", fmt.Errorf("%w: %d", ErrBadPoolIndex, index)
	}
	if c.Tag != ConstantNameAndType {
		return "", "", fmt.Errorf("%w: #%d is %s, want NameAndType", ErrWrongEntryKind, index, c.Tag)
	}
	if name, err = p.Utf8(c.Ref1); err != nil {
		return "", "", err
	}
	if desc, err = p.Utf8(c.Ref2); err != nil {
		return "", "", err
	}
	return name, desc, nil
}

// MemberRef is a resolved Fieldref, Methodref or InterfaceMethodref.
type MemberRef struct {
	Tag   ConstantTag
	Owner string
	Name  string
	Desc  string
}

func (m MemberRef) String() string {
	return m.Owner + "." + m.Name + m.Desc
}

// Member resolves a field or method reference entry.
func (p *Pool) Member(index uint16) (MemberRef, error) {
	c := p.Get(index)
	if c == nil {
		return MemberRef{}, fmt.Errorf("%w: %d", ErrBadPoolIndex, index)
	}
	switch c.Tag {
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref:
	default:
		return MemberRef{}, fmt.Errorf("%w: #%d is %s, want member reference", ErrWrongEntryKind, index, c.Tag)
	}
	owner, err := p.ClassName(c.Ref1)
	if err != nil {
		return MemberRef{}, err
	}
	name, desc, err := p.NameAndType(c.Ref2)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{Tag: c.Tag, Owner: owner, Name: name, Desc: desc}, nil
}

// DynamicNameAndType resolves the NameAndType of an InvokeDynamic or Dynamic entry.
func (p *Pool) DynamicNameAndType(index uint16) (name, desc string, err error) {
	c := p.Get(index)
	if c == nil {
		return "", "", fmt.Errorf("%w: %d", ErrBadPoolIndex, index)
	}
	if c.Tag != ConstantInvokeDynamic && c.Tag != ConstantDynamic {
		return "", "", fmt.Errorf("%w: #%d is %s, want InvokeDynamic", ErrWrongEntryKind, index, c.Tag)
	}
	return p.NameAndType(c.Ref2)
}

// StringValue returns the text of a String entry.
func (p *Pool) StringValue(index uint16) (string, error) {
	c := p.Get(index)
	if c == nil || c.Tag != ConstantString {
		return "", fmt.Errorf("%w: #%d, want String", ErrWrongEntryKind, index)
	}
	return p.Utf8(c.Ref1)
}

// Int returns the value of an Integer entry.
func (c *Constant) Int() int32 { return int32(uint32(c.Value)) }

// Long returns the value of a Long entry.
func (c *Constant) Long() int64 { return int64(c.Value) }

// Float returns the value of a Float entry.
func (c *Constant) Float() float32 { return math.Float32frombits(uint32(c.Value)) }

// Double returns the value of a Double entry.
func (c *Constant) Double() float64 { return math.Float64frombits(c.Value) }

func (p *Pool) key(c *Constant) string {
	return fmt.Sprintf("%d:%x:%d:%d:%d:%d", c.Tag, c.Bytes, c.Value, c.Ref1, c.Ref2, c.Kind)
}

func (p *Pool) index() {
	if p.lookup != nil {
		return
	}
	p.lookup = make(map[string]uint16, len(p.entries))
	for i, c := range p.entries {
		if c == nil {
			continue
		}
		k := p.key(c)
		if _, dup := p.lookup[k]; !dup {
			p.lookup[k] = uint16(i)
		}
	}
}

// intern returns the index of an entry equal to c, appending it if absent.
func (p *Pool) intern(c *Constant) (uint16, error) {
	p.index()
	k := p.key(c)
	if idx, ok := p.lookup[k]; ok {
		return idx, nil
	}
	slots := 1
	if c.Tag.Wide() {
		slots = 2
	}
	if len(p.entries)+slots > math.MaxUint16 {
		return 0, ErrPoolOverflow
	}
	idx := uint16(len(p.entries))
	p.entries = append(p.entries, c)
	if slots == 2 {
		p.entries = append(p.entries, nil)
	}
	p.lookup[k] = idx
	return idx, nil
}

// append adds a parsed entry without de-duplication; parsing must keep every
// slot exactly where the input put it.
func (p *Pool) append(c *Constant) {
	p.entries = append(p.entries, c)
	if c.Tag.Wide() {
		p.entries = append(p.entries, nil)
	}
	p.lookup = nil
}

func (p *Pool) AddUtf8(s string) (uint16, error) {
	return p.intern(&Constant{Tag: ConstantUtf8, Bytes: encodeModifiedUTF8(s)})
}

func (p *Pool) AddClass(name string) (uint16, error) {
	n, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: ConstantClass, Ref1: n})
}

func (p *Pool) AddString(s string) (uint16, error) {
	n, err := p.AddUtf8(s)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: ConstantString, Ref1: n})
}

func (p *Pool) AddInteger(v int32) (uint16, error) {
	return p.intern(&Constant{Tag: ConstantInteger, Value: uint64(uint32(v))})
}

func (p *Pool) AddFloat(v float32) (uint16, error) {
	return p.intern(&Constant{Tag: ConstantFloat, Value: uint64(math.Float32bits(v))})
}

func (p *Pool) AddLong(v int64) (uint16, error) {
	return p.intern(&Constant{Tag: ConstantLong, Value: uint64(v)})
}

func (p *Pool) AddDouble(v float64) (uint16, error) {
	return p.intern(&Constant{Tag: ConstantDouble, Value: math.Float64bits(v)})
}

func (p *Pool) AddNameAndType(name, desc string) (uint16, error) {
	n, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	d, err := p.AddUtf8(desc)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: ConstantNameAndType, Ref1: n, Ref2: d})
}

func (p *Pool) addMember(tag ConstantTag, owner, name, desc string) (uint16, error) {
	cls, err := p.AddClass(owner)
	if err != nil {
		return 0, err
	}
	nt, err := p.AddNameAndType(name, desc)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: tag, Ref1: cls, Ref2: nt})
}

func (p *Pool) AddFieldref(owner, name, desc string) (uint16, error) {
	return p.addMember(ConstantFieldref, owner, name, desc)
}

func (p *Pool) AddMethodref(owner, name, desc string) (uint16, error) {
	return p.addMember(ConstantMethodref, owner, name, desc)
}

func (p *Pool) AddInterfaceMethodref(owner, name, desc string) (uint16, error) {
	return p.addMember(ConstantInterfaceMethodref, owner, name, desc)
}

func (p *Pool) clone() *Pool {
	np := &Pool{entries: make([]*Constant, len(p.entries))}
	for i, c := range p.entries {
		if c == nil {
			continue
		}
		cc := *c
		cc.Bytes = append([]byte(nil), c.Bytes...)
		np.entries[i] = &cc
	}
	return np
}

func readConstant(s *Stream) (*Constant, error) {
	tag, err := s.ReadUint8()
	if err != nil {
		return nil, err
	}
	c := &Constant{Tag: ConstantTag(tag)}
	switch c.Tag {
	case ConstantUtf8:
		n, err := s.ReadUint16()
		if err != nil {
			return nil, err
		}
		if c.Bytes, err = s.ReadBytes(int(n)); err != nil {
			return nil, err
		}
	case ConstantInteger, ConstantFloat:
		v, err := s.ReadUint32()
		if err != nil {
			return nil, err
		}
		c.Value = uint64(v)
	case ConstantLong, ConstantDouble:
		if c.Value, err = s.ReadUint64(); err != nil {
			return nil, err
		}
	case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		if c.Ref1, err = s.ReadUint16(); err != nil {
			return nil, err
		}
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
		ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
		if c.Ref1, err = s.ReadUint16(); err != nil {
			return nil, err
		}
		if c.Ref2, err = s.ReadUint16(); err != nil {
			return nil, err
		}
	case ConstantMethodHandle:
		if c.Kind, err = s.ReadUint8(); err != nil {
			return nil, err
		}
		if c.Ref1, err = s.ReadUint16(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadPoolTag, tag)
	}
	return c, nil
}

func writeConstant(w *Writer, c *Constant) {
	w.WriteUint8(uint8(c.Tag))
	switch c.Tag {
	case ConstantUtf8:
		w.WriteUint16(uint16(len(c.Bytes)))
		w.WriteBytes(c.Bytes)
	case ConstantInteger, ConstantFloat:
		w.WriteUint32(uint32(c.Value))
	case ConstantLong, ConstantDouble:
		w.WriteUint64(c.Value)
	case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		w.WriteUint16(c.Ref1)
	case ConstantMethodHandle:
		w.WriteUint8(c.Kind)
		w.WriteUint16(c.Ref1)
	default:
		w.WriteUint16(c.Ref1)
		w.WriteUint16(c.Ref2)
	}
}
