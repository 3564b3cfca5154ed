package classfile_test

import (
	"bytes"
	"errors"
	"testing"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/testutil"
)

func sample(t *testing.T) []byte {
	t.Helper()
	return testutil.NewClass("com/example/Sample").
		Field(classfile.AccPrivate, "count", "I").
		Method(classfile.AccPublic, "<init>", "()V", func(a *testutil.Asm) {
			a.Line(1).Op(bytecode.OpAload0).
				Invoke(bytecode.OpInvokespecial, "java/lang/Object", "<init>", "()V").
				Op(bytecode.OpReturn)
		}).
		Method(classfile.AccPublic|classfile.AccStatic, "pick", "(I)Ljava/lang/String;", func(a *testutil.Asm) {
			a.Line(3).Op(bytecode.OpIload0).Jump(bytecode.OpIfeq, "zero").
				Ldc("non-zero").Op(bytecode.OpAreturn).
				Label("zero").Line(4).Ldc("zero").Op(bytecode.OpAreturn)
		}).
		Method(classfile.AccPublic|classfile.AccAbstract, "later", "()V", nil).
		Attribute("SourceFile", []byte{0x00, 0x01}).
		Attribute("com.example.Opaque", []byte{1, 2, 3, 4, 5}).
		Build(t)
}

func TestRoundTrip_Unmodified(t *testing.T) {
	in := sample(t)
	c, err := classfile.Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	out := classfile.Serialize(c)
	if !bytes.Equal(in, out) {
		t.Fatalf("round trip changed %d bytes into %d bytes", len(in), len(out))
	}
}

func TestRoundTrip_CodeReencode(t *testing.T) {
	in := sample(t)
	c, err := classfile.Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range c.Methods {
		attr, err := c.Code(m)
		if err != nil {
			continue
		}
		code, err := bytecode.DecodeCode(c, attr)
		if err != nil {
			t.Fatalf("%s: %v", m.Name, err)
		}
		data, err := code.Encode(c)
		if err != nil {
			t.Fatalf("%s: %v", m.Name, err)
		}
		if err := c.SetCode(m, data); err != nil {
			t.Fatal(err)
		}
	}
	if out := c.Bytes(); !bytes.Equal(in, out) {
		t.Fatal("decode/encode of unmodified bodies changed the class")
	}
}

func TestParse_Fields(t *testing.T) {
	c, err := classfile.Parse(sample(t))
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "com/example/Sample" {
		t.Errorf("name = %s", c.Name)
	}
	if c.SuperName != "java/lang/Object" {
		t.Errorf("super = %s", c.SuperName)
	}
	if len(c.Fields) != 1 || c.Fields[0].Name != "count" {
		t.Errorf("fields = %+v", c.Fields)
	}
	if m := c.FindMethod("pick", "(I)Ljava/lang/String;"); m == nil {
		t.Error("pick not found")
	}
	if m := c.FindMethod("pick", "(J)Ljava/lang/String;"); m != nil {
		t.Error("pick(J) should be absent")
	}
	if _, err := c.Code(c.FindMethod("later", "()V")); !errors.Is(err, classfile.ErrNoCode) {
		t.Errorf("abstract method code err = %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	good := sample(t)
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, classfile.ErrStreamEOF},
		{"magic", append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, good[4:]...), classfile.ErrBadMagic},
		{"truncated", good[:len(good)-3], classfile.ErrStreamEOF},
		{"trailing", append(append([]byte(nil), good...), 0), classfile.ErrTrailingData},
		{"version", append(append([]byte(nil), good[:6]...), append([]byte{0x00, 0x10}, good[8:]...)...), classfile.ErrUnsupported},
	}
	for _, tt := range tests {
		_, err := classfile.Parse(tt.in)
		var mce *classfile.MalformedClassError
		if !errors.As(err, &mce) {
			t.Errorf("%s: err = %v, want MalformedClassError", tt.name, err)
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestParse_BadPoolTag(t *testing.T) {
	good := sample(t)
	bad := append([]byte(nil), good...)
	bad[10] = 2 // first pool entry tag; 2 is unassigned
	_, err := classfile.Parse(bad)
	if !errors.Is(err, classfile.ErrBadPoolTag) {
		t.Errorf("err = %v, want ErrBadPoolTag", err)
	}
}

func TestClone_Independent(t *testing.T) {
	c, err := classfile.Parse(sample(t))
	if err != nil {
		t.Fatal(err)
	}
	before := c.Bytes()
	cl := c.Clone()
	if _, err := cl.Pool.AddUtf8("only-in-clone"); err != nil {
		t.Fatal(err)
	}
	cl.Methods[0].Attributes[0].Data[0] = 0xFF
	if !bytes.Equal(before, c.Bytes()) {
		t.Error("mutating the clone changed the original")
	}
}
