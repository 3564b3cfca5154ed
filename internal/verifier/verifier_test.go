package verifier_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/testutil"
	"hyinit/internal/verifier"
)

const acc = classfile.AccPublic | classfile.AccStatic

func load(t *testing.T, b *testutil.ClassBuilder, name string) (*classfile.Class, *classfile.Method, *bytecode.Code) {
	t.Helper()
	c, err := classfile.Parse(b.Build(t))
	require.NoError(t, err)
	for _, m := range c.Methods {
		if m.Name != name {
			continue
		}
		attr, err := c.Code(m)
		require.NoError(t, err)
		code, err := bytecode.DecodeCode(c, attr)
		require.NoError(t, err)
		return c, m, code
	}
	t.Fatalf("method %s not found", name)
	return nil, nil, nil
}

func method(name, desc string, access classfile.AccessFlags, body func(*testutil.Asm)) *testutil.ClassBuilder {
	return testutil.NewClass("t/V").Method(access, name, desc, body)
}

func TestVerify_Loop(t *testing.T) {
	b := method("sum", "(I)I", acc, func(a *testutil.Asm) {
		a.Maxs(2, 3)
		a.Op(bytecode.OpIconst0, bytecode.OpIstore1, bytecode.OpIconst0, bytecode.OpIstore2)
		a.Label("loop").Op(bytecode.OpIload2, bytecode.OpIload0).Jump(bytecode.OpIfIcmpge, "end")
		a.Op(bytecode.OpIload1, bytecode.OpIload2, bytecode.OpIadd, bytecode.OpIstore1)
		a.Iinc(2, 1).Jump(bytecode.OpGoto, "loop")
		a.Label("end").Op(bytecode.OpIload1, bytecode.OpIreturn)
	})
	c, m, code := load(t, b, "sum")

	an, err := verifier.Verify(c, m, code, verifier.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, an.MaxStack)
	assert.Equal(t, 3, an.MaxLocals)
	for i := range code.Insts {
		assert.True(t, an.Reachable(i), "instruction %d", i)
	}
}

func TestVerify_Constructor(t *testing.T) {
	ok := method("<init>", "()V", classfile.AccPublic, func(a *testutil.Asm) {
		a.Op(bytecode.OpAload0).Invoke(bytecode.OpInvokespecial, "java/lang/Object", "<init>", "()V").Op(bytecode.OpReturn)
	})
	c, m, code := load(t, ok, "<init>")
	_, err := verifier.Verify(c, m, code, verifier.Options{})
	require.NoError(t, err)

	noSuper := method("<init>", "()V", classfile.AccPublic, func(a *testutil.Asm) {
		a.Op(bytecode.OpAload0, bytecode.OpPop, bytecode.OpReturn)
	})
	c, m, code = load(t, noSuper, "<init>")
	_, err = verifier.Verify(c, m, code, verifier.Options{})
	require.ErrorIs(t, err, verifier.ErrTypeMismatch)
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name  string
		desc  string
		body  func(*testutil.Asm)
		kind  error
		index int
	}{
		{
			name: "underflow", desc: "()V",
			body:  func(a *testutil.Asm) { a.Op(bytecode.OpIadd, bytecode.OpReturn) },
			kind:  verifier.ErrStackUnderflow,
			index: 0,
		},
		{
			name: "mismatch", desc: "()V",
			body: func(a *testutil.Asm) {
				a.Op(bytecode.OpFconst0, bytecode.OpIconst0, bytecode.OpIadd, bytecode.OpPop, bytecode.OpReturn)
			},
			kind:  verifier.ErrTypeMismatch,
			index: 2,
		},
		{
			name: "local out of bounds", desc: "()V",
			body: func(a *testutil.Asm) {
				a.Maxs(1, 1).Local(bytecode.OpIload, 3).Op(bytecode.OpPop, bytecode.OpReturn)
			},
			kind:  verifier.ErrLocalOutOfBounds,
			index: 0,
		},
		{
			name: "inconsistent merge", desc: "(I)V",
			body: func(a *testutil.Asm) {
				a.Op(bytecode.OpIload0).Jump(bytecode.OpIfeq, "join")
				a.Op(bytecode.OpIconst1)
				a.Label("join").Op(bytecode.OpReturn)
			},
			kind:  verifier.ErrInconsistentStack,
			index: 2,
		},
		{
			name: "falls off end", desc: "()V",
			body:  func(a *testutil.Asm) { a.Op(bytecode.OpIconst0, bytecode.OpPop) },
			kind:  verifier.ErrFallsOffEnd,
			index: 1,
		},
		{
			name: "wrong return", desc: "()I",
			body:  func(a *testutil.Asm) { a.Op(bytecode.OpReturn) },
			kind:  verifier.ErrTypeMismatch,
			index: 0,
		},
		{
			name: "uninitialized load", desc: "()V",
			body:  func(a *testutil.Asm) { a.Op(bytecode.OpIload0, bytecode.OpPop, bytecode.OpReturn) },
			kind:  verifier.ErrTypeMismatch,
			index: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m, code := load(t, method("f", tt.desc, acc, tt.body), "f")
			_, err := verifier.Verify(c, m, code, verifier.Options{})
			require.ErrorIs(t, err, tt.kind)
			var ve *verifier.VerificationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.index, ve.Index)
			assert.Equal(t, "t/V", ve.Class)
			assert.Equal(t, "f"+tt.desc, ve.Method)
		})
	}
}

func TestVerify_StackOverflow(t *testing.T) {
	b := method("f", "()V", acc, func(a *testutil.Asm) {
		a.Maxs(1, 0).Op(bytecode.OpIconst0, bytecode.OpIconst1, bytecode.OpPop2, bytecode.OpReturn)
	})
	c, m, code := load(t, b, "f")

	an, err := verifier.Analyze(c, m, code, verifier.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, an.MaxStack)

	_, err = verifier.Verify(c, m, code, verifier.Options{})
	require.ErrorIs(t, err, verifier.ErrStackOverflow)
	var ve *verifier.VerificationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 1, ve.Index)
}

func TestVerify_BadConstant(t *testing.T) {
	b := method("f", "()V", acc, func(a *testutil.Asm) {
		a.Field(bytecode.OpGetstatic, "t/V", "x", "I").Op(bytecode.OpPop, bytecode.OpReturn)
	})
	c, m, code := load(t, b, "f")
	code.Insts[0].Index = m.NameIndex

	_, err := verifier.Verify(c, m, code, verifier.Options{})
	require.ErrorIs(t, err, verifier.ErrBadConstant)
	require.ErrorIs(t, verifier.CheckConstants(c, m, code), verifier.ErrBadConstant)
}

func TestVerify_Subroutine(t *testing.T) {
	b := method("f", "()V", acc, func(a *testutil.Asm) {
		a.Jump(bytecode.OpJsr, "sub").Op(bytecode.OpReturn)
		a.Label("sub").Local(bytecode.OpAstore, 0).Local(bytecode.OpRet, 0)
	}).Version(49)
	c, m, code := load(t, b, "f")
	_, err := verifier.Verify(c, m, code, verifier.Options{})
	require.ErrorIs(t, err, verifier.ErrUnsupported)
}

func TestCheckPool(t *testing.T) {
	b := method("f", "()V", acc, func(a *testutil.Asm) {
		a.Ldc("s").Op(bytecode.OpPop).Invoke(bytecode.OpInvokestatic, "t/V", "g", "()V").Op(bytecode.OpReturn)
	})
	c, m, code := load(t, b, "f")
	require.NoError(t, verifier.CheckPool(c))
	require.NoError(t, verifier.CheckConstants(c, m, code))
}

func TestMapHierarchy(t *testing.T) {
	h := verifier.MapHierarchy{"a/B": "a/A", "a/C": "a/A", "a/A": "java/lang/Object", "x": "y", "y": "x"}
	tests := []struct {
		a, b, want string
	}{
		{"a/B", "a/C", "a/A"},
		{"a/B", "a/A", "a/A"},
		{"a/B", "a/B", "a/B"},
		{"a/B", "q/Z", "java/lang/Object"},
		{"x", "z", "java/lang/Object"},
	}
	for _, tt := range tests {
		if got := h.CommonSuperclass(tt.a, tt.b); got != tt.want {
			t.Errorf("CommonSuperclass(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}
