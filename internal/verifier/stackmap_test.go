package verifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/testutil"
	"hyinit/internal/verifier"
)

// stackMap re-encodes code and returns the body of its StackMapTable.
func stackMap(t *testing.T, c *classfile.Class, code *bytecode.Code) []byte {
	t.Helper()
	data, err := code.Encode(c)
	require.NoError(t, err)
	out, err := bytecode.DecodeCode(c, classfile.Attribute{Data: data})
	require.NoError(t, err)
	require.True(t, out.HasFrames())
	for _, a := range out.Attributes {
		if c.AttributeName(a) == classfile.AttrStackMapTable {
			return a.Data
		}
	}
	t.Fatal("no StackMapTable")
	return nil
}

func TestGenerateFrames_Branch(t *testing.T) {
	b := method("pick", "(I)I", acc, func(a *testutil.Asm) {
		a.Op(bytecode.OpIload0).Jump(bytecode.OpIfeq, "zero")
		a.Op(bytecode.OpIconst1, bytecode.OpIreturn)
		a.Label("zero").Op(bytecode.OpIconst0, bytecode.OpIreturn)
	})
	c, m, code := load(t, b, "pick")

	_, err := verifier.GenerateFrames(c, m, code, verifier.Options{})
	require.NoError(t, err)

	want := []byte{
		0, 1, // one frame
		255, 0, 6, // full_frame at pc 6
		0, 1, 1, // locals: int
		0, 0, // empty stack
	}
	assert.Equal(t, want, stackMap(t, c, code))
}

func TestGenerateFrames_WideAndReference(t *testing.T) {
	b := method("f", "(JLjava/lang/String;)V", acc, func(a *testutil.Asm) {
		a.Maxs(4, 3)
		a.Op(bytecode.OpAload2).Jump(bytecode.OpIfnull, "out")
		a.Label("out").Op(bytecode.OpReturn)
	})
	c, m, code := load(t, b, "f")

	_, err := verifier.GenerateFrames(c, m, code, verifier.Options{})
	require.NoError(t, err)

	body := stackMap(t, c, code)
	str, err := c.Pool.AddClass("java/lang/String")
	require.NoError(t, err)
	want := []byte{
		0, 1,
		255, 0, 4, // aload_2 (1) + ifnull (3)
		0, 2, 4, 7, byte(str >> 8), byte(str),
		0, 0,
	}
	assert.Equal(t, want, body)
}

func TestGenerateFrames_DeadCode(t *testing.T) {
	b := method("f", "()V", acc, func(a *testutil.Asm) {
		a.Label("start").Jump(bytecode.OpGoto, "out")
		a.Op(bytecode.OpIconst0, bytecode.OpPop)
		a.Label("out").Op(bytecode.OpReturn)
		a.Label("catch").Op(bytecode.OpPop, bytecode.OpReturn)
		a.Try("start", "out", "catch", "")
	})
	c, m, code := load(t, b, "f")

	an, err := verifier.GenerateFrames(c, m, code, verifier.Options{})
	require.NoError(t, err)
	assert.Equal(t, bytecode.OpNop, code.Insts[1].Op)
	assert.Equal(t, bytecode.OpAthrow, code.Insts[2].Op)
	assert.False(t, an.Reachable(1))
	assert.Equal(t, []bytecode.Handler{{Start: 0, End: 1, Handler: 4}}, code.Handlers)

	body := stackMap(t, c, code)
	throwable, err := c.Pool.AddClass("java/lang/Throwable")
	require.NoError(t, err)
	want := []byte{
		0, 3,
		255, 0, 3, 0, 0, 0, 1, 7, byte(throwable >> 8), byte(throwable), // dead nop at pc 3
		255, 0, 1, 0, 0, 0, 0, // return at pc 5
		255, 0, 0, 0, 0, 0, 1, 7, byte(throwable >> 8), byte(throwable), // handler at pc 6
	}
	assert.Equal(t, want, body)

	_, err = verifier.Verify(c, m, code, verifier.Options{})
	require.NoError(t, err)
}

func TestGenerateFrames_NoBranches(t *testing.T) {
	b := method("f", "()V", acc, func(a *testutil.Asm) {
		a.Op(bytecode.OpNop, bytecode.OpReturn)
	})
	c, m, code := load(t, b, "f")
	_, err := verifier.GenerateFrames(c, m, code, verifier.Options{})
	require.NoError(t, err)

	data, err := code.Encode(c)
	require.NoError(t, err)
	out, err := bytecode.DecodeCode(c, classfile.Attribute{Data: data})
	require.NoError(t, err)
	assert.False(t, out.HasFrames())
}
