package pipeline_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
	"hyinit/internal/pipeline"
	"hyinit/internal/planner"
	"hyinit/internal/testutil"
	"hyinit/internal/verifier"
)

const acc = classfile.AccPublic | classfile.AccStatic

func game(t *testing.T, name string) []byte {
	t.Helper()
	return testutil.NewClass(name).
		Method(acc, "run", "()V", func(a *testutil.Asm) {
			a.Op(bytecode.OpNop, bytecode.OpReturn)
		}).
		Method(acc, "pick", "(I)I", func(a *testutil.Asm) {
			a.Op(bytecode.OpIload0).Jump(bytecode.OpIfeq, "zero")
			a.Op(bytecode.OpIconst1, bytecode.OpIreturn)
			a.Label("zero").Op(bytecode.OpIconst0, bytecode.OpIreturn)
		}).
		Build(t)
}

func hook(name string) patch.Op {
	return patch.Call("invokestatic", "mod/Hooks", name, "()V", false)
}

func register(t *testing.T, r *patch.Registry, decls ...*patch.Decl) {
	t.Helper()
	for _, d := range decls {
		require.NoError(t, d.Register(r))
	}
}

func decode(t *testing.T, data []byte, name, desc string) *bytecode.Code {
	t.Helper()
	c, err := classfile.Parse(data)
	require.NoError(t, err)
	m := c.FindMethod(name, desc)
	require.NotNil(t, m)
	attr, err := c.Code(m)
	require.NoError(t, err)
	code, err := bytecode.DecodeCode(c, attr)
	require.NoError(t, err)
	return code
}

func TestTransform_Untargeted(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r, patch.Declare("x").Target("t/Other", "run", "()V").WrapBefore(hook("x")))
	in := game(t, "t/Game")

	tr := pipeline.New(r, pipeline.DefaultOptions())
	out := tr.Transform("t.Game", in)
	assert.True(t, bytes.Equal(in, out))
	assert.Empty(t, tr.Diags())
	assert.Equal(t, 1, tr.Stats().Requests)
}

func TestTransform_Weaves(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r,
		patch.Declare("tick").Target("t.Game", "run", "()V").WrapBefore(hook("tick")),
		patch.Declare("exit").Target("t.Game", "pick", "(I)I").WrapAfter(hook("exit")),
	)
	in := game(t, "t/Game")
	tr := pipeline.New(r, pipeline.DefaultOptions())

	out, err := tr.TransformClass("t.Game", in)
	require.NoError(t, err)
	require.False(t, bytes.Equal(in, out))
	assert.Empty(t, tr.Diags())

	run := decode(t, out, "run", "()V")
	assert.Equal(t, bytecode.OpInvokestatic, run.Insts[0].Op)

	pick := decode(t, out, "pick", "(I)I")
	assert.Equal(t, 8, pick.Len())
	assert.True(t, pick.HasFrames())

	// The woven class passes verification on its own.
	c, err := classfile.Parse(out)
	require.NoError(t, err)
	m := c.FindMethod("pick", "(I)I")
	_, err = verifier.Verify(c, m, pick, verifier.Options{})
	require.NoError(t, err)
}

func TestTransform_Deterministic(t *testing.T) {
	build := func() *patch.Registry {
		r := patch.NewRegistry()
		register(t, r,
			patch.Declare("b").Target("t/Game", "run", "()V").WrapBefore(hook("b")).Priority(2),
			patch.Declare("a").Target("t/Game", "run", "()V").WrapBefore(hook("a")).Priority(1),
			patch.Declare("s").Target("t/Game", "pick", "(I)I").InjectAt(patch.Anchor{Kind: patch.AtIndex, Index: 4}, patch.LdcString("zero"), patch.Ins("pop")),
		)
		return r
	}
	in := game(t, "t/Game")
	first := pipeline.New(build(), pipeline.DefaultOptions()).Transform("t/Game", in)
	second := pipeline.New(build(), pipeline.DefaultOptions()).Transform("t/Game", in)
	require.False(t, bytes.Equal(in, first))
	assert.Equal(t, first, second)
}

func TestTransform_FailSafe(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r,
		patch.Declare("broken").Target("t/Bad", "run", "()V").WrapBefore(patch.Ins("iadd")),
		patch.Declare("fine").Target("t/Good", "run", "()V").WrapBefore(hook("fine")),
	)
	tr := pipeline.New(r, pipeline.DefaultOptions())

	bad := game(t, "t/Bad")
	out, err := tr.TransformClass("t/Bad", bad)
	assert.True(t, bytes.Equal(bad, out))
	var ve *verifier.VerificationError
	require.True(t, errors.As(err, &ve), "err = %v", err)
	assert.ErrorIs(t, err, verifier.ErrStackUnderflow)

	diags := tr.Diags()
	require.Len(t, diags, 1)
	assert.Equal(t, classfile.DiagVerification, diags[0].Kind)
	assert.Equal(t, "t/Bad", diags[0].Class)
	assert.Equal(t, "run()V", diags[0].Method)
	assert.Equal(t, "broken", diags[0].Patch)

	good := game(t, "t/Good")
	assert.False(t, bytes.Equal(good, tr.Transform("t/Good", good)))
	assert.Equal(t, 1, tr.Stats().Fallbacks)
	assert.Equal(t, 1, tr.Stats().Transformed)
}

func TestTransform_Malformed(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r, patch.Declare("x").Target("t/Game", "run", "()V").WrapBefore(hook("x")))
	tr := pipeline.New(r, pipeline.DefaultOptions())

	in := game(t, "t/Game")
	truncated := in[:len(in)/2]
	out, err := tr.TransformClass("t/Game", truncated)
	assert.True(t, bytes.Equal(truncated, out))
	var mce *classfile.MalformedClassError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, classfile.DiagMalformed, tr.Diags()[0].Kind)

	// Bytes of another class under a targeted name.
	_, err = tr.TransformClass("t/Game", game(t, "t/Impostor"))
	require.Error(t, err)
}

func TestTransform_AnchorMissing(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r,
		patch.Declare("gone").Target("t/Game", "absent", "()V").WrapBefore(hook("x")),
		patch.Declare("idx").Target("t/Game", "run", "()V").InjectAt(patch.Anchor{Kind: patch.AtIndex, Index: 40}, hook("x")),
	)
	tr := pipeline.New(r, pipeline.DefaultOptions())
	in := game(t, "t/Game")
	assert.True(t, bytes.Equal(in, tr.Transform("t/Game", in)))
	diags := tr.Diags()
	require.NotEmpty(t, diags)
	assert.Equal(t, classfile.DiagAnchor, diags[0].Kind)
}

func TestTransform_ConflictPolicy(t *testing.T) {
	r := patch.NewRegistry()
	at := patch.Anchor{Kind: patch.AtIndex, Index: 0}
	register(t, r,
		patch.Declare("first").Target("t/Game", "run", "()V").InjectAt(at, hook("first")),
		patch.Declare("second").Target("t/Game", "run", "()V").InjectAt(at, hook("second")).Priority(5),
	)
	in := game(t, "t/Game")

	abort := pipeline.New(r, pipeline.DefaultOptions())
	_, err := abort.TransformClass("t/Game", in)
	var pc *planner.PatchConflictError
	require.True(t, errors.As(err, &pc))
	assert.Equal(t, classfile.DiagConflict, abort.Diags()[0].Kind)
	assert.Equal(t, "second", abort.Diags()[0].Patch)

	opts := pipeline.DefaultOptions()
	opts.Conflicts = planner.Degrade
	degrade := pipeline.New(r, opts)
	out, err := degrade.TransformClass("t/Game", in)
	require.NoError(t, err)
	run := decode(t, out, "run", "()V")
	assert.Equal(t, 3, run.Len())
	require.Len(t, degrade.Diags(), 1)
	assert.Equal(t, classfile.DiagDegraded, degrade.Diags()[0].Kind)
}

func TestTransform_FallbackMethod(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r,
		patch.Declare("broken").Target("t/Game", "pick", "(I)I").WrapBefore(patch.Ins("pop")),
		patch.Declare("fine").Target("t/Game", "run", "()V").WrapBefore(hook("fine")),
	)
	in := game(t, "t/Game")

	strict := pipeline.New(r, pipeline.DefaultOptions())
	assert.True(t, bytes.Equal(in, strict.Transform("t/Game", in)))

	opts := pipeline.DefaultOptions()
	opts.Fallback = pipeline.FallbackMethod
	lenient := pipeline.New(r, opts)
	out := lenient.Transform("t/Game", in)
	require.False(t, bytes.Equal(in, out))
	assert.Equal(t, 3, decode(t, out, "run", "()V").Len())
	assert.Equal(t, 6, decode(t, out, "pick", "(I)I").Len())
	require.Len(t, lenient.Diags(), 1)
	assert.Equal(t, "broken", lenient.Diags()[0].Patch)
}

func TestTransform_Excluded(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r,
		patch.Declare("jdk").Target("java/lang/Thread", "run", "()V").WrapBefore(hook("x")),
		patch.Declare("own").Target("cc/hyinit/shared/Meta", "run", "()V").WrapBefore(hook("x")),
	)
	opts := pipeline.DefaultOptions()
	opts.Exclude = []string{"cc.hyinit.shared."}
	tr := pipeline.New(r, opts)
	assert.False(t, tr.CanTransform("java.lang.Thread"))
	assert.False(t, tr.CanTransform("cc.hyinit.shared.Meta"))
	assert.True(t, tr.CanTransform("com.hypixel.hytale.Main"))

	in := game(t, "java/lang/Thread")
	assert.True(t, bytes.Equal(in, tr.Transform("java/lang/Thread", in)))
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *mapCache) Put(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func TestTransform_ConcurrentAndCached(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r, patch.Declare("tick").Target("t/Game", "run", "()V").WrapBefore(hook("tick")))
	r.Freeze()
	in := game(t, "t/Game")
	other := game(t, "t/Untouched")

	cache := &mapCache{data: make(map[string][]byte)}
	opts := pipeline.DefaultOptions()
	opts.Cache = cache
	tr := pipeline.New(r, opts)

	const n = 16
	outs := make([][]byte, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				outs[i] = tr.Transform("t/Game", in)
				return
			}
			outs[i] = tr.Transform("t/Untouched", other)
		}()
	}
	wg.Wait()
	for i := range n {
		if i%2 == 0 {
			assert.Equal(t, outs[0], outs[i])
			continue
		}
		assert.True(t, bytes.Equal(other, outs[i]))
	}
	require.False(t, bytes.Equal(in, outs[0]))
	assert.Len(t, cache.data, 1)

	// A fresh transformer over the same registry reuses the stored result.
	again := pipeline.New(r, opts)
	assert.Equal(t, outs[0], again.Transform("t/Game", in))
	assert.Equal(t, 1, again.Stats().CacheHits)
	assert.Equal(t, 0, again.Stats().Transformed)
}

func TestTransform_ResultIsCallersCopy(t *testing.T) {
	r := patch.NewRegistry()
	register(t, r, patch.Declare("tick").Target("t/Game", "run", "()V").WrapBefore(hook("tick")))
	r.Freeze()
	in := game(t, "t/Game")

	cache := &mapCache{data: make(map[string][]byte)}
	opts := pipeline.DefaultOptions()
	opts.Cache = cache
	tr := pipeline.New(r, opts)

	first := tr.Transform("t/Game", in)
	require.False(t, bytes.Equal(in, first))
	want := bytes.Clone(first)

	// A host scribbling over a returned buffer must not reach later callers.
	clear(first)
	second := tr.Transform("t/Game", in)
	assert.Equal(t, want, second)
	assert.Equal(t, 1, tr.Stats().CacheHits)

	clear(second)
	assert.Equal(t, want, tr.Transform("t/Game", in))
	for _, stored := range cache.data {
		assert.Equal(t, want, stored)
	}
}

func TestParseFallback(t *testing.T) {
	for _, s := range []string{"class", "method"} {
		f, err := pipeline.ParseFallback(s)
		require.NoError(t, err)
		assert.Equal(t, s, f.String())
	}
	_, err := pipeline.ParseFallback("none")
	require.Error(t, err)
}
