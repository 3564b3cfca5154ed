package planner_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyinit/internal/patch"
	"hyinit/internal/planner"
)

const (
	class  = "com/hypixel/hytale/server/core/Tick"
	method = "run"
	desc   = "()V"
)

var (
	hook      = patch.Call("invokestatic", "mod/Hooks", "hook", "()V", false)
	printCall = patch.Member{Owner: "java/io/PrintStream", Name: "println", Desc: "(Ljava/lang/String;)V"}
	drop      = []patch.Op{patch.Ins("pop2")}
)

// registered registers every declaration in a fresh registry and returns
// the stored patches in plan order.
func registered(t *testing.T, decls ...*patch.Decl) []*patch.Patch {
	t.Helper()
	r := patch.NewRegistry()
	for _, d := range decls {
		require.NoError(t, d.Register(r))
	}
	return r.PatchesFor(class, method, desc)
}

func decl(id string) *patch.Decl { return patch.Declare(id).Target(class, method, desc) }

func at(index int, shift patch.Shift) patch.Anchor {
	return patch.Anchor{Kind: patch.AtIndex, Index: index, Shift: shift}
}

func ids(ps []*patch.Patch) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestBuild_Order(t *testing.T) {
	ps := registered(t,
		decl("late").WrapBefore(hook).Priority(20),
		decl("first").WrapAfter(hook).Priority(-5),
		decl("mid-a").WrapBefore(hook).Priority(10),
		decl("mid-b").InjectAt(at(3, patch.After), hook).Priority(10),
	)
	// Reverse the input so the result depends on the keys, not the input order.
	rev := make([]*patch.Patch, len(ps))
	for i, p := range ps {
		rev[len(ps)-1-i] = p
	}
	plan, err := planner.Build(rev)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "mid-a", "mid-b", "late"}, ids(plan.Patches))
	assert.Equal(t, patch.Target{Class: class, Method: method, Desc: desc}, plan.Target)
	assert.Equal(t, 4, plan.Len())
}

func TestBuild_Conflicts(t *testing.T) {
	tests := []struct {
		name  string
		decls []*patch.Decl
		a, b  string
	}{
		{
			name:  "replace after wrap",
			decls: []*patch.Decl{decl("wrap").WrapBefore(hook), decl("swap").Replace(patch.Ins("return")).Priority(5)},
			a:     "wrap", b: "swap",
		},
		{
			name:  "replace ordered last",
			decls: []*patch.Decl{decl("swap").Replace(patch.Ins("return")).Priority(5), decl("inj").InjectAt(at(0, patch.Before), hook)},
			a:     "inj", b: "swap",
		},
		{
			name:  "same index",
			decls: []*patch.Decl{decl("x").InjectAt(at(2, patch.Before), hook), decl("y").InjectAt(at(2, patch.Before), hook)},
			a:     "x", b: "y",
		},
		{
			name:  "one-sided compatibility",
			decls: []*patch.Decl{decl("x").InjectAt(at(2, patch.Before), hook).CompatibleWith("y"), decl("y").InjectAt(at(2, patch.Before), hook)},
			a:     "x", b: "y",
		},
		{
			name:  "replace overlaps injection",
			decls: []*patch.Decl{decl("x").InjectAt(at(2, patch.After), hook), decl("y").InjectAt(at(2, patch.Instead), patch.Ins("nop"))},
			a:     "x", b: "y",
		},
		{
			name:  "two redirects",
			decls: []*patch.Decl{decl("r1").Redirect(printCall, 0, drop...), decl("r2").Redirect(printCall, 0, drop...)},
			a:     "r1", b: "r2",
		},
		{
			name:  "redirect all overlaps ordinal",
			decls: []*patch.Decl{decl("r1").Redirect(printCall, patch.AllOrdinals, drop...), decl("r2").Redirect(printCall, 3, drop...)},
			a:     "r1", b: "r2",
		},
		{
			name: "redirect and inject replace",
			decls: []*patch.Decl{
				decl("r1").Redirect(printCall, 1, drop...),
				decl("inj").InjectAt(patch.Anchor{Kind: patch.AtInvoke, Invoke: printCall, Ordinal: 1, Shift: patch.Instead}, drop...),
			},
			a: "r1", b: "inj",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planner.Build(registered(t, tt.decls...))
			var pc *planner.PatchConflictError
			require.True(t, errors.As(err, &pc), "err = %v", err)
			assert.Equal(t, tt.a, pc.A.ID)
			assert.Equal(t, tt.b, pc.B.ID)
			assert.Contains(t, pc.Error(), tt.a+" conflicts with "+tt.b)
		})
	}
}

func TestBuild_TwoReplaces(t *testing.T) {
	// The registry refuses a second replace, so plan patches from two
	// registries directly.
	a := registered(t, decl("a").Replace(patch.Ins("return")))
	b := registered(t, decl("b").Replace(patch.Ins("return")).Priority(1))
	_, err := planner.Build(append(a, b...))
	var pc *planner.PatchConflictError
	require.True(t, errors.As(err, &pc))
	assert.Equal(t, "both replace the method", pc.Reason)
}

func TestBuild_Compose(t *testing.T) {
	tests := []struct {
		name  string
		decls []*patch.Decl
	}{
		{"wraps", []*patch.Decl{decl("a").WrapBefore(hook), decl("b").WrapBefore(hook), decl("c").WrapAfter(hook)}},
		{"replace first", []*patch.Decl{decl("swap").Replace(patch.Ins("return")).Priority(-1), decl("w").WrapBefore(hook)}},
		{"mutual compatibility", []*patch.Decl{
			decl("x").InjectAt(at(2, patch.Before), hook).CompatibleWith("y"),
			decl("y").InjectAt(at(2, patch.Before), hook).CompatibleWith("x"),
		}},
		{"different placement", []*patch.Decl{decl("x").InjectAt(at(2, patch.Before), hook), decl("y").InjectAt(at(2, patch.After), hook)}},
		{"different index", []*patch.Decl{decl("x").InjectAt(at(2, patch.Instead), hook), decl("y").InjectAt(at(3, patch.Instead), hook)}},
		{"different ordinals", []*patch.Decl{decl("r1").Redirect(printCall, 0, drop...), decl("r2").Redirect(printCall, 1, drop...)}},
		{"inject beside redirect", []*patch.Decl{
			decl("inj").InjectAt(patch.Anchor{Kind: patch.AtInvoke, Invoke: printCall, Shift: patch.Before}, hook),
			decl("r1").Redirect(printCall, 0, drop...),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planner.Build(registered(t, tt.decls...))
			require.NoError(t, err)
			assert.Equal(t, len(tt.decls), plan.Len())
		})
	}
}

func TestBuildDegraded(t *testing.T) {
	ps := registered(t,
		decl("low").InjectAt(at(4, patch.Before), hook).Priority(50),
		decl("high").InjectAt(at(4, patch.Before), hook).Priority(1),
		decl("wrap").WrapBefore(hook).Priority(2),
		decl("r1").Redirect(printCall, 0, drop...).Priority(3),
		decl("r2").Redirect(printCall, patch.AllOrdinals, drop...).Priority(4),
	)
	plan, dropped := planner.BuildDegraded(ps)
	assert.Equal(t, []string{"high", "wrap", "r1"}, ids(plan.Patches))
	require.Len(t, dropped, 2)
	assert.Equal(t, "r2", dropped[0].B.ID)
	assert.Equal(t, "r1", dropped[0].A.ID)
	assert.Equal(t, "low", dropped[1].B.ID)
	assert.Equal(t, "high", dropped[1].A.ID)
}

func TestBuild_Empty(t *testing.T) {
	plan, err := planner.Build(nil)
	require.NoError(t, err)
	if plan.Len() != 0 {
		t.Fatalf("Len = %d, want 0", plan.Len())
	}
}

func TestForClass(t *testing.T) {
	r := patch.NewRegistry()
	require.NoError(t, patch.Declare("b").Target(class, "b", "()V").WrapBefore(hook).Register(r))
	require.NoError(t, patch.Declare("a2").Target(class, "a", "(I)V").WrapBefore(hook).Register(r))
	require.NoError(t, patch.Declare("a1").Target(class, "a", "()V").InjectAt(at(1, patch.Before), hook).Register(r))
	require.NoError(t, patch.Declare("a1-dup").Target(class, "a", "()V").InjectAt(at(1, patch.Before), hook).Priority(9).Register(r))

	_, err := planner.ForClass(r, class, planner.Abort)
	var pc *planner.PatchConflictError
	require.True(t, errors.As(err, &pc))

	cp, err := planner.ForClass(r, "com.hypixel.hytale.server.core.Tick", planner.Degrade)
	require.NoError(t, err)
	require.Len(t, cp.Plans, 3)
	assert.Equal(t, "()V", cp.Plans[0].Target.Desc)
	assert.Equal(t, "(I)V", cp.Plans[1].Target.Desc)
	assert.Equal(t, "b", cp.Plans[2].Target.Method)
	assert.Equal(t, 3, cp.Len())
	require.Len(t, cp.Dropped, 1)
	assert.Equal(t, "a1-dup", cp.Dropped[0].B.ID)

	none, err := planner.ForClass(r, "other/Class", planner.Abort)
	require.NoError(t, err)
	assert.Empty(t, none.Plans)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]planner.Policy{"": planner.Abort, "abort": planner.Abort, "degrade": planner.Degrade} {
		got, err := planner.ParsePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
		if in != "" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := planner.ParsePolicy("ignore")
	require.Error(t, err)
}
