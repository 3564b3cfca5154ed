package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyinit/internal/archive"
	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/testutil"
)

const hookDecl = `{
  "source": "com.example:Hooks",
  "patches": [
    {
      "id": "hooks:tick",
      "target": {"class": "g.Game", "method": "tick", "desc": "()V"},
      "strategy": "wrap-before",
      "body": [
        {"op": "invokestatic", "owner": "mod/Hooks", "name": "tick", "desc": "()V"}
      ]
    }
  ]
}`

type fixture struct {
	dir, config, patches, jar, output string
	game                              []byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:     dir,
		config:  filepath.Join(dir, "hyinit.toml"),
		patches: filepath.Join(dir, "hooks.patches.json"),
		jar:     filepath.Join(dir, "server.jar"),
		output:  filepath.Join(dir, "woven.jar"),
	}
	f.game = testutil.NewClass("g/Game").
		Method(classfile.AccPublic|classfile.AccStatic, "tick", "()V", func(a *testutil.Asm) {
			a.Op(bytecode.OpReturn)
		}).
		Build(t)
	jar := archive.New()
	jar.Put("g/Game.class", f.game)
	require.NoError(t, jar.Save(f.jar))
	require.NoError(t, os.WriteFile(f.patches, []byte(hookDecl), 0644))

	conf := fmt.Sprintf("server_jar = %q\noutput = %q\nearly_plugins_dir = %q\nbuiltins = false\nlog_level = \"quiet\"\n",
		f.jar, f.output, filepath.Join(dir, "earlyplugins"))
	require.NoError(t, os.WriteFile(f.config, []byte(conf), 0644))
	return f
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWeaveCommand(t *testing.T) {
	f := newFixture(t)
	report := filepath.Join(f.dir, "report.json")

	out, err := execute(t, "--config", f.config, "weave", "--patches", f.patches, "--report", report)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Woven 1 class(es)")

	jar, err := archive.Open(f.output)
	require.NoError(t, err)
	got, err := jar.Class("g/Game")
	require.NoError(t, err)
	assert.NotEqual(t, f.game, got)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var rep struct {
		Woven []string `json:"woven"`
	}
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, []string{"g/Game"}, rep.Woven)
}

func TestPlanCommand(t *testing.T) {
	f := newFixture(t)

	out, err := execute(t, "--config", f.config, "plan", "--json", "--patches", f.patches)
	require.NoError(t, err, out)

	var plans []classPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, "g/Game", plans[0].Class)
	require.Len(t, plans[0].Methods, 1)
	assert.Equal(t, "tick()V", plans[0].Methods[0].Method)
	require.Len(t, plans[0].Methods[0].Patches, 1)
	assert.Equal(t, "hooks:tick", plans[0].Methods[0].Patches[0].Patch)
}

func TestPatchesCommand(t *testing.T) {
	f := newFixture(t)
	dot := filepath.Join(f.dir, "patches.dot")

	out, err := execute(t, "--config", f.config, "patches", "--patches", f.patches, "--dot", dot)
	require.NoError(t, err, out)
	assert.Contains(t, out, "hooks:tick")
	assert.Contains(t, out, "com.example:Hooks")
	assert.Contains(t, out, "1 patch(es)")

	data, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
}

func TestOrDefault(t *testing.T) {
	tests := []struct{ v, def, want string }{
		{"", "a", "a"},
		{"b", "a", "b"},
	}
	for _, tt := range tests {
		if got := orDefault(tt.v, tt.def); got != tt.want {
			t.Errorf("orDefault(%q, %q) = %q, want %q", tt.v, tt.def, got, tt.want)
		}
	}
}
