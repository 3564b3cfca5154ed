package patch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyinit/internal/archive"
)

const jsonDecl = `{
  "source": "com.example:Speed",
  "patches": [
    {
      "id": "speed:log",
      "target": {"class": "com.example.Game", "method": "tick", "desc": "()V"},
      "strategy": "wrap-before",
      "priority": 2,
      "body": [
        {"op": "getstatic", "owner": "java/lang/System", "name": "out", "desc": "Ljava/io/PrintStream;"},
        {"op": "ldc", "const": {"kind": "string", "string": "tick"}},
        {"op": "invokevirtual", "owner": "java/io/PrintStream", "name": "println", "desc": "(Ljava/lang/String;)V"}
      ]
    }
  ]
}`

const yamlDecl = `
source: com.example:Speed
patches:
  - id: speed:log
    target: {class: com.example.Game, method: tick, desc: ()V}
    strategy: wrap-before
    priority: 2
    body:
      - {op: getstatic, owner: java/lang/System, name: out, desc: Ljava/io/PrintStream;}
      - op: ldc
        const: {kind: string, string: tick}
      - {op: invokevirtual, owner: java/io/PrintStream, name: println, desc: (Ljava/lang/String;)V}
`

const tomlDecl = `
source = "com.example:Speed"

[[patches]]
id = "speed:log"
strategy = "wrap-before"
priority = 2
target = { class = "com.example.Game", method = "tick", desc = "()V" }

[[patches.body]]
op = "getstatic"
owner = "java/lang/System"
name = "out"
desc = "Ljava/io/PrintStream;"

[[patches.body]]
op = "ldc"
const = { kind = "string", string = "tick" }

[[patches.body]]
op = "invokevirtual"
owner = "java/io/PrintStream"
name = "println"
desc = "(Ljava/lang/String;)V"
`

func TestParseFile_Formats(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"speed.patches.json", jsonDecl},
		{"speed.patches.yaml", yamlDecl},
		{"speed.patches.toml", tomlDecl},
	}
	var first *Patch
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, IsDeclarationFile(tt.name))
			f, err := ParseFile(tt.name, []byte(tt.data))
			require.NoError(t, err)
			require.Len(t, f.Patches, 1)

			r := NewRegistry()
			n, err := f.RegisterAll(r)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			got := r.PatchesFor("com/example/Game", "tick", "()V")
			require.Len(t, got, 1)
			p := got[0]
			assert.Equal(t, "com.example:Speed", p.Source)
			assert.Equal(t, AtEntry, p.Anchor.Kind)
			require.Len(t, p.Body, 3)
			assert.Equal(t, ConstString, p.Body[1].Const.Kind)
			assert.Equal(t, "tick", p.Body[1].Const.String)
			if first == nil {
				first = p
				return
			}
			assert.Equal(t, first.Target, p.Target)
			assert.Equal(t, first.Body, p.Body)
		})
	}
}

func TestParseFile_Errors(t *testing.T) {
	_, err := ParseFile("x.patches.xml", []byte("<x/>"))
	assert.Error(t, err)
	_, err = ParseFile("x.patches.json", []byte("{"))
	assert.Error(t, err)
	assert.False(t, IsDeclarationFile("speed.json"))
}

func TestRegisterAll_PartialFailure(t *testing.T) {
	f := &File{Source: "s", Patches: []Patch{
		*replace("a"),
		*replace("b"),
		*wrap("c", 0),
	}}
	r := NewRegistry()
	n, err := f.RegisterAll(r)
	assert.Equal(t, 2, n)
	var dup *DuplicateTargetError
	assert.ErrorAs(t, err, &dup)
}

func writeJar(t *testing.T, path string, files map[string]string) {
	t.Helper()
	j := archive.New()
	for name, data := range files {
		j.Put(name, []byte(data))
	}
	var buf bytes.Buffer
	require.NoError(t, j.Write(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestCollector(t *testing.T) {
	dir := t.TempDir()
	writeJar(t, filepath.Join(dir, "b-speed.jar"), map[string]string{
		"manifest.json":      `{"Group":"com.example","Name":"Speed","Patches":["speed.patches.yaml","gone.patches.json"]}`,
		"speed.patches.yaml": yamlDecl,
	})
	writeJar(t, filepath.Join(dir, "a-plain.jar"), map[string]string{"a/A.class": "x"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c-broken.jar"), []byte("not a zip"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loose.patches.json"), []byte(jsonDecl), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	got, err := NewCollector(nil).Collect(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"speed.patches.yaml", "loose.patches.json"}, got.Names)
	assert.Len(t, got.Warnings, 2) // missing declared file, broken jar
	assert.Contains(t, got.Origins["speed.patches.yaml"], "b-speed.jar")

	r := NewRegistry()
	_, err = got.Register(r)
	// Both files declare speed:log.
	assert.ErrorIs(t, err, ErrInvalidPatch)
	assert.Equal(t, 1, r.Len())
}

func TestCollector_MissingDir(t *testing.T) {
	got, err := NewCollector(nil).Collect(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got.Files)
}
