package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMethodFile(t *testing.T) {
	tests := []struct {
		class, name, desc, want string
	}{
		{"a/B", "run", "()V", filepath.Join("a", "B", "run()V.txt")},
		{"a/B", "<init>", "(Ljava/lang/String;[I)V", filepath.Join("a", "B", "_init_(Ljava_lang_StringAI)V.txt")},
	}
	for _, tt := range tests {
		if got := MethodFile(tt.class, tt.name, tt.desc, "txt"); got != tt.want {
			t.Errorf("MethodFile(%q, %q, %q) = %q, want %q", tt.class, tt.name, tt.desc, got, tt.want)
		}
	}
}

func TestWriteReportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "weave.json")
	if err := WriteReportJSON(path, map[string]int{"woven": 3}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["woven"] != 3 {
		t.Errorf("woven = %d, want 3", got["woven"])
	}
}

func TestWriteDOT(t *testing.T) {
	dir := t.TempDir()
	if err := WriteDOT(dir, "cfg", "a/B/run", "digraph {}"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "cfg", "a", "B", "run.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("dot = %q", data)
	}
}
