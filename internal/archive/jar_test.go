package archive

import (
	"bytes"
	"path/filepath"
	"testing"
)

func buildJar(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	j := New()
	for _, name := range order {
		j.Put(name, []byte(files[name]))
	}
	var buf bytes.Buffer
	if err := j.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestReadWrite(t *testing.T) {
	files := map[string]string{
		"META-INF/MANIFEST.MF":        "Manifest-Version: 1.0\n",
		"com/example/A.class":         "A",
		"com/example/B.class":         "B",
		"module-info.class":           "M",
		"META-INF/versions/9/X.class": "X",
		"Manifest.json":               "{}",
	}
	order := []string{"META-INF/MANIFEST.MF", "com/example/B.class", "com/example/A.class", "module-info.class", "META-INF/versions/9/X.class", "Manifest.json"}
	j, err := Read(buildJar(t, files, order))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := len(j.Entries()); got != len(order) {
		t.Fatalf("entries = %d, want %d", got, len(order))
	}
	for i, e := range j.Entries() {
		if e.Name != order[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Name, order[i])
		}
	}
	classes := j.Classes()
	if len(classes) != 2 || classes[0] != "com/example/A" || classes[1] != "com/example/B" {
		t.Errorf("Classes = %v", classes)
	}
	if data, err := j.Class("com.example.A"); err != nil || string(data) != "A" {
		t.Errorf("Class(com.example.A) = %q, %v", data, err)
	}
	if _, err := j.Class("com/example/C"); err == nil {
		t.Error("Class of missing entry succeeded")
	}
	if data, ok := j.Find("manifest.json"); !ok || string(data) != "{}" {
		t.Errorf("Find(manifest.json) = %q, %v", data, ok)
	}
}

func TestPutAndSave(t *testing.T) {
	j, err := Read(buildJar(t, map[string]string{"a/A.class": "old"}, []string{"a/A.class"}))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	j.Put("a/A.class", []byte("new"))
	j.Put("b/B.class", []byte("added"))

	path := filepath.Join(t.TempDir(), "out", "patched.jar")
	if err := j.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if back.Path != path {
		t.Errorf("Path = %s, want %s", back.Path, path)
	}
	if data, _ := back.Get("a/A.class"); string(data) != "new" {
		t.Errorf("a/A.class = %q, want new", data)
	}
	if data, _ := back.Get("b/B.class"); string(data) != "added" {
		t.Errorf("b/B.class = %q, want added", data)
	}
}
