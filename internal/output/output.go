// Package output writes hyinit results to files.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

// WriteReportJSON writes a weave report to path, creating its directory.
func WriteReportJSON(path string, report any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: mkdir: %w", err)
	}
	return writeJSON(path, report)
}

// EncodeJSON writes v to w as indented JSON.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode: %w", err)
	}
	return nil
}

// MethodFile returns the relative file name for one method's dump:
// <class path>/<name><desc>.<ext>, with descriptor characters that are
// awkward in file names replaced.
func MethodFile(class, name, desc, ext string) string {
	r := strings.NewReplacer("/", "_", ";", "", "<", "_", ">", "_", "[", "A")
	return filepath.Join(filepath.FromSlash(class), r.Replace(name+desc)+"."+ext)
}

// WriteASM writes a formatted method body to asm/<class>/<method>.txt.
func WriteASM(dir, class, name, desc string, pool *classfile.Pool, code *bytecode.Code, annotators ...bytecode.Annotator) error {
	path := filepath.Join(dir, "asm", MethodFile(class, name, desc, "txt"))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: mkdir asm: %w", err)
	}
	text := bytecode.Format(pool, code, annotators...)
	return os.WriteFile(path, []byte(text), 0644)
}

// WriteDOT writes a rendered graph to <dir>/<kind>/<name>.dot.
func WriteDOT(dir, kind, name, dot string) error {
	path := filepath.Join(dir, kind, name)
	if !strings.HasSuffix(path, ".dot") {
		path += ".dot"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", kind, err)
	}
	return os.WriteFile(path, []byte(dot), 0644)
}

// WriteClass writes raw class bytes to classes/<class>.class.
func WriteClass(dir, class string, data []byte) error {
	path := filepath.Join(dir, "classes", filepath.FromSlash(class)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: mkdir classes: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	if err := EncodeJSON(f, v); err != nil {
		return fmt.Errorf("output: %s: %w", path, err)
	}
	return nil
}
