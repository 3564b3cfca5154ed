// Package archive reads and writes jar files.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

var ErrNotFound = errors.New("archive: entry not found")

// Entry is one file of a jar.
type Entry struct {
	Name     string
	Data     []byte
	Method   uint16
	Modified time.Time
}

// IsDir reports whether the entry is a directory marker.
func (e *Entry) IsDir() bool { return strings.HasSuffix(e.Name, "/") }

// Jar is a jar archive held in memory. Entry order is preserved so that a
// rewritten jar differs from its input only in replaced entries.
type Jar struct {
	Path    string
	entries []*Entry
	index   map[string]int
}

// Open reads the jar at path.
func Open(path string) (*Jar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archive: read: %w", err)
	}
	j, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("archive: %s: %w", filepath.Base(path), err)
	}
	j.Path = path
	return j, nil
}

// Read decodes a jar from memory.
func Read(data []byte) (*Jar, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	j := &Jar{index: make(map[string]int, len(zr.File))}
	for _, f := range zr.File {
		e := &Entry{Name: f.Name, Method: f.Method, Modified: f.Modified}
		if !e.IsDir() {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("archive: open %s: %w", f.Name, err)
			}
			e.Data, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("archive: read %s: %w", f.Name, err)
			}
		}
		if i, dup := j.index[e.Name]; dup {
			j.entries[i] = e
			continue
		}
		j.index[e.Name] = len(j.entries)
		j.entries = append(j.entries, e)
	}
	return j, nil
}

// New returns an empty jar.
func New() *Jar { return &Jar{index: make(map[string]int)} }

// Entries returns the entries in archive order.
func (j *Jar) Entries() []*Entry { return j.entries }

// Get returns the contents of the named entry.
func (j *Jar) Get(name string) ([]byte, bool) {
	i, ok := j.index[name]
	if !ok {
		return nil, false
	}
	return j.entries[i].Data, true
}

// Find looks an entry up ignoring case, the way resource names like
// manifest.json are matched.
func (j *Jar) Find(name string) ([]byte, bool) {
	if data, ok := j.Get(name); ok {
		return data, true
	}
	for _, e := range j.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Data, true
		}
	}
	return nil, false
}

// Put replaces the named entry, or appends it.
func (j *Jar) Put(name string, data []byte) {
	if i, ok := j.index[name]; ok {
		j.entries[i].Data = data
		return
	}
	j.index[name] = len(j.entries)
	j.entries = append(j.entries, &Entry{Name: name, Data: data, Method: zip.Deflate})
}

// ClassFile returns the entry name holding an internal or binary class name.
func ClassFile(name string) string {
	return strings.ReplaceAll(name, ".", "/") + ".class"
}

// Class returns the bytes of a class by internal or binary name.
func (j *Jar) Class(name string) ([]byte, error) {
	data, ok := j.Get(ClassFile(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

// Classes lists the internal names of every class, sorted. Multi-release
// variants and module descriptors are skipped.
func (j *Jar) Classes() []string {
	var out []string
	for _, e := range j.entries {
		if e.IsDir() || !strings.HasSuffix(e.Name, ".class") || strings.HasPrefix(e.Name, "META-INF/") {
			continue
		}
		name := strings.TrimSuffix(e.Name, ".class")
		if name == "module-info" || strings.HasSuffix(name, "/package-info") {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Write encodes the jar.
func (j *Jar) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, e := range j.entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: e.Method, Modified: e.Modified}
		if e.IsDir() {
			hdr.Method = zip.Store
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("archive: %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return fmt.Errorf("archive: %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	return nil
}

// Save writes the jar to path through a temporary file in the same
// directory.
func (j *Jar) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("archive: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".hyinit-*.jar")
	if err != nil {
		return fmt.Errorf("archive: create: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := j.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("archive: rename: %w", err)
	}
	return nil
}
