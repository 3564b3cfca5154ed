package patch

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"

	"hyinit/internal/archive"
	"hyinit/internal/manifest"
)

// Collected is the result of scanning an early-plugin directory.
type Collected struct {
	Files []*File
	// Origins maps each file's display name to the jar or path it came from.
	Origins map[string]string
	// Names lists display names in discovery order, parallel to Files.
	Names    []string
	Warnings []string
}

// Register registers every collected patch, returning how many succeeded.
func (c *Collected) Register(r *Registry) (int, error) {
	total := 0
	for i, f := range c.Files {
		n, err := f.RegisterAll(r)
		total += n
		if err != nil {
			return total, fmt.Errorf("patch: %s (%s): %w", c.Names[i], c.Origins[c.Names[i]], err)
		}
	}
	return total, nil
}

func (c *Collected) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Collected) add(name, origin string, f *File) {
	c.Files = append(c.Files, f)
	c.Names = append(c.Names, name)
	c.Origins[name] = origin
}

// Collector finds declaration files: inside plugin jars, through the
// Patches list of each jar's manifest.json, and loose in the directory.
type Collector struct {
	fs afs.Service
}

// NewCollector returns a collector reading through fs; nil uses afs.New().
func NewCollector(fs afs.Service) *Collector {
	if fs == nil {
		fs = afs.New()
	}
	return &Collector{fs: fs}
}

// Collect scans dir. A missing directory yields an empty result. Unreadable
// jars and declarations become warnings rather than errors, so one broken
// plugin does not stop the others.
func (c *Collector) Collect(ctx context.Context, dir string) (*Collected, error) {
	out := &Collected{Origins: make(map[string]string)}
	ok, err := c.fs.Exists(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("patch: %s: %w", dir, err)
	}
	if !ok {
		return out, nil
	}
	objects, err := c.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("patch: list %s: %w", dir, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name() < objects[j].Name() })

	for _, obj := range objects {
		if obj.IsDir() {
			continue
		}
		name := obj.Name()
		switch {
		case strings.HasSuffix(strings.ToLower(name), ".jar"):
			data, err := c.fs.DownloadWithURL(ctx, obj.URL())
			if err != nil {
				out.warnf("%s: %v", name, err)
				continue
			}
			c.collectJar(out, obj.URL(), data)
		case IsDeclarationFile(name):
			data, err := c.fs.DownloadWithURL(ctx, obj.URL())
			if err != nil {
				out.warnf("%s: %v", name, err)
				continue
			}
			f, err := ParseFile(name, data)
			if err != nil {
				out.warnf("%v", err)
				continue
			}
			if f.Source == "" {
				f.Source = name
			}
			out.add(name, obj.URL(), f)
		}
	}
	return out, nil
}

// collectJar reads the declarations listed by one jar's manifest.
func (c *Collector) collectJar(out *Collected, origin string, data []byte) {
	base := path.Base(origin)
	jar, err := archive.Read(data)
	if err != nil {
		out.warnf("%s: %v", base, err)
		return
	}
	raw, ok := jar.Find(manifest.FileName)
	if !ok {
		return
	}
	m, err := manifest.Parse(raw)
	if err != nil {
		out.warnf("%s: %v", base, err)
		return
	}
	for _, name := range m.Patches {
		body, ok := jar.Get(name)
		if !ok {
			out.warnf("%s: declared patch file %s is missing", base, name)
			continue
		}
		f, err := ParseFile(name, body)
		if err != nil {
			out.warnf("%s: %v", base, err)
			continue
		}
		if f.Source == "" {
			f.Source = m.ID()
		}
		if _, dup := out.Origins[name]; dup {
			out.warnf("%s: patch file %s also provided by %s", base, name, path.Base(out.Origins[name]))
			continue
		}
		out.add(name, origin, f)
	}
}
