// Package loader resolves class bytes from an ordered set of code sources
// (the server jar, hyinit, early plugins) and runs them through the
// transformer on the way out.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"

	"hyinit/internal/archive"
	"hyinit/internal/logging"
	"hyinit/internal/manifest"
	"hyinit/internal/patch"
)

var (
	ErrClassNotFound      = errors.New("loader: class not found")
	ErrTransformerPresent = errors.New("loader: transformer already set")
)

// Transformer is the class-load hook the loader calls.
type Transformer interface {
	Transform(className string, original []byte) []byte
	CanTransform(className string) bool
}

// SharedPrefix is hyinit's own package; its classes are always loaded
// untransformed.
const SharedPrefix = "cc/irori/hyinit/"

// Source is one jar or class directory on the search path.
type Source struct {
	Path string
	Dir  bool
	Meta SourceMeta

	jar *archive.Jar
}

// Loader is safe for concurrent use.
type Loader struct {
	fs    afs.Service
	log   *slog.Logger
	meta  *MetaStore
	debug bool

	mu          sync.RWMutex
	sources     []*Source
	seen        map[string]bool
	transformer Transformer
}

// New returns an empty loader reading through fs; nil uses afs.New().
func New(fs afs.Service, log *slog.Logger) *Loader {
	if fs == nil {
		fs = afs.New()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Loader{fs: fs, log: log, meta: NewMetaStore(), seen: make(map[string]bool)}
}

// SetDebug enables a log line for every lookup that misses all sources.
func (l *Loader) SetDebug(on bool) { l.debug = on }

// Meta returns the store holding per-source metadata.
func (l *Loader) Meta() *MetaStore { return l.meta }

// Normalize returns the absolute, symlink-resolved form of p. Paths that
// do not exist are only made absolute.
func Normalize(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// AddCodeSource appends the jar or directory at p. Adding a path that is
// already present, in any spelling, does nothing.
func (l *Loader) AddCodeSource(ctx context.Context, p string, meta SourceMeta) error {
	p = Normalize(p)

	l.mu.RLock()
	dup := l.seen[p]
	l.mu.RUnlock()
	if dup {
		return nil
	}

	obj, err := l.fs.Object(ctx, p)
	if err != nil {
		return fmt.Errorf("loader: %s: %w", p, err)
	}
	src := &Source{Path: p, Dir: obj.IsDir(), Meta: meta}
	if !src.Dir {
		data, err := l.fs.DownloadWithURL(ctx, p)
		if err != nil {
			return fmt.Errorf("loader: %s: %w", p, err)
		}
		if src.jar, err = archive.Read(data); err != nil {
			return fmt.Errorf("loader: %s: %w", filepath.Base(p), err)
		}
		src.jar.Path = p
		if raw, ok := src.jar.Find(manifest.FileName); ok && src.Meta.Manifest == nil {
			if m, err := manifest.Parse(raw); err == nil {
				src.Meta.Manifest = m
			} else {
				l.log.Warn("unreadable plugin manifest", "source", p, "error", err)
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[p] {
		return nil
	}
	l.seen[p] = true
	l.sources = append(l.sources, src)
	l.meta.Put(p, src.Meta)
	return nil
}

// Sources returns the code sources in search order.
func (l *Loader) Sources() []*Source {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Source(nil), l.sources...)
}

// SetTransformer installs the hook. It may be set once.
func (l *Loader) SetTransformer(t Transformer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transformer != nil {
		return ErrTransformerPresent
	}
	l.transformer = t
	return nil
}

// CanTransform reports whether the loader would hand name to the hook.
func (l *Loader) CanTransform(name string) bool {
	name = patch.InternalName(name)
	if strings.HasPrefix(name, "java/") || strings.HasPrefix(name, SharedPrefix) {
		return false
	}
	l.mu.RLock()
	t := l.transformer
	l.mu.RUnlock()
	return t == nil || t.CanTransform(name)
}

// Locate returns the first source holding the class.
func (l *Loader) Locate(ctx context.Context, name string) (*Source, []byte, error) {
	name = patch.InternalName(name)
	file := archive.ClassFile(name)
	for _, src := range l.Sources() {
		if !src.Dir {
			if data, ok := src.jar.Get(file); ok {
				return src, data, nil
			}
			continue
		}
		p := path.Join(filepath.ToSlash(src.Path), file)
		ok, err := l.fs.Exists(ctx, p)
		if err != nil || !ok {
			continue
		}
		data, err := l.fs.DownloadWithURL(ctx, p)
		if err != nil {
			return nil, nil, fmt.Errorf("loader: read %s: %w", p, err)
		}
		return src, data, nil
	}
	if l.debug {
		l.log.Warn("cannot find class", "class", name)
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
}

// RawClassBytes returns the class as stored in its code source.
func (l *Loader) RawClassBytes(ctx context.Context, name string) ([]byte, error) {
	_, data, err := l.Locate(ctx, name)
	return data, err
}

// ClassBytes returns the class, transformed when runTransformers is set
// and a transformer is installed.
func (l *Loader) ClassBytes(ctx context.Context, name string, runTransformers bool) ([]byte, error) {
	data, err := l.RawClassBytes(ctx, name)
	if err != nil || !runTransformers {
		return data, err
	}
	l.mu.RLock()
	t := l.transformer
	l.mu.RUnlock()
	if t == nil || !l.CanTransform(name) {
		return data, nil
	}
	return t.Transform(patch.InternalName(name), data), nil
}
