// Package pipeline is the class-load hook: it runs every class that has
// registered patches through planning, weaving and verification, and hands
// back the original bytes whenever anything goes wrong.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/logging"
	"hyinit/internal/patch"
	"hyinit/internal/planner"
	"hyinit/internal/verifier"
	"hyinit/internal/weaver"
)

// Diag is one recorded transformation problem.
type Diag = classfile.Diag

// Fallback decides how much of a class a failing patch takes down.
type Fallback int

const (
	// FallbackClass returns the original bytes for the whole class.
	FallbackClass Fallback = iota
	// FallbackMethod drops only the failing method's patches.
	FallbackMethod
)

// ParseFallback maps "class" and "method" to a Fallback.
func ParseFallback(s string) (Fallback, error) {
	switch s {
	case "", "class":
		return FallbackClass, nil
	case "method":
		return FallbackMethod, nil
	}
	return FallbackClass, fmt.Errorf("pipeline: unknown fallback %q", s)
}

func (f Fallback) String() string {
	if f == FallbackMethod {
		return "method"
	}
	return "class"
}

// Cache stores transformed classes across Transformer instances. Keys
// already include the input hash and the registry fingerprint.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, data []byte) error
}

// Options configures a Transformer.
type Options struct {
	Conflicts   planner.Policy
	Fallback    Fallback
	ComputeMaxs bool
	// Frames regenerates the StackMapTable of woven methods in classes
	// whose version carries one.
	Frames    bool
	Hierarchy verifier.Hierarchy
	// Exclude lists binary or internal package prefixes never transformed.
	Exclude []string
	Logger  *slog.Logger
	Cache   Cache
}

// DefaultOptions aborts on conflicts, falls back per class and keeps
// max_stack and frames consistent.
func DefaultOptions() Options {
	return Options{Conflicts: planner.Abort, Fallback: FallbackClass, ComputeMaxs: true, Frames: true}
}

// Transformer is safe for concurrent use. Each distinct input is
// transformed at most once; repeated requests are served from memory.
type Transformer struct {
	reg     *patch.Registry
	opts    Options
	log     *slog.Logger
	session uuid.UUID
	exclude []string

	group singleflight.Group

	mu          sync.Mutex
	memo        map[string][]byte
	diags       []Diag
	fingerprint string
	stats       Stats
}

// Stats counts what the transformer did.
type Stats struct {
	Requests    int `json:"requests"`
	Transformed int `json:"transformed"`
	Fallbacks   int `json:"fallbacks"`
	CacheHits   int `json:"cache_hits"`
}

// New returns a transformer over reg.
func New(reg *patch.Registry, opts Options) *Transformer {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	t := &Transformer{
		reg:     reg,
		opts:    opts,
		session: uuid.New(),
		memo:    make(map[string][]byte),
	}
	t.log = log.With("session", t.session.String())
	for _, p := range opts.Exclude {
		t.exclude = append(t.exclude, patch.InternalName(p))
	}
	return t
}

// Session identifies this transformer in logs and reports.
func (t *Transformer) Session() string { return t.session.String() }

// Diags returns every diagnostic recorded so far.
func (t *Transformer) Diags() []Diag {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Diag(nil), t.diags...)
}

// Stats returns a snapshot of the counters.
func (t *Transformer) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// CanTransform reports whether className may be handed to the weaver.
// The JDK and the excluded packages never are.
func (t *Transformer) CanTransform(className string) bool {
	name := patch.InternalName(className)
	if strings.HasPrefix(name, "java/") {
		return false
	}
	for _, p := range t.exclude {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	return true
}

// Transform is the class-load hook. It returns original unchanged when no
// patch targets the class or when transformation fails; it never panics.
func (t *Transformer) Transform(className string, original []byte) []byte {
	out, _ := t.TransformClass(className, original)
	return out
}

// TransformClass is Transform that also reports why the original bytes
// came back. A nil error with the original bytes means nothing applied.
// Transformed bytes are the caller's own copy; the memo and the persistent
// cache keep theirs.
func (t *Transformer) TransformClass(className string, original []byte) (out []byte, err error) {
	name := patch.InternalName(className)
	t.count(func(s *Stats) { s.Requests++ })
	if !t.CanTransform(name) || !t.reg.Has(name) {
		return original, nil
	}

	hash, err := patch.Hash(original)
	if err != nil {
		return original, err
	}
	key := name + "@" + hash
	fp := t.registryFingerprint()
	if fp != "" {
		key += "@" + fp
		if data, ok := t.cached(key); ok {
			return bytes.Clone(data), nil
		}
	}

	v, err, _ := t.group.Do(key, func() (any, error) {
		data, err := t.safeTransform(name, original)
		if err != nil {
			return original, err
		}
		if fp != "" {
			t.store(key, data)
		}
		return data, nil
	})
	if err != nil {
		t.count(func(s *Stats) { s.Fallbacks++ })
		return original, err
	}
	return bytes.Clone(v.([]byte)), nil
}

func (t *Transformer) count(fn func(*Stats)) {
	t.mu.Lock()
	fn(&t.stats)
	t.mu.Unlock()
}

// registryFingerprint is computed once the registry is frozen; before that
// results are not memoized because patches may still change.
func (t *Transformer) registryFingerprint() string {
	if !t.reg.Frozen() {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fingerprint == "" {
		fp, err := t.reg.Fingerprint()
		if err != nil {
			t.log.Warn("registry fingerprint failed", "err", err)
			return ""
		}
		t.fingerprint = fp
	}
	return t.fingerprint
}

func (t *Transformer) cached(key string) ([]byte, bool) {
	t.mu.Lock()
	data, ok := t.memo[key]
	if ok {
		t.stats.CacheHits++
	}
	t.mu.Unlock()
	if ok {
		return data, true
	}
	if t.opts.Cache == nil {
		return nil, false
	}
	data, ok = t.opts.Cache.Get(key)
	if ok {
		t.mu.Lock()
		t.memo[key] = data
		t.stats.CacheHits++
		t.mu.Unlock()
	}
	return data, ok
}

func (t *Transformer) store(key string, data []byte) {
	t.mu.Lock()
	t.memo[key] = data
	t.mu.Unlock()
	if t.opts.Cache != nil {
		if err := t.opts.Cache.Put(key, data); err != nil {
			t.log.Warn("cache write failed", "key", key, "err", err)
		}
	}
}

func (t *Transformer) record(d Diag) {
	t.mu.Lock()
	t.diags = append(t.diags, d)
	t.mu.Unlock()
	t.log.Warn("transform", "class", d.Class, "method", d.Method, "patch", d.Patch, "kind", string(d.Kind), "msg", d.Msg)
}

// safeTransform converts a panic anywhere below into an internal
// diagnostic.
func (t *Transformer) safeTransform(name string, original []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: panic transforming %s: %v", name, r)
			t.record(Diag{Class: name, Kind: classfile.DiagInternal, Msg: fmt.Sprintf("%v\n%s", r, debug.Stack())})
		}
	}()
	return t.transform(name, original)
}

// transform returns the woven class, original when nothing applied, or an
// error after recording why the class falls back.
func (t *Transformer) transform(name string, original []byte) ([]byte, error) {
	c, err := classfile.Parse(original)
	if err != nil {
		t.record(Diag{Class: name, Kind: classfile.DiagMalformed, Msg: err.Error()})
		return nil, err
	}
	if c.Name != name {
		err := fmt.Errorf("pipeline: bytes for %s declare class %s", name, c.Name)
		t.record(Diag{Class: name, Kind: classfile.DiagMalformed, Msg: err.Error()})
		return nil, err
	}

	cp, err := planner.ForClass(t.reg, name, t.opts.Conflicts)
	if err != nil {
		d := Diag{Class: name, Kind: classfile.DiagConflict, Msg: err.Error()}
		var pc *planner.PatchConflictError
		if errors.As(err, &pc) {
			d.Method = pc.B.Target.Method + pc.B.Target.Desc
			d.Patch = pc.B.ID
		}
		t.record(d)
		return nil, err
	}
	for _, dropped := range cp.Dropped {
		t.record(Diag{
			Class:  name,
			Method: dropped.B.Target.Method + dropped.B.Target.Desc,
			Patch:  dropped.B.ID,
			Kind:   classfile.DiagDegraded,
			Msg:    dropped.Error(),
		})
	}

	woven := 0
	var firstErr error
	for _, plan := range cp.Plans {
		if plan.Len() == 0 {
			continue
		}
		if err := t.weaveMethod(c, plan); err != nil {
			if t.opts.Fallback == FallbackClass {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		woven++
	}
	if woven == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return original, nil
	}

	if err := verifier.CheckPool(c); err != nil {
		t.record(Diag{Class: name, Kind: classfile.DiagVerification, Msg: err.Error()})
		return nil, err
	}
	out := c.Bytes()
	t.count(func(s *Stats) { s.Transformed++ })
	t.log.Debug("class transformed", "class", name, "methods", woven, "bytes", len(out))
	return out, nil
}

// weaveMethod weaves, verifies and commits one plan. The class is left
// untouched on error apart from appended pool entries.
func (t *Transformer) weaveMethod(c *classfile.Class, plan *planner.Plan) error {
	target := plan.Target
	where := target.Method + target.Desc
	m := c.FindMethod(target.Method, target.Desc)
	if m == nil {
		err := &weaver.AnchorNotFoundError{Patch: plan.Patches[0], Target: target}
		t.record(Diag{Class: c.Name, Method: where, Patch: plan.Patches[0].ID, Kind: classfile.DiagAnchor, Msg: "method not found"})
		return err
	}

	vopts := verifier.Options{Hierarchy: t.opts.Hierarchy}
	res, err := weaver.WeaveMethod(c, m, plan, weaver.Options{ComputeMaxs: t.opts.ComputeMaxs, Hierarchy: t.opts.Hierarchy})
	if err != nil {
		t.record(weaveDiag(c.Name, where, err))
		return err
	}

	code := res.Code
	if t.opts.Frames && classfile.Profile(c.Major).StackMaps {
		_, err = verifier.GenerateFrames(c, m, code, vopts)
	}
	if err == nil {
		_, err = verifier.Verify(c, m, code, vopts)
	}
	if err == nil {
		err = verifier.CheckConstants(c, m, code)
	}
	if err == nil {
		err = res.Commit(c, m)
	}
	if err != nil {
		t.record(Diag{Class: c.Name, Method: where, Patch: ids(plan), Kind: classfile.DiagVerification, Msg: err.Error()})
		return err
	}
	t.log.Debug("method woven", "class", c.Name, "method", where, "patches", ids(plan), "insts", code.Len())
	return nil
}

func weaveDiag(class, method string, err error) Diag {
	d := Diag{Class: class, Method: method, Kind: classfile.DiagInternal, Msg: err.Error()}
	var anf *weaver.AnchorNotFoundError
	var pe *weaver.PatchError
	switch {
	case errors.As(err, &anf):
		d.Kind, d.Patch = classfile.DiagAnchor, anf.Patch.ID
	case errors.As(err, &pe):
		d.Patch = pe.Patch.ID
		if errors.Is(err, bytecode.ErrBadEdit) || errors.Is(err, bytecode.ErrBadTarget) || errors.Is(err, weaver.ErrBadBody) {
			d.Kind = classfile.DiagVerification
		}
	}
	return d
}

func ids(plan *planner.Plan) string {
	out := make([]string, len(plan.Patches))
	for i, p := range plan.Patches {
		out[i] = p.ID
	}
	return strings.Join(out, ",")
}
