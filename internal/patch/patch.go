// Package patch holds declared method patches and the registry that owns
// them for the lifetime of the process.
package patch

import (
	"fmt"
	"slices"
	"strings"
)

// Strategy is how a patch changes its target method.
type Strategy string

const (
	Replace       Strategy = "replace"
	WrapBefore    Strategy = "wrap-before"
	WrapAfter     Strategy = "wrap-after"
	RedirectCall  Strategy = "redirect-call"
	InjectAtPoint Strategy = "inject-at-point"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case Replace, WrapBefore, WrapAfter, RedirectCall, InjectAtPoint:
		return true
	}
	return false
}

// Exclusive reports whether at most one patch of this strategy may target a
// method.
func (s Strategy) Exclusive() bool { return s == Replace }

// Target names one method of one class. Class is an internal name
// (slash-separated).
type Target struct {
	Class  string `json:"class" yaml:"class" toml:"class"`
	Method string `json:"method" yaml:"method" toml:"method"`
	Desc   string `json:"desc" yaml:"desc" toml:"desc"`
}

func (t Target) String() string { return t.Class + "." + t.Method + t.Desc }

// AnchorKind selects where in the method a patch applies.
type AnchorKind string

const (
	AtEntry  AnchorKind = "entry"
	AtExit   AnchorKind = "exit"
	AtInvoke AnchorKind = "invoke"
	AtIndex  AnchorKind = "index"
)

// Shift places injected code relative to the anchor instruction.
type Shift string

const (
	Before  Shift = "before"
	After   Shift = "after"
	Instead Shift = "replace"
)

// Member is a field or method reference.
type Member struct {
	Owner string `json:"owner" yaml:"owner" toml:"owner"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Desc  string `json:"desc" yaml:"desc" toml:"desc"`
}

func (m Member) String() string { return m.Owner + "." + m.Name + m.Desc }

// AllOrdinals makes a call-site anchor match every call.
const AllOrdinals = -1

// Anchor locates a patch inside its target method.
type Anchor struct {
	Kind AnchorKind `json:"kind" yaml:"kind" toml:"kind"`
	// Invoke is the called member for AtInvoke.
	Invoke Member `json:"invoke,omitzero" yaml:"invoke,omitempty" toml:"invoke,omitempty"`
	// Ordinal picks the n-th matching call, counting from 0; AllOrdinals
	// matches every call.
	Ordinal int `json:"ordinal,omitempty" yaml:"ordinal,omitempty" toml:"ordinal,omitempty"`
	// Index is the instruction's position in the method as loaded, for AtIndex.
	Index int   `json:"index,omitempty" yaml:"index,omitempty" toml:"index,omitempty"`
	Shift Shift `json:"shift,omitempty" yaml:"shift,omitempty" toml:"shift,omitempty"`
}

func (a Anchor) String() string {
	switch a.Kind {
	case AtInvoke:
		ord := fmt.Sprint(a.Ordinal)
		if a.Ordinal == AllOrdinals {
			ord = "*"
		}
		return fmt.Sprintf("invoke %s #%s %s", a.Invoke, ord, a.EffectiveShift())
	case AtIndex:
		return fmt.Sprintf("index %d %s", a.Index, a.EffectiveShift())
	}
	return string(a.Kind)
}

// EffectiveShift returns Shift, defaulting to Before.
func (a Anchor) EffectiveShift() Shift {
	if a.Shift == "" {
		return Before
	}
	return a.Shift
}

// Patch is a declared change to one method. Patches are immutable once
// registered; the registry hands out shared pointers.
type Patch struct {
	ID       string   `json:"id" yaml:"id" toml:"id"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Target   Target   `json:"target" yaml:"target" toml:"target"`
	Strategy Strategy `json:"strategy" yaml:"strategy" toml:"strategy"`
	Anchor   Anchor   `json:"anchor,omitzero" yaml:"anchor,omitempty" toml:"anchor,omitempty"`
	Priority int      `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
	Body     []Op     `json:"body,omitempty" yaml:"body,omitempty" toml:"body,omitempty"`
	// MaxStack and MaxLocals are the body's declared requirements; zero
	// means derive them from the body.
	MaxStack  int `json:"max_stack,omitempty" yaml:"max_stack,omitempty" toml:"max_stack,omitempty"`
	MaxLocals int `json:"max_locals,omitempty" yaml:"max_locals,omitempty" toml:"max_locals,omitempty"`
	// Compatible lists patches this one may share an injection point with.
	Compatible []string `json:"compatible,omitempty" yaml:"compatible,omitempty" toml:"compatible,omitempty"`

	seq uint64
}

// Seq returns the registration sequence number, 0 before registration.
func (p *Patch) Seq() uint64 { return p.seq }

func (p *Patch) String() string {
	return fmt.Sprintf("%s (%s %s, priority %d)", p.ID, p.Strategy, p.Target, p.Priority)
}

// CompatibleWith reports whether p declares compatibility with q.
func (p *Patch) CompatibleWith(q *Patch) bool { return slices.Contains(p.Compatible, q.ID) }

// Less orders patches by priority, then registration order.
func Less(a, b *Patch) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.seq < b.seq
}

// Compare is Less as a three-way comparison for slices.SortFunc.
func Compare(a, b *Patch) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	}
	return 0
}

// InternalName converts a binary class name (dots) to an internal one.
func InternalName(name string) string { return strings.ReplaceAll(name, ".", "/") }

// normalize returns a copy of p with class names in internal form and the
// anchor implied by its strategy filled in.
func (p *Patch) normalize() *Patch {
	q := *p
	q.Target.Class = InternalName(q.Target.Class)
	q.Anchor.Invoke.Owner = InternalName(q.Anchor.Invoke.Owner)
	switch q.Strategy {
	case WrapBefore:
		q.Anchor = Anchor{Kind: AtEntry}
	case WrapAfter:
		q.Anchor = Anchor{Kind: AtExit}
	case Replace:
		q.Anchor = Anchor{}
	case RedirectCall:
		q.Anchor.Shift = Instead
	}
	q.Body = slices.Clone(p.Body)
	for i := range q.Body {
		q.Body[i].Owner = InternalName(q.Body[i].Owner)
		if q.Body[i].Const != nil {
			c := *q.Body[i].Const
			q.Body[i].Const = &c
		}
	}
	q.Compatible = slices.Clone(p.Compatible)
	return &q
}
