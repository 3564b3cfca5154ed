package patch

// Decl builds a patch declaration. It is the programmatic form of a
// declaration file entry:
//
//	err := patch.Declare("speed:tick").
//		From("com.example:Speed").
//		Target("com/hypixel/hytale/server/core/Tick", "run", "()V").
//		WrapBefore(patch.Call("invokestatic", "com/example/Speed", "onTick", "()V", false)).
//		Priority(10).
//		Register(reg)
type Decl struct {
	p Patch
}

// Declare starts a declaration with the given unique ID.
func Declare(id string) *Decl { return &Decl{p: Patch{ID: id}} }

// From records the declaring extension, the unit UnregisterAll removes.
func (d *Decl) From(source string) *Decl { d.p.Source = source; return d }

// Target selects the method. Class may be a binary or internal name.
func (d *Decl) Target(class, method, desc string) *Decl {
	d.p.Target = Target{Class: class, Method: method, Desc: desc}
	return d
}

// Replace substitutes the whole method body.
func (d *Decl) Replace(body ...Op) *Decl { return d.strategy(Replace, Anchor{}, body) }

// WrapBefore runs body on method entry.
func (d *Decl) WrapBefore(body ...Op) *Decl {
	return d.strategy(WrapBefore, Anchor{Kind: AtEntry}, body)
}

// WrapAfter runs body before every return.
func (d *Decl) WrapAfter(body ...Op) *Decl { return d.strategy(WrapAfter, Anchor{Kind: AtExit}, body) }

// Redirect replaces calls to a member with body, which receives the call's
// operands on the stack and must leave its result.
func (d *Decl) Redirect(call Member, ordinal int, body ...Op) *Decl {
	return d.strategy(RedirectCall, Anchor{Kind: AtInvoke, Invoke: call, Ordinal: ordinal, Shift: Instead}, body)
}

// InjectAt places body relative to an anchor.
func (d *Decl) InjectAt(a Anchor, body ...Op) *Decl { return d.strategy(InjectAtPoint, a, body) }

func (d *Decl) strategy(s Strategy, a Anchor, body []Op) *Decl {
	d.p.Strategy, d.p.Anchor, d.p.Body = s, a, body
	return d
}

// Priority sets the ordering key; lower runs first.
func (d *Decl) Priority(n int) *Decl { d.p.Priority = n; return d }

// Maxs declares the body's stack and local requirements.
func (d *Decl) Maxs(stack, locals int) *Decl {
	d.p.MaxStack, d.p.MaxLocals = stack, locals
	return d
}

// CompatibleWith lets the patch share an injection point with the named
// patches.
func (d *Decl) CompatibleWith(ids ...string) *Decl {
	d.p.Compatible = append(d.p.Compatible, ids...)
	return d
}

// Patch returns the declared patch.
func (d *Decl) Patch() *Patch {
	p := d.p
	return &p
}

// Register adds the declared patch to r.
func (d *Decl) Register(r *Registry) error { return r.Register(d.Patch()) }
