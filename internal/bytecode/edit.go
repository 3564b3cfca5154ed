package bytecode

import "fmt"

// Insert places insts before the instruction at index at (at == Len()
// appends). Branch targets inside insts are body-local: 0..len(insts)-1
// address the inserted instructions and len(insts) addresses the
// instruction that follows them.
//
// With capture set, existing branches, handler starts and line entries that
// pointed at the anchor instruction now point at the first inserted
// instruction, so every path into the anchor runs the new code first.
// Without capture they keep pointing at the anchor and only fallthrough
// reaches the new code.
func (c *Code) Insert(at int, insts []Instruction, capture bool) error {
	return c.insert(at, insts, func(int) bool { return capture })
}

// InsertChained is Insert for code chained after a run of earlier
// injected instructions at [from, at). Branches from the run to the anchor
// are captured, so every path through the run reaches the new code. Other
// branches to the anchor, such as loop-backs to the first original
// instruction, and handler, line and variable entries keep pointing at it.
func (c *Code) InsertChained(at, from int, insts []Instruction) error {
	return c.insert(at, insts, func(src int) bool { return src >= from && src < at })
}

// insert captures a reference to the anchor when capture reports true for
// its source instruction, -1 for handler, line and variable entries.
func (c *Code) insert(at int, insts []Instruction, capture func(src int) bool) error {
	if at < 0 || at > len(c.Insts) {
		return fmt.Errorf("%w: insert at %d of %d", ErrBadEdit, at, len(c.Insts))
	}
	m := len(insts)
	if m == 0 {
		return nil
	}
	body, err := localize(insts, at)
	if err != nil {
		return err
	}

	target := func(src, t int) int {
		switch {
		case t < at:
			return t
		case t == at && capture(src):
			return at
		}
		return t + m
	}
	end := func(t int) int {
		if t <= at {
			return t
		}
		return t + m
	}
	c.remap(target, end)

	out := make([]Instruction, 0, len(c.Insts)+m)
	out = append(out, c.Insts[:at]...)
	out = append(out, body...)
	out = append(out, c.Insts[at:]...)
	c.Insts = out
	return nil
}

// Replace substitutes count instructions starting at at with insts. Body
// targets are local as for Insert, len(insts) addressing the instruction
// after the replaced range. Existing references into the replaced range are
// moved to its first replacement instruction.
func (c *Code) Replace(at, count int, insts []Instruction) error {
	if at < 0 || count < 0 || at+count > len(c.Insts) {
		return fmt.Errorf("%w: replace [%d,+%d) of %d", ErrBadEdit, at, count, len(c.Insts))
	}
	m := len(insts)
	body, err := localize(insts, at)
	if err != nil {
		return err
	}
	delta := m - count

	target := func(_, t int) int {
		switch {
		case t < at:
			return t
		case t < at+count:
			return at
		}
		return t + delta
	}
	end := func(t int) int {
		switch {
		case t <= at:
			return t
		case t < at+count:
			return at + m
		}
		return t + delta
	}
	c.remap(target, end)

	out := make([]Instruction, 0, len(c.Insts)+delta)
	out = append(out, c.Insts[:at]...)
	out = append(out, body...)
	out = append(out, c.Insts[at+count:]...)
	c.Insts = out
	c.pruneRanges()
	return nil
}

// Remove deletes count instructions starting at at.
func (c *Code) Remove(at, count int) error {
	return c.Replace(at, count, nil)
}

// localize copies a body, rebasing its local targets to absolute indexes and
// marking every instruction as injected.
func localize(insts []Instruction, at int) ([]Instruction, error) {
	m := len(insts)
	out := make([]Instruction, m)
	for i, in := range insts {
		in.Origin = -1
		in.Switch = in.Switch.clone()
		if in.Op.IsBranch() {
			if in.Target < 0 || in.Target > m {
				return nil, fmt.Errorf("%w: body branch %d -> %d of %d", ErrBadTarget, i, in.Target, m)
			}
			in.Target += at
		}
		if in.Switch != nil {
			if in.Switch.Default < 0 || in.Switch.Default > m {
				return nil, fmt.Errorf("%w: body switch default %d", ErrBadTarget, in.Switch.Default)
			}
			in.Switch.Default += at
			for k, t := range in.Switch.Targets {
				if t < 0 || t > m {
					return nil, fmt.Errorf("%w: body switch case %d", ErrBadTarget, t)
				}
				in.Switch.Targets[k] = t + at
			}
		}
		out[i] = in
	}
	return out, nil
}

// remap rewrites every stored index of the existing code. target maps
// instruction references (branches, handler starts and entry points, line
// starts, variable starts) and gets the referring instruction's index, -1
// for table entries; end maps exclusive range ends.
func (c *Code) remap(target func(src, t int) int, end func(int) int) {
	for i := range c.Insts {
		in := &c.Insts[i]
		if in.Op.IsBranch() {
			in.Target = target(i, in.Target)
		}
		if in.Switch != nil {
			in.Switch.Default = target(i, in.Switch.Default)
			for k, t := range in.Switch.Targets {
				in.Switch.Targets[k] = target(i, t)
			}
		}
	}
	for i := range c.Handlers {
		h := &c.Handlers[i]
		h.Start = target(-1, h.Start)
		h.End = end(h.End)
		h.Handler = target(-1, h.Handler)
	}
	for i := range c.Lines {
		c.Lines[i].Start = target(-1, c.Lines[i].Start)
	}
	for _, vars := range [][]LocalVar{c.Locals, c.LocalTypes} {
		for i := range vars {
			vars[i].Start = target(-1, vars[i].Start)
			vars[i].End = end(vars[i].End)
		}
	}
}

// pruneRanges drops handlers left with an empty range.
func (c *Code) pruneRanges() {
	kept := c.Handlers[:0]
	for _, h := range c.Handlers {
		if h.Start < h.End {
			kept = append(kept, h)
		}
	}
	c.Handlers = kept
}
