package weaver

import (
	"errors"
	"fmt"

	"hyinit/internal/patch"
)

// ErrBadBody is returned for a patch body that cannot be lowered to
// instructions.
var ErrBadBody = errors.New("weaver: bad patch body")

// AnchorNotFoundError reports a patch whose anchor did not resolve against
// the current instruction sequence.
type AnchorNotFoundError struct {
	Patch  *patch.Patch
	Target patch.Target
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("weaver: %s: anchor %s not found in %s", e.Patch.ID, e.Patch.Anchor, e.Target)
}

// PatchError wraps any other failure of one patch.
type PatchError struct {
	Patch *patch.Patch
	Err   error
}

func (e *PatchError) Error() string { return fmt.Sprintf("weaver: %s: %v", e.Patch.ID, e.Err) }
func (e *PatchError) Unwrap() error { return e.Err }

func badBody(i int, op patch.Op, format string, args ...any) error {
	return fmt.Errorf("%w: op %d (%s): %s", ErrBadBody, i, op.Code, fmt.Sprintf(format, args...))
}
