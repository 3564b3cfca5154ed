package patch

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPatch = errors.New("patch: invalid patch")
	ErrFrozen       = errors.New("patch: registry is frozen")
)

// DuplicateTargetError rejects a second exclusive patch on one method.
type DuplicateTargetError struct {
	Target   Target
	Existing string // ID of the patch already registered
	Patch    string // ID of the rejected patch
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("patch: %s is already replaced by %s; rejecting %s", e.Target, e.Existing, e.Patch)
}

func invalid(p *Patch, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidPatch, p.ID, fmt.Sprintf(format, args...))
}
