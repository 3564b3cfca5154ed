package verifier

import (
	"errors"
	"fmt"
)

// Failure kinds. A *VerificationError unwraps to one of these.
var (
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrStackOverflow     = errors.New("stack exceeds max_stack")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrBadBranchTarget   = errors.New("branch target outside code")
	ErrLocalOutOfBounds  = errors.New("local slot outside max_locals")
	ErrInconsistentStack = errors.New("inconsistent stack height at merge")
	ErrFallsOffEnd       = errors.New("execution falls off the end of code")
	ErrBadConstant       = errors.New("bad constant pool reference")
	ErrUnsupported       = errors.New("unsupported instruction")
)

// VerificationError reports a structural violation found by abstract
// interpretation of one method.
type VerificationError struct {
	Class  string
	Method string // name + descriptor
	Index  int    // instruction index, -1 when not tied to one instruction
	Op     string
	Kind   error
	Detail string
}

func (e *VerificationError) Error() string {
	where := e.Class + "." + e.Method
	if e.Index >= 0 {
		where = fmt.Sprintf("%s at %d (%s)", where, e.Index, e.Op)
	}
	if e.Detail == "" {
		return fmt.Sprintf("verifier: %s: %v", where, e.Kind)
	}
	return fmt.Sprintf("verifier: %s: %v: %s", where, e.Kind, e.Detail)
}

func (e *VerificationError) Unwrap() error { return e.Kind }
