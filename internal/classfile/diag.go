package classfile

import "fmt"

// DiagKind classifies a diagnostic message.
type DiagKind string

const (
	DiagMalformed    DiagKind = "malformed_class"
	DiagDuplicate    DiagKind = "duplicate_target"
	DiagConflict     DiagKind = "patch_conflict"
	DiagAnchor       DiagKind = "anchor_not_found"
	DiagVerification DiagKind = "verification"
	DiagInternal     DiagKind = "internal"
	DiagDegraded     DiagKind = "degraded"
)

// Diag records a non-fatal issue encountered while transforming a class.
// The host never sees these as failures; the class falls back to its
// original bytes instead.
type Diag struct {
	Class  string   `json:"class"`
	Method string   `json:"method,omitempty"`
	Patch  string   `json:"patch,omitempty"`
	Kind   DiagKind `json:"kind"`
	Msg    string   `json:"msg"`
}

func (d Diag) String() string {
	where := d.Class
	if d.Method != "" {
		where += "." + d.Method
	}
	if d.Patch != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", d.Kind, where, d.Patch, d.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Kind, where, d.Msg)
}
