package coordinator

import (
	"fmt"

	"mapsync/core/content"
)

// DiagnosticKind classifies a non-fatal reconciliation problem.
type DiagnosticKind string

const (
	// DiagDuplicateIdentity reports two same-kind nodes sharing an
	// identity within one pass. The later-seen node wins.
	DiagDuplicateIdentity DiagnosticKind = "duplicate-identity"

	// DiagSurfaceOperationFailure reports a failed add/update/remove
	// call. The affected identity's tracked state is left unchanged and
	// the pass continues with the remaining identities.
	DiagSurfaceOperationFailure DiagnosticKind = "surface-operation-failure"
)

// Diagnostic is a warning-class report surfaced to the host. Diagnostics
// never abort a pass.
type Diagnostic struct {
	Kind        DiagnosticKind
	ContentKind content.Kind
	Group       string
	Identity    string
	Op          ActionType
	Err         error
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagDuplicateIdentity:
		return fmt.Sprintf("duplicate %s identity %q, later node wins", d.ContentKind, d.Identity)
	case DiagSurfaceOperationFailure:
		return fmt.Sprintf("surface %s failed for %s %s/%s: %v", d.Op, d.ContentKind, d.Group, d.Identity, d.Err)
	default:
		return string(d.Kind)
	}
}

// DiagnosticSink receives diagnostics as they are raised during a pass.
// The sink runs synchronously on the reconciling goroutine and must not
// re-enter the coordinator.
type DiagnosticSink func(Diagnostic)
