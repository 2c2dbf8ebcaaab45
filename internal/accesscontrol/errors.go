// Package accesscontrol implements the access control evaluation engine:
// policy parsing, receiver/target resolution, the four per-axis appliers,
// the operation guards that glue them to concrete requests, the
// effective-permission reporter, and the copy-on-write transaction
// container that publishes policy snapshots (spec §4).
package accesscontrol

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced to callers (§7).
var (
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidState      = errors.New("invalid state")
	ErrNoMatchingEntries = errors.New("no matching entries")
	ErrEmptyRequest      = errors.New("empty request")
)

// PolicyInvalidError is returned at load time (§4.1) when a policy entry is
// missing a required field or carries an unparsable one. The offending
// policy entry is rejected; the transaction commit itself never fails.
type PolicyInvalidError struct {
	Details string
}

func (e *PolicyInvalidError) Error() string {
	return fmt.Sprintf("policy invalid: %s", e.Details)
}

// denied wraps ErrAccessDenied with a diagnostic detail string, matching
// the teacher's %w-wrapping style. The detail is for logs, never echoed to
// the denial result itself (denials never reveal what would have been
// visible, §7).
func denied(detail string) error {
	return fmt.Errorf("%w: %s", ErrAccessDenied, detail)
}
