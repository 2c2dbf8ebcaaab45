package accesscontrol

import "github.com/kanidm-go/accessd/internal/directory"

// Object classes the engine treats specially, independent of any policy
// (§3 invariants, §4.3-§4.6).
const (
	ClassSystem     = "system"
	ClassTombstone  = "tombstone"
	ClassRecycled   = "recycled"
	ClassSyncObject = "sync_object"
)

// hideClasses are classes the search applier refuses to return entries
// for, regardless of policy (§4.3 "class-hide set").
var hideClasses = map[string]struct{}{
	ClassTombstone: {},
	ClassRecycled:  {},
}

// createProtectedClasses are classes that make an entry un-createable by
// any policy (§4.5): the replication writer's own sync objects, and
// built-in system objects.
var createProtectedClasses = map[string]struct{}{
	ClassSystem:     {},
	ClassSyncObject: {},
}

// IsHidden reports whether an entry is in the class-hide set search must
// never return, regardless of policy (§4.3).
func IsHidden(e *directory.Entry) bool {
	return e.HasAnyClass(hideClasses)
}

// IsCreateProtectedClass reports whether any of the given classes make an
// entry un-createable (§4.5).
func IsCreateProtectedClass(classes map[string]struct{}) bool {
	for c := range classes {
		if _, ok := createProtectedClasses[c]; ok {
			return true
		}
	}
	return false
}

// IsProtectedRange reports whether a UUID falls in the directory's reserved
// low range used for well-known/built-in objects (anonymous, system
// service accounts, schema, ...). These objects use UUIDs of the form
// 00000000-0000-0000-0000-XXXXXXXXXXXX; anything in that range is treated
// as a protected range entry regardless of its classes.
func IsProtectedRange(e *directory.Entry) bool {
	id := e.UUID
	for i := 0; i < 10; i++ {
		if id[i] != 0 {
			return false
		}
	}
	return true
}

// IsSystemProtected reports whether an entry cannot be created, deleted, or
// have its class mutated regardless of policy: it bears the system class
// and falls in the protected range (§3 invariant, §4.4-§4.6).
func IsSystemProtected(e *directory.Entry) bool {
	return e.HasClass(ClassSystem) && IsProtectedRange(e)
}
