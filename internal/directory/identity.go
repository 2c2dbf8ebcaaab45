package directory

import "github.com/google/uuid"

// Origin is the provenance of a request identity (§3 Identity).
type Origin int

const (
	// OriginInternal identities bypass the engine entirely at the guard layer.
	OriginInternal Origin = iota
	// OriginSynchronized identities represent the replication writer; they
	// must never appear on an external read path.
	OriginSynchronized
	// OriginUser identities are backed by a directory entry.
	OriginUser
)

func (o Origin) String() string {
	switch o {
	case OriginInternal:
		return "internal"
	case OriginSynchronized:
		return "synchronized"
	case OriginUser:
		return "user"
	default:
		return "unknown"
	}
}

// Scope restricts what the holder's session may do (§3 Identity).
type Scope int

const (
	ScopeReadOnly Scope = iota
	ScopeReadWrite
)

// Identity is a request actor: an origin, a scope, and (for OriginUser) the
// backing entry plus a cached set of group memberships.
type Identity struct {
	Origin      Origin
	Scope       Scope
	EntryUUID   uuid.UUID   // zero for OriginInternal/OriginSynchronized
	Memberships []uuid.UUID // cached group UUIDs, valid for the life of the request

	// SyncParentUUID is set when the identity's own backing entry is itself
	// a synchronized account (e.g. an LDAP user synced in), naming its
	// synchronization source. Zero means the identity is locally authored.
	SyncParentUUID uuid.UUID
}

// NewInternal returns the identity used for bypass-everything internal
// operations (schema loading, startup seeding, replication's own writes).
func NewInternal() Identity {
	return Identity{Origin: OriginInternal, Scope: ScopeReadWrite}
}

// NewSynchronized returns the identity of the replication writer.
func NewSynchronized() Identity {
	return Identity{Origin: OriginSynchronized, Scope: ScopeReadWrite}
}

// NewUser returns a request identity backed by a directory entry.
func NewUser(entryUUID uuid.UUID, scope Scope, memberships ...uuid.UUID) Identity {
	return Identity{
		Origin:      OriginUser,
		Scope:       scope,
		EntryUUID:   entryUUID,
		Memberships: memberships,
	}
}

// IsInternal reports whether the identity bypasses the engine (§4.7).
func (id Identity) IsInternal() bool { return id.Origin == OriginInternal }

// IsSynchronized reports whether the identity is the replication writer.
func (id Identity) IsSynchronized() bool { return id.Origin == OriginSynchronized }

// IsReadWrite reports whether the identity's session scope permits writes.
func (id Identity) IsReadWrite() bool { return id.Scope == ScopeReadWrite }

// MemberOfAny reports whether the identity's cached memberships intersect
// the given group UUID set. Used by the Group receiver (§4.2).
func (id Identity) MemberOfAny(groups map[uuid.UUID]struct{}) bool {
	if len(groups) == 0 {
		return false
	}
	for _, g := range id.Memberships {
		if _, ok := groups[g]; ok {
			return true
		}
	}
	return false
}

// Manages reports whether the identity is the direct manager of an entry,
// per the EntryManager receiver's per-entry check (§4.2): direct UUID
// equality between the identity and the entry's entry_managed_by, per the
// design decision recorded in DESIGN.md for the open question on indirect
// (group) management.
func (id Identity) Manages(entryManagedBy uuid.UUID) bool {
	return id.Origin == OriginUser && entryManagedBy != uuid.Nil && id.EntryUUID == entryManagedBy
}
