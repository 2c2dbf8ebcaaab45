package accesscontrol

import "github.com/google/uuid"

// AttrSyncParentUUID names the attribute a synchronized entry carries
// pointing at its synchronization source (§3).
const AttrSyncParentUUID = "sync_parent_uuid"

// SyncAuthorityMap maps a synchronization source UUID to the set of
// attribute names yielded to local authority for entries from that source
// (§3 "Sync-authority map"). An attribute not in the yielded set for an
// entry's sync parent is read-only to every non-internal caller.
type SyncAuthorityMap map[uuid.UUID]map[string]struct{}

// Yielded returns the yielded-attribute set for a sync source, or nil if
// the source has no agreement on file (meaning nothing is yielded).
func (m SyncAuthorityMap) Yielded(source uuid.UUID) map[string]struct{} {
	return m[source]
}
