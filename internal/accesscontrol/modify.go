package accesscontrol

import "github.com/kanidm-go/accessd/internal/directory"

// ApplyModify is the modify applier (§4.4). It unions pres_attr/rem_attr and
// pres_class/rem_class across every resolved modify policy whose receiver
// and target match the entry, then applies three unconditional gates and the
// sync-authority override.
//
// Deny takes priority over any union result: purging the class attribute,
// presenting a replication-lifecycle class mask, or targeting a
// system-protected entry, denies the whole modify regardless of what any
// policy would otherwise allow.
func ApplyModify(ident directory.Identity, policies []*ResolvedModifyPolicy, e *directory.Entry, modlist ModList, syncMap SyncAuthorityMap) modResult {
	if modlist.PurgesClass() || modlist.MasksReplicationState() {
		return modDeny()
	}
	if IsSystemProtected(e) {
		return modDeny()
	}

	presAttr := map[string]struct{}{}
	remAttr := map[string]struct{}{}
	presClass := map[string]struct{}{}
	remClass := map[string]struct{}{}
	matched := false

	for _, p := range policies {
		if !receiverMatchesEntry(ident, p.Receiver, e) {
			continue
		}
		if !p.Target.Filter.Matches(e) {
			continue
		}
		unionInto(presAttr, p.Policy.PresentAttrs)
		unionInto(remAttr, p.Policy.RemoveAttrs)
		unionInto(presClass, p.Policy.PresentClasses)
		unionInto(remClass, p.Policy.RemoveClasses)
		matched = true
	}

	if !matched {
		return modIgnore()
	}

	// Sync-authority override (§3, §4.4): an attribute the sync source has
	// not yielded stays read-only no matter what any policy allows. class
	// is never yielded, full stop.
	if parent, ok := e.UUIDAttr(AttrSyncParentUUID); ok {
		yielded := syncMap.Yielded(parent)
		restrictToYielded(presAttr, yielded)
		restrictToYielded(remAttr, yielded)
		presClass = map[string]struct{}{}
		remClass = map[string]struct{}{}
	}

	return modAllow(presAttr, remAttr, presClass, remClass)
}

// restrictToYielded removes from attrs any attribute not present in
// yielded, in place.
func restrictToYielded(attrs map[string]struct{}, yielded map[string]struct{}) {
	for a := range attrs {
		if _, ok := yielded[a]; !ok {
			delete(attrs, a)
		}
	}
}
