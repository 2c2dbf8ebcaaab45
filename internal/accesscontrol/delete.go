package accesscontrol

import "github.com/kanidm-go/accessd/internal/directory"

// ApplyDelete is the delete applier (§4.6). A protected-range entry can
// never be deleted through the engine, full stop. A synchronized entry can
// only be deleted by the synchronization writer itself; every other actor
// is denied regardless of policy. Otherwise, any one matching policy grants.
func ApplyDelete(ident directory.Identity, policies []*ResolvedDeletePolicy, e *directory.Entry) basicResult {
	if IsProtectedRange(e) {
		return basicDeny
	}
	if e.HasClass(ClassSyncObject) && !ident.IsSynchronized() {
		return basicDeny
	}

	for _, p := range policies {
		if !receiverMatchesEntry(ident, p.Receiver, e) {
			continue
		}
		if !p.Target.Filter.Matches(e) {
			continue
		}
		return basicGrant
	}
	return basicIgnore
}
