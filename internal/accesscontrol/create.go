package accesscontrol

import "github.com/kanidm-go/accessd/internal/directory"

// ApplyCreate is the create applier (§4.5). Unlike search/modify, create
// coverage does not union across policies: a single policy must cover every
// class and every attribute the proposed entry carries. Entries bearing a
// create-protected class can never be created through the engine.
func ApplyCreate(ident directory.Identity, policies []*ResolvedCreatePolicy, proposed *directory.Entry) basicResult {
	classes := map[string]struct{}{}
	for c := range proposed.Classes {
		classes[c] = struct{}{}
	}
	if IsCreateProtectedClass(classes) {
		return basicDeny
	}

	attrs := proposed.AttrNames()
	delete(attrs, "class") // class coverage is checked separately via Classes

	for _, p := range policies {
		if !receiverMatchesEntry(ident, p.Receiver, proposed) {
			continue
		}
		if !p.Target.Filter.Matches(proposed) {
			continue
		}
		if !subsetOf(classes, p.Policy.Classes) {
			continue
		}
		if !subsetOf(attrs, p.Policy.Attrs) {
			continue
		}
		return basicGrant
	}
	return basicIgnore
}
