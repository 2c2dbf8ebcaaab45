package accesscontrol

import (
	"github.com/google/uuid"

	"github.com/kanidm-go/accessd/internal/directory"
)

// Attributes/classes the two §4.3 hooks key off.
const (
	ClassOAuth2RS             = "oauth2_resource_server"
	AttrOAuth2RSScopeMapGroup = "oauth2_rs_scope_map_group"

	ClassSyncAccount         = "sync_account"
	AttrSyncCredentialPortal = "sync_credential_portal"
)

// oauth2RSPublicAttrs is the canonical public attribute set released by the
// OAuth2-dynamic-read hook (§4.3), independent of any configured search
// policy.
var oauth2RSPublicAttrs = map[string]struct{}{
	"oauth2_rs_name":   {},
	"oauth2_rs_origin": {},
	"displayname":      {},
	"image":            {},
}

// SearchHookOptions toggles the §4.3 hooks that run in addition to policy
// evaluation.
type SearchHookOptions struct {
	OAuth2DynamicRead bool
}

// ApplySearch is the search applier (§4.3): for each resolved search policy
// whose receiver and target match the entry, union its Attrs into the
// result. Returns Ignore if nothing matched. Search never denies — absence
// of a matching policy is expressed as Ignore, which the guard collapses to
// denial (§3, §4.10).
func ApplySearch(ident directory.Identity, policies []*ResolvedSearchPolicy, e *directory.Entry, opts SearchHookOptions) srchResult {
	if IsHidden(e) {
		return srchIgnore()
	}

	allowed := map[string]struct{}{}
	matched := false
	for _, p := range policies {
		if !receiverMatchesEntry(ident, p.Receiver, e) {
			continue
		}
		if !p.Target.Filter.Matches(e) {
			continue
		}
		unionInto(allowed, p.Policy.Attrs)
		matched = true
	}

	if opts.OAuth2DynamicRead && e.HasClass(ClassOAuth2RS) {
		if groups, ok := e.Attr(AttrOAuth2RSScopeMapGroup); ok {
			groupSet := make(map[uuid.UUID]struct{}, len(groups))
			for _, g := range groups {
				if id, err := uuid.Parse(g); err == nil {
					groupSet[id] = struct{}{}
				}
			}
			if ident.MemberOfAny(groupSet) {
				unionInto(allowed, oauth2RSPublicAttrs)
				matched = true
			}
		}
	}

	if e.HasClass(ClassSyncAccount) && ident.SyncParentUUID != uuid.Nil && ident.SyncParentUUID == e.UUID {
		allowed[AttrSyncCredentialPortal] = struct{}{}
		matched = true
	}

	if !matched {
		return srchIgnore()
	}
	return srchAllow(allowed)
}
