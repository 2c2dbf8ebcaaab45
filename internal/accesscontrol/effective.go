package accesscontrol

import (
	"context"

	"github.com/kanidm-go/accessd/internal/directory"
)

// effectivePermissionForEntry computes one AccessEffectivePermission record
// for (ident, e) against already-resolved policy sets (§4.8). The modify
// axes are computed by running the modify applier with an empty modlist:
// an empty modlist never purges class, so only the system-protected gate
// and the sync-authority override shape the result, exactly the gates
// effective-permission introspection is meant to report on.
func effectivePermissionForEntry(
	ident directory.Identity,
	searchPolicies []*ResolvedSearchPolicy,
	modifyPolicies []*ResolvedModifyPolicy,
	deletePolicies []*ResolvedDeletePolicy,
	e *directory.Entry,
	hooks SearchHookOptions,
	syncMap SyncAuthorityMap,
) (AccessEffectivePermission, error) {
	if ident.IsInternal() || ident.IsSynchronized() {
		return AccessEffectivePermission{}, ErrInvalidState
	}

	srch := ApplySearch(ident, searchPolicies, e, hooks)
	mod := ApplyModify(ident, modifyPolicies, e, nil, syncMap)
	del := ApplyDelete(ident, deletePolicies, e) == basicGrant

	ep := AccessEffectivePermission{
		Ident:  ident.EntryUUID,
		Target: e.UUID,
		Delete: del,
	}

	switch srch.kind {
	case basicGrant:
		ep.Search = AccessAllow(srch.attrs)
	default:
		ep.Search = AccessDeny()
	}

	switch mod.kind {
	case basicGrant:
		ep.ModifyPres = AccessAllow(mod.presAttr)
		ep.ModifyRem = AccessAllow(mod.remAttr)
		ep.ModifyPresClass = AccessClassAllow(mod.presClass)
		ep.ModifyRemClass = AccessClassAllow(mod.remClass)
	default:
		ep.ModifyPres = AccessDeny()
		ep.ModifyRem = AccessDeny()
		ep.ModifyPresClass = AccessClassDeny()
		ep.ModifyRemClass = AccessClassDeny()
	}

	return ep, nil
}

// EffectivePermissionCheck is the effective-permission reporter (§4.8): for
// each entry, computes the search/modify/delete record for ident. Internal
// and synchronized identities are rejected with InvalidState — introspection
// is a user-identity-only operation.
func EffectivePermissionCheck(
	ctx context.Context,
	ident directory.Identity,
	searchPolicies []*SearchPolicy,
	modifyPolicies []*ModifyPolicy,
	deletePolicies []*DeletePolicy,
	cache *directory.ResolveCacheReadTxn,
	entries []*directory.Entry,
	hooks SearchHookOptions,
	syncMap SyncAuthorityMap,
) ([]AccessEffectivePermission, error) {
	if ident.IsInternal() || ident.IsSynchronized() {
		return nil, ErrInvalidState
	}

	resolvedSearch := resolveAllSearch(ctx, ident, searchPolicies, cache)
	resolvedModify := resolveAllModify(ctx, ident, modifyPolicies, cache)
	resolvedDelete := resolveAllDelete(ctx, ident, deletePolicies, cache)

	out := make([]AccessEffectivePermission, 0, len(entries))
	for _, e := range entries {
		ep, err := effectivePermissionForEntry(ident, resolvedSearch, resolvedModify, resolvedDelete, e, hooks, syncMap)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, nil
}
