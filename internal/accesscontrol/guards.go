package accesscontrol

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kanidm-go/accessd/internal/directory"
)

// maxConcurrentEntryEval bounds the number of entries evaluated in parallel
// by a single guard call (§5 "multi-threaded runtime", no internal timers
// or I/O — just CPU-bound fan-out across a candidate entry list).
const maxConcurrentEntryEval = 8

// ReducedEntry is an entry projected down to only the attributes a search
// reduce released, optionally carrying an effective-permission record
// (§4.7 "Search reduce guard").
type ReducedEntry struct {
	Entry               *directory.Entry
	Attrs               map[string][]string
	EffectivePermission *AccessEffectivePermission
}

func resolveAllSearch(ctx context.Context, ident directory.Identity, policies []*SearchPolicy, cache *directory.ResolveCacheReadTxn) []*ResolvedSearchPolicy {
	out := make([]*ResolvedSearchPolicy, 0, len(policies))
	for _, p := range policies {
		if rp, ok := ResolveSearch(ctx, ident, p, cache); ok {
			out = append(out, rp)
		}
	}
	return out
}

func resolveAllModify(ctx context.Context, ident directory.Identity, policies []*ModifyPolicy, cache *directory.ResolveCacheReadTxn) []*ResolvedModifyPolicy {
	out := make([]*ResolvedModifyPolicy, 0, len(policies))
	for _, p := range policies {
		if rp, ok := ResolveModify(ctx, ident, p, cache); ok {
			out = append(out, rp)
		}
	}
	return out
}

func resolveAllCreate(ctx context.Context, ident directory.Identity, policies []*CreatePolicy, cache *directory.ResolveCacheReadTxn) []*ResolvedCreatePolicy {
	out := make([]*ResolvedCreatePolicy, 0, len(policies))
	for _, p := range policies {
		if rp, ok := ResolveCreate(ctx, ident, p, cache); ok {
			out = append(out, rp)
		}
	}
	return out
}

func resolveAllDelete(ctx context.Context, ident directory.Identity, policies []*DeletePolicy, cache *directory.ResolveCacheReadTxn) []*ResolvedDeletePolicy {
	out := make([]*ResolvedDeletePolicy, 0, len(policies))
	for _, p := range policies {
		if rp, ok := ResolveDelete(ctx, ident, p, cache); ok {
			out = append(out, rp)
		}
	}
	return out
}

// attrsOverlap reports whether two attribute-name sets share a member.
func attrsOverlap(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

// intersect returns the intersection of two attribute-name sets.
func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// projectEntry copies only the named attributes of e into a fresh value map.
func projectEntry(e *directory.Entry, attrs map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(attrs))
	for a := range attrs {
		if a == "class" {
			continue
		}
		if vals, ok := e.Attr(a); ok {
			out[a] = vals
		}
	}
	return out
}

// evalAllConcurrently runs fn over every entry with bounded concurrency and
// reports whether every entry's fn returned true (AND semantics), short of
// an error from any single entry.
func evalAllConcurrently(ctx context.Context, entries []*directory.Entry, fn func(context.Context, *directory.Entry) (bool, error)) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEntryEval)
	results := make([]bool, len(entries))
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			ok, err := fn(gctx, e)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for _, ok := range results {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// SearchFilterEntries is the search-filter guard (§4.7): of the candidate
// entries, returns those the identity may read, requiring the filter's own
// referenced attributes to be a subset of what the search applier allows
// (so filtering on an attribute never leaks entries the caller could not
// otherwise see that attribute of).
func SearchFilterEntries(ctx context.Context, ident directory.Identity, filter directory.Filter, policies []*SearchPolicy, cache *directory.ResolveCacheReadTxn, entries []*directory.Entry, opts SearchHookOptions) ([]*directory.Entry, error) {
	if ident.IsInternal() {
		return entries, nil
	}
	if ident.IsSynchronized() {
		return nil, ErrInvalidState
	}

	reqAttrs := filter.ReferencedAttrs()
	candidates := make([]*SearchPolicy, 0, len(policies))
	for _, p := range policies {
		if attrsOverlap(p.Attrs, reqAttrs) {
			candidates = append(candidates, p)
		}
	}
	resolved := resolveAllSearch(ctx, ident, candidates, cache)

	out := make([]*directory.Entry, 0, len(entries))
	for _, e := range entries {
		res := ApplySearch(ident, resolved, e, opts)
		if res.kind != basicGrant {
			continue
		}
		if !subsetOf(reqAttrs, res.attrs) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// SearchFilterEntryAttributesOptions configures the search reduce guard.
type SearchFilterEntryAttributesOptions struct {
	// RequestedAttrs, if non-nil, restricts the projection to this set
	// intersected with what the applier allows. Nil means "project to
	// everything allowed".
	RequestedAttrs map[string]struct{}
	Hooks          SearchHookOptions
	// WithEffectivePermission attaches an AccessEffectivePermission record
	// to each reduced entry, computed against the supplied policy sets.
	WithEffectivePermission bool
	ModifyPolicies          []*ModifyPolicy
	DeletePolicies          []*DeletePolicy
	SyncMap                 SyncAuthorityMap
}

// SearchFilterEntryAttributes is the search reduce guard (§4.7): projects
// already-filtered entries down to the allowed (or requested ∩ allowed)
// attribute set, optionally folding in an effective-permission record.
func SearchFilterEntryAttributes(ctx context.Context, ident directory.Identity, searchPolicies []*SearchPolicy, cache *directory.ResolveCacheReadTxn, entries []*directory.Entry, opts SearchFilterEntryAttributesOptions) ([]ReducedEntry, error) {
	if ident.IsSynchronized() {
		return nil, ErrInvalidState
	}

	resolvedSearch := resolveAllSearch(ctx, ident, searchPolicies, cache)
	var resolvedModify []*ResolvedModifyPolicy
	var resolvedDelete []*ResolvedDeletePolicy
	if opts.WithEffectivePermission && !ident.IsInternal() {
		resolvedModify = resolveAllModify(ctx, ident, opts.ModifyPolicies, cache)
		resolvedDelete = resolveAllDelete(ctx, ident, opts.DeletePolicies, cache)
	}

	out := make([]ReducedEntry, 0, len(entries))
	for _, e := range entries {
		var allowed map[string]struct{}
		if ident.IsInternal() {
			allowed = e.AttrNames()
		} else {
			res := ApplySearch(ident, resolvedSearch, e, opts.Hooks)
			if res.kind != basicGrant {
				continue
			}
			allowed = res.attrs
		}

		project := allowed
		if opts.RequestedAttrs != nil {
			project = intersect(opts.RequestedAttrs, allowed)
		}

		re := ReducedEntry{Entry: e, Attrs: projectEntry(e, project)}
		if opts.WithEffectivePermission {
			ep, err := effectivePermissionForEntry(ident, resolvedSearch, resolvedModify, resolvedDelete, e, opts.Hooks, opts.SyncMap)
			if err != nil {
				return nil, err
			}
			re.EffectivePermission = &ep
		}
		out = append(out, re)
	}
	return out, nil
}

// ModifyAllowOperation is the modify guard (§4.7, §4.4): every candidate
// entry must pass the modify applier with the same modlist, and the
// modlist's requested present/removed attribute and class sets must be a
// subset of what the applier allows for that entry.
func ModifyAllowOperation(ctx context.Context, ident directory.Identity, policies []*ModifyPolicy, cache *directory.ResolveCacheReadTxn, entries []*directory.Entry, modlist ModList, syncMap SyncAuthorityMap) (bool, error) {
	if ident.IsInternal() {
		return true, nil
	}
	if len(entries) == 0 {
		return false, ErrNoMatchingEntries
	}
	if len(modlist) == 0 {
		return false, ErrEmptyRequest
	}
	if modlist.MasksReplicationState() {
		return false, denied("bypass replication state machine")
	}

	resolved := resolveAllModify(ctx, ident, policies, cache)
	presAttr, remAttr := modlist.RequestedAttrSets()
	presClass, remClass := modlist.RequestedClassSets()

	return evalAllConcurrently(ctx, entries, func(_ context.Context, e *directory.Entry) (bool, error) {
		res := ApplyModify(ident, resolved, e, modlist, syncMap)
		if res.kind != basicGrant {
			return false, nil
		}
		if !subsetOf(presAttr, res.presAttr) || !subsetOf(remAttr, res.remAttr) {
			return false, nil
		}
		if !subsetOf(presClass, res.presClass) || !subsetOf(remClass, res.remClass) {
			return false, nil
		}
		return true, nil
	})
}

// BatchModifyAllowOperation is the batch-modify guard (§4.7): each entry
// carries its own modlist, indexed by entry UUID. An entry missing from the
// batch map fails the whole operation.
func BatchModifyAllowOperation(ctx context.Context, ident directory.Identity, policies []*ModifyPolicy, cache *directory.ResolveCacheReadTxn, entries []*directory.Entry, batch map[string]ModList, syncMap SyncAuthorityMap) (bool, error) {
	if ident.IsInternal() {
		return true, nil
	}
	if len(entries) == 0 {
		return false, ErrNoMatchingEntries
	}

	resolved := resolveAllModify(ctx, ident, policies, cache)

	return evalAllConcurrently(ctx, entries, func(_ context.Context, e *directory.Entry) (bool, error) {
		modlist, ok := batch[e.UUID.String()]
		if !ok {
			return false, nil
		}
		if len(modlist) == 0 {
			return false, ErrEmptyRequest
		}
		if modlist.MasksReplicationState() {
			return false, denied("bypass replication state machine")
		}
		res := ApplyModify(ident, resolved, e, modlist, syncMap)
		if res.kind != basicGrant {
			return false, nil
		}
		presAttr, remAttr := modlist.RequestedAttrSets()
		presClass, remClass := modlist.RequestedClassSets()
		if !subsetOf(presAttr, res.presAttr) || !subsetOf(remAttr, res.remAttr) {
			return false, nil
		}
		if !subsetOf(presClass, res.presClass) || !subsetOf(remClass, res.remClass) {
			return false, nil
		}
		return true, nil
	})
}

// CreateAllowOperation is the create guard (§4.7): every proposed entry in
// the candidate list must be granted by the create applier.
func CreateAllowOperation(ctx context.Context, ident directory.Identity, policies []*CreatePolicy, cache *directory.ResolveCacheReadTxn, proposed []*directory.Entry) (bool, error) {
	if ident.IsInternal() {
		return true, nil
	}
	if len(proposed) == 0 {
		return false, ErrEmptyRequest
	}

	resolved := resolveAllCreate(ctx, ident, policies, cache)
	return evalAllConcurrently(ctx, proposed, func(_ context.Context, e *directory.Entry) (bool, error) {
		return ApplyCreate(ident, resolved, e) == basicGrant, nil
	})
}

// DeleteAllowOperation is the delete guard (§4.7): every candidate entry
// must be granted by the delete applier.
func DeleteAllowOperation(ctx context.Context, ident directory.Identity, policies []*DeletePolicy, cache *directory.ResolveCacheReadTxn, entries []*directory.Entry) (bool, error) {
	if ident.IsInternal() {
		return true, nil
	}
	if len(entries) == 0 {
		return false, ErrNoMatchingEntries
	}

	resolved := resolveAllDelete(ctx, ident, policies, cache)
	return evalAllConcurrently(ctx, entries, func(_ context.Context, e *directory.Entry) (bool, error) {
		return ApplyDelete(ident, resolved, e) == basicGrant, nil
	})
}
