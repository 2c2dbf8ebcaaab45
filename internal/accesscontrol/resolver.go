package accesscontrol

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kanidm-go/accessd/internal/directory"
	"github.com/kanidm-go/accessd/internal/pkg/logger"
)

// ReceiverCondition is a resolved receiver: either "always passes at
// resolution, recheck per-entry" (EntryManager) or a concrete group set
// (§3 Resolved policy, §4.2).
type ReceiverCondition struct {
	Kind   ReceiverKind
	Groups map[uuid.UUID]struct{}
}

// TargetCondition is a resolved target: a filter with every Self primitive
// substituted for the resolving identity (§3, §4.2).
type TargetCondition struct {
	Filter directory.ResolvedFilter
}

// ResolvedSearchPolicy pairs an unresolved SearchPolicy with its resolved
// receiver/target conditions (§3 "Resolved policy").
type ResolvedSearchPolicy struct {
	Policy   *SearchPolicy
	Receiver ReceiverCondition
	Target   TargetCondition
}

type ResolvedCreatePolicy struct {
	Policy   *CreatePolicy
	Receiver ReceiverCondition
	Target   TargetCondition
}

type ResolvedModifyPolicy struct {
	Policy   *ModifyPolicy
	Receiver ReceiverCondition
	Target   TargetCondition
}

type ResolvedDeletePolicy struct {
	Policy   *DeletePolicy
	Receiver ReceiverCondition
	Target   TargetCondition
}

// resolveReceiverGate reports whether the receiver is even worth resolving
// a target for: Receiver(None) never matches, and Receiver(Group) can be
// rejected up front without touching the filter-resolve cache at all. The
// EntryManager per-entry recheck happens later, in the applier (§4.2).
func resolveReceiverGate(ident directory.Identity, r Receiver) (ReceiverCondition, bool) {
	switch r.Kind {
	case ReceiverGroup:
		if !ident.MemberOfAny(r.Groups) {
			return ReceiverCondition{}, false
		}
		return ReceiverCondition{Kind: ReceiverGroup, Groups: r.Groups}, true
	case ReceiverEntryManager:
		return ReceiverCondition{Kind: ReceiverEntryManager}, true
	default: // ReceiverNone
		return ReceiverCondition{}, false
	}
}

// resolveTarget resolves a Target(Scope(filter)) against ident, using and
// populating cache. A filter-resolution error is logged and treated as a
// drop of this one policy (§4.2, §4.11), never as a request failure.
func resolveTarget(ctx context.Context, ident directory.Identity, t Target, cache *directory.ResolveCacheReadTxn, policyName string) (TargetCondition, bool) {
	if t.Kind != TargetScope {
		return TargetCondition{}, false
	}
	rf, err := directory.ResolveFilter(t.Filter, ident, cache)
	if err != nil {
		logger.Std.WarnContext(ctx, "acp target resolution failed, dropping policy",
			slog.String("policy", policyName), slog.Any("error", err))
		return TargetCondition{}, false
	}
	return TargetCondition{Filter: rf}, true
}

// ResolveSearch resolves a single search policy against ident, or reports
// no-match/drop (§4.2).
func ResolveSearch(ctx context.Context, ident directory.Identity, p *SearchPolicy, cache *directory.ResolveCacheReadTxn) (*ResolvedSearchPolicy, bool) {
	rc, ok := resolveReceiverGate(ident, p.Profile.Receiver)
	if !ok {
		return nil, false
	}
	tc, ok := resolveTarget(ctx, ident, p.Profile.Target, cache, p.Profile.Name)
	if !ok {
		return nil, false
	}
	return &ResolvedSearchPolicy{Policy: p, Receiver: rc, Target: tc}, true
}

// ResolveCreate resolves a single create policy against ident (§4.2).
func ResolveCreate(ctx context.Context, ident directory.Identity, p *CreatePolicy, cache *directory.ResolveCacheReadTxn) (*ResolvedCreatePolicy, bool) {
	rc, ok := resolveReceiverGate(ident, p.Profile.Receiver)
	if !ok {
		return nil, false
	}
	tc, ok := resolveTarget(ctx, ident, p.Profile.Target, cache, p.Profile.Name)
	if !ok {
		return nil, false
	}
	return &ResolvedCreatePolicy{Policy: p, Receiver: rc, Target: tc}, true
}

// ResolveModify resolves a single modify policy against ident (§4.2).
func ResolveModify(ctx context.Context, ident directory.Identity, p *ModifyPolicy, cache *directory.ResolveCacheReadTxn) (*ResolvedModifyPolicy, bool) {
	rc, ok := resolveReceiverGate(ident, p.Profile.Receiver)
	if !ok {
		return nil, false
	}
	tc, ok := resolveTarget(ctx, ident, p.Profile.Target, cache, p.Profile.Name)
	if !ok {
		return nil, false
	}
	return &ResolvedModifyPolicy{Policy: p, Receiver: rc, Target: tc}, true
}

// ResolveDelete resolves a single delete policy against ident (§4.2).
func ResolveDelete(ctx context.Context, ident directory.Identity, p *DeletePolicy, cache *directory.ResolveCacheReadTxn) (*ResolvedDeletePolicy, bool) {
	rc, ok := resolveReceiverGate(ident, p.Profile.Receiver)
	if !ok {
		return nil, false
	}
	tc, ok := resolveTarget(ctx, ident, p.Profile.Target, cache, p.Profile.Name)
	if !ok {
		return nil, false
	}
	return &ResolvedDeletePolicy{Policy: p, Receiver: rc, Target: tc}, true
}

// receiverMatchesEntry performs the per-entry receiver check (§4.2, §4.3):
// Group receivers already passed at resolution; EntryManager must be
// rechecked per entry against entry_managed_by.
func receiverMatchesEntry(ident directory.Identity, rc ReceiverCondition, e *directory.Entry) bool {
	switch rc.Kind {
	case ReceiverGroup:
		return true // already confirmed at resolution
	case ReceiverEntryManager:
		managedBy, ok := e.UUIDAttr("entry_managed_by")
		if !ok {
			return false
		}
		return ident.Manages(managedBy)
	default:
		return false
	}
}
