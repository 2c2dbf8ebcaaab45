package directory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrFilterResolution is returned by Filter.Resolve when a filter primitive
// cannot be substituted for the given identity (e.g. Self on a non-user
// identity). Per §4.11 this is a per-policy diagnostic, not a request
// failure: callers drop the offending policy and continue.
var ErrFilterResolution = errors.New("filter resolution failed")

// Kind enumerates the filter node types this package supports. The engine
// does not need the directory's full filter grammar (out of scope, §1) —
// only enough to express target scopes and the Self/SelfUUID substitution
// the resolver depends on (§4.2).
type Kind int

const (
	KindEq Kind = iota
	KindPres
	KindAnd
	KindOr
	KindNot
	// KindSelfUUID matches the entry whose UUID equals the resolving
	// identity's own entry UUID ("target=Self").
	KindSelfUUID
	// KindEqSelf matches entries where Attr equals the resolving identity's
	// entry UUID (e.g. `entry_managed_by=Self`).
	KindEqSelf
)

// Filter is an unresolved filter expression. It may contain Self/SelfUUID
// primitives that require an identity to resolve against.
type Filter struct {
	Kind Kind
	Attr string
	Value string
	Sub  []Filter
}

func Eq(attr, value string) Filter     { return Filter{Kind: KindEq, Attr: attr, Value: value} }
func Pres(attr string) Filter          { return Filter{Kind: KindPres, Attr: attr} }
func And(sub ...Filter) Filter         { return Filter{Kind: KindAnd, Sub: sub} }
func Or(sub ...Filter) Filter          { return Filter{Kind: KindOr, Sub: sub} }
func Not(f Filter) Filter              { return Filter{Kind: KindNot, Sub: []Filter{f}} }
func SelfUUID() Filter                 { return Filter{Kind: KindSelfUUID} }
func EqSelf(attr string) Filter        { return Filter{Kind: KindEqSelf, Attr: attr} }

// ResolvedFilter is a Filter with every Self/SelfUUID primitive substituted
// for a concrete identity. Only resolved filters are evaluated against
// entries (§4.2, §4.3-4.6).
type ResolvedFilter struct {
	root Filter
}

// Resolve substitutes Self/SelfUUID primitives for ident and returns a
// ResolvedFilter. It fails if the filter references Self and ident is not
// backed by a directory entry (internal/synchronized identities).
func (f Filter) Resolve(ident Identity) (ResolvedFilter, error) {
	root, err := resolve(f, ident)
	if err != nil {
		return ResolvedFilter{}, err
	}
	return ResolvedFilter{root: root}, nil
}

func resolve(f Filter, ident Identity) (Filter, error) {
	switch f.Kind {
	case KindSelfUUID:
		if ident.Origin != OriginUser {
			return Filter{}, fmt.Errorf("%w: Self requires a user identity", ErrFilterResolution)
		}
		return Eq("uuid", ident.EntryUUID.String()), nil
	case KindEqSelf:
		if ident.Origin != OriginUser {
			return Filter{}, fmt.Errorf("%w: Self requires a user identity", ErrFilterResolution)
		}
		return Eq(f.Attr, ident.EntryUUID.String()), nil
	case KindAnd, KindOr, KindNot:
		sub := make([]Filter, 0, len(f.Sub))
		for _, s := range f.Sub {
			rs, err := resolve(s, ident)
			if err != nil {
				return Filter{}, err
			}
			sub = append(sub, rs)
		}
		return Filter{Kind: f.Kind, Sub: sub}, nil
	default:
		return f, nil
	}
}

// Matches evaluates the resolved filter against an entry.
func (rf ResolvedFilter) Matches(e *Entry) bool {
	return matches(rf.root, e)
}

func matches(f Filter, e *Entry) bool {
	switch f.Kind {
	case KindEq:
		if f.Attr == "uuid" {
			id, err := uuid.Parse(f.Value)
			return err == nil && id == e.UUID
		}
		if f.Attr == "class" {
			return e.HasClass(f.Value)
		}
		vals, ok := e.Attr(f.Attr)
		if !ok {
			return false
		}
		for _, v := range vals {
			if v == f.Value {
				return true
			}
		}
		return false
	case KindPres:
		if f.Attr == "class" {
			return len(e.Classes) > 0
		}
		_, ok := e.Attr(f.Attr)
		return ok
	case KindAnd:
		for _, s := range f.Sub {
			if !matches(s, e) {
				return false
			}
		}
		return true
	case KindOr:
		for _, s := range f.Sub {
			if matches(s, e) {
				return true
			}
		}
		return false
	case KindNot:
		return !matches(f.Sub[0], e)
	default:
		return false
	}
}

// ReferencedAttrs returns the set of attribute names the filter tests,
// used by the search-filter guard to pick candidate policies by attrs
// overlap (§4.7) before the per-entry applier ever runs.
func (f Filter) ReferencedAttrs() map[string]struct{} {
	out := map[string]struct{}{}
	collectAttrs(f, out)
	return out
}

func collectAttrs(f Filter, out map[string]struct{}) {
	switch f.Kind {
	case KindEq, KindPres, KindEqSelf:
		if f.Attr != "" {
			out[f.Attr] = struct{}{}
		}
	case KindSelfUUID:
		out["uuid"] = struct{}{}
	case KindAnd, KindOr, KindNot:
		for _, s := range f.Sub {
			collectAttrs(s, out)
		}
	}
}
