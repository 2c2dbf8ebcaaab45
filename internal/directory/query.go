package directory

import "context"

// QueryInterface is the directory's search/resolve surface (§6). Storage,
// indexing, and replication live behind it. The engine's guards and
// appliers do not call it: they take candidate entries as arguments.
type QueryInterface interface {
	// Search runs an internal (engine-bypassing) search. Never used on a
	// caller-facing path without having already gone through a guard.
	Search(ctx context.Context, filter Filter, ident Identity) ([]*Entry, error)
	// ResolveFilter resolves a target filter against an identity, consulting
	// (and populating) the supplied cache read view (§4.2).
	ResolveFilter(ctx context.Context, filter Filter, ident Identity, cache *ResolveCacheReadTxn) (ResolvedFilter, error)
}

// SchemaChecker validates an entry against the directory's attribute
// syntax/schema rules (§6). No code in the engine invokes it, and the
// engine does not define syntax itself (§1 Non-goals).
type SchemaChecker interface {
	Validate(ctx context.Context, e *Entry) error
}
