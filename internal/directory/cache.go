package directory

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ACPResolveFilterCacheMax is the default bound on the filter-resolution
// cache, matching the directory's own default (256 entries).
const ACPResolveFilterCacheMax = 256

// ResolveFilterCache is the process-wide, eventually-consistent cache of
// resolved target filters (§4.2, §4.9, §5). It is keyed on filter shape
// plus identity-relevant substitutions, not on the set of applicable ACPs,
// since session claims vary per request. Hits are hints: callers must still
// be prepared for the underlying target evaluation to run (this package's
// Matches does that work; the cache only saves re-running Filter.Resolve).
type ResolveFilterCache struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, ResolvedFilter]
}

// NewResolveFilterCache builds a cache bounded at size entries (<=0 uses
// the package default).
func NewResolveFilterCache(size int) *ResolveFilterCache {
	if size <= 0 {
		size = ACPResolveFilterCacheMax
	}
	c, _ := lru.New[string, ResolvedFilter](size)
	return &ResolveFilterCache{cache: c}
}

// ReadTxn returns a read view over the cache, valid for the lifetime of one
// request/transaction (§4.2, §5: "per-txn read views").
func (c *ResolveFilterCache) ReadTxn() *ResolveCacheReadTxn {
	return &ResolveCacheReadTxn{parent: c}
}

// TryQuiesce is called by the transaction container on idle cycles (§4.9).
// The LRU cache self-bounds, so quiescing just drops everything: a resolve
// miss is cheap (one Filter.Resolve call) and this avoids holding resolved
// filters for identities that have since left the system.
func (c *ResolveFilterCache) TryQuiesce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

func cacheKey(f Filter, ident Identity) string {
	var b strings.Builder
	writeFilterKey(&b, f)
	if ident.Origin == OriginUser {
		fmt.Fprintf(&b, "|self=%s", ident.EntryUUID)
	}
	return b.String()
}

func writeFilterKey(b *strings.Builder, f Filter) {
	fmt.Fprintf(b, "(%d:%s=%s", f.Kind, f.Attr, f.Value)
	for _, s := range f.Sub {
		writeFilterKey(b, s)
	}
	b.WriteByte(')')
}

// ResolveCacheReadTxn is a per-transaction read view over the shared cache.
type ResolveCacheReadTxn struct {
	parent *ResolveFilterCache
}

// Get returns a cached resolution for (filter, ident), if present. A hit is
// a hint only (§5): the filter shape and identity substitution matched, but
// group membership changes are not part of the key, so callers that need
// exactness for non-Self predicates should still trust ResolvedFilter.Matches
// against the current entry rather than assuming cache freshness implies
// policy freshness.
func (rt *ResolveCacheReadTxn) Get(f Filter, ident Identity) (ResolvedFilter, bool) {
	rt.parent.mu.RLock()
	defer rt.parent.mu.RUnlock()
	return rt.parent.cache.Get(cacheKey(f, ident))
}

// Insert populates the cache with a freshly computed resolution.
func (rt *ResolveCacheReadTxn) Insert(f Filter, ident Identity, resolved ResolvedFilter) {
	rt.parent.mu.Lock()
	defer rt.parent.mu.Unlock()
	rt.parent.cache.Add(cacheKey(f, ident), resolved)
}

// ResolveFilter resolves f against ident, consulting then populating cache.
// This is the canonical implementation a QueryInterface.ResolveFilter should
// delegate to; it is exported so engine tests and a real directory backend
// share one cache-then-resolve code path.
func ResolveFilter(f Filter, ident Identity, cache *ResolveCacheReadTxn) (ResolvedFilter, error) {
	if cache != nil {
		if rf, ok := cache.Get(f, ident); ok {
			return rf, nil
		}
	}
	rf, err := f.Resolve(ident)
	if err != nil {
		return ResolvedFilter{}, err
	}
	if cache != nil {
		cache.Insert(f, ident, rf)
	}
	return rf, nil
}
