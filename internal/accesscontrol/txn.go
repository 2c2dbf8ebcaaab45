package accesscontrol

import (
	"sync"
	"sync/atomic"

	"github.com/kanidm-go/accessd/internal/directory"
)

// PolicySnapshot is the immutable published state of the four policy
// vectors plus the sync-authority map (§3 "Lifecycles", §4.9).
type PolicySnapshot struct {
	Search []*SearchPolicy
	Create []*CreatePolicy
	Modify []*ModifyPolicy
	Delete []*DeletePolicy
	Sync   SyncAuthorityMap
}

// TransactionContainer holds the current policy snapshot under a
// copy-on-write cell alongside the process-wide filter-resolve cache
// (§4.9). Readers acquire an immutable snapshot; at most one writer holds
// the write permit at a time (§5).
type TransactionContainer struct {
	snapshot atomic.Pointer[PolicySnapshot]
	cache    *directory.ResolveFilterCache
	writeMu  sync.Mutex
}

// NewTransactionContainer builds an empty container with a filter-resolve
// cache of the given size (§4.9, wired to acp_resolve_cache_size).
func NewTransactionContainer(cacheSize int) *TransactionContainer {
	tc := &TransactionContainer{
		cache: directory.NewResolveFilterCache(cacheSize),
	}
	tc.snapshot.Store(&PolicySnapshot{Sync: SyncAuthorityMap{}})
	return tc
}

// ReadTransaction is a reader's immutable view: the policy snapshot
// observed at acquire time plus a filter-resolve cache read view tied to
// its lifetime (§4.2, §4.9).
type ReadTransaction struct {
	Snapshot *PolicySnapshot
	Cache    *directory.ResolveCacheReadTxn
}

// Read acquires a read transaction. Within it every policy query sees a
// consistent snapshot; a concurrent Commit is invisible until the next Read
// (§5 ordering guarantees).
func (tc *TransactionContainer) Read() *ReadTransaction {
	return &ReadTransaction{
		Snapshot: tc.snapshot.Load(),
		Cache:    tc.cache.ReadTxn(),
	}
}

// WriteTransaction is the single exclusive write handle (§4.9). It stages
// updates against a private copy of the current snapshot; nothing is
// visible to readers until Commit.
type WriteTransaction struct {
	tc      *TransactionContainer
	working PolicySnapshot
}

// Write acquires the single write permit, blocking until any prior writer
// has called Commit or Discard (§5 "Writers must hold the single write
// permit for the duration of update_* -> commit").
func (tc *TransactionContainer) Write() *WriteTransaction {
	tc.writeMu.Lock()
	cur := tc.snapshot.Load()
	return &WriteTransaction{tc: tc, working: *cur}
}

func (wt *WriteTransaction) UpdateSearch(policies []*SearchPolicy) { wt.working.Search = policies }
func (wt *WriteTransaction) UpdateCreate(policies []*CreatePolicy) { wt.working.Create = policies }
func (wt *WriteTransaction) UpdateModify(policies []*ModifyPolicy) { wt.working.Modify = policies }
func (wt *WriteTransaction) UpdateDelete(policies []*DeletePolicy) { wt.working.Delete = policies }
func (wt *WriteTransaction) UpdateSyncAgreements(sync SyncAuthorityMap) {
	wt.working.Sync = sync
}

// Commit publishes the staged snapshot atomically and releases the write
// permit. Readers that acquired before Commit keep observing the prior
// snapshot for the lifetime of their transaction (§5).
func (wt *WriteTransaction) Commit() {
	snap := wt.working
	wt.tc.snapshot.Store(&snap)
	wt.tc.writeMu.Unlock()
}

// Discard releases the write permit without publishing anything, e.g. when
// a batch of policy entries fails to parse under strict mode (§4.11).
func (wt *WriteTransaction) Discard() {
	wt.tc.writeMu.Unlock()
}

// TryQuiesce purges the filter-resolve cache on an idle cycle (§4.9).
func (tc *TransactionContainer) TryQuiesce() {
	tc.cache.TryQuiesce()
}
