package accesscontrol

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanidm-go/accessd/internal/directory"
)

func TestResolveSearch_GroupReceiverMismatchDrops(t *testing.T) {
	group := uuid.New()
	p, err := ParseSearchPolicy(searchPolicyEntry(group))
	require.NoError(t, err)

	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly, uuid.New()) // not in group
	cache := directory.NewResolveFilterCache(4).ReadTxn()

	_, ok := ResolveSearch(context.Background(), ident, p, cache)
	assert.False(t, ok)
}

func TestResolveSearch_GroupReceiverMatch(t *testing.T) {
	group := uuid.New()
	p, err := ParseSearchPolicy(searchPolicyEntry(group))
	require.NoError(t, err)

	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly, group)
	cache := directory.NewResolveFilterCache(4).ReadTxn()

	rp, ok := ResolveSearch(context.Background(), ident, p, cache)
	require.True(t, ok)
	assert.Equal(t, ReceiverGroup, rp.Receiver.Kind)
}

func TestResolveSearch_TargetResolutionFailureDrops(t *testing.T) {
	e := directory.NewEntry(uuid.New(), ClassACProfile, ClassACPSearch, ClassACPReceiverManager).
		With("name", "self-scoped").
		With(AttrACPTargetScope, "SelfUUID").
		With(AttrACPSearchAttr, "mail")
	p, err := ParseSearchPolicy(e)
	require.NoError(t, err)

	// Synchronized identity can never satisfy a Self target.
	ident := directory.NewSynchronized()
	cache := directory.NewResolveFilterCache(4).ReadTxn()

	_, ok := ResolveSearch(context.Background(), ident, p, cache)
	assert.False(t, ok)
}

func TestResolveReceiverGate_NoneNeverMatches(t *testing.T) {
	_, ok := resolveReceiverGate(directory.NewUser(uuid.New(), directory.ScopeReadOnly), Receiver{Kind: ReceiverNone})
	assert.False(t, ok)
}

func TestReceiverMatchesEntry_EntryManager(t *testing.T) {
	manager := uuid.New()
	ident := directory.NewUser(manager, directory.ScopeReadWrite)
	rc := ReceiverCondition{Kind: ReceiverEntryManager}

	managedEntry := directory.NewEntry(uuid.New(), "person").With("entry_managed_by", manager.String())
	assert.True(t, receiverMatchesEntry(ident, rc, managedEntry))

	unmanagedEntry := directory.NewEntry(uuid.New(), "person").With("entry_managed_by", uuid.New().String())
	assert.False(t, receiverMatchesEntry(ident, rc, unmanagedEntry))

	noManagerEntry := directory.NewEntry(uuid.New(), "person")
	assert.False(t, receiverMatchesEntry(ident, rc, noManagerEntry))
}

func TestReceiverMatchesEntry_GroupAlwaysTrueAtEntryStage(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly)
	rc := ReceiverCondition{Kind: ReceiverGroup}
	assert.True(t, receiverMatchesEntry(ident, rc, directory.NewEntry(uuid.New())))
}
