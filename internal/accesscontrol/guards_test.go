package accesscontrol

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanidm-go/accessd/internal/directory"
)

func TestSearchFilterEntries_InternalBypass(t *testing.T) {
	entries := []*directory.Entry{directory.NewEntry(uuid.New(), "person")}
	out, err := SearchFilterEntries(context.Background(), directory.NewInternal(), directory.Pres("class"), nil, nil, entries, SearchHookOptions{})
	require.NoError(t, err)
	assert.Equal(t, entries, out)
}

func TestSearchFilterEntries_SynchronizedIsInvalidState(t *testing.T) {
	_, err := SearchFilterEntries(context.Background(), directory.NewSynchronized(), directory.Pres("class"), nil, nil, nil, SearchHookOptions{})
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestSearchFilterEntries_DropsEntryMissingFilterAttr(t *testing.T) {
	group := uuid.New()
	policy, err := ParseSearchPolicy(searchPolicyEntry(group))
	require.NoError(t, err)
	// acp_search_attr covers name/displayname, not mail.
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly, group)
	cache := directory.NewResolveFilterCache(4).ReadTxn()

	visible := directory.NewEntry(uuid.New(), "person").With("name", "alice")
	res, err := SearchFilterEntries(context.Background(), ident, directory.Pres("name"), []*SearchPolicy{policy}, cache, []*directory.Entry{visible}, SearchHookOptions{})
	require.NoError(t, err)
	assert.Len(t, res, 1)

	hiddenByFilterAttr := directory.NewEntry(uuid.New(), "person").With("mail", "a@b.com")
	res, err = SearchFilterEntries(context.Background(), ident, directory.Pres("mail"), []*SearchPolicy{policy}, cache, []*directory.Entry{hiddenByFilterAttr}, SearchHookOptions{})
	require.NoError(t, err)
	assert.Empty(t, res, "filter references an attr the policy does not allow reading, so the entry must be dropped")
}

func TestModifyAllowOperation_InternalBypass(t *testing.T) {
	ok, err := ModifyAllowOperation(context.Background(), directory.NewInternal(), nil, nil, []*directory.Entry{directory.NewEntry(uuid.New())}, ModList{Present("mail")}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestModifyAllowOperation_EmptyRequestErrors(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadWrite)
	_, err := ModifyAllowOperation(context.Background(), ident, nil, nil, []*directory.Entry{directory.NewEntry(uuid.New())}, nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyRequest))
}

func TestModifyAllowOperation_NoMatchingEntriesErrors(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadWrite)
	_, err := ModifyAllowOperation(context.Background(), ident, nil, nil, nil, ModList{Present("mail")}, nil)
	assert.True(t, errors.Is(err, ErrNoMatchingEntries))
}

func TestCreateAllowOperation_InternalBypass(t *testing.T) {
	ok, err := CreateAllowOperation(context.Background(), directory.NewInternal(), nil, nil, []*directory.Entry{directory.NewEntry(uuid.New())})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteAllowOperation_InternalBypass(t *testing.T) {
	ok, err := DeleteAllowOperation(context.Background(), directory.NewInternal(), nil, nil, []*directory.Entry{directory.NewEntry(uuid.New())})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestModifyAllowOperation_ReplicationMaskIsAccessDenied(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadWrite)
	entries := []*directory.Entry{directory.NewEntry(uuid.New(), "person")}

	_, err := ModifyAllowOperation(context.Background(), ident, nil, nil, entries, ModList{Present("class", "recycled")}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAccessDenied))
	assert.Contains(t, err.Error(), "bypass replication state machine")
}

func TestBatchModifyAllowOperation_ReplicationMaskIsAccessDenied(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadWrite)
	e := directory.NewEntry(uuid.New(), "person")

	_, err := BatchModifyAllowOperation(context.Background(), ident, nil, nil, []*directory.Entry{e}, map[string]ModList{
		e.UUID.String(): {Present("class", "tombstone")},
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAccessDenied))
}

func TestBatchModifyAllowOperation_MissingEntryInBatchFails(t *testing.T) {
	user := directory.NewUser(uuid.New(), directory.ScopeReadWrite)
	e1 := directory.NewEntry(uuid.New(), "person")
	e2 := directory.NewEntry(uuid.New(), "person")

	ok, err := BatchModifyAllowOperation(context.Background(), user, nil, nil, []*directory.Entry{e1, e2}, map[string]ModList{
		e1.UUID.String(): {Present("mail", "a@b.com")},
	}, nil)
	require.NoError(t, err)
	assert.False(t, ok, "e2 has no entry in the batch map, so the whole operation must fail")
}

func TestProjectEntry_ExcludesClassAndFiltersToRequested(t *testing.T) {
	e := directory.NewEntry(uuid.New(), "person").With("mail", "a@b.com").With("name", "alice")
	out := projectEntry(e, map[string]struct{}{"mail": {}, "class": {}})
	assert.Contains(t, out, "mail")
	assert.NotContains(t, out, "class")
	assert.NotContains(t, out, "name")
}

func TestAttrsOverlap(t *testing.T) {
	assert.True(t, attrsOverlap(map[string]struct{}{"a": {}}, map[string]struct{}{"a": {}, "b": {}}))
	assert.False(t, attrsOverlap(map[string]struct{}{"a": {}}, map[string]struct{}{"b": {}}))
	assert.False(t, attrsOverlap(nil, map[string]struct{}{"b": {}}))
}
