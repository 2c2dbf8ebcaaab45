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

func TestEffectivePermissionCheck_InternalRejected(t *testing.T) {
	_, err := EffectivePermissionCheck(context.Background(), directory.NewInternal(), nil, nil, nil, nil, nil, SearchHookOptions{}, nil)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestEffectivePermissionCheck_SynchronizedRejected(t *testing.T) {
	_, err := EffectivePermissionCheck(context.Background(), directory.NewSynchronized(), nil, nil, nil, nil, nil, SearchHookOptions{}, nil)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestEffectivePermissionCheck_AssemblesRecord(t *testing.T) {
	group := uuid.New()
	searchPolicy, err := ParseSearchPolicy(searchPolicyEntry(group))
	require.NoError(t, err)
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly, group)
	cache := directory.NewResolveFilterCache(4).ReadTxn()

	e := directory.NewEntry(uuid.New(), "person").With("name", "alice")
	eps, err := EffectivePermissionCheck(context.Background(), ident, []*SearchPolicy{searchPolicy}, nil, nil, cache, []*directory.Entry{e}, SearchHookOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, eps, 1)

	ep := eps[0]
	assert.Equal(t, e.UUID, ep.Target)
	assert.False(t, ep.Search.IsDeny())
	attrs, ok := ep.Search.Attrs()
	require.True(t, ok)
	assert.Contains(t, attrs, "name")

	assert.True(t, ep.ModifyPres.IsDeny(), "no modify policy was supplied, so modify axes must deny")
	assert.False(t, ep.Delete, "no delete policy was supplied")
}

func TestEffectivePermissionCheck_SystemProtectedDeniesModify(t *testing.T) {
	group := uuid.New()
	modifyEntry := directory.NewEntry(uuid.New(), ClassACProfile, ClassACPModify).
		With("name", "m").
		With(AttrACPReceiverGroup, group.String()).
		With(AttrACPTargetScope, "Pres(class)").
		With(AttrACPModifyPresentAttr, "mail")
	modifyPolicy, err := ParseModifyPolicy(modifyEntry)
	require.NoError(t, err)

	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly, group)
	cache := directory.NewResolveFilterCache(4).ReadTxn()

	var protectedUUID uuid.UUID
	e := directory.NewEntry(protectedUUID, "system")

	eps, err := EffectivePermissionCheck(context.Background(), ident, nil, []*ModifyPolicy{modifyPolicy}, nil, cache, []*directory.Entry{e}, SearchHookOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.True(t, eps[0].ModifyPres.IsDeny())
}
