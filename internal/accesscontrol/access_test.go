package accesscontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccess_Variants(t *testing.T) {
	assert.True(t, AccessDeny().IsDeny())
	assert.True(t, AccessGrant().IsGrant())

	attrs := map[string]struct{}{"mail": {}}
	a := AccessAllow(attrs)
	assert.False(t, a.IsDeny())
	assert.False(t, a.IsGrant())

	got, ok := a.Attrs()
	require.True(t, ok)
	assert.Equal(t, attrs, got)

	_, ok = AccessDeny().Attrs()
	assert.False(t, ok)
}

func TestAccessClass_Variants(t *testing.T) {
	assert.True(t, AccessClassDeny().IsDeny())
	assert.True(t, AccessClassGrant().IsGrant())

	classes := map[string]struct{}{"locked": {}}
	c := AccessClassAllow(classes)
	got, ok := c.Classes()
	require.True(t, ok)
	assert.Equal(t, classes, got)
}

func TestUnionInto(t *testing.T) {
	dst := map[string]struct{}{"a": {}}
	unionInto(dst, map[string]struct{}{"b": {}, "c": {}})
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}, "c": {}}, dst)
}

func TestSubsetOf(t *testing.T) {
	allowed := map[string]struct{}{"a": {}, "b": {}}
	assert.True(t, subsetOf(map[string]struct{}{"a": {}}, allowed))
	assert.True(t, subsetOf(map[string]struct{}{}, allowed))
	assert.False(t, subsetOf(map[string]struct{}{"c": {}}, allowed))
}
