package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterString_Eq(t *testing.T) {
	f, err := ParseFilterString("Eq(class,person)")
	require.NoError(t, err)
	assert.Equal(t, Eq("class", "person"), f)
}

func TestParseFilterString_Pres(t *testing.T) {
	f, err := ParseFilterString("Pres(displayname)")
	require.NoError(t, err)
	assert.Equal(t, Pres("displayname"), f)
}

func TestParseFilterString_SelfUUID(t *testing.T) {
	f, err := ParseFilterString("SelfUUID")
	require.NoError(t, err)
	assert.Equal(t, SelfUUID(), f)
}

func TestParseFilterString_EqSelf(t *testing.T) {
	f, err := ParseFilterString("EqSelf(entry_managed_by)")
	require.NoError(t, err)
	assert.Equal(t, EqSelf("entry_managed_by"), f)
}

func TestParseFilterString_Nested(t *testing.T) {
	f, err := ParseFilterString("And(Eq(class,person),Or(Pres(displayname),EqSelf(entry_managed_by)))")
	require.NoError(t, err)
	assert.Equal(t, KindAnd, f.Kind)
	require.Len(t, f.Sub, 2)
	assert.Equal(t, Eq("class", "person"), f.Sub[0])
	assert.Equal(t, KindOr, f.Sub[1].Kind)
}

func TestParseFilterString_Not(t *testing.T) {
	f, err := ParseFilterString("Not(Eq(class,tombstone))")
	require.NoError(t, err)
	assert.Equal(t, Not(Eq("class", "tombstone")), f)
}

func TestParseFilterString_TrailingGarbageErrors(t *testing.T) {
	_, err := ParseFilterString("Pres(displayname)garbage")
	assert.Error(t, err)
}

func TestParseFilterString_UnknownNodeErrors(t *testing.T) {
	_, err := ParseFilterString("Bogus(foo)")
	assert.Error(t, err)
}

func TestParseFilterString_UnbalancedParensErrors(t *testing.T) {
	_, err := ParseFilterString("Eq(class,person")
	assert.Error(t, err)
}
