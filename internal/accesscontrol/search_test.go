package accesscontrol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kanidm-go/accessd/internal/directory"
)

func matchAllTarget(t *testing.T) directory.ResolvedFilter {
	rf, err := directory.Pres("class").Resolve(directory.NewInternal())
	if err != nil {
		t.Fatal(err)
	}
	return rf
}

func resolvedSearchPolicy(t *testing.T, attrs map[string]struct{}) *ResolvedSearchPolicy {
	return &ResolvedSearchPolicy{
		Policy:   &SearchPolicy{Profile: Profile{Name: "p"}, Attrs: attrs},
		Receiver: ReceiverCondition{Kind: ReceiverGroup},
		Target:   TargetCondition{Filter: matchAllTarget(t)},
	}
}

func TestApplySearch_HiddenClassAlwaysIgnored(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly)
	policies := []*ResolvedSearchPolicy{resolvedSearchPolicy(t, map[string]struct{}{"name": {}})}

	e := directory.NewEntry(uuid.New(), "tombstone")
	res := ApplySearch(ident, policies, e, SearchHookOptions{})
	assert.Equal(t, basicIgnore, res.kind)
}

func TestApplySearch_UnionsAcrossMatchingPolicies(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly)
	p1 := resolvedSearchPolicy(t, map[string]struct{}{"name": {}})
	p2 := resolvedSearchPolicy(t, map[string]struct{}{"mail": {}})

	e := directory.NewEntry(uuid.New(), "person")
	res := ApplySearch(ident, []*ResolvedSearchPolicy{p1, p2}, e, SearchHookOptions{})
	assert.Equal(t, basicGrant, res.kind)
	assert.Contains(t, res.attrs, "name")
	assert.Contains(t, res.attrs, "mail")
}

func TestApplySearch_NoMatchIsIgnore(t *testing.T) {
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly)
	res := ApplySearch(ident, nil, directory.NewEntry(uuid.New(), "person"), SearchHookOptions{})
	assert.Equal(t, basicIgnore, res.kind)
}

func TestApplySearch_OAuth2DynamicReadHook(t *testing.T) {
	group := uuid.New()
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly, group)

	e := directory.NewEntry(uuid.New(), ClassOAuth2RS).
		With(AttrOAuth2RSScopeMapGroup, group.String()).
		With("oauth2_rs_name", "myapp")

	res := ApplySearch(ident, nil, e, SearchHookOptions{OAuth2DynamicRead: true})
	assert.Equal(t, basicGrant, res.kind)
	assert.Contains(t, res.attrs, "oauth2_rs_name")
	assert.Contains(t, res.attrs, "displayname")
}

func TestApplySearch_OAuth2HookDisabledByOption(t *testing.T) {
	group := uuid.New()
	ident := directory.NewUser(uuid.New(), directory.ScopeReadOnly, group)

	e := directory.NewEntry(uuid.New(), ClassOAuth2RS).With(AttrOAuth2RSScopeMapGroup, group.String())
	res := ApplySearch(ident, nil, e, SearchHookOptions{OAuth2DynamicRead: false})
	assert.Equal(t, basicIgnore, res.kind)
}

func TestApplySearch_SyncCredentialPortalHook(t *testing.T) {
	source := uuid.New()
	ident := directory.Identity{Origin: directory.OriginUser, EntryUUID: uuid.New(), SyncParentUUID: source}

	e := directory.NewEntry(source, ClassSyncAccount)
	res := ApplySearch(ident, nil, e, SearchHookOptions{})
	assert.Equal(t, basicGrant, res.kind)
	assert.Contains(t, res.attrs, AttrSyncCredentialPortal)
}
