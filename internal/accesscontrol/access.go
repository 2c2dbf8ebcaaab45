package accesscontrol

import "github.com/google/uuid"

// accessKind tags the variant of an Access/AccessClass value. Grant is
// unbounded allow, reserved for internal bypass and effective-permission
// reporting of internal actors; real policy never emits it (§3 invariant).
type accessKind int

const (
	accessDeny accessKind = iota
	accessGrant
	accessAllow
)

// Access is the search/modify-attribute decision shape: deny, grant
// (unbounded), or allow a specific attribute set (§3 AccessEffectivePermission,
// original_source access/mod.rs `enum Access`).
type Access struct {
	kind  accessKind
	attrs map[string]struct{}
}

func AccessDeny() Access  { return Access{kind: accessDeny} }
func AccessGrant() Access { return Access{kind: accessGrant} }
func AccessAllow(attrs map[string]struct{}) Access {
	return Access{kind: accessAllow, attrs: attrs}
}

func (a Access) IsDeny() bool  { return a.kind == accessDeny }
func (a Access) IsGrant() bool { return a.kind == accessGrant }

// Attrs returns the allowed attribute set and whether this is an Allow
// variant at all (Deny/Grant return ok=false).
func (a Access) Attrs() (map[string]struct{}, bool) {
	if a.kind != accessAllow {
		return nil, false
	}
	return a.attrs, true
}

// AccessClass is the modify-class decision shape: deny, grant, or allow a
// specific set of class names. Kept as a distinct type from Access because
// modify-class decisions never carry attribute sets (§9 design notes).
type AccessClass struct {
	kind    accessKind
	classes map[string]struct{}
}

func AccessClassDeny() AccessClass  { return AccessClass{kind: accessDeny} }
func AccessClassGrant() AccessClass { return AccessClass{kind: accessGrant} }
func AccessClassAllow(classes map[string]struct{}) AccessClass {
	return AccessClass{kind: accessAllow, classes: classes}
}

func (a AccessClass) IsDeny() bool  { return a.kind == accessDeny }
func (a AccessClass) IsGrant() bool { return a.kind == accessGrant }

func (a AccessClass) Classes() (map[string]struct{}, bool) {
	if a.kind != accessAllow {
		return nil, false
	}
	return a.classes, true
}

// AccessEffectivePermission is the per (identity, entry) introspection
// record the effective-permission reporter produces (§4.8, §3).
type AccessEffectivePermission struct {
	Ident  uuid.UUID
	Target uuid.UUID

	Search Access

	ModifyPres Access
	ModifyRem  Access

	ModifyPresClass AccessClass
	ModifyRemClass  AccessClass

	Delete bool
}

// basicResult is the three-state decision shared by create/delete (§3
// "State Machines", original_source `enum AccessBasicResult`).
type basicResult int

const (
	basicIgnore basicResult = iota
	basicGrant
	basicDeny
)

// srchResult is the search applier's own three-state decision, carrying an
// allowed-attribute set on Allow (§4.3, original_source `enum AccessSrchResult`).
type srchResult struct {
	kind  basicResult
	attrs map[string]struct{}
}

func srchIgnore() srchResult { return srchResult{kind: basicIgnore} }
func srchAllow(attrs map[string]struct{}) srchResult {
	return srchResult{kind: basicGrant, attrs: attrs}
}

// modResult is the modify applier's own decision shape: Ignore, Deny, or
// Allow with four constrained sets (§4.4, original_source `enum AccessModResult`).
type modResult struct {
	kind               basicResult
	presAttr, remAttr  map[string]struct{}
	presClass, remClass map[string]struct{}
}

func modIgnore() modResult { return modResult{kind: basicIgnore} }
func modDeny() modResult   { return modResult{kind: basicDeny} }
func modAllow(presAttr, remAttr, presClass, remClass map[string]struct{}) modResult {
	return modResult{kind: basicGrant, presAttr: presAttr, remAttr: remAttr, presClass: presClass, remClass: remClass}
}

func unionInto(dst map[string]struct{}, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}

func subsetOf(requested, allowed map[string]struct{}) bool {
	for k := range requested {
		if _, ok := allowed[k]; !ok {
			return false
		}
	}
	return true
}
