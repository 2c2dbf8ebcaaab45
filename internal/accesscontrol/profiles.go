package accesscontrol

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kanidm-go/accessd/internal/directory"
)

// Field names are normative (§6): these are the attributes a policy entry
// carries.
const (
	AttrACPReceiverGroup     = "acp_receiver_group"
	AttrACPTargetScope       = "acp_target_scope"
	AttrACPSearchAttr        = "acp_search_attr"
	AttrACPModifyPresentAttr  = "acp_modify_present_attr"
	AttrACPModifyRemovedAttr  = "acp_modify_removed_attr"
	AttrACPModifyPresentClass = "acp_modify_present_class"
	AttrACPModifyRemovedClass = "acp_modify_removed_class"
	AttrACPCreateAttr        = "acp_create_attr"
	AttrACPCreateClass       = "acp_create_class"

	ClassACProfile         = "access_control_profile"
	ClassACPSearch         = "access_control_search"
	ClassACPCreate         = "access_control_create"
	ClassACPModify         = "access_control_modify"
	ClassACPDelete         = "access_control_delete"
	ClassACPReceiverManager = "access_control_receiver_entry_manager"
)

// ReceiverKind tags which variant a Receiver is (§3 Profile).
type ReceiverKind int

const (
	ReceiverNone ReceiverKind = iota
	ReceiverGroup
	ReceiverEntryManager
)

// Receiver is "who this policy applies to" (§3).
type Receiver struct {
	Kind   ReceiverKind
	Groups map[uuid.UUID]struct{} // only meaningful for ReceiverGroup
}

// TargetKind tags which variant a Target is (§3 Profile).
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetScope
)

// Target is "what entries this policy applies over" (§3).
type Target struct {
	Kind   TargetKind
	Filter directory.Filter // only meaningful for TargetScope
}

// Profile is the common header of every policy kind (§3, §4.1).
type Profile struct {
	Name     string
	UUID     uuid.UUID
	Receiver Receiver
	Target   Target
}

func parseProfile(e *directory.Entry) (Profile, error) {
	if !e.HasClass(ClassACProfile) {
		return Profile{}, &PolicyInvalidError{Details: "entry does not carry access_control_profile"}
	}
	name, ok := e.Single("name")
	if !ok || name == "" {
		return Profile{}, &PolicyInvalidError{Details: "missing name"}
	}

	receiver, err := parseReceiver(e)
	if err != nil {
		return Profile{}, err
	}

	scopeStr, ok := e.Single(AttrACPTargetScope)
	if !ok || scopeStr == "" {
		return Profile{}, &PolicyInvalidError{Details: "missing acp_target_scope"}
	}
	f, err := directory.ParseFilterString(scopeStr)
	if err != nil {
		return Profile{}, &PolicyInvalidError{Details: fmt.Sprintf("invalid acp_target_scope: %v", err)}
	}

	return Profile{
		Name:     name,
		UUID:     e.UUID,
		Receiver: receiver,
		Target:   Target{Kind: TargetScope, Filter: f},
	}, nil
}

func parseReceiver(e *directory.Entry) (Receiver, error) {
	groupVals, hasGroups := e.Attr(AttrACPReceiverGroup)
	isManager := e.HasClass(ClassACPReceiverManager)

	switch {
	case hasGroups && len(groupVals) > 0:
		groups := make(map[uuid.UUID]struct{}, len(groupVals))
		for _, v := range groupVals {
			id, err := uuid.Parse(v)
			if err != nil {
				return Receiver{}, &PolicyInvalidError{Details: fmt.Sprintf("invalid acp_receiver_group value %q", v)}
			}
			groups[id] = struct{}{}
		}
		return Receiver{Kind: ReceiverGroup, Groups: groups}, nil
	case isManager:
		return Receiver{Kind: ReceiverEntryManager}, nil
	default:
		return Receiver{}, &PolicyInvalidError{Details: "missing acp_receiver_group or entry_managed_by receiver class"}
	}
}

func attrSet(e *directory.Entry, name string) map[string]struct{} {
	vals, _ := e.Attr(name)
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}

// SearchPolicy is an access_control_search policy (§3, §4.1).
type SearchPolicy struct {
	Profile Profile
	Attrs   map[string]struct{}
}

// ParseSearchPolicy parses a policy entry classed access_control_search.
func ParseSearchPolicy(e *directory.Entry) (*SearchPolicy, error) {
	if !e.HasClass(ClassACPSearch) {
		return nil, &PolicyInvalidError{Details: "entry does not carry access_control_search"}
	}
	profile, err := parseProfile(e)
	if err != nil {
		return nil, err
	}
	attrs := attrSet(e, AttrACPSearchAttr)
	if len(attrs) == 0 {
		return nil, &PolicyInvalidError{Details: "missing acp_search_attr"}
	}
	return &SearchPolicy{Profile: profile, Attrs: attrs}, nil
}

// CreatePolicy is an access_control_create policy (§3, §4.1).
type CreatePolicy struct {
	Profile Profile
	Classes map[string]struct{}
	Attrs   map[string]struct{}
}

// ParseCreatePolicy parses a policy entry classed access_control_create.
func ParseCreatePolicy(e *directory.Entry) (*CreatePolicy, error) {
	if !e.HasClass(ClassACPCreate) {
		return nil, &PolicyInvalidError{Details: "entry does not carry access_control_create"}
	}
	profile, err := parseProfile(e)
	if err != nil {
		return nil, err
	}
	classes := attrSet(e, AttrACPCreateClass)
	attrs := attrSet(e, AttrACPCreateAttr)
	if len(classes) == 0 && len(attrs) == 0 {
		return nil, &PolicyInvalidError{Details: "missing acp_create_attr and acp_create_class"}
	}
	return &CreatePolicy{Profile: profile, Classes: classes, Attrs: attrs}, nil
}

// ModifyPolicy is an access_control_modify policy (§3, §4.1).
type ModifyPolicy struct {
	Profile        Profile
	PresentAttrs   map[string]struct{}
	RemoveAttrs    map[string]struct{}
	PresentClasses map[string]struct{}
	RemoveClasses  map[string]struct{}
}

// ParseModifyPolicy parses a policy entry classed access_control_modify.
func ParseModifyPolicy(e *directory.Entry) (*ModifyPolicy, error) {
	if !e.HasClass(ClassACPModify) {
		return nil, &PolicyInvalidError{Details: "entry does not carry access_control_modify"}
	}
	profile, err := parseProfile(e)
	if err != nil {
		return nil, err
	}
	_, hasPresent := e.Attr(AttrACPModifyPresentAttr)
	_, hasRemove := e.Attr(AttrACPModifyRemovedAttr)
	_, hasPresentClass := e.Attr(AttrACPModifyPresentClass)
	_, hasRemoveClass := e.Attr(AttrACPModifyRemovedClass)
	if !hasPresent && !hasRemove && !hasPresentClass && !hasRemoveClass {
		return nil, &PolicyInvalidError{Details: "missing acp_modify_present_attr, acp_modify_removed_attr, acp_modify_present_class/acp_modify_removed_class"}
	}
	return &ModifyPolicy{
		Profile:        profile,
		PresentAttrs:   attrSet(e, AttrACPModifyPresentAttr),
		RemoveAttrs:    attrSet(e, AttrACPModifyRemovedAttr),
		PresentClasses: attrSet(e, AttrACPModifyPresentClass),
		RemoveClasses:  attrSet(e, AttrACPModifyRemovedClass),
	}, nil
}

// DeletePolicy is an access_control_delete policy; it carries no fields
// beyond the profile (§3, §4.1).
type DeletePolicy struct {
	Profile Profile
}

// ParseDeletePolicy parses a policy entry classed access_control_delete.
func ParseDeletePolicy(e *directory.Entry) (*DeletePolicy, error) {
	if !e.HasClass(ClassACPDelete) {
		return nil, &PolicyInvalidError{Details: "entry does not carry access_control_delete"}
	}
	profile, err := parseProfile(e)
	if err != nil {
		return nil, err
	}
	return &DeletePolicy{Profile: profile}, nil
}
