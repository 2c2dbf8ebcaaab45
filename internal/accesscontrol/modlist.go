package accesscontrol

// ModKind enumerates the modify-list operation types (§4.4).
type ModKind int

const (
	ModPresent ModKind = iota
	ModRemoved
	ModPurged
	ModSet
)

// Modify is a single operation in a modify request's modlist.
type Modify struct {
	Kind   ModKind
	Attr   string
	Values []string
}

func Present(attr string, values ...string) Modify { return Modify{Kind: ModPresent, Attr: attr, Values: values} }
func Removed(attr string, values ...string) Modify { return Modify{Kind: ModRemoved, Attr: attr, Values: values} }
func Purged(attr string) Modify                    { return Modify{Kind: ModPurged, Attr: attr} }
func Set(attr string, values ...string) Modify      { return Modify{Kind: ModSet, Attr: attr, Values: values} }

// ModList is the modlist of a modify request.
type ModList []Modify

// PurgesClass reports whether the modlist purges the class attribute,
// which is an unconditional deny regardless of policy (§4.4).
func (ml ModList) PurgesClass() bool {
	for _, m := range ml {
		if m.Kind == ModPurged && m.Attr == "class" {
			return true
		}
	}
	return false
}

// replicationMaskClasses are the class values a modify must never be
// allowed to present directly: both mark an entry's replication lifecycle
// state, which only the recycle/revive/purge-tombstone state machine may
// transition (§4.11).
var replicationMaskClasses = map[string]struct{}{
	"recycled":  {},
	"tombstone": {},
}

// MasksReplicationState reports whether the modlist presents a recycled or
// tombstone class value, which would bypass the replication state machine
// instead of going through it (§4.11).
func (ml ModList) MasksReplicationState() bool {
	for _, m := range ml {
		if m.Attr != "class" {
			continue
		}
		if m.Kind != ModPresent && m.Kind != ModSet {
			continue
		}
		for _, v := range m.Values {
			if _, ok := replicationMaskClasses[v]; ok {
				return true
			}
		}
	}
	return false
}

// RequestedAttrSets derives the present/removed attribute sets a modlist
// requests (class is skipped here; see RequestedClassSets), per the
// guard-layer comparison rules of §4.4: Set
// contributes to both present and removed, Purged is removed-all (so it
// contributes the attribute name to "removed" without needing to know the
// existing values).
func (ml ModList) RequestedAttrSets() (presAttr, remAttr map[string]struct{}) {
	presAttr = map[string]struct{}{}
	remAttr = map[string]struct{}{}
	for _, m := range ml {
		if m.Attr == "class" {
			continue
		}
		switch m.Kind {
		case ModPresent:
			presAttr[m.Attr] = struct{}{}
		case ModRemoved:
			remAttr[m.Attr] = struct{}{}
		case ModPurged:
			remAttr[m.Attr] = struct{}{}
		case ModSet:
			presAttr[m.Attr] = struct{}{}
			remAttr[m.Attr] = struct{}{}
		}
	}
	return presAttr, remAttr
}

// RequestedClassSets derives the present/removed class-value sets a modlist
// requests via the class attribute (§4.4, §9 Open Question (a): Set(class,
// vs) is treated as contributing to both present and removed). Purged(class)
// adds nothing to either set; it is denied outright via PurgesClass.
func (ml ModList) RequestedClassSets() (presClass, remClass map[string]struct{}) {
	presClass = map[string]struct{}{}
	remClass = map[string]struct{}{}
	for _, m := range ml {
		if m.Attr != "class" {
			continue
		}
		switch m.Kind {
		case ModPresent:
			for _, v := range m.Values {
				presClass[v] = struct{}{}
			}
		case ModRemoved:
			for _, v := range m.Values {
				remClass[v] = struct{}{}
			}
		case ModSet:
			for _, v := range m.Values {
				presClass[v] = struct{}{}
				remClass[v] = struct{}{}
			}
		}
	}
	return presClass, remClass
}
