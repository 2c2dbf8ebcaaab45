// Package directory defines the data types the access control engine
// evaluates against: entries, identities, and filters. Storage, indexing,
// and replication of these types are external collaborators (see
// QueryInterface); this package only models their shape.
package directory

import "github.com/google/uuid"

// Entry is a directory entry: a UUID, a set of object classes, and a
// multi-valued attribute map. It is the unit every axis of the access
// control engine reasons about.
type Entry struct {
	UUID    uuid.UUID
	Classes map[string]struct{}
	Attrs   map[string][]string
}

// NewEntry builds an Entry with the given UUID and classes.
func NewEntry(id uuid.UUID, classes ...string) *Entry {
	e := &Entry{
		UUID:    id,
		Classes: make(map[string]struct{}, len(classes)),
		Attrs:   make(map[string][]string),
	}
	for _, c := range classes {
		e.Classes[c] = struct{}{}
	}
	return e
}

// HasClass reports whether the entry carries the given object class.
func (e *Entry) HasClass(class string) bool {
	_, ok := e.Classes[class]
	return ok
}

// HasAnyClass reports whether the entry carries any of the given classes.
func (e *Entry) HasAnyClass(classes map[string]struct{}) bool {
	for c := range classes {
		if e.HasClass(c) {
			return true
		}
	}
	return false
}

// Attr returns the values of a multi-valued attribute, and whether it is
// present at all. An attribute set by With with no values is reported as
// present with an empty value list.
func (e *Entry) Attr(name string) ([]string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Single returns the first value of an attribute, for attributes that are
// conventionally single-valued (name, uuid, entry_managed_by, ...).
func (e *Entry) Single(name string) (string, bool) {
	v, ok := e.Attrs[name]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// UUIDAttr parses a single-valued attribute as a UUID.
func (e *Entry) UUIDAttr(name string) (uuid.UUID, bool) {
	v, ok := e.Single(name)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// With sets (replaces) a multi-valued attribute and returns the entry, for
// building fixtures fluently in tests.
func (e *Entry) With(name string, values ...string) *Entry {
	if e.Attrs == nil {
		e.Attrs = make(map[string][]string)
	}
	e.Attrs[name] = values
	return e
}

// AttrNames returns the set of attribute names present on the entry,
// including "class" as a virtual attribute name (used by the create
// applier and by the search reduce guard for internal identities, §4.5/§4.7).
func (e *Entry) AttrNames() map[string]struct{} {
	names := make(map[string]struct{}, len(e.Attrs)+1)
	for k := range e.Attrs {
		names[k] = struct{}{}
	}
	names["class"] = struct{}{}
	return names
}
