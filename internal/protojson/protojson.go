// Package protojson implements the partially-materialized result tree of
// spec.md §3/§4.4: ProtoJson, which may retain deferred holes to be
// completed against other component mappings before it collapses to plain
// JSON.
//
// Grounded on the teacher's response-tree shape (executor.go's
// responseRoot map[string]any plus setValueAtPath), generalized into an
// explicit sum type because the teacher never needed to *retain* a pending
// node past a single BatchResolveAsync call — arborql's two-phase design
// needs the pending shape to survive until a completion pass runs.
package protojson

import (
	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/schema"
)

// ProtoJson is the sum type of spec.md §3.
type ProtoJson interface {
	protoTag() string
}

// PureJson wraps an already-materialized JSON value — no further
// completion is required.
type PureJson struct{ Value cursor.Json }

func (PureJson) protoTag() string { return "PureJson" }

// Null is the pure-json null value, used pervasively enough to warrant a
// shared constant.
var Null = PureJson{Value: nil}

// Deferred is a hole: the named field, rooted at Cursor typed Tpe, with
// continuation Query, awaiting resolution by some Mapping's subobject
// entry (internal/mapping) during completion (spec.md §4.4).
//
// MappingName is set only when a Component algebra node statically named
// its target mapping; when empty, completion resolves the hole by looking
// up Tpe's driving-mapping subobject entry for Name instead (the implicit
// "field not found locally" boundary of spec.md §4.5).
type Deferred struct {
	Cursor      cursor.Cursor
	Tpe         *schema.Type
	Name        string
	Query       query.Query
	MappingName string
}

func (Deferred) protoTag() string { return "Deferred" }

// ProtoField is one (name, value) entry of a ProtoObject, kept as a slice
// (not a map) to preserve emission order per spec.md §5's ordering
// guarantee.
type ProtoField struct {
	Name  string
	Value ProtoJson
}

type ProtoObject struct{ Fields []ProtoField }

func (ProtoObject) protoTag() string { return "ProtoObject" }

type ProtoArray struct{ Elements []ProtoJson }

func (ProtoArray) protoTag() string { return "ProtoArray" }

// FromFields collapses to PureJson when every field's value is already
// PureJson (spec.md §8 law 5), else returns a ProtoObject.
func FromFields(fields []ProtoField) ProtoJson {
	obj := make(map[string]cursor.Json, len(fields))
	for _, f := range fields {
		pj, ok := f.Value.(PureJson)
		if !ok {
			return ProtoObject{Fields: fields}
		}
		obj[f.Name] = pj.Value
	}
	ordered := make(map[string]cursor.Json, len(obj))
	for _, f := range fields {
		ordered[f.Name] = obj[f.Name]
	}
	return PureJson{Value: orderedMap{fields: fields, values: ordered}}
}

// FromValues collapses to PureJson when every element is already PureJson
// (spec.md §8 law 5), else returns a ProtoArray.
func FromValues(values []ProtoJson) ProtoJson {
	out := make([]cursor.Json, len(values))
	for i, v := range values {
		pj, ok := v.(PureJson)
		if !ok {
			return ProtoArray{Elements: values}
		}
		out[i] = pj.Value
	}
	return PureJson{Value: out}
}

// orderedMap is a PureJson payload for an object whose field order must
// survive into final JSON rendering (encoding/json sorts map keys
// alphabetically, which would violate spec.md §5's field-emission-order
// guarantee). internal/response knows how to render it; every other
// consumer can treat it as opaque and call Entries/Get.
type orderedMap struct {
	fields []ProtoField
	values map[string]cursor.Json
}

func (m orderedMap) Entries() []ProtoField { return m.fields }

func (m orderedMap) Get(name string) (cursor.Json, bool) {
	v, ok := m.values[name]
	return v, ok
}

// NewOrderedMap constructs the same ordered-object payload FromFields
// produces, for callers (e.g. introspection) assembling pure JSON objects
// directly without going through ProtoField/ProtoJson plumbing.
func NewOrderedMap(names []string, values []cursor.Json) cursor.Json {
	fields := make([]ProtoField, len(names))
	m := make(map[string]cursor.Json, len(names))
	for i, n := range names {
		fields[i] = ProtoField{Name: n}
		m[n] = values[i]
	}
	return orderedMap{fields: fields, values: m}
}

// OrderedEntries returns (name, value) pairs in emission order if j is an
// ordered-object payload produced by FromFields/NewOrderedMap, else false.
func OrderedEntries(j cursor.Json) ([]string, []cursor.Json, bool) {
	m, ok := j.(orderedMap)
	if !ok {
		return nil, nil, false
	}
	names := make([]string, len(m.fields))
	values := make([]cursor.Json, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
		values[i], _ = m.values[f.Name]
	}
	return names, values, true
}
