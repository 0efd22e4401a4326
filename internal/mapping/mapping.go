// Package mapping implements the boundary between sub-engines (spec.md
// §3/§4.5): a Mapping exposes object-to-interpreter bindings; a Component
// algebra node marks where execution hands off to another interpreter.
//
// Grounded on the teacher's Runtime interface (internal/executor/runtime.go)
// as the shape of "a thing that knows how to resolve a GraphQL type", but
// split along spec.md's ObjectMapping/FieldMapping/Subobject lines rather
// than the teacher's single flat ResolveSync/BatchResolveAsync surface,
// because the core needs to answer "who owns field F of type T" as a
// static lookup (subobject) before it ever resolves a value.
package mapping

import (
	"context"

	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/query"
)

// Interpreter is the abstract `runRootValue` of spec.md §4.3/§9: every
// sub-engine (in-memory, gRPC-fronted, relational) implements it to turn a
// root query into a ProtoJson, keeping its own effects (I/O, cross-process
// calls) out of the primary traversal.
type Interpreter interface {
	RunRootValue(ctx context.Context, q query.Query) problem.Result[protojson.ProtoJson]
}

// FieldMapping is either a plain attribute/field mapping (the field is
// resolved by the owning cursor itself; Subobject is nil) or a Subobject
// entry marking a cross-component boundary.
type FieldMapping struct {
	FieldName string
	Subobject *Subobject
}

func (f FieldMapping) IsSubobject() bool { return f.Subobject != nil }

// Subobject names the sub-mapping a Component boundary hands off to, and
// the Joiner used to compute its subquery (spec.md §4.3/§4.5).
type Subobject struct {
	MappingName string
	Join        query.Joiner
}

// ObjectMapping binds one GraphQL type name to an Interpreter and its field
// mappings.
type ObjectMapping struct {
	TypeName     string
	Interpreter  Interpreter
	FieldMapping []FieldMapping
}

func (om *ObjectMapping) fieldMapping(name string) (FieldMapping, bool) {
	for _, fm := range om.FieldMapping {
		if fm.FieldName == name {
			return fm, true
		}
	}
	return FieldMapping{}, false
}

// Mapping is a named, ordered collection of ObjectMappings. Declaration
// order matters: the ambiguity rule of spec.md §4.5 says the first matching
// ObjectMapping for a type wins.
//
// RootInterpreter is the entry point invoked when some other mapping's
// Component/Subobject boundary hands off execution to this one (spec.md
// §4.3's "runRootValue, specialized per interpreter"); it is distinct from
// the per-type Interpreter an ObjectMapping uses while traversing its own
// data model, since a Component boundary targets a Mapping, not a type.
type Mapping struct {
	Name            string
	Objects         []*ObjectMapping
	RootInterpreter Interpreter
	byType          map[string]*ObjectMapping
}

func New(name string, root Interpreter, objects ...*ObjectMapping) *Mapping {
	m := &Mapping{Name: name, Objects: objects, RootInterpreter: root, byType: make(map[string]*ObjectMapping)}
	for _, om := range objects {
		if _, exists := m.byType[om.TypeName]; !exists {
			m.byType[om.TypeName] = om
		}
	}
	return m
}

// ObjectMappingFor returns the first-declared ObjectMapping for typeName,
// per the ambiguity rule.
func (m *Mapping) ObjectMappingFor(typeName string) (*ObjectMapping, bool) {
	om, ok := m.byType[typeName]
	return om, ok
}

// Subobject returns the Subobject field mapping for (typeName, fieldName),
// if the named ObjectMapping declares one — spec.md §4.5's
// `subobject(tpe, fieldName)`.
func (m *Mapping) Subobject(typeName, fieldName string) (Subobject, bool) {
	om, ok := m.ObjectMappingFor(typeName)
	if !ok {
		return Subobject{}, false
	}
	fm, ok := om.fieldMapping(fieldName)
	if !ok || !fm.IsSubobject() {
		return Subobject{}, false
	}
	return *fm.Subobject, true
}

// InterpreterFor returns the registered Interpreter for typeName, if any.
func (m *Mapping) InterpreterFor(typeName string) (Interpreter, bool) {
	om, ok := m.ObjectMappingFor(typeName)
	if !ok {
		return nil, false
	}
	return om.Interpreter, true
}
