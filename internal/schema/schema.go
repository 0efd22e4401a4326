// Package schema implements the consumed schema surface of spec.md §3/§6: a
// set of named types plus the List/Nullable/TypeRef wrapper kinds, and the
// per-type/per-schema navigation operations the cursor and interpreter rely
// on (underlyingField, underlyingObject, field, path, narrowability).
//
// Unlike the teacher's schema package, which splits a flat Kind+TypeRef
// wrapper pair, arborql's Type is itself a recursive sum type: List and
// Nullable wrap another Type value directly, and TypeRef is a lazy
// forward-reference resolved against the Schema's type table at traversal
// time (spec.md §4.3, runValue's TypeRef case). This mirrors the algebra's
// own tagged-sum design (spec.md §9) rather than the teacher's GraphQL
// introspection-shaped split, because the core must represent exactly the
// handful of kinds spec.md §3 names.
package schema

import "fmt"

// Kind discriminates the variants of Type.
type Kind string

const (
	ScalarKind    Kind = "SCALAR"
	EnumKind      Kind = "ENUM"
	ObjectKind    Kind = "OBJECT"
	InterfaceKind Kind = "INTERFACE"
	UnionKind     Kind = "UNION"
	InputKind     Kind = "INPUT"
	ListKind      Kind = "LIST"
	NullableKind  Kind = "NULLABLE"
	RefKind       Kind = "REF"
)

// Type is the recursive sum type of spec.md §3. Named kinds (Scalar, Enum,
// Object, Interface, Union, Input) carry Name and the fields relevant to
// that kind; List and Nullable wrap Of; Ref is an unresolved forward
// reference carried by Name, resolved via Schema.Resolve.
type Type struct {
	Kind Kind
	Name string
	Of   *Type // element type for List/Nullable

	Description   string
	Fields        []*Field      // Object, Interface
	Interfaces    []string      // Object, Interface: names of implemented interfaces
	PossibleTypes []string      // Interface, Union: names of narrowable member types
	EnumValues    []*EnumValue  // Enum
	InputFields   []*InputValue // Input
}

type Field struct {
	Name              string
	Description       string
	Type              *Type
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name         string
	Description  string
	Type         *Type
	DefaultValue any
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// Constructors. Named types are built directly; List/Nullable/Ref wrap.

func NewScalar(name, desc string) *Type   { return &Type{Kind: ScalarKind, Name: name, Description: desc} }
func NewEnum(name, desc string, vs []*EnumValue) *Type {
	return &Type{Kind: EnumKind, Name: name, Description: desc, EnumValues: vs}
}
func NewObject(name, desc string, fields []*Field, interfaces []string) *Type {
	return &Type{Kind: ObjectKind, Name: name, Description: desc, Fields: fields, Interfaces: interfaces}
}
func NewInterface(name, desc string, fields []*Field, possibleTypes []string) *Type {
	return &Type{Kind: InterfaceKind, Name: name, Description: desc, Fields: fields, PossibleTypes: possibleTypes}
}
func NewUnion(name, desc string, possibleTypes []string) *Type {
	return &Type{Kind: UnionKind, Name: name, Description: desc, PossibleTypes: possibleTypes}
}
func NewInput(name, desc string, fields []*InputValue) *Type {
	return &Type{Kind: InputKind, Name: name, Description: desc, InputFields: fields}
}

func ListOf(of *Type) *Type     { return &Type{Kind: ListKind, Of: of} }
func NullableOf(of *Type) *Type { return &Type{Kind: NullableKind, Of: of} }
func Ref(name string) *Type     { return &Type{Kind: RefKind, Name: name} }

func (t *Type) IsLeaf() bool      { return t != nil && (t.Kind == ScalarKind || t.Kind == EnumKind) }
func (t *Type) IsList() bool      { return t != nil && t.Kind == ListKind }
func (t *Type) IsNullable() bool  { return t != nil && t.Kind == NullableKind }
func (t *Type) IsRef() bool       { return t != nil && t.Kind == RefKind }
func (t *Type) IsObjectLike() bool {
	return t != nil && (t.Kind == ObjectKind || t.Kind == InterfaceKind)
}
func (t *Type) IsAbstract() bool { return t != nil && (t.Kind == InterfaceKind || t.Kind == UnionKind) }

// Field looks up a declared field by name on an Object/Interface type.
// Returns nil if tpe is not object-like or the field is unknown — this is
// the non-optional `field(name)` contract of spec.md §6; callers that need
// the Option<Type> form use UnderlyingField.
func (t *Type) Field(name string) *Field {
	if t == nil {
		return nil
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// UnderlyingField returns the field's declared type and true iff the field
// is declared on t — spec.md §6's `underlyingField(name): Option<Type>`.
func (t *Type) UnderlyingField(name string) (*Type, bool) {
	f := t.Field(name)
	if f == nil {
		return nil, false
	}
	return f.Type, true
}

// UnderlyingObject unwraps List/Nullable layers and returns the innermost
// Object/Interface type, if any — spec.md §6's `underlyingObject`.
func (t *Type) UnderlyingObject() (*Type, bool) {
	cur := t
	for cur != nil && (cur.Kind == ListKind || cur.Kind == NullableKind) {
		cur = cur.Of
	}
	if cur != nil && cur.IsObjectLike() {
		return cur, true
	}
	return nil, false
}

// Path walks a chain of field names starting from t, unwrapping Nullable at
// each step (a missing intermediate is still a valid path — only its cursor
// navigation may come up empty) but never stepping through a List. Returns
// the final field's declared type, or false if any step names an unknown
// field or traverses through a list.
func (t *Type) Path(names []string) (*Type, bool) {
	cur := t
	for _, n := range names {
		for cur != nil && cur.Kind == NullableKind {
			cur = cur.Of
		}
		if cur == nil || cur.Kind == ListKind {
			return nil, false
		}
		next, ok := cur.UnderlyingField(n)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Schema is the validated, consumed schema surface of spec.md §6.
type Schema struct {
	types     map[string]*Type
	order     []string
	queryName string
}

func NewSchema() *Schema {
	return &Schema{types: make(map[string]*Type)}
}

// AddType registers t under its Name, preserving declaration order for
// Types(); later registrations with the same name overwrite earlier ones.
func (s *Schema) AddType(t *Type) *Schema {
	if _, exists := s.types[t.Name]; !exists {
		s.order = append(s.order, t.Name)
	}
	s.types[t.Name] = t
	return s
}

func (s *Schema) SetQueryType(name string) *Schema { s.queryName = name; return s }

// Types returns every named type in declaration order.
func (s *Schema) Types() []*Type {
	out := make([]*Type, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.types[name])
	}
	return out
}

// Lookup returns the named type, if any.
func (s *Schema) Lookup(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// QueryType returns the distinguished root query type, or nil.
func (s *Schema) QueryType() *Type {
	t, _ := s.Lookup(s.queryName)
	return t
}

// Resolve dereferences a Ref node against the type table; any other Type
// variant is returned unchanged. This is spec.md §4.3's
// `schema.types.find(name == _)` step for the interpreter's TypeRef case.
func (s *Schema) Resolve(t *Type) (*Type, error) {
	if t == nil || t.Kind != RefKind {
		return t, nil
	}
	resolved, ok := s.Lookup(t.Name)
	if !ok {
		return nil, fmt.Errorf("unknown type: %s", t.Name)
	}
	return resolved, nil
}

// NarrowsTo reports whether a value typed as fromTypeName may be narrowed to
// toTypeName — true when fromTypeName is an interface/union and
// toTypeName is one of its declared possible types, or trivially when the
// two names are equal (spec.md §3: "Narrowing is defined by interface/union
// membership").
func (s *Schema) NarrowsTo(fromTypeName, toTypeName string) bool {
	if fromTypeName == toTypeName {
		return true
	}
	from, ok := s.Lookup(fromTypeName)
	if !ok || !from.IsAbstract() {
		return false
	}
	for _, p := range from.PossibleTypes {
		if p == toTypeName {
			return true
		}
	}
	return false
}
