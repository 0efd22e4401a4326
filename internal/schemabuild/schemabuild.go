// Package schemabuild parses GraphQL SDL into a schema.Schema (spec.md §6)
// using github.com/vektah/gqlparser/v2, the same parser the teacher uses
// for queries (internal/language). Unlike internal/language, which keeps
// gqlparser's own *ast.QueryDocument around as this engine's query AST,
// schemabuild only uses gqlparser to validate and merge SDL — its output is
// immediately translated into arborql's own schema.Type sum type, since
// query elaboration (and therefore any schema-aware type checking) is
// explicitly out of this module's graph per spec.md's non-goals; the only
// consumer of schema.Schema here is introspection and Cursor narrowing.
package schemabuild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/arborql/arborql/internal/schema"
)

// Build parses one or more named SDL documents into a validated
// schema.Schema. gqlparser.LoadSchema merges extensions, resolves directive
// uses against their definitions, and injects the five built-in scalars and
// its own introspection meta-types; the latter are dropped here since
// internal/introspection answers __schema/__type from its own meta-schema,
// not from whatever the SDL happened to declare.
func Build(sources ...*ast.Source) (*schema.Schema, error) {
	doc, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return FromAST(doc)
}

// BuildString is a convenience wrapper for the common single-document case.
func BuildString(name, sdl string) (*schema.Schema, error) {
	return Build(&ast.Source{Name: name, Input: sdl})
}

// FromAST converts an already-parsed, validated gqlparser schema into
// arborql's schema.Schema.
func FromAST(doc *ast.Schema) (*schema.Schema, error) {
	out := schema.NewSchema().WithBuiltins()

	names := make([]string, 0, len(doc.Types))
	for name := range doc.Types {
		if isReserved(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t, err := convertDefinition(doc, doc.Types[name])
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		out = out.AddType(t)
	}
	if doc.Query != nil {
		out = out.SetQueryType(doc.Query.Name)
	}
	resolveRefs(out)
	return out, nil
}

// resolveRefs replaces every schema.RefKind node reachable from a field's,
// argument's, or input field's declared type with the schema's own type
// pointer for that name, recursing through List/Nullable wrappers. Without
// this, a schema built from SDL would hand the cursor/interpreter path
// nothing but unresolved forward references — Cursor.IsLeaf/IsList/
// IsNullable and friends dispatch on Kind directly and never call
// Schema.Resolve themselves, so a Ref left in place reads as neither leaf,
// list, nor nullable and fails traversal outright.
func resolveRefs(s *schema.Schema) {
	for _, t := range s.Types() {
		resolveFieldTypes(s, t.Fields)
		resolveInputValueTypes(s, t.InputFields)
	}
}

func resolveFieldTypes(s *schema.Schema, fields []*schema.Field) {
	for _, f := range fields {
		f.Type = resolveType(s, f.Type)
		resolveInputValueTypes(s, f.Arguments)
	}
}

func resolveInputValueTypes(s *schema.Schema, vals []*schema.InputValue) {
	for _, v := range vals {
		v.Type = resolveType(s, v.Type)
	}
}

// resolveType dereferences t and, recursively, every List/Nullable layer it
// wraps. A name with no matching type is left as an unresolved Ref (schema
// validation already rejected dangling references by the time Build calls
// this, via gqlparser.LoadSchema).
func resolveType(s *schema.Schema, t *schema.Type) *schema.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case schema.RefKind:
		if resolved, ok := s.Lookup(t.Name); ok {
			return resolved
		}
		return t
	case schema.ListKind:
		return schema.ListOf(resolveType(s, t.Of))
	case schema.NullableKind:
		return schema.NullableOf(resolveType(s, t.Of))
	default:
		return t
	}
}

func isReserved(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return strings.HasPrefix(name, "__")
}

func convertDefinition(doc *ast.Schema, def *ast.Definition) (*schema.Type, error) {
	switch def.Kind {
	case ast.Scalar:
		return schema.NewScalar(def.Name, def.Description), nil

	case ast.Object:
		fields, err := convertFields(def.Fields)
		if err != nil {
			return nil, err
		}
		return schema.NewObject(def.Name, def.Description, fields, def.Interfaces), nil

	case ast.Interface:
		fields, err := convertFields(def.Fields)
		if err != nil {
			return nil, err
		}
		return schema.NewInterface(def.Name, def.Description, fields, possibleTypeNames(doc, def.Name)), nil

	case ast.Union:
		return schema.NewUnion(def.Name, def.Description, def.Types), nil

	case ast.Enum:
		return schema.NewEnum(def.Name, def.Description, convertEnumValues(def.EnumValues)), nil

	case ast.InputObject:
		fields, err := convertInputFields(def.Fields)
		if err != nil {
			return nil, err
		}
		return schema.NewInput(def.Name, def.Description, fields), nil

	default:
		return nil, fmt.Errorf("unsupported definition kind: %s", def.Kind)
	}
}

func possibleTypeNames(doc *ast.Schema, ifaceName string) []string {
	defs := doc.PossibleTypes[ifaceName]
	if len(defs) == 0 {
		return nil
	}
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

func convertFields(fields ast.FieldList) ([]*schema.Field, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]*schema.Field, len(fields))
	for i, f := range fields {
		args, err := convertArguments(f.Arguments)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		deprecated, reason := deprecationFromDirectives(f.Directives)
		out[i] = &schema.Field{
			Name:              f.Name,
			Description:       f.Description,
			Type:              convertGQLType(f.Type),
			Arguments:         args,
			IsDeprecated:      deprecated,
			DeprecationReason: reason,
		}
	}
	return out, nil
}

// convertInputFields handles an input object's own fields, which gqlparser
// represents with the same FieldDefinition node as object fields (default
// values live directly on the FieldDefinition rather than under Arguments).
func convertInputFields(fields ast.FieldList) ([]*schema.InputValue, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]*schema.InputValue, len(fields))
	for i, f := range fields {
		def, err := literalValue(f.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("field %s default value: %w", f.Name, err)
		}
		out[i] = &schema.InputValue{
			Name: f.Name, Description: f.Description,
			Type: convertGQLType(f.Type), DefaultValue: def,
		}
	}
	return out, nil
}

func convertArguments(args ast.ArgumentDefinitionList) ([]*schema.InputValue, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]*schema.InputValue, len(args))
	for i, a := range args {
		def, err := literalValue(a.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("argument %s default value: %w", a.Name, err)
		}
		out[i] = &schema.InputValue{
			Name: a.Name, Description: a.Description,
			Type: convertGQLType(a.Type), DefaultValue: def,
		}
	}
	return out, nil
}

func convertEnumValues(vs ast.EnumValueList) []*schema.EnumValue {
	if len(vs) == 0 {
		return nil
	}
	out := make([]*schema.EnumValue, len(vs))
	for i, v := range vs {
		deprecated, reason := deprecationFromDirectives(v.Directives)
		out[i] = &schema.EnumValue{
			Name: v.Name, Description: v.Description,
			IsDeprecated: deprecated, DeprecationReason: reason,
		}
	}
	return out
}

// convertGQLType translates gqlparser's NonNull-is-the-wrapper encoding
// into arborql's Nullable-is-the-wrapper one (schema.go's doc comment on
// Type) — the inverse of internal/introspection's render.go, which
// translates back the other way for __schema/__type.
func convertGQLType(t *ast.Type) *schema.Type {
	var base *schema.Type
	if t.NamedType != "" {
		base = schema.Ref(t.NamedType)
	} else {
		base = schema.ListOf(convertGQLType(t.Elem))
	}
	if t.NonNull {
		return base
	}
	return schema.NullableOf(base)
}

func deprecationFromDirectives(dirs ast.DirectiveList) (bool, string) {
	for _, d := range dirs {
		if d.Name != "deprecated" {
			continue
		}
		reason := "No longer supported"
		for _, arg := range d.Arguments {
			if arg.Name != "reason" {
				continue
			}
			if v, err := literalValue(arg.Value); err == nil {
				if s, ok := v.(string); ok {
					reason = s
				}
			}
		}
		return true, reason
	}
	return false, ""
}

// literalValue evaluates a constant SDL literal (an argument/field default
// value, which can never reference a query variable) into a plain Go value.
func literalValue(v *ast.Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	return v.Value(nil)
}
