package introspection

import "github.com/arborql/arborql/internal/schema"

// renderer turns arborql schema.Type/Schema values into the introspection
// views of views.go.
//
// arborql's internal Type (spec.md §3) marks nullability by explicit
// NullableKind wrapping — a bare Type is non-null. Standard GraphQL
// introspection is the mirror image: a bare __Type is nullable, and NON_NULL
// is the explicit wrapper. renderType/renderBare perform that inversion:
// renderType always produces the GraphQL-visible shape (wrapping in
// NON_NULL unless t is itself a NullableKind), while renderBare produces the
// "assume already unwrapped" shape used both as NON_NULL's ofType and as a
// NullableKind's own unwrapped content.
type renderer struct {
	sch *schema.Schema
}

func renderType(sch *schema.Schema, t *schema.Type) *typeView {
	r := renderer{sch: sch}
	return r.renderType(t)
}

func (r renderer) renderType(t *schema.Type) *typeView {
	if t == nil {
		return nil
	}
	if t.Kind == schema.NullableKind {
		return r.renderBare(t.Of)
	}
	return &typeView{Kind: "NON_NULL", OfType: r.renderBare(t)}
}

func (r renderer) renderBare(t *schema.Type) *typeView {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case schema.NullableKind:
		return r.renderBare(t.Of)
	case schema.RefKind:
		if resolved, ok := r.sch.Lookup(t.Name); ok {
			return r.renderBare(resolved)
		}
		return &typeView{Kind: "SCALAR", Name: strPtr(t.Name)}
	case schema.ListKind:
		return &typeView{Kind: "LIST", OfType: r.renderType(t.Of)}
	case schema.ScalarKind:
		return &typeView{Kind: "SCALAR", Name: strPtr(t.Name), Description: strPtr(t.Description)}
	case schema.EnumKind:
		return &typeView{
			Kind: "ENUM", Name: strPtr(t.Name), Description: strPtr(t.Description),
			EnumValues: r.renderEnumValues(t.EnumValues),
		}
	case schema.ObjectKind:
		return &typeView{
			Kind: "OBJECT", Name: strPtr(t.Name), Description: strPtr(t.Description),
			Fields:     r.renderFields(t.Fields),
			Interfaces: r.renderNamedTypes(t.Interfaces),
		}
	case schema.InterfaceKind:
		return &typeView{
			Kind: "INTERFACE", Name: strPtr(t.Name), Description: strPtr(t.Description),
			Fields:        r.renderFields(t.Fields),
			PossibleTypes: r.renderNamedTypes(t.PossibleTypes),
		}
	case schema.UnionKind:
		return &typeView{
			Kind: "UNION", Name: strPtr(t.Name), Description: strPtr(t.Description),
			PossibleTypes: r.renderNamedTypes(t.PossibleTypes),
		}
	case schema.InputKind:
		return &typeView{
			Kind: "INPUT_OBJECT", Name: strPtr(t.Name), Description: strPtr(t.Description),
			InputFields: r.renderInputValues(t.InputFields),
		}
	default:
		return &typeView{Kind: string(t.Kind), Name: strPtr(t.Name)}
	}
}

func (r renderer) renderNamedTypes(names []string) []*typeView {
	if len(names) == 0 {
		return nil
	}
	out := make([]*typeView, 0, len(names))
	for _, n := range names {
		if t, ok := r.sch.Lookup(n); ok {
			out = append(out, r.renderBare(t))
		}
	}
	return out
}

func (r renderer) renderFields(fields []*schema.Field) []*fieldView {
	if len(fields) == 0 {
		return nil
	}
	out := make([]*fieldView, len(fields))
	for i, f := range fields {
		out[i] = &fieldView{
			Name: f.Name, Description: strPtr(f.Description),
			Args:              r.renderInputValues(f.Arguments),
			Type:              r.renderType(f.Type),
			IsDeprecated:      f.IsDeprecated,
			DeprecationReason: deprecationPtr(f.IsDeprecated, f.DeprecationReason),
		}
	}
	return out
}

func (r renderer) renderInputValues(vs []*schema.InputValue) []*inputValueView {
	if len(vs) == 0 {
		return nil
	}
	out := make([]*inputValueView, len(vs))
	for i, v := range vs {
		var def *string
		if v.DefaultValue != nil {
			def = strPtr(renderLiteral(v.DefaultValue))
		}
		out[i] = &inputValueView{
			Name: v.Name, Description: strPtr(v.Description),
			Type: r.renderType(v.Type), DefaultValue: def,
		}
	}
	return out
}

func (r renderer) renderEnumValues(vs []*schema.EnumValue) []*enumValueView {
	if len(vs) == 0 {
		return nil
	}
	out := make([]*enumValueView, len(vs))
	for i, v := range vs {
		out[i] = &enumValueView{
			Name: v.Name, Description: strPtr(v.Description),
			IsDeprecated: v.IsDeprecated, DeprecationReason: deprecationPtr(v.IsDeprecated, v.DeprecationReason),
		}
	}
	return out
}

// renderLiteral renders an argument default value for __InputValue's
// defaultValue field, which the GraphQL spec defines as the value's GraphQL
// literal syntax rendered as a string; %v is a reasonable stand-in since
// this engine has no argument-coercion/AST layer of its own to re-render
// through (query elaboration is explicitly out of this module's graph).
func renderLiteral(v any) string {
	return toLiteral(v)
}

// renderBareType renders t's own declared kind (e.g. the result of
// `__type(name: "Foo")`), not wrapped as a field-position NON_NULL the way
// renderType would if Foo were referenced as a non-null field type.
func renderBareType(sch *schema.Schema, t *schema.Type) *typeView {
	return renderer{sch: sch}.renderBare(t)
}

func renderSchema(sch *schema.Schema) *schemaView {
	r := renderer{sch: sch}
	types := make([]*typeView, 0, len(sch.Types()))
	for _, t := range sch.Types() {
		types = append(types, r.renderBare(t))
	}
	view := &schemaView{Types: types}
	if qt := sch.QueryType(); qt != nil {
		view.QueryType = r.renderBare(qt)
	}
	return view
}
