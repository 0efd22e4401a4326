package introspection

import "github.com/arborql/arborql/internal/schema"

// metaSchema describes the Go viewmodel structs in views.go as their own
// schema.Type graph, so internal/valuemapping's reflection Cursor can
// dispatch IsLeaf/IsList/IsNullable/Field correctly while walking them. It
// is built once and reused for every __schema/__type evaluation.
//
// Types are allocated up front and wired together afterward since several
// of them (notably __Type) are mutually/self-recursive — schema.Ref exists
// for exactly this shape elsewhere in the engine, but Ref resolution needs a
// Schema threaded through qcontext navigation that valuemapping's Cursor
// does not carry; allocating the pointers first and filling Fields in after
// sidesteps that without requiring it.
func buildMetaSchema() *schema.Schema {
	typeKind := schema.NewEnum("__TypeKind", "", []*schema.EnumValue{
		{Name: "SCALAR"}, {Name: "OBJECT"}, {Name: "INTERFACE"}, {Name: "UNION"},
		{Name: "ENUM"}, {Name: "INPUT_OBJECT"}, {Name: "LIST"}, {Name: "NON_NULL"},
	})
	directiveLocation := schema.NewEnum("__DirectiveLocation", "", []*schema.EnumValue{
		{Name: "QUERY"}, {Name: "MUTATION"}, {Name: "SUBSCRIPTION"}, {Name: "FIELD"},
		{Name: "FRAGMENT_DEFINITION"}, {Name: "FRAGMENT_SPREAD"}, {Name: "INLINE_FRAGMENT"},
		{Name: "SCHEMA"}, {Name: "SCALAR"}, {Name: "OBJECT"}, {Name: "FIELD_DEFINITION"},
		{Name: "ARGUMENT_DEFINITION"}, {Name: "INTERFACE"}, {Name: "UNION"}, {Name: "ENUM"},
		{Name: "ENUM_VALUE"}, {Name: "INPUT_OBJECT"}, {Name: "INPUT_FIELD_DEFINITION"},
	})

	typeT := &schema.Type{Kind: schema.ObjectKind, Name: "__Type"}
	fieldT := &schema.Type{Kind: schema.ObjectKind, Name: "__Field"}
	inputValueT := &schema.Type{Kind: schema.ObjectKind, Name: "__InputValue"}
	enumValueT := &schema.Type{Kind: schema.ObjectKind, Name: "__EnumValue"}
	directiveT := &schema.Type{Kind: schema.ObjectKind, Name: "__Directive"}
	schemaT := &schema.Type{Kind: schema.ObjectKind, Name: "__Schema"}

	str := schema.StringType
	boolT := schema.BooleanType
	nullableStr := schema.NullableOf(str)

	typeT.Fields = []*schema.Field{
		{Name: "kind", Type: typeKind},
		{Name: "name", Type: nullableStr},
		{Name: "description", Type: nullableStr},
		{Name: "fields", Type: schema.NullableOf(schema.ListOf(fieldT))},
		{Name: "interfaces", Type: schema.NullableOf(schema.ListOf(typeT))},
		{Name: "possibleTypes", Type: schema.NullableOf(schema.ListOf(typeT))},
		{Name: "enumValues", Type: schema.NullableOf(schema.ListOf(enumValueT))},
		{Name: "inputFields", Type: schema.NullableOf(schema.ListOf(inputValueT))},
		{Name: "ofType", Type: schema.NullableOf(typeT)},
	}
	fieldT.Fields = []*schema.Field{
		{Name: "name", Type: str},
		{Name: "description", Type: nullableStr},
		{Name: "args", Type: schema.ListOf(inputValueT)},
		{Name: "type", Type: typeT},
		{Name: "isDeprecated", Type: boolT},
		{Name: "deprecationReason", Type: nullableStr},
	}
	inputValueT.Fields = []*schema.Field{
		{Name: "name", Type: str},
		{Name: "description", Type: nullableStr},
		{Name: "type", Type: typeT},
		{Name: "defaultValue", Type: nullableStr},
	}
	enumValueT.Fields = []*schema.Field{
		{Name: "name", Type: str},
		{Name: "description", Type: nullableStr},
		{Name: "isDeprecated", Type: boolT},
		{Name: "deprecationReason", Type: nullableStr},
	}
	directiveT.Fields = []*schema.Field{
		{Name: "name", Type: str},
		{Name: "description", Type: nullableStr},
		{Name: "locations", Type: schema.ListOf(directiveLocation)},
		{Name: "args", Type: schema.ListOf(inputValueT)},
	}
	schemaT.Fields = []*schema.Field{
		{Name: "types", Type: schema.ListOf(typeT)},
		{Name: "queryType", Type: typeT},
		{Name: "mutationType", Type: schema.NullableOf(typeT)},
		{Name: "subscriptionType", Type: schema.NullableOf(typeT)},
		{Name: "directives", Type: schema.ListOf(directiveT)},
		{Name: "description", Type: nullableStr},
	}

	return schema.NewSchema().WithBuiltins().
		AddType(typeKind).AddType(directiveLocation).
		AddType(typeT).AddType(fieldT).AddType(inputValueT).
		AddType(enumValueT).AddType(directiveT).AddType(schemaT)
}
