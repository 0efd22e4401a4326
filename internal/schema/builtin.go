package schema

// Builtin scalar types, grounded on the teacher's internal/schema/builtin.go
// constants (same names, same descriptions) minus the directive definitions
// — directive recognition (@skip/@include) is a property of the query
// algebra's Skip node, resolved during elaboration before the core ever
// sees a query (spec.md §6's input contract), so schema-level Directive
// values have no consumer here.

var (
	StringType  = NewScalar("String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences.")
	IntType     = NewScalar("Int", "The `Int` scalar type represents non-fractional signed whole numeric values.")
	FloatType   = NewScalar("Float", "The `Float` scalar type represents signed double-precision fractional values.")
	BooleanType = NewScalar("Boolean", "The `Boolean` scalar type represents `true` or `false`.")
	IDType      = NewScalar("ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.")
)

// WithBuiltins registers the standard scalars on s and returns s.
func (s *Schema) WithBuiltins() *Schema {
	return s.AddType(StringType).AddType(IntType).AddType(FloatType).AddType(BooleanType).AddType(IDType)
}
