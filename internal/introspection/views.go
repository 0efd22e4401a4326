// Package introspection implements spec.md's `__schema`/`__type` meta-fields
// as a Runtime.Introspect hook (internal/interpreter): it builds ordinary Go
// values shaped like the standard GraphQL introspection types, describes
// those shapes with their own small schema.Schema, and walks them with
// internal/valuemapping's reflection Cursor plus internal/interpreter's own
// RunValue — introspection is just another in-memory data source, not a
// special-cased code path through the rest of the engine.
//
// Grounded on the teacher's internal/introspection/schema.go for the field
// catalogue of __Schema/__Type/__Field/__InputValue/__EnumValue/__Directive/
// __TypeKind, adapted to arborql's schema.Type model.
package introspection

import (
	"fmt"
	"strconv"
)

// typeView, schemaView etc. are plain Go structs matching the standard
// GraphQL introspection field names (lower-camel via valuemapping's field
// matcher). Pointer fields are GraphQL-nullable; slice fields are
// GraphQL-nullable lists (nil means null, not empty).
type schemaView struct {
	Types            []*typeView
	QueryType        *typeView
	MutationType     *typeView
	SubscriptionType *typeView
	Directives       []*directiveView
	Description      *string
}

type typeView struct {
	Kind          string
	Name          *string
	Description   *string
	Fields        []*fieldView
	Interfaces    []*typeView
	PossibleTypes []*typeView
	EnumValues    []*enumValueView
	InputFields   []*inputValueView
	OfType        *typeView
}

type fieldView struct {
	Name              string
	Description       *string
	Args              []*inputValueView
	Type              *typeView
	IsDeprecated      bool
	DeprecationReason *string
}

type inputValueView struct {
	Name         string
	Description  *string
	Type         *typeView
	DefaultValue *string
}

type enumValueView struct {
	Name              string
	Description       *string
	IsDeprecated      bool
	DeprecationReason *string
}

type directiveView struct {
	Name        string
	Description *string
	Locations   []string
	Args        []*inputValueView
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deprecationPtr(deprecated bool, reason string) *string {
	if !deprecated {
		return nil
	}
	return strPtr(reason)
}

// toLiteral renders a decoded default-value into its GraphQL-literal text.
func toLiteral(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case bool, int, int32, int64, float32, float64:
		return fmt.Sprintf("%v", x)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", x)
	}
}
