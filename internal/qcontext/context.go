// Package qcontext implements the Context triple of spec.md §3: the
// schema-path + alias-path + current type carried with every cursor.
package qcontext

import "github.com/arborql/arborql/internal/schema"

// attributeScalar backs forFieldOrAttribute's synthetic fallback field: a
// mapping-level pseudo-field with no schema declaration still needs *some*
// leaf type to report, so unresolved names default to this opaque scalar
// rather than failing outright.
var attributeScalar = schema.NewScalar("Attribute", "Synthetic scalar type for mapping-level pseudo-fields with no schema declaration.")

// Context is immutable: every derived Context is a new value. The
// invariant `|path| == |resultPath|` (spec.md §3) is maintained by
// construction — every constructor below that extends path extends
// resultPath by exactly one entry too.
type Context struct {
	path       []string // schema field names, root first, current position last
	resultPath []string // same length, query aliases applied
	tpe        *schema.Type
}

// Root builds the Context for the root cursor of a query against tpe
// (normally the schema's query type).
func Root(tpe *schema.Type) Context {
	return Context{tpe: tpe}
}

func (c Context) Path() []string       { return append([]string(nil), c.path...) }
func (c Context) ResultPath() []string { return append([]string(nil), c.resultPath...) }
func (c Context) Type() *schema.Type   { return c.tpe }

// AsType returns a Context identical to c but for its type — used after a
// cursor narrows (spec.md §4.1's narrow) without taking a further field
// step.
func (c Context) AsType(tpe *schema.Type) Context {
	return Context{path: c.path, resultPath: c.resultPath, tpe: tpe}
}

// ForField extends c by one field step. alias, if non-empty, is used for the
// resultPath entry instead of name. Returns false if name is not a declared
// field of c's current type (unless tpe is nil, in which case there is
// nothing to check against and the step is taken unconditionally — used for
// synthetic root contexts in tests). Nullable layers around c's type are
// unwrapped before the field is looked up.
func (c Context) ForField(name string, alias string) (Context, bool) {
	var fieldType *schema.Type
	if c.tpe != nil {
		owner := c.tpe
		for owner.Kind == schema.NullableKind && owner.Of != nil {
			owner = owner.Of
		}
		ft, ok := owner.UnderlyingField(name)
		if !ok {
			return Context{}, false
		}
		fieldType = ft
	}
	resultName := alias
	if resultName == "" {
		resultName = name
	}
	return Context{
		path:       appendNew(c.path, name),
		resultPath: appendNew(c.resultPath, resultName),
		tpe:        fieldType,
	}, true
}

// ForFieldOrAttribute behaves like ForField but never fails: when name is
// not a declared field of the current type, it falls back to a synthetic
// attribute scalar type so mapping-level pseudo-fields (fields supplied by
// a Mapping's field mapping rather than the schema) still get a usable
// Context (spec.md §3).
func (c Context) ForFieldOrAttribute(name string, alias string) Context {
	if next, ok := c.ForField(name, alias); ok {
		return next
	}
	resultName := alias
	if resultName == "" {
		resultName = name
	}
	return Context{
		path:       appendNew(c.path, name),
		resultPath: appendNew(c.resultPath, resultName),
		tpe:        attributeScalar,
	}
}

// ForPath walks ForField repeatedly; returns false as soon as any step is
// an unknown field.
func (c Context) ForPath(names []string) (Context, bool) {
	cur := c
	for _, n := range names {
		next, ok := cur.ForField(n, "")
		if !ok {
			return Context{}, false
		}
		cur = next
	}
	return cur, true
}

func appendNew(s []string, v string) []string {
	out := make([]string, len(s)+1)
	copy(out, s)
	out[len(s)] = v
	return out
}
