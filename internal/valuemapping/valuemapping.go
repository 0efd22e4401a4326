// Package valuemapping implements the "in-memory values" sub-engine
// spec.md §1 names alongside a gRPC-fronted one (internal/grpcmapping): a
// reflection-driven Cursor over plain Go values, and an Interpreter that
// resolves named root fields to those values.
//
// Grounded on the teacher's internal/executor/runtime_mock.go, the only
// place in the pack that resolves GraphQL fields against plain in-process
// Go data rather than a parsed AST/IR or a gRPC call — generalized from its
// fixed per-test field table into a reusable reflect-based Cursor because
// spec.md §4.1 requires a real polymorphic Cursor, not a mock resolver.
package valuemapping

import (
	"context"
	"reflect"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/env"
	"github.com/arborql/arborql/internal/interpreter"
	"github.com/arborql/arborql/internal/mapping"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/qcontext"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/schema"
)

// Cursor is a reflection-driven Cursor over plain Go values: structs
// (exported fields matched against GraphQL field names, case-insensitive
// on the first letter), map[string]any, slices/arrays, and pointers (as
// the Nullable wrapper).
type Cursor struct {
	ctx       qcontext.Context
	focus     any
	parent    cursor.Cursor
	hasParent bool
	frame     env.Env
	schema    *schema.Schema
}

// Root constructs the root cursor for value at tpe, consulting sch (which
// may be nil) for narrowing lookups.
func Root(value any, tpe *schema.Type, sch *schema.Schema) cursor.Cursor {
	return Cursor{ctx: qcontext.Root(tpe), focus: value, schema: sch}
}

func (c Cursor) Context() qcontext.Context { return c.ctx }
func (c Cursor) Focus() any                { return c.focus }
func (c Cursor) Env() env.Env              { return c.frame }

func (c Cursor) Parent() (cursor.Cursor, bool) {
	if !c.hasParent {
		return nil, false
	}
	return c.parent, true
}

func (c Cursor) IsLeaf() bool     { return c.ctx.Type().IsLeaf() }
func (c Cursor) IsList() bool     { return c.ctx.Type().IsList() }
func (c Cursor) IsNullable() bool { return c.ctx.Type().IsNullable() }
func (c Cursor) IsNull() bool     { return isNilValue(c.focus) }

func (c Cursor) HasField(name string) bool {
	_, ok := lookupField(c.focus, name)
	return ok
}

// NarrowsTo defers to the schema's interface/union membership table when
// one is attached, else falls back to name equality — enough for fixtures
// that never narrow, while still consulting the schema when it is wired.
func (c Cursor) NarrowsTo(subType string) bool {
	t := c.ctx.Type()
	if t == nil {
		return false
	}
	if c.schema != nil {
		return c.schema.NarrowsTo(t.Name, subType)
	}
	return t.Name == subType
}

func (c Cursor) AsLeaf() problem.Result[cursor.Json] {
	if !c.IsLeaf() {
		return problem.Failure[cursor.Json](c.mismatch("asLeaf"))
	}
	return problem.Success[cursor.Json](c.focus)
}

func (c Cursor) AsList() problem.Result[[]cursor.Cursor] {
	if !c.IsList() {
		return problem.Failure[[]cursor.Cursor](c.mismatch("asList"))
	}
	rv := reflect.ValueOf(c.focus)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return problem.Success[[]cursor.Cursor](nil)
	}
	elemTpe := c.ctx.Type().Of
	out := make([]cursor.Cursor, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = Cursor{
			ctx:       c.ctx.AsType(elemTpe),
			focus:     rv.Index(i).Interface(),
			parent:    c,
			hasParent: true,
			schema:    c.schema,
		}
	}
	return problem.Success(out)
}

func (c Cursor) AsNullable() problem.Result[*cursor.Cursor] {
	if !c.IsNullable() {
		return problem.Failure[*cursor.Cursor](c.mismatch("asNullable"))
	}
	if isNilValue(c.focus) {
		return problem.Success[*cursor.Cursor](nil)
	}
	var ic cursor.Cursor = Cursor{
		ctx:       c.ctx.AsType(c.ctx.Type().Of),
		focus:     unwrapPointer(c.focus),
		parent:    c,
		hasParent: true,
		schema:    c.schema,
	}
	return problem.Success(&ic)
}

func (c Cursor) Narrow(subType string) problem.Result[cursor.Cursor] {
	if !c.NarrowsTo(subType) {
		return problem.Failure[cursor.Cursor](
			problem.New(problem.NarrowingFailed, "cannot narrow %s to %s", c.ctx.Type().Name, subType).WithPath(c.ctx.ResultPath()),
		)
	}
	tpe := c.ctx.Type()
	if c.schema != nil {
		if declared, ok := c.schema.Lookup(subType); ok {
			tpe = declared
		}
	}
	return problem.Success[cursor.Cursor](Cursor{
		ctx: c.ctx.AsType(tpe), focus: c.focus, parent: c.parent, hasParent: c.hasParent, schema: c.schema, frame: c.frame,
	})
}

func (c Cursor) Field(name, alias string) problem.Result[cursor.Cursor] {
	value, ok := lookupField(c.focus, name)
	if !ok {
		return problem.Failure[cursor.Cursor](
			problem.New(problem.FieldNotFound, "field not found: %s", name).WithPath(c.ctx.ResultPath()),
		)
	}
	nextCtx := c.ctx.ForFieldOrAttribute(name, alias)
	return problem.Success[cursor.Cursor](Cursor{
		ctx: nextCtx, focus: value, parent: c, hasParent: true, schema: c.schema,
	})
}

func (c Cursor) mismatch(op string) problem.Problem {
	return problem.New(problem.TypeMismatch, "%s is not valid at type %v", op, c.ctx.Type()).WithPath(c.ctx.ResultPath())
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func unwrapPointer(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		return rv.Elem().Interface()
	}
	return v
}

// lookupField resolves a GraphQL field name against a Go value: a
// map[string]any by key, or a struct (after unwrapping pointers/
// interfaces) by exported field name, matched exactly or with its first
// letter lower-cased (Title -> title).
func lookupField(focus any, name string) (any, bool) {
	if focus == nil {
		return nil, false
	}
	if m, ok := focus.(map[string]any); ok {
		v, ok := m[name]
		return v, ok
	}
	rv := reflect.ValueOf(focus)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name == name || lowerFirst(f.Name) == name {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] - 'A' + 'a'
	}
	return string(r)
}

// RootField binds one root-level field name to the schema type of its
// result and a resolver turning that field's arguments into a Go value (or
// nil) to build a Cursor over.
type RootField struct {
	Name    string
	Type    *schema.Type
	Resolve func(args query.Args) (any, problem.Problems)
}

// Interpreter is a mapping.Interpreter backed by in-memory Go values.
//
// Mapping and Registry are filled in after construction: WireMapping
// builds the Mapping this interpreter serves as RootInterpreter for (a
// Mapping's root interpreter necessarily references the Mapping back), and
// Registry — every Mapping in a deployment, keyed by name — is assigned
// once all of them exist, since spec.md §4.3/§4.5's Component boundaries
// are resolved by name against exactly this table.
type Interpreter struct {
	Schema   *schema.Schema
	Fields   []RootField
	Mapping  *mapping.Mapping
	Registry map[string]*mapping.Mapping
}

// WireMapping builds this interpreter's owning Mapping under name and
// assigns it back to i.Mapping.
func (i *Interpreter) WireMapping(name string, objects ...*mapping.ObjectMapping) *mapping.Mapping {
	m := mapping.New(name, i, objects...)
	i.Mapping = m
	return m
}

func (i *Interpreter) field(name string) (RootField, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return RootField{}, false
}

// RunRootValue implements mapping.Interpreter (spec.md §4.3's abstract
// runRootValue): q must be a Select or Rename(Select) naming one of
// i.Fields; its argument binding resolves the root value, and its
// sub-selection runs against a fresh root Cursor over that value, whose
// context path already holds the root field's step.
func (i *Interpreter) RunRootValue(ctx context.Context, q query.Query) problem.Result[protojson.ProtoJson] {
	sel, resultName, ok := query.AsPossiblyRenamedSelect(q)
	if !ok {
		return problem.Failure[protojson.ProtoJson](
			problem.New(problem.BadQuery, "valuemapping root query must be a field selection, got %T", q),
		)
	}
	field, ok := i.field(sel.Name)
	if !ok {
		return problem.Failure[protojson.ProtoJson](problem.New(problem.FieldNotFound, "unknown root field: %s", sel.Name))
	}
	value, errs := field.Resolve(sel.Args)
	if len(errs) > 0 {
		return problem.FailureChain[protojson.ProtoJson](errs)
	}
	rootCtx, _ := qcontext.Root(nil).ForField(sel.Name, resultName)
	root := Cursor{ctx: rootCtx.AsType(field.Type), focus: value, schema: i.Schema}
	rt := &interpreter.Runtime{Schema: i.Schema, Driving: i.Mapping, Registry: i.Registry}
	return interpreter.RunValue(ctx, rt, root, sel.Child)
}
