// Package interpreter implements the generic two-phase traversal of
// spec.md §4.3/§4.4: runFields/runValue walk a Cursor against a normalized
// query, producing a ProtoJson that may still carry Deferred holes; Complete
// resolves those holes against a Mapping before the result collapses to
// plain JSON.
//
// Grounded on the teacher's executor.go (collectAndExecute/executeSelection-
// Set/completeValue triad), generalized from a single synchronous pass over
// a fixed Runtime into two passes over an abstract Cursor, because spec.md's
// design needs the first pass to survive a Mapping boundary rather than
// resolve it inline.
package interpreter

import (
	"context"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/mapping"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/schema"
)

// Runtime bundles the fixed context every traversal step needs: the schema
// for TypeRef resolution and __typename, the driving Mapping for implicit
// subobject lookups, the registry other Mappings are found in by name for
// explicit Component/Defer boundaries, and an optional Introspect hook.
type Runtime struct {
	Schema     *schema.Schema
	Driving    *mapping.Mapping
	Registry   map[string]*mapping.Mapping
	Introspect func(ctx context.Context, c cursor.Cursor, q query.Query) problem.Result[protojson.ProtoJson]
}

// RunFields evaluates q at an object-typed cursor position, producing the
// field/value pairs of spec.md §4.3's runFields in emission order.
func RunFields(ctx context.Context, rt *Runtime, c cursor.Cursor, q query.Query) problem.Result[[]protojson.ProtoField] {
	switch n := q.(type) {
	case query.Empty, query.Skipped:
		return problem.Success[[]protojson.ProtoField](nil)

	case query.Group:
		return runFieldGroup(ctx, rt, c, n.Queries)
	case query.GroupList:
		return runFieldGroup(ctx, rt, c, n.Queries)

	case query.Select:
		return runSelectField(ctx, rt, c, n)

	case query.Rename:
		if sel, ok := n.Child.(query.Select); ok {
			fr := runSelectField(ctx, rt, c, sel)
			return problem.Map(fr, func(fields []protojson.ProtoField) []protojson.ProtoField {
				return renameSole(fields, n.Name)
			})
		}
		inner := RunFields(ctx, rt, c, n.Child)
		return problem.Map(inner, func(fields []protojson.ProtoField) []protojson.ProtoField {
			return renameSole(fields, n.Name)
		})

	case query.Skip:
		if n.Sense == n.Cond {
			return problem.Success[[]protojson.ProtoField](nil)
		}
		return RunFields(ctx, rt, c, n.Child)

	case query.Environment:
		return RunFields(ctx, rt, cursor.WithEnv(c, n.Bind), n.Child)

	case query.Wrap:
		vr := RunValue(ctx, rt, c, n.Child)
		return problem.Map(vr, func(v protojson.ProtoJson) []protojson.ProtoField {
			return []protojson.ProtoField{{Name: n.Name, Value: v}}
		})

	default:
		return problem.Failure[[]protojson.ProtoField](
			problem.New(problem.BadQuery, "unexpected field-position query shape: %T", q).WithPath(c.Context().ResultPath()),
		)
	}
}

func runFieldGroup(ctx context.Context, rt *Runtime, c cursor.Cursor, qs []query.Query) problem.Result[[]protojson.ProtoField] {
	result := problem.Success[[]protojson.ProtoField](nil)
	for _, child := range qs {
		childFields := RunFields(ctx, rt, c, child)
		result = problem.Both(result, childFields, func(a, b []protojson.ProtoField) []protojson.ProtoField {
			return append(append([]protojson.ProtoField(nil), a...), b...)
		})
	}
	return result
}

func renameSole(fields []protojson.ProtoField, name string) []protojson.ProtoField {
	if len(fields) == 1 {
		fields[0].Name = name
	}
	return fields
}

func argsToEnv(args query.Args) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for _, b := range args {
		out[b.Name] = b.Value
	}
	return out
}

func runSelectField(ctx context.Context, rt *Runtime, c cursor.Cursor, sel query.Select) problem.Result[[]protojson.ProtoField] {
	if sel.Name == "__typename" {
		return problem.Success([]protojson.ProtoField{{
			Name:  "__typename",
			Value: protojson.PureJson{Value: typenameOf(rt, c)},
		}})
	}

	// __schema/__type answer from the schema itself, not from the driving
	// Mapping's data model, so they bypass the normal container-field check
	// entirely; Runtime.Introspect reads the root marker and any arguments
	// (e.g. __type's "name") back off c's Env (see internal/introspection).
	if sel.Name == "__schema" || sel.Name == "__type" {
		if rt.Introspect == nil {
			return problem.Failure[[]protojson.ProtoField](
				problem.New(problem.UnsupportedType, "introspection not wired").WithPath(c.Context().ResultPath()),
			)
		}
		bind := argsToEnv(sel.Args)
		if bind == nil {
			bind = map[string]any{}
		}
		bind["__introspectionRoot"] = sel.Name
		bound := cursor.WithEnv(c, bind)
		vr := rt.Introspect(ctx, bound, sel.Child)
		return problem.Map(vr, func(v protojson.ProtoJson) []protojson.ProtoField {
			return []protojson.ProtoField{{Name: sel.Name, Value: v}}
		})
	}

	containerTpe := c.Context().Type()
	if !cursor.NullableHasField(c, sel.Name) {
		if containerTpe != nil && rt.Driving != nil {
			if _, ok := rt.Driving.Subobject(containerTpe.Name, sel.Name); ok {
				return problem.Success([]protojson.ProtoField{{
					Name: sel.Name,
					Value: protojson.Deferred{
						Cursor: c,
						Tpe:    containerTpe,
						Name:   sel.Name,
						Query:  sel.Child,
					},
				}})
			}
		}
		return problem.Failure[[]protojson.ProtoField](
			problem.New(problem.FieldNotFound, "field not found: %s", sel.Name).WithPath(append(c.Context().ResultPath(), sel.Name)),
		)
	}

	bound := c
	if !sel.Args.IsEmpty() {
		bound = cursor.WithEnv(c, argsToEnv(sel.Args))
	}
	fr := cursor.NullableField(bound, sel.Name, "")
	return problem.Bind(fr, func(fc *cursor.Cursor) problem.Result[[]protojson.ProtoField] {
		if fc == nil {
			return problem.Success([]protojson.ProtoField{{Name: sel.Name, Value: protojson.Null}})
		}
		vr := RunValue(ctx, rt, *fc, sel.Child)
		return problem.Map(vr, func(v protojson.ProtoJson) []protojson.ProtoField {
			return []protojson.ProtoField{{Name: sel.Name, Value: v}}
		})
	})
}

func typenameOf(rt *Runtime, c cursor.Cursor) cursor.Json {
	t := c.Context().Type()
	if t == nil {
		return nil
	}
	if rt.Schema == nil {
		return t.Name
	}
	resolved, err := rt.Schema.Resolve(t)
	if err != nil || resolved == nil {
		return t.Name
	}
	if resolved.Kind == schema.ObjectKind {
		return resolved.Name
	}
	for _, candidate := range resolved.PossibleTypes {
		if c.NarrowsTo(candidate) {
			return candidate
		}
	}
	return resolved.Name
}

// RunValue evaluates q at an arbitrary cursor position — spec.md §4.3's
// runValue, dispatching on the cursor's own shape (nullable/list/leaf/
// object) as well as q's node kind.
func RunValue(ctx context.Context, rt *Runtime, c cursor.Cursor, q query.Query) problem.Result[protojson.ProtoJson] {
	if c.IsNullable() {
		nr := c.AsNullable()
		return problem.Bind(nr, func(next *cursor.Cursor) problem.Result[protojson.ProtoJson] {
			if next == nil {
				return problem.Success[protojson.ProtoJson](protojson.Null)
			}
			return RunValue(ctx, rt, *next, q)
		})
	}

	switch n := q.(type) {
	case query.Unique:
		return runUnique(ctx, rt, c, n)

	case query.Count:
		return runCount(c, n)

	case query.GroupList:
		results := make([]problem.Result[protojson.ProtoJson], len(n.Queries))
		for i, sub := range n.Queries {
			results[i] = RunValue(ctx, rt, c, sub)
		}
		seq := problem.Sequence(results)
		return problem.Map(seq, func(vs []protojson.ProtoJson) protojson.ProtoJson { return protojson.FromValues(vs) })

	case query.Narrow:
		nr := c.Narrow(n.SubType)
		return problem.Bind(nr, func(nc cursor.Cursor) problem.Result[protojson.ProtoJson] {
			return RunValue(ctx, rt, nc, n.Child)
		})

	case query.UntypedNarrow:
		return problem.Failure[protojson.ProtoJson](
			problem.New(problem.BadQuery, "unelaborated narrow: %s", n.Name).WithPath(c.Context().ResultPath()),
		)

	case query.Environment:
		return RunValue(ctx, rt, cursor.WithEnv(c, n.Bind), n.Child)

	case query.Skip:
		if n.Sense == n.Cond {
			return problem.Success[protojson.ProtoJson](protojson.Null)
		}
		return RunValue(ctx, rt, c, n.Child)

	case query.Defer:
		return runDefer(rt, c, n)

	case query.Component:
		return runComponent(c, n)

	case query.Wrap:
		vr := RunValue(ctx, rt, c, n.Child)
		return problem.Map(vr, func(v protojson.ProtoJson) protojson.ProtoJson {
			return protojson.FromFields([]protojson.ProtoField{{Name: n.Name, Value: v}})
		})

	case query.Introspect:
		if rt.Introspect == nil {
			return problem.Failure[protojson.ProtoJson](
				problem.New(problem.UnsupportedType, "introspection not wired").WithPath(c.Context().ResultPath()),
			)
		}
		return rt.Introspect(ctx, c, n.Child)

	case query.Empty, query.Skipped:
		if c.IsLeaf() {
			return leafValue(c)
		}
		return problem.Failure[protojson.ProtoJson](
			problem.New(problem.BadQuery, "empty selection on non-leaf type").WithPath(c.Context().ResultPath()),
		)
	}

	if c.IsList() {
		return runListValue(ctx, rt, c, q)
	}
	if c.IsLeaf() {
		return leafValue(c)
	}
	fr := RunFields(ctx, rt, c, q)
	return problem.Map(fr, func(fields []protojson.ProtoField) protojson.ProtoJson {
		return protojson.FromFields(fields)
	})
}

func leafValue(c cursor.Cursor) problem.Result[protojson.ProtoJson] {
	lr := c.AsLeaf()
	return problem.Map(lr, func(v cursor.Json) protojson.ProtoJson { return protojson.PureJson{Value: v} })
}

func runDefer(rt *Runtime, c cursor.Cursor, n query.Defer) problem.Result[protojson.ProtoJson] {
	jr := n.Join(c, n.Child)
	return problem.Map(jr, func(jq query.Query) protojson.ProtoJson {
		mappingName := ""
		if rt.Driving != nil {
			mappingName = rt.Driving.Name
		}
		tpe := c.Context().Type()
		if rt.Schema != nil {
			if declared, ok := rt.Schema.Lookup(n.RootTpe); ok {
				tpe = declared
			}
		}
		return protojson.Deferred{Cursor: c, Tpe: tpe, Query: jq, MappingName: mappingName}
	})
}

func runComponent(c cursor.Cursor, n query.Component) problem.Result[protojson.ProtoJson] {
	jr := n.Join(c, n.Child)
	return problem.Map(jr, func(jq query.Query) protojson.ProtoJson {
		return protojson.Deferred{Cursor: c, Tpe: c.Context().Type(), Query: jq, MappingName: n.Mapping}
	})
}

func runCount(c cursor.Cursor, n query.Count) problem.Result[protojson.ProtoJson] {
	shape := query.MatchFilterOrderByLimit(n.Child)
	lr := c.AsList()
	return problem.Bind(lr, func(elems []cursor.Cursor) problem.Result[protojson.ProtoJson] {
		elems = applyShape(elems, shape)
		return problem.Success[protojson.ProtoJson](protojson.FromFields([]protojson.ProtoField{
			{Name: n.Name, Value: protojson.PureJson{Value: float64(len(elems))}},
		}))
	})
}

func runUnique(ctx context.Context, rt *Runtime, c cursor.Cursor, n query.Unique) problem.Result[protojson.ProtoJson] {
	shape := query.MatchFilterOrderByLimit(n.Child)
	lr := c.AsList()
	return problem.Bind(lr, func(elems []cursor.Cursor) problem.Result[protojson.ProtoJson] {
		elems = applyShape(elems, shape)
		switch len(elems) {
		case 0:
			return problem.Success[protojson.ProtoJson](protojson.Null)
		case 1:
			return RunValue(ctx, rt, elems[0], shape.Underlying)
		default:
			return problem.Failure[protojson.ProtoJson](
				problem.New(problem.TooManyResults, "expected at most one result, got %d", len(elems)).WithPath(c.Context().ResultPath()),
			)
		}
	})
}

func runListValue(ctx context.Context, rt *Runtime, c cursor.Cursor, q query.Query) problem.Result[protojson.ProtoJson] {
	shape := query.MatchFilterOrderByLimit(q)
	lr := c.AsList()
	return problem.Bind(lr, func(elems []cursor.Cursor) problem.Result[protojson.ProtoJson] {
		elems = applyShape(elems, shape)
		results := make([]problem.Result[protojson.ProtoJson], len(elems))
		for i, e := range elems {
			results[i] = RunValue(ctx, rt, e, shape.Underlying)
		}
		seq := problem.Sequence(results)
		return problem.Map(seq, func(vs []protojson.ProtoJson) protojson.ProtoJson { return protojson.FromValues(vs) })
	})
}
