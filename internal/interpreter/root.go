package interpreter

import (
	"context"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/env"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/qcontext"
	"github.com/arborql/arborql/internal/query"
)

// RunRoot is spec.md §4.3's runRoot: shape-matches the top-level query down
// to its constituent field selections (a bare Select/Rename(Select), or a
// Group of several — the latter generalizes the spec's single-field base
// case to the multi-root-field, multi-component query of spec.md §8
// scenario 4; see SPEC_FULL.md's open-question decisions), delegates each
// to its interpreter's runRootValue, completes the merged ProtoJson against
// the driving Mapping, and returns the assembled root object.
func RunRoot(ctx context.Context, rt *Runtime, q query.Query) problem.Result[cursor.Json] {
	proto := runRootProto(ctx, rt, q)
	return problem.Bind(proto, func(p protojson.ProtoJson) problem.Result[cursor.Json] {
		return Complete(ctx, rt, p)
	})
}

func runRootProto(ctx context.Context, rt *Runtime, q query.Query) problem.Result[protojson.ProtoJson] {
	fields := runRootFields(ctx, rt, q)
	return problem.Map(fields, func(fs []protojson.ProtoField) protojson.ProtoJson { return protojson.FromFields(fs) })
}

func runRootFields(ctx context.Context, rt *Runtime, q query.Query) problem.Result[[]protojson.ProtoField] {
	switch n := q.(type) {
	case query.Empty, query.Skipped:
		return problem.Success[[]protojson.ProtoField](nil)

	case query.Group:
		result := problem.Success[[]protojson.ProtoField](nil)
		for _, child := range n.Queries {
			cf := runRootFields(ctx, rt, child)
			result = problem.Both(result, cf, func(a, b []protojson.ProtoField) []protojson.ProtoField {
				return append(append([]protojson.ProtoField(nil), a...), b...)
			})
		}
		return result

	case query.Component:
		name, ok := rootFieldName(n.Child)
		if !ok {
			return problem.Failure[[]protojson.ProtoField](problem.New(problem.BadQuery, "component boundary has no named field"))
		}
		jr := n.Join(rootEnvCursor{}, n.Child)
		return problem.Map(jr, func(jq query.Query) []protojson.ProtoField {
			return []protojson.ProtoField{{
				Name:  name,
				Value: protojson.Deferred{Name: name, Query: jq, MappingName: n.Mapping},
			}}
		})

	case query.Defer:
		name, ok := rootFieldName(n.Child)
		if !ok {
			return problem.Failure[[]protojson.ProtoField](problem.New(problem.BadQuery, "deferred root selection has no named field"))
		}
		jr := n.Join(rootEnvCursor{}, n.Child)
		mappingName := ""
		if rt.Driving != nil {
			mappingName = rt.Driving.Name
		}
		return problem.Map(jr, func(jq query.Query) []protojson.ProtoField {
			return []protojson.ProtoField{{
				Name:  name,
				Value: protojson.Deferred{Name: name, Query: jq, MappingName: mappingName},
			}}
		})

	default:
		if sel, _, ok := query.AsPossiblyRenamedSelect(q); ok && (sel.Name == "__schema" || sel.Name == "__type") {
			return runRootIntrospect(ctx, rt, sel)
		}

		name, ok := rootFieldName(q)
		if !ok {
			return problem.Failure[[]protojson.ProtoField](
				problem.New(problem.BadQuery, "root query must be a field selection, got %T", q),
			)
		}
		if rt.Driving == nil || rt.Driving.RootInterpreter == nil {
			return problem.Failure[[]protojson.ProtoField](problem.New(problem.BadQuery, "no root interpreter configured"))
		}
		vr := rt.Driving.RootInterpreter.RunRootValue(ctx, q)
		return problem.Map(vr, func(v protojson.ProtoJson) []protojson.ProtoField {
			return []protojson.ProtoField{{Name: name, Value: v}}
		})
	}
}

// runRootIntrospect handles a top-level __schema/__type selection the same
// way runSelectField handles one nested under an object — bypassing any
// Mapping entirely, since schema metadata has no data-model owner.
func runRootIntrospect(ctx context.Context, rt *Runtime, sel query.Select) problem.Result[[]protojson.ProtoField] {
	if rt.Introspect == nil {
		return problem.Failure[[]protojson.ProtoField](problem.New(problem.BadQuery, "introspection not wired"))
	}
	bind := map[string]any{"__introspectionRoot": sel.Name}
	for _, b := range sel.Args {
		bind[b.Name] = b.Value
	}
	bound := cursor.WithEnv(rootEnvCursor{}, bind)
	vr := rt.Introspect(ctx, bound, sel.Child)
	return problem.Map(vr, func(v protojson.ProtoJson) []protojson.ProtoField {
		return []protojson.ProtoField{{Name: sel.Name, Value: v}}
	})
}

// rootEnvCursor is a placeholder Cursor for the true query root, where no
// data-model cursor exists yet (introspection at the root has no Mapping to
// project from). Only Env()/Parent() are ever exercised — cursor.EnvLookup
// walks exactly those two — so the rest of the Cursor surface is left
// unimplemented on purpose.
type rootEnvCursor struct{}

func (rootEnvCursor) Context() qcontext.Context              { return qcontext.Root(nil) }
func (rootEnvCursor) Focus() any                             { return nil }
func (rootEnvCursor) Parent() (cursor.Cursor, bool)           { return nil, false }
func (rootEnvCursor) Env() env.Env                            { return env.Empty() }
func (rootEnvCursor) IsLeaf() bool                            { return false }
func (rootEnvCursor) IsList() bool                            { return false }
func (rootEnvCursor) IsNullable() bool                        { return false }
func (rootEnvCursor) IsNull() bool                            { return false }
func (rootEnvCursor) HasField(string) bool                    { return false }
func (rootEnvCursor) NarrowsTo(string) bool                   { return false }
func (rootEnvCursor) AsLeaf() problem.Result[cursor.Json]     { return problem.Failure[cursor.Json](problem.New(problem.BadQuery, "rootEnvCursor has no value")) }
func (rootEnvCursor) AsList() problem.Result[[]cursor.Cursor] {
	return problem.Failure[[]cursor.Cursor](problem.New(problem.BadQuery, "rootEnvCursor has no value"))
}
func (rootEnvCursor) AsNullable() problem.Result[*cursor.Cursor] {
	return problem.Failure[*cursor.Cursor](problem.New(problem.BadQuery, "rootEnvCursor has no value"))
}
func (rootEnvCursor) Narrow(string) problem.Result[cursor.Cursor] {
	return problem.Failure[cursor.Cursor](problem.New(problem.BadQuery, "rootEnvCursor has no value"))
}
func (rootEnvCursor) Field(string, string) problem.Result[cursor.Cursor] {
	return problem.Failure[cursor.Cursor](problem.New(problem.BadQuery, "rootEnvCursor has no value"))
}

// rootFieldName recovers the response field name a root-level query node
// ultimately produces, unwrapping the node kinds that may wrap a
// Select/Rename without changing the emitted name.
func rootFieldName(q query.Query) (string, bool) {
	switch n := q.(type) {
	case query.Select:
		return n.Name, true
	case query.Rename:
		return n.Name, true
	case query.Skip:
		return rootFieldName(n.Child)
	case query.Environment:
		return rootFieldName(n.Child)
	case query.Component:
		return rootFieldName(n.Child)
	case query.Defer:
		return rootFieldName(n.Child)
	}
	return "", false
}
