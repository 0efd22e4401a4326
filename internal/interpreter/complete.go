package interpreter

import (
	"context"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/mapping"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
)

// Complete implements spec.md §4.4: it walks a ProtoJson, resolving every
// Deferred hole by invoking the target Mapping's root interpreter and
// recursively completing whatever ProtoJson it returns, until only plain
// JSON remains. A Deferred that no Mapping claims becomes a Deferral
// Problem rather than silently vanishing — SPEC_FULL.md's open-question
// decision to never drop an unresolved hole.
func Complete(ctx context.Context, rt *Runtime, p protojson.ProtoJson) problem.Result[cursor.Json] {
	switch v := p.(type) {
	case protojson.PureJson:
		return problem.Success[cursor.Json](v.Value)

	case protojson.ProtoObject:
		names := make([]string, len(v.Fields))
		results := make([]problem.Result[cursor.Json], len(v.Fields))
		for i, f := range v.Fields {
			names[i] = f.Name
			results[i] = Complete(ctx, rt, f.Value)
		}
		seq := problem.Sequence(results)
		return problem.Map(seq, func(vals []cursor.Json) cursor.Json {
			return protojson.NewOrderedMap(names, vals)
		})

	case protojson.ProtoArray:
		results := make([]problem.Result[cursor.Json], len(v.Elements))
		for i, e := range v.Elements {
			results[i] = Complete(ctx, rt, e)
		}
		seq := problem.Sequence(results)
		return problem.Map(seq, func(vals []cursor.Json) cursor.Json { return []cursor.Json(vals) })

	case protojson.Deferred:
		return completeDeferred(ctx, rt, v)

	default:
		return problem.Failure[cursor.Json](problem.New(problem.BadQuery, "unknown ProtoJson node: %T", p))
	}
}

func completeDeferred(ctx context.Context, rt *Runtime, d protojson.Deferred) problem.Result[cursor.Json] {
	var target *mapping.Mapping
	q := d.Query

	if d.MappingName != "" {
		m, ok := rt.Registry[d.MappingName]
		if !ok {
			return deferralFailure(d, "deferred field %q: unknown mapping %q", d.Name, d.MappingName)
		}
		target = m
	} else {
		if d.Tpe == nil || rt.Driving == nil {
			return deferralFailure(d, "deferred field %q: no driving mapping to consult", d.Name)
		}
		sub, ok := rt.Driving.Subobject(d.Tpe.Name, d.Name)
		if !ok {
			return deferralFailure(d, "deferred field %q: no subobject entry on type %s", d.Name, d.Tpe.Name)
		}
		m, ok := rt.Registry[sub.MappingName]
		if !ok {
			return deferralFailure(d, "deferred field %q: unknown mapping %q", d.Name, sub.MappingName)
		}
		jr := sub.Join(d.Cursor, d.Query)
		if jr.IsFailure() {
			return problem.FailureChain[cursor.Json](jr.Problems())
		}
		q = jr.Value()
		target = m
	}

	if target.RootInterpreter == nil {
		return deferralFailure(d, "deferred field %q: mapping %q has no root interpreter", d.Name, target.Name)
	}

	sub := target.RootInterpreter.RunRootValue(ctx, q)
	return problem.Bind(sub, func(proto protojson.ProtoJson) problem.Result[cursor.Json] {
		nextRt := &Runtime{Schema: rt.Schema, Driving: target, Registry: rt.Registry, Introspect: rt.Introspect}
		return Complete(ctx, nextRt, proto)
	})
}

func deferralFailure(d protojson.Deferred, format string, args ...any) problem.Result[cursor.Json] {
	p := problem.New(problem.Deferral, format, args...)
	if d.Cursor != nil {
		p = p.WithPath(d.Cursor.Context().ResultPath())
	}
	return problem.Failure[cursor.Json](p)
}
