package introspection

import (
	"context"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/interpreter"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/schema"
	"github.com/arborql/arborql/internal/valuemapping"
)

// Hook builds a Runtime.Introspect function answering __schema/__type
// against dataSchema. It is meant to be installed once per Schema and
// shared across every query that Schema serves.
//
// The returned function's contract (set up by the special-casing in
// internal/interpreter's runSelectField): c carries, in its Env, the
// string "__introspectionRoot" set to "__schema" or "__type", plus any
// GraphQL arguments of that root field (so __type's "name" argument is
// cursor.EnvLookup[string](c, "name")); q is the field's own sub-selection.
func Hook(dataSchema *schema.Schema) func(ctx context.Context, c cursor.Cursor, q query.Query) problem.Result[protojson.ProtoJson] {
	meta := buildMetaSchema()
	rt := &interpreter.Runtime{Schema: meta}

	return func(ctx context.Context, c cursor.Cursor, q query.Query) problem.Result[protojson.ProtoJson] {
		root, _ := cursor.EnvLookup[string](c, "__introspectionRoot")
		switch root {
		case "__schema":
			schemaT, _ := meta.Lookup("__Schema")
			mc := valuemapping.Root(renderSchema(dataSchema), schemaT, meta)
			return interpreter.RunValue(ctx, rt, mc, q)

		case "__type":
			name, _ := cursor.EnvLookup[string](c, "name")
			t, ok := dataSchema.Lookup(name)
			if !ok {
				return problem.Success[protojson.ProtoJson](protojson.Null)
			}
			typeT, _ := meta.Lookup("__Type")
			mc := valuemapping.Root(renderBareType(dataSchema, t), typeT, meta)
			return interpreter.RunValue(ctx, rt, mc, q)

		default:
			return problem.Failure[protojson.ProtoJson](
				problem.New(problem.BadQuery, "unsupported introspection root: %q", root),
			)
		}
	}
}
