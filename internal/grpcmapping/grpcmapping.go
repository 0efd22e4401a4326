package grpcmapping

import (
	"context"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/arborql/arborql/internal/interpreter"
	"github.com/arborql/arborql/internal/mapping"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/schema"
	"github.com/arborql/arborql/internal/valuemapping"
)

// RootField binds one root GraphQL field to the gRPC method that answers
// it: Method's descriptor comes from the service's generated .pb.go (fixed,
// pre-compiled service definitions — this engine does not discover or
// build proto descriptors at runtime, unlike the teacher's internal/
// protoreg), Endpoint is the dial target, and ResponseField is the name of
// the response message's field holding the actual payload (mirroring the
// teacher's fixed "data" envelope field, generalized to a name per field
// since this engine does not mandate one envelope shape for every schema).
type RootField struct {
	Name          string
	Type          *schema.Type
	Endpoint      string
	Method        protoreflect.MethodDescriptor
	ResponseField string
}

// Interpreter is a mapping.Interpreter backed by gRPC calls: each RunRootValue
// invocation builds a request from the field's arguments, calls out over
// Transport, decodes the response into a plain Go value, and hands that
// value to internal/valuemapping's reflection Cursor/RunValue — the same
// generic traversal internal/introspection reuses for schema metadata.
//
// Mapping and Registry are filled in by WireMapping/the deployment wiring
// step, mirroring valuemapping.Interpreter's own two-phase construction.
type Interpreter struct {
	Schema    *schema.Schema
	Fields    []RootField
	Transport Transport
	Mapping   *mapping.Mapping
	Registry  map[string]*mapping.Mapping
}

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

// RunRootValue implements mapping.Interpreter: q must be a Select or
// Rename(Select) naming one of i.Fields.
func (i *Interpreter) RunRootValue(ctx context.Context, q query.Query) problem.Result[protojson.ProtoJson] {
	sel, _, ok := query.AsPossiblyRenamedSelect(q)
	if !ok {
		return problem.Failure[protojson.ProtoJson](
			problem.New(problem.BadQuery, "grpcmapping root query must be a field selection, got %T", q),
		)
	}
	field, ok := i.field(sel.Name)
	if !ok {
		return problem.Failure[protojson.ProtoJson](problem.New(problem.FieldNotFound, "unknown root field: %s", sel.Name))
	}

	args := make(map[string]any, len(sel.Args))
	for _, b := range sel.Args {
		args[b.Name] = b.Value
	}
	req := encodeRequest(field.Method.Input(), args)

	resp, err := i.Transport.Call(ctx, field.Endpoint, field.Method, req)
	if err != nil {
		return problem.Failure[protojson.ProtoJson](
			problem.New(problem.Deferral, "grpc call %s failed: %v", field.Method.FullName(), err),
		)
	}

	decoded := decodeMessage(resp)
	value := decoded[field.ResponseField]

	root := valuemapping.Root(value, field.Type, i.Schema)
	rt := &interpreter.Runtime{Schema: i.Schema, Driving: i.Mapping, Registry: i.Registry}
	return interpreter.RunValue(ctx, rt, root, sel.Child)
}
