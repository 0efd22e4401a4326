package valuemapping_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arborql/arborql/internal/interpreter"
	"github.com/arborql/arborql/internal/mapping"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/schema"
	"github.com/arborql/arborql/internal/valuemapping"
)

// Fixture types and data from spec.md §8's end-to-end scenarios.

type movie struct {
	ID    string
	Title string
}

type foo struct {
	Value int
}

type bar struct {
	Message string
}

var fixtureMovie = movie{ID: "6a78…21", Title: "Celine et Julie Vont en Bateau"}
var fixtureFoo = foo{Value: 23}
var fixtureBar = bar{Message: "Hello world"}

func fixtureSchema() *schema.Schema {
	movieType := schema.NewObject("Movie", "", []*schema.Field{
		{Name: "id", Type: schema.StringType},
		{Name: "title", Type: schema.StringType},
	}, nil)
	fooType := schema.NewObject("Foo", "", []*schema.Field{
		{Name: "value", Type: schema.IntType},
	}, nil)
	barType := schema.NewObject("Bar", "", []*schema.Field{
		{Name: "message", Type: schema.StringType},
	}, nil)
	queryType := schema.NewObject("Query", "", []*schema.Field{
		{Name: "movie", Type: schema.NullableOf(movieType)},
		{Name: "foo", Type: fooType},
		{Name: "bar", Type: barType},
	}, nil)

	return schema.NewSchema().WithBuiltins().
		AddType(movieType).AddType(fooType).AddType(barType).AddType(queryType).
		SetQueryType("Query")
}

// fixtureMappings builds one Mapping per fixture object, each with its own
// Interpreter, and wires a shared registry — spec.md §8 scenario 4 needs
// these to be genuinely separate components to validate cross-component
// deferral.
func fixtureMappings(sch *schema.Schema) map[string]*mapping.Mapping {
	movieType, _ := sch.Lookup("Movie")
	fooType, _ := sch.Lookup("Foo")
	barType, _ := sch.Lookup("Bar")

	movieInterp := &valuemapping.Interpreter{
		Schema: sch,
		Fields: []valuemapping.RootField{{
			Name: "movie",
			Type: schema.NullableOf(movieType),
			Resolve: func(args query.Args) (any, problem.Problems) {
				id, _ := args.Get("id")
				if id == fixtureMovie.ID {
					m := fixtureMovie
					return &m, nil
				}
				return (*movie)(nil), nil
			},
		}},
	}
	fooInterp := &valuemapping.Interpreter{
		Schema: sch,
		Fields: []valuemapping.RootField{{
			Name: "foo",
			Type: fooType,
			Resolve: func(query.Args) (any, problem.Problems) { return fixtureFoo, nil },
		}},
	}
	barInterp := &valuemapping.Interpreter{
		Schema: sch,
		Fields: []valuemapping.RootField{{
			Name: "bar",
			Type: barType,
			Resolve: func(query.Args) (any, problem.Problems) { return fixtureBar, nil },
		}},
	}

	movieMapping := movieInterp.WireMapping("movie")
	fooMapping := fooInterp.WireMapping("foo")
	barMapping := barInterp.WireMapping("bar")

	registry := map[string]*mapping.Mapping{
		"movie": movieMapping,
		"foo":   fooMapping,
		"bar":   barMapping,
	}
	movieInterp.Registry = registry
	fooInterp.Registry = registry
	barInterp.Registry = registry
	return registry
}

func toPlain(v cursor_Json) any {
	if names, values, ok := protojson.OrderedEntries(v); ok {
		out := make(map[string]any, len(names))
		for i, n := range names {
			out[n] = toPlain(values[i])
		}
		return out
	}
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, e := range list {
			out[i] = toPlain(e)
		}
		return out
	}
	return v
}

// cursor_Json mirrors cursor.Json (an any alias) so this file need not
// import internal/cursor solely for the type alias.
type cursor_Json = any

func TestScenario1_SingleFieldThroughItsOwnMapping(t *testing.T) {
	sch := fixtureSchema()
	registry := fixtureMappings(sch)
	rt := &interpreter.Runtime{Schema: sch, Driving: registry["movie"], Registry: registry}

	q := query.Select{
		Name: "movie",
		Args: query.Args{{Name: "id", Value: fixtureMovie.ID}},
		Child: query.Select{Name: "title"},
	}
	got := interpreter.RunRoot(context.Background(), rt, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := map[string]any{"movie": map[string]any{"title": fixtureMovie.Title}}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario2_Foo(t *testing.T) {
	sch := fixtureSchema()
	registry := fixtureMappings(sch)
	rt := &interpreter.Runtime{Schema: sch, Driving: registry["foo"], Registry: registry}

	q := query.Select{Name: "foo", Child: query.Select{Name: "value"}}
	got := interpreter.RunRoot(context.Background(), rt, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := map[string]any{"foo": map[string]any{"value": fixtureFoo.Value}}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario3_Bar(t *testing.T) {
	sch := fixtureSchema()
	registry := fixtureMappings(sch)
	rt := &interpreter.Runtime{Schema: sch, Driving: registry["bar"], Registry: registry}

	q := query.Select{Name: "bar", Child: query.Select{Name: "message"}}
	got := interpreter.RunRoot(context.Background(), rt, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := map[string]any{"bar": map[string]any{"message": fixtureBar.Message}}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// TestScenario4_CrossComponentMerge validates that one query spanning three
// independently-mapped root fields produces a single merged data object —
// the defining property of the Component boundary (spec.md §4.3/§4.5).
func TestScenario4_CrossComponentMerge(t *testing.T) {
	sch := fixtureSchema()
	registry := fixtureMappings(sch)
	rt := &interpreter.Runtime{Schema: sch, Registry: registry}

	top := query.Group{Queries: []query.Query{
		query.Component{
			Mapping: "movie",
			Join:    query.DefaultJoin,
			Child: query.Select{
				Name:  "movie",
				Args:  query.Args{{Name: "id", Value: fixtureMovie.ID}},
				Child: query.Select{Name: "title"},
			},
		},
		query.Component{
			Mapping: "foo",
			Join:    query.DefaultJoin,
			Child:   query.Select{Name: "foo", Child: query.Select{Name: "value"}},
		},
		query.Component{
			Mapping: "bar",
			Join:    query.DefaultJoin,
			Child:   query.Select{Name: "bar", Child: query.Select{Name: "message"}},
		},
	}}

	got := interpreter.RunRoot(context.Background(), rt, top)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := map[string]any{
		"movie": map[string]any{"title": fixtureMovie.Title},
		"foo":   map[string]any{"value": fixtureFoo.Value},
		"bar":   map[string]any{"message": fixtureBar.Message},
	}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// TestScenario5_UnknownField exercises SPEC_FULL.md's chosen policy for an
// unresolvable selection: a FieldNotFound Problem with the offending path,
// never a silent null.
func TestScenario5_UnknownField(t *testing.T) {
	sch := fixtureSchema()
	registry := fixtureMappings(sch)
	rt := &interpreter.Runtime{Schema: sch, Driving: registry["movie"], Registry: registry}

	q := query.Select{
		Name:  "movie",
		Args:  query.Args{{Name: "id", Value: fixtureMovie.ID}},
		Child: query.Select{Name: "nope"},
	}
	got := interpreter.RunRoot(context.Background(), rt, q)
	if !got.IsFailure() {
		t.Fatalf("expected failure, got %v", got.Value())
	}
	ps := got.Problems()
	if len(ps) != 1 || ps[0].Kind != problem.FieldNotFound {
		t.Fatalf("expected a single FieldNotFound problem, got %+v", ps)
	}
	wantPath := []string{"movie", "nope"}
	if diff := cmp.Diff(wantPath, ps[0].Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_MovieNotFound_YieldsNull(t *testing.T) {
	sch := fixtureSchema()
	registry := fixtureMappings(sch)
	rt := &interpreter.Runtime{Schema: sch, Driving: registry["movie"], Registry: registry}

	q := query.Select{
		Name:  "movie",
		Args:  query.Args{{Name: "id", Value: "no-such-id"}},
		Child: query.Select{Name: "title"},
	}
	got := interpreter.RunRoot(context.Background(), rt, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := map[string]any{"movie": nil}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
