// Command arborql is a minimal demo CLI exercising the in-memory
// sub-engine end to end against spec.md §8's fixture scenarios.
//
// Grounded on the teacher's cmd/protograph/main.go: the same
// flag.NewFlagSet/log.Fatal shape, the same "global flag set parses the
// subcommand name, a per-command flag set parses the rest" dispatch
// pattern, and the same eventbus.Use/otelobs.Setup/shutdown wiring around the
// actual work — here interpreter.RunRoot rather than an http.ListenAndServe
// loop, since this module carries no HTTP server.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/arborql/arborql/internal/eventbus"
	"github.com/arborql/arborql/internal/events"
	"github.com/arborql/arborql/internal/interpreter"
	"github.com/arborql/arborql/internal/introspection"
	"github.com/arborql/arborql/internal/mapping"
	"github.com/arborql/arborql/internal/otelobs"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/reqid"
	"github.com/arborql/arborql/internal/response"
	"github.com/arborql/arborql/internal/schema"
	"github.com/arborql/arborql/internal/schemabuild"
	"github.com/arborql/arborql/internal/valuemapping"
)

const rootUsage = `arborql — query-execution-engine demo

USAGE:
  arborql demo [flags]

COMMANDS:
  demo   Run one of spec.md §8's end-to-end fixture scenarios
  help   Show help for any command
`

const demoUsage = `demo FLAGS:
  -scenario <1-6>         Which §8 fixture scenario to run (default: 1)
  -otel.endpoint <addr>   OTLP collector endpoint
  -otel.service <name>    OpenTelemetry service name (default: arborql)

SCENARIOS:
  1  movie(id: "6a78…21") { title }
  2  foo { value }
  3  bar { message }
  4  movie(id: "6a78…21") { title } foo { value } bar { message } — merges
     three root fields under one response object.
  5  movie { nope } — selecting an undeclared field; arborql's chosen policy
     (SPEC_FULL.md open question 3) surfaces a FieldNotFound error, never a
     silent null.
  6  a schema referencing an undefined type (Episod instead of Episode) —
     prints the resulting schema-validation problem.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}
	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "demo":
		return cmdDemo(cmdArgs)
	case "help":
		fmt.Print(rootUsage)
		fmt.Print(demoUsage)
		return nil
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdDemo(args []string) error {
	scenario := 1
	otelEndpoint := ""
	otelService := "arborql"

	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.IntVar(&scenario, "scenario", scenario, "fixture scenario to run (1-6)")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, demoUsage)
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otelobs.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if scenario == 6 {
		return runUndefinedTypeScenario()
	}
	return runFixtureScenario(scenario)
}

// Fixture data from spec.md §8's end-to-end scenarios.

type movieData struct {
	ID    string
	Title string
}

type fooData struct{ Value int }

type barData struct{ Message string }

var (
	fixtureMovie = movieData{ID: "6a78…21", Title: "Celine et Julie Vont en Bateau"}
	fixtureFoo   = fooData{Value: 23}
	fixtureBar   = barData{Message: "Hello world"}
)

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
		{Name: "movie", Type: schema.NullableOf(movieType), Arguments: []*schema.InputValue{
			{Name: "id", Type: schema.StringType},
		}},
		{Name: "foo", Type: fooType},
		{Name: "bar", Type: barType},
	}, nil)
	return schema.NewSchema().WithBuiltins().
		AddType(movieType).AddType(fooType).AddType(barType).AddType(queryType).
		SetQueryType("Query")
}

// fixtureMapping wires an in-memory valuemapping.Interpreter to resolve
// movie/foo/bar root fields against the package-level fixture values.
func fixtureMapping(sch *schema.Schema) *mapping.Mapping {
	interp := &valuemapping.Interpreter{
		Schema: sch,
		Fields: []valuemapping.RootField{
			{
				Name: "movie",
				Type: sch.QueryType().Field("movie").Type,
				Resolve: func(args query.Args) (any, problem.Problems) {
					id, _ := args.Get("id")
					if id != fixtureMovie.ID {
						return nil, nil
					}
					return fixtureMovie, nil
				},
			},
			{
				Name: "foo",
				Type: sch.QueryType().Field("foo").Type,
				Resolve: func(query.Args) (any, problem.Problems) { return fixtureFoo, nil },
			},
			{
				Name: "bar",
				Type: sch.QueryType().Field("bar").Type,
				Resolve: func(query.Args) (any, problem.Problems) { return fixtureBar, nil },
			},
		},
	}
	return interp.WireMapping("fixture")
}

func runFixtureScenario(scenario int) error {
	sch := fixtureSchema()
	mov := fixtureMapping(sch)
	rt := &interpreter.Runtime{Schema: sch, Driving: mov, Introspect: introspection.Hook(sch)}

	q, opName, ok := fixtureQuery(scenario)
	if !ok {
		return fmt.Errorf("unknown scenario %d (want 1-6)", scenario)
	}

	ctx, _ := reqid.NewContext(context.Background())
	eventbus.Publish(ctx, events.QueryStart{OperationName: opName, OperationType: "query"})
	result := interpreter.RunRoot(ctx, rt, q)
	eventbus.Publish(ctx, events.QueryFinish{
		OperationName: opName,
		OperationType: "query",
		Errors:        toErrors(result.Problems()),
	})

	return printEnvelope(result)
}

func fixtureQuery(scenario int) (query.Query, string, bool) {
	movieSelect := query.Select{
		Name: "movie",
		Args: query.Args{{Name: "id", Value: fixtureMovie.ID}},
		Child: query.Select{Name: "title"},
	}
	fooSelect := query.Select{Name: "foo", Child: query.Select{Name: "value"}}
	barSelect := query.Select{Name: "bar", Child: query.Select{Name: "message"}}

	switch scenario {
	case 1:
		return movieSelect, "Movie", true
	case 2:
		return fooSelect, "Foo", true
	case 3:
		return barSelect, "Bar", true
	case 4:
		return query.Group{Queries: []query.Query{movieSelect, fooSelect, barSelect}}, "Merged", true
	case 5:
		return query.Select{
			Name:  "movie",
			Args:  query.Args{{Name: "id", Value: fixtureMovie.ID}},
			Child: query.Select{Name: "nope"},
		}, "UnknownField", true
	default:
		return nil, "", false
	}
}

// runUndefinedTypeScenario feeds an SDL document with a dangling type
// reference (a typo'd "Episod" in place of "Episode") through
// internal/schemabuild and renders the resulting schema-validation problem
// as a Failure envelope — spec.md §8 scenario 6.
func runUndefinedTypeScenario() error {
	const sdl = `
type Query {
  episode: Episod
}

type Episode {
  id: ID
}
`
	if _, err := schemabuild.BuildString("fixture.graphql", sdl); err != nil {
		p := problem.New(problem.SchemaValidation, "%s", err.Error())
		result := problem.FailureChain[any](problem.Problems{p})
		return printEnvelope(result)
	}
	return fmt.Errorf("expected a schema-validation error, got none")
}

func printEnvelope(result problem.Result[any]) error {
	env := response.From(result)
	out, err := env.MarshalJSON()
	if err != nil {
		return fmt.Errorf("render response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func toErrors(ps problem.Problems) []error {
	if len(ps) == 0 {
		return nil
	}
	out := make([]error, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}
