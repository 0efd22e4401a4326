package response_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/response"
)

func TestFrom_SuccessRendersOrderedData(t *testing.T) {
	data := map[string]any{"id": "m1", "title": "Arrival"}
	// NewOrderedMap-shaped value is exercised end-to-end by the interpreter
	// and valuemapping test suites; here Success just carries a plain map,
	// which renderValue falls back to json.Marshal for (order is immaterial
	// for a single-field-order-insensitive map in this unit test).
	r := problem.Success[any](data)
	env := response.From(r)
	if !env.HasData {
		t.Fatalf("expected HasData true for a Success result")
	}
	if len(env.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", env.Errors)
	}
	b, err := env.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"data":{"id":"m1","title":"Arrival"}}`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFrom_FailureOmitsDataEntirely(t *testing.T) {
	p := problem.New(problem.FieldNotFound, "field not found: nope").WithPath([]string{"movie", "nope"})
	r := problem.FailureChain[any](problem.Problems{p})
	env := response.From(r)
	if env.HasData {
		t.Fatalf("expected HasData false for a pure Failure")
	}
	b, err := env.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"errors":[{"message":"field not found: nope","path":["movie","nope"]}]}`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFrom_WarningsKeepsPartialDataAlongsideErrors(t *testing.T) {
	p := problem.New(problem.Deferral, "backend unavailable")
	r := problem.Warnings[any](map[string]any{"foo": nil}, p)
	env := response.From(r)
	if !env.HasData {
		t.Fatalf("expected HasData true for Warnings (partial success)")
	}
	if len(env.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(env.Errors))
	}
}
