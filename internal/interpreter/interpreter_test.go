package interpreter_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/interpreter"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
	"github.com/arborql/arborql/internal/query"
	"github.com/arborql/arborql/internal/schema"
	"github.com/arborql/arborql/internal/valuemapping"
)

// toPlain mirrors valuemapping_test.go's helper so assertions can compare
// against plain Go values instead of walking ProtoJson by hand. RunValue and
// RunFields hand back uncompleted ProtoJson, so a protojson.PureJson wrapper
// is unwrapped to its payload first.
func toPlain(v any) any {
	if pj, ok := v.(protojson.PureJson); ok {
		return toPlain(pj.Value)
	}
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

type review struct {
	Stars int
	Body  string
}

func reviewSchema() (*schema.Schema, *schema.Type) {
	reviewType := schema.NewObject("Review", "", []*schema.Field{
		{Name: "stars", Type: schema.IntType},
		{Name: "body", Type: schema.StringType},
	}, nil)
	sch := schema.NewSchema().WithBuiltins().AddType(reviewType)
	return sch, reviewType
}

func reviewListCursor(reviews []review) cursor.Cursor {
	sch, reviewType := reviewSchema()
	listType := schema.ListOf(reviewType)
	return valuemapping.Root(reviews, listType, sch)
}

var fixtureReviews = []review{
	{Stars: 5, Body: "Great"},
	{Stars: 1, Body: "Bad"},
	{Stars: 5, Body: "Also"},
	{Stars: 3, Body: "Ok"},
}

func starsAtLeast(n int) query.Pred {
	return func(focus any) bool {
		r, ok := focus.(review)
		if !ok {
			return false
		}
		return r.Stars >= n
	}
}

func bodyQuery() query.Query {
	return query.Select{Name: "body"}
}

// TestOrderBy_StableForEqualKeys covers spec.md §8 law 8: OrderBy never
// reorders elements that compare equal on every selection, so two 5-star
// reviews keep their original relative order through the sort.
func TestOrderBy_StableForEqualKeys(t *testing.T) {
	c := reviewListCursor(fixtureReviews)
	q := query.Limit{
		N: 2,
		Child: query.OrderBy{
			Selections: []query.OrderSelection{{Path: []string{"stars"}, Direction: query.Descending}},
			Child: query.Filter{
				Pred:  starsAtLeast(3),
				Child: query.Group{Queries: []query.Query{bodyQuery(), query.Select{Name: "stars"}}},
			},
		},
	}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := []any{
		map[string]any{"body": "Great", "stars": 5},
		map[string]any{"body": "Also", "stars": 5},
	}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_DropsElementsFailingThePredicate(t *testing.T) {
	c := reviewListCursor(fixtureReviews)
	q := query.Filter{Pred: starsAtLeast(5), Child: bodyQuery()}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := []any{
		map[string]any{"body": "Great"},
		map[string]any{"body": "Also"},
	}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOffset_SkipsLeadingElements(t *testing.T) {
	c := reviewListCursor(fixtureReviews)
	q := query.Offset{N: 1, Child: bodyQuery()}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := []any{
		map[string]any{"body": "Bad"},
		map[string]any{"body": "Also"},
		map[string]any{"body": "Ok"},
	}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCount_CountsAfterFilterNotBeforeIt(t *testing.T) {
	c := reviewListCursor(fixtureReviews)
	q := query.Count{Name: "n", Child: query.Filter{Pred: starsAtLeast(3), Child: query.Empty{}}}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	if diff := cmp.Diff(map[string]any{"n": float64(3)}, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// TestUnique covers spec.md §8 law 7 across all three element-count cases.
func TestUnique_ZeroOneAndManyElements(t *testing.T) {
	t.Run("zero elements yields null", func(t *testing.T) {
		c := reviewListCursor(fixtureReviews)
		q := query.Unique{Child: query.Filter{Pred: starsAtLeast(10), Child: bodyQuery()}}
		got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
		if got.IsFailure() {
			t.Fatalf("unexpected failure: %v", got.Problems())
		}
		if got.Value() != protojson.Null {
			t.Fatalf("expected protojson.Null, got %v", got.Value())
		}
	})

	t.Run("one element unwraps to its value", func(t *testing.T) {
		c := reviewListCursor(fixtureReviews)
		q := query.Unique{Child: query.Filter{Pred: starsAtLeast(1), Child: query.Filter{
			Pred:  func(focus any) bool { r, _ := focus.(review); return r.Body == "Bad" },
			Child: bodyQuery(),
		}}}
		got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
		if got.IsFailure() {
			t.Fatalf("unexpected failure: %v", got.Problems())
		}
		want := map[string]any{"body": "Bad"}
		if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
			t.Fatalf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("more than one element fails with TooManyResults", func(t *testing.T) {
		c := reviewListCursor(fixtureReviews)
		q := query.Unique{Child: query.Filter{Pred: starsAtLeast(3), Child: bodyQuery()}}
		got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
		if !got.IsFailure() {
			t.Fatalf("expected failure, got %v", got.Value())
		}
		ps := got.Problems()
		if len(ps) != 1 || ps[0].Kind != problem.TooManyResults {
			t.Fatalf("expected a single TooManyResults problem, got %+v", ps)
		}
	})
}

func TestRename_RewritesTheSoleEmittedFieldName(t *testing.T) {
	sch, reviewType := reviewSchema()
	c := valuemapping.Root(fixtureReviews[0], reviewType, sch)
	q := query.Group{Queries: []query.Query{
		query.Rename{Name: "headline", Child: query.Select{Name: "body"}},
	}}
	got := interpreter.RunFields(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	fields := got.Value()
	if len(fields) != 1 || fields[0].Name != "headline" {
		t.Fatalf("expected the sole field renamed to headline, got %+v", fields)
	}
}

// Content/Article/Video fixture for Narrow.

func contentSchema() (*schema.Schema, *schema.Type, *schema.Type) {
	articleType := schema.NewObject("Article", "", []*schema.Field{
		{Name: "wordCount", Type: schema.IntType},
	}, nil)
	videoType := schema.NewObject("Video", "", []*schema.Field{
		{Name: "seconds", Type: schema.IntType},
	}, nil)
	contentType := schema.NewInterface("Content", "", nil, []string{"Article", "Video"})
	sch := schema.NewSchema().WithBuiltins().AddType(articleType).AddType(videoType).AddType(contentType)
	return sch, contentType, articleType
}

type article struct{ WordCount int }

func TestNarrow_SucceedsIntoADeclaredPossibleType(t *testing.T) {
	sch, contentType, _ := contentSchema()
	c := valuemapping.Root(article{WordCount: 900}, contentType, sch)
	q := query.Narrow{SubType: "Article", Child: query.Select{Name: "wordCount"}}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := map[string]any{"wordCount": 900}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNarrow_FailsForAnUndeclaredPossibleType(t *testing.T) {
	sch, contentType, _ := contentSchema()
	c := valuemapping.Root(article{WordCount: 900}, contentType, sch)
	q := query.Narrow{SubType: "Image", Child: query.Select{Name: "wordCount"}}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if !got.IsFailure() {
		t.Fatalf("expected a narrowing failure, got %v", got.Value())
	}
}

func TestUntypedNarrow_FailsLoudlyAsUnelaboratedInput(t *testing.T) {
	sch, contentType, _ := contentSchema()
	c := valuemapping.Root(article{WordCount: 900}, contentType, sch)
	q := query.UntypedNarrow{Name: "Article", Child: query.Select{Name: "wordCount"}}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if !got.IsFailure() {
		t.Fatalf("expected UntypedNarrow to fail rather than silently resolve")
	}
	ps := got.Problems()
	if len(ps) != 1 || ps[0].Kind != problem.BadQuery {
		t.Fatalf("expected a BadQuery problem, got %+v", ps)
	}
}

func TestSkip_SuppressesChildWhenSenseMatchesCond(t *testing.T) {
	sch, reviewType := reviewSchema()
	c := valuemapping.Root(fixtureReviews[0], reviewType, sch)
	q := query.Skip{Sense: true, Cond: true, Child: query.Select{Name: "body"}}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	if got.Value() != protojson.Null {
		t.Fatalf("expected a skipped value to collapse to protojson.Null, got %v", got.Value())
	}
}

func TestSkip_PassesThroughWhenSenseDoesNotMatchCond(t *testing.T) {
	sch, reviewType := reviewSchema()
	c := valuemapping.Root(fixtureReviews[0], reviewType, sch)
	q := query.Group{Queries: []query.Query{
		query.Skip{Sense: true, Cond: false, Child: query.Select{Name: "body"}},
	}}
	got := interpreter.RunFields(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	if len(got.Value()) != 1 || got.Value()[0].Name != "body" {
		t.Fatalf("expected the child field to pass through, got %+v", got.Value())
	}
}

// TestWrap_RunValue and TestWrap_RunFields directly exercise the fix for a
// prior regression where Wrap had no case in RunValue/RunFields and fell
// through to the catch-all BadQuery failure. Both are exercised at a leaf
// cursor position so Wrap's value-position semantics aren't conflated with
// Select's distinct field-position machinery.
func TestWrap_RunValue_NestsTheLeafUnderTheSyntheticName(t *testing.T) {
	sch, reviewType := reviewSchema()
	c := valuemapping.Root(fixtureReviews[0], reviewType, sch)
	leaf, ok := cursor.NullableField(c, "stars", "").ToValue()
	if !ok || leaf == nil {
		t.Fatalf("expected to resolve the stars field")
	}
	q := query.Wrap{Name: "boxed", Child: query.Empty{}}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, *leaf, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	want := map[string]any{"boxed": 5}
	if diff := cmp.Diff(want, toPlain(got.Value())); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap_RunFields_NestsTheLeafUnderTheSyntheticName(t *testing.T) {
	sch, reviewType := reviewSchema()
	c := valuemapping.Root(fixtureReviews[0], reviewType, sch)
	leaf, ok := cursor.NullableField(c, "stars", "").ToValue()
	if !ok || leaf == nil {
		t.Fatalf("expected to resolve the stars field")
	}
	q := query.Group{Queries: []query.Query{query.Wrap{Name: "boxed", Child: query.Empty{}}}}
	got := interpreter.RunFields(context.Background(), &interpreter.Runtime{}, *leaf, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	if len(got.Value()) != 1 || got.Value()[0].Name != "boxed" {
		t.Fatalf("expected a single boxed field, got %+v", got.Value())
	}
	if diff := cmp.Diff(5, toPlain(got.Value()[0].Value)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// TestEnvironment_BindingReachesAJoiner grounds
// Environment's lexical scope directly on cursor.envCursor's own contract
// (internal/cursor/cursor.go): Field/AsLeaf/Narrow delegate straight through
// to the wrapped cursor, so a binding is visible only to code that receives
// the bound cursor as a plain parameter before any further descent — exactly
// how a Joiner is invoked (runComponent passes c straight into n.Join).
func TestEnvironment_BindingReachesAJoiner(t *testing.T) {
	sch, reviewType := reviewSchema()
	c := valuemapping.Root(fixtureReviews[0], reviewType, sch)

	var seen string
	capturingJoin := func(jc cursor.Cursor, child query.Query) problem.Result[query.Query] {
		if v, ok := cursor.EnvLookup[string](jc, "token"); ok {
			seen = v
		}
		return problem.Success(child)
	}

	q := query.Environment{
		Bind: map[string]any{"token": "xyz"},
		Child: query.Component{
			Mapping: "self",
			Join:    capturingJoin,
			Child:   query.Select{Name: "body"},
		},
	}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	if seen != "xyz" {
		t.Fatalf("expected the Joiner to observe the Environment binding, got %q", seen)
	}
}

func TestEnvironment_AppliesOnlyToItsOwnChildNotSiblings(t *testing.T) {
	sch, reviewType := reviewSchema()
	c := valuemapping.Root(fixtureReviews[0], reviewType, sch)

	var seenInSibling bool
	siblingJoin := func(jc cursor.Cursor, child query.Query) problem.Result[query.Query] {
		if _, ok := cursor.EnvLookup[string](jc, "token"); ok {
			seenInSibling = true
		}
		return problem.Success(child)
	}

	q := query.GroupList{Queries: []query.Query{
		query.Environment{Bind: map[string]any{"token": "xyz"}, Child: query.Select{Name: "body"}},
		query.Component{Mapping: "self", Join: siblingJoin, Child: query.Select{Name: "stars"}},
	}}
	got := interpreter.RunValue(context.Background(), &interpreter.Runtime{}, c, q)
	if got.IsFailure() {
		t.Fatalf("unexpected failure: %v", got.Problems())
	}
	if seenInSibling {
		t.Fatalf("expected the binding to stay scoped to Environment's own Child")
	}
}
