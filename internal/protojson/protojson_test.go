package protojson_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arborql/arborql/internal/protojson"
)

// TestFromFields_CollapsesToPureJsonWhenEveryFieldIsPure covers spec.md §8
// law 5: FromFields yields a PureJson, not a ProtoObject, whenever every
// field's value is already pure.
func TestFromFields_CollapsesToPureJsonWhenEveryFieldIsPure(t *testing.T) {
	fields := []protojson.ProtoField{
		{Name: "id", Value: protojson.PureJson{Value: "m1"}},
		{Name: "title", Value: protojson.PureJson{Value: "Arrival"}},
	}
	got := protojson.FromFields(fields)
	pure, ok := got.(protojson.PureJson)
	if !ok {
		t.Fatalf("expected collapse to PureJson, got %T", got)
	}
	names, values, ok := protojson.OrderedEntries(pure.Value)
	if !ok {
		t.Fatalf("expected an ordered-map payload")
	}
	if diff := cmp.Diff([]string{"id", "title"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"m1", "Arrival"}, values); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

// TestFromFields_AnyNonPureFieldYieldsProtoObject checks the law's other
// half: a single Deferred (or any non-PureJson) field forces a ProtoObject.
func TestFromFields_AnyNonPureFieldYieldsProtoObject(t *testing.T) {
	fields := []protojson.ProtoField{
		{Name: "id", Value: protojson.PureJson{Value: "m1"}},
		{Name: "director", Value: protojson.Deferred{Name: "director"}},
	}
	got := protojson.FromFields(fields)
	obj, ok := got.(protojson.ProtoObject)
	if !ok {
		t.Fatalf("expected a ProtoObject when any field is impure, got %T", got)
	}
	if len(obj.Fields) != 2 {
		t.Fatalf("expected both fields preserved, got %d", len(obj.Fields))
	}
}

func TestFromFields_EmptyCollapsesToPureEmptyObject(t *testing.T) {
	got := protojson.FromFields(nil)
	pure, ok := got.(protojson.PureJson)
	if !ok {
		t.Fatalf("expected an empty field list to collapse to PureJson, got %T", got)
	}
	names, _, ok := protojson.OrderedEntries(pure.Value)
	if !ok || len(names) != 0 {
		t.Fatalf("expected zero fields, got %v", names)
	}
}

func TestFromValues_CollapsesToPureJsonWhenEveryElementIsPure(t *testing.T) {
	values := []protojson.ProtoJson{
		protojson.PureJson{Value: 1},
		protojson.PureJson{Value: 2},
		protojson.PureJson{Value: 3},
	}
	got := protojson.FromValues(values)
	pure, ok := got.(protojson.PureJson)
	if !ok {
		t.Fatalf("expected collapse to PureJson, got %T", got)
	}
	if diff := cmp.Diff([]any{1, 2, 3}, pure.Value); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFromValues_AnyNonPureElementYieldsProtoArray(t *testing.T) {
	values := []protojson.ProtoJson{
		protojson.PureJson{Value: 1},
		protojson.Deferred{Name: "pending"},
	}
	got := protojson.FromValues(values)
	arr, ok := got.(protojson.ProtoArray)
	if !ok {
		t.Fatalf("expected a ProtoArray when any element is impure, got %T", got)
	}
	if len(arr.Elements) != 2 {
		t.Fatalf("expected both elements preserved, got %d", len(arr.Elements))
	}
}

func TestNewOrderedMap_RoundTripsThroughOrderedEntries(t *testing.T) {
	payload := protojson.NewOrderedMap([]string{"b", "a"}, []any{2, 1})
	names, values, ok := protojson.OrderedEntries(payload)
	if !ok {
		t.Fatalf("expected NewOrderedMap's payload to be recognized by OrderedEntries")
	}
	if diff := cmp.Diff([]string{"b", "a"}, names); diff != "" {
		t.Fatalf("expected declaration order preserved despite alphabetically-later keys first (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{2, 1}, values); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderedEntries_FalseForNonOrderedMapValue(t *testing.T) {
	if _, _, ok := protojson.OrderedEntries("not an ordered map"); ok {
		t.Fatalf("expected OrderedEntries to report false for an unrelated value")
	}
	if _, _, ok := protojson.OrderedEntries(map[string]any{"a": 1}); ok {
		t.Fatalf("expected OrderedEntries to report false for a plain map, not just any map-shaped value")
	}
}

func TestNull_IsPureJsonNil(t *testing.T) {
	if protojson.Null.Value != nil {
		t.Fatalf("expected protojson.Null to wrap a nil value")
	}
}
