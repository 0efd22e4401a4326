package problem_test

import (
	"testing"

	"github.com/arborql/arborql/internal/problem"
)

func TestMap_LeavesFailureUntouched(t *testing.T) {
	f := problem.Failure[int](problem.New(problem.BadQuery, "boom"))
	got := problem.Map(f, func(n int) int { return n + 1 })
	if !got.IsFailure() {
		t.Fatalf("expected Map over a Failure to stay a Failure")
	}
	if len(got.Problems()) != 1 {
		t.Fatalf("expected the original problem to survive, got %v", got.Problems())
	}
}

func TestMap_AppliesOverSuccessAndWarnings(t *testing.T) {
	s := problem.Success(1)
	if v := problem.Map(s, func(n int) int { return n * 10 }).Value(); v != 10 {
		t.Fatalf("expected Success mapped to 10, got %d", v)
	}
	w := problem.Warnings(1, problem.New(problem.FieldNotFound, "minor"))
	mapped := problem.Map(w, func(n int) int { return n * 10 })
	if mapped.IsFailure() || mapped.Value() != 10 || len(mapped.Problems()) != 1 {
		t.Fatalf("expected Warnings preserved through Map, got value=%v failure=%v problems=%v",
			mapped.Value(), mapped.IsFailure(), mapped.Problems())
	}
}

// TestBind_FailureShortCircuitsWithoutCallingF checks the propagation
// policy Bind's doc comment names: a Failure on the left side short-
// circuits without ever invoking f.
func TestBind_FailureShortCircuitsWithoutCallingF(t *testing.T) {
	called := false
	f := problem.Failure[int](problem.New(problem.BadQuery, "left failure"))
	got := problem.Bind(f, func(int) problem.Result[int] {
		called = true
		return problem.Success(0)
	})
	if called {
		t.Fatalf("expected f not to be invoked when the input is already a Failure")
	}
	if !got.IsFailure() || len(got.Problems()) != 1 {
		t.Fatalf("expected the left Failure's problems to pass through, got %v", got.Problems())
	}
}

func TestBind_CombinesProblemsFromBothSides(t *testing.T) {
	left := problem.Warnings(1, problem.New(problem.FieldNotFound, "left warning"))
	got := problem.Bind(left, func(n int) problem.Result[int] {
		return problem.Warnings(n+1, problem.New(problem.TypeMismatch, "right warning"))
	})
	if got.IsFailure() {
		t.Fatalf("expected Warnings, not Failure")
	}
	if got.Value() != 2 {
		t.Fatalf("expected value 2, got %d", got.Value())
	}
	if len(got.Problems()) != 2 {
		t.Fatalf("expected both sides' problems combined, got %v", got.Problems())
	}
}

func TestBind_RightSideFailureFailsOverallButKeepsBothProblems(t *testing.T) {
	left := problem.Warnings(1, problem.New(problem.FieldNotFound, "left warning"))
	got := problem.Bind(left, func(int) problem.Result[int] {
		return problem.Failure[int](problem.New(problem.BadQuery, "right failure"))
	})
	if !got.IsFailure() {
		t.Fatalf("expected a Failure once the right side fails")
	}
	if len(got.Problems()) != 2 {
		t.Fatalf("expected both the left warning and right failure to be combined, got %v", got.Problems())
	}
}

// TestBoth_NeverDiscardsTheOtherSidesContribution covers spec.md §5's
// ordering guarantee: a failure in one sibling never discards the other's
// value or problems.
func TestBoth_NeverDiscardsTheOtherSidesContribution(t *testing.T) {
	a := problem.Success(1)
	b := problem.Failure[int](problem.New(problem.BadQuery, "sibling failed"))
	got := problem.Both(a, b, func(x, y int) int { return x + y })
	if !got.IsFailure() {
		t.Fatalf("expected Both to fail when either sibling fails")
	}
	if len(got.Problems()) != 1 {
		t.Fatalf("expected the failing sibling's problem to surface, got %v", got.Problems())
	}
}

func TestBoth_CombinesTwoSuccessesIntoWarningsFreeResult(t *testing.T) {
	a := problem.Success(1)
	b := problem.Success(2)
	got := problem.Both(a, b, func(x, y int) int { return x + y })
	if got.IsFailure() || got.Value() != 3 || len(got.Problems()) != 0 {
		t.Fatalf("expected a clean combined Success, got value=%v problems=%v", got.Value(), got.Problems())
	}
}

// TestSequence_FailsIffAnyInputFailed covers spec.md §8 law 6's completion-
// totality flavor at the combinator level: Sequence always produces a
// value for every input position, and is a Failure iff at least one input
// was.
func TestSequence_FailsIffAnyInputFailed(t *testing.T) {
	rs := []problem.Result[int]{
		problem.Success(1),
		problem.Failure[int](problem.New(problem.BadQuery, "bad")),
		problem.Warnings(3, problem.New(problem.FieldNotFound, "warn")),
	}
	got := problem.Sequence(rs)
	if !got.IsFailure() {
		t.Fatalf("expected Sequence to fail when any input failed")
	}
	if len(got.Problems()) != 2 {
		t.Fatalf("expected both the failure's and the warning's problems combined, got %v", got.Problems())
	}
}

func TestSequence_AllSuccessYieldsCleanSuccess(t *testing.T) {
	rs := []problem.Result[int]{problem.Success(1), problem.Success(2), problem.Success(3)}
	got := problem.Sequence(rs)
	if got.IsFailure() {
		t.Fatalf("expected Success, got Failure: %v", got.Problems())
	}
	if len(got.Value()) != 3 || got.Value()[0] != 1 || got.Value()[2] != 3 {
		t.Fatalf("expected all three values preserved in order, got %v", got.Value())
	}
}

func TestWarnings_NoProblemsCollapsesToSuccess(t *testing.T) {
	w := problem.Warnings(1)
	if w.IsFailure() {
		t.Fatalf("expected a problem-free Warnings to behave as Success")
	}
	if len(w.Problems()) != 0 {
		t.Fatalf("expected no problems, got %v", w.Problems())
	}
}

func TestCombine_EitherSideEmptyReturnsOther(t *testing.T) {
	p := problem.Problems{problem.New(problem.BadQuery, "x")}
	if diff := len(problem.Combine(nil, p)); diff != 1 {
		t.Fatalf("expected Combine(nil, p) to equal p, got len=%d", diff)
	}
	if diff := len(problem.Combine(p, nil)); diff != 1 {
		t.Fatalf("expected Combine(p, nil) to equal p, got len=%d", diff)
	}
}

func TestToValue_OkOnlyFalseForFailure(t *testing.T) {
	if _, ok := problem.Success(1).ToValue(); !ok {
		t.Fatalf("expected ok=true for Success")
	}
	if _, ok := problem.Warnings(1, problem.New(problem.BadQuery, "w")).ToValue(); !ok {
		t.Fatalf("expected ok=true for Warnings")
	}
	if _, ok := problem.Failure[int](problem.New(problem.BadQuery, "f")).ToValue(); ok {
		t.Fatalf("expected ok=false for Failure")
	}
}
