// Package problem defines the user-visible error taxonomy and the
// three-valued Result container the interpreter threads through every
// traversal step.
package problem

import "fmt"

// Kind classifies a Problem without pinning it to a concrete error type.
type Kind string

const (
	BadQuery             Kind = "BAD_QUERY"
	FieldNotFound        Kind = "FIELD_NOT_FOUND"
	TypeMismatch         Kind = "TYPE_MISMATCH"
	UnknownType          Kind = "UNKNOWN_TYPE"
	UnsupportedType      Kind = "UNSUPPORTED_TYPE"
	NarrowingFailed      Kind = "NARROWING_FAILED"
	NullabilityViolation Kind = "NULLABILITY_VIOLATION"
	TooManyResults       Kind = "TOO_MANY_RESULTS"
	EmptyResult          Kind = "EMPTY_RESULT"
	Deferral             Kind = "DEFERRAL"
	EnvLookupFailed      Kind = "ENV_LOOKUP_FAILED"
	SchemaValidation     Kind = "SCHEMA_VALIDATION"
)

// Location is a source position, present only for problems traceable to a
// position in the original query text (carried through from elaboration).
type Location struct {
	Line   int `json:"line"`
	Col    int `json:"col"`
}

// Problem is a single user-visible error entry. Field order here matches the
// GraphQL response rendering order: message, then locations, then path.
type Problem struct {
	Kind      Kind
	Message   string
	Locations []Location
	Path      []string
}

func (p Problem) Error() string { return p.Message }

// New creates a Problem of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) Problem {
	return Problem{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithPath returns a copy of p with its path set. Interpreters call this when
// a Problem surfaces from a context whose resultPath is known.
func (p Problem) WithPath(path []string) Problem {
	p.Path = append([]string(nil), path...)
	return p
}

// Problems is a non-empty chain of Problem values. The zero value is invalid;
// use New/FromError to construct one.
type Problems []Problem

func FromError(err error) Problems {
	if p, ok := err.(Problem); ok {
		return Problems{p}
	}
	return Problems{{Kind: BadQuery, Message: err.Error()}}
}

// Combine concatenates two problem chains, preserving collection order (a's
// problems before b's, so it is not commutative). It is the associative
// combine on the left arm of the Result "These"
// isomorphism described in spec.md §9.
func Combine(a, b Problems) Problems {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(Problems, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// tag discriminates the three Result states.
type tag int

const (
	tagSuccess tag = iota
	tagFailure
	tagWarnings
)

// Result is the three-valued container propagated through every cursor and
// interpreter operation: a pure Success, a Failure carrying only problems, or
// Warnings carrying both a value and non-fatal problems.
type Result[A any] struct {
	tag      tag
	value    A
	problems Problems
}

func Success[A any](v A) Result[A] { return Result[A]{tag: tagSuccess, value: v} }

func Failure[A any](p ...Problem) Result[A] { return Result[A]{tag: tagFailure, problems: p} }

func FailureChain[A any](ps Problems) Result[A] { return Result[A]{tag: tagFailure, problems: ps} }

func Warnings[A any](v A, p ...Problem) Result[A] {
	if len(p) == 0 {
		return Success(v)
	}
	return Result[A]{tag: tagWarnings, value: v, problems: p}
}

func (r Result[A]) IsFailure() bool { return r.tag == tagFailure }
func (r Result[A]) IsSuccess() bool { return r.tag != tagFailure }

// Problems returns the problems carried by r, empty for a pure Success.
func (r Result[A]) Problems() Problems { return r.problems }

// Value returns the carried value. It is the zero value of A for a Failure.
func (r Result[A]) Value() A { return r.value }

// ToValue returns (value, ok) — ok is false only for Failure.
func (r Result[A]) ToValue() (A, bool) { return r.value, r.tag != tagFailure }

// Map transforms a Success/Warnings value, leaving a Failure untouched.
func Map[A, B any](r Result[A], f func(A) B) Result[B] {
	switch r.tag {
	case tagFailure:
		return FailureChain[B](r.problems)
	case tagWarnings:
		return Warnings(f(r.value), r.problems...)
	default:
		return Success(f(r.value))
	}
}

// Bind sequences r into f, additively propagating problems from both sides.
// Bind short-circuits only when r itself is a Failure — this is the "Failure
// short-circuits only within the same sibling" propagation policy of
// spec.md §7.
func Bind[A, B any](r Result[A], f func(A) Result[B]) Result[B] {
	if r.tag == tagFailure {
		return FailureChain[B](r.problems)
	}
	next := f(r.value)
	switch next.tag {
	case tagFailure:
		return FailureChain[B](Combine(r.problems, next.problems))
	case tagWarnings:
		return Warnings(next.value, Combine(r.problems, next.problems)...)
	default:
		if len(r.problems) == 0 {
			return Success(next.value)
		}
		return Warnings(next.value, r.problems...)
	}
}

// Both combines two independently-evaluated results (e.g. two siblings in a
// Group) keeping both values via the supplied combiner, and additively
// merging problems even when one side failed. A failure in one sibling never
// discards the other's contribution — spec.md §5's ordering guarantee.
func Both[A, B, C any](ra Result[A], rb Result[B], combine func(A, B) C) Result[C] {
	v := combine(ra.value, rb.value)
	ps := Combine(ra.problems, rb.problems)
	if ra.tag == tagFailure || rb.tag == tagFailure {
		return FailureChain[C](ps)
	}
	return Warnings(v, ps...)
}

// Sequence evaluates results and keeps every value, additively merging
// problems; the result is a Failure iff at least one input was.
func Sequence[A any](rs []Result[A]) Result[[]A] {
	vals := make([]A, len(rs))
	var ps Problems
	failed := false
	for i, r := range rs {
		vals[i] = r.value
		ps = Combine(ps, r.problems)
		if r.tag == tagFailure {
			failed = true
		}
	}
	if failed {
		return FailureChain[[]A](ps)
	}
	return Warnings(vals, ps...)
}
