// Package cursor defines the Cursor protocol of spec.md §3/§4.1: a
// polymorphic, capability-based view into an application-defined data model,
// aware of the GraphQL type and schema path at its current position.
//
// Cursor is expressed as an interface carrying only the primitive
// operations; every back-end (in-memory values, a gRPC-fronted service, a
// relational mapping) implements it directly, matching the "capability set,
// not an inheritance hierarchy" design note of spec.md §9. The derived
// navigation helpers (hasPath, listPath, flatListPath, ...) are free
// functions over that interface — Go has no default interface methods, so
// they play the role the teacher's embedding-based helpers would in a
// language that has them.
package cursor

import (
	"github.com/arborql/arborql/internal/env"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/qcontext"
)

// Json is a JSON-safe Go value: string, float64, int, bool, nil, []any, or
// map[string]any. The core never imports encoding/json — it produces values
// in this shape and leaves marshaling to callers (internal/response).
type Json = any

// Cursor is the capability set of spec.md §4.1.
type Cursor interface {
	// Context returns the immutable path/resultPath/type triple at this
	// position.
	Context() qcontext.Context

	// Focus returns the underlying model value this cursor views. Its
	// shape is back-end defined; only the back-end's own Cursor methods
	// interpret it.
	Focus() any

	// Parent returns the cursor this one was projected from, or
	// (nil, false) for a root cursor.
	Parent() (Cursor, bool)

	// Env returns this cursor's own environment frame (not the full
	// lexical chain — see FullEnv).
	Env() env.Env

	IsLeaf() bool
	IsList() bool
	IsNullable() bool
	IsNull() bool
	HasField(name string) bool
	NarrowsTo(subType string) bool

	AsLeaf() problem.Result[Json]
	AsList() problem.Result[[]Cursor]
	AsNullable() problem.Result[*Cursor]
	Narrow(subType string) problem.Result[Cursor]
	Field(name string, alias string) problem.Result[Cursor]
}

// FullEnv returns the lexical chain of environments: parent.FullEnv() ⊕
// self.Env() (spec.md §3: "Envs form a lexical chain via each cursor's
// parent").
func FullEnv(c Cursor) env.Env {
	if p, ok := c.Parent(); ok {
		return FullEnv(p).Add(c.Env())
	}
	return c.Env()
}

// EnvLookup performs a typed lookup starting at c's own environment and
// walking the parent chain outward, returning the first match — spec.md
// §4.1's "tries self.env then walks parent chain".
func EnvLookup[T any](c Cursor, name string) (T, bool) {
	for cur := c; ; {
		if v, ok := env.Get[T](cur.Env(), name); ok {
			return v, true
		}
		p, ok := cur.Parent()
		if !ok {
			var zero T
			return zero, false
		}
		cur = p
	}
}

func notFound(c Cursor, name string) problem.Problem {
	return problem.New(problem.FieldNotFound, "field not found: %s", name).WithPath(c.Context().ResultPath())
}

func mismatch(c Cursor, op string) problem.Problem {
	return problem.New(problem.TypeMismatch, "%s is not valid at type %v", op, c.Context().Type()).WithPath(c.Context().ResultPath())
}

// HasPath reports whether every field in fns exists through nullable
// traversal, with no step list-typed except possibly the last intermediate
// one (spec.md §4.1). It never forces leaf materialization.
func HasPath(c Cursor, fns []string) bool {
	cursors, ok := listPathImpl(c, fns, false)
	return ok && len(cursors) >= 0
}

// Path folds c.Field along fns, transparently unwrapping Nullable at each
// step (returning (nil, false) on a null step) and requiring every step be
// non-list. It is the singular counterpart of ListPath.
func Path(c Cursor, fns []string) problem.Result[*Cursor] {
	cur := c
	for _, name := range fns {
		if cur.IsNullable() {
			nr := cur.AsNullable()
			if nr.IsFailure() {
				return problem.FailureChain[*Cursor](nr.Problems())
			}
			next := nr.Value()
			if next == nil {
				return problem.Success[*Cursor](nil)
			}
			cur = *next
		}
		fr := cur.Field(name, "")
		if fr.IsFailure() {
			return problem.FailureChain[*Cursor](fr.Problems())
		}
		cur = fr.Value()
	}
	out := cur
	return problem.Success(&out)
}

// NullableHasField reports hasField after transparently unwrapping a
// Nullable cursor (false if the cursor is currently null).
func NullableHasField(c Cursor, name string) bool {
	cur := c
	if cur.IsNullable() {
		nr := cur.AsNullable()
		next, ok := nr.ToValue()
		if !ok || next == nil {
			return false
		}
		cur = *next
	}
	return cur.HasField(name)
}

// NullableField projects Field after transparently unwrapping a Nullable
// cursor, yielding (nil, Success) when the cursor is null.
func NullableField(c Cursor, name, alias string) problem.Result[*Cursor] {
	cur := c
	if cur.IsNullable() {
		nr := cur.AsNullable()
		if nr.IsFailure() {
			return problem.FailureChain[*Cursor](nr.Problems())
		}
		next := nr.Value()
		if next == nil {
			return problem.Success[*Cursor](nil)
		}
		cur = *next
	}
	fr := cur.Field(name, alias)
	return problem.Map(fr, func(fc Cursor) *Cursor { return &fc })
}

// HasListPath reports whether fns names a valid path where every step
// except possibly the terminal one may be list-typed, transparently
// unwrapping Nullable and flat-mapping across List segments.
func HasListPath(c Cursor, fns []string) bool {
	_, ok := listPathImpl(c, fns, false)
	return ok
}

// ListPath folds along fns, transparently unwrapping nullables (a null
// intermediate contributes no cursors) and flat-mapping across list
// segments, returning the cursors reached at the terminal position.
func ListPath(c Cursor, fns []string) problem.Result[[]Cursor] {
	cursors, ok := listPathImpl(c, fns, true)
	if !ok {
		return problem.Failure[[]Cursor](mismatch(c, "listPath"))
	}
	return problem.Success(cursors)
}

// FlatListPath behaves like ListPath, additionally flattening a terminal
// list position so every returned cursor is a single element rather than a
// list cursor.
func FlatListPath(c Cursor, fns []string) problem.Result[[]Cursor] {
	r := ListPath(c, fns)
	if r.IsFailure() {
		return r
	}
	var out []Cursor
	for _, cur := range r.Value() {
		if cur.IsList() {
			lr := cur.AsList()
			if lr.IsFailure() {
				return problem.FailureChain[[]Cursor](lr.Problems())
			}
			out = append(out, lr.Value()...)
		} else {
			out = append(out, cur)
		}
	}
	return problem.Success(out)
}

func listPathImpl(c Cursor, fns []string, collectErrs bool) ([]Cursor, bool) {
	frontier := []Cursor{c}
	for _, name := range fns {
		var next []Cursor
		for _, cur := range frontier {
			unwrapped, ok := unwrapNullable(cur)
			if !ok {
				return nil, false
			}
			if unwrapped == nil {
				continue // nullable absent: contributes nothing
			}
			cur = *unwrapped
			if cur.IsList() {
				lr := cur.AsList()
				if lr.IsFailure() {
					return nil, false
				}
				for _, elem := range lr.Value() {
					fr := elem.Field(name, "")
					if fr.IsFailure() {
						return nil, false
					}
					next = append(next, fr.Value())
				}
				continue
			}
			fr := cur.Field(name, "")
			if fr.IsFailure() {
				return nil, false
			}
			next = append(next, fr.Value())
		}
		frontier = next
	}
	return frontier, true
}

// envCursor decorates a Cursor with an extra environment frame, for the
// query algebra's Environment(bind, child) node (spec.md §3). The binding
// is visible for one evaluation step: Field/Narrow/AsList/AsNullable
// delegate straight through to the inner cursor, so a projected child's own
// Parent is the inner cursor, not the envCursor — lexical scoping here
// extends exactly as far as the Environment node's own Child, matching how
// every use in this codebase consumes the binding immediately (a Filter
// predicate, an OrderBy path, a Joiner) rather than propagating it through
// further field descent.
type envCursor struct {
	Cursor
	env env.Env
}

// WithEnv returns a Cursor identical to c but whose Env() additionally
// carries bind.
func WithEnv(c Cursor, bind map[string]any) Cursor {
	return envCursor{Cursor: c, env: env.New(bind)}
}

func (e envCursor) Env() env.Env { return e.Cursor.Env().Add(e.env) }

func unwrapNullable(c Cursor) (*Cursor, bool) {
	if !c.IsNullable() {
		return &c, true
	}
	nr := c.AsNullable()
	if nr.IsFailure() {
		return nil, false
	}
	return nr.Value(), true
}
