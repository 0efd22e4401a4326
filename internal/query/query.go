// Package query implements the tagged query algebra of spec.md §3/§4.2: the
// sum type of operations an elaborated GraphQL selection compiles to, and
// its normalization (merge/flatten) rules.
//
// Grounded on the teacher's collectedFieldMap/collectFields shape
// (internal/executor/fields.go) for grouping-by-response-name, generalized
// from a flat AST field list into a recursive tree of tagged nodes because
// the core algebra must also represent filter/order/limit/narrow/defer/
// component boundaries that a plain GraphQL AST has no node for.
package query

import (
	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/problem"
)

// Query is the closed sum type of spec.md §3. Every node type below
// implements it; the interface carries no methods beyond a discriminator so
// that interpreter code pattern-matches via a type switch, mirroring how the
// teacher's executor switches on language.Selection concrete types.
type Query interface {
	queryTag() string
}

// Binding is a `name -> value` pair accompanying a Select's arguments.
// Values are scalar, enum, list, or input-object shaped (already coerced by
// elaboration — spec.md §6's input contract).
type Binding struct {
	Name  string
	Value any
}

// Args is an ordered argument list; order is preserved for deterministic
// rendering but argument identity is by Name.
type Args []Binding

// Get returns the value bound to name, if any.
func (a Args) Get(name string) (any, bool) {
	for _, b := range a {
		if b.Name == name {
			return b.Value, true
		}
	}
	return nil, false
}

// IsEmpty reports whether a carries no bindings.
func (a Args) IsEmpty() bool { return len(a) == 0 }

type Select struct {
	Name  string
	Args  Args
	Child Query
}

func (Select) queryTag() string { return "Select" }

type Group struct{ Queries []Query }

func (Group) queryTag() string { return "Group" }

// GroupList collects sibling queries' results as a list rather than merging
// them into one object's fields — used where a Component boundary or
// introspection walk needs each sibling's proto kept separately before
// final assembly.
type GroupList struct{ Queries []Query }

func (GroupList) queryTag() string { return "GroupList" }

// Unique expects Child to produce exactly one element from a list-producing
// position and yields it directly (spec.md §4.3, §8 law 7).
type Unique struct{ Child Query }

func (Unique) queryTag() string { return "Unique" }

// Pred is an opaque cursor predicate; Filter retains elements where it
// returns true. Concrete predicates are supplied by callers (often a
// mapping or a back-end), not by the core algebra itself.
type Pred func(focus any) bool

type Filter struct {
	Pred  Pred
	Child Query
}

func (Filter) queryTag() string { return "Filter" }

type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

type NullsOrder int

const (
	NullsLast NullsOrder = iota
	NullsFirst
)

// OrderSelection is one term of an OrderBy: the dotted field path to compare
// on, its direction, and where a missing value sorts.
type OrderSelection struct {
	Path      []string
	Direction SortDirection
	Nulls     NullsOrder
}

type OrderBy struct {
	Selections []OrderSelection
	Child      Query
}

func (OrderBy) queryTag() string { return "OrderBy" }

type Limit struct {
	N     int
	Child Query
}

func (Limit) queryTag() string { return "Limit" }

type Offset struct {
	N     int
	Child Query
}

func (Offset) queryTag() string { return "Offset" }

// Narrow runs Child only if the cursor's focus narrows to SubType; it is the
// elaborated form that replaces UntypedNarrow (spec.md §3, §6 input
// contract).
type Narrow struct {
	SubType string
	Child   Query
}

func (Narrow) queryTag() string { return "Narrow" }

// UntypedNarrow is the pre-elaboration form naming a type by its source
// syntax (e.g. an inline fragment's type condition) before the schema has
// resolved it to a concrete TypeRef. Elaboration replaces every
// UntypedNarrow with a Narrow before the core ever sees the query; it is
// kept here only so the algebra's sum type is exhaustive and so malformed
// unelaborated input fails loudly (BadQuery) instead of silently.
type UntypedNarrow struct {
	Name  string
	Child Query
}

func (UntypedNarrow) queryTag() string { return "UntypedNarrow" }

// Skip implements @skip/@include. Sense true means "skip when Cond is true"
// (the @skip semantics); Sense false means "skip when Cond is false" (the
// @include semantics). Cond is resolved by elaboration, never a variable
// reference at this layer.
type Skip struct {
	Sense bool
	Cond  bool
	Child Query
}

func (Skip) queryTag() string { return "Skip" }

// Wrap nests Child's emitted value under a synthetic object field Name —
// used by mapping-level joins that need to present a component's result as
// though it were one field of its parent.
type Wrap struct {
	Name  string
	Child Query
}

func (Wrap) queryTag() string { return "Wrap" }

// Rename changes the emitted field name for Child without altering which
// schema field Child selects; it is the query-algebra counterpart of a
// GraphQL field alias.
type Rename struct {
	Name  string
	Child Query
}

func (Rename) queryTag() string { return "Rename" }

// Count emits {Name: length(child-produced list)}.
type Count struct {
	Name  string
	Child Query
}

func (Count) queryTag() string { return "Count" }

// Introspect resolves Child against schema introspection (the `__schema`/
// `__type` meta-fields) rather than against the data model.
type Introspect struct {
	Child Query
}

func (Introspect) queryTag() string { return "Introspect" }

// Defer continues Child in the next stage of *this* interpreter — used when
// a value is only available after the current ProtoJson pass completes
// (e.g. because it depends on sibling results), without crossing a Mapping
// boundary. RootTpe names the GraphQL type the deferred continuation's
// cursor should be interpreted at.
type Defer struct {
	Join    Joiner
	Child   Query
	RootTpe string
}

func (Defer) queryTag() string { return "Defer" }

// Component marks a boundary where execution hands off to another
// interpreter entirely, identified by Mapping (the name of a mapping.Mapping,
// looked up in the interpreter Runtime's Registry when the Deferred is
// completed — see internal/interpreter's complete.go). Join computes the subquery to run against the
// sub-interpreter from the deferring cursor and the static Child query.
type Component struct {
	Mapping string
	Join    Joiner
	Child   Query
}

func (Component) queryTag() string { return "Component" }

// Joiner computes a subquery to hand to a sub-interpreter (or the next
// stage of this one) from the cursor at the defer point and the statically
// known continuation query — spec.md §4.3's "join is (Cursor, Query) ->
// Result<Query>". DefaultJoin returns child unchanged.
type Joiner func(c cursor.Cursor, child Query) problem.Result[Query]

// DefaultJoin is the Join used when no cross-component argument rewriting
// is required.
func DefaultJoin(_ cursor.Cursor, child Query) problem.Result[Query] { return problem.Success(child) }

// Environment extends the lexical environment for Child — spec.md §3/§4's
// Environment(env, child) node.
type Environment struct {
	Bind  map[string]any
	Child Query
}

func (Environment) queryTag() string { return "Environment" }

// Empty is the terminal no-op and the identity element of Merge (~).
type Empty struct{}

func (Empty) queryTag() string { return "Empty" }

// Skipped is a placeholder marking a node eliminated during normalization
// (e.g. a Skip whose condition statically removed it); interpreters treat it
// identically to Empty but its presence documents *why* a branch produced
// no output, which plain Empty does not.
type Skipped struct{}

func (Skipped) queryTag() string { return "Skipped" }
