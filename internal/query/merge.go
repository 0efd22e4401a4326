package query

// Merge implements `~`: associative combination with Empty as identity,
// flattening Group boundaries one level (spec.md §3 invariant:
// `Group(Group xs, ys) ≡ Group(xs ++ ys)`; §8 law 1).
func Merge(a, b Query) Query {
	if isEmpty(a) {
		return b
	}
	if isEmpty(b) {
		return a
	}
	return Group{Queries: append(flattenGroup(a), flattenGroup(b)...)}
}

func isEmpty(q Query) bool {
	_, ok := q.(Empty)
	return ok
}

// flattenGroup returns q's top-level children as a flat slice: a bare Group
// contributes its Queries (itself flattened one further level per
// mergeQueries step 2), anything else contributes itself as a singleton.
func flattenGroup(q Query) []Query {
	g, ok := q.(Group)
	if !ok {
		return []Query{q}
	}
	out := make([]Query, 0, len(g.Queries))
	for _, sub := range g.Queries {
		if inner, ok := sub.(Group); ok {
			out = append(out, inner.Queries...)
		} else {
			out = append(out, sub)
		}
	}
	return out
}

// renamedSelect is the canonical decomposition of PossiblyRenamedSelect
// (spec.md §4.2): a bare Select (resultName == select.Name) or a Rename
// wrapping a Select.
type renamedSelect struct {
	outer      Query // the original node, for Rename preservation
	sel        Select
	resultName string
}

// AsPossiblyRenamedSelect recognizes the `Rename(name, Select(...))` or bare
// `Select` pattern, returning the decomposition and true, or false if q is
// neither.
func AsPossiblyRenamedSelect(q Query) (sel Select, resultName string, ok bool) {
	switch v := q.(type) {
	case Select:
		return v, v.Name, true
	case Rename:
		if inner, ok := v.Child.(Select); ok {
			return inner, v.Name, true
		}
	}
	return Select{}, "", false
}

// MergeQueries implements spec.md §4.2's mergeQueries algorithm:
//  1. Drop Empty.
//  2. Flatten nested Groups one level.
//  3. Partition into possibly-renamed Selects and other nodes.
//  4. Group selects by (fieldName, resultName); merge children recursively,
//     preserving the outermost Rename and keeping the first non-empty Args
//     (the permissive sibling-argument-merge policy SPEC_FULL.md §"OPEN
//     QUESTION DECISIONS" #2 chooses).
//  5. Emit Group(others ++ merged-selects), in first-seen order.
func MergeQueries(qs []Query) Query {
	var flat []Query
	for _, q := range qs {
		if isEmpty(q) {
			continue
		}
		flat = append(flat, flattenGroup(q)...)
	}
	if len(flat) == 0 {
		return Empty{}
	}
	if len(flat) == 1 {
		return flat[0]
	}

	type key struct{ field, result string }
	var order []key
	groups := map[key][]renamedSelect{}
	var others []Query

	for _, q := range flat {
		if sel, resultName, ok := AsPossiblyRenamedSelect(q); ok {
			k := key{sel.Name, resultName}
			if _, seen := groups[k]; !seen {
				order = append(order, k)
			}
			groups[k] = append(groups[k], renamedSelect{outer: q, sel: sel, resultName: resultName})
			continue
		}
		others = append(others, q)
	}

	merged := make([]Query, 0, len(order))
	for _, k := range order {
		group := groups[k]
		merged = append(merged, mergeSelectGroup(group))
	}

	out := make([]Query, 0, len(others)+len(merged))
	out = append(out, others...)
	out = append(out, merged...)
	if len(out) == 1 {
		return out[0]
	}
	return Group{Queries: out}
}

func mergeSelectGroup(group []renamedSelect) Query {
	first := group[0]
	children := make([]Query, 0, len(group))
	args := first.sel.Args
	renamed := false
	for _, rs := range group {
		children = append(children, rs.sel.Child)
		if args.IsEmpty() && !rs.sel.Args.IsEmpty() {
			args = rs.sel.Args
		}
		if _, ok := rs.outer.(Rename); ok {
			renamed = true
		}
	}
	merged := Select{Name: first.sel.Name, Args: args, Child: MergeQueries(children)}
	if renamed && first.resultName != first.sel.Name {
		return Rename{Name: first.resultName, Child: merged}
	}
	return merged
}

// FilterOrderByLimit recognizes the normalized shape
// Limit(Offset(OrderBy(Filter(pred, q)))), any layer optional — the
// extractor of spec.md §4.2 that lets back-ends like SQL recognize
// slice-plus-predicate shapes and push them down. Directly nested Filters
// are folded into one Pred that holds only when every predicate holds.
type FilterOrderByLimitShape struct {
	Pred       Pred
	OrderBy    []OrderSelection
	Offset     *int
	Limit      *int
	Underlying Query
}

func MatchFilterOrderByLimit(q Query) FilterOrderByLimitShape {
	var shape FilterOrderByLimitShape
	cur := q
	if l, ok := cur.(Limit); ok {
		n := l.N
		shape.Limit = &n
		cur = l.Child
	}
	if o, ok := cur.(Offset); ok {
		n := o.N
		shape.Offset = &n
		cur = o.Child
	}
	if ob, ok := cur.(OrderBy); ok {
		shape.OrderBy = ob.Selections
		cur = ob.Child
	}
	if f, ok := cur.(Filter); ok {
		shape.Pred = f.Pred
		cur = f.Child
		for {
			inner, ok := cur.(Filter)
			if !ok {
				break
			}
			outer, next := shape.Pred, inner.Pred
			shape.Pred = func(focus any) bool { return outer(focus) && next(focus) }
			cur = inner.Child
		}
	}
	shape.Underlying = cur
	return shape
}
