package query

import "sort"

// MkPathQuery produces a tree of Selects covering the union of paths
// (spec.md §4.2): one-element paths become leaf Selects; multi-element
// paths are grouped by head field name and recursed on the tails. Input
// order is not significant; output field order is sorted by name so the
// result is deterministic regardless of path order.
func MkPathQuery(paths [][]string) Query {
	if len(paths) == 0 {
		return Empty{}
	}

	byHead := map[string][][]string{}
	var heads []string
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		head := p[0]
		if _, seen := byHead[head]; !seen {
			heads = append(heads, head)
		}
		byHead[head] = append(byHead[head], p[1:])
	}
	sort.Strings(heads)

	selects := make([]Query, 0, len(heads))
	for _, head := range heads {
		tails := byHead[head]
		var child Query = Empty{}
		nonEmptyTails := make([][]string, 0, len(tails))
		leaf := false
		for _, t := range tails {
			if len(t) == 0 {
				leaf = true
				continue
			}
			nonEmptyTails = append(nonEmptyTails, t)
		}
		if len(nonEmptyTails) > 0 {
			child = MkPathQuery(nonEmptyTails)
		}
		_ = leaf // a one-element path contributes only the Select itself, Child stays Empty
		selects = append(selects, Select{Name: head, Child: child})
	}
	if len(selects) == 1 {
		return selects[0]
	}
	return Group{Queries: selects}
}
