package interpreter

import (
	"sort"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/query"
)

// applyShape runs the Filter/OrderBy/Offset/Limit extracted shape over
// elems in that fixed order — spec.md §4.2's canonical
// Limit(Offset(OrderBy(Filter(...)))) composition, applied here rather than
// pushed down, since the core has no back-end to push it down to.
func applyShape(elems []cursor.Cursor, shape query.FilterOrderByLimitShape) []cursor.Cursor {
	if shape.Pred != nil {
		filtered := make([]cursor.Cursor, 0, len(elems))
		for _, e := range elems {
			if shape.Pred(e.Focus()) {
				filtered = append(filtered, e)
			}
		}
		elems = filtered
	}
	if len(shape.OrderBy) > 0 {
		elems = orderCursors(elems, shape.OrderBy)
	}
	if shape.Offset != nil {
		n := *shape.Offset
		if n < 0 {
			n = 0
		}
		if n > len(elems) {
			n = len(elems)
		}
		elems = elems[n:]
	}
	if shape.Limit != nil {
		n := *shape.Limit
		if n < 0 {
			n = 0
		}
		if n < len(elems) {
			elems = elems[:n]
		}
	}
	return elems
}

func orderCursors(elems []cursor.Cursor, sels []query.OrderSelection) []cursor.Cursor {
	out := append([]cursor.Cursor(nil), elems...)
	sort.SliceStable(out, func(i, j int) bool {
		for _, sel := range sels {
			vi, oki := orderKey(out[i], sel.Path)
			vj, okj := orderKey(out[j], sel.Path)
			if !oki && !okj {
				continue
			}
			if !oki || !okj {
				// exactly one side is null/missing
				firstIsNull := !oki
				if sel.Nulls == query.NullsFirst {
					return firstIsNull
				}
				return !firstIsNull
			}
			c := compareValues(vi, vj)
			if c == 0 {
				continue
			}
			if sel.Direction == query.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

func orderKey(c cursor.Cursor, path []string) (cursor.Json, bool) {
	pr := cursor.Path(c, path)
	pv, ok := pr.ToValue()
	if !ok || pv == nil {
		return nil, false
	}
	cur := *pv
	if cur.IsNullable() {
		nr := cur.AsNullable()
		next, ok := nr.ToValue()
		if !ok || next == nil {
			return nil, false
		}
		cur = *next
	}
	if cur.IsNull() {
		return nil, false
	}
	lr := cur.AsLeaf()
	v, ok := lr.ToValue()
	return v, ok
}

func compareValues(a, b cursor.Json) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv, _ := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	default:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if !aok || !bok {
			return 0
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
