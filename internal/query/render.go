package query

import (
	"fmt"
	"sort"
	"strings"
)

// Render produces a deterministic textual form of q. It is used by the
// idempotence law (spec.md §8 law 3: `merge(merge(q)) ≡ merge(q)`) as a
// structural fingerprint — two queries render identically iff they are
// structurally equal modulo the incomparable Pred/Joiner function values,
// which render only as present/absent.
func Render(q Query) string {
	var b strings.Builder
	render(&b, q)
	return b.String()
}

func render(b *strings.Builder, q Query) {
	switch v := q.(type) {
	case Empty:
		b.WriteString("Empty")
	case Skipped:
		b.WriteString("Skipped")
	case Select:
		fmt.Fprintf(b, "Select(%s,%s,", v.Name, renderArgs(v.Args))
		render(b, v.Child)
		b.WriteString(")")
	case Group:
		b.WriteString("Group(")
		for i, sub := range v.Queries {
			if i > 0 {
				b.WriteString(",")
			}
			render(b, sub)
		}
		b.WriteString(")")
	case GroupList:
		b.WriteString("GroupList(")
		for i, sub := range v.Queries {
			if i > 0 {
				b.WriteString(",")
			}
			render(b, sub)
		}
		b.WriteString(")")
	case Unique:
		b.WriteString("Unique(")
		render(b, v.Child)
		b.WriteString(")")
	case Filter:
		fmt.Fprintf(b, "Filter(%v,", v.Pred != nil)
		render(b, v.Child)
		b.WriteString(")")
	case OrderBy:
		b.WriteString("OrderBy(")
		for i, s := range v.Selections {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(b, "%s:%d:%d", strings.Join(s.Path, "."), s.Direction, s.Nulls)
		}
		b.WriteString(";")
		render(b, v.Child)
		b.WriteString(")")
	case Limit:
		fmt.Fprintf(b, "Limit(%d,", v.N)
		render(b, v.Child)
		b.WriteString(")")
	case Offset:
		fmt.Fprintf(b, "Offset(%d,", v.N)
		render(b, v.Child)
		b.WriteString(")")
	case Narrow:
		fmt.Fprintf(b, "Narrow(%s,", v.SubType)
		render(b, v.Child)
		b.WriteString(")")
	case UntypedNarrow:
		fmt.Fprintf(b, "UntypedNarrow(%s,", v.Name)
		render(b, v.Child)
		b.WriteString(")")
	case Skip:
		fmt.Fprintf(b, "Skip(%v,%v,", v.Sense, v.Cond)
		render(b, v.Child)
		b.WriteString(")")
	case Wrap:
		fmt.Fprintf(b, "Wrap(%s,", v.Name)
		render(b, v.Child)
		b.WriteString(")")
	case Rename:
		fmt.Fprintf(b, "Rename(%s,", v.Name)
		render(b, v.Child)
		b.WriteString(")")
	case Count:
		fmt.Fprintf(b, "Count(%s,", v.Name)
		render(b, v.Child)
		b.WriteString(")")
	case Introspect:
		b.WriteString("Introspect(")
		render(b, v.Child)
		b.WriteString(")")
	case Defer:
		fmt.Fprintf(b, "Defer(%s,%v,", v.RootTpe, v.Join != nil)
		render(b, v.Child)
		b.WriteString(")")
	case Component:
		fmt.Fprintf(b, "Component(%s,%v,", v.Mapping, v.Join != nil)
		render(b, v.Child)
		b.WriteString(")")
	case Environment:
		b.WriteString("Environment(")
		render(b, v.Child)
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "Unknown(%T)", v)
	}
}

func renderArgs(a Args) string {
	if a.IsEmpty() {
		return ""
	}
	names := make([]string, 0, len(a))
	for _, b := range a {
		names = append(names, fmt.Sprintf("%s=%v", b.Name, b.Value))
	}
	sort.Strings(names)
	return strings.Join(names, "&")
}

// Equal reports structural equality of two queries, comparing Pred/Joiner
// function fields only by presence (they are not comparable values).
func Equal(a, b Query) bool { return Render(a) == Render(b) }
