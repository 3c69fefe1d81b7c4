package trace

import (
	"strings"

	"github.com/airlang/corset/pkg/field"
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// tupleKey renders a row's tuple of evaluated elements as a single string,
// used as the membership key for Plookup checking (multiplicity-insensitive)
// and as the multiset key for Permutation checking (occurrences counted).
func tupleKey(vs []field.Element) string {
	var b strings.Builder

	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(v.String())
	}

	return b.String()
}

func evalTuple(ev evaluator, exprs []ir.Node, row int) ([]field.Element, error) {
	out := make([]field.Element, len(exprs))

	for i, e := range exprs {
		v, err := ev.eval(e, row)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func tupleModule(cs *schema.ConstraintSet, exprs []ir.Node) string {
	for _, e := range exprs {
		if deps := e.Dependencies(); len(deps) > 0 {
			if m, err := cs.Store.ModuleFor(deps); err == nil && m != "" {
				return m
			}
		}
	}

	return ""
}

func checkPlookup(cs *schema.ConstraintSet, cfg *field.Config, c schema.Constraint) []Failure {
	ev := evaluator{store: cs.Store, cfg: cfg}

	includingModule := tupleModule(cs, c.Including())
	includedModule := tupleModule(cs, c.Included())

	table := make(map[string]bool)

	for _, row := range moduleRows(cs, includingModule, nil) {
		vs, err := evalTuple(ev, c.Including(), row)
		if err != nil {
			continue
		}

		table[tupleKey(vs)] = true
	}

	var fails []Failure

	handle := "lookup[" + includedModule + "->" + includingModule + "]"

	for _, row := range moduleRows(cs, includedModule, nil) {
		vs, err := evalTuple(ev, c.Included(), row)
		if err != nil {
			fails = append(fails, &InternalFailure{baseFailure{includedModule, handle, row}, err})
			continue
		}

		if !table[tupleKey(vs)] {
			fails = append(fails, &PlookupFailure{baseFailure{includedModule, handle, row}})
		}
	}

	return fails
}

func checkPermutation(cs *schema.ConstraintSet, cfg *field.Config, c schema.Constraint) []Failure {
	ev := evaluator{store: cs.Store, cfg: cfg}

	fromsModule := tupleModule(cs, c.Froms())
	tosModule := tupleModule(cs, c.Tos())
	handle := "permutation[" + fromsModule + "->" + tosModule + "]"

	fromsRows := moduleRows(cs, fromsModule, nil)
	tosRows := moduleRows(cs, tosModule, nil)

	var fails []Failure

	if len(fromsRows) != len(tosRows) {
		fails = append(fails, &PermutationFailure{baseFailure{tosModule, handle, 0}})
		return fails
	}

	fromCounts := make(map[string]int)

	for _, row := range fromsRows {
		vs, err := evalTuple(ev, c.Froms(), row)
		if err != nil {
			fails = append(fails, &InternalFailure{baseFailure{fromsModule, handle, row}, err})
			continue
		}

		fromCounts[tupleKey(vs)]++
	}

	var prev []field.Element

	for _, row := range tosRows {
		vs, err := evalTuple(ev, c.Tos(), row)
		if err != nil {
			fails = append(fails, &InternalFailure{baseFailure{tosModule, handle, row}, err})
			continue
		}

		fromCounts[tupleKey(vs)]--

		if prev != nil && !sortedPair(prev, vs, c.Signs()) {
			fails = append(fails, &PermutationFailure{baseFailure{tosModule, handle, row}})
		}

		prev = vs
	}

	for _, n := range fromCounts {
		if n != 0 {
			fails = append(fails, &PermutationFailure{baseFailure{tosModule, handle, -1}})
			break
		}
	}

	return fails
}

// sortedPair reports whether b follows a in tos's declared per-column sort
// order: ascending where signs[i] is true, descending otherwise, comparing
// lexicographically column by column.
func sortedPair(a, b []field.Element, signs []bool) bool {
	for i := range a {
		c := a[i].Cmp(b[i])
		if c == 0 {
			continue
		}

		if i < len(signs) && !signs[i] {
			return c > 0
		}

		return c < 0
	}

	return true
}
