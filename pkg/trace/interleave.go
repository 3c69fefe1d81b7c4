package trace

import "math/big"

// Interleave computes an Interleaved computation's target values: the
// round-robin interleaving of its source columns. All sources must have equal
// length; the result has length len(froms)*len(froms[0]).
func Interleave(froms [][]*big.Int) []*big.Int {
	if len(froms) == 0 {
		return nil
	}

	n := len(froms[0])
	out := make([]*big.Int, 0, n*len(froms))

	for row := 0; row < n; row++ {
		for _, col := range froms {
			out = append(out, col[row])
		}
	}

	return out
}

// Sorted computes a Sorted computation's tos values: froms's rows sorted
// lexicographically per signs (ascending where signs[i] is true). It
// returns a fresh permutation of froms's rows rather than mutating them.
func Sorted(froms [][]*big.Int, signs []bool) [][]*big.Int {
	n := 0
	if len(froms) > 0 {
		n = len(froms[0])
	}

	rows := make([][]*big.Int, n)

	for r := 0; r < n; r++ {
		row := make([]*big.Int, len(froms))
		for c := range froms {
			row[c] = froms[c][r]
		}

		rows[r] = row
	}

	insertionSort(rows, signs)

	cols := make([][]*big.Int, len(froms))
	for c := range froms {
		cols[c] = make([]*big.Int, n)
		for r := 0; r < n; r++ {
			cols[c][r] = rows[r][c]
		}
	}

	return cols
}

func insertionSort(rows [][]*big.Int, signs []bool) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rowLess(rows[j], rows[j-1], signs); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
}

func rowLess(a, b []*big.Int, signs []bool) bool {
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

	return false
}
