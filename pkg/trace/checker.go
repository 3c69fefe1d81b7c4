package trace

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/airlang/corset/pkg/field"
	"github.com/airlang/corset/pkg/schema"
	log "github.com/sirupsen/logrus"
)

// Failure is any constraint check that did not hold at a specific row (spec
// §4.8 point 3: "report any row where the result != 0 with the
// constraint's handle, the failing row"). Check failures are data, not
// bugs — they are collected and sorted rather than returned as a
// Go error.
type Failure interface {
	error
	Module() string
	Handle() string
	Row() int
}

type baseFailure struct {
	module, handle string
	row            int
}

func (f baseFailure) Module() string { return f.module }
func (f baseFailure) Handle() string { return f.handle }
func (f baseFailure) Row() int       { return f.row }

// VanishingFailure reports a Vanishes constraint that did not evaluate to 0.
type VanishingFailure struct {
	baseFailure
	Got *field.Element
}

func (f *VanishingFailure) Error() string {
	return fmt.Sprintf("constraint %q does not hold (row %d)", f.handle, f.row)
}

// RangeFailure reports an InRange constraint whose value fell outside
// [0, max).
type RangeFailure struct {
	baseFailure
}

func (f *RangeFailure) Error() string {
	return fmt.Sprintf("range constraint %q does not hold (row %d)", f.handle, f.row)
}

// NormalizationFailure reports a Normalization constraint whose inverted
// column did not hold reference's multiplicative inverse at a row.
type NormalizationFailure struct {
	baseFailure
}

func (f *NormalizationFailure) Error() string {
	return fmt.Sprintf("normalization %q does not hold (row %d)", f.handle, f.row)
}

// PlookupFailure reports an included tuple absent from the including table.
type PlookupFailure struct {
	baseFailure
}

func (f *PlookupFailure) Error() string {
	return fmt.Sprintf("lookup %q: row %d not found in including table", f.handle, f.row)
}

// PermutationFailure reports a froms/tos pair that is not a valid
// permutation under its declared sort directions.
type PermutationFailure struct {
	baseFailure
}

func (f *PermutationFailure) Error() string {
	return fmt.Sprintf("permutation %q does not hold (row %d)", f.handle, f.row)
}

// InternalFailure wraps an evaluation error that is not itself a check
// failure (an unknown column, a malformed shift, ...).
type InternalFailure struct {
	baseFailure
	Cause error
}

func (f *InternalFailure) Error() string {
	return fmt.Sprintf("%q: %v (row %d)", f.handle, f.Cause, f.row)
}

func (f *InternalFailure) Unwrap() error { return f.Cause }

// Check evaluates every constraint in cs against its loaded trace, spread
// across a work-stealing pool of goroutines bounded by threads (0 means
// runtime.GOMAXPROCS), and returns every failure sorted by
// (module, handle, row) so that the result is independent of thread count or
// scheduling order.
func Check(cs *schema.ConstraintSet, cfg *field.Config, threads uint) []Failure {
	if threads == 0 {
		threads = uint(runtime.GOMAXPROCS(0))
	}

	sem := make(chan struct{}, threads)
	results := make(chan []Failure, len(cs.Constraints))

	for i := range cs.Constraints {
		c := cs.Constraints[i]

		sem <- struct{}{}

		go func() {
			defer func() { <-sem }()
			results <- checkOne(cs, cfg, c)
		}()
	}

	var all []Failure

	for range cs.Constraints {
		batch := <-results
		all = append(all, batch...)
	}

	log.WithFields(log.Fields{"constraints": len(cs.Constraints), "failures": len(all)}).Debug("check complete")

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Module() != b.Module() {
			return a.Module() < b.Module()
		}

		if a.Handle() != b.Handle() {
			return a.Handle() < b.Handle()
		}

		return a.Row() < b.Row()
	})

	return all
}

func checkOne(cs *schema.ConstraintSet, cfg *field.Config, c schema.Constraint) []Failure {
	switch c.Kind() {
	case schema.KindVanishes:
		return checkVanishes(cs, cfg, c)
	case schema.KindInRange:
		return checkInRange(cs, cfg, c)
	case schema.KindNormalization:
		return checkNormalization(cs, cfg, c)
	case schema.KindPlookup:
		return checkPlookup(cs, cfg, c)
	case schema.KindPermutation:
		return checkPermutation(cs, cfg, c)
	default:
		return nil
	}
}

func moduleRows(cs *schema.ConstraintSet, module string, domain []int) []int {
	if domain != nil {
		return domain
	}

	length, _ := cs.Store.Length(module)

	rows := make([]int, length)
	for i := range rows {
		rows[i] = i
	}

	return rows
}

func checkVanishes(cs *schema.ConstraintSet, cfg *field.Config, c schema.Constraint) []Failure {
	ev := evaluator{store: cs.Store, cfg: cfg}

	var fails []Failure

	for _, row := range moduleRows(cs, c.Handle().Module, c.Domain()) {
		v, err := ev.eval(c.Expr(), row)
		if err != nil {
			if _, undefined := err.(*ErrUndefined); undefined {
				continue
			}

			fails = append(fails, &InternalFailure{baseFailure{c.Handle().Module, c.Handle().Display(), row}, err})

			continue
		}

		if !v.IsZero() {
			got := v
			fails = append(fails, &VanishingFailure{baseFailure{c.Handle().Module, c.Handle().Display(), row}, &got})
		}
	}

	return fails
}

func checkInRange(cs *schema.ConstraintSet, cfg *field.Config, c schema.Constraint) []Failure {
	ev := evaluator{store: cs.Store, cfg: cfg}

	var fails []Failure

	for _, row := range moduleRows(cs, c.Handle().Module, nil) {
		v, err := ev.eval(c.Expr(), row)
		if err != nil {
			if _, undefined := err.(*ErrUndefined); undefined {
				continue
			}

			fails = append(fails, &InternalFailure{baseFailure{c.Handle().Module, c.Handle().Display(), row}, err})

			continue
		}

		if v.BigInt().Cmp(c.Max()) >= 0 || v.BigInt().Sign() < 0 {
			fails = append(fails, &RangeFailure{baseFailure{c.Handle().Module, c.Handle().Display(), row}})
		}
	}

	return fails
}

func checkNormalization(cs *schema.ConstraintSet, cfg *field.Config, c schema.Constraint) []Failure {
	ev := evaluator{store: cs.Store, cfg: cfg}
	module := c.Inverted().Handle.Module

	var fails []Failure

	for _, row := range moduleRows(cs, module, nil) {
		ref, err := ev.eval(c.Reference(), row)
		if err != nil {
			if _, undefined := err.(*ErrUndefined); undefined {
				continue
			}

			fails = append(fails, &InternalFailure{baseFailure{module, c.Handle().Display(), row}, err})

			continue
		}

		raw, ok := cs.Store.Get(c.Inverted().Handle, row, false)
		if !ok {
			fails = append(fails, &InternalFailure{baseFailure{module, c.Handle().Display(), row}, &ErrUndefined{Handle: c.Inverted().Handle, Row: row}})
			continue
		}

		got := cfg.NewElement(raw)

		if got.Cmp(ref.Inverse()) != 0 {
			fails = append(fails, &NormalizationFailure{baseFailure{module, c.Handle().Display(), row}})
		}
	}

	return fails
}
