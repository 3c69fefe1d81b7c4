package trace

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// ErrUnknownColumn is returned when a loaded trace names a column the
// constraint set never declared.
type ErrUnknownColumn struct {
	Module, Column string
}

func (e *ErrUnknownColumn) Error() string {
	return fmt.Sprintf("unknown column %q in module %q", e.Column, e.Module)
}

// ErrNumericParse is returned when a trace cell is neither a JSON number nor
// a decimal string.
type ErrNumericParse struct {
	Module, Column string
	Row            int
	Raw            string
}

func (e *ErrNumericParse) Error() string {
	return fmt.Sprintf("%s.%s: cannot parse %q as an integer (row %d)", e.Module, e.Column, e.Raw, e.Row)
}

// ErrInsufficientSpilling is returned when a constraint references a row
// further below 0 than the configured/available spilling for its module
// provides.
type ErrInsufficientSpilling struct {
	Module       string
	Needed, Have int
}

func (e *ErrInsufficientSpilling) Error() string {
	return fmt.Sprintf("module %q: insufficient spilling (needs %d rows, have %d)", e.Module, e.Needed, e.Have)
}

// rawTrace is the logical JSON shape of a trace file: module name to column
// name to an ordered sequence of decimal numbers or decimal strings.
type rawTrace map[string]map[string][]json.RawMessage

// Load parses a JSON trace and installs every column's values into cs's
// column store, pre-pending per-module spilling and left-padding columns
// shorter than their module's declared minimum length.
//
// spillageOverride, when non-zero, fixes the spilling depth used for every
// module instead of the depth derived from the constraint set's own Shift
// usage (CompilationConfig.Spillage); it is an error for the override to be
// smaller than what any module's constraints actually require.
func Load(cs *schema.ConstraintSet, data []byte, spillageOverride int) error {
	var raw rawTrace
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing trace: %w", err)
	}

	needed := requiredSpilling(cs)

	for module, columns := range raw {
		depth := needed[module]
		if spillageOverride != 0 {
			if spillageOverride < depth {
				return &ErrInsufficientSpilling{Module: module, Needed: depth, Have: spillageOverride}
			}

			depth = spillageOverride
		}

		minLen := cs.Store.MinLen(module)

		for name, values := range columns {
			handle, col, ok := lookupColumn(cs.Store, module, name)
			if !ok {
				return &ErrUnknownColumn{Module: module, Column: name}
			}

			xs, err := parseValues(module, name, values)
			if err != nil {
				return err
			}

			xs = padFront(xs, minLen, paddingOf(col))

			spilling := make([]*big.Int, depth)
			for i := range spilling {
				spilling[i] = paddingOf(col)
			}

			if err := cs.Store.SetColumnValue(handle, xs, spilling); err != nil {
				return err
			}
		}
	}

	return nil
}

func lookupColumn(store *schema.ColumnStore, module, name string) (ir.Handle, *schema.Column, bool) {
	for _, h := range store.IterModule(module) {
		if h.Name == name {
			if c, ok := store.Get(h); ok {
				return h, c, true
			}
		}
	}

	return ir.Handle{}, nil, false
}

func paddingOf(col *schema.Column) *big.Int {
	if col.PaddingValue != nil {
		return col.PaddingValue
	}

	return big.NewInt(0)
}

// padFront left-pads xs with v until it reaches at least n elements, leaving
// xs unchanged if it already meets the minimum.
func padFront(xs []*big.Int, n int, v *big.Int) []*big.Int {
	if len(xs) >= n {
		return xs
	}

	out := make([]*big.Int, 0, n)
	for i := 0; i < n-len(xs); i++ {
		out = append(out, v)
	}

	return append(out, xs...)
}

func parseValues(module, name string, raw []json.RawMessage) ([]*big.Int, error) {
	out := make([]*big.Int, len(raw))

	for i, v := range raw {
		n, ok := parseCell(v)
		if !ok {
			return nil, &ErrNumericParse{Module: module, Column: name, Row: i, Raw: string(v)}
		}

		out[i] = n
	}

	return out, nil
}

func parseCell(raw json.RawMessage) (*big.Int, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, ok := new(big.Int).SetString(s, 10)
		return n, ok
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		n, ok := new(big.Int).SetString(num.String(), 10)
		return n, ok
	}

	return nil, false
}
