package schema

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/ir"
)

// ErrLengthMismatch is returned when a module's columns disagree on their
// row count: the first column loaded for a module fixes its effective
// length; every other column must match.
type ErrLengthMismatch struct {
	Module   string
	Expected int
	Got      int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("module %q: length mismatch (expected %d, got %d)", e.Module, e.Expected, e.Got)
}

// moduleState tracks the per-module bookkeeping a ColumnStore maintains:
// the effective row count (fixed by the first column loaded), the minimum
// length required by declarations needing a power-of-two length (e.g. range
// proofs), and the spilling available for negative-row access.
type moduleState struct {
	length   int
	lengthOk bool
	minLen   int
	spilling int
}

// columnData holds a loaded column's raw trace values plus whatever padding
// rows precede row 0 (spilling). Values are kept as unbounded integers; they
// are only reduced into a field.Element at the point the checker evaluates
// an expression against a configured field.
type columnData struct {
	values  []*big.Int
	padding *big.Int
}

// ColumnStore is the constraint set's column declaration table plus, once a
// trace has been loaded, each column's raw values.
type ColumnStore struct {
	columns      map[ir.Handle]*Column
	arrays       map[ir.Handle]*ArrayColumn
	order        map[string][]ir.Handle
	arrayOrder   map[string][]ir.Handle
	modules      []string
	moduleSeen   map[string]bool
	moduleStates map[string]*moduleState
	data         map[ir.Handle]*columnData
}

// NewColumnStore constructs an empty column store.
func NewColumnStore() *ColumnStore {
	return &ColumnStore{
		columns:      make(map[ir.Handle]*Column),
		arrays:       make(map[ir.Handle]*ArrayColumn),
		order:        make(map[string][]ir.Handle),
		arrayOrder:   make(map[string][]ir.Handle),
		moduleSeen:   make(map[string]bool),
		moduleStates: make(map[string]*moduleState),
		data:         make(map[ir.Handle]*columnData),
	}
}

func (s *ColumnStore) touchModule(module string) *moduleState {
	if !s.moduleSeen[module] {
		s.moduleSeen[module] = true
		s.modules = append(s.modules, module)
	}

	st, ok := s.moduleStates[module]
	if !ok {
		st = &moduleState{}
		s.moduleStates[module] = st
	}

	return st
}

// Declare registers a new column declaration. It panics on a duplicate
// handle; by construction the symbol table (pkg/corset) rejects redefinition
// before a column ever reaches the store, so a duplicate here indicates an
// internal compiler error rather than a user-facing one.
func (s *ColumnStore) Declare(col Column) {
	if _, exists := s.columns[col.Handle]; exists {
		panic(fmt.Sprintf("internal error: duplicate column %s", col.Handle.Display()))
	}

	s.columns[col.Handle] = &col
	s.touchModule(col.Handle.Module)
	s.order[col.Handle.Module] = append(s.order[col.Handle.Module], col.Handle)
}

// DeclareArray registers an array column sentinel, used to validate `nth`.
func (s *ColumnStore) DeclareArray(arr ArrayColumn) {
	s.arrays[arr.Handle] = &arr
	s.touchModule(arr.Handle.Module)
	s.arrayOrder[arr.Handle.Module] = append(s.arrayOrder[arr.Handle.Module], arr.Handle)
}

// Get returns the declaration of a scalar column.
func (s *ColumnStore) Get(handle ir.Handle) (*Column, bool) {
	c, ok := s.columns[handle]
	return c, ok
}

// GetArray returns the declaration of an array column sentinel.
func (s *ColumnStore) GetArray(handle ir.Handle) (*ArrayColumn, bool) {
	a, ok := s.arrays[handle]
	return a, ok
}

// SetRegister assigns the lowered register identifier for a column.
func (s *ColumnStore) SetRegister(handle ir.Handle, reg RegisterId) {
	if c, ok := s.columns[handle]; ok {
		c.Register = reg
	}
}

// Modules returns every module name that owns at least one column, in
// first-declared order (determinism).
func (s *ColumnStore) Modules() []string {
	out := make([]string, len(s.modules))
	copy(out, s.modules)

	return out
}

// IterModule returns every column handle declared in a module, in a stable
// (declaration) order.
func (s *ColumnStore) IterModule(module string) []ir.Handle {
	out := make([]ir.Handle, len(s.order[module]))
	copy(out, s.order[module])

	return out
}

// IterArraysModule returns every array column sentinel handle declared in a
// module, in a stable (declaration) order.
func (s *ColumnStore) IterArraysModule(module string) []ir.Handle {
	out := make([]ir.Handle, len(s.arrayOrder[module]))
	copy(out, s.arrayOrder[module])

	return out
}

// ErrCrossModuleExpression is returned when an expression's column
// dependencies span more than one module, so no single module can own a
// column synthesised from it.
type ErrCrossModuleExpression struct {
	Modules []string
}

func (e *ErrCrossModuleExpression) Error() string {
	return fmt.Sprintf("expression references columns from multiple modules: %v", e.Modules)
}

// ModuleFor returns the single module every handle in deps belongs to. It is
// an error for deps to span more than one module.
func (s *ColumnStore) ModuleFor(deps []ir.Handle) (string, error) {
	var found []string

	seen := make(map[string]bool)

	for _, h := range deps {
		if !seen[h.Module] {
			seen[h.Module] = true
			found = append(found, h.Module)
		}
	}

	if len(found) > 1 {
		return "", &ErrCrossModuleExpression{Modules: found}
	}

	if len(found) == 0 {
		return "", nil
	}

	return found[0], nil
}

// SetMinLen records that module must have at least n rows (e.g. a
// power-of-two length required for a range proof).
func (s *ColumnStore) SetMinLen(module string, n int) {
	st := s.touchModule(module)
	if n > st.minLen {
		st.minLen = n
	}
}

// MinLen returns the minimum row count required of a module.
func (s *ColumnStore) MinLen(module string) int {
	if st, ok := s.moduleStates[module]; ok {
		return st.minLen
	}

	return 0
}

// EffectiveLenOrSet returns the stored effective length of a module, fixing
// it to len on the first call for that module; subsequent calls must supply
// the same length or an ErrLengthMismatch is returned.
func (s *ColumnStore) EffectiveLenOrSet(module string, length int) (int, error) {
	st := s.touchModule(module)

	if !st.lengthOk {
		st.length = length
		st.lengthOk = true

		return length, nil
	}

	if st.length != length {
		return 0, &ErrLengthMismatch{module, st.length, length}
	}

	return st.length, nil
}

// Length returns a module's effective row count, and whether it has been
// established yet (i.e. whether any column has been loaded).
func (s *ColumnStore) Length(module string) (int, bool) {
	if st, ok := s.moduleStates[module]; ok && st.lengthOk {
		return st.length, true
	}

	return 0, false
}

// SetSpilling records the spilling (negative-row padding depth) available
// for an entire module. All columns in a module share the same spilling
// depth, matching how the trace loader pre-pends padding uniformly.
func (s *ColumnStore) SetSpilling(module string, n int) {
	s.touchModule(module).spilling = n
}

// SpillingForColumn returns the number of negative-index padding rows
// available for a column's module, or 0 if none was set.
func (s *ColumnStore) SpillingForColumn(handle ir.Handle) int {
	if st, ok := s.moduleStates[handle.Module]; ok {
		return st.spilling
	}

	return 0
}

// SetColumnValue installs a trace column's values. The first column loaded
// for a module fixes that module's effective length; every subsequent
// column in the same module must agree, or ErrLengthMismatch is returned.
func (s *ColumnStore) SetColumnValue(handle ir.Handle, values []*big.Int, spilling []*big.Int) error {
	col, ok := s.columns[handle]
	if !ok {
		return fmt.Errorf("unknown column %s", handle.Display())
	}

	if _, err := s.EffectiveLenOrSet(handle.Module, len(values)); err != nil {
		return err
	}

	s.SetSpilling(handle.Module, len(spilling))

	data := &columnData{values: append(append([]*big.Int{}, spilling...), values...)}
	if col.PaddingValue != nil {
		data.padding = col.PaddingValue
	}

	s.data[handle] = data

	return nil
}

// Get returns the value stored for a column at the given logical row
// (0-indexed from the first post-spilling row). Negative rows read into the
// spilling region, returning the column's padding value (or zero) once
// spilling is exhausted. allowPastEnd permits reading any row beyond the
// module's effective length, returning the padding value; without it, a
// past-end read returns (nil,false).
func (s *ColumnStore) Get(handle ir.Handle, row int, allowPastEnd bool) (*big.Int, bool) {
	data, ok := s.data[handle]
	if !ok {
		return nil, false
	}

	spilling := s.SpillingForColumn(handle)
	idx := row + spilling

	if idx < 0 {
		return s.paddingOf(data), true
	}

	if idx >= len(data.values) {
		if allowPastEnd {
			return s.paddingOf(data), true
		}

		return nil, false
	}

	return data.values[idx], true
}

func (s *ColumnStore) paddingOf(data *columnData) *big.Int {
	if data.padding != nil {
		return data.padding
	}

	return big.NewInt(0)
}
