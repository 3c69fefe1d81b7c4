package binfile

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

type wireColumnRef struct {
	Handle wireHandle
}

func encodeColumnRef(r ir.ColumnRef) wireColumnRef {
	return wireColumnRef{Handle: encodeHandle(r.Handle)}
}

func decodeColumnRef(w wireColumnRef) ir.ColumnRef {
	return ir.ColumnRef{Handle: decodeHandle(w.Handle)}
}

func encodeColumnRefs(rs []ir.ColumnRef) []wireColumnRef {
	if rs == nil {
		return nil
	}

	out := make([]wireColumnRef, len(rs))
	for i, r := range rs {
		out[i] = encodeColumnRef(r)
	}

	return out
}

func decodeColumnRefs(ws []wireColumnRef) []ir.ColumnRef {
	if ws == nil {
		return nil
	}

	out := make([]ir.ColumnRef, len(ws))
	for i, w := range ws {
		out[i] = decodeColumnRef(w)
	}

	return out
}

// wireColumn mirrors schema.Column. Register is dropped: it is a lowering
// artefact (an index into the emitted register file) that pkg/lower
// recomputes deterministically from the column declarations and constraint
// set on every compile, so it carries no information a round-trip needs to
// preserve.
type wireColumn struct {
	Handle       wireHandle
	Type         wireType
	Kind         string
	Base         int
	PaddingValue string `json:",omitempty"`
	Perspective  string `json:",omitempty"`
}

func encodeColumn(c *schema.Column) wireColumn {
	w := wireColumn{
		Handle:      encodeHandle(c.Handle),
		Type:        encodeType(c.Type),
		Kind:        c.Kind.String(),
		Base:        c.Base,
		Perspective: c.Perspective,
	}

	if c.PaddingValue != nil {
		w.PaddingValue = c.PaddingValue.String()
	}

	return w
}

func decodeColumnKind(s string) (schema.Kind, error) {
	switch s {
	case "atomic":
		return schema.Atomic, nil
	case "phantom":
		return schema.Phantom, nil
	case "computed":
		return schema.Computed, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q", s)
	}
}

func decodeColumn(w wireColumn) (schema.Column, error) {
	kind, err := decodeColumnKind(w.Kind)
	if err != nil {
		return schema.Column{}, err
	}

	col := schema.Column{
		Handle:      decodeHandle(w.Handle),
		Type:        decodeType(w.Type),
		Kind:        kind,
		Base:        w.Base,
		Perspective: w.Perspective,
		Register:    schema.NewUnusedRegisterId(),
	}

	if w.PaddingValue != "" {
		v, ok := new(big.Int).SetString(w.PaddingValue, 10)
		if !ok {
			return schema.Column{}, fmt.Errorf("malformed padding value %q", w.PaddingValue)
		}

		col.PaddingValue = v
	}

	return col, nil
}

type wireArrayColumn struct {
	Handle wireHandle
	Domain []int
	Type   wireType
	Base   int
}

func encodeArrayColumn(a *schema.ArrayColumn) wireArrayColumn {
	return wireArrayColumn{
		Handle: encodeHandle(a.Handle),
		Domain: a.Domain,
		Type:   encodeType(a.Type),
		Base:   a.Base,
	}
}

func decodeArrayColumn(w wireArrayColumn) schema.ArrayColumn {
	return schema.ArrayColumn{
		Handle: decodeHandle(w.Handle),
		Domain: w.Domain,
		Type:   decodeType(w.Type),
		Base:   w.Base,
	}
}

// wireModule carries the one piece of per-module schema state that
// survives compilation independent of any loaded trace: the minimum row
// count a module's length must satisfy. Effective
// length and spilling depth are trace-dependent (pkg/trace.Load derives
// them fresh for each trace) and are never part of the compiled schema.
type wireModule struct {
	Module  string
	MinLen  int               `json:",omitempty"`
	Columns []wireColumn      `json:",omitempty"`
	Arrays  []wireArrayColumn `json:",omitempty"`
}

type wireConstraint struct {
	Kind      string
	Handle    wireHandle
	Domain    []int      `json:",omitempty"`
	Expr      *wireNode  `json:",omitempty"`
	Max       string     `json:",omitempty"`
	Included  []wireNode `json:",omitempty"`
	Including []wireNode `json:",omitempty"`
	Froms     []wireNode `json:",omitempty"`
	Tos       []wireNode `json:",omitempty"`
	Signs     []bool     `json:",omitempty"`
	Reference *wireNode  `json:",omitempty"`
	Inverted  wireColumnRef
}

func encodeConstraint(c schema.Constraint) (wireConstraint, error) {
	w := wireConstraint{Signs: c.Signs()}

	switch c.Kind() {
	case schema.KindVanishes:
		w.Kind = "vanishes"
		w.Handle = encodeHandle(c.Handle())
		w.Domain = c.Domain()

		n := encodeNode(c.Expr())
		w.Expr = &n
	case schema.KindInRange:
		w.Kind = "inrange"
		w.Handle = encodeHandle(c.Handle())

		n := encodeNode(c.Expr())
		w.Expr = &n
		w.Max = c.Max().String()
	case schema.KindPlookup:
		w.Kind = "plookup"
		w.Handle = encodeHandle(c.Handle())
		w.Included = encodeNodes(c.Included())
		w.Including = encodeNodes(c.Including())
	case schema.KindPermutation:
		w.Kind = "permutation"
		w.Froms = encodeNodes(c.Froms())
		w.Tos = encodeNodes(c.Tos())
	case schema.KindNormalization:
		w.Kind = "normalization"
		w.Handle = encodeHandle(c.Handle())

		n := encodeNode(c.Reference())
		w.Reference = &n
		w.Inverted = encodeColumnRef(c.Inverted())
	default:
		return wireConstraint{}, fmt.Errorf("unknown constraint kind %d", c.Kind())
	}

	return w, nil
}

func decodeConstraint(w wireConstraint) (schema.Constraint, error) {
	switch w.Kind {
	case "vanishes":
		expr, err := decodeNode(*w.Expr)
		if err != nil {
			return schema.Constraint{}, err
		}

		return schema.NewVanishes(decodeHandle(w.Handle), w.Domain, expr), nil
	case "inrange":
		expr, err := decodeNode(*w.Expr)
		if err != nil {
			return schema.Constraint{}, err
		}

		max, ok := new(big.Int).SetString(w.Max, 10)
		if !ok {
			return schema.Constraint{}, fmt.Errorf("malformed range bound %q", w.Max)
		}

		return schema.NewInRange(decodeHandle(w.Handle), expr, max), nil
	case "plookup":
		included, err := decodeNodes(w.Included)
		if err != nil {
			return schema.Constraint{}, err
		}

		including, err := decodeNodes(w.Including)
		if err != nil {
			return schema.Constraint{}, err
		}

		return schema.NewPlookup(decodeHandle(w.Handle), included, including), nil
	case "permutation":
		froms, err := decodeNodes(w.Froms)
		if err != nil {
			return schema.Constraint{}, err
		}

		tos, err := decodeNodes(w.Tos)
		if err != nil {
			return schema.Constraint{}, err
		}

		return schema.NewPermutation(froms, tos, w.Signs), nil
	case "normalization":
		ref, err := decodeNode(*w.Reference)
		if err != nil {
			return schema.Constraint{}, err
		}

		return schema.NewNormalization(decodeHandle(w.Handle), ref, decodeColumnRef(w.Inverted)), nil
	default:
		return schema.Constraint{}, fmt.Errorf("unknown constraint kind %q", w.Kind)
	}
}

type wireComputation struct {
	Kind   string
	Target wireColumnRef
	Expr   *wireNode       `json:",omitempty"`
	Froms  []wireColumnRef `json:",omitempty"`
	Tos    []wireColumnRef `json:",omitempty"`
	Signs  []bool          `json:",omitempty"`
}

func encodeComputation(c schema.Computation) (wireComputation, error) {
	w := wireComputation{Signs: c.Signs()}

	switch c.Kind() {
	case schema.KindComposite:
		w.Kind = "composite"
		w.Target = encodeColumnRef(c.Target())

		n := encodeNode(c.Expr())
		w.Expr = &n
	case schema.KindInterleaved:
		w.Kind = "interleaved"
		w.Target = encodeColumnRef(c.Target())
		w.Froms = encodeColumnRefs(c.Froms())
	case schema.KindSorted:
		w.Kind = "sorted"
		w.Froms = encodeColumnRefs(c.Froms())
		w.Tos = encodeColumnRefs(c.Tos())
	case schema.KindCyclicFrom:
		w.Kind = "cyclicfrom"
		w.Target = encodeColumnRef(c.Target())
		w.Froms = encodeColumnRefs(c.Froms())
	case schema.KindSortingConstraints:
		w.Kind = "sortingconstraints"
		w.Tos = encodeColumnRefs(c.Tos())
	default:
		return wireComputation{}, fmt.Errorf("unknown computation kind %d", c.Kind())
	}

	return w, nil
}

func decodeComputation(w wireComputation) (schema.Computation, error) {
	switch w.Kind {
	case "composite":
		expr, err := decodeNode(*w.Expr)
		if err != nil {
			return schema.Computation{}, err
		}

		return schema.NewComposite(decodeColumnRef(w.Target), expr), nil
	case "interleaved":
		return schema.NewInterleaved(decodeColumnRef(w.Target), decodeColumnRefs(w.Froms)), nil
	case "sorted":
		return schema.NewSorted(decodeColumnRefs(w.Froms), decodeColumnRefs(w.Tos), w.Signs), nil
	case "cyclicfrom":
		return schema.NewCyclicFrom(decodeColumnRef(w.Target), decodeColumnRefs(w.Froms)), nil
	case "sortingconstraints":
		return schema.NewSortingConstraints(decodeColumnRefs(w.Tos)), nil
	default:
		return schema.Computation{}, fmt.Errorf("unknown computation kind %q", w.Kind)
	}
}

type wirePerspectiveGuard struct {
	Module      string
	Perspective string
	Guard       wireNode
}

// wireConstraintSet mirrors schema.ConstraintSet. It is the JSON body of a
// binary file, following the header... version-tagged"). Every field is a slice
// rather than a map, so Go's struct-field marshalling order is itself the
// deterministic key order the format requires.
type wireConstraintSet struct {
	Modules           []wireModule
	Constraints       []wireConstraint
	Computations      []wireComputation
	PerspectiveGuards []wirePerspectiveGuard `json:",omitempty"`
}

// ToWire converts a compiled constraint set into its JSON-serialisable
// mirror.
func ToWire(cs *schema.ConstraintSet) (wireConstraintSet, error) {
	var out wireConstraintSet

	for _, module := range cs.Store.Modules() {
		wm := wireModule{Module: module, MinLen: cs.Store.MinLen(module)}

		for _, h := range cs.Store.IterModule(module) {
			if col, ok := cs.Store.Get(h); ok {
				wm.Columns = append(wm.Columns, encodeColumn(col))
			}
		}

		for _, h := range cs.Store.IterArraysModule(module) {
			if arr, ok := cs.Store.GetArray(h); ok {
				wm.Arrays = append(wm.Arrays, encodeArrayColumn(arr))
			}
		}

		out.Modules = append(out.Modules, wm)
	}

	for _, c := range cs.Constraints {
		wc, err := encodeConstraint(c)
		if err != nil {
			return wireConstraintSet{}, err
		}

		out.Constraints = append(out.Constraints, wc)
	}

	for _, c := range cs.Computations {
		wc, err := encodeComputation(c)
		if err != nil {
			return wireConstraintSet{}, err
		}

		out.Computations = append(out.Computations, wc)
	}

	for _, module := range cs.Store.Modules() {
		for _, perspective := range perspectivesOf(cs, module) {
			guard, ok := cs.PerspectiveGuard(module, perspective)
			if !ok {
				continue
			}

			out.PerspectiveGuards = append(out.PerspectiveGuards, wirePerspectiveGuard{
				Module:      module,
				Perspective: perspective,
				Guard:       encodeNode(guard),
			})
		}
	}

	return out, nil
}

// perspectivesOf collects the distinct perspective names declared by any
// column of module, in first-seen order, since ConstraintSet does not
// itself track the set of declared perspectives separately from the guards
// map it exposes only by (module, perspective) lookup.
func perspectivesOf(cs *schema.ConstraintSet, module string) []string {
	var out []string

	seen := make(map[string]bool)

	for _, h := range cs.Store.IterModule(module) {
		col, ok := cs.Store.Get(h)
		if !ok || col.Perspective == "" || seen[col.Perspective] {
			continue
		}

		seen[col.Perspective] = true

		out = append(out, col.Perspective)
	}

	return out
}

// FromWire reconstructs a constraint set from its wire form.
func FromWire(w wireConstraintSet) (*schema.ConstraintSet, error) {
	store := schema.NewColumnStore()

	for _, wm := range w.Modules {
		for _, wc := range wm.Columns {
			col, err := decodeColumn(wc)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", wm.Module, err)
			}

			store.Declare(col)
		}

		for _, wa := range wm.Arrays {
			store.DeclareArray(decodeArrayColumn(wa))
		}

		if wm.MinLen > 0 {
			store.SetMinLen(wm.Module, wm.MinLen)
		}
	}

	cs := schema.NewConstraintSet(store)

	for _, wc := range w.Constraints {
		c, err := decodeConstraint(wc)
		if err != nil {
			return nil, err
		}

		cs.AddConstraint(c)
	}

	for _, wc := range w.Computations {
		c, err := decodeComputation(wc)
		if err != nil {
			return nil, err
		}

		cs.AddComputation(c)
	}

	for _, wg := range w.PerspectiveGuards {
		guard, err := decodeNode(wg.Guard)
		if err != nil {
			return nil, err
		}

		cs.SetPerspectiveGuard(wg.Module, wg.Perspective, guard)
	}

	return cs, nil
}
