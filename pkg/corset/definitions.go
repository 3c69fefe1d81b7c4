package corset

import (
	"fmt"

	"github.com/airlang/corset/pkg/ast"
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// Definitions walks a translated AST forest, populating the scope tree and
// the column store with every column, function, alias, constant and
// constraint *name* the program declares — without yet evaluating
// expressions.
type Definitions struct {
	root  *Scope
	store *schema.ColumnStore

	// moduleScopes and perspectiveScopes remember, by name, the scope each
	// `defmodule`/`defperspective` declaration produced, so that the
	// resolver's later pass can re-enter the same scope a constraint's
	// `:perspective` attribute names without re-walking the file.
	moduleScopes      map[string]*Scope
	perspectiveScopes map[perspectiveScopeKey]*Scope
}

type perspectiveScopeKey struct {
	module      string
	perspective string
}

// NewDefinitions constructs an empty Definitions pass over a fresh root
// scope and column store.
func NewDefinitions() *Definitions {
	return &Definitions{
		root:              NewRootScope(),
		store:             schema.NewColumnStore(),
		moduleScopes:      make(map[string]*Scope),
		perspectiveScopes: make(map[perspectiveScopeKey]*Scope),
	}
}

// Root returns the root scope, pre-populated with built-ins.
func (d *Definitions) Root() *Scope { return d.root }

// Store returns the column store populated by Run.
func (d *Definitions) Store() *schema.ColumnStore { return d.store }

// ModuleScope returns the scope a `defmodule` declaration produced.
func (d *Definitions) ModuleScope(module string) (*Scope, bool) {
	s, ok := d.moduleScopes[module]
	return s, ok
}

// PerspectiveScope returns the scope a `defperspective` declaration produced
// within module.
func (d *Definitions) PerspectiveScope(module, perspective string) (*Scope, bool) {
	s, ok := d.perspectiveScopes[perspectiveScopeKey{module, perspective}]
	return s, ok
}

// Run processes every top-level declaration in order, threading the active
// scope across `defmodule` switches the way a single pass over one file
// would.
func (d *Definitions) Run(nodes []ast.Node) error {
	scope := d.root

	for _, n := range nodes {
		next, err := d.reduce(n, scope)
		if err != nil {
			return err
		}

		if next != nil {
			scope = next
		}
	}

	return nil
}

// reduce processes one top-level declaration, returning a non-nil scope only
// when the declaration switches the active module (defmodule).
func (d *Definitions) reduce(n ast.Node, scope *Scope) (*Scope, error) {
	switch e := n.(type) {
	case *ast.DefModule:
		next, err := scope.SwitchToModule(e.Name)
		if err != nil {
			return nil, err
		}

		next.Public(true)
		d.moduleScopes[e.Name] = next

		return next, nil

	case *ast.DefColumns:
		for _, col := range e.Columns {
			if err := d.reduceColumn(col, scope); err != nil {
				return nil, err
			}
		}

		return nil, nil

	case *ast.DefPerspective:
		inner, err := scope.Derive("in-" + e.Name)
		if err != nil {
			return nil, err
		}

		inner.Public(true)

		if _, err := inner.WithPerspective(e.Name); err != nil {
			return nil, err
		}

		d.perspectiveScopes[perspectiveScopeKey{scope.Module(), e.Name}] = inner

		for _, col := range e.Columns {
			if err := d.reduceColumn(col, inner); err != nil {
				return nil, err
			}
		}

		return nil, nil

	case *ast.DefInterleaving:
		handle := handleIn(scope, e.Target)
		node := ir.NewColumn(ir.ColumnRef{Handle: handle}, ir.Numeric)

		if err := scope.InsertSymbol(e.Target, node); err != nil {
			return nil, err
		}

		d.store.Declare(schema.Column{
			Handle:      handle,
			Type:        ir.Numeric,
			Kind:        schema.Phantom,
			Perspective: scope.Perspective(),
		})

		return nil, nil

	case *ast.DefConsts:
		for _, c := range e.Consts {
			if err := scope.InsertConstant(c.Name, ir.NewConst(c.Value)); err != nil {
				return nil, err
			}
		}

		return nil, nil

	case *ast.DefPermutation:
		if len(e.To) != len(e.From) {
			return nil, fmt.Errorf("cardinality mismatch in permutation declaration: %v vs %v", e.From, e.To)
		}

		for _, to := range e.To {
			handle := handleIn(scope, to)
			node := ir.NewColumn(ir.ColumnRef{Handle: handle}, ir.Numeric)

			if err := scope.InsertSymbol(to, node); err != nil {
				return nil, fmt.Errorf("while defining permutation: %w", err)
			}

			d.store.Declare(schema.Column{Handle: handle, Type: ir.Numeric, Kind: schema.Phantom, Perspective: scope.Perspective()})
		}

		return nil, nil

	case *ast.DefAliases:
		for _, alias := range e.Aliases {
			if err := scope.InsertAlias(alias.From, alias.To); err != nil {
				return nil, err
			}
		}

		return nil, nil

	case *ast.DefAlias:
		return nil, scope.InsertAlias(e.From, e.To)

	case *ast.DefunAlias:
		return nil, scope.InsertFunAlias(e.From, e.To)

	case *ast.DefFun:
		fn := NewFunction(e.Name, Specialization{
			Pure:    e.Pure,
			Args:    e.Args,
			OutType: e.OutType,
			Body:    e.Body,
			NoWarn:  e.NoWarn,
		})

		return nil, scope.InsertFunction(e.Name, fn)

	case *ast.DefConstraint:
		return nil, scope.InsertConstraint(e.Name)

	case *ast.DefLookup:
		return nil, scope.InsertConstraint(e.Name)

	case *ast.DefInrange:
		// Anonymous; nothing to register in the symbol table.
		return nil, nil

	case *ast.BlockComment, *ast.InlineComment:
		return nil, nil

	default:
		return nil, fmt.Errorf("unexpected top-level declaration %T", n)
	}
}

// reduceColumn registers one column (scalar or array) of a DefColumns or
// DefPerspective block, in both the scope's symbol table and the column
// store.
func (d *Definitions) reduceColumn(col ast.ColumnDecl, scope *Scope) error {
	handle := handleIn(scope, col.Name)
	typ := irTypeOf(col.Type)
	kind := irKindOf(col.Kind)

	if col.ArrayDomain != nil {
		for _, i := range col.ArrayDomain {
			ith := handle.Ith(i)
			node := ir.NewColumn(ir.ColumnRef{Handle: ith}, typ)

			if err := scope.InsertUsedSymbol(ith.Name, node); err != nil {
				return err
			}

			d.store.Declare(schema.Column{
				Handle: ith, Type: typ, Kind: schema.Atomic, Base: col.Base,
				Perspective: scope.Perspective(),
			})
		}

		arrNode := ir.NewArrayColumn(ir.ColumnRef{Handle: handle}, col.ArrayDomain, typ)
		if err := scope.InsertSymbol(col.Name, arrNode); err != nil {
			return err
		}

		d.store.DeclareArray(schema.ArrayColumn{Handle: handle, Domain: col.ArrayDomain, Type: typ, Base: col.Base})

		return nil
	}

	storeKind := kind
	if kind == schema.Computed {
		// A DefColumn never carries its own Computation at declaration time;
		// the computation is attached later by whichever pass derives it
		// (normalisation, interleaving, ...). Until then it behaves as a
		// Phantom column for symbol-resolution purposes.
		storeKind = schema.Phantom
	}

	node := ir.NewColumn(ir.ColumnRef{Handle: handle}, typ)
	if err := scope.InsertSymbol(col.Name, node); err != nil {
		return err
	}

	d.store.Declare(schema.Column{
		Handle:       handle,
		Type:         typ,
		Kind:         storeKind,
		Base:         col.Base,
		PaddingValue: col.PaddingValue,
		Perspective:  scope.Perspective(),
	})

	return nil
}

func handleIn(scope *Scope, name string) ir.Handle {
	if p := scope.Perspective(); p != "" {
		return ir.NewPerspectiveHandle(scope.Module(), name, p)
	}

	return ir.NewHandle(scope.Module(), name)
}

func irTypeOf(t ast.ColumnType) ir.Type {
	if t.Name == "bool" || t.Width == 1 {
		return ir.Boolean
	}

	return ir.NumericWidth(t.Width)
}

func irKindOf(k ast.ColumnKind) schema.Kind {
	switch k {
	case ast.KindAtomic:
		return schema.Atomic
	case ast.KindPhantom:
		return schema.Phantom
	case ast.KindComputed:
		return schema.Computed
	default:
		return schema.Atomic
	}
}
