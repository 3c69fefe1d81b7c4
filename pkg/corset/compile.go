package corset

import (
	"fmt"

	"github.com/airlang/corset/pkg/ast"
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// Compile runs the full frontend pipeline over an already-translated AST
// forest: the Definitions pass (§4.3) followed by the Resolver/Elaborator
// pass (§4.4), producing a fully elaborated constraint set. Normalisation
// and if-expansion (§4.5/§4.6) are separate passes, run by pkg/lower over
// this result.
func Compile(nodes []ast.Node) (*schema.ConstraintSet, error) {
	defs := NewDefinitions()
	if err := defs.Run(nodes); err != nil {
		return nil, fmt.Errorf("definitions pass: %w", err)
	}

	cs := schema.NewConstraintSet(defs.Store())
	resolver := NewResolver(defs.Store())

	module := ""

	for _, n := range nodes {
		switch e := n.(type) {
		case *ast.DefModule:
			module = e.Name

		case *ast.DefPerspective:
			scope, ok := defs.PerspectiveScope(module, e.Name)
			if !ok {
				return nil, fmt.Errorf("internal error: missing scope for perspective %q", e.Name)
			}

			guard, err := resolver.Elaborate(e.Guard, scope)
			if err != nil {
				return nil, fmt.Errorf("perspective %q: %w", e.Name, err)
			}

			cs.SetPerspectiveGuard(module, e.Name, guard)

		case *ast.DefConstraint:
			scope, err := scopeFor(defs, module, e.Perspective)
			if err != nil {
				return nil, err
			}

			var guard ir.Node

			if e.Guard != nil {
				guard, err = resolver.Elaborate(e.Guard, scope)
				if err != nil {
					return nil, fmt.Errorf("constraint %q guard: %w", e.Name, err)
				}
			}

			expr, err := resolver.Elaborate(e.Expr, scope)
			if err != nil {
				return nil, fmt.Errorf("constraint %q: %w", e.Name, err)
			}

			if !expr.Type().LessEq(ir.Numeric) {
				return nil, fmt.Errorf("constraint %q: expression type %v is not arithmetic", e.Name, expr.Type())
			}

			if e.Guard != nil {
				expr = ir.NewFuncall(ir.Mul, []ir.Node{guard, expr}, ir.Numeric)
			}

			cs.AddConstraint(schema.NewVanishes(ir.NewHandle(module, e.Name), e.Domain, expr))

		case *ast.DefInrange:
			scope, err := scopeFor(defs, module, "")
			if err != nil {
				return nil, err
			}

			expr, err := resolver.Elaborate(e.Expr, scope)
			if err != nil {
				return nil, fmt.Errorf("definrange: %w", err)
			}

			cs.AddConstraint(schema.NewInRange(ir.NewHandle(module, ""), expr, e.Max))

		case *ast.DefLookup:
			scope, err := scopeFor(defs, module, "")
			if err != nil {
				return nil, err
			}

			included, err := elaborateAll(resolver, e.Included, scope)
			if err != nil {
				return nil, fmt.Errorf("lookup %q: %w", e.Name, err)
			}

			including, err := elaborateAll(resolver, e.Including, scope)
			if err != nil {
				return nil, fmt.Errorf("lookup %q: %w", e.Name, err)
			}

			cs.AddConstraint(schema.NewPlookup(ir.NewHandle(module, e.Name), included, including))

		case *ast.DefInterleaving:
			froms := make([]ir.ColumnRef, len(e.Froms))
			for i, name := range e.Froms {
				froms[i] = ir.ColumnRef{Handle: ir.NewHandle(module, name)}
			}

			target := ir.ColumnRef{Handle: ir.NewHandle(module, e.Target)}
			cs.AddComputation(schema.NewInterleaved(target, froms))

		case *ast.DefPermutation:
			froms := make([]ir.Node, len(e.From))
			tos := make([]ir.Node, len(e.To))

			for i, name := range e.From {
				froms[i] = ir.NewColumn(ir.ColumnRef{Handle: ir.NewHandle(module, name)}, ir.Numeric)
			}

			for i, name := range e.To {
				tos[i] = ir.NewColumn(ir.ColumnRef{Handle: ir.NewHandle(module, name)}, ir.Numeric)
			}

			cs.AddConstraint(schema.NewPermutation(froms, tos, e.Signs))

			fromRefs := make([]ir.ColumnRef, len(froms))
			toRefs := make([]ir.ColumnRef, len(tos))

			for i, f := range froms {
				fromRefs[i] = f.Column()
			}

			for i, t := range tos {
				toRefs[i] = t.Column()
			}

			cs.AddComputation(schema.NewSorted(fromRefs, toRefs, e.Signs))
		}
	}

	return cs, nil
}

func elaborateAll(r *Resolver, exprs []ast.Node, scope *Scope) ([]ir.Node, error) {
	out := make([]ir.Node, len(exprs))

	for i, e := range exprs {
		n, err := r.Elaborate(e, scope)
		if err != nil {
			return nil, err
		}

		out[i] = n
	}

	return out, nil
}

// scopeFor returns the scope a constraint should be elaborated in: the
// named perspective's scope when one is given, otherwise the module's own
// scope.
func scopeFor(defs *Definitions, module, perspective string) (*Scope, error) {
	if perspective != "" {
		scope, ok := defs.PerspectiveScope(module, perspective)
		if !ok {
			return nil, fmt.Errorf("unknown perspective %q in module %q", perspective, module)
		}

		return scope, nil
	}

	scope, ok := defs.ModuleScope(module)
	if !ok {
		return nil, fmt.Errorf("unknown module %q", module)
	}

	return scope, nil
}
