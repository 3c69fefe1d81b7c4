package corset

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/ast"
	"github.com/airlang/corset/pkg/ir"
	"github.com/airlang/corset/pkg/schema"
)

// Resolver walks an already-translated
// AST body, resolving every symbol and function call against a Scope, and
// produces a fully typed pkg/ir tree. It shares the column store populated
// by the Definitions pass so that array-index bounds can be checked as soon
// as a constant index is seen.
type Resolver struct {
	store *schema.ColumnStore
}

// NewResolver constructs a resolver over a column store already populated by
// a Definitions pass.
func NewResolver(store *schema.ColumnStore) *Resolver {
	return &Resolver{store: store}
}

// elabCtx threads the active scope and, while elaborating the body of a pure
// function, the set of parameter names that body is allowed to reference.
type elabCtx struct {
	scope  *Scope
	pure   bool
	params map[string]bool
}

// ImpureReferenceError is raised when a `defpurefun` body reads a column
// that is not one of its own parameters.
type ImpureReferenceError struct {
	Function string
	Column   ir.Handle
}

func (e *ImpureReferenceError) Error() string {
	return fmt.Sprintf("impure reference to column %s inside pure function %q", e.Column.Display(), e.Function)
}

// Elaborate resolves and type-checks a constraint/lookup/permutation body
// against scope, then constant-folds the result.
func (r *Resolver) Elaborate(expr ast.Node, scope *Scope) (ir.Node, error) {
	n, err := r.elaborate(expr, elabCtx{scope: scope})
	if err != nil {
		return ir.Node{}, err
	}

	return foldConstants(n), nil
}

func (r *Resolver) elaborate(n ast.Node, ctx elabCtx) (ir.Node, error) {
	switch e := n.(type) {
	case *ast.Value:
		return ir.NewConst(e.Val), nil
	case *ast.Symbol:
		return r.elaborateSymbol(e, ctx)
	case *ast.Keyword:
		return ir.Node{}, fmt.Errorf("unexpected keyword %q in expression position", e.Name)
	case *ast.Range:
		return ir.Node{}, fmt.Errorf("a range may only appear as a `for` loop's domain")
	case *ast.IndexedSymbol:
		arrNode, err := r.elaborateSymbol(&ast.Symbol{Name: e.Name}, ctx)
		if err != nil {
			return ir.Node{}, err
		}

		idxNode, err := r.elaborate(e.Index, ctx)
		if err != nil {
			return ir.Node{}, err
		}

		return r.elaborateNth(arrNode, idxNode)
	case *ast.List:
		return r.elaborateList(e, ctx)
	default:
		return ir.Node{}, fmt.Errorf("unsupported expression node %T", n)
	}
}

func (r *Resolver) elaborateSymbol(e *ast.Symbol, ctx elabCtx) (ir.Node, error) {
	node, err := ctx.scope.ResolveSymbol(e.Name)
	if err != nil {
		return ir.Node{}, err
	}

	if ctx.pure && !ctx.params[e.Name] && (node.Kind() == ir.NodeColumn || node.Kind() == ir.NodeArrayColumn) {
		return ir.Node{}, &ImpureReferenceError{Column: node.Column().Handle}
	}

	return node, nil
}

func (r *Resolver) elaborateList(l *ast.List, ctx elabCtx) (ir.Node, error) {
	if len(l.Elements) == 0 {
		return ir.Node{}, fmt.Errorf("empty expression")
	}

	head, ok := l.Elements[0].(*ast.Symbol)
	if !ok {
		return ir.Node{}, fmt.Errorf("expected a function symbol in head position")
	}

	if head.Name == "for" {
		return r.elaborateFor(l, ctx)
	}

	if head.Name == "nth" {
		if len(l.Elements) != 3 {
			return ir.Node{}, fmt.Errorf("nth: expected 2 arguments, but received %d", len(l.Elements)-1)
		}

		arrNode, err := r.elaborate(l.Elements[1], ctx)
		if err != nil {
			return ir.Node{}, err
		}

		idxNode, err := r.elaborate(l.Elements[2], ctx)
		if err != nil {
			return ir.Node{}, err
		}

		return r.elaborateNth(arrNode, idxNode)
	}

	_, fn, isBuiltin, err := ctx.scope.ResolveFunction(head.Name)
	if err == nil {
		if isBuiltin {
			return r.elaborateIntrinsic(head.Name, l.Elements[1:], ctx)
		}

		return r.elaborateCall(head.Name, fn, l.Elements[1:], ctx)
	}

	// Not a function: perhaps `(arr i)` sugar for `(nth arr i)`, where arr is
	// an array column's sentinel symbol.
	if sym, symErr := ctx.scope.ResolveSymbol(head.Name); symErr == nil && sym.Kind() == ir.NodeArrayColumn {
		if len(l.Elements) != 2 {
			return ir.Node{}, fmt.Errorf("%s: expected 1 index argument, but received %d", head.Name, len(l.Elements)-1)
		}

		idxNode, idxErr := r.elaborate(l.Elements[1], ctx)
		if idxErr != nil {
			return ir.Node{}, idxErr
		}

		return r.elaborateNth(sym, idxNode)
	}

	return ir.Node{}, err
}

// elaborateNth implements both the explicit `(nth arr i)` call and the bare
// `(arr i)` sugar: when i is a compile-time constant the access resolves
// directly to the i-th sibling column (and is bounds-checked immediately
// against the array's declared domain); otherwise it remains a runtime Nth
// funcall for the checker to resolve row by row.
func (r *Resolver) elaborateNth(arrNode, idxNode ir.Node) (ir.Node, error) {
	if arrNode.Kind() != ir.NodeArrayColumn {
		return ir.Node{}, fmt.Errorf("nth: expected an array column, got %v", arrNode.Kind())
	}

	handle := arrNode.Column().Handle

	if idxNode.IsConst() {
		idx := int(idxNode.ConstValue().Int64())

		arr, ok := r.store.GetArray(handle)
		if !ok {
			return ir.Node{}, fmt.Errorf("internal error: unknown array column %s", handle.Display())
		}

		if !arr.Contains(idx) {
			return ir.Node{}, &schema.ErrOutOfRange{Array: handle, Index: idx}
		}

		return ir.NewColumn(ir.ColumnRef{Handle: arr.ElementHandle(idx)}, arrNode.Type()), nil
	}

	return ir.NewFuncall(ir.Nth, []ir.Node{arrNode, idxNode}, arrNode.Type()), nil
}

// elaborateFor expands `(for i RANGE BODY)` by binding the induction
// variable to each member of RANGE as a scope-local constant and
// re-elaborating BODY once per value, sequencing the results with Begin.
func (r *Resolver) elaborateFor(l *ast.List, ctx elabCtx) (ir.Node, error) {
	if len(l.Elements) != 4 {
		return ir.Node{}, fmt.Errorf("for: expected 3 arguments, but received %d", len(l.Elements)-1)
	}

	sym, ok := l.Elements[1].(*ast.Symbol)
	if !ok {
		return ir.Node{}, fmt.Errorf("for: expected an induction variable symbol")
	}

	rng, ok := l.Elements[2].(*ast.Range)
	if !ok {
		return ir.Node{}, fmt.Errorf("for: expected a range as the second argument")
	}

	body := l.Elements[3]

	var results []ir.Node

	for _, v := range rng.Values {
		iterScope, err := ctx.scope.Derive("for-body")
		if err != nil {
			return ir.Node{}, err
		}

		if err := iterScope.InsertConstant(sym.Name, ir.NewConst(big.NewInt(int64(v)))); err != nil {
			return ir.Node{}, err
		}

		n, err := r.elaborate(body, elabCtx{scope: iterScope, pure: ctx.pure, params: ctx.params})
		if err != nil {
			return ir.Node{}, err
		}

		results = append(results, n)
	}

	if len(results) == 0 {
		return ir.VoidNode, nil
	}

	return ir.NewFuncall(ir.Begin, results, results[len(results)-1].Type()), nil
}

// elaborateCall substitutes a user function's argument IR for its formal
// parameters and elaborates its body in the resulting frame.
func (r *Resolver) elaborateCall(name string, fn *Function, argExprs []ast.Node, ctx elabCtx) (ir.Node, error) {
	spec := fn.Specializations[0]

	if len(argExprs) != len(spec.Args) {
		return ir.Node{}, fmt.Errorf("%s: expected %d argument(s), but received %d", name, len(spec.Args), len(argExprs))
	}

	args := make([]ir.Node, len(argExprs))

	for i, e := range argExprs {
		n, err := r.elaborate(e, ctx)
		if err != nil {
			return ir.Node{}, err
		}

		args[i] = n
	}

	callScope, err := ctx.scope.Derive("call-" + name)
	if err != nil {
		return ir.Node{}, err
	}

	params := make(map[string]bool, len(spec.Args))

	for i, p := range spec.Args {
		if err := callScope.InsertSymbol(p.Name, args[i]); err != nil {
			return ir.Node{}, err
		}

		params[p.Name] = true
	}

	result, err := r.elaborate(spec.Body, elabCtx{scope: callScope, pure: spec.Pure, params: params})
	if err != nil {
		if impure, ok := err.(*ImpureReferenceError); ok {
			impure.Function = name
			return ir.Node{}, impure
		}

		return ir.Node{}, err
	}

	return result, nil
}

// elaborateIntrinsic elaborates the arguments of a built-in call, validates
// its arity, and computes its result type per the compiler's type-propagation
// table.
func (r *Resolver) elaborateIntrinsic(name string, argExprs []ast.Node, ctx elabCtx) (ir.Node, error) {
	intrinsic := builtinIntrinsics[name]

	args := make([]ir.Node, len(argExprs))

	for i, e := range argExprs {
		n, err := r.elaborate(e, ctx)
		if err != nil {
			return ir.Node{}, err
		}

		args[i] = n
	}

	if err := ir.ArityOf(intrinsic).Validate(len(args)); err != nil {
		return ir.Node{}, fmt.Errorf("%s: %w", name, err)
	}

	return ir.NewFuncall(intrinsic, args, typeOfCall(intrinsic, args)), nil
}

// typeOfCall implements the intrinsic type-propagation table.
func typeOfCall(i ir.Intrinsic, args []ir.Node) ir.Type {
	switch i {
	case ir.Add, ir.Sub, ir.Mul, ir.Neg, ir.Inv, ir.Normalize, ir.Exp:
		return ir.Numeric
	case ir.Eq, ir.Not:
		return ir.Boolean
	case ir.Shift:
		return args[0].Type()
	case ir.IfZero, ir.IfNotZero:
		t := args[1].Type()
		if len(args) == 3 {
			t = ir.Join(t, args[2].Type())
		}

		return t
	case ir.Begin:
		return args[len(args)-1].Type()
	default:
		return ir.Numeric
	}
}
