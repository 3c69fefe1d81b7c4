package corset

import "github.com/airlang/corset/pkg/ast"

// Function is a user-defined function or macro, as declared by `defun` or
// `defpurefun`. A function may carry multiple
// specializations when overloaded by argument arity, though this compiler
// (matching the source language surface) only ever records one.
type Function struct {
	Name            string
	Specializations []Specialization
}

// Specialization is one callable shape of a Function: its parameter list,
// return type, and body (still unexpanded AST at this point; elaboration
// happens when the resolver substitutes a call site).
type Specialization struct {
	Pure    bool
	Args    []ast.Param
	OutType ast.ColumnType
	Body    ast.Node
	NoWarn  bool
}

// NewFunction wraps a single specialization as a Function, the only shape
// this compiler ever constructs (spec does not expose user-level function
// overloading).
func NewFunction(name string, spec Specialization) *Function {
	return &Function{Name: name, Specializations: []Specialization{spec}}
}
