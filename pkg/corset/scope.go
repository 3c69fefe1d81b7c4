// Package corset implements the name-resolution stage of the compiler: a
// hierarchical symbol table built over the module/perspective/function
// nesting of a source file (the "Definitions" pass), followed by the
// resolver/elaborator that turns the resolved AST into pkg/ir trees.
package corset

import (
	"fmt"

	"github.com/airlang/corset/pkg/ir"
)

// symbolEntry is whatever a symbol name can resolve to within a scope: a
// column, a named constant, or a captured for-loop induction variable.
type symbolEntry struct {
	column   *ir.Node // NodeColumn / NodeArrayColumn
	constant *ir.Node // NodeConst, once compile-time evaluated
	used     bool
}

type functionEntry struct {
	handle ir.Handle
	fn     *Function
}

// Scope is one node of the symbol-table tree: a module, or a perspective
// nested within one, or (transiently, during elaboration) a function's
// argument frame. It holds the four namespaces the language keeps distinct:
// symbols (columns and bound variables), constants, functions, and the
// alias/function-alias tables.
type Scope struct {
	parent      *Scope
	module      string
	perspective string
	public      bool

	symbols    map[string]*symbolEntry
	constants  map[string]*ir.Node
	functions  map[string]*functionEntry
	aliases    map[string]string
	funaliases map[string]string

	children []*Scope
}

// NewRootScope constructs the top-level scope, pre-populated with the
// language's built-in intrinsics and the `for` special form. Built-ins are
// neither aliasable nor shadowable: attempting to redefine one is an error.
func NewRootScope() *Scope {
	root := &Scope{
		module:     "",
		symbols:    make(map[string]*symbolEntry),
		constants:  make(map[string]*ir.Node),
		functions:  make(map[string]*functionEntry),
		aliases:    make(map[string]string),
		funaliases: make(map[string]string),
	}

	for name := range builtinIntrinsics {
		root.functions[name] = &functionEntry{handle: ir.NewHandle("", name)}
	}

	root.functions["for"] = &functionEntry{handle: ir.NewHandle("", "for")}

	return root
}

// builtinIntrinsics is the reserved-word set of the closed intrinsic list,
// keyed by surface syntax.
var builtinIntrinsics = map[string]ir.Intrinsic{
	"+":           ir.Add,
	"-":           ir.Sub,
	"*":           ir.Mul,
	"neg":         ir.Neg,
	"inv":         ir.Inv,
	"normalize":   ir.Normalize,
	"^":           ir.Exp,
	"shift":       ir.Shift,
	"nth":         ir.Nth,
	"eq":          ir.Eq,
	"!":           ir.Not,
	"begin":       ir.Begin,
	"if-zero":     ir.IfZero,
	"if-not-zero": ir.IfNotZero,
}

// IsBuiltin reports whether name is a reserved intrinsic or special form.
func IsBuiltin(name string) bool {
	if name == "for" {
		return true
	}

	_, ok := builtinIntrinsics[name]

	return ok
}

// nameExists reports whether name is already taken in this scope by a
// symbol, constant, function or alias — the four namespaces a single scope
// keeps, any of which must reject a colliding insertion.
func (s *Scope) nameExists(name string) bool {
	if _, ok := s.symbols[name]; ok {
		return true
	}

	if _, ok := s.constants[name]; ok {
		return true
	}

	if _, ok := s.functions[name]; ok {
		return true
	}

	if _, ok := s.aliases[name]; ok {
		return true
	}

	if _, ok := s.funaliases[name]; ok {
		return true
	}

	return false
}

func (s *Scope) newChild(module, perspective string, public bool) *Scope {
	child := &Scope{
		parent:      s,
		module:      module,
		perspective: perspective,
		public:      public,
		symbols:     make(map[string]*symbolEntry),
		constants:   make(map[string]*ir.Node),
		functions:   make(map[string]*functionEntry),
		aliases:     make(map[string]string),
		funaliases:  make(map[string]string),
	}
	s.children = append(s.children, child)

	return child
}

// SwitchToModule returns a fresh top-level scope for module, rooted at the
// same built-ins as s. Modules are siblings, not nested scopes: switching
// modules mid-file starts a new scope whose parent is the root.
func (s *Scope) SwitchToModule(module string) (*Scope, error) {
	root := s
	for root.parent != nil {
		root = root.parent
	}

	return root.newChild(module, "", false), nil
}

// Derive creates a nested child scope within the current module. The suffix
// argument (e.g. "in-<perspective>") is not recorded on the child. The child
// inherits the module and perspective but starts with empty namespaces of
// its own (spec §4.2 "derive").
func (s *Scope) Derive(suffix string) (*Scope, error) {
	return s.newChild(s.module, s.perspective, false), nil
}

// Public marks whether this scope's symbols are promoted to sibling scopes
// of the same module during resolution.
func (s *Scope) Public(public bool) *Scope {
	s.public = public
	return s
}

// WithPerspective tags this scope as belonging to the named perspective; all
// columns declared within it carry that perspective qualifier on their
// handle.
func (s *Scope) WithPerspective(perspective string) (*Scope, error) {
	s.perspective = perspective
	return s, nil
}

// Module returns the module name this scope (or its nearest ancestor)
// belongs to.
func (s *Scope) Module() string { return s.module }

// Perspective returns the perspective qualifier active in this scope, or ""
// if none.
func (s *Scope) Perspective() string { return s.perspective }

// InsertSymbol declares a new column (or bound variable) in the current
// scope. Redefining an existing name within the same scope is an error.
func (s *Scope) InsertSymbol(name string, node ir.Node) error {
	if IsBuiltin(name) {
		return fmt.Errorf("cannot redefine built-in %q", name)
	}

	if s.nameExists(name) {
		return fmt.Errorf("duplicate symbol %q in scope", name)
	}

	s.symbols[name] = &symbolEntry{column: &node}

	return nil
}

// InsertUsedSymbol is InsertSymbol for a symbol whose sole purpose is being
// resolvable (e.g. the expanded siblings of an array column); it is marked
// "used" immediately so that warnings about declared-but-unreferenced
// columns never fire on it.
func (s *Scope) InsertUsedSymbol(name string, node ir.Node) error {
	if err := s.InsertSymbol(name, node); err != nil {
		return err
	}

	s.symbols[name].used = true

	return nil
}

// InsertConstant declares a named constant with its compile-time value,
// already evaluated by the caller (defconst only ever parses integer
// literals, so no further folding is needed here).
func (s *Scope) InsertConstant(name string, value ir.Node) error {
	if IsBuiltin(name) {
		return fmt.Errorf("cannot redefine built-in %q", name)
	}

	if s.nameExists(name) {
		return fmt.Errorf("duplicate constant %q in scope", name)
	}

	s.constants[name] = &value

	return nil
}

// InsertFunction declares a user function in the current scope.
func (s *Scope) InsertFunction(name string, fn *Function) error {
	if IsBuiltin(name) {
		return fmt.Errorf("cannot redefine built-in %q", name)
	}

	if s.nameExists(name) {
		return fmt.Errorf("duplicate function %q in scope", name)
	}

	s.functions[name] = &functionEntry{handle: ir.NewHandle(s.module, name), fn: fn}

	return nil
}

// InsertConstraint records that name has been used as a constraint's own
// name, rejecting a duplicate within the same module (constraints share the
// symbol namespace with columns to avoid ambiguous error messages, matching
// the reference compiler).
func (s *Scope) InsertConstraint(name string) error {
	return s.InsertUsedSymbol(name, ir.VoidNode)
}

// InsertAlias declares that from is another name for the symbol to, which
// must already resolve.
func (s *Scope) InsertAlias(from, to string) error {
	if IsBuiltin(from) {
		return fmt.Errorf("cannot redefine built-in %q", from)
	}

	if _, err := s.ResolveSymbol(to); err != nil {
		return fmt.Errorf("while defining alias %s -> %s: %w", from, to, err)
	}

	if s.nameExists(from) {
		return fmt.Errorf("duplicate alias %q", from)
	}

	s.aliases[from] = to

	return nil
}

// InsertFunAlias declares that from is another name for the function to.
func (s *Scope) InsertFunAlias(from, to string) error {
	if IsBuiltin(from) {
		return fmt.Errorf("cannot redefine built-in %q", from)
	}

	if s.nameExists(from) {
		return fmt.Errorf("duplicate function alias %q", from)
	}

	s.funaliases[from] = to

	return nil
}

// ResolveSymbol looks up name as a column/constant, following aliases first
// then walking up through parent scopes, and across public sibling scopes of
// the same module.
func (s *Scope) ResolveSymbol(name string) (ir.Node, error) {
	node, err := s.resolveSymbolIn(s, name, make(map[string]bool))
	if err != nil {
		return ir.Node{}, err
	}

	return *node, nil
}

func (s *Scope) resolveSymbolIn(scope *Scope, name string, seenAliases map[string]bool) (*ir.Node, error) {
	if target, ok := scope.aliases[name]; ok {
		if seenAliases[name] {
			return nil, fmt.Errorf("cyclic alias %q", name)
		}

		seenAliases[name] = true

		return scope.resolveSymbolIn(scope, target, seenAliases)
	}

	if e, ok := scope.symbols[name]; ok {
		e.used = true
		if e.column != nil {
			return e.column, nil
		}
	}

	if c, ok := scope.constants[name]; ok {
		return c, nil
	}

	for _, sibling := range scope.siblingsOfSameModule() {
		if sibling == scope || !sibling.public {
			continue
		}

		if e, ok := sibling.symbols[name]; ok {
			e.used = true

			if e.column != nil {
				return e.column, nil
			}
		}

		if c, ok := sibling.constants[name]; ok {
			return c, nil
		}
	}

	if scope.parent != nil && scope.parent.module == scope.module {
		return scope.resolveSymbolIn(scope.parent, name, seenAliases)
	}

	return nil, fmt.Errorf("unresolved symbol %q", name)
}

func (s *Scope) siblingsOfSameModule() []*Scope {
	root := s
	for root.parent != nil {
		root = root.parent
	}

	var out []*Scope

	var walk func(*Scope)

	walk = func(n *Scope) {
		if n.module == s.module {
			out = append(out, n)
		}

		for _, c := range n.children {
			walk(c)
		}
	}

	walk(root)

	return out
}

// ResolveFunction looks up name as a function, following function aliases
// and built-ins first, then user functions up the parent chain.
func (s *Scope) ResolveFunction(name string) (ir.Handle, *Function, bool, error) {
	if _, ok := builtinIntrinsics[name]; ok {
		return ir.NewHandle("", name), nil, true, nil
	}

	if name == "for" {
		return ir.NewHandle("", name), nil, true, nil
	}

	if target, ok := s.funaliases[name]; ok {
		return s.ResolveFunction(target)
	}

	for scope := s; scope != nil; scope = scope.parent {
		if fe, ok := scope.functions[name]; ok {
			if fe.fn == nil {
				// A built-in registered on the root scope.
				return fe.handle, nil, true, nil
			}

			return fe.handle, fe.fn, false, nil
		}
	}

	return ir.Handle{}, nil, false, fmt.Errorf("unresolved function %q", name)
}

// IsUnused reports whether a declared symbol was never resolved against,
// used by a "declared but never referenced" warning pass.
func (s *Scope) IsUnused(name string) bool {
	e, ok := s.symbols[name]
	return ok && !e.used
}
