// Package ast defines the fully-classified abstract syntax produced by
// translating the raw S-expression tree (pkg/sexp) into classified nodes.
// Every node is a variant of the Node sum type; callers type-switch on the
// concrete type rather than walking an inheritance hierarchy.
package ast

import (
	"math/big"

	"github.com/airlang/corset/pkg/sexp"
)

// Node is implemented by every class of abstract-syntax node. The only
// behaviour shared by every node is its source span, used to anchor
// diagnostics raised by later passes.
type Node interface {
	// Span returns the region of source text this node was parsed from.
	Span() sexp.Span
	// isNode restricts this interface to the variants declared in this file.
	isNode()
}

// base carries the span every node embeds; it is not itself a Node.
type base struct {
	span sexp.Span
}

// Span returns this node's source span.
func (b base) Span() sexp.Span { return b.span }

func (base) isNode() {}

// NewBase constructs the embeddable span-carrying base for a node at the
// given span. Exported so that the translator (translate.go) can stamp spans
// onto nodes it constructs.
func NewBase(span sexp.Span) base { return base{span} }

// ===================================================================
// Leaves
// ===================================================================

// Value is an integer literal. Values are parsed as unbounded big integers
// (big-integer arithmetic is required for constant folding).
type Value struct {
	base
	Val *big.Int
}

// Symbol is a bare identifier, later resolved against the symbol table.
type Symbol struct {
	base
	Name string
}

// Keyword is a reserved, non-aliasable token such as a type name
// (`:binary@8`) or column kind (`:atomic`).
type Keyword struct {
	base
	Name string
}

// List is a parenthesised sequence of sub-expressions whose head determines
// how it is interpreted (intrinsic call, user-function call, or special
// form).
type List struct {
	base
	Elements []Node
}

// Range is a literal sequence of integers, e.g. the iteration domain of a
// `for` special form. Unlike Domain, a Range is evaluated eagerly at
// elaboration time into its member values; it is never itself an expression.
type Range struct {
	base
	Values []int
}

// Domain is the fixed integer domain of an array column, e.g. `[0:2]`
// expands to Domain{0,1,2}.
type Domain struct {
	base
	Values []int
}

// IndexedSymbol represents `name[index]` syntax, used when an array column
// element is accessed with a non-constant index expression (the constant
// case is folded directly into an `Nth` intrinsic call by the elaborator).
type IndexedSymbol struct {
	base
	Name  string
	Index Node
}

// ===================================================================
// Declarations
// ===================================================================

// ColumnType names the declared type of a column (e.g. :binary, :i16, or the
// implicit native field type when omitted).
type ColumnType struct {
	Name  string
	Width uint
}

// ColumnKind distinguishes how a column's values are ultimately supplied.
type ColumnKind uint8

// Column kinds, mirroring schema.Kind.
const (
	KindAtomic ColumnKind = iota
	KindPhantom
	KindComputed
)

// DefConstraint declares a named vanishing constraint, optionally restricted
// to a sub-domain of rows, gated by a guard expression, and/or scoped to a
// perspective.
type DefConstraint struct {
	base
	Name        string
	Domain      []int
	Guard       Node
	Perspective string
	Expr        Node
}

// DefModule switches the active scope to (creating if necessary) the named
// top-level module.
type DefModule struct {
	base
	Name string
}

// ColumnDecl is the declaration of one column, nested inside a DefColumns or
// DefPerspective block.
type ColumnDecl struct {
	base
	Name         string
	Type         ColumnType
	Kind         ColumnKind
	PaddingValue *big.Int
	MustProve    bool
	Base         int
	// ArrayDomain is non-nil for an array column declaration.
	ArrayDomain []int
}

// DefColumns declares one or more columns within the active module.
type DefColumns struct {
	base
	Columns []ColumnDecl
}

// DefInterleaving declares a computed column whose rows interleave those of
// the `froms` columns in round-robin order.
type DefInterleaving struct {
	base
	Target string
	Froms  []string
}

// DefPermutation declares that the `To` columns are a row permutation of the
// `From` columns, sorted according to per-column Signs (true = ascending).
type DefPermutation struct {
	base
	From  []string
	To    []string
	Signs []bool
}

// DefAlias binds an alternate name to an already-resolvable symbol.
type DefAlias struct {
	base
	From string
	To   string
}

// DefAliases groups a block of column/constant aliases.
type DefAliases struct {
	base
	Aliases []DefAlias
}

// DefunAlias binds an alternate name to an already-defined function.
type DefunAlias struct {
	base
	From string
	To   string
}

// Param is a single formal parameter of a user-defined function.
type Param struct {
	Name string
	Type ColumnType
}

// DefFun declares a user function; Pure forbids the body from referencing
// any column outside Args.
type DefFun struct {
	base
	Name    string
	Args    []Param
	OutType ColumnType
	Body    Node
	Pure    bool
	NoWarn  bool
}

// ConstDecl is one name/value pair inside a DefConsts block, written either
// as `(name value)` or flat as `name value`.
type ConstDecl struct {
	Name  string
	Value *big.Int
}

// DefConsts declares one or more named, compile-time integer constants.
type DefConsts struct {
	base
	Consts []ConstDecl
}

// DefPerspective declares a named sub-scope of the active module, gated by a
// boolean Guard expression; columns declared within are only logically
// meaningful when Guard holds.
type DefPerspective struct {
	base
	Name    string
	Guard   Node
	Columns []ColumnDecl
}

// DefLookup declares a Plookup constraint: every row of Included must appear
// among the rows of Including.
type DefLookup struct {
	base
	Name      string
	Included  []Node
	Including []Node
}

// DefInrange declares a range-proof constraint: Expr's value must lie in
// [0,Max) on every row.
type DefInrange struct {
	base
	Expr Node
	Max  *big.Int
}

// BlockComment and InlineComment are produced transiently by the lexer and
// never survive translation into the elaborated AST; they are listed here
// only because each is its own AstNode class.
type BlockComment struct {
	base
	Text string
}

// InlineComment is the single-line `;`-comment variant of BlockComment.
type InlineComment struct {
	base
	Text string
}
