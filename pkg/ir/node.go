package ir

import "math/big"

// NodeKind tags the variant of a Node.
type NodeKind uint8

// The closed set of IR node kinds.
const (
	NodeConst NodeKind = iota
	NodeColumn
	NodeArrayColumn
	NodeVoid
	NodeFuncall
	NodeList
)

// ColumnRef identifies a column by its handle. Resolution to a concrete
// schema.Column happens in the constraint set's column store;
// the IR layer only ever needs the handle to identify what it depends on.
type ColumnRef struct {
	Handle Handle
}

// Node is a single node of the polynomial IR tree").
// Every node carries a cached type, computed bottom-up as the tree is
// constructed so that later passes never need to re-infer it.
type Node struct {
	kind NodeKind
	typ  Type

	// NodeConst
	constVal *big.Int

	// NodeColumn
	column ColumnRef
	// No row offset is stored on a column reference: Shift is itself a
	// Funcall node wrapping the reference.

	// NodeArrayColumn
	arrayDomain []int

	// NodeFuncall / NodeList
	intrinsic Intrinsic
	args      []Node
}

// NewConst constructs a constant leaf. Constants are exact, unbounded
// integers.
func NewConst(v *big.Int) Node {
	t := Boolean
	if v.Sign() < 0 || v.Cmp(big.NewInt(1)) > 0 {
		t = Numeric
	}

	return Node{kind: NodeConst, typ: t, constVal: new(big.Int).Set(v)}
}

// NewColumn constructs a reference to a scalar column of the given type.
func NewColumn(ref ColumnRef, typ Type) Node {
	return Node{kind: NodeColumn, typ: typ, column: ref}
}

// NewArrayColumn constructs a reference to an array column, used only to
// validate `nth` calls against the array's declared domain.
func NewArrayColumn(ref ColumnRef, domain []int, typ Type) Node {
	return Node{kind: NodeArrayColumn, typ: typ, column: ref, arrayDomain: domain}
}

// VoidNode is the unique Void leaf.
var VoidNode = Node{kind: NodeVoid, typ: Void}

// NewFuncall constructs an intrinsic application. Callers are expected to
// have already validated arity and types (see ArityOf and the resolver).
func NewFuncall(i Intrinsic, args []Node, typ Type) Node {
	return Node{kind: NodeFuncall, typ: typ, intrinsic: i, args: args}
}

// NewList constructs a sequencing node whose value is that of its last
// element (used to lower `begin`-like sequencing, as distinct from an
// intrinsic call).
func NewList(args []Node, typ Type) Node {
	return Node{kind: NodeList, typ: typ, args: args}
}

// Kind returns this node's variant tag.
func (n Node) Kind() NodeKind { return n.kind }

// Type returns this node's cached type.
func (n Node) Type() Type { return n.typ }

// ConstValue returns the constant this leaf holds; only valid when
// Kind()==NodeConst.
func (n Node) ConstValue() *big.Int { return n.constVal }

// Column returns the column this leaf references; only valid when
// Kind()==NodeColumn or NodeArrayColumn.
func (n Node) Column() ColumnRef { return n.column }

// ArrayDomain returns the declared domain of an array column reference; only
// valid when Kind()==NodeArrayColumn.
func (n Node) ArrayDomain() []int { return n.arrayDomain }

// Intrinsic returns the operation a Funcall node applies; only valid when
// Kind()==NodeFuncall.
func (n Node) Intrinsic() Intrinsic { return n.intrinsic }

// Args returns the operands of a Funcall or the elements of a List; only
// valid for those two kinds.
func (n Node) Args() []Node { return n.args }

// WithArgs returns a copy of this Funcall/List node with its arguments
// replaced, preserving kind, intrinsic and cached type. Used by IR rewrite
// passes (normalisation, if-expansion) that transform a node's children in
// place without needing to know every field of Node.
func (n Node) WithArgs(args []Node) Node {
	n.args = args
	return n
}

// Dependencies returns the set of distinct column handles this (sub)tree
// reads, used by the normalisation pass to determine which module owns a
// freshly introduced inverse column.
func (n Node) Dependencies() []Handle {
	seen := make(map[Handle]bool)

	var handles []Handle

	var walk func(Node)

	walk = func(m Node) {
		switch m.kind {
		case NodeColumn, NodeArrayColumn:
			if !seen[m.column.Handle] {
				seen[m.column.Handle] = true
				handles = append(handles, m.column.Handle)
			}
		case NodeFuncall, NodeList:
			for _, a := range m.args {
				walk(a)
			}
		}
	}

	walk(n)

	return handles
}

// IsConst reports whether this node is a fully-folded constant.
func (n Node) IsConst() bool { return n.kind == NodeConst }

// String renders a deterministic lisp-like form of the tree, used to derive
// stable names for synthetic columns (e.g. the inverse column the
// normalisation pass introduces for a given reference expression) and for
// diagnostics.
func (n Node) String() string {
	switch n.kind {
	case NodeConst:
		return n.constVal.String()
	case NodeColumn, NodeArrayColumn:
		return n.column.Handle.Display()
	case NodeVoid:
		return "void"
	case NodeFuncall, NodeList:
		var b []byte

		if n.kind == NodeFuncall {
			b = append(b, '(')
			b = append(b, n.intrinsic.String()...)
		} else {
			b = append(b, "(begin"...)
		}

		for _, a := range n.args {
			b = append(b, ' ')
			b = append(b, a.String()...)
		}

		b = append(b, ')')

		return string(b)
	default:
		return "?"
	}
}
