package binfile

import (
	"fmt"
	"math/big"

	"github.com/airlang/corset/pkg/ir"
)

// This file defines the JSON wire shapes mirroring pkg/ir and pkg/schema's
// tagged unions, plus the conversions to/from them. Those types keep their
// variant fields unexported (Constraint, Computation, ir.Node, ir.Type), so
// a binary body cannot gob- or json-encode them directly; mirroring each as
// a plain exported struct, built only from slices (never maps), is what
// gives a deterministic key order for free — struct
// fields marshal to JSON in their declared order, unlike map keys, so no
// explicit key-sorting step is needed.

type wireType struct {
	Level string
	Width uint
}

// levelOf derives the base level through IsVoid/IsBoolean, since ir.Type
// exposes no direct accessor for its level.
func levelOf(t ir.Type) string {
	switch {
	case t.IsVoid():
		return "void"
	case t.IsBoolean():
		return "bool"
	default:
		return "num"
	}
}

func encodeType(t ir.Type) wireType {
	return wireType{Level: levelOf(t), Width: t.Width}
}

func decodeType(w wireType) ir.Type {
	switch w.Level {
	case "void":
		return ir.Void
	case "bool":
		return ir.Boolean
	default:
		if w.Width > 0 {
			return ir.NumericWidth(w.Width)
		}

		return ir.Numeric
	}
}

type wireHandle struct {
	Module      string
	Name        string
	Perspective string
}

func encodeHandle(h ir.Handle) wireHandle {
	return wireHandle{h.Module, h.Name, h.Perspective}
}

func decodeHandle(w wireHandle) ir.Handle {
	return ir.Handle{Module: w.Module, Name: w.Name, Perspective: w.Perspective}
}

// wireNode mirrors ir.Node. Kind is one of: const, column, arraycolumn,
// void, funcall, list.
type wireNode struct {
	Kind   string
	Type   wireType
	Const  string     `json:",omitempty"`
	Column wireHandle `json:",omitempty"`
	Domain []int      `json:",omitempty"`
	Op     string     `json:",omitempty"`
	Args   []wireNode `json:",omitempty"`
}

func encodeNode(n ir.Node) wireNode {
	w := wireNode{Type: encodeType(n.Type())}

	switch n.Kind() {
	case ir.NodeConst:
		w.Kind = "const"
		w.Const = n.ConstValue().String()
	case ir.NodeColumn:
		w.Kind = "column"
		w.Column = encodeHandle(n.Column().Handle)
	case ir.NodeArrayColumn:
		w.Kind = "arraycolumn"
		w.Column = encodeHandle(n.Column().Handle)
		w.Domain = n.ArrayDomain()
	case ir.NodeVoid:
		w.Kind = "void"
	case ir.NodeFuncall:
		w.Kind = "funcall"
		w.Op = n.Intrinsic().String()
		w.Args = encodeNodes(n.Args())
	case ir.NodeList:
		w.Kind = "list"
		w.Args = encodeNodes(n.Args())
	}

	return w
}

func encodeNodes(ns []ir.Node) []wireNode {
	if ns == nil {
		return nil
	}

	out := make([]wireNode, len(ns))
	for i, n := range ns {
		out[i] = encodeNode(n)
	}

	return out
}

var intrinsicByName = func() map[string]ir.Intrinsic {
	m := make(map[string]ir.Intrinsic)
	for _, i := range []ir.Intrinsic{
		ir.Add, ir.Sub, ir.Mul, ir.Neg, ir.Inv, ir.Normalize, ir.Exp, ir.Shift,
		ir.Nth, ir.Eq, ir.Not, ir.Begin, ir.IfZero, ir.IfNotZero,
	} {
		m[i.String()] = i
	}

	return m
}()

func decodeNode(w wireNode) (ir.Node, error) {
	typ := decodeType(w.Type)

	switch w.Kind {
	case "const":
		v, ok := new(big.Int).SetString(w.Const, 10)
		if !ok {
			return ir.Node{}, fmt.Errorf("malformed constant %q", w.Const)
		}

		return ir.NewConst(v), nil
	case "column":
		return ir.NewColumn(ir.ColumnRef{Handle: decodeHandle(w.Column)}, typ), nil
	case "arraycolumn":
		return ir.NewArrayColumn(ir.ColumnRef{Handle: decodeHandle(w.Column)}, w.Domain, typ), nil
	case "void":
		return ir.VoidNode, nil
	case "funcall":
		op, ok := intrinsicByName[w.Op]
		if !ok {
			return ir.Node{}, fmt.Errorf("unknown intrinsic %q", w.Op)
		}

		args, err := decodeNodes(w.Args)
		if err != nil {
			return ir.Node{}, err
		}

		return ir.NewFuncall(op, args, typ), nil
	case "list":
		args, err := decodeNodes(w.Args)
		if err != nil {
			return ir.Node{}, err
		}

		return ir.NewList(args, typ), nil
	default:
		return ir.Node{}, fmt.Errorf("unknown node kind %q", w.Kind)
	}
}

func decodeNodes(ws []wireNode) ([]ir.Node, error) {
	if ws == nil {
		return nil, nil
	}

	out := make([]ir.Node, len(ws))

	for i, w := range ws {
		n, err := decodeNode(w)
		if err != nil {
			return nil, err
		}

		out[i] = n
	}

	return out, nil
}
