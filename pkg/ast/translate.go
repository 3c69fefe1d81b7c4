package ast

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/airlang/corset/pkg/sexp"
)

// Translator converts the raw S-expression forest produced by pkg/sexp into
// the classified Node forest declared in ast.go. It accumulates syntax
// errors rather than stopping at the first one, since several independent
// top-level declarations may each be malformed.
type Translator struct {
	src   *sexp.SourceFile
	spans *sexp.Parser
}

// NewTranslator constructs a translator for forms parsed from src using the
// given parser (which retains the span of every parsed SExp).
func NewTranslator(src *sexp.SourceFile, spans *sexp.Parser) *Translator {
	return &Translator{src, spans}
}

// TranslateAll translates every top-level form into a declaration node.
func (t *Translator) TranslateAll(forms []sexp.SExp) ([]Node, []error) {
	var (
		nodes []Node
		errs  []error
	)

	for _, f := range forms {
		n, es := t.translateTop(f)
		errs = append(errs, es...)

		if n != nil {
			nodes = append(nodes, n)
		}
	}

	return nodes, errs
}

func (t *Translator) err(s sexp.SExp, format string, args ...any) error {
	return t.src.NewSyntaxError(t.spans.SpanOf(s), fmt.Sprintf(format, args...))
}

func (t *Translator) base(s sexp.SExp) base {
	return NewBase(t.spans.SpanOf(s))
}

// translateTop dispatches on a top-level declaration's head symbol.
func (t *Translator) translateTop(s sexp.SExp) (Node, []error) {
	l := s.AsList()
	if l == nil || l.Len() == 0 {
		return nil, []error{t.err(s, "expected a declaration")}
	}

	head := l.Get(0).AsSymbol()
	if head == nil {
		return nil, []error{t.err(s, "expected a declaration keyword")}
	}

	switch head.Value {
	case "defmodule":
		return t.translateDefModule(l)
	case "defcolumns":
		return t.translateDefColumns(l)
	case "defconst":
		return t.translateDefConsts(l)
	case "defalias", "defaliases":
		return t.translateDefAliases(l)
	case "defunalias":
		return t.translateDefunAlias(l)
	case "defun":
		return t.translateDefFun(l, false)
	case "defpurefun":
		return t.translateDefFun(l, true)
	case "defconstraint":
		return t.translateDefConstraint(l)
	case "defpermutation":
		return t.translateDefPermutation(l)
	case "definterleaving":
		return t.translateDefInterleaving(l)
	case "deflookup":
		return t.translateDefLookup(l)
	case "definrange":
		return t.translateDefInrange(l)
	case "defperspective":
		return t.translateDefPerspective(l)
	default:
		return nil, []error{t.err(s, "unknown declaration '%s'", head.Value)}
	}
}

func (t *Translator) translateDefModule(l *sexp.List) (Node, []error) {
	if l.Len() != 2 || l.Get(1).AsSymbol() == nil {
		return nil, []error{t.err(l, "malformed defmodule")}
	}

	return &DefModule{t.base(l), l.Get(1).AsSymbol().Value}, nil
}

// translateColumnDecl translates one column declaration, which is either a
// bare symbol (`a`), a symbol with a type/kind keyword suffix
// (`(a :binary :display :dec)`), or an array declaration (`(v [0:2])`).
func (t *Translator) translateColumnDecl(s sexp.SExp) (ColumnDecl, []error) {
	base := t.base(s)

	if sym := s.AsSymbol(); sym != nil {
		return ColumnDecl{base: base, Name: sym.Value, Base: 10}, nil
	}

	l := s.AsList()
	if l == nil || l.Len() == 0 {
		return ColumnDecl{}, []error{t.err(s, "malformed column declaration")}
	}

	name := l.Get(0).AsSymbol()
	if name == nil {
		return ColumnDecl{}, []error{t.err(s, "malformed column name")}
	}

	decl := ColumnDecl{base: base, Name: name.Value, Base: 10}

	var errs []error

	for i := 1; i < l.Len(); i++ {
		elem := l.Get(i)

		if arr := elem.AsArray(); arr != nil {
			domain, es := t.translateIntList(arr)
			errs = append(errs, es...)
			decl.ArrayDomain = domain

			continue
		}

		sym := elem.AsSymbol()
		if sym == nil {
			errs = append(errs, t.err(elem, "malformed column attribute"))
			continue
		}

		switch {
		case strings.HasPrefix(sym.Value, ":display"):
			// display radix attribute; value follows as next keyword, ignore here
		case sym.Value == ":dec":
			decl.Base = 10
		case sym.Value == ":hex":
			decl.Base = 16
		case sym.Value == ":bin":
			decl.Base = 2
		case sym.Value == ":prove":
			decl.MustProve = true
		case strings.HasPrefix(sym.Value, ":"):
			decl.Type = parseColumnType(sym.Value)
		default:
			errs = append(errs, t.err(elem, "unknown column attribute '%s'", sym.Value))
		}
	}

	return decl, errs
}

// parseColumnType parses a leading-colon type keyword such as `:binary`,
// `:i16`, or `:bool`. Unrecognised keywords default to the native field type.
func parseColumnType(kw string) ColumnType {
	name := strings.TrimPrefix(kw, ":")

	switch {
	case name == "bool" || name == "binary":
		return ColumnType{Name: "bool", Width: 1}
	case strings.HasPrefix(name, "i"):
		if w, err := strconv.Atoi(name[1:]); err == nil {
			return ColumnType{Name: "int", Width: uint(w)}
		}
	}

	return ColumnType{Name: name}
}

func (t *Translator) translateIntList(a *sexp.Array) ([]int, []error) {
	var (
		values []int
		errs   []error
	)

	for i := 0; i < a.Len(); i++ {
		sym := a.Get(i).AsSymbol()
		if sym == nil {
			errs = append(errs, t.err(a.Get(i), "expected an integer"))
			continue
		}
		// Supports both an explicit enumeration ("0 1 2") and a "start:end"
		// range shorthand within a single token.
		if idx := strings.IndexByte(sym.Value, ':'); idx >= 0 {
			lo, err1 := strconv.Atoi(sym.Value[:idx])
			hi, err2 := strconv.Atoi(sym.Value[idx+1:])

			if err1 != nil || err2 != nil {
				errs = append(errs, t.err(a.Get(i), "malformed range '%s'", sym.Value))
				continue
			}

			for v := lo; v <= hi; v++ {
				values = append(values, v)
			}

			continue
		}

		v, err := strconv.Atoi(sym.Value)
		if err != nil {
			errs = append(errs, t.err(a.Get(i), "expected an integer, got '%s'", sym.Value))
			continue
		}

		values = append(values, v)
	}

	return values, errs
}

func (t *Translator) translateDefColumns(l *sexp.List) (Node, []error) {
	var (
		cols []ColumnDecl
		errs []error
	)

	for i := 1; i < l.Len(); i++ {
		decl, es := t.translateColumnDecl(l.Get(i))
		errs = append(errs, es...)
		cols = append(cols, decl)
	}

	return &DefColumns{t.base(l), cols}, errs
}

func (t *Translator) translateDefConsts(l *sexp.List) (Node, []error) {
	var (
		consts []ConstDecl
		errs   []error
	)

	for i := 1; i < l.Len(); i++ {
		// Flat form: `(defconst K 5 L 6)`.
		if name := l.Get(i).AsSymbol(); name != nil && i+1 < l.Len() {
			i++

			val, ok := parseBigInt(l.Get(i))
			if !ok {
				errs = append(errs, t.err(l.Get(i), "expected an integer constant value"))
				continue
			}

			consts = append(consts, ConstDecl{name.Value, val})

			continue
		}

		pair := l.Get(i).AsList()
		if pair == nil || pair.Len() != 2 || pair.Get(0).AsSymbol() == nil {
			errs = append(errs, t.err(l.Get(i), "malformed constant declaration"))
			continue
		}

		val, ok := parseBigInt(pair.Get(1))
		if !ok {
			errs = append(errs, t.err(pair.Get(1), "expected an integer constant value"))
			continue
		}

		consts = append(consts, ConstDecl{pair.Get(0).AsSymbol().Value, val})
	}

	return &DefConsts{t.base(l), consts}, errs
}

func parseBigInt(s sexp.SExp) (*big.Int, bool) {
	sym := s.AsSymbol()
	if sym == nil {
		return nil, false
	}

	v, ok := new(big.Int).SetString(sym.Value, 10)

	return v, ok
}

func (t *Translator) translateDefAliases(l *sexp.List) (Node, []error) {
	var (
		aliases []DefAlias
		errs    []error
	)

	for i := 1; i < l.Len(); i++ {
		pair := l.Get(i).AsList()
		if pair == nil || pair.Len() != 2 || pair.Get(0).AsSymbol() == nil || pair.Get(1).AsSymbol() == nil {
			errs = append(errs, t.err(l.Get(i), "malformed alias declaration"))
			continue
		}

		aliases = append(aliases, DefAlias{
			t.base(l.Get(i)),
			pair.Get(0).AsSymbol().Value,
			pair.Get(1).AsSymbol().Value,
		})
	}

	return &DefAliases{t.base(l), aliases}, errs
}

func (t *Translator) translateDefunAlias(l *sexp.List) (Node, []error) {
	if l.Len() != 3 || l.Get(1).AsSymbol() == nil || l.Get(2).AsSymbol() == nil {
		return nil, []error{t.err(l, "malformed defunalias")}
	}

	return &DefunAlias{t.base(l), l.Get(1).AsSymbol().Value, l.Get(2).AsSymbol().Value}, nil
}

// translateDefFun handles both `defun` and `defpurefun`, which share a form:
// (defun (name arg1 arg2 ...) body).
func (t *Translator) translateDefFun(l *sexp.List, pure bool) (Node, []error) {
	if l.Len() != 3 {
		return nil, []error{t.err(l, "malformed %s", headName(pure))}
	}

	signature := l.Get(1).AsList()
	if signature == nil || signature.Len() == 0 || signature.Get(0).AsSymbol() == nil {
		return nil, []error{t.err(l.Get(1), "malformed function signature")}
	}

	name := signature.Get(0).AsSymbol().Value

	var (
		args []Param
		errs []error
	)

	for i := 1; i < signature.Len(); i++ {
		if sym := signature.Get(i).AsSymbol(); sym != nil {
			args = append(args, Param{Name: sym.Value})
			continue
		}

		decl := signature.Get(i).AsList()
		if decl == nil || decl.Len() != 2 || decl.Get(0).AsSymbol() == nil {
			errs = append(errs, t.err(signature.Get(i), "malformed parameter"))
			continue
		}

		typeKw := decl.Get(1).AsSymbol()
		if typeKw == nil {
			errs = append(errs, t.err(decl.Get(1), "malformed parameter type"))
			continue
		}

		args = append(args, Param{decl.Get(0).AsSymbol().Value, parseColumnType(typeKw.Value)})
	}

	body, es := t.translateExpr(l.Get(2))
	errs = append(errs, es...)

	if len(errs) > 0 {
		return nil, errs
	}

	return &DefFun{t.base(l), name, args, ColumnType{}, body, pure, false}, nil
}

func headName(pure bool) string {
	if pure {
		return "defpurefun"
	}

	return "defun"
}

// parseConstraintAttributes parses the optional attribute list of a
// defconstraint: a list whose elements are each a parenthesised attribute,
// e.g. `()`, `((:domain [0]))`, `((:guard expr))`, `((:perspective p))`,
// any of which may be combined in the one list.
func (t *Translator) parseConstraintAttributes(s sexp.SExp) ([]int, Node, string, []error) {
	attrs := s.AsList()
	if attrs == nil {
		return nil, nil, "", []error{t.err(s, "malformed constraint attributes")}
	}

	var (
		domain      []int
		guard       Node
		perspective string
		errs        []error
	)

	for i := 0; i < attrs.Len(); i++ {
		attr := attrs.Get(i).AsList()
		if attr == nil || attr.Len() < 2 {
			errs = append(errs, t.err(attrs.Get(i), "malformed constraint attribute"))
			continue
		}

		kw := attr.Get(0).AsSymbol()
		if kw == nil {
			errs = append(errs, t.err(attr.Get(0), "malformed constraint attribute"))
			continue
		}

		switch kw.Value {
		case ":domain":
			if arr := attr.Get(1).AsArray(); arr != nil {
				d, es := t.translateIntList(arr)
				errs = append(errs, es...)
				domain = d
			}
		case ":guard":
			g, es := t.translateExpr(attr.Get(1))
			errs = append(errs, es...)
			guard = g
		case ":perspective":
			if sym := attr.Get(1).AsSymbol(); sym != nil {
				perspective = sym.Value
			}
		default:
			errs = append(errs, t.err(attr.Get(0), "unknown constraint attribute '%s'", kw.Value))
		}
	}

	return domain, guard, perspective, errs
}

func (t *Translator) translateDefConstraint(l *sexp.List) (Node, []error) {
	if l.Len() != 4 || l.Get(1).AsSymbol() == nil {
		return nil, []error{t.err(l, "malformed defconstraint")}
	}

	domain, guard, perspective, errs := t.parseConstraintAttributes(l.Get(2))

	expr, es := t.translateExpr(l.Get(3))
	errs = append(errs, es...)

	if len(errs) > 0 {
		return nil, errs
	}

	return &DefConstraint{t.base(l), l.Get(1).AsSymbol().Value, domain, guard, perspective, expr}, nil
}

func (t *Translator) translateDefPermutation(l *sexp.List) (Node, []error) {
	if l.Len() != 3 {
		return nil, []error{t.err(l, "malformed defpermutation")}
	}

	to := l.Get(1).AsArray()
	from := l.Get(2).AsArray()

	if to == nil || from == nil || to.Len() != from.Len() {
		return nil, []error{t.err(l, "cardinality mismatch in permutation declaration")}
	}

	var (
		toNames, fromNames []string
		signs              []bool
	)

	for i := 0; i < to.Len(); i++ {
		toSym := to.Get(i).AsSymbol()
		if toSym == nil {
			return nil, []error{t.err(to.Get(i), "malformed permutation target")}
		}

		toNames = append(toNames, toSym.Value)

		fromName, sign, err := parseSortedSource(from.Get(i))
		if err != nil {
			return nil, []error{t.err(from.Get(i), "%s", err)}
		}

		fromNames = append(fromNames, fromName)
		signs = append(signs, sign)
	}

	return &DefPermutation{t.base(l), fromNames, toNames, signs}, nil
}

// parseSortedSource parses one source of a permutation/sorted declaration,
// which is either a bare column (implicitly ascending) or `(+ col)`/`(- col)`
// to select the sort direction explicitly.
func parseSortedSource(s sexp.SExp) (string, bool, error) {
	if sym := s.AsSymbol(); sym != nil {
		return sym.Value, true, nil
	}

	l := s.AsList()
	if l == nil || l.Len() != 2 {
		return "", false, fmt.Errorf("malformed sort source")
	}

	dir := l.Get(0).AsSymbol()
	name := l.Get(1).AsSymbol()

	if dir == nil || name == nil {
		return "", false, fmt.Errorf("malformed sort source")
	}

	switch dir.Value {
	case "+":
		return name.Value, true, nil
	case "-":
		return name.Value, false, nil
	default:
		return "", false, fmt.Errorf("unknown sort direction '%s'", dir.Value)
	}
}

func (t *Translator) translateDefInterleaving(l *sexp.List) (Node, []error) {
	if l.Len() != 3 || l.Get(1).AsSymbol() == nil {
		return nil, []error{t.err(l, "malformed definterleaving")}
	}

	froms := l.Get(2).AsArray()
	if froms == nil {
		return nil, []error{t.err(l.Get(2), "malformed source list")}
	}

	var (
		names []string
		errs  []error
	)

	for i := 0; i < froms.Len(); i++ {
		sym := froms.Get(i).AsSymbol()
		if sym == nil {
			errs = append(errs, t.err(froms.Get(i), "malformed source column"))
			continue
		}

		names = append(names, sym.Value)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &DefInterleaving{t.base(l), l.Get(1).AsSymbol().Value, names}, nil
}

func (t *Translator) translateDefLookup(l *sexp.List) (Node, []error) {
	if l.Len() != 4 || l.Get(1).AsSymbol() == nil {
		return nil, []error{t.err(l, "malformed deflookup")}
	}

	included, errs1 := t.translateExprList(l.Get(2))
	including, errs2 := t.translateExprList(l.Get(3))
	errs := append(errs1, errs2...)

	if len(included) != len(including) {
		errs = append(errs, t.err(l, "cardinality mismatch between lookup source and target"))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &DefLookup{t.base(l), l.Get(1).AsSymbol().Value, included, including}, nil
}

func (t *Translator) translateExprList(s sexp.SExp) ([]Node, []error) {
	arr := s.AsArray()
	if arr == nil {
		if l := s.AsList(); l != nil {
			var (
				nodes []Node
				errs  []error
			)

			for i := 0; i < l.Len(); i++ {
				n, es := t.translateExpr(l.Get(i))
				errs = append(errs, es...)
				nodes = append(nodes, n)
			}

			return nodes, errs
		}

		return nil, []error{t.err(s, "expected a list of expressions")}
	}

	var (
		nodes []Node
		errs  []error
	)

	for i := 0; i < arr.Len(); i++ {
		n, es := t.translateExpr(arr.Get(i))
		errs = append(errs, es...)
		nodes = append(nodes, n)
	}

	return nodes, errs
}

func (t *Translator) translateDefInrange(l *sexp.List) (Node, []error) {
	if l.Len() != 3 {
		return nil, []error{t.err(l, "malformed definrange")}
	}

	expr, errs := t.translateExpr(l.Get(1))

	max, ok := parseBigInt(l.Get(2))
	if !ok {
		errs = append(errs, t.err(l.Get(2), "expected an integer bound"))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &DefInrange{t.base(l), expr, max}, nil
}

func (t *Translator) translateDefPerspective(l *sexp.List) (Node, []error) {
	if l.Len() != 4 || l.Get(1).AsSymbol() == nil {
		return nil, []error{t.err(l, "malformed defperspective")}
	}

	guard, errs := t.translateExpr(l.Get(2))

	colsList := l.Get(3).AsList()
	if colsList == nil || !colsList.MatchSymbols(1, "defcolumns") {
		errs = append(errs, t.err(l.Get(3), "expected defcolumns block"))
		return nil, errs
	}

	var cols []ColumnDecl

	for i := 1; i < colsList.Len(); i++ {
		decl, es := t.translateColumnDecl(colsList.Get(i))
		errs = append(errs, es...)
		cols = append(cols, decl)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &DefPerspective{t.base(l), l.Get(1).AsSymbol().Value, guard, cols}, nil
}

// translateExpr translates an expression occurring inside a constraint,
// function, or lookup body. At this stage expressions remain generic
// List/Symbol/Value/IndexedSymbol nodes: intrinsic recognition, arity
// checking and type propagation are the resolver's job, not the
// translator's.
func (t *Translator) translateExpr(s sexp.SExp) (Node, []error) {
	switch e := s.(type) {
	case *sexp.Symbol:
		return t.translateSymbolExpr(e, s)
	case *sexp.List:
		return t.translateListExpr(e, s)
	case *sexp.Array:
		values, errs := t.translateIntList(e)
		return &Range{t.base(s), values}, errs
	default:
		return nil, []error{t.err(s, "malformed expression")}
	}
}

func (t *Translator) translateSymbolExpr(sym *sexp.Symbol, s sexp.SExp) (Node, []error) {
	if v, ok := new(big.Int).SetString(sym.Value, 10); ok {
		return &Value{t.base(s), v}, nil
	}

	if strings.HasPrefix(sym.Value, ":") {
		return &Keyword{t.base(s), strings.TrimPrefix(sym.Value, ":")}, nil
	}
	// A bare Symbol covers plain identifiers; array elements are reached
	// through the list forms `(nth arr i)` or `(arr i)`, not here.
	return &Symbol{t.base(s), sym.Value}, nil
}

func (t *Translator) translateListExpr(l *sexp.List, s sexp.SExp) (Node, []error) {
	// `(name i)` where name resolves to an array column and i is a constant
	// or computed index is represented structurally as a List whose head is
	// the array's symbol; the resolver distinguishes `(nth arr i)` calls from
	// ordinary function calls using the symbol table.
	elements := make([]Node, l.Len())

	var errs []error

	for i := 0; i < l.Len(); i++ {
		n, es := t.translateExpr(l.Get(i))
		errs = append(errs, es...)
		elements[i] = n
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &List{t.base(s), elements}, nil
}
