package sexp

import "unicode"

// Parse parses a given source file into exactly one top-level S-expression,
// failing if any trailing, non-whitespace text remains.
func Parse(src *SourceFile) (SExp, error) {
	p := NewParser(src)

	term, err := p.Parse()
	if err == nil {
		p.skipWhitespace()
	}

	if err == nil && p.index != len(p.text) {
		return nil, p.error("unexpected remainder")
	}

	return term, err
}

// ParseAll parses a source file into zero or more top-level S-expressions,
// continuing after each one until end-of-file.
func ParseAll(src *SourceFile) ([]SExp, error) {
	p := NewParser(src)
	terms := make([]SExp, 0)

	for {
		term, err := p.Parse()
		if err != nil {
			return terms, err
		} else if term == nil {
			return terms, nil
		}

		terms = append(terms, term)
	}
}

// Parser drives a single pass over a SourceFile's runes, producing
// S-expressions and recording their spans as it goes.
type Parser struct {
	src  *SourceFile
	text []rune
	// index is the current rune offset within text.
	index int
	// spans records, for every SExp constructed, the span of source text it
	// came from. Used for diagnostics downstream (resolution/type errors).
	spans map[SExp]Span
}

// NewParser constructs a parser over the given source file.
func NewParser(src *SourceFile) *Parser {
	return &Parser{
		src:   src,
		text:  src.Contents,
		index: 0,
		spans: make(map[SExp]Span),
	}
}

// SpanOf returns the span recorded for a given S-expression, or the zero span
// if none was recorded (e.g. for a synthetic node).
func (p *Parser) SpanOf(s SExp) Span {
	return p.spans[s]
}

// Parse extracts the next top-level S-expression, or returns (nil,nil) at
// end-of-file.
func (p *Parser) Parse() (SExp, error) {
	p.skipWhitespace()
	start := p.index

	token := p.next()
	if token == nil {
		return nil, nil
	}

	var term SExp

	switch {
	case len(token) == 1 && token[0] == ')':
		p.index--
		return nil, p.error("unexpected end-of-list")
	case len(token) == 1 && token[0] == ']':
		p.index--
		return nil, p.error("unexpected end-of-array")
	case len(token) == 1 && token[0] == '(':
		elements, err := p.parseSequence(')')
		if err != nil {
			return nil, err
		}

		term = &List{elements}
	case len(token) == 1 && token[0] == '[':
		elements, err := p.parseSequence(']')
		if err != nil {
			return nil, err
		}

		term = &Array{elements}
	default:
		term = &Symbol{string(token)}
	}

	p.spans[term] = NewSpan(start, p.index)

	return term, nil
}

func (p *Parser) parseSequence(terminator rune) ([]SExp, error) {
	var elements []SExp

	for c := p.lookahead(0); c == nil || *c != terminator; c = p.lookahead(0) {
		element, err := p.Parse()
		if err != nil {
			return nil, err
		} else if element == nil {
			p.index--
			return nil, p.error("unexpected end-of-file")
		}

		elements = append(elements, element)
		p.skipWhitespace()
	}

	p.next()

	return elements, nil
}

// next extracts the next raw token: a single bracket/paren, or a maximal run
// of symbol characters.
func (p *Parser) next() []rune {
	p.skipWhitespace()

	if p.index == len(p.text) {
		return nil
	}

	switch p.text[p.index] {
	case '(', ')', '[', ']':
		p.index++
		return p.text[p.index-1 : p.index]
	}

	return p.parseSymbol()
}

func (p *Parser) parseSymbol() []rune {
	i := len(p.text)

	for j := p.index; j < i; j++ {
		switch p.text[j] {
		case '(', ')', '[', ']', ' ', '\t', '\n', '\r':
			i = j
		default:
			continue
		}

		break
	}

	token := p.text[p.index:i]
	p.index = i

	return token
}

// skipWhitespace consumes whitespace and `;`-to-end-of-line comments.
func (p *Parser) skipWhitespace() {
	for p.index < len(p.text) && (unicode.IsSpace(p.text[p.index]) || p.text[p.index] == ';') {
		if p.text[p.index] == ';' {
			end := len(p.text)

			for j := p.index; j < end; j++ {
				if p.text[j] == '\n' {
					end = j + 1
					break
				}
			}

			p.index = end
		} else {
			p.index++
		}
	}
}

func (p *Parser) lookahead(i int) *rune {
	pos := i + p.index
	if pos >= len(p.text) {
		return nil
	}

	r := p.text[pos]

	switch {
	case r == '(' || r == ')' || r == '[' || r == ']' || r == ';':
		return &r
	case unicode.IsSpace(r):
		return p.lookahead(i + 1)
	default:
		return nil
	}
}

func (p *Parser) error(msg string) *SyntaxError {
	return p.src.NewSyntaxError(NewSpan(p.index, p.index+1), msg)
}
