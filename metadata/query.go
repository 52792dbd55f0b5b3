package metadata

import "strings"

// Operator represents a comparison operator in a query.
type Operator string

const (
	// OpEqual represents the equality operator.
	OpEqual Operator = "eq"
	// OpNotEqual represents the inequality operator.
	OpNotEqual Operator = "ne"
	// OpGreaterThan represents the greater than operator.
	OpGreaterThan Operator = "gt"
	// OpGreaterEqual represents the greater than or equal operator.
	OpGreaterEqual Operator = "gte"
	// OpLessThan represents the less than operator.
	OpLessThan Operator = "lt"
	// OpLessEqual represents the less than or equal operator.
	OpLessEqual Operator = "lte"
	// OpContains represents the substring match operator (text fields only).
	OpContains Operator = "contains"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokWord
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

// lex splits a query into tokens. Bare words end at whitespace, parens, or
// the start of a comparison operator; quoted strings permit whitespace and
// backslash escapes.
func lex(query string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(query) {
		c := query[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '=' || c == '!' || c == '<' || c == '>':
			start := i
			op, n, ok := lexOperator(query[i:])
			if !ok {
				return nil, &SyntaxError{Pos: start, Token: string(c), Reason: "unknown operator"}
			}
			toks = append(toks, token{tokOp, op, start})
			i += n
		case c == '\'' || c == '"':
			start := i
			text, n, ok := lexQuoted(query[i:])
			if !ok {
				return nil, &SyntaxError{Pos: start, Token: query[start:], Reason: "unterminated quoted value"}
			}
			toks = append(toks, token{tokString, text, start})
			i += n
		default:
			start := i
			for i < len(query) && !strings.ContainsRune(" \t\n\r()=!<>'\"", rune(query[i])) {
				i++
			}
			toks = append(toks, token{tokWord, query[start:i], start})
		}
	}
	toks = append(toks, token{tokEOF, "", len(query)})
	return toks, nil
}

func lexOperator(s string) (string, int, bool) {
	if len(s) >= 2 {
		switch s[:2] {
		case "==", "!=", "<=", ">=":
			return s[:2], 2, true
		}
	}
	switch s[0] {
	case '<':
		return "<", 1, true
	case '>':
		return ">", 1, true
	}
	return "", 0, false
}

func lexQuoted(s string) (string, int, bool) {
	quote := s[0]
	var b strings.Builder
	i := 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", 0, false
			}
			b.WriteByte(s[i+1])
			i += 2
		case quote:
			return b.String(), i + 1, true
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return "", 0, false
}

// Unbound expression tree. Field names and comparison values stay raw until
// bind resolves them against an index.
type node interface{}

type andNode struct{ left, right node }
type orNode struct{ left, right node }
type notNode struct{ child node }

type cmpNode struct {
	field    string
	fieldPos int
	op       Operator
	raw      string
	rawPos   int
}

type parser struct {
	toks []token
	i    int
}

// parse builds an expression tree for a query string.
//
// Grammar, loosest binding first:
//
//	expr       = and { OR and }
//	and        = unary { AND unary }
//	unary      = NOT unary | "(" expr ")" | comparison
//	comparison = field op value
func parse(query string) (node, error) {
	toks, err := lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Pos: tok.pos, Token: tok.text, Reason: "unexpected trailing input"}
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) keyword(kw string) bool {
	tok := p.peek()
	if tok.kind == tokWord && strings.EqualFold(tok.text, kw) {
		p.i++
		return true
	}
	return false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.keyword("not") {
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{child: child}, nil
	}
	if p.peek().kind == tokLParen {
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.kind != tokRParen {
			return nil, &SyntaxError{Pos: tok.pos, Token: tok.text, Reason: "expected closing parenthesis"}
		}
		return n, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	fieldTok := p.next()
	if fieldTok.kind != tokWord {
		return nil, &SyntaxError{Pos: fieldTok.pos, Token: fieldTok.text, Reason: "expected a field name"}
	}

	opTok := p.peek()
	var op Operator
	switch {
	case opTok.kind == tokOp:
		p.next()
		switch opTok.text {
		case "==":
			op = OpEqual
		case "!=":
			op = OpNotEqual
		case "<":
			op = OpLessThan
		case "<=":
			op = OpLessEqual
		case ">":
			op = OpGreaterThan
		case ">=":
			op = OpGreaterEqual
		}
	case p.keyword("contains"):
		op = OpContains
	default:
		return nil, &SyntaxError{Pos: opTok.pos, Token: opTok.text, Reason: "expected a comparison operator"}
	}

	valTok := p.next()
	if valTok.kind != tokWord && valTok.kind != tokString {
		return nil, &SyntaxError{Pos: valTok.pos, Token: valTok.text, Reason: "expected a comparison value"}
	}

	return &cmpNode{
		field:    fieldTok.text,
		fieldPos: fieldTok.pos,
		op:       op,
		raw:      valTok.text,
		rawPos:   valTok.pos,
	}, nil
}
