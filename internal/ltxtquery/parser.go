package ltxtquery

import "strings"

// maxNesting bounds '!' and '(' nesting so hostile input fails with an error
// instead of growing the stack without limit.
const maxNesting = 256

// Parser is a recursive-descent parser for ltxtquery patterns.
//
// Grammar, lowest precedence first:
//
//	expr   = term ('|' term)*
//	term   = factor ('&' factor)*
//	factor = '!' factor | '(' expr ')' | word
//	word   = [A-Za-z0-9_-]+ [@*%]*
//
// A Parser holds per-call state and is not safe for concurrent use; the
// package-level Parse allocates one per call.
type Parser struct {
	input string
	pos   int
	depth int
}

// Parse parses pattern into a tree. Positions in returned errors index into
// the whitespace-trimmed pattern.
func (p *Parser) Parse(pattern string) (*Node, error) {
	p.input = strings.TrimSpace(pattern)
	p.pos = 0
	p.depth = 0

	if len(p.input) == 0 {
		return nil, &ParseError{Kind: ErrEmptyPattern}
	}

	ast, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < len(p.input) {
		return nil, &ParseError{Kind: ErrUnexpectedCharacter, Char: p.input[p.pos], Pos: p.pos}
	}
	return ast, nil
}

func (p *Parser) parseExpr() (*Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.match('|') {
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
	return left, nil
}

func (p *Parser) parseTerm() (*Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.match('&') {
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
	return left, nil
}

func (p *Parser) parseFactor() (*Node, error) {
	p.skipWhitespace()

	if p.match('!') {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Not(operand), nil
	}

	if p.match('(') {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.match(')') {
			return nil, &ParseError{Kind: ErrMissingCloseParen, Pos: p.pos}
		}
		return Group(inner), nil
	}

	return p.parseWord()
}

func (p *Parser) parseWord() (*Node, error) {
	p.skipWhitespace()
	start := p.pos
	for p.pos < len(p.input) && isWordChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, &ParseError{Kind: ErrExpectedWord, Pos: p.pos}
	}
	value := p.input[start:p.pos]

	var mods Modifier
loop:
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '@':
			mods |= CaseInsensitive
		case '*':
			mods |= Prefix
		case '%':
			mods |= WordBoundary
		default:
			break loop
		}
		p.pos++
	}
	return &Node{Kind: KindWord, Value: value, Mods: mods}, nil
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > maxNesting {
		return &ParseError{Kind: ErrNestingTooDeep, Pos: p.pos}
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// match consumes c if it is the next non-space byte.
func (p *Parser) match(c byte) bool {
	p.skipWhitespace()
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
