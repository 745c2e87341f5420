package parser

import (
	"fmt"

	"contractc/grammar"
	"contractc/internal/ast"
)

// ParseError is a syntax error at a source position
type ParseError struct {
	Message  string
	Position ast.Position
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

type Parser struct {
	filename string
	tokens   []grammar.Token
	current  int
	errors   []ParseError
}

func NewParser(filename string, tokens []grammar.Token) *Parser {
	return &Parser{filename: filename, tokens: tokens}
}

// ParseSource tokenizes and parses a source file. A source unit is always
// returned; declarations that failed to parse are skipped.
func ParseSource(path string, source string) (*ast.SourceUnit, []ParseError) {
	tokens, err := grammar.Tokenize(path, source)
	if err != nil {
		pos := ast.Position{Filename: path, Line: 1, Column: 1}
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].EndPos
		}
		tokens = append(tokens, grammar.Token{Kind: grammar.EOF, Pos: pos, EndPos: pos})
		p := NewParser(path, tokens)
		unit := p.ParseSourceUnit()
		p.errors = append(p.errors, ParseError{Message: err.Error(), Position: pos})
		return unit, p.errors
	}

	p := NewParser(path, tokens)
	unit := p.ParseSourceUnit()
	return unit, p.errors
}

// ParseSourceUnit parses contract declarations until end of file
func (p *Parser) ParseSourceUnit() *ast.SourceUnit {
	unit := &ast.SourceUnit{
		Pos:  p.peek().Pos,
		Path: p.filename,
	}

	for !p.isAtEnd() {
		start := p.current
		annotations := p.parseAnnotations()

		if p.check("pragma") || p.check("import") {
			p.skipDirective()
			continue
		}

		if c := p.parseContract(annotations); c != nil {
			unit.Contracts = append(unit.Contracts, c)
		} else if p.current == start {
			p.errorAtCurrent(fmt.Sprintf("expected contract, interface or library, found '%s'", p.peek().Value))
			p.advance()
		}
	}

	unit.EndPos = p.peek().EndPos
	return unit
}

// skipDirective skips pragma and import directives up to their semicolon
func (p *Parser) skipDirective() {
	for !p.isAtEnd() && !p.check(";") {
		p.advance()
	}
	p.match(";")
}
