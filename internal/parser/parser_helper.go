package parser

import (
	"contractc/grammar"
	"contractc/internal/ast"
)

func (p *Parser) advance() grammar.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check reports whether the current token is the given keyword or symbol
func (p *Parser) check(value string) bool {
	return p.peek().Is(value)
}

func (p *Parser) checkAt(offset int, value string) bool {
	return p.peekAt(offset).Is(value)
}

func (p *Parser) checkKind(kind grammar.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(values ...string) bool {
	for _, v := range values {
		if p.check(v) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(value string, message string) (grammar.Token, bool) {
	if p.check(value) {
		return p.advance(), true
	}
	p.errorAtCurrent(message)
	return p.peek(), false
}

func (p *Parser) peek() grammar.Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) grammar.Token {
	i := p.current + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) previous() grammar.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == grammar.EOF
}

func (p *Parser) errorAtCurrent(message string) {
	tok := p.peek()
	if tok.Kind == grammar.Invalid {
		message = "unexpected character '" + tok.Value + "'"
	}
	p.errors = append(p.errors, ParseError{
		Message:  message,
		Position: tok.Pos,
	})
}

// synchronize skips tokens until a likely statement or declaration boundary
func (p *Parser) synchronize() {
	depth := 0
	for !p.isAtEnd() {
		switch {
		case p.check("{"):
			depth++
		case p.check("}"):
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case p.check(";") && depth == 0:
			p.advance()
			return
		}
		p.advance()
	}
}

// Helper functions to reduce repetitive AST node creation

// makeIdent creates an ast.Ident from a token
func (p *Parser) makeIdent(tok grammar.Token) ast.Ident {
	return ast.Ident{
		Pos:    tok.Pos,
		EndPos: tok.EndPos,
		Value:  tok.Value,
	}
}

// isIdentifier reports whether the current token can name a declaration
func (p *Parser) isIdentifier(tok grammar.Token) bool {
	return tok.Kind == grammar.Ident && !keywords[tok.Value]
}

// consumeIdent consumes an identifier token and returns an ast.Ident
func (p *Parser) consumeIdent(message string) (ast.Ident, bool) {
	if !p.isIdentifier(p.peek()) {
		p.errorAtCurrent(message)
		return ast.Ident{Pos: p.peek().Pos, EndPos: p.peek().Pos, Value: "error"}, false
	}
	return p.makeIdent(p.advance()), true
}

// parseIdentifierList parses a comma-separated list of identifiers
func (p *Parser) parseIdentifierList() []ast.Ident {
	var idents []ast.Ident

	for !p.isAtEnd() {
		ident, ok := p.consumeIdent("expected identifier")
		if !ok {
			break
		}
		idents = append(idents, ident)

		if !p.match(",") {
			break
		}
	}

	return idents
}

var keywords = map[string]bool{
	"contract":    true,
	"abstract":    true,
	"interface":   true,
	"library":     true,
	"is":          true,
	"function":    true,
	"constructor": true,
	"returns":     true,
	"return":      true,
	"if":          true,
	"else":        true,
	"while":       true,
	"for":         true,
	"mapping":     true,
	"struct":      true,
	"public":      true,
	"external":    true,
	"internal":    true,
	"private":     true,
	"pure":        true,
	"view":        true,
	"payable":     true,
	"virtual":     true,
	"override":    true,
	"constant":    true,
	"immutable":   true,
	"new":         true,
	"true":        true,
	"false":       true,
	"memory":      true,
	"storage":     true,
	"calldata":    true,
}

var dataLocations = map[string]bool{
	"memory":   true,
	"storage":  true,
	"calldata": true,
}
