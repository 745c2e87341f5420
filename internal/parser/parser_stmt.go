package parser

import (
	"math/big"

	"contractc/grammar"
	"contractc/internal/ast"
)

func (p *Parser) parseBlock() *ast.Block {
	open := p.advance()
	block := &ast.Block{Pos: open.Pos}

	for !p.isAtEnd() && !p.check("}") {
		start := p.current
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if p.current == start {
			p.advance()
		}
	}

	end, _ := p.consume("}", "expected '}' to close block")
	block.EndPos = end.EndPos
	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.check("{"):
		return p.parseBlock()
	case p.check("if"):
		return p.parseIf()
	case p.check("while"):
		return p.parseWhile()
	case p.check("for"):
		return p.parseFor()
	case p.check("return"):
		return p.parseReturn()
	}

	stmt := p.parseSimpleStatement()
	if stmt == nil {
		p.synchronize()
		return nil
	}
	if _, ok := p.consume(";", "expected ';' after statement"); !ok {
		p.synchronize()
		return stmt
	}
	return withEnd(stmt, p.previous().EndPos)
}

// parseSimpleStatement parses a declaration, assignment or expression
// statement without its terminating semicolon
func (p *Parser) parseSimpleStatement() ast.Stmt {
	if p.isTypeStart() {
		ty := p.parseType()
		if ty == nil {
			return nil
		}
		name, ok := p.consumeIdent("expected variable name")
		if !ok {
			return nil
		}
		decl := &ast.VarDeclStmt{Pos: ty.Pos, EndPos: name.EndPos, Type: ty, Name: name}
		if p.match("=") {
			decl.Init = p.parseExpr()
			decl.EndPos = decl.Init.NodeEndPos()
		}
		return decl
	}

	expr := p.parseExpr()
	if _, bad := expr.(*ast.BadExpr); bad {
		return nil
	}

	tok := p.peek()
	switch {
	case tok.Is("="), tok.Is("+="), tok.Is("-="), tok.Is("*="), tok.Is("/="), tok.Is("%="):
		p.advance()
		value := p.parseExpr()
		return &ast.AssignStmt{
			Pos:    expr.NodePos(),
			EndPos: value.NodeEndPos(),
			Target: expr,
			Op:     tok.Value,
			Value:  value,
		}
	case tok.Is("++"), tok.Is("--"):
		p.advance()
		op := "+="
		if tok.Value == "--" {
			op = "-="
		}
		one := &ast.NumberLit{Pos: tok.Pos, EndPos: tok.EndPos, Raw: "1", Value: big.NewInt(1)}
		return &ast.AssignStmt{Pos: expr.NodePos(), EndPos: tok.EndPos, Target: expr, Op: op, Value: one}
	}

	return &ast.ExprStmt{Pos: expr.NodePos(), EndPos: expr.NodeEndPos(), X: expr}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.advance()
	p.consume("(", "expected '(' after 'if'")
	cond := p.parseExpr()
	p.consume(")", "expected ')' after if condition")

	stmt := &ast.IfStmt{Pos: start.Pos, Cond: cond}
	stmt.Then = p.parseStatement()
	if stmt.Then == nil {
		stmt.Then = &ast.Block{Pos: p.previous().Pos, EndPos: p.previous().EndPos}
	}
	stmt.EndPos = stmt.Then.NodeEndPos()
	if p.match("else") {
		stmt.Else = p.parseStatement()
		if stmt.Else != nil {
			stmt.EndPos = stmt.Else.NodeEndPos()
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.advance()
	p.consume("(", "expected '(' after 'while'")
	cond := p.parseExpr()
	p.consume(")", "expected ')' after while condition")

	stmt := &ast.WhileStmt{Pos: start.Pos, Cond: cond}
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		stmt.Body = &ast.Block{Pos: p.previous().Pos, EndPos: p.previous().EndPos}
	}
	stmt.EndPos = stmt.Body.NodeEndPos()
	return stmt
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.advance()
	stmt := &ast.ForStmt{Pos: start.Pos}
	p.consume("(", "expected '(' after 'for'")

	if !p.check(";") {
		stmt.Init = p.parseSimpleStatement()
	}
	p.consume(";", "expected ';' after for initializer")
	if !p.check(";") {
		stmt.Cond = p.parseExpr()
	}
	p.consume(";", "expected ';' after for condition")
	if !p.check(")") {
		stmt.Post = p.parseSimpleStatement()
	}
	p.consume(")", "expected ')' after for clauses")

	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		stmt.Body = &ast.Block{Pos: p.previous().Pos, EndPos: p.previous().EndPos}
	}
	stmt.EndPos = stmt.Body.NodeEndPos()
	return stmt
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.advance()
	stmt := &ast.ReturnStmt{Pos: start.Pos, EndPos: start.EndPos}

	if !p.check(";") {
		if p.check("(") && p.isTupleAhead() {
			p.advance()
			stmt.Values = p.parseExprList()
			p.consume(")", "expected ')' after return values")
		} else {
			stmt.Values = []ast.Expr{p.parseExpr()}
		}
	}

	end, _ := p.consume(";", "expected ';' after return")
	stmt.EndPos = end.EndPos
	return stmt
}

// isTupleAhead reports whether the parenthesis at the current token encloses
// a top level comma, as in "return (a, b);"
func (p *Parser) isTupleAhead() bool {
	depth := 0
	for i := 0; ; i++ {
		tok := p.peekAt(i)
		switch {
		case tok.Kind == grammar.EOF:
			return false
		case tok.Is("("), tok.Is("["), tok.Is("{"):
			depth++
		case tok.Is(")"), tok.Is("]"), tok.Is("}"):
			depth--
			if depth == 0 {
				return false
			}
		case tok.Is(",") && depth == 1:
			return true
		case tok.Is(";"):
			return false
		}
	}
}

// withEnd extends a statement's span to include its terminator
func withEnd(stmt ast.Stmt, end ast.Position) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		s.EndPos = end
	case *ast.AssignStmt:
		s.EndPos = end
	case *ast.ExprStmt:
		s.EndPos = end
	}
	return stmt
}
