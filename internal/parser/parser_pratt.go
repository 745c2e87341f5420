package parser

import (
	"fmt"
	"strconv"

	"contractc/grammar"
	"contractc/internal/ast"
)

var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parsePrattExpr(0)
}

func (p *Parser) parsePrattExpr(minPrec int) ast.Expr {
	expr := p.parsePrefixExpr()

	for {
		tok := p.peek()
		if tok.Kind != grammar.Operator {
			break
		}
		prec, ok := binaryPrecedence[tok.Value]
		if !ok || prec < minPrec {
			break
		}

		p.advance()
		right := p.parsePrattExpr(prec + 1)

		expr = &ast.BinaryExpr{
			Pos:    expr.NodePos(),
			EndPos: right.NodeEndPos(),
			Op:     tok.Value,
			Left:   expr,
			Right:  right,
		}
	}

	return expr
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	if p.check("!") || p.check("-") {
		op := p.advance()
		value := p.parsePrefixExpr()
		return &ast.UnaryExpr{
			Pos:    op.Pos,
			EndPos: value.NodeEndPos(),
			Op:     op.Value,
			X:      value,
		}
	}

	return p.parsePostfixExpr(p.parsePrimaryExpr())
}

func (p *Parser) parsePostfixExpr(expr ast.Expr) ast.Expr {
	if _, bad := expr.(*ast.BadExpr); bad {
		return expr
	}

	for {
		switch {
		case p.match("."):
			field, ok := p.consumeMemberName()
			if !ok {
				return expr
			}
			expr = &ast.MemberExpr{
				Pos:    expr.NodePos(),
				EndPos: field.EndPos,
				Target: expr,
				Name:   field,
			}
		case p.check("["):
			p.advance()
			index := p.parseExpr()
			end, _ := p.consume("]", "expected ']' after index")
			expr = &ast.IndexExpr{
				Pos:    expr.NodePos(),
				EndPos: end.EndPos,
				Target: expr,
				Index:  index,
			}
		case p.isCallOptionsAhead():
			options := p.parseCallOptions()
			if !p.check("(") {
				p.errorAtCurrent("expected '(' after call options")
				return expr
			}
			expr = p.parseCall(expr, options)
		case p.check("("):
			expr = p.parseCall(expr, nil)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCall(callee ast.Expr, options []*ast.CallOption) ast.Expr {
	p.advance()
	args := p.parseExprList()
	end, _ := p.consume(")", "expected ')' after arguments")
	return &ast.CallExpr{
		Pos:     callee.NodePos(),
		EndPos:  end.EndPos,
		Callee:  callee,
		Options: options,
		Args:    args,
	}
}

// consumeMemberName accepts any identifier after '.', keywords included,
// so that members such as "tx.program_id" or "address.payable" parse
func (p *Parser) consumeMemberName() (ast.Ident, bool) {
	if !p.checkKind(grammar.Ident) {
		p.errorAtCurrent("expected member name after '.'")
		return ast.Ident{}, false
	}
	return p.makeIdent(p.advance()), true
}

// isCallOptionsAhead distinguishes "f{accounts: a}(x)" from a block opening
func (p *Parser) isCallOptionsAhead() bool {
	return p.check("{") && p.peekAt(1).Kind == grammar.Ident && p.checkAt(2, ":")
}

func (p *Parser) parseCallOptions() []*ast.CallOption {
	p.advance()
	var options []*ast.CallOption
	for !p.isAtEnd() && !p.check("}") {
		if !p.checkKind(grammar.Ident) {
			p.errorAtCurrent("expected call option name")
			break
		}
		name := p.makeIdent(p.advance())
		if _, ok := p.consume(":", "expected ':' after call option name"); !ok {
			break
		}
		value := p.parseExpr()
		options = append(options, &ast.CallOption{
			Pos:    name.Pos,
			EndPos: value.NodeEndPos(),
			Name:   name,
			Value:  value,
		})
		if !p.match(",") {
			break
		}
	}
	p.consume("}", "expected '}' after call options")
	return options
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	tok := p.peek()

	switch {
	case tok.Kind == grammar.Number:
		p.advance()
		value, ok := parseNumber(tok.Value)
		if !ok {
			p.errorAt(tok.Pos, fmt.Sprintf("invalid number literal '%s'", tok.Value))
			return p.makeBadExpr(tok, "invalid number literal")
		}
		return &ast.NumberLit{Pos: tok.Pos, EndPos: tok.EndPos, Raw: tok.Value, Value: value}

	case tok.Kind == grammar.String:
		p.advance()
		value, err := strconv.Unquote(tok.Value)
		if err != nil {
			p.errorAt(tok.Pos, fmt.Sprintf("invalid escape in string literal %s", tok.Value))
			value = tok.Value[1 : len(tok.Value)-1]
		}
		return &ast.StringLit{Pos: tok.Pos, EndPos: tok.EndPos, Value: value}

	case tok.Is("true"), tok.Is("false"):
		p.advance()
		return &ast.BoolLit{Pos: tok.Pos, EndPos: tok.EndPos, Value: tok.Value == "true"}

	case tok.Is("new"):
		return p.parseNewExpr()

	case tok.Is("payable"), p.isIdentifier(tok):
		// 'payable(x)' is a conversion and parses like any other callee
		p.advance()
		return &ast.IdentExpr{Name: p.makeIdent(tok)}

	case tok.Is("("):
		p.advance()
		inner := p.parseExpr()
		p.consume(")", "expected ')'")
		return inner

	case tok.Is("["):
		open := p.advance()
		lit := &ast.ArrayLit{Pos: open.Pos}
		if !p.check("]") {
			for {
				lit.Elems = append(lit.Elems, p.parseExpr())
				if !p.match(",") {
					break
				}
			}
		}
		end, _ := p.consume("]", "expected ']' after array elements")
		lit.EndPos = end.EndPos
		return lit
	}

	p.errorAtCurrent("unexpected token in expression")
	bad := p.makeBadExpr(tok, "unexpected token in expression: "+tok.Value)
	if !p.isAtEnd() && !tok.Is(";") && !tok.Is("}") {
		p.advance()
	}
	return bad
}

// parseNewExpr parses "new C(args)" and "new C{program_id: p}(args)"
func (p *Parser) parseNewExpr() ast.Expr {
	start := p.advance()
	name, ok := p.consumeIdent("expected contract name after 'new'")
	if !ok {
		return p.makeBadExpr(start, "expected contract name after 'new'")
	}
	expr := &ast.NewExpr{Pos: start.Pos, EndPos: name.EndPos, Contract: name}

	if p.isCallOptionsAhead() {
		expr.Options = p.parseCallOptions()
		expr.EndPos = p.previous().EndPos
	}
	if p.match("(") {
		expr.Args = p.parseExprList()
		if end, ok := p.consume(")", "expected ')' after constructor arguments"); ok {
			expr.EndPos = end.EndPos
		}
	} else {
		p.errorAtCurrent("expected '(' after contract name in 'new' expression")
	}
	return expr
}

func (p *Parser) parseExprList() []ast.Expr {
	var args []ast.Expr
	if p.check(")") {
		return args
	}

	for {
		args = append(args, p.parsePrattExpr(0))
		if !p.match(",") {
			break
		}
	}

	return args
}

func (p *Parser) makeBadExpr(tok grammar.Token, message string) *ast.BadExpr {
	return &ast.BadExpr{Pos: tok.Pos, EndPos: tok.EndPos, Message: message}
}
