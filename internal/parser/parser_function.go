package parser

import (
	"fmt"

	"contractc/grammar"
	"contractc/internal/ast"
)

// parseFunction parses a function or constructor declaration
func (p *Parser) parseFunction(annotations []*ast.Annotation) *ast.Function {
	start := p.advance()
	f := &ast.Function{
		Pos:         start.Pos,
		ProtoPos:    start.Pos,
		Annotations: annotations,
	}
	if len(annotations) > 0 {
		f.Pos = annotations[0].Pos
	}

	if start.Is("constructor") {
		f.Kind = ast.FuncConstructor
		f.Name = p.makeIdent(start)
	} else {
		f.Kind = ast.FuncFunction
		name, ok := p.consumeIdent("expected function name")
		if !ok {
			p.synchronize()
			return nil
		}
		f.Name = name
	}

	if _, ok := p.consume("(", "expected '(' after function name"); !ok {
		p.synchronize()
		return nil
	}
	f.Params = p.parseParams()
	if _, ok := p.consume(")", "expected ')' after parameters"); !ok {
		p.synchronize()
		return nil
	}
	f.ProtoEnd = p.previous().EndPos

	p.parseFunctionAttributes(f)

	if p.match("returns") {
		if _, ok := p.consume("(", "expected '(' after 'returns'"); !ok {
			p.synchronize()
			return nil
		}
		f.Returns = p.parseParams()
		if _, ok := p.consume(")", "expected ')' after return parameters"); !ok {
			p.synchronize()
			return nil
		}
		f.ProtoEnd = p.previous().EndPos
	}

	if p.match(";") {
		f.EndPos = p.previous().EndPos
		return f
	}
	if !p.check("{") {
		p.errorAtCurrent(fmt.Sprintf("expected '{' or ';' after %s declaration", f.Kind))
		p.synchronize()
		return nil
	}
	f.Body = p.parseBlock()
	f.EndPos = f.Body.EndPos
	return f
}

// parseFunctionAttributes parses visibility, mutability, virtual, override and
// constructor base calls in any order
func (p *Parser) parseFunctionAttributes(f *ast.Function) {
	for {
		tok := p.peek()
		switch {
		case tok.Is("public"), tok.Is("external"), tok.Is("internal"), tok.Is("private"):
			if f.Visibility != ast.VisDefault {
				p.errorAtCurrent(fmt.Sprintf("function redeclared '%s'", tok.Value))
			}
			f.Visibility = visibilityOf(tok.Value)
			f.VisibilityPos = tok.Pos
			p.advance()
		case tok.Is("pure"), tok.Is("view"), tok.Is("payable"):
			if f.Mutability != ast.Nonpayable {
				p.errorAtCurrent(fmt.Sprintf("function redeclared '%s'", tok.Value))
			}
			f.Mutability = mutabilityOf(tok.Value)
			f.MutabilityPos = tok.Pos
			p.advance()
		case tok.Is("virtual"):
			f.Virtual = true
			p.advance()
		case tok.Is("override"):
			p.advance()
			spec := &ast.OverrideSpec{Pos: tok.Pos, EndPos: tok.EndPos}
			if p.match("(") {
				spec.Bases = p.parseIdentifierList()
				if end, ok := p.consume(")", "expected ')' after override list"); ok {
					spec.EndPos = end.EndPos
				}
			}
			f.Override = spec
		case p.isIdentifier(tok) && f.Kind == ast.FuncConstructor:
			if base := p.parseBaseSpec(); base != nil {
				f.BaseCalls = append(f.BaseCalls, base)
			}
		default:
			return
		}
		f.ProtoEnd = p.previous().EndPos
	}
}

// parseParams parses a possibly empty, comma separated parameter list
func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if p.check(")") {
		return params
	}
	for {
		param := p.parseParam()
		if param == nil {
			return params
		}
		params = append(params, param)
		if !p.match(",") {
			return params
		}
	}
}

func (p *Parser) parseParam() *ast.Param {
	var annotation *ast.Annotation
	if p.check("@") {
		annotation = p.parseAnnotation()
	}
	ty := p.parseType()
	if ty == nil {
		return nil
	}
	param := &ast.Param{Pos: ty.Pos, EndPos: ty.EndPos, Type: ty, Annotation: annotation}
	if annotation != nil {
		param.Pos = annotation.Pos
	}
	if p.peek().Kind == grammar.Ident && p.isIdentifier(p.peek()) {
		name := p.makeIdent(p.advance())
		param.Name = &name
		param.EndPos = name.EndPos
	}
	return param
}

func visibilityOf(s string) ast.Visibility {
	switch s {
	case "public":
		return ast.Public
	case "external":
		return ast.External
	case "internal":
		return ast.Internal
	default:
		return ast.Private
	}
}

func mutabilityOf(s string) ast.Mutability {
	switch s {
	case "pure":
		return ast.Pure
	case "view":
		return ast.View
	default:
		return ast.Payable
	}
}
