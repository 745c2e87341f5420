package parser

import (
	"fmt"
	"math/big"
	"strings"

	"contractc/grammar"
	"contractc/internal/ast"
)

// parseAnnotations parses zero or more '@name(args)' annotations
func (p *Parser) parseAnnotations() []*ast.Annotation {
	var annotations []*ast.Annotation
	for p.check("@") {
		if a := p.parseAnnotation(); a != nil {
			annotations = append(annotations, a)
		}
	}
	return annotations
}

func (p *Parser) parseAnnotation() *ast.Annotation {
	at := p.advance()
	if p.peek().Kind != grammar.Ident {
		p.errorAtCurrent("expected annotation name after '@'")
		return nil
	}
	name := p.makeIdent(p.advance())
	a := &ast.Annotation{Pos: at.Pos, EndPos: name.EndPos, Name: name}

	if p.match("(") {
		if !p.check(")") {
			a.Args = p.parseExprList()
		}
		if tok, ok := p.consume(")", "expected ')' to close annotation arguments"); ok {
			a.EndPos = tok.EndPos
		}
	}
	return a
}

func (p *Parser) parseContract(annotations []*ast.Annotation) *ast.Contract {
	start := p.peek()
	kind := ast.KindContract

	switch {
	case p.match("abstract"):
		if _, ok := p.consume("contract", "expected 'contract' after 'abstract'"); !ok {
			p.synchronize()
			return nil
		}
		kind = ast.KindAbstract
	case p.match("contract"):
	case p.match("interface"):
		kind = ast.KindInterface
	case p.match("library"):
		kind = ast.KindLibrary
	default:
		return nil
	}

	name, ok := p.consumeIdent(fmt.Sprintf("expected %s name", kind))
	if !ok {
		p.synchronize()
		return nil
	}

	pos := start.Pos
	if len(annotations) > 0 {
		pos = annotations[0].Pos
	}
	c := &ast.Contract{
		Pos:         pos,
		Kind:        kind,
		Name:        name,
		Annotations: annotations,
	}

	if p.match("is") {
		for {
			base := p.parseBaseSpec()
			if base == nil {
				break
			}
			c.Bases = append(c.Bases, base)
			if !p.match(",") {
				break
			}
		}
	}

	if _, ok := p.consume("{", "expected '{' to open contract body"); !ok {
		p.synchronize()
		c.EndPos = p.previous().EndPos
		return c
	}

	for !p.isAtEnd() && !p.check("}") {
		p.parseContractPart(c)
	}

	end, _ := p.consume("}", "expected '}' to close contract body")
	c.EndPos = end.EndPos
	return c
}

// parseBaseSpec parses "Name" or "Name(args)"
func (p *Parser) parseBaseSpec() *ast.BaseSpec {
	name, ok := p.consumeIdent("expected base contract name")
	if !ok {
		return nil
	}
	base := &ast.BaseSpec{Pos: name.Pos, EndPos: name.EndPos, Name: name}
	if p.match("(") {
		base.HasArgs = true
		if !p.check(")") {
			base.Args = p.parseExprList()
		}
		if tok, ok := p.consume(")", "expected ')' after base arguments"); ok {
			base.EndPos = tok.EndPos
		}
	}
	return base
}

func (p *Parser) parseContractPart(c *ast.Contract) {
	start := p.current
	annotations := p.parseAnnotations()

	switch {
	case p.check("struct"):
		if len(annotations) > 0 {
			p.errorAt(annotations[0].Pos, "annotations not allowed on struct")
		}
		if s := p.parseStruct(); s != nil {
			c.Structs = append(c.Structs, s)
		}
	case p.check("function"), p.check("constructor"):
		if f := p.parseFunction(annotations); f != nil {
			c.Functions = append(c.Functions, f)
		}
	case p.isTypeStart():
		if len(annotations) > 0 {
			p.errorAt(annotations[0].Pos, "annotations not allowed on variable")
		}
		if v := p.parseVariable(); v != nil {
			c.Variables = append(c.Variables, v)
		}
	default:
		p.errorAtCurrent(fmt.Sprintf("unexpected '%s' in contract body", p.peek().Value))
		p.synchronize()
	}

	if p.current == start {
		p.advance()
	}
}

func (p *Parser) errorAt(pos ast.Position, message string) {
	p.errors = append(p.errors, ParseError{Message: message, Position: pos})
}

func (p *Parser) parseStruct() *ast.Struct {
	start := p.advance()
	name, ok := p.consumeIdent("expected struct name")
	if !ok {
		p.synchronize()
		return nil
	}
	s := &ast.Struct{Pos: start.Pos, Name: name}
	if _, ok := p.consume("{", "expected '{' after struct name"); !ok {
		p.synchronize()
		return nil
	}

	for !p.isAtEnd() && !p.check("}") {
		ty := p.parseType()
		if ty == nil {
			p.synchronize()
			continue
		}
		field, ok := p.consumeIdent("expected struct field name")
		if !ok {
			p.synchronize()
			continue
		}
		s.Fields = append(s.Fields, &ast.Param{Pos: ty.Pos, EndPos: field.EndPos, Type: ty, Name: &field})
		p.consume(";", "expected ';' after struct field")
	}

	end, _ := p.consume("}", "expected '}' to close struct")
	s.EndPos = end.EndPos
	return s
}

// parseVariable parses a state variable declaration
func (p *Parser) parseVariable() *ast.Variable {
	ty := p.parseType()
	if ty == nil {
		p.synchronize()
		return nil
	}
	v := &ast.Variable{Pos: ty.Pos, Type: ty}

	for attrs := true; attrs; {
		switch {
		case p.match("public"):
			v.Visibility = ast.Public
		case p.match("internal"):
			v.Visibility = ast.Internal
		case p.match("private"):
			v.Visibility = ast.Private
		case p.match("constant"):
			v.Constant = true
		case p.match("immutable"):
			v.Immutable = true
		default:
			attrs = false
		}
	}

	ident, ok := p.consumeIdent("expected variable name")
	if !ok {
		p.synchronize()
		return nil
	}
	v.Name = ident

	if p.match("=") {
		v.Init = p.parseExpr()
	}
	end, _ := p.consume(";", "expected ';' after variable declaration")
	v.EndPos = end.EndPos
	return v
}

// isTypeStart reports whether a declaration starting with a type follows
func (p *Parser) isTypeStart() bool {
	tok := p.peek()
	if tok.Is("mapping") {
		return true
	}
	if !p.isIdentifier(tok) {
		return false
	}

	// skip a qualified type name and array suffixes
	i := 1
	if p.checkAt(i, ".") && p.isIdentifier(p.peekAt(i+1)) {
		i += 2
	}
	if tok.Is("address") && p.checkAt(i, "payable") {
		i++
	}
	for p.checkAt(i, "[") {
		i++
		if p.peekAt(i).Kind == grammar.Number {
			i++
		}
		if !p.checkAt(i, "]") {
			return false
		}
		i++
	}

	next := p.peekAt(i)
	if next.Kind != grammar.Ident {
		return false
	}
	if !keywords[next.Value] {
		return true
	}
	switch next.Value {
	case "memory", "storage", "calldata", "public", "internal", "private", "constant", "immutable":
		return true
	}
	return false
}

// parseType parses an elementary, user defined, mapping or array type
func (p *Parser) parseType() *ast.TypeExpr {
	start := p.peek()
	var ty *ast.TypeExpr

	if p.match("mapping") {
		if _, ok := p.consume("(", "expected '(' after 'mapping'"); !ok {
			return nil
		}
		key := p.parseType()
		if key == nil {
			return nil
		}
		// an optional key name is allowed: mapping(address owner => uint64)
		if p.isIdentifier(p.peek()) {
			p.advance()
		}
		if _, ok := p.consume("=>", "expected '=>' in mapping type"); !ok {
			return nil
		}
		value := p.parseType()
		if value == nil {
			return nil
		}
		if p.isIdentifier(p.peek()) {
			p.advance()
		}
		end, ok := p.consume(")", "expected ')' to close mapping type")
		if !ok {
			return nil
		}
		ty = &ast.TypeExpr{Pos: start.Pos, EndPos: end.EndPos, Key: key, Value: value}
	} else {
		if !p.isIdentifier(start) {
			p.errorAtCurrent(fmt.Sprintf("expected type, found '%s'", start.Value))
			return nil
		}
		name := p.makeIdent(p.advance())
		if p.check(".") && p.isIdentifier(p.peekAt(1)) {
			p.advance()
			member := p.advance()
			name.Value += "." + member.Value
			name.EndPos = member.EndPos
		}
		if name.Value == "address" && p.check("payable") {
			name.EndPos = p.advance().EndPos
		}
		ty = &ast.TypeExpr{Pos: start.Pos, EndPos: name.EndPos, Name: name}
	}

	for p.check("[") {
		p.advance()
		dim := ast.ArrayDim{}
		if p.checkKind(grammar.Number) {
			tok := p.advance()
			n, ok := parseNumber(tok.Value)
			if !ok || !n.IsUint64() || n.Sign() == 0 {
				p.errorAt(tok.Pos, fmt.Sprintf("invalid array length '%s'", tok.Value))
			} else {
				dim = ast.ArrayDim{Fixed: true, Size: n.Uint64()}
			}
		}
		end, ok := p.consume("]", "expected ']' in array type")
		if !ok {
			return ty
		}
		ty.Dims = append(ty.Dims, dim)
		ty.EndPos = end.EndPos
	}

	// data locations carry no meaning for resolution
	if dataLocations[p.peek().Value] && p.peek().Kind == grammar.Ident {
		p.advance()
	}
	return ty
}

// parseNumber converts a decimal or hex literal with optional '_' separators
func parseNumber(raw string) (*big.Int, bool) {
	s := strings.ReplaceAll(raw, "_", "")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}
