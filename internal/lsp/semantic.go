package lsp

import (
	"sort"

	"contractc/internal/ast"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

const (
	modDeclaration = 1 << iota
	modDefinition
	modReadonly
	modStatic
	modDeprecated
	modAbstract
)

// collectSemanticTokens walks a source unit and returns its tokens sorted by
// position, as the delta encoding requires
func collectSemanticTokens(unit *ast.SourceUnit) []SemanticToken {
	if unit == nil {
		return nil
	}

	var tokens []SemanticToken
	emit := func(pos, end ast.Position, value, tokenType string, modifiers int) {
		if tok, ok := makeToken(pos, end, value, tokenType, modifiers); ok {
			tokens = append(tokens, tok)
		}
	}
	ident := func(id ast.Ident, tokenType string, modifiers int) {
		emit(id.Pos, id.EndPos, id.Value, tokenType, modifiers)
	}
	var typeExpr func(t *ast.TypeExpr)
	typeExpr = func(t *ast.TypeExpr) {
		if t == nil {
			return
		}
		if t.IsMapping() {
			typeExpr(t.Key)
			typeExpr(t.Value)
			return
		}
		ident(t.Name, "type", 0)
	}

	var visit func(ast.Node) bool
	visit = func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Contract:
			tokenType, mods := "class", modDeclaration
			switch n.Kind {
			case ast.KindInterface:
				tokenType, mods = "interface", modDeclaration|modAbstract
			case ast.KindAbstract:
				mods |= modAbstract
			case ast.KindLibrary:
				tokenType = "namespace"
			}
			ident(n.Name, tokenType, mods)
		case *ast.BaseSpec:
			ident(n.Name, "class", 0)
		case *ast.Annotation:
			emit(n.Pos, n.Name.EndPos, "@"+n.Name.Value, "decorator", 0)
		case *ast.Struct:
			ident(n.Name, "struct", modDeclaration)
			for _, f := range n.Fields {
				typeExpr(f.Type)
				if f.Name != nil {
					ident(*f.Name, "property", modDeclaration)
				}
			}
			return false
		case *ast.Variable:
			typeExpr(n.Type)
			mods := modDeclaration
			if n.Constant || n.Immutable {
				mods |= modReadonly
			}
			ident(n.Name, "property", mods)
		case *ast.Function:
			if n.Kind == ast.FuncConstructor {
				ident(n.Name, "keyword", 0)
			} else {
				ident(n.Name, "function", modDeclaration)
			}
			if n.Override != nil {
				for _, b := range n.Override.Bases {
					ident(b, "class", 0)
				}
			}
		case *ast.Param:
			typeExpr(n.Type)
			if n.Name != nil {
				ident(*n.Name, "parameter", modDeclaration)
			}
		case *ast.VarDeclStmt:
			typeExpr(n.Type)
			ident(n.Name, "variable", modDeclaration)
		case *ast.IdentExpr:
			ident(n.Name, "variable", 0)
		case *ast.MemberExpr:
			ident(n.Name, "property", 0)
		case *ast.CallExpr:
			// the callee name is a function, anything before it is walked as usual
			switch callee := n.Callee.(type) {
			case *ast.IdentExpr:
				ident(callee.Name, "function", 0)
			case *ast.MemberExpr:
				ast.Inspect(callee.Target, visit)
				ident(callee.Name, "function", 0)
			default:
				ast.Inspect(n.Callee, visit)
			}
			for _, o := range n.Options {
				ast.Inspect(o, visit)
			}
			for _, a := range n.Args {
				ast.Inspect(a, visit)
			}
			return false
		case *ast.NewExpr:
			ident(n.Contract, "class", 0)
		case *ast.CallOption:
			ident(n.Name, "parameter", 0)
		case *ast.NumberLit:
			emit(n.Pos, n.EndPos, n.Raw, "number", 0)
		case *ast.StringLit:
			emit(n.Pos, n.EndPos, "\"\"", "string", 0)
		}
		return true
	}
	ast.Inspect(unit, visit)

	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Line != tokens[j].Line {
			return tokens[i].Line < tokens[j].Line
		}
		return tokens[i].StartChar < tokens[j].StartChar
	})
	return tokens
}

// encodeSemanticTokens packs tokens into the relative five integer format
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevStart uint32
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))
		prevLine = token.Line
		prevStart = token.StartChar
	}
	return data
}

func makeToken(pos, endPos ast.Position, value, tokenType string, modifiers int) (SemanticToken, bool) {
	if value == "" || pos.Line == 0 {
		return SemanticToken{}, false
	}

	length := endPos.Column - pos.Column
	if endPos.Line != pos.Line || length <= 0 {
		length = len(value)
	}

	return SemanticToken{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: modifiers,
	}, true
}

func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
