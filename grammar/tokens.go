package grammar

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"contractc/internal/ast"
	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a token
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String
	Operator
	Punct
	Invalid
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Operator:
		return "operator"
	case Punct:
		return "punctuation"
	default:
		return "invalid character"
	}
}

// Token is a lexed token with its source span
type Token struct {
	Kind   Kind
	Value  string
	Pos    ast.Position
	EndPos ast.Position
}

// Is reports whether the token is the given keyword, operator or punctuation
func (t Token) Is(value string) bool {
	return t.Kind != String && t.Kind != EOF && t.Value == value
}

var kindBySymbol = func() map[lexer.TokenType]Kind {
	symbols := ContractLexer.Symbols()
	return map[lexer.TokenType]Kind{
		symbols["Ident"]:    Ident,
		symbols["Number"]:   Number,
		symbols["String"]:   String,
		symbols["Operator"]: Operator,
		symbols["Punct"]:    Punct,
		symbols["Invalid"]:  Invalid,
	}
}()

var elided = func() map[lexer.TokenType]bool {
	symbols := ContractLexer.Symbols()
	return map[lexer.TokenType]bool{
		symbols["Comment"]:    true,
		symbols["Whitespace"]: true,
	}
}()

// Tokenize lexes source text, dropping comments and whitespace. The returned
// slice always ends with an EOF token.
func Tokenize(filename, source string) ([]Token, error) {
	lex, err := ContractLexer.LexString(filename, source)
	if err != nil {
		return nil, fmt.Errorf("failed to start lexer: %w", err)
	}

	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return tokens, fmt.Errorf("lexer: %w", err)
		}
		pos := convertPos(filename, tok.Pos)
		if tok.EOF() {
			tokens = append(tokens, Token{Kind: EOF, Pos: pos, EndPos: pos})
			return tokens, nil
		}
		if elided[tok.Type] {
			continue
		}
		tokens = append(tokens, Token{
			Kind:   kindBySymbol[tok.Type],
			Value:  tok.Value,
			Pos:    pos,
			EndPos: endOf(pos, tok.Value),
		})
	}
}

func convertPos(filename string, p lexer.Position) ast.Position {
	return ast.Position{
		Filename: filename,
		Offset:   p.Offset,
		Line:     p.Line,
		Column:   p.Column,
	}
}

// endOf computes the position just past value when it starts at pos
func endOf(pos ast.Position, value string) ast.Position {
	end := pos
	end.Offset += len(value)
	if i := strings.LastIndexByte(value, '\n'); i >= 0 {
		end.Line += strings.Count(value, "\n")
		end.Column = utf8.RuneCountInString(value[i+1:]) + 1
		return end
	}
	end.Column += utf8.RuneCountInString(value)
	return end
}
