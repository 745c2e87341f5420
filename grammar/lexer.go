package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ContractLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`, Action: nil},

		// String literals
		{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`, Action: nil},

		// Integer literals
		{Name: "Number", Pattern: `0[xX][0-9a-fA-F_]+|[0-9][0-9_]*`, Action: nil},

		// Keywords and Identifiers
		{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`, Action: nil},

		// Operators (longest first)
		{Name: "Operator", Pattern: `=>|\|\||&&|==|!=|<=|>=|\+=|-=|\*=|/=|%=|\+\+|--|[-+*/%=<>!]`, Action: nil},

		// Punctuation
		{Name: "Punct", Pattern: `[{}\[\]();,.:@]`, Action: nil},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},

		// Anything else is reported by the parser
		{Name: "Invalid", Pattern: `.`, Action: nil},
	},
})
