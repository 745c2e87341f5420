package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeContractHeader(t *testing.T) {
	src := `// comment
@program_id("Foo")
contract C is B(1) {
    mapping(address => uint64) balances;
}`

	tokens, err := Tokenize("test.sol", src)
	require.NoError(t, err)

	var values []string
	for _, tok := range tokens {
		values = append(values, tok.Value)
	}
	assert.Equal(t, []string{
		"@", "program_id", "(", `"Foo"`, ")",
		"contract", "C", "is", "B", "(", "1", ")", "{",
		"mapping", "(", "address", "=>", "uint64", ")", "balances", ";",
		"}", "",
	}, values)

	assert.Equal(t, EOF, tokens[len(tokens)-1].Kind)
	assert.Equal(t, Punct, tokens[0].Kind)
	assert.Equal(t, String, tokens[3].Kind)
	assert.Equal(t, Operator, tokens[16].Kind)
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("test.sol", "contract Foo {\n  uint64 x;\n}")
	require.NoError(t, err)

	foo := tokens[1]
	assert.Equal(t, "Foo", foo.Value)
	assert.Equal(t, 1, foo.Pos.Line)
	assert.Equal(t, 10, foo.Pos.Column)
	assert.Equal(t, 13, foo.EndPos.Column)
	assert.Equal(t, "test.sol", foo.Pos.Filename)

	x := tokens[4]
	assert.Equal(t, "x", x.Value)
	assert.Equal(t, 2, x.Pos.Line)
	assert.Equal(t, 10, x.Pos.Column)
}

func TestTokenizeCompoundOperatorsAndComments(t *testing.T) {
	tokens, err := Tokenize("t.sol", "a += 0x1f; /* block\ncomment */ b != c && !d")
	require.NoError(t, err)

	var values []string
	for _, tok := range tokens {
		if tok.Kind != EOF {
			values = append(values, tok.Value)
		}
	}
	assert.Equal(t, []string{"a", "+=", "0x1f", ";", "b", "!=", "c", "&&", "!", "d"}, values)
	assert.Equal(t, Number, tokens[2].Kind)
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	tokens, err := Tokenize("t.sol", "uint64 #x;")
	require.NoError(t, err)
	assert.Equal(t, Invalid, tokens[1].Kind)
	assert.Equal(t, "#", tokens[1].Value)
}

func TestTokenIs(t *testing.T) {
	tok := Token{Kind: Ident, Value: "contract"}
	assert.True(t, tok.Is("contract"))
	str := Token{Kind: String, Value: "contract"}
	assert.False(t, str.Is("contract"))
}
