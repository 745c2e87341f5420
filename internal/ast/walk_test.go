package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractc/internal/ast"
	"contractc/internal/parser"
)

const walkSource = `contract Vault is Base(1) {
    uint64 total;

    @payer(payer)
    constructor() Base(2) {}

    function deposit(uint64 amount) public {
        if (amount > 0) {
            total = total + amount;
        }
        Other(target).ping{value: 1}(amount);
    }
}
`

func TestInspectVisitsEveryLevel(t *testing.T) {
	unit, errs := parser.ParseSource("walk.sol", walkSource)
	require.Empty(t, errs)

	counts := make(map[ast.NodeType]int)
	ast.Inspect(unit, func(n ast.Node) bool {
		counts[n.NodeType()]++
		return true
	})

	assert.Equal(t, 1, counts[ast.SOURCE_UNIT])
	assert.Equal(t, 1, counts[ast.CONTRACT])
	assert.Equal(t, 2, counts[ast.BASE_SPEC])
	assert.Equal(t, 1, counts[ast.ANNOTATION])
	assert.Equal(t, 2, counts[ast.FUNCTION])
	assert.Equal(t, 1, counts[ast.IF_STMT])
	assert.Equal(t, 1, counts[ast.CALL_OPTION])
	assert.Equal(t, 2, counts[ast.CALL_EXPR])
}

func TestInspectSkipsChildren(t *testing.T) {
	unit, errs := parser.ParseSource("walk.sol", walkSource)
	require.Empty(t, errs)

	var idents []string
	ast.Inspect(unit, func(n ast.Node) bool {
		if _, ok := n.(*ast.Function); ok {
			return false
		}
		if id, ok := n.(*ast.IdentExpr); ok {
			idents = append(idents, id.Name.Value)
		}
		return true
	})
	assert.Empty(t, idents)
}

func TestPositionBefore(t *testing.T) {
	a := ast.Position{Filename: "a.sol", Line: 2, Column: 5}
	b := ast.Position{Filename: "a.sol", Line: 2, Column: 9}
	c := ast.Position{Filename: "b.sol", Line: 1, Column: 1}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
	assert.True(t, b.Before(c))
}
