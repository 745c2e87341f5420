package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractc/grammar"
	"contractc/internal/ast"
)

func parseOK(t *testing.T, source string) *ast.SourceUnit {
	t.Helper()
	unit, errs := ParseSource("test.sol", source)
	require.Empty(t, errs, "unexpected parse errors")
	require.NotNil(t, unit)
	return unit
}

func prepareParser(t *testing.T, expr string) *Parser {
	t.Helper()
	tokens, err := grammar.Tokenize("expr.sol", expr)
	require.NoError(t, err)
	return NewParser("expr.sol", tokens)
}

func TestParseContractKinds(t *testing.T) {
	unit := parseOK(t, `
pragma solidity ^0.8.0;
import "other.sol";

contract A {}
abstract contract B {}
interface I {}
library L {}
`)
	require.Len(t, unit.Contracts, 4)
	assert.Equal(t, ast.KindContract, unit.Contracts[0].Kind)
	assert.Equal(t, ast.KindAbstract, unit.Contracts[1].Kind)
	assert.Equal(t, ast.KindInterface, unit.Contracts[2].Kind)
	assert.Equal(t, ast.KindLibrary, unit.Contracts[3].Kind)
	assert.Equal(t, "B", unit.Contracts[1].Name.Value)
}

func TestParseBasesAndConstructorArguments(t *testing.T) {
	unit := parseOK(t, `
contract Base { constructor(uint64 x) {} }
contract Mid is Base(1) {}
contract Child is Mid, Base {
    constructor() Base(2) {}
}
`)
	mid := unit.Contracts[1]
	require.Len(t, mid.Bases, 1)
	assert.True(t, mid.Bases[0].HasArgs)
	assert.Equal(t, "Base(1)", mid.Bases[0].String())

	child := unit.Contracts[2]
	require.Len(t, child.Bases, 2)
	assert.False(t, child.Bases[0].HasArgs)

	ctor := child.Functions[0]
	assert.Equal(t, ast.FuncConstructor, ctor.Kind)
	require.Len(t, ctor.BaseCalls, 1)
	assert.Equal(t, "Base", ctor.BaseCalls[0].Name.Value)
	assert.Equal(t, "2", ctor.BaseCalls[0].Args[0].String())
}

func TestParseFunctionAttributes(t *testing.T) {
	unit := parseOK(t, `
contract C is A, B {
    function f(uint64 a, bool) public view virtual override(A, B) returns (uint64 r, bool) {
        return (a, true);
    }
    function g() external payable;
    function h() internal pure override {}
}
`)
	fns := unit.Contracts[0].Functions
	require.Len(t, fns, 3)

	f := fns[0]
	assert.Equal(t, "f", f.Name.Value)
	assert.Equal(t, ast.Public, f.Visibility)
	assert.Equal(t, ast.View, f.Mutability)
	assert.True(t, f.Virtual)
	require.NotNil(t, f.Override)
	require.Len(t, f.Override.Bases, 2)
	assert.Equal(t, "B", f.Override.Bases[1].Value)
	require.Len(t, f.Params, 2)
	assert.Nil(t, f.Params[1].Name)
	require.Len(t, f.Returns, 2)
	require.NotNil(t, f.Body)

	ret, ok := f.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	assert.Len(t, ret.Values, 2)

	assert.Nil(t, fns[1].Body)
	assert.Equal(t, ast.Payable, fns[1].Mutability)
	assert.Equal(t, ast.External, fns[1].Visibility)

	require.NotNil(t, fns[2].Override)
	assert.Empty(t, fns[2].Override.Bases)
}

func TestParseVariablesAndStructs(t *testing.T) {
	unit := parseOK(t, `
contract S {
    struct Point { uint64 x; uint64 y; }
    mapping(address owner => uint64) public balances;
    uint64[4] fixedArr;
    Point[] points;
    uint64 constant LIMIT = 0x10;
    address payable wallet;
}
`)
	c := unit.Contracts[0]
	require.Len(t, c.Structs, 1)
	assert.Len(t, c.Structs[0].Fields, 2)
	require.Len(t, c.Variables, 5)

	balances := c.Variables[0]
	assert.True(t, balances.Type.IsMapping())
	assert.Equal(t, "mapping(address => uint64)", balances.Type.String())
	assert.Equal(t, ast.Public, balances.Visibility)

	assert.Equal(t, []ast.ArrayDim{{Fixed: true, Size: 4}}, c.Variables[1].Type.Dims)
	assert.Equal(t, []ast.ArrayDim{{}}, c.Variables[2].Type.Dims)

	limit := c.Variables[3]
	assert.True(t, limit.Constant)
	lit, ok := limit.Init.(*ast.NumberLit)
	require.True(t, ok)
	assert.Equal(t, int64(16), lit.Value.Int64())

	assert.Equal(t, "address", c.Variables[4].Type.Name.Value)
}

func TestParseAnnotations(t *testing.T) {
	unit := parseOK(t, `
@program_id("SoLDxXQ9GMoa15i4NavZc61XGkas2aom4aNiWT6KUER")
contract Token {
    @payer(payer)
    @space(100)
    constructor(@seed bytes s) {}

    @mutableAccount(acc)
    function f() external {}
}
`)
	c := unit.Contracts[0]
	require.Len(t, c.Annotations, 1)
	assert.Equal(t, "program_id", c.Annotations[0].Name.Value)

	ctor := c.Functions[0]
	require.Len(t, ctor.Annotations, 2)
	assert.Equal(t, "payer", ctor.Annotations[0].Name.Value)
	assert.Equal(t, "space", ctor.Annotations[1].Name.Value)
	require.NotNil(t, ctor.Params[0].Annotation)
	assert.Equal(t, "seed", ctor.Params[0].Annotation.Name.Value)

	assert.Equal(t, ctor.Annotations[0].Pos, ctor.Pos)
}

func TestParseStatements(t *testing.T) {
	unit := parseOK(t, `
contract C {
    function f(uint64 n) public returns (uint64) {
        uint64 total = 0;
        for (uint64 i = 0; i < n; i++) {
            total += i;
        }
        while (total > 100) total -= 1;
        if (total == 0) { return 1; } else if (total == 1) return 2;
        balances[msg.sender] = total;
        emitIt();
        return total;
    }
}
`)
	body := unit.Contracts[0].Functions[0].Body
	require.Len(t, body.Stmts, 7)

	_, ok := body.Stmts[0].(*ast.VarDeclStmt)
	assert.True(t, ok)

	loop, ok := body.Stmts[1].(*ast.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "uint64 i = 0;", loop.Init.String())
	post, ok := loop.Post.(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "+=", post.Op)

	_, ok = body.Stmts[2].(*ast.WhileStmt)
	assert.True(t, ok)

	ifStmt, ok := body.Stmts[3].(*ast.IfStmt)
	require.True(t, ok)
	_, ok = ifStmt.Else.(*ast.IfStmt)
	assert.True(t, ok)

	assign, ok := body.Stmts[4].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "balances[msg.sender]", assign.Target.String())

	_, ok = body.Stmts[5].(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestParseExpressionPrecedence(t *testing.T) {
	cases := map[string]string{
		"1 + 2 * 3":           "(1 + (2 * 3))",
		"a || b && c":         "(a || (b && c))",
		"a == b + 1":          "(a == (b + 1))",
		"(1 + 2) * 3":         "((1 + 2) * 3)",
		"-x + y":              "(-x + y)",
		"!ok && f(1).g":       "(!ok && f(1).g)",
		"a.b[c](d)":           "a.b[c](d)",
		"x < y - 1":           "(x < (y - 1))",
		`keccak256("abc")`:    `keccak256("abc")`,
		"[1, 2, 3]":           "[1, 2, 3]",
		"payable(msg.sender)": "payable(msg.sender)",
	}
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			p := prepareParser(t, src)
			expr := p.parseExpr()
			assert.Empty(t, p.errors)
			assert.Equal(t, want, expr.String())
		})
	}
}

func TestParseCallOptionsAndNew(t *testing.T) {
	p := prepareParser(t, "Other.bar{accounts: metas, seeds: s}(1, x)")
	expr := p.parseExpr()
	require.Empty(t, p.errors)
	call, ok := expr.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Options, 2)
	assert.Equal(t, "accounts", call.Options[0].Name.Value)
	assert.Len(t, call.Args, 2)
	assert.Equal(t, "Other.bar{accounts: metas, seeds: s}(1, x)", call.String())

	p = prepareParser(t, "new Child{program_id: pid}(7)")
	expr = p.parseExpr()
	require.Empty(t, p.errors)
	n, ok := expr.(*ast.NewExpr)
	require.True(t, ok)
	assert.Equal(t, "Child", n.Contract.Value)
	require.Len(t, n.Options, 1)
	assert.Equal(t, "program_id", n.Options[0].Name.Value)
}

func TestParseErrorsRecover(t *testing.T) {
	unit, errs := ParseSource("bad.sol", `
contract A {
    function f() public { uint64 x = ; }
    function g() public {}
}
contract B {}
`)
	require.NotEmpty(t, errs)
	assert.Equal(t, "bad.sol", errs[0].Position.Filename)
	require.Len(t, unit.Contracts, 2)
	names := []string{}
	for _, f := range unit.Contracts[0].Functions {
		names = append(names, f.Name.Value)
	}
	assert.Contains(t, names, "g")
}

func TestParseInvalidCharacter(t *testing.T) {
	_, errs := ParseSource("bad.sol", "contract A { # }")
	require.NotEmpty(t, errs)
	assert.Equal(t, "unexpected character '#'", errs[0].Message)
}

func TestParsePositions(t *testing.T) {
	unit := parseOK(t, "contract A {\n    function foo() public {}\n}\n")
	f := unit.Contracts[0].Functions[0]
	assert.Equal(t, 2, f.Pos.Line)
	assert.Equal(t, 5, f.Pos.Column)
	assert.Equal(t, 2, f.Name.Pos.Line)
	assert.Equal(t, 14, f.Name.Pos.Column)
	assert.Equal(t, 3, unit.Contracts[0].EndPos.Line)
}
