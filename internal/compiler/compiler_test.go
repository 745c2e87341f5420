package compiler

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractc/internal/errors"
	"contractc/internal/semantic"
	"contractc/internal/target"
)

const diamond = `
abstract contract Base1 {
    function foo() public pure virtual returns (uint64) { return 100; }
}

abstract contract Base2 {
    function foo() public pure virtual returns (uint64) { return 200; }
}

contract Derived is Base1, Base2 {
    function foo() public pure override(Base1, Base2) returns (uint64) { return 2; }
    function qualified() public pure returns (uint64) { return Base1.foo(); }
}
`

func TestCompileDiamond(t *testing.T) {
	for _, tgt := range []target.Target{target.Solana, target.Polkadot, target.EVM} {
		t.Run(tgt.String(), func(t *testing.T) {
			res := CompileSource("diamond.sol", diamond, target.Default(tgt))
			require.True(t, res.Ok, spew.Sdump(res.Errors()))

			contracts := res.Contracts()
			require.Len(t, contracts, 1)
			assert.Equal(t, "Derived", contracts[0].Name)

			derived, ok := res.Interface("Derived")
			require.True(t, ok)
			for _, m := range derived.Methods {
				assert.Len(t, m.Selector, res.Namespace.Config.SelectorLength, m.Name)
			}

			var qualified *semantic.Function
			for _, no := range contracts[0].Functions {
				if f := res.Namespace.Functions[no]; f.Name == "qualified" {
					qualified = f
				}
			}
			require.NotNil(t, qualified)
			require.Len(t, qualified.Calls, 1)
			site := qualified.Calls[0]
			assert.False(t, site.Virtual)
			assert.Equal(t, "Base1", res.Namespace.Contracts[res.Namespace.Functions[site.Function].Contract].Name)
		})
	}
}

func TestCompileFlatBufferLayout(t *testing.T) {
	res := CompileSource("layout.sol", `
contract B {
    bytes32 public hash;
    uint64[6] public values;
}
`, target.Default(target.Solana))
	require.True(t, res.Ok, spew.Sdump(res.Errors()))

	b := res.Contracts()[0]
	require.Len(t, b.Layout, 2)
	assert.Equal(t, uint64(0), b.Layout[0].Offset)
	assert.Equal(t, uint64(32), b.Layout[1].Offset)
	assert.Equal(t, uint64(80), b.FixedSize)
}

func TestCompileInsufficientSpace(t *testing.T) {
	res := CompileSource("space.sol", `
contract C {
    address owner;
    address spender;

    @payer(payer)
    @space(5)
    constructor(address o, address s) {
        owner = o;
        spender = s;
    }

    function who() public view returns (address) { return owner; }
}
`, target.Default(target.Solana))

	assert.False(t, res.Ok)
	assert.Nil(t, res.Contracts())
	errs := res.Errors()
	require.Len(t, errs, 1, spew.Sdump(errs))
	assert.Equal(t, errors.ErrorInsufficientSpace, errs[0].Code)
	assert.Equal(t, "contract requires at least 80 bytes of space", errs[0].Message)
	assert.Equal(t, 7, errs[0].Position.Line)
}

func TestCompileReportsSyntaxAndSemanticErrors(t *testing.T) {
	res := CompileSource("broken.sol", `
contract A {
    function f() public { undefined_name = 1; }
}

contract B {
    function g() public {
`, target.Default(target.EVM))

	assert.False(t, res.Ok)
	var codes []string
	for _, d := range res.Errors() {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, errors.ErrorSyntax)
	assert.Contains(t, codes, errors.ErrorUndefinedName)
}

func TestWarningsDoNotBlockCodegen(t *testing.T) {
	res := CompileSource("warn.sol", `
contract W {
    uint64 unused;
    function f() public returns (uint64) { return 1; }
}
`, target.Default(target.EVM))

	require.True(t, res.Ok, spew.Sdump(res.Errors()))
	assert.Len(t, res.Contracts(), 1)

	var messages []string
	for _, d := range res.Diagnostics {
		if !d.IsError() {
			messages = append(messages, d.Message)
		}
	}
	assert.Contains(t, messages, "storage variable 'unused' has never been used")
	assert.Contains(t, messages, "function can be declared 'pure'")
}
