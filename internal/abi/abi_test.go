package abi

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractc/internal/errors"
	"contractc/internal/parser"
	"contractc/internal/semantic"
	"contractc/internal/target"
)

func encode(t *testing.T, tgt target.Target, source string) (*semantic.Namespace, []*Interface) {
	t.Helper()
	unit, errs := parser.ParseSource("abi.sol", source)
	require.Empty(t, errs, "unexpected parse errors")
	ns := semantic.Resolve(unit, target.Default(tgt), nil)
	require.False(t, ns.Diagnostics.HasErrors(), "resolution failed: %s", spew.Sdump(ns.Diagnostics.Errors()))
	return ns, Encode(ns)
}

func iface(t *testing.T, ifaces []*Interface, name string) *Interface {
	t.Helper()
	for _, i := range ifaces {
		if i.Name == name {
			return i
		}
	}
	require.Failf(t, "interface not found", "%s", name)
	return nil
}

func method(t *testing.T, i *Interface, name string) *Method {
	t.Helper()
	m, ok := i.Method(name)
	require.True(t, ok, "method %s.%s not found", i.Name, name)
	return m
}

func accountNames(m *Method) []string {
	out := make([]string, len(m.Accounts))
	for i, a := range m.Accounts {
		out[i] = a.Name
	}
	return out
}

func account(t *testing.T, m *Method, name string) semantic.AccountRequirement {
	t.Helper()
	for _, a := range m.Accounts {
		if a.Name == name {
			return a
		}
	}
	require.Failf(t, "account not found", "%s in %s", name, spew.Sdump(accountNames(m)))
	return semantic.AccountRequirement{}
}

func onlyError(t *testing.T, ns *semantic.Namespace) errors.CompilerError {
	t.Helper()
	errs := ns.Diagnostics.Errors()
	require.Len(t, errs, 1, spew.Sdump(errs))
	return errs[0]
}

func TestMangledName(t *testing.T) {
	tests := []struct {
		signature string
		want      string
	}{
		{"get(uint64)", "get_uint64"},
		{"get()", "get_"},
		{"f(uint64[],bool)", "f_uint64Array_bool"},
		{"g(bytes32[4])", "g_bytes32Array4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MangledName(tt.signature), tt.signature)
	}
}

func TestHashes(t *testing.T) {
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(Keccak256(nil)))
	assert.Equal(t, "a1e0323d05d27ad8", hex.EncodeToString(Discriminator("global", "get", 8)))
}

func TestEthereumSelectors(t *testing.T) {
	_, ifaces := encode(t, target.EVM, `
contract Token {
    function transfer(address to, uint256 amount) public {}
    function balanceOf(address owner) public view returns (uint256) { return 0; }
}
`)
	token := iface(t, ifaces, "Token")
	assert.Equal(t, "a9059cbb", hex.EncodeToString(method(t, token, "transfer").Selector))
	assert.Equal(t, "70a08231", hex.EncodeToString(method(t, token, "balanceOf").Selector))
	assert.Equal(t, Keccak256([]byte("Token"))[:4], token.Selector)
}

func TestSolanaDiscriminatorsAndMangling(t *testing.T) {
	ns, ifaces := encode(t, target.Solana, `
contract C {
    @payer(payer)
    constructor() {}

    function get(uint64 a) public pure returns (uint64) { return a; }
    function get(bool b) public pure returns (bool) { return b; }
    function single() public pure {}
}
`)
	c := iface(t, ifaces, "C")
	assert.Equal(t, "872ccdc6190148bc", hex.EncodeToString(method(t, c, "new").Selector))
	assert.Equal(t, "00e5f7470a2e0b98", hex.EncodeToString(method(t, c, "get_uint64").Selector))
	assert.Equal(t, "8bf6a83c64b40793", hex.EncodeToString(method(t, c, "get_bool").Selector))

	single := method(t, c, "single")
	assert.Equal(t, Discriminator("global", "single", 8), single.Selector)

	// the function records the selector of its declaring contract
	assert.Equal(t, single.Selector, ns.Functions[single.Function].Selector)
}

func TestMangledNameCollision(t *testing.T) {
	ns, _ := encode(t, target.Solana, `
contract C {
    function foo(uint64 a) public pure {}
    function foo_uint64() public pure {}
}
`)
	err := onlyError(t, ns)
	assert.Equal(t, errors.ErrorMangledCollision, err.Code)
	assert.Equal(t, "mangling the symbol of overloaded function 'foo' with signature 'foo(uint64)' results in a new symbol 'foo_uint64' but this symbol already exists", err.Message)
	require.Len(t, err.Notes, 1)
	assert.Equal(t, "this function declaration conflicts with mangled name", err.Notes[0].Message)
}

func TestExplicitSelectors(t *testing.T) {
	t.Run("same selector", func(t *testing.T) {
		ns, _ := encode(t, target.Polkadot, `
contract C {
    @selector([1, 2, 3, 4])
    function f() public pure {}
    @selector([1, 2, 3, 4])
    function g() public pure {}
}
`)
		err := onlyError(t, ns)
		assert.Equal(t, errors.ErrorSelectorCollision, err.Code)
		assert.Equal(t, "function 'g' selector is the same as function 'f'", err.Message)
		require.Len(t, err.Notes, 1)
		assert.Equal(t, "definition of function 'f'", err.Notes[0].Message)
	})

	t.Run("internal function does not hide a collision", func(t *testing.T) {
		// keccak256("f()") starts with 26121ff0
		ns, _ := encode(t, target.Polkadot, `
contract C {
    function f() internal pure {}
    @selector([0x26, 0x12, 0x1f, 0xf0])
    function g() public pure {}
    @selector([0x26, 0x12, 0x1f, 0xf0])
    function h() public pure {}
}
`)
		err := onlyError(t, ns)
		assert.Equal(t, errors.ErrorSelectorCollision, err.Code)
		assert.Equal(t, "function 'h' selector is the same as function 'g'", err.Message)
	})

	t.Run("wrong length", func(t *testing.T) {
		ns, _ := encode(t, target.Polkadot, `
contract C {
    @selector([1, 2, 3])
    function f() public pure {}
}
`)
		err := onlyError(t, ns)
		assert.Equal(t, errors.ErrorSelectorLength, err.Code)
		assert.Equal(t, "function 'f' selector must be 4 bytes rather than 3 bytes", err.Message)
	})

	t.Run("explicit selector is kept", func(t *testing.T) {
		_, ifaces := encode(t, target.Polkadot, `
contract C {
    @selector([0xde, 0xad, 0xbe, 0xef])
    function f() public pure {}
}
`)
		assert.Equal(t, "deadbeef", hex.EncodeToString(method(t, iface(t, ifaces, "C"), "f").Selector))
	})
}

func TestPolkadotRequiresPublicSurface(t *testing.T) {
	ns, _ := encode(t, target.Polkadot, `
contract Hidden {
    function f() internal pure {}
}
`)
	err := onlyError(t, ns)
	assert.True(t, strings.HasPrefix(err.Message, "contracts without public storage or functions are not allowed on Polkadot"))
}

func TestCodecDescriptors(t *testing.T) {
	const source = `
contract C {
    function f(uint32 a, string s, address to) public pure returns (bool) { return true; }
}
`
	tests := []struct {
		tgt   target.Target
		sizes []uint64
	}{
		{target.EVM, []uint64{32, 32, 32}},
		{target.Polkadot, []uint64{4, 1, 32}},
		{target.Solana, []uint64{4, 4, 32}},
	}
	for _, tt := range tests {
		t.Run(tt.tgt.String(), func(t *testing.T) {
			_, ifaces := encode(t, tt.tgt, source)
			f := method(t, iface(t, ifaces, "C"), "f")
			require.Len(t, f.Params, 3)
			for i, want := range tt.sizes {
				assert.Equal(t, want, f.Params[i].Size, f.Params[i].Name)
			}
			assert.True(t, f.Params[1].Dynamic)
			assert.False(t, f.Params[0].Dynamic)
			assert.Equal(t, "string", f.Params[1].Type)
			require.Len(t, f.Returns, 1)
			assert.Equal(t, "bool", f.Returns[0].Type)
		})
	}
}

const childSource = `
@program_id("SoLDxXQ9GMoa15i4NavZc61XGkas2aom4aNiWT6KUER")
contract Child {
    uint64 stored;

    @payer(payer)
    constructor() {}

    function set(uint64 v) external { stored = v; }
    function get() external view returns (uint64) { return stored; }
    function stamp() external view returns (uint64) { return block.timestamp; }
}
`

func TestAccountsOfCallee(t *testing.T) {
	_, ifaces := encode(t, target.Solana, childSource)
	child := iface(t, ifaces, "Child")

	ctor := method(t, child, "new")
	assert.Equal(t, []string{"dataAccount", "payer", "systemProgram"}, accountNames(ctor))
	data := account(t, ctor, "dataAccount")
	assert.True(t, data.Signer)
	assert.True(t, data.Writable)
	assert.True(t, data.Generated())
	assert.False(t, account(t, ctor, "payer").Generated())

	set := method(t, child, "set")
	assert.Equal(t, []string{"dataAccount"}, accountNames(set))
	assert.True(t, account(t, set, "dataAccount").Writable)

	get := method(t, child, "get")
	assert.False(t, account(t, get, "dataAccount").Writable)

	assert.Equal(t, []string{"dataAccount", "clock"}, accountNames(method(t, child, "stamp")))
}

func TestAccountsFlowToCaller(t *testing.T) {
	_, ifaces := encode(t, target.Solana, childSource+`
contract Parent {
    function build() external { new Child(); }
    function touch() external { Child.set(1); }
    function time() external view returns (uint64) { return Child.stamp(); }
}
`)
	parent := iface(t, ifaces, "Parent")

	build := method(t, parent, "build")
	assert.Equal(t, []string{"dataAccount", "Child_programId", "Child_dataAccount", "payer", "systemProgram"}, accountNames(build))
	childData := account(t, build, "Child_dataAccount")
	assert.True(t, childData.Signer)
	assert.True(t, childData.Writable)
	assert.True(t, account(t, build, "payer").Signer)

	touch := method(t, parent, "touch")
	assert.Equal(t, []string{"dataAccount", "systemProgram", "Child_programId", "Child_dataAccount"}, accountNames(touch))
	assert.True(t, account(t, touch, "Child_dataAccount").Writable)

	time := method(t, parent, "time")
	assert.Contains(t, accountNames(time), "clock")
	assert.False(t, account(t, time, "Child_dataAccount").Writable)
}

func TestInternalCallsCarryAccounts(t *testing.T) {
	_, ifaces := encode(t, target.Solana, `
contract Clocked {
    function stamp() internal view returns (uint64) { return block.timestamp; }
    function run() external view returns (uint64) { return stamp(); }
}
`)
	assert.Equal(t, []string{"dataAccount", "clock"}, accountNames(method(t, iface(t, ifaces, "Clocked"), "run")))
}

func TestRepeatedCallsNeedExplicitAccounts(t *testing.T) {
	ns, _ := encode(t, target.Solana, childSource+`
contract Creator {
    function create() external {
        new Child();
        new Child();
    }
}
`)
	err := onlyError(t, ns)
	assert.Equal(t, errors.ErrorAmbiguousAccounts, err.Code)
	assert.True(t, strings.HasPrefix(err.Message, "contract 'Child' is called more than once in this function, so automatic account collection cannot happen"))
	require.Len(t, err.Notes, 1)
	assert.Equal(t, "other call", err.Notes[0].Message)
	assert.Greater(t, err.Position.Line, err.Notes[0].Position.Line)
}

func TestExplicitAccountsSkipInference(t *testing.T) {
	ns, ifaces := encode(t, target.Solana, childSource+`
contract Caller {
    function run(AccountMeta[2] metas) external {
        Child.set{accounts: metas}(1);
        Child.set{accounts: metas}(2);
    }
}
`)
	require.False(t, ns.Diagnostics.HasErrors(), spew.Sdump(ns.Diagnostics.Errors()))
	run := method(t, iface(t, ifaces, "Caller"), "run")
	assert.NotContains(t, accountNames(run), "Child_dataAccount")
	assert.Contains(t, accountNames(run), "Child_programId")
}

func TestAccountNameCollision(t *testing.T) {
	ns, _ := encode(t, target.Solana, `
@program_id("SoLDxXQ9GMoa15i4NavZc61XGkas2aom4aNiWT6KUER")
contract Vault {
    @mutableAccount(store)
    function pay() external {}
}

contract User {
    @account(store)
    function run() external { Vault.pay(); }
}
`)
	err := onlyError(t, ns)
	assert.Equal(t, errors.ErrorAccountCollision, err.Code)
	assert.True(t, strings.HasPrefix(err.Message, "account name collision encountered"))
	require.Len(t, err.Notes, 1)
	assert.Equal(t, "other declaration", err.Notes[0].Message)
}

func TestWellKnownProgramAccount(t *testing.T) {
	_, ifaces := encode(t, target.Solana, `
@program_id("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
interface Token {
    function transfer(uint64 amount) external;
}

contract Wallet {
    function send() external { Token.transfer(5); }
}
`)
	names := accountNames(method(t, iface(t, ifaces, "Wallet"), "send"))
	assert.Contains(t, names, "tokenProgram")
	assert.Contains(t, names, "Token_dataAccount")
	assert.NotContains(t, names, "Token_programId")
}
