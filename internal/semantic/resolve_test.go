package semantic

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractc/internal/errors"
	"contractc/internal/parser"
	"contractc/internal/target"
)

func resolveSource(t *testing.T, tgt target.Target, source string) *Namespace {
	t.Helper()
	unit, errs := parser.ParseSource("test.sol", source)
	require.Empty(t, errs, "unexpected parse errors")
	return Resolve(unit, target.Default(tgt), nil)
}

func messages(diags []errors.CompilerError) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func errorMessages(ns *Namespace) []string {
	return messages(ns.Diagnostics.Errors())
}

func warningMessages(ns *Namespace) []string {
	return messages(ns.Diagnostics.Warnings())
}

// findError returns the first error whose message contains text
func findError(t *testing.T, ns *Namespace, text string) errors.CompilerError {
	t.Helper()
	for _, d := range ns.Diagnostics.Errors() {
		if strings.Contains(d.Message, text) {
			return d
		}
	}
	require.Failf(t, "error not reported", "want %q, got %s", text, spew.Sdump(errorMessages(ns)))
	return errors.CompilerError{}
}

func function(t *testing.T, ns *Namespace, contract, name string) *Function {
	t.Helper()
	c, ok := ns.LookupContract(contract)
	require.True(t, ok, "contract %s", contract)
	for _, no := range c.Functions {
		if ns.Functions[no].Name == name {
			return ns.Functions[no]
		}
	}
	require.Failf(t, "function not found", "%s.%s", contract, name)
	return nil
}

const diamondSource = `
abstract contract Base1 {
    function foo() public virtual returns (uint64) { return 100; }
    function callFoo() public returns (uint64) { return foo(); }
}

abstract contract Base2 {
    function foo() public virtual returns (uint64) { return 200; }
}

contract Derived is Base1, Base2 {
    function foo() public override(Base1, Base2) returns (uint64) { return 2; }
    function qualified() public returns (uint64) { return Base1.foo(); }
}
`

func TestQualifiedCallBypassesVirtualDispatch(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, diamondSource)
	require.Empty(t, errorMessages(ns))

	base1Foo := function(t, ns, "Base1", "foo")
	derivedFoo := function(t, ns, "Derived", "foo")

	qualified := function(t, ns, "Derived", "qualified")
	require.Len(t, qualified.Calls, 1)
	site := qualified.Calls[0]
	assert.Equal(t, InternalCall, site.Kind)
	assert.Equal(t, base1Foo.No, site.Function)
	assert.False(t, site.Virtual)

	unqualified := function(t, ns, "Base1", "callFoo")
	require.Len(t, unqualified.Calls, 1)
	assert.True(t, unqualified.Calls[0].Virtual)

	derived, _ := ns.LookupContract("Derived")
	assert.Equal(t, derivedFoo.No, ns.ResolveVirtual(derived.No, base1Foo.No))

	base1, _ := ns.LookupContract("Base1")
	assert.Equal(t, base1Foo.No, ns.ResolveVirtual(base1.No, base1Foo.No))
}

func TestLinearizationCollapsesDiamond(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
contract Root {}
contract Left is Root {}
contract Right is Root {}
contract Bottom is Left, Right {}
`)
	require.Empty(t, errorMessages(ns))

	bottom, _ := ns.LookupContract("Bottom")
	names := ns.ContractNames(bottom.Linearized)
	assert.Equal(t, "Root,Right,Left,Bottom", names)

	levels := ns.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, 2, bottom.Level())
}

func TestCyclicBaseStopsOnlyThatContract(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
contract A is B {}
contract B is A {}
contract Fine { function f() public pure returns (uint64) { return 1; } }
`)
	findError(t, ns, "base 'A' from contract 'B' is cyclic")

	b, _ := ns.LookupContract("B")
	assert.True(t, b.Broken)
	fine, _ := ns.LookupContract("Fine")
	assert.False(t, fine.Broken)
}

func TestOverrideOfNonVirtualFunction(t *testing.T) {
	source := strings.Replace(diamondSource,
		"function foo() public virtual returns (uint64) { return 200; }",
		"function foo() public returns (uint64) { return 200; }", 1)
	ns := resolveSource(t, target.Polkadot, source)

	err := findError(t, ns, "function 'foo' overrides functions which are not 'virtual'")
	require.Len(t, err.Notes, 1)
	assert.Equal(t, "function 'foo' is not specified 'virtual'", err.Notes[0].Message)
	assert.Equal(t, 8, err.Notes[0].Position.Line)
}

func TestOverrideListMissingBase(t *testing.T) {
	source := strings.Replace(diamondSource, "override(Base1, Base2)", "override(Base1)", 1)
	ns := resolveSource(t, target.Polkadot, source)

	err := findError(t, ns, "missing overrides")
	assert.Contains(t, err.Message, "missing overrides 'Base2'")
	assert.NotContains(t, err.Message, "missing overrides 'Base1")
}

func TestOverrideRules(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name: "override without base",
			source: `contract C {
    function f() public override {}
}`,
			want: "'f' does not override anything",
		},
		{
			name: "missing override attribute",
			source: `abstract contract A { function f() public virtual; }
contract B is A { function f() public {} }`,
			want: "function 'f' should specify 'override'",
		},
		{
			name: "list without the base",
			source: `abstract contract A { function f() public virtual {} }
abstract contract X {}
contract B is A, X { function f() public override(X) {} }`,
			want: "function 'f' override list does not contain 'A'",
		},
		{
			name: "different return types",
			source: `abstract contract A { function f() public virtual returns (uint64) { return 1; } }
contract B is A { function f() public override returns (uint32) { return 1; } }`,
			want: "function 'f' overrides function with different return types",
		},
		{
			name: "stricter base mutability",
			source: `abstract contract A { function f() public pure virtual returns (uint64) { return 1; } }
contract B is A { function f() public override returns (uint64) { return 2; } }`,
			want: "mutability 'nonpayable' of function 'f' is not compatible with mutability 'pure'",
		},
		{
			name: "visibility change",
			source: `abstract contract A { function f() public virtual {} }
contract B is A { function f() internal override {} }`,
			want: "visibility 'internal' of function 'f' is not compatible with visibility 'public'",
		},
		{
			name: "unimplemented interface function",
			source: `interface I { function f() external; }
contract C is I {}`,
			want: "contract 'C' missing override for function 'f'",
		},
		{
			name: "override twice in one contract",
			source: `abstract contract A { function f() public virtual {} }
contract B is A { function f() public override {} function f() public override {} }`,
			want: "function 'f' overrides function in same contract",
		},
		{
			name: "inherited variable clash",
			source: `contract A { uint64 x; }
contract B is A { function x() public {} }`,
			want: "already defined 'x'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := resolveSource(t, target.Polkadot, tt.source)
			findError(t, ns, tt.want)
		})
	}
}

func TestUnresolvedOverrideStaysPending(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
abstract contract A { function f() public virtual {} }
abstract contract B { function f() public virtual {} }
contract C is A, B { function f() public {} }
`)
	findError(t, ns, "function 'f' should specify override list")
	err := findError(t, ns, "function 'f' with this signature already defined")
	assert.NotEmpty(t, err.Notes)
}

func TestInterfaceImplementationNeedsNoOverride(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
interface I { function f() external returns (uint64); }
contract C is I { function f() external pure returns (uint64) { return 1; } }
`)
	assert.Empty(t, errorMessages(ns))
}

func TestBaseConstructorArguments(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract Base { constructor(uint64 x) {} }
contract Mid is Base(1) {}
contract Child is Mid {
    constructor() Base(2) {}
}
`)
		err := findError(t, ns, "duplicate argument for base contract 'Base'")
		require.Len(t, err.Notes, 1)
		assert.Equal(t, "previous argument for base contract 'Base'", err.Notes[0].Message)
	})

	t.Run("missing", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract Base { constructor(uint64 x) {} }
contract Child is Base {}
`)
		err := findError(t, ns, "missing arguments to base contract 'Base' constructor")
		assert.Equal(t, 3, err.Position.Line)
		require.Len(t, err.Notes, 1)
		assert.Equal(t, "constructor of base contract 'Base' requires arguments", err.Notes[0].Message)
		assert.Equal(t, 2, err.Notes[0].Position.Line)
	})

	t.Run("supplied by intermediate constructor", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract A { constructor(uint64 x) {} }
contract B is A { constructor() A(1) {} }
contract C is B {}
`)
		assert.Empty(t, errorMessages(ns))
	})

	t.Run("reported alongside unrelated errors", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract A { constructor(uint64 x) {} }
contract C is A {}
contract Other {
    uint64 x;
    bool x;
}
`)
		findError(t, ns, "missing arguments to base contract 'A' constructor")
		findError(t, ns, "already defined")
	})

	t.Run("abstract contracts may defer", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract Base { constructor(uint64 x) {} }
abstract contract Mid is Base {}
contract Child is Mid { constructor() Base(7) {} }
`)
		assert.Empty(t, errorMessages(ns))

		child := function(t, ns, "Child", "new")
		require.Len(t, child.BaseCalls, 1)
		assert.NotEqual(t, -1, child.BaseCalls[0].Constructor)
	})

	t.Run("wrong arity", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract Base { constructor(uint64 x) {} }
contract Child is Base(1, 2) {}
`)
		findError(t, ns, "constructor expects 1 arguments, 2 provided")
	})
}

func TestOverloadResolution(t *testing.T) {
	source := `
contract C {
    function f(uint32 a) public pure returns (uint64) { return a; }
    function f(int64 a) public pure returns (uint64) { return 1; }
    function g() public pure returns (uint64) { return CALL; }
}
`
	t.Run("exact match wins", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, strings.Replace(source, "CALL", "f(uint32(1))", 1))
		require.Empty(t, errorMessages(ns))
		g := function(t, ns, "C", "g")
		require.Len(t, g.Calls, 1)
		assert.Equal(t, "f(uint32)", ns.Functions[g.Calls[0].Function].Signature)
	})

	t.Run("ambiguous", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, strings.Replace(source, "CALL", "f(1)", 1))
		err := findError(t, ns, "function call can be resolved to multiple functions")
		assert.Len(t, err.Notes, 2)
	})

	t.Run("no candidate", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, strings.Replace(source, "CALL", "f(true)", 1))
		err := findError(t, ns, "cannot find overloaded function which matches signature")
		assert.Len(t, err.Notes, 2)
	})
}

func TestDuplicateSignature(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
contract C {
    function f(uint64 a) public {}
    function f(uint64 b) public {}
}
`)
	err := findError(t, ns, "overloaded function with this signature already exist")
	require.Len(t, err.Notes, 1)
	assert.Equal(t, 3, err.Notes[0].Position.Line)
}

func TestShadowedTypeIsWarning(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
contract Point {}
contract C {
    struct Point { uint64 x; }
    Point p;
    function f() public view returns (uint64) { return p.x; }
}
`)
	assert.Empty(t, errorMessages(ns))
	assert.NotEmpty(t, ns.Diagnostics.Warnings())
}

func TestMutability(t *testing.T) {
	t.Run("pure reads state", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract C {
    uint64 counter;
    function get() public pure returns (uint64) { return counter; }
}
`)
		findError(t, ns, "function declared 'pure' but this expression reads from state")
	})

	t.Run("view writes state", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract C {
    uint64 counter;
    function set() public view { counter = 1; }
}
`)
		findError(t, ns, "function declared 'view' but this expression writes to state")
	})

	t.Run("suggestions", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract C {
    uint64 counter;
    uint64 unused;
    function get() public returns (uint64) { return counter; }
    function set(uint64 v) public { counter = v; }
    function one() public view returns (uint64) { return 1; }
}
`)
		require.Empty(t, errorMessages(ns))
		warnings := warningMessages(ns)
		assert.Contains(t, warnings, "function can be declared 'view'")
		assert.Contains(t, warnings, "function declared 'view' can be declared 'pure'")
		assert.Contains(t, warnings, "storage variable 'unused' has never been used")
		assert.Len(t, warnings, 3)
	})
}

func TestUndefinedNameSuggestsCandidates(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
contract C {
    uint64 balance;
    function f() public view returns (uint64) { return balanse; }
}
`)
	err := findError(t, ns, "'balanse' not found")
	require.NotEmpty(t, err.Suggestions)
	assert.Contains(t, err.Suggestions[0].Message, "balance")
}

func TestConstructionRules(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
interface I {}
contract A {
    function make() public { new I(); }
}
contract B {
    function make() public { new B(); }
}
`)
	findError(t, ns, "cannot construct 'I' of type 'interface'")
	findError(t, ns, "circular reference creating contract 'B'")
}

func TestCallOptionsOnSlotTargets(t *testing.T) {
	ns := resolveSource(t, target.Polkadot, `
contract Other { function bar() public payable {} }
contract C {
    function f(Other o) public { o.bar{value: 1, program_id: o}(); }
}
`)
	findError(t, ns, "'program_id' not permitted for external calls or constructors on polkadot")
}

func TestSolanaAnnotations(t *testing.T) {
	t.Run("payer required", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract C {
    @space(100)
    constructor() {}
}
`)
		findError(t, ns, "@payer annotation required for constructor")
	})

	t.Run("payer recorded as signer", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract C {
    @payer(owner)
    @seed("abc")
    @space(100)
    constructor() {}
}
`)
		require.Empty(t, errorMessages(ns))
		ctor := function(t, ns, "C", "new")
		assert.Equal(t, "owner", ctor.Constructor.Payer)
		require.NotNil(t, ctor.Constructor.SpaceValue)
		assert.Equal(t, uint64(100), *ctor.Constructor.SpaceValue)
		acc, ok := ctor.Accounts.Get("owner")
		require.True(t, ok)
		assert.True(t, acc.Signer)
		assert.True(t, acc.Writable)
	})

	t.Run("not on other targets", func(t *testing.T) {
		ns := resolveSource(t, target.Polkadot, `
contract C {
    @payer(owner)
    constructor() {}
}
`)
		findError(t, ns, "unknown annotation payer for constructor")
	})

	t.Run("program id", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
@program_id("11111111111111111111111111111111")
contract C {}
@program_id("111")
contract D {}
`)
		c, _ := ns.LookupContract("C")
		assert.Len(t, c.ProgramID, 32)
		findError(t, ns, "address literal 111 incorrect length of 3")
	})

	t.Run("reserved account", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract C {
    @signer(clock)
    function f() external {}
}
`)
		findError(t, ns, "'clock' is a reserved account name")
	})

	t.Run("accounts only on external functions", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract C {
    @signer(owner)
    function f() public {}
}
`)
		findError(t, ns, "account declarations are only valid in functions declared as external")
	})
}

func TestSolanaExternalCalls(t *testing.T) {
	t.Run("accounts required outside external functions", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract Other { function bar() public {} }
contract C {
    function f() public { Other.bar(); }
}
`)
		findError(t, ns, "accounts are required for calling a contract")
	})

	t.Run("program id required", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract Other { function bar() public {} }
contract C {
    function f() external { Other.bar(); }
}
`)
		findError(t, ns, "a contract needs a program id to be called")
	})

	t.Run("implicit program id", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
@program_id("11111111111111111111111111111111")
contract Other { function bar() external {} }
contract C {
    function f() external { Other.bar(); }
}
`)
		require.Empty(t, errorMessages(ns))
		f := function(t, ns, "C", "f")
		require.Len(t, f.Calls, 1)
		assert.Equal(t, ExternalCall, f.Calls[0].Kind)
		assert.True(t, f.Calls[0].ImplicitProgramID)
		assert.True(t, f.Calls[0].Inferred())
	})

	t.Run("value cannot be sent", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
@program_id("11111111111111111111111111111111")
contract Other { function bar() external payable {} }
contract C {
    function f() external { Other.bar{value: 1}(); }
}
`)
		findError(t, ns, "Solana Cross Program Invocation (CPI) cannot transfer native value")
	})

	t.Run("new needs program id", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract Other {}
contract C {
    function f() external { new Other(); }
}
`)
		findError(t, ns, "in order to instantiate contract 'Other', a @program_id is required on contract 'Other'")
	})
}

func TestOverrideAccounts(t *testing.T) {
	t.Run("missing and mismatched", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract Base {
    @mutableAccount(vault)
    @signer(owner)
    function f() external virtual {}
}

contract Impl is Base {
    @account(vault)
    function f() external override {}
}
`)
		missing := findError(t, ns, "functions must have the same declared accounts for correct overriding")
		require.Len(t, missing.Notes, 1)
		assert.Equal(t, "corresponding account 'owner' is missing", missing.Notes[0].Message)
		assert.Equal(t, 4, missing.Notes[0].Position.Line)

		mismatch := findError(t, ns, "account 'vault' must be declared with the same annotation for overriding")
		require.Len(t, mismatch.Notes, 1)
		assert.Equal(t, "location of other declaration", mismatch.Notes[0].Message)
	})

	t.Run("order", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract Base {
    @account(a)
    @account(b)
    function f() external virtual {}
}

contract Impl is Base {
    @account(b)
    @account(a)
    function f() external override {}
}
`)
		findError(t, ns, "accounts must be declared in the same order for overriding")
		assert.NotContains(t, errorMessages(ns), "functions must have the same declared accounts for correct overriding")
	})

	t.Run("identical", func(t *testing.T) {
		ns := resolveSource(t, target.Solana, `
contract Base {
    @mutableSigner(owner)
    function f() external virtual {}
}

contract Impl is Base {
    @mutableSigner(owner)
    function f() external override {}
}
`)
		assert.Empty(t, errorMessages(ns))
	})
}
