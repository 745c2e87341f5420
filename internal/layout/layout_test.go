package layout

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractc/internal/errors"
	"contractc/internal/parser"
	"contractc/internal/semantic"
	"contractc/internal/target"
	"contractc/internal/types"
)

func plan(t *testing.T, tgt target.Target, source string) *semantic.Namespace {
	t.Helper()
	unit, errs := parser.ParseSource("layout.sol", source)
	require.Empty(t, errs, "unexpected parse errors")
	ns := semantic.Resolve(unit, target.Default(tgt), nil)
	require.False(t, ns.Diagnostics.HasErrors(), "resolution failed: %s", spew.Sdump(ns.Diagnostics.Errors()))
	Plan(ns)
	return ns
}

func contract(t *testing.T, ns *semantic.Namespace, name string) *semantic.Contract {
	t.Helper()
	c, ok := ns.LookupContract(name)
	require.True(t, ok, "contract %s", name)
	return c
}

func names(c *semantic.Contract) string {
	out := make([]string, len(c.Layout))
	for i, p := range c.Layout {
		out[i] = p.Var.Name
	}
	return strings.Join(out, ",")
}

func TestFlatBufferOffsets(t *testing.T) {
	ns := plan(t, target.Solana, `
contract B {
    bytes32 public a;
    uint64[6] public b;
}
`)
	c := contract(t, ns, "B")
	require.Len(t, c.Layout, 2)

	assert.Equal(t, uint64(0), c.Layout[0].Offset)
	assert.Equal(t, uint64(32), c.Layout[0].Length)
	assert.Equal(t, uint64(32), c.Layout[1].Offset)
	assert.Equal(t, uint64(48), c.Layout[1].Length)
	assert.Equal(t, uint64(80), c.FixedSize)
	assert.Equal(t, uint64(80+target.SolanaAccountHeader), c.RequiredSpace)

	assert.Equal(t, "contract B uses at least 96 bytes account data", Summary(ns, c))
}

func TestFlatBufferAlignment(t *testing.T) {
	ns := plan(t, target.Solana, `
contract A {
    bool public flag;
    uint64 public amount;
    uint16 public small;
    uint32 public medium;
}
`)
	c := contract(t, ns, "A")
	require.Len(t, c.Layout, 4)

	var offsets []uint64
	for _, p := range c.Layout {
		offsets = append(offsets, p.Offset)
	}
	assert.Equal(t, []uint64{0, 8, 16, 20}, offsets)
	assert.Equal(t, uint64(24), c.FixedSize)
}

func TestInsufficientSpace(t *testing.T) {
	ns := plan(t, target.Solana, `
contract C {
    address public first;
    address public second;

    @payer(payer)
    @space(5)
    constructor() {}
}
`)
	errs := ns.Diagnostics.Errors()
	require.Len(t, errs, 1, spew.Sdump(errs))
	assert.Equal(t, errors.ErrorInsufficientSpace, errs[0].Code)
	assert.Equal(t, "contract requires at least 80 bytes of space", errs[0].Message)
}

func TestEnoughSpace(t *testing.T) {
	ns := plan(t, target.Solana, `
contract C {
    address public first;

    @payer(payer)
    @space(48)
    constructor() {}
}
`)
	assert.False(t, ns.Diagnostics.HasErrors(), spew.Sdump(ns.Diagnostics.Errors()))
	assert.Equal(t, uint64(48), contract(t, ns, "C").RequiredSpace)
}

func TestAccountTooLarge(t *testing.T) {
	ns := plan(t, target.Solana, `
contract Huge {
    uint64[2000000] public big;
}
`)
	errs := ns.Diagnostics.Errors()
	require.Len(t, errs, 1, spew.Sdump(errs))
	assert.Equal(t, errors.ErrorAccountTooLarge, errs[0].Code)
	assert.Contains(t, errs[0].Message, "more than the maximum of 10485760 bytes")
}

func TestAccountSizeSaturates(t *testing.T) {
	ns := plan(t, target.Solana, `
contract Huge {
    uint256[576460752303423488] public big;
    uint64 public after;
}
`)
	c := contract(t, ns, "Huge")
	require.Len(t, c.Layout, 2)
	assert.Equal(t, types.Unbounded, c.Layout[0].Length)
	assert.Equal(t, types.Unbounded, c.Layout[1].Offset)
	assert.Equal(t, types.Unbounded, c.RequiredSpace)

	errs := ns.Diagnostics.Errors()
	require.Len(t, errs, 1, spew.Sdump(errs))
	assert.Equal(t, errors.ErrorAccountTooLarge, errs[0].Code)
	assert.Equal(t, "contract 'Huge' requires an unaddressable amount of account data, more than the maximum of 10485760 bytes", errs[0].Message)
}

const inheritedStorage = `
contract Root { uint64 public r; }
contract Left is Root { uint64 public l; }
contract Right is Root { uint64 public right; }
contract Bottom is Left, Right {
    uint64 constant LIMIT = 10;
    uint64 public b;
}
`

func TestSlotsFollowLinearization(t *testing.T) {
	ns := plan(t, target.EVM, inheritedStorage)

	bottom := contract(t, ns, "Bottom")
	assert.Equal(t, "r,right,l,b", names(bottom))
	for i, p := range bottom.Layout {
		assert.Equal(t, uint64(i), p.Slot)
	}
	assert.Equal(t, uint64(4), bottom.SlotCount)

	left := contract(t, ns, "Left")
	assert.Equal(t, "r,l", names(left))
	assert.Equal(t, uint64(1), left.Layout[1].Slot)

	// the variable records its place in the contract declaring it
	assert.Equal(t, uint64(1), left.Variables[0].Slot)
	assert.True(t, left.Variables[0].LaidOut)
	assert.Equal(t, "slot 1", left.Variables[0].Location(target.SlotAddressed))

	limit := bottom.Variables[0]
	assert.True(t, limit.Constant)
	assert.False(t, limit.LaidOut)
	assert.Equal(t, "constant", limit.Location(target.SlotAddressed))
}

func TestCompositeTypesTakeSlots(t *testing.T) {
	ns := plan(t, target.Polkadot, `
contract S {
    struct Point { uint64 x; uint64 y; }
    Point public p;
    uint64[3] public arr;
    mapping(address => uint64) public balances;
    uint64 public last;
}
`)
	c := contract(t, ns, "S")
	var slots []uint64
	for _, p := range c.Layout {
		slots = append(slots, p.Slot)
	}
	assert.Equal(t, []uint64{0, 2, 5, 6}, slots)
	assert.Equal(t, uint64(7), c.SlotCount)
}

func TestLayoutIsDeterministic(t *testing.T) {
	for _, tgt := range []target.Target{target.Solana, target.Polkadot, target.EVM} {
		first := plan(t, tgt, inheritedStorage)
		second := plan(t, tgt, inheritedStorage)
		for i, c := range first.Contracts {
			assert.Equal(t, Describe(first, c), Describe(second, second.Contracts[i]), "%s on %s", c.Name, tgt)
		}

		// planning again must not move anything
		c := contract(t, first, "Bottom")
		before := Describe(first, c)
		Plan(first)
		assert.Equal(t, before, Describe(first, c))
	}
}

func TestDescribe(t *testing.T) {
	ns := plan(t, target.Solana, inheritedStorage)
	entries := Describe(ns, contract(t, ns, "Bottom"))
	require.Len(t, entries, 4)
	assert.Equal(t, Entry{Contract: "Right", Name: "right", Type: "uint64", Location: "offset 8 length 8"}, entries[1])
	assert.Equal(t, Entry{Contract: "Bottom", Name: "b", Type: "uint64", Location: "offset 24 length 8"}, entries[3])
}
