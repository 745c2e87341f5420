package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const storeSource = `contract Store {
    bytes32 public hash;
    uint64 public count;

    function bump() public { count = count + 1; }
}
`

func TestRunPrintsLayout(t *testing.T) {
	path := writeFile(t, "store.sol", storeSource)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-target", "solana", "-dump-layout", "-dump-selectors", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "contract Store uses at least 56 bytes account data")
	assert.Contains(t, out, "Store.hash")
	assert.Contains(t, out, "offset 32 length 8")
	assert.Contains(t, out, "accounts: dataAccount(w)")
	assert.Contains(t, out, "Successfully compiled")
}

func TestRunFailsOnErrors(t *testing.T) {
	path := writeFile(t, "broken.sol", `contract Broken {
    function f() public { nothing = 1; }
}
`)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-target", "evm", path}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "'nothing' not found")
	assert.Contains(t, stderr.String(), "Compilation of")
}

func TestRunReadsConfig(t *testing.T) {
	config := writeFile(t, "target.hcl", `target "evm" {
  selector_length = 4
}
`)
	path := writeFile(t, "store.sol", storeSource)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-target", "evm", "-config", config, "-dump-selectors", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "contract Store uses 2 storage slots")
}

func TestRunRejectsBadArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-target", "cosmos", "x.sol"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "contractc:")
}
