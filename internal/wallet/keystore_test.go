package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat account #0.
const (
	testPrivKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func fileKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := OpenFileKeystore(t.TempDir(), "test-password")
	require.NoError(t, err)
	return ks
}

// ---------------------------------------------------------------------------
// normaliseHexKey
// ---------------------------------------------------------------------------

func TestNormaliseHexKey(t *testing.T) {
	tests := map[string]string{
		"0xabc123":  "abc123",
		"0Xabc123":  "abc123",
		"abc123":    "abc123",
		"  0xabc  ": "abc",
		"0x":        "",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normaliseHexKey(in), in)
	}
	assert.Equal(t, testPrivKeyHex[2:], normaliseHexKey(testPrivKeyHex))
}

// ---------------------------------------------------------------------------
// file-backed keyring
// ---------------------------------------------------------------------------

func TestFileKeystoreRoundTrip(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := fileKeystore(t)

	ref, err := ks.Store("deployer", testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "samkit.deployer", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex[2:], got)
}

func TestFileKeystoreDelete(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := fileKeystore(t)

	ref, err := ks.Store("gone", testPrivKeyHex)
	require.NoError(t, err)
	require.NoError(t, ks.Delete(ref))

	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
	assert.NoError(t, ks.Delete(ref), "deleting twice is fine")
}

func TestFileKeystoreWrongPassword(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	dir := t.TempDir()

	ks, err := OpenFileKeystore(dir, "right")
	require.NoError(t, err)
	ref, err := ks.Store("w", testPrivKeyHex)
	require.NoError(t, err)

	other, err := OpenFileKeystore(dir, "wrong")
	require.NoError(t, err)
	_, err = other.Retrieve(ref)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// env override / nil ring
// ---------------------------------------------------------------------------

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	t.Setenv(EnvPrivateKey, testPrivKeyHex)

	ks := &Keystore{}
	got, err := ks.Retrieve("samkit.any-ref")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex[2:], got)
}

func TestKeystoreNilRing(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	ks := &Keystore{}

	_, err := ks.Store("x", testPrivKeyHex)
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)
	_, err = ks.Retrieve("samkit.x")
	assert.ErrorIs(t, err, ErrKeystoreUnavailable)
	assert.NoError(t, ks.Delete("samkit.x"))
}

// ---------------------------------------------------------------------------
// InMemoryKeystore
// ---------------------------------------------------------------------------

func TestInMemoryKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, err := ks.Store("a", "0xAB")
	require.NoError(t, err)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "AB", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.Error(t, err)
}
