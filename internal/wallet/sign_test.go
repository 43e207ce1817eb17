package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// SignMessage + VerifyMessage
// ---------------------------------------------------------------------------

func TestSignMessageRoundTrip(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivKeyHex[2:])
	require.NoError(t, err)

	for _, msg := range [][]byte{[]byte("hello samkit"), {}, make([]byte, 1024)} {
		sig, err := SignMessage(key, msg)
		require.NoError(t, err)
		require.Len(t, sig, 65)
		assert.Contains(t, []byte{27, 28}, sig[64])

		recovered, err := VerifyMessage(msg, sig)
		require.NoError(t, err)
		assert.Equal(t, testSignerAddr, recovered.Hex())
	}
}

func TestSignMessageKnownVector(t *testing.T) {
	// personal_sign("hello") hashes the 5-byte message with the EIP-191 prefix.
	want := crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n5hello"))
	assert.Equal(t, want, eip191Hash([]byte("hello")))
}

func TestVerifyMessageTamperedMessage(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivKeyHex[2:])
	require.NoError(t, err)

	sig, err := SignMessage(key, []byte("original"))
	require.NoError(t, err)

	recovered, err := VerifyMessage([]byte("tampered"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, testSignerAddr, recovered.Hex())
}

func TestVerifyMessageBadLength(t *testing.T) {
	_, err := VerifyMessage([]byte("x"), make([]byte, 64))
	assert.Error(t, err)
}

func TestSignMessageNilKey(t *testing.T) {
	_, err := SignMessage(nil, []byte("x"))
	assert.Error(t, err)
}
