package permit

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	ownerKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	ownerAddrHex = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

var (
	hardhatChainID = big.NewInt(31337)
	tokenAddr      = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	spenderAddr    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func sampleMessage() Message {
	return Message{
		Owner:    common.HexToAddress(ownerAddrHex),
		Spender:  spenderAddr,
		Amount:   big.NewInt(100),
		Nonce:    big.NewInt(0),
		Deadline: big.NewInt(4102416000), // December 2099
	}
}

// ---------------------------------------------------------------------------
// type hashes
// ---------------------------------------------------------------------------

func TestTypeHashesMatchDescriptors(t *testing.T) {
	assert.Equal(t,
		crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)")),
		DomainTypeHash)
	assert.Equal(t,
		crypto.Keccak256Hash([]byte("Permit(address owner,address spender,uint256 amount,uint256 nonce,uint256 deadline)")),
		PermitTypeHash)
}

// ---------------------------------------------------------------------------
// DomainSeparator
// ---------------------------------------------------------------------------

func TestDomainSeparatorManualEncoding(t *testing.T) {
	// abi.encode of five static words is just their concatenation.
	var raw []byte
	raw = append(raw, DomainTypeHash.Bytes()...)
	raw = append(raw, crypto.Keccak256([]byte("Sample Coin"))...)
	raw = append(raw, crypto.Keccak256([]byte("1"))...)
	raw = append(raw, common.LeftPadBytes(hardhatChainID.Bytes(), 32)...)
	raw = append(raw, common.LeftPadBytes(tokenAddr.Bytes(), 32)...)

	assert.Equal(t, crypto.Keccak256Hash(raw), DomainSeparator("Sample Coin", hardhatChainID, tokenAddr))
}

func TestDomainSeparatorDependsOnEveryField(t *testing.T) {
	base := DomainSeparator("Sample Coin", hardhatChainID, tokenAddr)

	assert.NotEqual(t, base, DomainSeparator("Other Coin", hardhatChainID, tokenAddr))
	assert.NotEqual(t, base, DomainSeparator("Sample Coin", big.NewInt(1), tokenAddr))
	assert.NotEqual(t, base, DomainSeparator("Sample Coin", hardhatChainID, spenderAddr))
}

func TestDomainSeparatorNilChainIDIsZero(t *testing.T) {
	assert.Equal(t,
		DomainSeparator("x", big.NewInt(0), tokenAddr),
		DomainSeparator("x", nil, tokenAddr))
}

// ---------------------------------------------------------------------------
// Digest
// ---------------------------------------------------------------------------

func TestDigestMatchesTypedDataEncoder(t *testing.T) {
	m := sampleMessage()
	want := Digest(DomainSeparator("Sample Coin", hardhatChainID, tokenAddr), m)

	got, err := HashTypedData(TypedData("Sample Coin", hardhatChainID, tokenAddr, m))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDigestChangesWithNonce(t *testing.T) {
	ds := DomainSeparator("Sample Coin", hardhatChainID, tokenAddr)
	m := sampleMessage()
	first := Digest(ds, m)

	m.Nonce = big.NewInt(1)
	assert.NotEqual(t, first, Digest(ds, m), "a bumped nonce must invalidate old signatures")
}

func TestDigestPrefix(t *testing.T) {
	ds := DomainSeparator("Sample Coin", hardhatChainID, tokenAddr)
	m := sampleMessage()
	sh := StructHash(m)

	raw := append([]byte{0x19, 0x01}, ds.Bytes()...)
	raw = append(raw, sh.Bytes()...)
	assert.Equal(t, crypto.Keccak256Hash(raw), Digest(ds, m))
}

// ---------------------------------------------------------------------------
// Sign / Recover
// ---------------------------------------------------------------------------

func TestSignRecoverRoundTrip(t *testing.T) {
	key, err := crypto.HexToECDSA(ownerKeyHex)
	require.NoError(t, err)

	digest := Digest(DomainSeparator("Sample Coin", hardhatChainID, tokenAddr), sampleMessage())
	sig, err := Sign(key, digest)
	require.NoError(t, err)

	assert.Contains(t, []uint8{27, 28}, sig.V)
	assert.Equal(t, common.HexToAddress(ownerAddrHex), Recover(digest, sig))
}

func TestRecoverBadVYieldsZeroAddress(t *testing.T) {
	key, err := crypto.HexToECDSA(ownerKeyHex)
	require.NoError(t, err)

	digest := Digest(DomainSeparator("Sample Coin", hardhatChainID, tokenAddr), sampleMessage())
	sig, err := Sign(key, digest)
	require.NoError(t, err)

	sig.V = 10
	assert.Equal(t, common.Address{}, Recover(digest, sig))
}

func TestRecoverZeroRYieldsZeroAddress(t *testing.T) {
	sig := Signature{V: 27}
	sig.S[31] = 2
	assert.Equal(t, common.Address{}, Recover(common.Hash{1}, sig))
}

func TestRecoverOtherDigestYieldsOtherAddress(t *testing.T) {
	key, err := crypto.HexToECDSA(ownerKeyHex)
	require.NoError(t, err)

	ds := DomainSeparator("Sample Coin", hardhatChainID, tokenAddr)
	m := sampleMessage()
	sig, err := Sign(key, Digest(ds, m))
	require.NoError(t, err)

	m.Amount = big.NewInt(101)
	assert.NotEqual(t, common.HexToAddress(ownerAddrHex), Recover(Digest(ds, m), sig))
}

func TestSignNilKey(t *testing.T) {
	_, err := Sign(nil, common.Hash{})
	assert.Error(t, err)
}

func TestParseSignatureNormalisesV(t *testing.T) {
	raw := make([]byte, 65)
	raw[0] = 0xaa
	raw[32] = 0xbb
	raw[64] = 1

	sig, err := ParseSignature(raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(28), sig.V)
	assert.Equal(t, byte(0xaa), sig.R[0])
	assert.Equal(t, byte(0xbb), sig.S[0])

	out := sig.Bytes()
	assert.Equal(t, byte(28), out[64])
	assert.Len(t, sig.Hex(), 2+130)
}

func TestParseSignatureWrongLength(t *testing.T) {
	_, err := ParseSignature(make([]byte, 64))
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

type fakeToken struct {
	name  string
	nonce *big.Int
}

func (f fakeToken) Address() common.Address { return tokenAddr }

func (f fakeToken) Name(context.Context) (string, error) { return f.name, nil }

func (f fakeToken) Nonces(context.Context, common.Address) (*big.Int, error) { return f.nonce, nil }

func TestCreateUsesOnChainNameAndNonce(t *testing.T) {
	key, err := crypto.HexToECDSA(ownerKeyHex)
	require.NoError(t, err)

	tok := fakeToken{name: "Sample Coin", nonce: big.NewInt(7)}
	req := Request{
		Owner:    common.HexToAddress(ownerAddrHex),
		Spender:  spenderAddr,
		Amount:   big.NewInt(100),
		Deadline: big.NewInt(4102416000),
	}

	signed, err := Create(context.Background(), tok, hardhatChainID, key, req)
	require.NoError(t, err)

	assert.Equal(t, int64(7), signed.Message.Nonce.Int64())
	want := Digest(DomainSeparator("Sample Coin", hardhatChainID, tokenAddr), signed.Message)
	assert.Equal(t, want, signed.Digest)
	assert.Equal(t, req.Owner, Recover(signed.Digest, signed.Signature))
}

func TestCreateRejectsUnencodableRequest(t *testing.T) {
	key, err := crypto.HexToECDSA(ownerKeyHex)
	require.NoError(t, err)
	tok := fakeToken{name: "Sample Coin", nonce: big.NewInt(0)}

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	for name, req := range map[string]Request{
		"negative amount": {Amount: big.NewInt(-1), Deadline: big.NewInt(1)},
		"nil deadline":    {Amount: big.NewInt(1)},
		"huge deadline":   {Amount: big.NewInt(1), Deadline: tooBig},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Create(context.Background(), tok, hardhatChainID, key, req)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestMessageValidate(t *testing.T) {
	require.NoError(t, sampleMessage().Validate())

	maxUint := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	m := sampleMessage()
	m.Deadline = maxUint
	require.NoError(t, m.Validate())

	m.Deadline = new(big.Int).Add(maxUint, big.NewInt(1))
	assert.ErrorIs(t, m.Validate(), ErrInvalidMessage)

	m = sampleMessage()
	m.Nonce = nil
	err := m.Validate()
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.Contains(t, err.Error(), "nonce")

	m = sampleMessage()
	m.Amount = big.NewInt(-5)
	assert.ErrorIs(t, m.Validate(), ErrInvalidMessage)
}
