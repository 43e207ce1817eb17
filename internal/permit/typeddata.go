package permit

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// TypedData returns m as an eth_signTypedData_v4 payload. Wallets that sign
// typed data (rather than raw digests) produce the same signature as Sign
// over Digest.
func TypedData(name string, chainID *big.Int, verifyingContract common.Address, m Message) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Permit": {
				{Name: "owner", Type: "address"},
				{Name: "spender", Type: "address"},
				{Name: "amount", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
			},
		},
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:              name,
			Version:           Version,
			ChainId:           (*math.HexOrDecimal256)(orZero(chainID)),
			VerifyingContract: verifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"owner":    m.Owner.Hex(),
			"spender":  m.Spender.Hex(),
			"amount":   orZero(m.Amount),
			"nonce":    orZero(m.Nonce),
			"deadline": orZero(m.Deadline),
		},
	}
}

// HashTypedData hashes td with go-ethereum's generic EIP-712 encoder.
func HashTypedData(td apitypes.TypedData) (common.Hash, error) {
	structHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("hashing %s: %w", td.PrimaryType, err)
	}
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("hashing domain: %w", err)
	}
	raw := []byte{0x19, 0x01}
	raw = append(raw, domainSeparator...)
	raw = append(raw, structHash...)
	return crypto.Keccak256Hash(raw), nil
}

// Token is the slice of the SampleCoin surface needed to build a permit.
type Token interface {
	Address() common.Address
	Name(ctx context.Context) (string, error)
	Nonces(ctx context.Context, owner common.Address) (*big.Int, error)
}

// Request describes an allowance the owner wants to grant off-chain.
type Request struct {
	Owner    common.Address
	Spender  common.Address
	Amount   *big.Int
	Deadline *big.Int
}

// Signed is a ready-to-submit permit.
type Signed struct {
	Message   Message
	Digest    common.Hash
	Signature Signature
}

// Create reads the token name and the owner's current nonce, builds the
// digest for req and signs it with key. Amount and Deadline must be set and
// fit uint256.
func Create(ctx context.Context, token Token, chainID *big.Int, key *ecdsa.PrivateKey, req Request) (*Signed, error) {
	name, err := token.Name(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading token name: %w", err)
	}
	nonce, err := token.Nonces(ctx, req.Owner)
	if err != nil {
		return nil, fmt.Errorf("reading nonce: %w", err)
	}

	m := Message{
		Owner:    req.Owner,
		Spender:  req.Spender,
		Amount:   req.Amount,
		Nonce:    nonce,
		Deadline: req.Deadline,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	digest := Digest(DomainSeparator(name, chainID, token.Address()), m)
	sig, err := Sign(key, digest)
	if err != nil {
		return nil, err
	}
	return &Signed{Message: m, Digest: digest, Signature: sig}, nil
}
