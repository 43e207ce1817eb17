// Package permit builds and signs the EIP-712 messages accepted by the
// SampleCoin permit() function.
//
// The digest is the standard two-level EIP-712 hash:
//
//	keccak256(0x19 0x01 ‖ domainSeparator ‖ structHash)
//
// where the domain is (name, "1", chainId, verifyingContract) and the struct is
// Permit(owner, spender, amount, nonce, deadline).
package permit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Version is the fixed EIP-712 domain version used by SampleCoin.
const Version = "1"

const (
	domainType = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	permitType = "Permit(address owner,address spender,uint256 amount,uint256 nonce,uint256 deadline)"
)

var (
	// DomainTypeHash is keccak256 of the EIP712Domain type descriptor.
	DomainTypeHash = crypto.Keccak256Hash([]byte(domainType))

	// PermitTypeHash is keccak256 of the Permit type descriptor. It must match
	// PERMIT_TYPEHASH() on the token.
	PermitTypeHash = crypto.Keccak256Hash([]byte(permitType))
)

var (
	bytes32Ty, _ = abi.NewType("bytes32", "", nil)
	uint256Ty, _ = abi.NewType("uint256", "", nil)
	addressTy, _ = abi.NewType("address", "", nil)

	domainArgs = abi.Arguments{
		{Type: bytes32Ty}, {Type: bytes32Ty}, {Type: bytes32Ty}, {Type: uint256Ty}, {Type: addressTy},
	}
	permitArgs = abi.Arguments{
		{Type: bytes32Ty}, {Type: addressTy}, {Type: addressTy}, {Type: uint256Ty}, {Type: uint256Ty}, {Type: uint256Ty},
	}
)

// Message is the Permit struct that the owner signs.
type Message struct {
	Owner    common.Address
	Spender  common.Address
	Amount   *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

// ErrInvalidMessage is returned for a message whose amounts cannot be
// encoded as uint256.
var ErrInvalidMessage = errors.New("invalid permit message")

// Validate checks that Amount, Nonce and Deadline are set and fit uint256.
func (m Message) Validate() error {
	for _, f := range []struct {
		name string
		v    *big.Int
	}{{"amount", m.Amount}, {"nonce", m.Nonce}, {"deadline", m.Deadline}} {
		switch {
		case f.v == nil:
			return fmt.Errorf("%w: %s is not set", ErrInvalidMessage, f.name)
		case f.v.Sign() < 0:
			return fmt.Errorf("%w: %s is negative", ErrInvalidMessage, f.name)
		case f.v.BitLen() > 256:
			return fmt.Errorf("%w: %s overflows uint256", ErrInvalidMessage, f.name)
		}
	}
	return nil
}

// DomainSeparator returns the EIP-712 domain separator for a token named name
// deployed at verifyingContract on chainID.
func DomainSeparator(name string, chainID *big.Int, verifyingContract common.Address) common.Hash {
	packed, err := domainArgs.Pack(
		DomainTypeHash,
		crypto.Keccak256Hash([]byte(name)),
		crypto.Keccak256Hash([]byte(Version)),
		orZero(chainID),
		verifyingContract,
	)
	if err != nil {
		// Only reachable with a nil/negative chain id, which orZero rules out.
		panic("permit: encoding domain: " + err.Error())
	}
	return crypto.Keccak256Hash(packed)
}

// StructHash returns hashStruct(Permit) for m. m must pass Validate; unset
// fields hash as zero.
func StructHash(m Message) common.Hash {
	packed, err := permitArgs.Pack(
		PermitTypeHash,
		m.Owner,
		m.Spender,
		orZero(m.Amount),
		orZero(m.Nonce),
		orZero(m.Deadline),
	)
	if err != nil {
		// Oversized values; Validate rejects them.
		panic("permit: encoding struct: " + err.Error())
	}
	return crypto.Keccak256Hash(packed)
}

// Digest returns the hash the owner must sign for m under domainSeparator.
func Digest(domainSeparator common.Hash, m Message) common.Hash {
	structHash := StructHash(m)
	raw := make([]byte, 0, 66)
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator.Bytes()...)
	raw = append(raw, structHash.Bytes()...)
	return crypto.Keccak256Hash(raw)
}

func orZero(n *big.Int) *big.Int {
	if n == nil || n.Sign() < 0 {
		return new(big.Int)
	}
	return n
}
