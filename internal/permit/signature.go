package permit

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignatureLength is returned when parsing a signature that is not 65 bytes.
var ErrInvalidSignatureLength = errors.New("invalid signature length")

// Signature is a recoverable secp256k1 signature split into the (v, r, s)
// triple that permit() takes. V is 27 or 28.
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// Sign signs digest with key without any further hashing or prefixing.
func Sign(key *ecdsa.PrivateKey, digest common.Hash) (Signature, error) {
	if key == nil {
		return Signature{}, errors.New("permit: nil signing key")
	}
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, fmt.Errorf("signing digest: %w", err)
	}
	return ParseSignature(append(sig[:64:64], sig[64]+27))
}

// ParseSignature splits a 65-byte R ‖ S ‖ V signature. A V of 0 or 1 is
// normalised to 27 or 28.
func ParseSignature(raw []byte) (Signature, error) {
	if len(raw) != 65 {
		return Signature{}, fmt.Errorf("%w: expected 65 bytes, got %d", ErrInvalidSignatureLength, len(raw))
	}
	var s Signature
	copy(s.R[:], raw[:32])
	copy(s.S[:], raw[32:64])
	s.V = raw[64]
	if s.V < 27 {
		s.V += 27
	}
	return s, nil
}

// Bytes returns the 65-byte R ‖ S ‖ V encoding.
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// Hex returns the 0x-prefixed R ‖ S ‖ V encoding.
func (s Signature) Hex() string { return hexutil.Encode(s.Bytes()) }

// Recover returns the address that produced sig over digest, following the
// ecrecover precompile: a V other than 27/28 or out-of-range R/S yields the
// zero address rather than an error.
func Recover(digest common.Hash, sig Signature) common.Address {
	if sig.V != 27 && sig.V != 28 {
		return common.Address{}
	}
	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !crypto.ValidateSignatureValues(sig.V-27, r, s, false) {
		return common.Address{}
	}

	raw := make([]byte, 65)
	copy(raw[:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V - 27

	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(*pub)
}
