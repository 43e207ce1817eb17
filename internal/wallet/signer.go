package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoDeployer is returned by Resolve when no key source is configured.
var ErrNoDeployer = errors.New("no signing key: import a wallet, pass --wallet or set " + EnvPrivateKey)

// Signer resolves the private key of a signing wallet.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// Key loads and parses the wallet's private key.
func (s *Signer) Key() (*ecdsa.PrivateKey, error) {
	if s.wallet.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", s.wallet.Name)
	}

	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return privKey, nil
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return common.HexToAddress(s.wallet.Address)
}

// Resolve picks the deployer key: the named wallet, then the default wallet,
// then SAMKIT_PRIVATE_KEY, then (only when devFallback is set) Hardhat account #0.
func Resolve(m *Manager, name string, devFallback bool) (*ecdsa.PrivateKey, error) {
	if name != "" {
		w, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		return NewSigner(w, m.Keystore()).Key()
	}
	if w := m.Default(); w != nil && w.Type == TypeSigning {
		return NewSigner(w, m.Keystore()).Key()
	}
	if v := os.Getenv(EnvPrivateKey); v != "" {
		k, err := crypto.HexToECDSA(normaliseHexKey(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", EnvPrivateKey, ErrInvalidKey, err)
		}
		return k, nil
	}
	if devFallback {
		return HardhatAccounts()[0].Key, nil
	}
	return nil, ErrNoDeployer
}
