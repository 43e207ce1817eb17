package wallet

import (
	"crypto/ecdsa"

	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is one of the well-known development accounts.
type Account struct {
	Index   int
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// HardhatAccounts returns the development accounts every local Hardhat or
// Anvil node funds at genesis. Their keys are public: never fund them on a
// real network.
func HardhatAccounts() []Account {
	keys := devnet.DefaultKeys()
	out := make([]Account, len(keys))
	for i, k := range keys {
		out[i] = Account{Index: i, Address: crypto.PubkeyToAddress(k.PublicKey), Key: k}
	}
	return out
}
