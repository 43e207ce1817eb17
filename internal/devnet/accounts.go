package devnet

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
)

// devKeys are the first accounts of Hardhat's default mnemonic
// ("test test test ... junk"). They are public knowledge: never fund them on
// a real network.
var devKeys = []string{
	"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	"5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
	"7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6",
	"47e179ec197488593b187f80a00eb0da91f1b9d0b13f8733639f19c30a34926a",
}

// DefaultKeys returns fresh copies of the well-known development keys.
func DefaultKeys() []*ecdsa.PrivateKey {
	out := make([]*ecdsa.PrivateKey, len(devKeys))
	for i, h := range devKeys {
		k, err := crypto.HexToECDSA(h)
		if err != nil {
			panic("devnet: bad built-in key: " + err.Error())
		}
		out[i] = k
	}
	return out
}

// DefaultKeyHex returns the hex private key of development account i.
func DefaultKeyHex(i int) (string, bool) {
	if i < 0 || i >= len(devKeys) {
		return "", false
	}
	return devKeys[i], true
}
