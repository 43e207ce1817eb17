// Package ens resolves ENS names (alice.eth) to addresses on networks that
// run the ENS registry, such as Sepolia.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry, the same on mainnet and Sepolia.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// ErrNoRecord is returned when a name has no resolver or no address record.
var ErrNoRecord = errors.New("ens: no address record")

const lookupABI = `[
	{"type":"function","name":"resolver","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"addr","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]}
]`

var parsedABI = mustParse(lookupABI)

func mustParse(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic("ens: " + err.Error())
	}
	return a
}

// IsName reports whether s looks like an ENS name rather than an address.
func IsName(s string) bool {
	return strings.HasSuffix(strings.ToLower(s), ".eth") && !strings.HasPrefix(s, "0x")
}

// Resolve looks up the resolver for name in the registry, then asks it for
// the address record.
func Resolve(ctx context.Context, backend contract.Backend, name string) (common.Address, error) {
	node := Namehash(strings.ToLower(name))

	resolver, err := callAddress(ctx, backend, RegistryAddress, "resolver", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	if resolver == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no resolver for %q", ErrNoRecord, name)
	}

	addr, err := callAddress(ctx, backend, resolver, "addr", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver: %w", err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrNoRecord, name)
	}
	return addr, nil
}

func callAddress(ctx context.Context, backend contract.Backend, to common.Address, method string, node common.Hash) (common.Address, error) {
	data, err := parsedABI.Pack(method, node)
	if err != nil {
		return common.Address{}, err
	}
	out, err := backend.Call(ctx, common.Address{}, to, data)
	if err != nil {
		return common.Address{}, err
	}
	// A registry with no code at to answers with empty data.
	if len(out) == 0 {
		return common.Address{}, nil
	}
	vals, err := parsedABI.Unpack(method, out)
	if err != nil {
		return common.Address{}, err
	}
	return vals[0].(common.Address), nil
}

// Namehash implements the EIP-137 namehash:
//
//	namehash("")       = 0x00…00
//	namehash(l + "." + rest) = keccak256(namehash(rest) ‖ keccak256(l))
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = common.BytesToHash(keccak256(node.Bytes(), keccak256([]byte(labels[i]))))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
