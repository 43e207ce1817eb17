package ens

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Namehash: EIP-137 vectors
// ---------------------------------------------------------------------------

func TestNamehashVectors(t *testing.T) {
	assert.Equal(t, common.Hash{}, Namehash(""))
	assert.Equal(t,
		common.HexToHash("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"),
		Namehash("eth"))
	assert.Equal(t,
		common.HexToHash("0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"),
		Namehash("foo.eth"))
}

func TestNamehashDistinguishesNames(t *testing.T) {
	assert.NotEqual(t, Namehash("alice.eth"), Namehash("bob.eth"))
	assert.NotEqual(t, Namehash("Test.eth"), Namehash("test.eth"), "callers normalise case")
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("alice.eth"))
	assert.True(t, IsName("Sub.Alice.ETH"))
	assert.False(t, IsName("alice"))
	assert.False(t, IsName("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"))
	assert.False(t, IsName("#1"))
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

// fakeENS answers resolver() on the registry and addr() on one resolver.
type fakeENS struct {
	resolver common.Address
	records  map[common.Hash]common.Address
	err      error
}

func (f *fakeENS) Call(_ context.Context, _, to common.Address, data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.records == nil {
		return nil, nil
	}
	method, err := parsedABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	node := common.Hash(args[0].([32]byte))

	switch {
	case to == RegistryAddress && method.Name == "resolver":
		if _, ok := f.records[node]; !ok {
			return method.Outputs.Pack(common.Address{})
		}
		return method.Outputs.Pack(f.resolver)
	case to == f.resolver && method.Name == "addr":
		return method.Outputs.Pack(f.records[node])
	}
	return nil, nil
}

func (f *fakeENS) ChainID(context.Context) (*big.Int, error) { return big.NewInt(11155111), nil }
func (f *fakeENS) BalanceAt(context.Context, common.Address) (*big.Int, error) { return new(big.Int), nil }
func (f *fakeENS) BlockTimestamp(context.Context) (uint64, error) { return 0, nil }
func (f *fakeENS) Transact(context.Context, *ecdsa.PrivateKey, common.Address, []byte) (*types.Receipt, error) {
	return nil, errors.New("read only")
}
func (f *fakeENS) Deploy(context.Context, *ecdsa.PrivateKey, *contract.Artifact, []byte) (common.Address, *types.Receipt, error) {
	return common.Address{}, nil, errors.New("read only")
}

var (
	alice        = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	resolverAddr = common.HexToAddress("0x8FADE66B79cC9f707aB26799354482EB93a5B7dD")
)

func TestResolve(t *testing.T) {
	backend := &fakeENS{resolver: resolverAddr, records: map[common.Hash]common.Address{
		Namehash("alice.eth"): alice,
	}}

	got, err := Resolve(context.Background(), backend, "Alice.eth")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestResolveNoResolver(t *testing.T) {
	backend := &fakeENS{resolver: resolverAddr, records: map[common.Hash]common.Address{}}
	_, err := Resolve(context.Background(), backend, "nobody.eth")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestResolveZeroRecord(t *testing.T) {
	backend := &fakeENS{resolver: resolverAddr, records: map[common.Hash]common.Address{
		Namehash("empty.eth"): {},
	}}
	_, err := Resolve(context.Background(), backend, "empty.eth")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestResolveNoRegistryCode(t *testing.T) {
	// Local chains have no registry; eth_call to an empty account returns 0x.
	_, err := Resolve(context.Background(), &fakeENS{}, "alice.eth")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestResolveBackendError(t *testing.T) {
	_, err := Resolve(context.Background(), &fakeENS{err: errors.New("boom")}, "alice.eth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENS registry")
}
