package sam

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// MinterRole is keccak256("MINTER_ROLE").
var MinterRole = [32]byte(crypto.Keccak256Hash([]byte("MINTER_ROLE")))

// Token binds a deployed SampleToken.
type Token struct {
	ERC20
}

// DeployToken deploys SampleToken(name, symbol, initialSupply) from key.
// artifact may be nil to use the embedded ABI (devnet only).
func DeployToken(ctx context.Context, backend contract.Backend, key *ecdsa.PrivateKey, artifact *contract.Artifact, name, symbol string, initialSupply *big.Int) (*Token, *types.Receipt, error) {
	if artifact == nil {
		artifact = builtin("SampleToken")
	}
	bc, receipt, err := contract.NewFactory(backend, artifact).Deploy(ctx, key, name, symbol, initialSupply)
	if err != nil {
		return nil, receipt, err
	}
	return &Token{ERC20{bc}}, receipt, nil
}

// BindToken binds the SampleToken at address.
func BindToken(backend contract.Backend, address common.Address) *Token {
	return &Token{ERC20{contract.Bind(backend, builtin("SampleToken"), address)}}
}

// Connect returns a copy sending from key.
func (t *Token) Connect(key *ecdsa.PrivateKey) *Token {
	return &Token{ERC20{t.BoundContract.Connect(key)}}
}

func (t *Token) HasRole(ctx context.Context, role [32]byte, account common.Address) (bool, error) {
	return contract.Output[bool](t.Call(ctx, "hasRole", role, account))
}

func (t *Token) RoleMemberCount(ctx context.Context, role [32]byte) (*big.Int, error) {
	return contract.Output[*big.Int](t.Call(ctx, "getRoleMemberCount", role))
}

func (t *Token) RoleMember(ctx context.Context, role [32]byte, index int64) (common.Address, error) {
	return contract.Output[common.Address](t.Call(ctx, "getRoleMember", role, big.NewInt(index)))
}

// Minters enumerates MINTER_ROLE members in grant order.
func (t *Token) Minters(ctx context.Context) ([]common.Address, error) {
	n, err := t.RoleMemberCount(ctx, MinterRole)
	if err != nil {
		return nil, fmt.Errorf("reading minter count: %w", err)
	}
	out := make([]common.Address, 0, n.Int64())
	for i := int64(0); i < n.Int64(); i++ {
		m, err := t.RoleMember(ctx, MinterRole, i)
		if err != nil {
			return nil, fmt.Errorf("reading minter %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (t *Token) AddMinter(ctx context.Context, account common.Address) (*types.Receipt, error) {
	return t.Transact(ctx, "addMinter", account)
}

func (t *Token) GrantRole(ctx context.Context, role [32]byte, account common.Address) (*types.Receipt, error) {
	return t.Transact(ctx, "grantRole", role, account)
}

func (t *Token) RevokeRole(ctx context.Context, role [32]byte, account common.Address) (*types.Receipt, error) {
	return t.Transact(ctx, "revokeRole", role, account)
}

func (t *Token) Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, "mint", to, amount)
}

func (t *Token) Burn(ctx context.Context, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, "burn", amount)
}
