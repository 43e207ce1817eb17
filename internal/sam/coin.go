package sam

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/Mohsinsiddi/samkit/internal/permit"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Coin binds a deployed SampleCoin.
type Coin struct {
	ERC20
}

var _ permit.Token = (*Coin)(nil)

// DeployCoin deploys SampleCoin(name, symbol, initialSupply) from key.
// artifact may be nil to use the embedded ABI (devnet only).
func DeployCoin(ctx context.Context, backend contract.Backend, key *ecdsa.PrivateKey, artifact *contract.Artifact, name, symbol string, initialSupply *big.Int) (*Coin, *types.Receipt, error) {
	if artifact == nil {
		artifact = builtin("SampleCoin")
	}
	bc, receipt, err := contract.NewFactory(backend, artifact).Deploy(ctx, key, name, symbol, initialSupply)
	if err != nil {
		return nil, receipt, err
	}
	return &Coin{ERC20{bc}}, receipt, nil
}

// BindCoin binds the SampleCoin at address.
func BindCoin(backend contract.Backend, address common.Address) *Coin {
	return &Coin{ERC20{contract.Bind(backend, builtin("SampleCoin"), address)}}
}

// Connect returns a copy sending from key.
func (c *Coin) Connect(key *ecdsa.PrivateKey) *Coin {
	return &Coin{ERC20{c.BoundContract.Connect(key)}}
}

func (c *Coin) DomainSeparator(ctx context.Context) (common.Hash, error) {
	h, err := contract.Output[[32]byte](c.Call(ctx, "DOMAIN_SEPARATOR"))
	return common.Hash(h), err
}

func (c *Coin) PermitTypeHash(ctx context.Context) (common.Hash, error) {
	h, err := contract.Output[[32]byte](c.Call(ctx, "PERMIT_TYPEHASH"))
	return common.Hash(h), err
}

func (c *Coin) Version(ctx context.Context) (string, error) {
	return contract.Output[string](c.Call(ctx, "version"))
}

func (c *Coin) Nonces(ctx context.Context, owner common.Address) (*big.Int, error) {
	return contract.Output[*big.Int](c.Call(ctx, "nonces", owner))
}

// Permit submits a signed permit. Anyone may send it; the connected key
// only pays for the transaction.
func (c *Coin) Permit(ctx context.Context, m permit.Message, sig permit.Signature) (*types.Receipt, error) {
	return c.Transact(ctx, "permit", m.Owner, m.Spender, m.Amount, m.Deadline, sig.V, sig.R, sig.S)
}
