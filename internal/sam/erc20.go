// Package sam holds typed bindings for the Sample Coin contracts. They work
// against any contract.Backend: the in-process devnet or a JSON-RPC node.
package sam

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Decimals is the fixed decimals() of both sample tokens.
const Decimals = 18

// ERC20 is the token surface shared by SampleToken and SampleCoin.
type ERC20 struct {
	*contract.BoundContract
}

func (t ERC20) Name(ctx context.Context) (string, error) {
	return contract.Output[string](t.Call(ctx, "name"))
}

func (t ERC20) Symbol(ctx context.Context) (string, error) {
	return contract.Output[string](t.Call(ctx, "symbol"))
}

func (t ERC20) Decimals(ctx context.Context) (uint8, error) {
	return contract.Output[uint8](t.Call(ctx, "decimals"))
}

func (t ERC20) TotalSupply(ctx context.Context) (*big.Int, error) {
	return contract.Output[*big.Int](t.Call(ctx, "totalSupply"))
}

func (t ERC20) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return contract.Output[*big.Int](t.Call(ctx, "balanceOf", account))
}

func (t ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return contract.Output[*big.Int](t.Call(ctx, "allowance", owner, spender))
}

func (t ERC20) Owner(ctx context.Context) (common.Address, error) {
	return contract.Output[common.Address](t.Call(ctx, "owner"))
}

func (t ERC20) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, "transfer", to, amount)
}

func (t ERC20) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, "approve", spender, amount)
}

func (t ERC20) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.Transact(ctx, "transferFrom", from, to, amount)
}

func (t ERC20) TransferOwnership(ctx context.Context, newOwner common.Address) (*types.Receipt, error) {
	return t.Transact(ctx, "transferOwnership", newOwner)
}

// TransferEvent is a decoded Transfer log.
type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// TransferEvents returns the Transfer logs this token emitted in receipt.
func (t ERC20) TransferEvents(receipt *types.Receipt) ([]TransferEvent, error) {
	evs, err := t.Events(receipt, "Transfer")
	if err != nil {
		return nil, err
	}
	out := make([]TransferEvent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, TransferEvent{
			From:  ev.Args["from"].(common.Address),
			To:    ev.Args["to"].(common.Address),
			Value: ev.Args["value"].(*big.Int),
		})
	}
	return out, nil
}

// ApprovalEvent is a decoded Approval log.
type ApprovalEvent struct {
	Owner   common.Address
	Spender common.Address
	Value   *big.Int
}

// ApprovalEvents returns the Approval logs this token emitted in receipt.
func (t ERC20) ApprovalEvents(receipt *types.Receipt) ([]ApprovalEvent, error) {
	evs, err := t.Events(receipt, "Approval")
	if err != nil {
		return nil, err
	}
	out := make([]ApprovalEvent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ApprovalEvent{
			Owner:   ev.Args["owner"].(common.Address),
			Spender: ev.Args["spender"].(common.Address),
			Value:   ev.Args["value"].(*big.Int),
		})
	}
	return out, nil
}

func builtin(name string) *contract.Artifact {
	b, ok := contract.Builtin(name)
	if !ok {
		panic("sam: no builtin artifact " + name)
	}
	return b.Artifact
}
