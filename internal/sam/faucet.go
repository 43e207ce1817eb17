package sam

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Faucet binds a deployed Faucet.
type Faucet struct {
	*contract.BoundContract
}

// DeployFaucet deploys Faucet(symbol, token, amount, trustedForwarder) from key.
// artifact may be nil to use the embedded ABI (devnet only).
func DeployFaucet(ctx context.Context, backend contract.Backend, key *ecdsa.PrivateKey, artifact *contract.Artifact, symbol string, token common.Address, amount *big.Int, forwarder common.Address) (*Faucet, *types.Receipt, error) {
	if artifact == nil {
		artifact = builtin("Faucet")
	}
	bc, receipt, err := contract.NewFactory(backend, artifact).Deploy(ctx, key, symbol, token, amount, forwarder)
	if err != nil {
		return nil, receipt, err
	}
	return &Faucet{bc}, receipt, nil
}

// BindFaucet binds the Faucet at address.
func BindFaucet(backend contract.Backend, address common.Address) *Faucet {
	return &Faucet{contract.Bind(backend, builtin("Faucet"), address)}
}

// Connect returns a copy sending from key.
func (f *Faucet) Connect(key *ecdsa.PrivateKey) *Faucet {
	return &Faucet{f.BoundContract.Connect(key)}
}

// Drip mints the drip amount to the connected account.
func (f *Faucet) Drip(ctx context.Context) (*types.Receipt, error) {
	return f.Transact(ctx, "drip")
}

// DripFor relays a drip for recipient through the trusted forwarder. The
// connected key must be the forwarder.
func (f *Faucet) DripFor(ctx context.Context, recipient common.Address) (*types.Receipt, error) {
	data, err := f.ABI().Pack("drip")
	if err != nil {
		return nil, err
	}
	return f.TransactRaw(ctx, "drip", append(data, recipient.Bytes()...))
}

func (f *Faucet) Symbol(ctx context.Context) (string, error) {
	return contract.Output[string](f.Call(ctx, "symbol"))
}

func (f *Faucet) Token(ctx context.Context) (common.Address, error) {
	return contract.Output[common.Address](f.Call(ctx, "token"))
}

func (f *Faucet) Amount(ctx context.Context) (*big.Int, error) {
	return contract.Output[*big.Int](f.Call(ctx, "amount"))
}

func (f *Faucet) Cooldown(ctx context.Context) (time.Duration, error) {
	secs, err := contract.Output[*big.Int](f.Call(ctx, "COOLDOWN"))
	if err != nil {
		return 0, err
	}
	return time.Duration(secs.Int64()) * time.Second, nil
}

// LastDrip returns the block time of account's last drip, zero if never.
func (f *Faucet) LastDrip(ctx context.Context, account common.Address) (time.Time, error) {
	ts, err := contract.Output[*big.Int](f.Call(ctx, "lastDrip", account))
	if err != nil || ts.Sign() == 0 {
		return time.Time{}, err
	}
	return time.Unix(ts.Int64(), 0).UTC(), nil
}

func (f *Faucet) IsTrustedForwarder(ctx context.Context, forwarder common.Address) (bool, error) {
	return contract.Output[bool](f.Call(ctx, "isTrustedForwarder", forwarder))
}

// DripEvent is a decoded Drip log.
type DripEvent struct {
	To     common.Address
	Amount *big.Int
}

// DripEvents returns the Drip logs this faucet emitted in receipt.
func (f *Faucet) DripEvents(receipt *types.Receipt) ([]DripEvent, error) {
	evs, err := f.Events(receipt, "Drip")
	if err != nil {
		return nil, err
	}
	out := make([]DripEvent, 0, len(evs))
	for _, ev := range evs {
		out = append(out, DripEvent{To: ev.Args["to"].(common.Address), Amount: ev.Args["amount"].(*big.Int)})
	}
	return out, nil
}
