package contract

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoSigner is returned by Transact on a contract bound without a key.
var ErrNoSigner = errors.New("no signer connected")

// Factory deploys new instances of an artifact.
type Factory struct {
	backend  Backend
	artifact *Artifact
}

// NewFactory returns a Factory for artifact on backend.
func NewFactory(backend Backend, artifact *Artifact) *Factory {
	return &Factory{backend: backend, artifact: artifact}
}

// Deploy packs args for the constructor, sends the creation transaction from
// key and waits for it to be mined.
func (f *Factory) Deploy(ctx context.Context, key *ecdsa.PrivateKey, args ...any) (*BoundContract, *types.Receipt, error) {
	if key == nil {
		return nil, nil, ErrNoSigner
	}
	ctorArgs, err := f.artifact.ABI.Pack("", args...)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s constructor: %w", f.artifact.ContractName, err)
	}
	addr, receipt, err := f.backend.Deploy(ctx, key, f.artifact, ctorArgs)
	if err != nil {
		return nil, receipt, wrapRevert(fmt.Sprintf("deploying %s", f.artifact.ContractName), err, &f.artifact.ABI)
	}
	return Bind(f.backend, f.artifact, addr).Connect(key), receipt, nil
}

// BoundContract is a deployed contract plus the key it sends from.
type BoundContract struct {
	backend  Backend
	artifact *Artifact
	address  common.Address
	key      *ecdsa.PrivateKey
}

// Bind attaches artifact's ABI to the contract at address. The result is
// read-only until Connect is called.
func Bind(backend Backend, artifact *Artifact, address common.Address) *BoundContract {
	return &BoundContract{backend: backend, artifact: artifact, address: address}
}

// Connect returns a copy of c that signs transactions with key.
func (c *BoundContract) Connect(key *ecdsa.PrivateKey) *BoundContract {
	cp := *c
	cp.key = key
	return &cp
}

// Address returns the contract address.
func (c *BoundContract) Address() common.Address { return c.address }

// ABI returns the parsed contract ABI.
func (c *BoundContract) ABI() *abi.ABI { return &c.artifact.ABI }

// Backend returns the chain the contract lives on.
func (c *BoundContract) Backend() Backend { return c.backend }

// From is the address calls and transactions are sent from.
func (c *BoundContract) From() common.Address {
	if c.key == nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(c.key.PublicKey)
}

// Call runs a read-only method and returns its decoded outputs.
func (c *BoundContract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.artifact.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	out, err := c.backend.Call(ctx, c.From(), c.address, data)
	if err != nil {
		return nil, wrapRevert(method, err, &c.artifact.ABI)
	}
	res, err := c.artifact.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	return res, nil
}

// Transact sends a state-changing method call and waits for it to be mined.
// On revert the receipt, if any, is returned alongside the *RevertError.
func (c *BoundContract) Transact(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	if c.key == nil {
		return nil, fmt.Errorf("%s: %w", method, ErrNoSigner)
	}
	data, err := c.artifact.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	return c.TransactRaw(ctx, method, data)
}

// TransactRaw sends pre-encoded calldata. label only names the call in errors.
func (c *BoundContract) TransactRaw(ctx context.Context, label string, data []byte) (*types.Receipt, error) {
	if c.key == nil {
		return nil, fmt.Errorf("%s: %w", label, ErrNoSigner)
	}
	receipt, err := c.backend.Transact(ctx, c.key, c.address, data)
	if err != nil {
		return receipt, wrapRevert(label, err, &c.artifact.ABI)
	}
	return receipt, nil
}

// Event is a decoded log.
type Event struct {
	Name    string
	Address common.Address
	Args    map[string]any
	Log     *types.Log
}

// Events decodes every log named name that this contract emitted in receipt.
func (c *BoundContract) Events(receipt *types.Receipt, name string) ([]Event, error) {
	ev, ok := c.artifact.ABI.Events[name]
	if !ok {
		return nil, fmt.Errorf("event %q not found in ABI", name)
	}
	if receipt == nil {
		return nil, nil
	}

	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}

	var out []Event
	for _, lg := range receipt.Logs {
		if lg.Address != c.address || len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
			continue
		}
		args := map[string]any{}
		if len(lg.Data) > 0 {
			if err := c.artifact.ABI.UnpackIntoMap(args, name, lg.Data); err != nil {
				return nil, fmt.Errorf("decoding %s data: %w", name, err)
			}
		}
		if err := abi.ParseTopicsIntoMap(args, indexed, lg.Topics[1:]); err != nil {
			return nil, fmt.Errorf("decoding %s topics: %w", name, err)
		}
		out = append(out, Event{Name: name, Address: lg.Address, Args: args, Log: lg})
	}
	return out, nil
}

// Output returns the first value of a Call result as T.
//
//	bal, err := contract.Output[*big.Int](c.Call(ctx, "balanceOf", addr))
func Output[T any](out []any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, errors.New("call returned no values")
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}

// wrapRevert names the failing call and fills in a custom error name when
// the backend could only decode the raw data.
func wrapRevert(label string, err error, parsed *abi.ABI) error {
	var re *RevertError
	if errors.As(err, &re) && re.Reason == "" && len(re.Data) >= 4 {
		if reason, ok := DecodeRevert(re.Data, parsed); ok {
			re.Reason = reason
		}
	}
	return fmt.Errorf("%s: %w", label, err)
}
